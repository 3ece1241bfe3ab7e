package metrics

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric domains used across the relay.
const (
	DomainAccount  = "account"
	DomainDocument = "document"
	DomainJob      = "job"
)

// BusinessMetrics records relay operations: use case calls, job step outcomes
// and calls made to the upstream document service.
type BusinessMetrics interface {
	// RecordOperation counts a use case call, e.g. ("account", "register", "success").
	RecordOperation(ctx context.Context, domain, operation, status string)

	// RecordDuration records the latency of a use case call in seconds.
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)

	// RecordJobStep counts one execution of a workflow step. Outcome is one of
	// "success", "retry", "failed" or "skipped".
	RecordJobStep(ctx context.Context, kind, step, outcome string)

	// RecordUpstreamRequest records a call to the upstream service. StatusCode is 0
	// when no response was received.
	RecordUpstreamRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration)
}

type businessMetrics struct {
	operationCounter metric.Int64Counter
	durationHisto    metric.Float64Histogram
	jobStepCounter   metric.Int64Counter
	upstreamCounter  metric.Int64Counter
	upstreamHisto    metric.Float64Histogram
}

// NewBusinessMetrics creates a BusinessMetrics backed by the given meter provider.
// All instrument names are prefixed with namespace.
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (BusinessMetrics, error) {
	meter := meterProvider.Meter(namespace)

	operationCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_operations_total", namespace),
		metric.WithDescription("Total number of business operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	durationHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_operation_duration_seconds", namespace),
		metric.WithDescription("Duration of business operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	jobStepCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_job_steps_total", namespace),
		metric.WithDescription("Total number of workflow step executions"),
		metric.WithUnit("{step}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create job step counter: %w", err)
	}

	upstreamCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_upstream_requests_total", namespace),
		metric.WithDescription("Total number of requests sent to the upstream service"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create upstream counter: %w", err)
	}

	upstreamHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_upstream_request_duration_seconds", namespace),
		metric.WithDescription("Duration of upstream requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create upstream histogram: %w", err)
	}

	return &businessMetrics{
		operationCounter: operationCounter,
		durationHisto:    durationHisto,
		jobStepCounter:   jobStepCounter,
		upstreamCounter:  upstreamCounter,
		upstreamHisto:    upstreamHisto,
	}, nil
}

func (b *businessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	b.operationCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("domain", domain),
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}

func (b *businessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	b.durationHisto.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("domain", domain),
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}

func (b *businessMetrics) RecordJobStep(ctx context.Context, kind, step, outcome string) {
	b.jobStepCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("kind", kind),
			attribute.String("step", step),
			attribute.String("outcome", outcome),
		),
	)
}

func (b *businessMetrics) RecordUpstreamRequest(
	ctx context.Context,
	endpoint string,
	statusCode int,
	duration time.Duration,
) {
	attrs := metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("status_code", strconv.Itoa(statusCode)),
	)
	b.upstreamCounter.Add(ctx, 1, attrs)
	b.upstreamHisto.Record(ctx, duration.Seconds(), attrs)
}

// NoOpBusinessMetrics is used when metrics are disabled.
type NoOpBusinessMetrics struct{}

// NewNoOpBusinessMetrics creates a no-op BusinessMetrics implementation.
func NewNoOpBusinessMetrics() BusinessMetrics {
	return &NoOpBusinessMetrics{}
}

func (n *NoOpBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {}

func (n *NoOpBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
}

func (n *NoOpBusinessMetrics) RecordJobStep(ctx context.Context, kind, step, outcome string) {}

func (n *NoOpBusinessMetrics) RecordUpstreamRequest(
	ctx context.Context,
	endpoint string,
	statusCode int,
	duration time.Duration,
) {
}
