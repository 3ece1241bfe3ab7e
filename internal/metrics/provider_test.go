package metrics

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	t.Run("Success_WithNamespace", func(t *testing.T) {
		provider, err := NewProvider("docrelay_test")

		require.NoError(t, err)
		assert.NotNil(t, provider.MeterProvider())
		assert.NotNil(t, provider.exporter)
		assert.NotNil(t, provider.registry)
	})

	t.Run("Success_EmptyNamespaceFallsBackToServiceName", func(t *testing.T) {
		provider, err := NewProvider("")
		require.NoError(t, err)

		bm, err := NewBusinessMetrics(provider.MeterProvider(), "relay")
		require.NoError(t, err)
		bm.RecordOperation(context.Background(), DomainAccount, "register", "success")

		assert.Contains(t, scrape(t, provider), `service_name="docrelay"`)
	})

	t.Run("Success_ProvidersDoNotShareRegistries", func(t *testing.T) {
		first, err := NewProvider("docrelay_test")
		require.NoError(t, err)
		second, err := NewProvider("docrelay_test")
		require.NoError(t, err)

		bm, err := NewBusinessMetrics(first.MeterProvider(), "docrelay_test")
		require.NoError(t, err)
		bm.RecordOperation(context.Background(), DomainDocument, "document_upload", "success")

		assert.Contains(t, scrape(t, first), "docrelay_test_operations_total")
		assert.NotContains(t, scrape(t, second), "docrelay_test_operations_total")
	})
}

func TestProvider_Handler(t *testing.T) {
	provider, err := NewProvider("docrelay_test")
	require.NoError(t, err)

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "docrelay_test")
	require.NoError(t, err)
	bm.RecordUpstreamRequest(context.Background(), "upload", http.StatusCreated, 150*time.Millisecond)

	body := scrape(t, provider)

	assert.Contains(t, body, "docrelay_test_upstream_requests_total")
	assert.Contains(t, body, `endpoint="upload"`)
	assert.Contains(t, body, `service_name="docrelay_test"`)
}

func TestProvider_Shutdown(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		provider, err := NewProvider("docrelay_test")
		require.NoError(t, err)

		assert.NoError(t, provider.Shutdown(context.Background()))
	})

	t.Run("Success_ZeroProvider", func(t *testing.T) {
		provider := &Provider{}

		assert.NoError(t, provider.Shutdown(context.Background()))
	})
}
