package usecase

import (
	"encoding/json"
	"fmt"

	jobDomain "github.com/allisson/docrelay/internal/job/domain"
)

// Execution gives a step access to its job parameters and earlier step results.
type Execution struct {
	Job     *jobDomain.Job
	results map[string]json.RawMessage
}

// Params decodes the job parameters into v.
func (e *Execution) Params(v any) error {
	if err := json.Unmarshal(e.Job.Params, v); err != nil {
		return jobDomain.Permanent(fmt.Errorf("failed to decode job params: %w", err))
	}
	return nil
}

// Result decodes the recorded result of an earlier step into v.
func (e *Execution) Result(step string, v any) error {
	raw, ok := e.results[step]
	if !ok {
		return jobDomain.Permanent(fmt.Errorf("step %q has no recorded result", step))
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return jobDomain.Permanent(fmt.Errorf("failed to decode result of step %q: %w", step, err))
	}
	return nil
}
