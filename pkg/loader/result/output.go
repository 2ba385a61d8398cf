package result

import (
	goerrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/NVIDIA/krepis/pkg/errors"
	"github.com/NVIDIA/krepis/pkg/header"
	"github.com/NVIDIA/krepis/pkg/platform"
)

// Result is the outcome of one load task. Tasks are per distinct backing
// module, not per platform id, so two ids sharing a module produce one
// Result carrying both ids.
type Result struct {
	// Module is the backing module the task resolved. Empty for tasks
	// that failed before a module was known (unregistered ids).
	Module string `json:"module,omitempty" yaml:"module,omitempty"`

	// Platforms are the platform ids served by this task.
	Platforms []string `json:"platforms" yaml:"platforms"`

	// Success indicates the task reached the Resolved state.
	Success bool `json:"success" yaml:"success"`

	// Installed indicates the module was missing and installed as part of
	// this batch.
	Installed bool `json:"installed,omitempty" yaml:"installed,omitempty"`

	// Instance is the constructed platform instance on success.
	Instance *platform.Instance `json:"instance,omitempty" yaml:"instance,omitempty"`

	// Duration is how long the task took to settle.
	Duration time.Duration `json:"duration" yaml:"duration"`

	// Error carries the task failure, nil on success.
	Error *TaskError `json:"error,omitempty" yaml:"error,omitempty"`
}

// TaskError is one task's failure: the structured code, the module and
// platform ids it affected, and the message.
type TaskError struct {
	// Code is the structured error code (NOT_REGISTERED, MODULE_NOT_FOUND, ...).
	Code errors.ErrorCode `json:"code" yaml:"code"`

	// Module is the backing module, when one was known.
	Module string `json:"module,omitempty" yaml:"module,omitempty"`

	// Platforms are the ids that failed with this task.
	Platforms []string `json:"platforms" yaml:"platforms"`

	// Message is the human-readable failure description.
	Message string `json:"message" yaml:"message"`

	cause error
}

// NewTaskError captures a task failure, extracting the structured code
// from the cause.
func NewTaskError(module string, platforms []string, cause error) *TaskError {
	return &TaskError{
		Code:      errors.Code(cause),
		Module:    module,
		Platforms: platforms,
		Message:   cause.Error(),
		cause:     cause,
	}
}

// Error implements the error interface.
func (e *TaskError) Error() string {
	if e.Module != "" {
		return fmt.Sprintf("module %s (platforms %s): %s",
			e.Module, strings.Join(e.Platforms, ", "), e.Message)
	}
	return fmt.Sprintf("platforms %s: %s", strings.Join(e.Platforms, ", "), e.Message)
}

// Unwrap exposes the original cause so code checks see through the
// aggregate.
func (e *TaskError) Unwrap() error {
	return e.cause
}

// Output aggregates one batch load: one Result per task, settled-all.
type Output struct {
	header.Header `yaml:",inline"`

	// Requested are the platform ids the batch was called with, in input
	// order.
	Requested []string `json:"requested" yaml:"requested"`

	// Results contains one entry per task in task creation order.
	Results []*Result `json:"results" yaml:"results"`

	// Errors collects the failures from Results for quick access.
	Errors []*TaskError `json:"errors,omitempty" yaml:"errors,omitempty"`

	// TotalDuration is the wall time of the whole batch.
	TotalDuration time.Duration `json:"total_duration" yaml:"total_duration"`

	// Created is when the batch completed.
	Created time.Time `json:"created" yaml:"created"`
}

// HasErrors reports whether any task failed.
func (o *Output) HasErrors() bool {
	return len(o.Errors) > 0
}

// SuccessCount returns the number of tasks that resolved.
func (o *Output) SuccessCount() int {
	count := 0
	for _, r := range o.Results {
		if r.Success {
			count++
		}
	}
	return count
}

// FailureCount returns the number of tasks that failed.
func (o *Output) FailureCount() int {
	return len(o.Results) - o.SuccessCount()
}

// Instances returns the distinct loaded instances in task creation order.
func (o *Output) Instances() []*platform.Instance {
	out := make([]*platform.Instance, 0, len(o.Results))
	for _, r := range o.Results {
		if r.Success && r.Instance != nil {
			out = append(out, r.Instance)
		}
	}
	return out
}

// Err joins every task failure into one error, nil when all tasks
// resolved. Structured code checks see through the join.
func (o *Output) Err() error {
	if !o.HasErrors() {
		return nil
	}
	errs := make([]error, 0, len(o.Errors))
	for _, e := range o.Errors {
		errs = append(errs, e)
	}
	return goerrors.Join(errs...)
}

// Summary returns a human-readable one-liner for logs.
func (o *Output) Summary() string {
	return fmt.Sprintf("Loaded %d/%d modules for %d platforms in %v.",
		o.SuccessCount(),
		len(o.Results),
		len(o.Requested),
		o.TotalDuration.Round(time.Millisecond),
	)
}
