package api

import (
	"fmt"
	"sort"
)

// Result is the outcome of validating one step's data.
//
// Validators never return Go errors for bad input; every problem with the
// data itself is reported here so the caller can render inline feedback.
type Result struct {
	Valid bool

	// Errors holds step-level messages, including the aggregate summary
	// derived from the field-error count.
	Errors []string

	// FieldErrors maps a logical field name to its message.
	FieldErrors map[string]string
}

// OK is the positive result.
func OK() Result {
	return Result{Valid: true, FieldErrors: map[string]string{}}
}

// AddFieldError records a field-scoped message and marks the result invalid.
// The first message for a field wins; later ones are ignored so the
// reported error for a field is deterministic.
func (r *Result) AddFieldError(field, msg string) {
	if r.FieldErrors == nil {
		r.FieldErrors = map[string]string{}
	}
	if _, seen := r.FieldErrors[field]; seen {
		return
	}
	r.FieldErrors[field] = msg
	r.Valid = false
}

// AddError records a step-level message and marks the result invalid.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Valid = false
}

// Finalize derives the aggregate summary from the field-error count and
// returns the result by value. Same input data always yields the same
// summary, so messages are stable across calls.
func (r *Result) Finalize() Result {
	if len(r.FieldErrors) > 0 {
		switch n := len(r.FieldErrors); n {
		case 1:
			r.Errors = append(r.Errors, "1 field needs attention")
		default:
			r.Errors = append(r.Errors, fmt.Sprintf("%d fields need attention", n))
		}
	}
	r.Valid = len(r.Errors) == 0 && len(r.FieldErrors) == 0
	return *r
}

// Fields returns the names of all fields with errors, sorted.
func (r Result) Fields() []string {
	out := make([]string, 0, len(r.FieldErrors))
	for f := range r.FieldErrors {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Validator checks one step's data. Implementations must be pure: no side
// effects, and deterministic output for a given input.
type Validator interface {
	Validate(data FormData) Result
}

// ValidatorFunc adapts a plain function to the Validator interface.
type ValidatorFunc func(data FormData) Result

func (f ValidatorFunc) Validate(data FormData) Result { return f(data) }
