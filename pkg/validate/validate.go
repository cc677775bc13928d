// Package validate implements the per-step validators of the onboarding
// wizard. Validators are pure and total: malformed or missing input
// degrades to field-level errors, never to a panic or Go error, and the
// same input always yields the same result.
package validate

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hirewire/onboard/pkg/api"
)

// Registry maps step IDs to their validators. A registry is populated at
// configuration time and read-only afterwards.
type Registry struct {
	validators map[api.StepID]api.Validator
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{validators: make(map[api.StepID]api.Validator)}
}

// Default returns a registry with the standard onboarding step validators.
func Default() *Registry {
	r := NewRegistry()
	r.Register(api.StepPersonalInfo, api.ValidatorFunc(PersonalInfo))
	r.Register(api.StepI9, api.ValidatorFunc(I9))
	r.Register(api.StepW4, api.ValidatorFunc(W4))
	r.Register(api.StepDirectDeposit, api.ValidatorFunc(DirectDeposit))
	r.Register(api.StepHealthInsurance, api.ValidatorFunc(HealthInsurance))
	return r
}

// Register binds a validator to a step ID, replacing any previous binding.
func (r *Registry) Register(id api.StepID, v api.Validator) {
	r.validators[id] = v
}

// Validate runs the step's validator over the data. A step with no
// registered validator is reported as a step-level error, not an
// exception: the controller treats it like any other blocked transition.
func (r *Registry) Validate(id api.StepID, data api.FormData) api.Result {
	v, ok := r.validators[id]
	if !ok {
		var res api.Result
		res.AddError("no validator registered for step " + string(id))
		return res.Finalize()
	}
	return v.Validate(data)
}

var (
	digitsRe = regexp.MustCompile(`^[0-9]+$`)
	emailRe  = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	zipRe    = regexp.MustCompile(`^[0-9]{5}(-[0-9]{4})?$`)
)

// require records a field error when the field is empty and returns the
// trimmed value either way.
func require(r *api.Result, data api.FormData, field, msg string) string {
	v := strings.TrimSpace(data[field])
	if v == "" {
		r.AddFieldError(field, msg)
	}
	return v
}

// requireDigits enforces an all-digit value of the given length.
// Empty values are reported as missing rather than malformed.
func requireDigits(r *api.Result, data api.FormData, field string, length int, label string) string {
	v := strings.TrimSpace(data[field])
	switch {
	case v == "":
		r.AddFieldError(field, label+" is required")
	case !digitsRe.MatchString(v):
		r.AddFieldError(field, label+" must contain digits only")
	case length > 0 && len(v) != length:
		r.AddFieldError(field, label+" must be "+strconv.Itoa(length)+" digits")
	}
	return v
}

// requireAddress enforces the full street address block: street, city,
// two-letter state, and ZIP (ZIP+4 accepted).
func requireAddress(r *api.Result, data api.FormData) {
	require(r, data, "address1", "Street address is required")
	require(r, data, "city", "City is required")

	if state := strings.TrimSpace(data["state"]); state == "" {
		r.AddFieldError("state", "State is required")
	} else if len(state) != 2 {
		r.AddFieldError("state", "State must be a two-letter code")
	}

	if zip := strings.TrimSpace(data["zip"]); zip == "" {
		r.AddFieldError("zip", "ZIP code is required")
	} else if !zipRe.MatchString(zip) {
		r.AddFieldError("zip", "ZIP code is not valid")
	}
}

// requireDate enforces the canonical YYYY-MM-DD input format.
func requireDate(r *api.Result, data api.FormData, field, label string) string {
	v := strings.TrimSpace(data[field])
	if v == "" {
		r.AddFieldError(field, label+" is required")
		return v
	}
	if !isISODate(v) {
		r.AddFieldError(field, label+" must be a valid date (YYYY-MM-DD)")
	}
	return v
}

// optionalDate reports malformed, non-empty dates only.
func optionalDate(r *api.Result, data api.FormData, field, label string) string {
	v := strings.TrimSpace(data[field])
	if v != "" && !isISODate(v) {
		r.AddFieldError(field, label+" must be a valid date (YYYY-MM-DD)")
	}
	return v
}

// optionalNumber reports non-empty values that do not parse as a
// non-negative number.
func optionalNumber(r *api.Result, data api.FormData, field, label string) {
	v := strings.TrimSpace(data[field])
	if v == "" {
		return
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil || n < 0 {
		r.AddFieldError(field, label+" must be a non-negative number")
	}
}

// oneOf checks a categorical value against its allowed set.
func oneOf(value string, allowed ...string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}

func isISODate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
