package validate

import (
	"strings"

	"github.com/hirewire/onboard/pkg/api"
)

// PersonalInfo validates the personal information step.
func PersonalInfo(data api.FormData) api.Result {
	var r api.Result

	require(&r, data, "firstName", "First name is required")
	require(&r, data, "lastName", "Last name is required")
	requireDate(&r, data, "dateOfBirth", "Date of birth")
	requireDigits(&r, data, "ssn", 9, "Social Security number")

	if email := strings.TrimSpace(data["email"]); email == "" {
		r.AddFieldError("email", "Email address is required")
	} else if !emailRe.MatchString(email) {
		r.AddFieldError("email", "Email address is not valid")
	}

	requireAddress(&r, data)

	return r.Finalize()
}
