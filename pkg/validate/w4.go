package validate

import (
	"strings"

	"github.com/hirewire/onboard/pkg/api"
)

// W4 validates the Employee's Withholding Certificate step.
func W4(data api.FormData) api.Result {
	var r api.Result

	require(&r, data, "firstName", "First name is required")
	require(&r, data, "lastName", "Last name is required")
	requireAddress(&r, data)
	requireDigits(&r, data, "ssn", 9, "Social Security number")

	status := api.FilingStatus(strings.TrimSpace(data["filingStatus"]))
	switch status {
	case api.FilingSingle, api.FilingMarriedJointly, api.FilingHeadOfHousehold:
	case "":
		r.AddFieldError("filingStatus", "Filing status is required")
	default:
		r.AddFieldError("filingStatus", "Filing status is not a valid selection")
	}

	// Steps 3 and 4 are optional dollar amounts; reject only malformed input.
	optionalNumber(&r, data, "dependentsAmount", "Dependents amount")
	optionalNumber(&r, data, "otherIncome", "Other income")
	optionalNumber(&r, data, "deductions", "Deductions")
	optionalNumber(&r, data, "extraWithholding", "Extra withholding")

	return r.Finalize()
}
