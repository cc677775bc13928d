package validate

import (
	"strings"

	"github.com/hirewire/onboard/pkg/api"
)

// DirectDeposit validates the direct-deposit enrollment step.
func DirectDeposit(data api.FormData) api.Result {
	var r api.Result

	accountType := api.AccountType(strings.TrimSpace(data["accountType"]))
	switch accountType {
	case api.AccountChecking, api.AccountSavings:
	case "":
		r.AddFieldError("accountType", "Account type is required")
	default:
		r.AddFieldError("accountType", "Account type must be checking or savings")
	}

	requireDigits(&r, data, "routingNumber", 9, "Routing number")

	account := strings.TrimSpace(data["accountNumber"])
	switch {
	case account == "":
		r.AddFieldError("accountNumber", "Account number is required")
	case !digitsRe.MatchString(account):
		r.AddFieldError("accountNumber", "Account number must contain digits only")
	case len(account) < 4 || len(account) > 17:
		r.AddFieldError("accountNumber", "Account number must be 4 to 17 digits")
	}

	confirm := strings.TrimSpace(data["confirmAccountNumber"])
	switch {
	case confirm == "":
		r.AddFieldError("confirmAccountNumber", "Please re-enter the account number")
	case confirm != account:
		r.AddFieldError("confirmAccountNumber", "Account numbers do not match")
	}

	return r.Finalize()
}

// HealthInsurance validates the health-insurance election step. Waiving
// coverage requires a reason; electing coverage requires a tier.
func HealthInsurance(data api.FormData) api.Result {
	var r api.Result

	plan := api.CoveragePlan(strings.TrimSpace(data["plan"]))
	switch plan {
	case api.PlanWaive:
		require(&r, data, "waiveReason", "A reason is required to waive coverage")

	case api.PlanHMO, api.PlanPPO, api.PlanHDHP:
		tier := strings.TrimSpace(data["coverageTier"])
		if tier == "" {
			r.AddFieldError("coverageTier", "Coverage tier is required")
		} else if !oneOf(tier, "employee", "employee_spouse", "employee_children", "family") {
			r.AddFieldError("coverageTier", "Coverage tier is not a valid selection")
		}
		optionalNumber(&r, data, "dependents", "Dependent count")

	case "":
		r.AddFieldError("plan", "Plan selection is required")

	default:
		r.AddFieldError("plan", "Plan is not a valid selection")
	}

	return r.Finalize()
}
