package api

// Categorical field values shared between the validators and the document
// generator. Modeling them as typed constants keeps branch selection and
// checkbox mapping exhaustive instead of string-matching ad hoc.

// CitizenshipStatus is the I-9 Section 1 attestation category.
type CitizenshipStatus string

const (
	CitizenUS                 CitizenshipStatus = "citizen"
	CitizenNoncitizenNational CitizenshipStatus = "noncitizen_national"
	CitizenPermanentResident  CitizenshipStatus = "permanent_resident"
	CitizenAuthorizedAlien    CitizenshipStatus = "authorized_alien"
)

// CitizenshipStatuses lists every valid attestation category.
var CitizenshipStatuses = []CitizenshipStatus{
	CitizenUS,
	CitizenNoncitizenNational,
	CitizenPermanentResident,
	CitizenAuthorizedAlien,
}

// FilingStatus is the W-4 Step 1(c) filing status.
type FilingStatus string

const (
	FilingSingle          FilingStatus = "single"
	FilingMarriedJointly  FilingStatus = "married_jointly"
	FilingHeadOfHousehold FilingStatus = "head_of_household"
)

// AccountType is the direct-deposit account category.
type AccountType string

const (
	AccountChecking AccountType = "checking"
	AccountSavings  AccountType = "savings"
)

// CoveragePlan is the health-insurance plan selection. PlanWaive declines
// coverage and requires a waive reason instead of a coverage tier.
type CoveragePlan string

const (
	PlanHMO   CoveragePlan = "hmo"
	PlanPPO   CoveragePlan = "ppo"
	PlanHDHP  CoveragePlan = "hdhp"
	PlanWaive CoveragePlan = "waive"
)
