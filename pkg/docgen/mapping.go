package docgen

import "github.com/hirewire/onboard/pkg/api"

// FieldMapping resolves one logical application field to a template field.
//
// Candidates are template field names tried in order; the first one present
// in the catalog wins. Multiple candidates absorb field-name drift across
// template format revisions: a missing optional candidate is skipped
// silently, while a required mapping with no live candidate is flagged.
type FieldMapping struct {
	Logical    string
	Candidates []string
	Kind       FieldKind
	Normalize  Normalization
	Required   bool

	// TextFallback names free-text fields adjacent to a dropdown; used when
	// the value is absent from the dropdown's option domain.
	TextFallback []string
}

// CheckboxGroup maps one categorical logical field onto a group of mutually
// exclusive template checkboxes. Exactly one box is checked for a valid
// value; templates default every sibling to unchecked.
type CheckboxGroup struct {
	Logical  string
	Required bool

	// Options maps a categorical value to its checkbox name candidates.
	Options map[string][]string
}

// ConditionalGroup is a set of sub-fields that only applies when the
// selector field carries one of the listed values. The generator evaluates
// the selector first and populates the group only for the active branch.
type ConditionalGroup struct {
	Selector string
	When     []string
	Fields   []FieldMapping
}

func (g ConditionalGroup) active(data api.FormData) bool {
	v := data[g.Selector]
	for _, w := range g.When {
		if v == w {
			return true
		}
	}
	return false
}

// TemplateMapping is the full static mapping table for one template.
type TemplateMapping struct {
	TemplateID string
	Fields     []FieldMapping
	Checkboxes []CheckboxGroup
	Groups     []ConditionalGroup
}

// DefaultMappings returns the mapping tables for the standard onboarding
// templates. Candidate lists carry the field names of the template
// revisions in circulation.
func DefaultMappings() map[string]TemplateMapping {
	return map[string]TemplateMapping{
		"i9":               i9Mapping(),
		"w4":               w4Mapping(),
		"direct-deposit":   directDepositMapping(),
		"health-insurance": healthInsuranceMapping(),
	}
}

func i9Mapping() TemplateMapping {
	return TemplateMapping{
		TemplateID: "i9",
		Fields: []FieldMapping{
			{Logical: "lastName", Candidates: []string{"Last Name (Family Name)", "Last Name Family Name"}, Kind: KindText, Normalize: NormUppercase, Required: true},
			{Logical: "firstName", Candidates: []string{"First Name (Given Name)", "First Name Given Name"}, Kind: KindText, Normalize: NormUppercase, Required: true},
			{Logical: "middleInitial", Candidates: []string{"Employee Middle Initial (if any)", "Middle Initial"}, Kind: KindText, Normalize: NormUppercase},
			{Logical: "otherLastNames", Candidates: []string{"Employee Other Last Names Used (if any)", "Other Last Names Used"}, Kind: KindText, Normalize: NormUppercase},
			{Logical: "address1", Candidates: []string{"Address Street Number and Name"}, Kind: KindText, Required: true},
			{Logical: "aptNumber", Candidates: []string{"Apt Number (if any)", "Apt Number"}, Kind: KindText},
			{Logical: "city", Candidates: []string{"City or Town"}, Kind: KindText, Required: true},
			{Logical: "state", Candidates: []string{"State"}, Kind: KindDropdown, TextFallback: []string{"State Text"}, Required: true},
			{Logical: "zip", Candidates: []string{"ZIP Code", "Zip Code"}, Kind: KindText, Normalize: NormDigits, Required: true},
			{Logical: "dateOfBirth", Candidates: []string{"Date of Birth mmddyyyy", "Date of Birth"}, Kind: KindDate, Required: true},
			{Logical: "ssn", Candidates: []string{"US Social Security Number", "Social Security Number"}, Kind: KindText, Normalize: NormDigits, Required: true},
			{Logical: "email", Candidates: []string{"Employees E-mail Address", "Employee Email Address"}, Kind: KindText},
			{Logical: "phone", Candidates: []string{"Telephone Number", "Employees Telephone Number"}, Kind: KindText, Normalize: NormDigits},
			{Logical: "signatureDate", Candidates: []string{"Today's Date mmddyyy", "Today's Date mmddyyyy"}, Kind: KindDate},
		},
		Checkboxes: []CheckboxGroup{
			{
				Logical:  "citizenshipStatus",
				Required: true,
				Options: map[string][]string{
					string(api.CitizenUS):                 {"CB_1"},
					string(api.CitizenNoncitizenNational): {"CB_2"},
					string(api.CitizenPermanentResident):  {"CB_3"},
					string(api.CitizenAuthorizedAlien):    {"CB_4"},
				},
			},
		},
		Groups: []ConditionalGroup{
			{
				Selector: "citizenshipStatus",
				When:     []string{string(api.CitizenPermanentResident)},
				Fields: []FieldMapping{
					{Logical: "uscisNumber", Candidates: []string{"3 A lawful permanent resident Enter USCIS or ANumber", "USCIS ANumber"}, Kind: KindText, Required: true},
				},
			},
			{
				Selector: "citizenshipStatus",
				When:     []string{string(api.CitizenAuthorizedAlien)},
				Fields: []FieldMapping{
					{Logical: "workAuthExpiration", Candidates: []string{"Exp Date mmddyyyy", "Expiration Date if any"}, Kind: KindDate, Required: true},
					{Logical: "uscisNumber", Candidates: []string{"USCIS ANumber"}, Kind: KindText},
					{Logical: "i94Number", Candidates: []string{"Form I94 Admission Number", "I-94 Admission Number"}, Kind: KindText},
					{Logical: "foreignPassportNumber", Candidates: []string{"Foreign Passport Number", "Foreign Passport Number and Country of Issuance"}, Kind: KindText},
					{Logical: "passportCountry", Candidates: []string{"Country of Issuance"}, Kind: KindText},
				},
			},
			{
				Selector: "supplementKind",
				When:     []string{string(api.SupplementTranslator), string(api.SupplementPreparer)},
				Fields: []FieldMapping{
					{Logical: "assistantLastName", Candidates: []string{"Preparer or Translator Last Name (Family Name) 0", "Last Name of Preparer or Translator"}, Kind: KindText, Normalize: NormUppercase, Required: true},
					{Logical: "assistantFirstName", Candidates: []string{"Preparer or Translator First Name (Given Name) 0", "First Name of Preparer or Translator"}, Kind: KindText, Normalize: NormUppercase, Required: true},
					{Logical: "assistantAddress", Candidates: []string{"Preparer or Translator Address (Street Number and Name) 0", "Address of Preparer or Translator"}, Kind: KindText, Required: true},
				},
			},
		},
	}
}

func w4Mapping() TemplateMapping {
	return TemplateMapping{
		TemplateID: "w4",
		Fields: []FieldMapping{
			{Logical: "firstName", Candidates: []string{"topmostSubform[0].Page1[0].Step1a[0].f1_01[0]", "f1_01[0]"}, Kind: KindText, Required: true},
			{Logical: "lastName", Candidates: []string{"topmostSubform[0].Page1[0].Step1a[0].f1_02[0]", "f1_02[0]"}, Kind: KindText, Required: true},
			{Logical: "address1", Candidates: []string{"topmostSubform[0].Page1[0].Step1a[0].f1_03[0]", "f1_03[0]"}, Kind: KindText, Required: true},
			{Logical: "cityStateZip", Candidates: []string{"topmostSubform[0].Page1[0].Step1a[0].f1_04[0]", "f1_04[0]"}, Kind: KindText, Required: true},
			{Logical: "ssn", Candidates: []string{"topmostSubform[0].Page1[0].f1_05[0]", "f1_05[0]"}, Kind: KindText, Normalize: NormDigits, Required: true},
			{Logical: "dependentsAmount", Candidates: []string{"topmostSubform[0].Page1[0].f1_09[0]", "f1_09[0]"}, Kind: KindText},
			{Logical: "otherIncome", Candidates: []string{"topmostSubform[0].Page1[0].f1_10[0]", "f1_10[0]"}, Kind: KindText},
			{Logical: "deductions", Candidates: []string{"topmostSubform[0].Page1[0].f1_11[0]", "f1_11[0]"}, Kind: KindText},
			{Logical: "extraWithholding", Candidates: []string{"topmostSubform[0].Page1[0].f1_12[0]", "f1_12[0]"}, Kind: KindText},
			{Logical: "signatureDate", Candidates: []string{"topmostSubform[0].Page1[0].f1_14[0]", "f1_14[0]"}, Kind: KindDate},
		},
		Checkboxes: []CheckboxGroup{
			{
				Logical:  "filingStatus",
				Required: true,
				Options: map[string][]string{
					string(api.FilingSingle):          {"topmostSubform[0].Page1[0].c1_1[0]", "c1_1[0]"},
					string(api.FilingMarriedJointly):  {"topmostSubform[0].Page1[0].c1_1[1]", "c1_1[1]"},
					string(api.FilingHeadOfHousehold): {"topmostSubform[0].Page1[0].c1_1[2]", "c1_1[2]"},
				},
			},
		},
	}
}

func directDepositMapping() TemplateMapping {
	return TemplateMapping{
		TemplateID: "direct-deposit",
		Fields: []FieldMapping{
			{Logical: "employeeName", Candidates: []string{"Employee Name", "Name of Employee"}, Kind: KindText, Normalize: NormUppercase},
			{Logical: "bankName", Candidates: []string{"Bank Name", "Financial Institution"}, Kind: KindText},
			{Logical: "routingNumber", Candidates: []string{"Routing Number", "ABA Routing Number"}, Kind: KindText, Normalize: NormDigits, Required: true},
			{Logical: "accountNumber", Candidates: []string{"Account Number"}, Kind: KindText, Normalize: NormDigits, Required: true},
			{Logical: "signatureDate", Candidates: []string{"Date"}, Kind: KindDate},
		},
		Checkboxes: []CheckboxGroup{
			{
				Logical:  "accountType",
				Required: true,
				Options: map[string][]string{
					string(api.AccountChecking): {"Checking", "Account Type Checking"},
					string(api.AccountSavings):  {"Savings", "Account Type Savings"},
				},
			},
		},
	}
}

func healthInsuranceMapping() TemplateMapping {
	return TemplateMapping{
		TemplateID: "health-insurance",
		Fields: []FieldMapping{
			{Logical: "employeeName", Candidates: []string{"Employee Name"}, Kind: KindText, Normalize: NormUppercase},
			{Logical: "dateOfBirth", Candidates: []string{"Date of Birth"}, Kind: KindDate},
			{Logical: "plan", Candidates: []string{"Plan Selection", "Plan"}, Kind: KindDropdown, TextFallback: []string{"Plan Other"}, Required: true},
			{Logical: "dependents", Candidates: []string{"Number of Dependents"}, Kind: KindText, Normalize: NormDigits},
			{Logical: "signatureDate", Candidates: []string{"Date"}, Kind: KindDate},
		},
		Checkboxes: []CheckboxGroup{
			{
				Logical: "coverageTier",
				Options: map[string][]string{
					"employee":          {"Tier Employee Only"},
					"employee_spouse":   {"Tier Employee Spouse"},
					"employee_children": {"Tier Employee Children"},
					"family":            {"Tier Family"},
				},
			},
		},
		Groups: []ConditionalGroup{
			{
				Selector: "plan",
				When:     []string{string(api.PlanWaive)},
				Fields: []FieldMapping{
					{Logical: "waiveReason", Candidates: []string{"Waiver Reason", "Reason for Waiving Coverage"}, Kind: KindText, Required: true},
				},
			},
		},
	}
}
