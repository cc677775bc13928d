package docgen

import (
	"context"
	"errors"
	"testing"

	"github.com/hirewire/onboard/pkg/api"
)

//
// Helpers
//

// fakeFiller records the plan it was asked to serialize and returns fixed
// bytes, so generator tests do not need real PDF templates.
type fakeFiller struct {
	lastPlan FillPlan
	err      error
}

func (f *fakeFiller) Fill(ctx context.Context, template []byte, plan FillPlan) ([]byte, error) {
	f.lastPlan = plan
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-filled"), nil
}

func i9Catalog() *DocumentFieldMap {
	return NewDocumentFieldMap("i9", []TemplateField{
		{Name: "Last Name (Family Name)", Kind: KindText},
		{Name: "First Name (Given Name)", Kind: KindText},
		{Name: "Employee Middle Initial (if any)", Kind: KindText},
		{Name: "Employee Other Last Names Used (if any)", Kind: KindText},
		{Name: "Address Street Number and Name", Kind: KindText},
		{Name: "Apt Number (if any)", Kind: KindText},
		{Name: "City or Town", Kind: KindText},
		{Name: "State", Kind: KindDropdown, Options: []string{"OH", "CA", "NY"}},
		{Name: "ZIP Code", Kind: KindText},
		{Name: "Date of Birth mmddyyyy", Kind: KindDate},
		{Name: "US Social Security Number", Kind: KindText},
		{Name: "Employees E-mail Address", Kind: KindText},
		{Name: "Telephone Number", Kind: KindText},
		{Name: "Today's Date mmddyyy", Kind: KindDate},
		{Name: "CB_1", Kind: KindCheckbox},
		{Name: "CB_2", Kind: KindCheckbox},
		{Name: "CB_3", Kind: KindCheckbox},
		{Name: "CB_4", Kind: KindCheckbox},
		{Name: "3 A lawful permanent resident Enter USCIS or ANumber", Kind: KindText},
		{Name: "Exp Date mmddyyyy", Kind: KindDate},
		{Name: "USCIS ANumber", Kind: KindText},
		{Name: "Form I94 Admission Number", Kind: KindText},
		{Name: "Foreign Passport Number", Kind: KindText},
		{Name: "Country of Issuance", Kind: KindText},
		{Name: "Preparer or Translator Last Name (Family Name) 0", Kind: KindText},
		{Name: "Preparer or Translator First Name (Given Name) 0", Kind: KindText},
		{Name: "Preparer or Translator Address (Street Number and Name) 0", Kind: KindText},
	})
}

func i9Data() api.FormData {
	return api.FormData{
		"lastName":          "Lovelace",
		"firstName":         "Ada",
		"address1":          "1 Analytical Way",
		"city":              "Columbus",
		"state":             "OH",
		"zip":               "43004",
		"dateOfBirth":       "1990-12-10",
		"ssn":               "123-45-6789",
		"citizenshipStatus": string(api.CitizenUS),
	}
}

func newI9Generator(t *testing.T, filler FormFiller) *Generator {
	t.Helper()

	source := StaticTemplateSource{"i9": []byte("%PDF-template")}
	gen := NewGenerator(source, filler, Config{})
	if err := gen.RegisterCatalog(i9Catalog()); err != nil {
		t.Fatalf("RegisterCatalog failed: %v", err)
	}
	return gen
}

//
// Generate
//

func TestGenerate_TextFieldsEncodedPerKind(t *testing.T) {
	filler := &fakeFiller{}
	gen := newI9Generator(t, filler)

	doc, err := gen.Generate(context.Background(), "i9", i9Data())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	// Name fields are upper-cased.
	if got := filler.lastPlan.Text["Last Name (Family Name)"]; got != "LOVELACE" {
		t.Fatalf("expected upper-cased last name, got %q", got)
	}
	// Dates are rewritten into the template's MM/DD/YYYY form.
	if got := filler.lastPlan.Text["Date of Birth mmddyyyy"]; got != "12/10/1990" {
		t.Fatalf("expected 12/10/1990, got %q", got)
	}
	// Identifier fields are reduced to digits.
	if got := filler.lastPlan.Text["US Social Security Number"]; got != "123456789" {
		t.Fatalf("expected digits-only SSN, got %q", got)
	}
	// In-domain dropdown values are selected, not written as text.
	if got := filler.lastPlan.Choices["State"]; got != "OH" {
		t.Fatalf("expected State choice OH, got %q", got)
	}

	if len(doc.Bytes) == 0 {
		t.Fatalf("expected document bytes")
	}
	if doc.BlocksFinalization() {
		t.Fatalf("expected no missing required fields, got %v", doc.MissingRequired)
	}
}

func TestGenerate_CheckboxGroupMutuallyExclusive(t *testing.T) {
	filler := &fakeFiller{}
	gen := newI9Generator(t, filler)

	data := i9Data()
	data["citizenshipStatus"] = string(api.CitizenPermanentResident)
	data["uscisNumber"] = "A 123-456-789"

	if _, err := gen.Generate(context.Background(), "i9", data); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !filler.lastPlan.Checks["CB_3"] {
		t.Fatalf("expected CB_3 checked for permanent resident, got %v", filler.lastPlan.Checks)
	}
	for _, sibling := range []string{"CB_1", "CB_2", "CB_4"} {
		if _, present := filler.lastPlan.Checks[sibling]; present {
			t.Fatalf("expected sibling %s untouched, got %v", sibling, filler.lastPlan.Checks)
		}
	}
}

func TestGenerate_ConditionalGroupOnlyWhenActive(t *testing.T) {
	filler := &fakeFiller{}
	gen := newI9Generator(t, filler)

	// A US citizen never populates the permanent-resident group, even when
	// stray data is present.
	data := i9Data()
	data["uscisNumber"] = "A123456789"

	if _, err := gen.Generate(context.Background(), "i9", data); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, present := filler.lastPlan.Text["3 A lawful permanent resident Enter USCIS or ANumber"]; present {
		t.Fatalf("expected inactive group to stay unpopulated, got %v", filler.lastPlan.Text)
	}

	// Switching the selector activates the group.
	data["citizenshipStatus"] = string(api.CitizenPermanentResident)
	if _, err := gen.Generate(context.Background(), "i9", data); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got := filler.lastPlan.Text["3 A lawful permanent resident Enter USCIS or ANumber"]; got != "A123456789" {
		t.Fatalf("expected USCIS number placed, got %q", got)
	}
}

func TestGenerate_SupplementGroupAppliesForBothKinds(t *testing.T) {
	filler := &fakeFiller{}
	gen := newI9Generator(t, filler)

	data := i9Data()
	data["supplementKind"] = string(api.SupplementTranslator)
	data["assistantLastName"] = "Diaz"
	data["assistantFirstName"] = "Maria"
	data["assistantAddress"] = "10 Elm St"

	if _, err := gen.Generate(context.Background(), "i9", data); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got := filler.lastPlan.Text["Preparer or Translator Last Name (Family Name) 0"]; got != "DIAZ" {
		t.Fatalf("expected translator name placed, got %q", got)
	}
}

func TestGenerate_MissingOptionalFieldIsDiagnosticOnly(t *testing.T) {
	filler := &fakeFiller{}
	gen := newI9Generator(t, filler)

	// No email, no phone: both are optional mappings.
	doc, err := gen.Generate(context.Background(), "i9", i9Data())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if doc.BlocksFinalization() {
		t.Fatalf("expected optional omissions not to block, got %v", doc.MissingRequired)
	}
	if len(doc.Bytes) == 0 {
		t.Fatalf("expected a complete document despite optional omissions")
	}
}

func TestGenerate_MissingRequiredFieldReported(t *testing.T) {
	filler := &fakeFiller{}
	gen := newI9Generator(t, filler)

	data := i9Data()
	delete(data, "lastName")

	doc, err := gen.Generate(context.Background(), "i9", data)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !doc.BlocksFinalization() {
		t.Fatalf("expected missing required field to block finalization")
	}
	found := false
	for _, logical := range doc.MissingRequired {
		if logical == "lastName" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected lastName in MissingRequired, got %v", doc.MissingRequired)
	}
}

func TestGenerate_InvalidDateNeverPropagates(t *testing.T) {
	filler := &fakeFiller{}
	gen := newI9Generator(t, filler)

	data := i9Data()
	data["dateOfBirth"] = "1990-02-30"

	doc, err := gen.Generate(context.Background(), "i9", data)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, present := filler.lastPlan.Text["Date of Birth mmddyyyy"]; present {
		t.Fatalf("expected invalid date not to be written, got %v", filler.lastPlan.Text)
	}
	if !doc.BlocksFinalization() {
		t.Fatalf("expected required invalid date to block finalization")
	}
}

func TestGenerate_DropdownFallbackToAdjacentTextField(t *testing.T) {
	source := StaticTemplateSource{"health-insurance": []byte("%PDF-template")}
	filler := &fakeFiller{}
	gen := NewGenerator(source, filler, Config{})

	cat := NewDocumentFieldMap("health-insurance", []TemplateField{
		{Name: "Employee Name", Kind: KindText},
		{Name: "Date of Birth", Kind: KindDate},
		{Name: "Plan Selection", Kind: KindDropdown, Options: []string{"hmo", "ppo"}},
		{Name: "Plan Other", Kind: KindText},
		{Name: "Number of Dependents", Kind: KindText},
		{Name: "Date", Kind: KindDate},
		{Name: "Tier Employee Only", Kind: KindCheckbox},
		{Name: "Tier Employee Spouse", Kind: KindCheckbox},
		{Name: "Tier Employee Children", Kind: KindCheckbox},
		{Name: "Tier Family", Kind: KindCheckbox},
		{Name: "Waiver Reason", Kind: KindText},
	})
	if err := gen.RegisterCatalog(cat); err != nil {
		t.Fatalf("RegisterCatalog failed: %v", err)
	}

	// hdhp is outside this revision's dropdown domain, so it lands in the
	// adjacent free-text field.
	doc, err := gen.Generate(context.Background(), "health-insurance", api.FormData{
		"employeeName": "Ada Lovelace",
		"dateOfBirth":  "1990-12-10",
		"plan":         "hdhp",
		"coverageTier": "family",
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got := filler.lastPlan.Text["Plan Other"]; got != "hdhp" {
		t.Fatalf("expected fallback text hdhp, got %q", got)
	}
	if _, present := filler.lastPlan.Choices["Plan Selection"]; present {
		t.Fatalf("expected dropdown untouched for out-of-domain value")
	}
	if doc.BlocksFinalization() {
		t.Fatalf("expected fallback to satisfy the required mapping, got %v", doc.MissingRequired)
	}
	if !filler.lastPlan.Checks["Tier Family"] {
		t.Fatalf("expected family tier checked, got %v", filler.lastPlan.Checks)
	}
}

func TestGenerate_UnknownTemplate(t *testing.T) {
	gen := NewGenerator(StaticTemplateSource{}, &fakeFiller{}, Config{})

	_, err := gen.Generate(context.Background(), "offer-letter", api.FormData{})
	if !errors.Is(err, ErrUnknownTemplate) {
		t.Fatalf("expected ErrUnknownTemplate, got %v", err)
	}
}

func TestGenerate_TemplateFetchFailureIsHard(t *testing.T) {
	// Mapping and catalog registered, but no template bytes behind them.
	filler := &fakeFiller{}
	gen := NewGenerator(StaticTemplateSource{}, filler, Config{})
	if err := gen.RegisterCatalog(i9Catalog()); err != nil {
		t.Fatalf("RegisterCatalog failed: %v", err)
	}

	doc, err := gen.Generate(context.Background(), "i9", i9Data())
	if !errors.Is(err, ErrTemplateUnavailable) {
		t.Fatalf("expected ErrTemplateUnavailable, got %v", err)
	}
	if doc != nil {
		t.Fatalf("expected no partial document, got %+v", doc)
	}
}

func TestGenerate_FillerFailureIsHard(t *testing.T) {
	filler := &fakeFiller{err: errors.New("corrupt xref")}
	gen := newI9Generator(t, filler)

	_, err := gen.Generate(context.Background(), "i9", i9Data())
	if err == nil {
		t.Fatalf("expected serialization failure to abort generation")
	}
}

func TestGenerate_CandidateListAbsorbsNameDrift(t *testing.T) {
	// A template revision renaming its fields still maps through the
	// later candidates.
	source := StaticTemplateSource{"i9": []byte("%PDF-template")}
	filler := &fakeFiller{}
	gen := NewGenerator(source, filler, Config{})

	cat := NewDocumentFieldMap("i9", []TemplateField{
		{Name: "Last Name Family Name", Kind: KindText},
		{Name: "First Name Given Name", Kind: KindText},
		{Name: "Address Street Number and Name", Kind: KindText},
		{Name: "City or Town", Kind: KindText},
		{Name: "State", Kind: KindDropdown, Options: []string{"OH"}},
		{Name: "Zip Code", Kind: KindText},
		{Name: "Date of Birth", Kind: KindDate},
		{Name: "Social Security Number", Kind: KindText},
		{Name: "CB_1", Kind: KindCheckbox},
		{Name: "CB_2", Kind: KindCheckbox},
		{Name: "CB_3", Kind: KindCheckbox},
		{Name: "CB_4", Kind: KindCheckbox},
		{Name: "USCIS ANumber", Kind: KindText},
		{Name: "Expiration Date if any", Kind: KindDate},
		{Name: "Form I94 Admission Number", Kind: KindText},
		{Name: "Foreign Passport Number", Kind: KindText},
		{Name: "Country of Issuance", Kind: KindText},
		{Name: "Last Name of Preparer or Translator", Kind: KindText},
		{Name: "First Name of Preparer or Translator", Kind: KindText},
		{Name: "Address of Preparer or Translator", Kind: KindText},
	})
	if err := gen.RegisterCatalog(cat); err != nil {
		t.Fatalf("RegisterCatalog failed: %v", err)
	}

	if _, err := gen.Generate(context.Background(), "i9", i9Data()); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got := filler.lastPlan.Text["Last Name Family Name"]; got != "LOVELACE" {
		t.Fatalf("expected drifted candidate to receive the value, got %q", got)
	}
}

//
// RegisterCatalog
//

func TestRegisterCatalog_RejectsDeadRequiredMappings(t *testing.T) {
	gen := NewGenerator(StaticTemplateSource{}, &fakeFiller{}, Config{})

	// A catalog missing every name-field candidate must be rejected at
	// registration, not at generation time.
	cat := NewDocumentFieldMap("i9", []TemplateField{
		{Name: "Some Unrelated Field", Kind: KindText},
	})

	err := gen.RegisterCatalog(cat)
	if err == nil {
		t.Fatalf("expected registration to fail for dead required mappings")
	}
}

func TestRegisterCatalog_UnknownTemplate(t *testing.T) {
	gen := NewGenerator(StaticTemplateSource{}, &fakeFiller{}, Config{})

	cat := NewDocumentFieldMap("offer-letter", []TemplateField{
		{Name: "Name", Kind: KindText},
	})
	if err := gen.RegisterCatalog(cat); !errors.Is(err, ErrUnknownTemplate) {
		t.Fatalf("expected ErrUnknownTemplate, got %v", err)
	}
}

func w4Catalog() *DocumentFieldMap {
	return NewDocumentFieldMap("w4", []TemplateField{
		{Name: "topmostSubform[0].Page1[0].Step1a[0].f1_01[0]", Kind: KindText},
		{Name: "topmostSubform[0].Page1[0].Step1a[0].f1_02[0]", Kind: KindText},
		{Name: "topmostSubform[0].Page1[0].Step1a[0].f1_03[0]", Kind: KindText},
		{Name: "topmostSubform[0].Page1[0].Step1a[0].f1_04[0]", Kind: KindText},
		{Name: "topmostSubform[0].Page1[0].f1_05[0]", Kind: KindText},
		{Name: "topmostSubform[0].Page1[0].f1_09[0]", Kind: KindText},
		{Name: "topmostSubform[0].Page1[0].f1_10[0]", Kind: KindText},
		{Name: "topmostSubform[0].Page1[0].f1_11[0]", Kind: KindText},
		{Name: "topmostSubform[0].Page1[0].f1_12[0]", Kind: KindText},
		{Name: "topmostSubform[0].Page1[0].f1_14[0]", Kind: KindDate},
		{Name: "topmostSubform[0].Page1[0].c1_1[0]", Kind: KindCheckbox},
		{Name: "topmostSubform[0].Page1[0].c1_1[1]", Kind: KindCheckbox},
		{Name: "topmostSubform[0].Page1[0].c1_1[2]", Kind: KindCheckbox},
	})
}

func directDepositCatalog() *DocumentFieldMap {
	return NewDocumentFieldMap("direct-deposit", []TemplateField{
		{Name: "Employee Name", Kind: KindText},
		{Name: "Bank Name", Kind: KindText},
		{Name: "Routing Number", Kind: KindText},
		{Name: "Account Number", Kind: KindText},
		{Name: "Date", Kind: KindDate},
		{Name: "Checking", Kind: KindCheckbox},
		{Name: "Savings", Kind: KindCheckbox},
	})
}

// The W-4 template carries city, state and ZIP as a single line; the
// wizard collects them piecewise, so the generator composes the line.
func TestGenerate_ComposesCityStateZipLine(t *testing.T) {
	filler := &fakeFiller{}
	source := StaticTemplateSource{"w4": []byte("%PDF-template")}
	gen := NewGenerator(source, filler, Config{})
	if err := gen.RegisterCatalog(w4Catalog()); err != nil {
		t.Fatalf("RegisterCatalog failed: %v", err)
	}

	doc, err := gen.Generate(context.Background(), "w4", api.FormData{
		"firstName":    "Ada",
		"lastName":     "Lovelace",
		"address1":     "1 Analytical Way",
		"city":         "Columbus",
		"state":        "OH",
		"zip":          "43004",
		"ssn":          "123456789",
		"filingStatus": "single",
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if got := filler.lastPlan.Text["topmostSubform[0].Page1[0].Step1a[0].f1_04[0]"]; got != "Columbus, OH 43004" {
		t.Fatalf("expected composed city/state/ZIP line, got %q", got)
	}
	if doc.BlocksFinalization() {
		t.Fatalf("expected no blockers, got %v", doc.MissingRequired)
	}
}

func TestGenerate_CallerSuppliedCompositeWins(t *testing.T) {
	filler := &fakeFiller{}
	source := StaticTemplateSource{"w4": []byte("%PDF-template")}
	gen := NewGenerator(source, filler, Config{})
	if err := gen.RegisterCatalog(w4Catalog()); err != nil {
		t.Fatalf("RegisterCatalog failed: %v", err)
	}

	_, err := gen.Generate(context.Background(), "w4", api.FormData{
		"firstName":    "Ada",
		"lastName":     "Lovelace",
		"address1":     "1 Analytical Way",
		"city":         "Columbus",
		"state":        "OH",
		"zip":          "43004",
		"cityStateZip": "Dayton, OH 45402",
		"ssn":          "123456789",
		"filingStatus": "single",
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if got := filler.lastPlan.Text["topmostSubform[0].Page1[0].Step1a[0].f1_04[0]"]; got != "Dayton, OH 45402" {
		t.Fatalf("expected caller-supplied line kept, got %q", got)
	}
}

func TestGenerate_ComposesEmployeeName(t *testing.T) {
	filler := &fakeFiller{}
	source := StaticTemplateSource{"direct-deposit": []byte("%PDF-template")}
	gen := NewGenerator(source, filler, Config{})
	if err := gen.RegisterCatalog(directDepositCatalog()); err != nil {
		t.Fatalf("RegisterCatalog failed: %v", err)
	}

	doc, err := gen.Generate(context.Background(), "direct-deposit", api.FormData{
		"firstName":     "Ada",
		"lastName":      "Lovelace",
		"routingNumber": "044000037",
		"accountNumber": "9876543210",
		"accountType":   "checking",
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if got := filler.lastPlan.Text["Employee Name"]; got != "ADA LOVELACE" {
		t.Fatalf("expected composed upper-cased name, got %q", got)
	}
	if doc.BlocksFinalization() {
		t.Fatalf("expected no blockers, got %v", doc.MissingRequired)
	}
}

// The banking step collects no identity fields; a generation fed only the
// step's own data must not be blocked by the name box.
func TestGenerate_DirectDepositWithoutNameIsNotBlocked(t *testing.T) {
	filler := &fakeFiller{}
	source := StaticTemplateSource{"direct-deposit": []byte("%PDF-template")}
	gen := NewGenerator(source, filler, Config{})
	if err := gen.RegisterCatalog(directDepositCatalog()); err != nil {
		t.Fatalf("RegisterCatalog failed: %v", err)
	}

	doc, err := gen.Generate(context.Background(), "direct-deposit", api.FormData{
		"routingNumber": "044000037",
		"accountNumber": "9876543210",
		"accountType":   "checking",
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if doc.BlocksFinalization() {
		t.Fatalf("expected name box to be diagnostic only, got %v", doc.MissingRequired)
	}
	if _, ok := filler.lastPlan.Text["Employee Name"]; ok {
		t.Fatalf("expected name box left empty without identity data")
	}
	if !filler.lastPlan.Checks["Checking"] {
		t.Fatalf("expected checking box checked")
	}
}
