package onboard

import (
	"fmt"

	"github.com/hirewire/onboard/pkg/api"
)

// WizardBuilder provides a fluent API for defining onboarding wizards:
//
//	wizard := onboard.NewWizard("standard").
//	    Step("personal-info", "Personal Information").
//	    Step("i9", "Employment Eligibility",
//	        onboard.After("personal-info"),
//	        onboard.Signed(),
//	        onboard.WithSupplements(onboard.SupplementTranslator)).
//	    Definition()
type WizardBuilder struct {
	def api.WizardDefinition
}

// StepOption customizes one step definition.
type StepOption func(*api.StepDefinition)

// After declares the step's prerequisites. A step unlocks only once every
// prerequisite is Complete.
func After(prereqs ...StepID) StepOption {
	return func(def *api.StepDefinition) {
		def.Prereqs = append(def.Prereqs, prereqs...)
	}
}

// Signed requires a captured SignatureArtifact to complete the step.
func Signed() StepOption {
	return func(def *api.StepDefinition) {
		def.RequiresSignature = true
	}
}

// WithSupplements declares the assistance sub-flows the step offers.
func WithSupplements(kinds ...SupplementKind) StepOption {
	return func(def *api.StepDefinition) {
		def.Supplements = append(def.Supplements, kinds...)
	}
}

// NewWizard creates a new wizard builder with the given name.
func NewWizard(name string) *WizardBuilder {
	return &WizardBuilder{
		def: api.WizardDefinition{
			Name:  name,
			Steps: make([]api.StepDefinition, 0),
		},
	}
}

// Name returns the wizard name.
func (b *WizardBuilder) Name() string {
	return b.def.Name
}

// Step appends a step. Display order follows insertion order.
func (b *WizardBuilder) Step(id StepID, title string, opts ...StepOption) *WizardBuilder {
	if id == "" {
		panic("onboard: step id must not be empty")
	}
	for _, existing := range b.def.Steps {
		if existing.ID == id {
			panic(fmt.Sprintf("onboard: step %q defined twice", id))
		}
	}

	def := api.StepDefinition{
		ID:    id,
		Title: title,
		Order: len(b.def.Steps),
	}
	for _, opt := range opts {
		opt(&def)
	}

	b.def.Steps = append(b.def.Steps, def)
	return b
}

// Definition returns the built WizardDefinition.
func (b *WizardBuilder) Definition() WizardDefinition {
	// Prerequisites must refer to earlier-defined steps; a forward or
	// unknown reference would deadlock the wizard.
	seen := make(map[StepID]bool, len(b.def.Steps))
	for _, step := range b.def.Steps {
		for _, pre := range step.Prereqs {
			if !seen[pre] {
				panic(fmt.Sprintf("onboard: step %q lists unknown or later prerequisite %q", step.ID, pre))
			}
		}
		seen[step.ID] = true
	}
	return b.def
}

// DefaultOnboardingWizard is the standard five-step compliance wizard:
// personal information first, then the government forms and benefit
// elections, each gated on the personal information step.
func DefaultOnboardingWizard() WizardDefinition {
	return NewWizard("standard-onboarding").
		Step(api.StepPersonalInfo, "Personal Information").
		Step(api.StepI9, "Employment Eligibility Verification (I-9)",
			After(api.StepPersonalInfo),
			Signed(),
			WithSupplements(SupplementTranslator, SupplementPreparer)).
		Step(api.StepW4, "Employee's Withholding Certificate (W-4)",
			After(api.StepPersonalInfo),
			Signed()).
		Step(api.StepDirectDeposit, "Direct Deposit Enrollment",
			After(api.StepPersonalInfo),
			Signed()).
		Step(api.StepHealthInsurance, "Health Insurance Election",
			After(api.StepPersonalInfo)).
		Definition()
}
