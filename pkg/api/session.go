package api

import (
	"errors"
	"time"
)

// StepID identifies one unit of the onboarding wizard.
type StepID string

// The standard onboarding steps. Custom wizards may define their own IDs;
// these are the ones DefaultOnboardingWizard ships with.
const (
	StepPersonalInfo    StepID = "personal-info"
	StepI9              StepID = "i9"
	StepW4              StepID = "w4"
	StepDirectDeposit   StepID = "direct-deposit"
	StepHealthInsurance StepID = "health-insurance"
)

// StepStatus represents the lifecycle state of a single step.
type StepStatus string

const (
	StatusNotStarted    StepStatus = "NOT_STARTED"
	StatusInProgress    StepStatus = "IN_PROGRESS"
	StatusReviewPending StepStatus = "REVIEW_PENDING"
	StatusComplete      StepStatus = "COMPLETE"
)

// SupplementKind selects one of the mutually exclusive assistance sub-flows
// a step may offer. Exactly one kind is active at a time; switching kinds
// discards the previously entered supplement data.
type SupplementKind string

const (
	SupplementNone       SupplementKind = "NONE"
	SupplementTranslator SupplementKind = "TRANSLATOR"
	SupplementPreparer   SupplementKind = "PREPARER"
)

// FormData is the flat, step-shaped payload a form produces. Keys are
// logical field names ("lastName", "dateOfBirth"); values are raw user input.
type FormData map[string]string

// Clone returns an independent copy of the form data.
// Clone of nil data returns an empty, non-nil map so callers can write to it.
func (d FormData) Clone() FormData {
	out := make(FormData, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// StepDefinition describes one step of a wizard. Definitions are created at
// configuration time and never mutated afterwards.
type StepDefinition struct {
	ID    StepID
	Title string

	// Order is the display position of the step within the wizard.
	Order int

	// Prereqs lists the steps that must be Complete before this step
	// unlocks. An empty list means the step is always reachable.
	Prereqs []StepID

	// RequiresSignature gates the ReviewPending -> Complete transition on a
	// captured SignatureArtifact.
	RequiresSignature bool

	// Supplements lists the assistance sub-flows this step offers.
	// Empty means the step has no sub-flow; SupplementNone need not be listed.
	Supplements []SupplementKind
}

// WizardDefinition describes a wizard as an ordered set of steps.
type WizardDefinition struct {
	Name  string
	Steps []StepDefinition
}

// Step returns the definition for the given ID.
func (w WizardDefinition) Step(id StepID) (StepDefinition, bool) {
	for _, s := range w.Steps {
		if s.ID == id {
			return s, true
		}
	}
	return StepDefinition{}, false
}

// Supplement is the active assistance branch of a step, if any.
type Supplement struct {
	Kind SupplementKind
	Data FormData
}

// StepProgress tracks one employee's progress through one step.
//
// Data is mutated by the auto-save coordinator; Status, Signature and
// CompletedAt are written only by the step controller.
type StepProgress struct {
	StepID     StepID
	Status     StepStatus
	Data       FormData
	Supplement Supplement
	Signature  *SignatureArtifact

	// CompletedAt is zero until the step reaches StatusComplete.
	CompletedAt time.Time

	// Seq is the sequence number of the latest snapshot applied to this
	// step. Stores reject writes carrying a lower or equal number.
	Seq uint64
}

// WorkflowSession is the aggregate for one employee's onboarding run.
// It is single-writer: only the employee performing onboarding mutates it.
type WorkflowSession struct {
	ID         string
	EmployeeID string
	PropertyID string

	// Steps is ordered to match the wizard definition.
	Steps []StepProgress

	ActiveStep StepID

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Step returns the progress record for the given step, or nil if the
// session does not contain it.
func (s *WorkflowSession) Step(id StepID) *StepProgress {
	for i := range s.Steps {
		if s.Steps[i].StepID == id {
			return &s.Steps[i]
		}
	}
	return nil
}

// SaveStatus is the externally visible state of the auto-save coordinator.
type SaveStatus string

const (
	SaveIdle   SaveStatus = "IDLE"
	SaveSaving SaveStatus = "SAVING"
	SaveSaved  SaveStatus = "SAVED"
	SaveError  SaveStatus = "ERROR"
)

var (
	// ErrStepLocked is returned when a step is entered or finalized while
	// one of its prerequisites is not Complete.
	ErrStepLocked = errors.New("step locked: prerequisites not complete")

	// ErrStepNotFound is returned for step IDs the wizard does not define.
	ErrStepNotFound = errors.New("step not found")

	// ErrTransitionInFlight is returned when a transition is requested while
	// a prior transition for the same session is still being applied.
	ErrTransitionInFlight = errors.New("transition already in flight")

	// ErrSignatureRequired is returned when a step configured for signing
	// is finalized without a SignatureArtifact.
	ErrSignatureRequired = errors.New("signature required to complete step")

	// ErrNotInReview is returned when Complete or Edit is requested for a
	// step that has not reached ReviewPending.
	ErrNotInReview = errors.New("step is not in review")
)
