package onboard

import (
	"context"
	"errors"
	"time"

	"github.com/hirewire/onboard/internal/autosave"
	"github.com/hirewire/onboard/internal/engine"
	"github.com/hirewire/onboard/internal/persistence"
	"github.com/hirewire/onboard/pkg/docgen"
	"github.com/hirewire/onboard/pkg/validate"
)

// Config describes how a Portal builds the controllers it hands out.
// Zero values fall back to sensible defaults: the standard wizard, the
// standard validators, a 750ms debounce, and five-attempt exponential
// retry on persistence.
type Config struct {
	// Wizard is the step configuration. Defaults to DefaultOnboardingWizard.
	Wizard WizardDefinition

	// Validators maps steps to their validators. Defaults to the standard
	// onboarding validators.
	Validators *validate.Registry

	// Templates maps a step to the document template rendered during its
	// review phase. Defaults to the standard template IDs.
	Templates map[StepID]string

	// Generator renders review documents. Nil disables document previews
	// and document gating.
	Generator *docgen.Generator

	// Debounce is the auto-save quiet period.
	Debounce time.Duration

	// PersistTimeout bounds each persist attempt.
	PersistTimeout time.Duration

	// SaveRetry controls retries of failed persist attempts.
	SaveRetry RetryPolicy

	// Notifier receives fire-and-forget step-completion notifications.
	Notifier Notifier

	// Observer receives session, step, auto-save and document events.
	Observer Observer
}

// Portal bundles a snapshot store with the wizard configuration and opens
// one Controller per employee session.
//
// Typical usage:
//
//	portal := onboard.NewInMemoryPortal(onboard.Config{})
//	ctrl, sess, err := portal.StartOnboarding(ctx, employeeID, propertyID)
//	...
//	ctrl, sess, err = portal.ResumeOnboarding(ctx, employeeID) // after reload
type Portal struct {
	store persistence.SnapshotStore
	cfg   Config
}

func newPortal(store persistence.SnapshotStore, cfg Config) *Portal {
	if len(cfg.Wizard.Steps) == 0 {
		cfg.Wizard = DefaultOnboardingWizard()
	}
	return &Portal{store: store, cfg: cfg}
}

// Controller builds a Controller for the employee without touching storage.
// Most callers want StartOnboarding or ResumeOnboarding instead.
func (p *Portal) Controller(employeeID string) *Controller {
	return engine.New(p.store, employeeID, engine.Config{
		Wizard:     p.cfg.Wizard,
		Validators: p.cfg.Validators,
		Templates:  p.cfg.Templates,
		Generator:  p.cfg.Generator,
		Autosave: autosave.Config{
			Debounce:       p.cfg.Debounce,
			PersistTimeout: p.cfg.PersistTimeout,
			Retry:          p.cfg.SaveRetry,
		},
		Notifier: p.cfg.Notifier,
		Observer: p.cfg.Observer,
	})
}

// StartOnboarding creates a fresh session for the employee and returns the
// controller driving it.
func (p *Portal) StartOnboarding(ctx context.Context, employeeID, propertyID string) (*Controller, *WorkflowSession, error) {
	ctrl := p.Controller(employeeID)
	sess, err := ctrl.StartSession(ctx, employeeID, propertyID)
	if err != nil {
		return nil, nil, err
	}
	return ctrl, sess, nil
}

// ResumeOnboarding reconstructs the employee's session from durable storage
// after a reload or device change.
func (p *Portal) ResumeOnboarding(ctx context.Context, employeeID string) (*Controller, *WorkflowSession, error) {
	ctrl := p.Controller(employeeID)
	sess, err := ctrl.ResumeSession(ctx, employeeID)
	if err != nil {
		return nil, nil, err
	}
	return ctrl, sess, nil
}

// HasSession reports whether durable state exists for the employee.
func (p *Portal) HasSession(ctx context.Context, employeeID string) (bool, error) {
	_, err := p.store.GetSession(ctx, employeeID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, persistence.ErrSessionNotFound) {
		return false, nil
	}
	return false, err
}
