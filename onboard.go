package onboard

import (
	"context"
	"database/sql"

	"github.com/redis/go-redis/v9"

	"github.com/hirewire/onboard/internal/engine"
	"github.com/hirewire/onboard/internal/persistence"
	"github.com/hirewire/onboard/pkg/api"
)

// Re-export key types so users don't need to dig into pkg/api.

type (
	StepID            = api.StepID
	StepStatus        = api.StepStatus
	StepDefinition    = api.StepDefinition
	WizardDefinition  = api.WizardDefinition
	StepProgress      = api.StepProgress
	WorkflowSession   = api.WorkflowSession
	FormData          = api.FormData
	Supplement        = api.Supplement
	SupplementKind    = api.SupplementKind
	SignatureArtifact = api.SignatureArtifact
	Acknowledgment    = api.Acknowledgment
	Result            = api.Result
	Validator         = api.Validator
	ValidatorFunc     = api.ValidatorFunc
	SaveStatus        = api.SaveStatus
	RetryPolicy       = api.RetryPolicy
	Observer          = api.Observer
	LoggingObserver   = api.LoggingObserver
	NoopObserver      = api.NoopObserver
	CompositeObserver = api.CompositeObserver
	BasicMetrics      = api.BasicMetrics

	// Controller drives one employee's onboarding session; see the
	// internal engine package for its methods.
	Controller = engine.Controller

	// Notifier receives fire-and-forget step-completion notifications.
	Notifier = engine.Notifier
)

// Re-export common observer helpers.

var (
	NewLoggingObserver   = api.NewLoggingObserver
	NewCompositeObserver = api.NewCompositeObserver
)

// Re-export status values for convenience.

const (
	StatusNotStarted    = api.StatusNotStarted
	StatusInProgress    = api.StatusInProgress
	StatusReviewPending = api.StatusReviewPending
	StatusComplete      = api.StatusComplete

	SaveIdle   = api.SaveIdle
	SaveSaving = api.SaveSaving
	SaveSaved  = api.SaveSaved
	SaveError  = api.SaveError

	SupplementNone       = api.SupplementNone
	SupplementTranslator = api.SupplementTranslator
	SupplementPreparer   = api.SupplementPreparer
)

// Portal constructors
// These wrap the internal engine and persistence packages so external
// callers never need to import internal packages.

// NewInMemoryPortal returns a Portal backed entirely by an in-memory store.
// State does not survive the process; intended for tests and development.
func NewInMemoryPortal(cfg Config) *Portal {
	return newPortal(persistence.NewInMemoryStore(), cfg)
}

// NewSQLitePortal returns a Portal that persists onboarding state in a
// SQLite database. The caller is responsible for importing a SQLite
// driver, e.g.:
//
//	import _ "modernc.org/sqlite"
func NewSQLitePortal(db *sql.DB, cfg Config) (*Portal, error) {
	store, err := persistence.NewSQLiteSnapshotStore(db)
	if err != nil {
		return nil, err
	}
	return newPortal(store, cfg), nil
}

// NewLayeredPortal returns a Portal with the dual-write policy wired up:
// every snapshot goes to a fast Redis cache AND to a durable SQLite store.
// On conflict the cache wins until the durable write succeeds.
func NewLayeredPortal(client *redis.Client, db *sql.DB, cfg Config) (*Portal, error) {
	remote, err := persistence.NewSQLiteSnapshotStore(db)
	if err != nil {
		return nil, err
	}
	local := persistence.NewRedisSnapshotStore(client, "onboard:")
	return newPortal(persistence.NewLayeredStore(local, remote), cfg), nil
}

// Convenience helpers that just forward to the underlying Controller.

// Submit validates the step's current data and moves it into review.
func Submit(ctx context.Context, ctrl *Controller, step StepID) (Result, error) {
	return ctrl.Submit(ctx, step)
}

// Complete finalizes a reviewed step with optional final data and signature.
func Complete(ctx context.Context, ctrl *Controller, step StepID, finalData FormData, sig *SignatureArtifact) (Result, error) {
	return ctrl.Complete(ctx, step, finalData, sig)
}
