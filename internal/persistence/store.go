package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/hirewire/onboard/pkg/api"
)

var (
	// ErrSessionNotFound is returned when no session exists for an employee.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSnapshotNotFound is returned when a step has never been persisted.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrStaleSnapshot is returned when a write carries a lower sequence
	// number than the snapshot already stored. Out-of-order completions of
	// overlapping persist calls hit this; callers treat it as a discard,
	// not a failure.
	ErrStaleSnapshot = errors.New("stale snapshot: newer sequence already stored")
)

// StepSnapshot is the unit of durable per-step state. One snapshot exists
// per (employee, step); writes supersede each other by sequence number.
type StepSnapshot struct {
	EmployeeID string
	Progress   api.StepProgress
	SavedAt    time.Time
}

// SnapshotStore is the persistence port for onboarding state. The session
// header and the per-step snapshots are stored separately so that auto-save
// can persist a single step without rewriting the whole session.
//
// Stores must enforce sequence ordering: a PutSnapshot whose sequence number
// is lower than the stored one returns ErrStaleSnapshot and leaves the
// stored snapshot untouched. Writes with an equal or higher sequence number
// are applied; re-applying the same snapshot is idempotent.
type SnapshotStore interface {
	// SaveSession upserts the session header (identity, active step,
	// timestamps). Step snapshots are not touched.
	SaveSession(ctx context.Context, sess *api.WorkflowSession) error

	// GetSession returns the session header for an employee. Steps are
	// left empty; callers hydrate them via ListSnapshots.
	GetSession(ctx context.Context, employeeID string) (*api.WorkflowSession, error)

	// PutSnapshot upserts one step snapshot, subject to the sequence rule.
	PutSnapshot(ctx context.Context, snap StepSnapshot) error

	// GetSnapshot returns the stored snapshot for one step.
	GetSnapshot(ctx context.Context, employeeID string, step api.StepID) (StepSnapshot, error)

	// ListSnapshots returns all stored snapshots for an employee.
	ListSnapshots(ctx context.Context, employeeID string) ([]StepSnapshot, error)
}
