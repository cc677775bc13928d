package persistence

import (
	"context"
	"sync"

	"github.com/hirewire/onboard/pkg/api"
)

// InMemoryStore is a simple, goroutine-safe SnapshotStore backed by maps.
// It is non-durable and intended for tests and the in-memory portal.
type InMemoryStore struct {
	mu        sync.RWMutex
	sessions  map[string]*api.WorkflowSession
	snapshots map[string]map[api.StepID]StepSnapshot
}

// NewInMemoryStore creates a new InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		sessions:  make(map[string]*api.WorkflowSession),
		snapshots: make(map[string]map[api.StepID]StepSnapshot),
	}
}

// Ensure InMemoryStore implements the interface.
var _ SnapshotStore = (*InMemoryStore)(nil)

func (s *InMemoryStore) SaveSession(ctx context.Context, sess *api.WorkflowSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Store the header only; steps live in snapshots.
	header := *sess
	header.Steps = nil
	s.sessions[sess.EmployeeID] = &header
	return nil
}

func (s *InMemoryStore) GetSession(ctx context.Context, employeeID string) (*api.WorkflowSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[employeeID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	out := *sess
	return &out, nil
}

func (s *InMemoryStore) PutSnapshot(ctx context.Context, snap StepSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	steps := s.snapshots[snap.EmployeeID]
	if steps == nil {
		steps = make(map[api.StepID]StepSnapshot)
		s.snapshots[snap.EmployeeID] = steps
	}

	if existing, ok := steps[snap.Progress.StepID]; ok && snap.Progress.Seq < existing.Progress.Seq {
		return ErrStaleSnapshot
	}

	steps[snap.Progress.StepID] = snap
	return nil
}

func (s *InMemoryStore) GetSnapshot(ctx context.Context, employeeID string, step api.StepID) (StepSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[employeeID][step]
	if !ok {
		return StepSnapshot{}, ErrSnapshotNotFound
	}
	return snap, nil
}

func (s *InMemoryStore) ListSnapshots(ctx context.Context, employeeID string) ([]StepSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	steps := s.snapshots[employeeID]
	out := make([]StepSnapshot, 0, len(steps))
	for _, snap := range steps {
		out = append(out, snap)
	}
	return out, nil
}
