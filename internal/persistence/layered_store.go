package persistence

import (
	"context"
	"errors"

	"github.com/hirewire/onboard/pkg/api"
)

// LayeredStore implements the dual-write policy: every write goes to a fast
// local cache AND to a remote durable store. The local tier is written
// first and unconditionally; if the remote write fails, the error is
// surfaced so the caller can retry, while the local tier keeps the newer
// snapshot. Local therefore wins on conflict until the remote write
// succeeds.
//
// Reads consult both tiers and return whichever snapshot carries the higher
// sequence number, so a session resumed after a failed remote write still
// sees its latest local state.
type LayeredStore struct {
	local  SnapshotStore
	remote SnapshotStore
}

var _ SnapshotStore = (*LayeredStore)(nil)

// NewLayeredStore combines a local cache tier with a remote durable tier.
func NewLayeredStore(local, remote SnapshotStore) *LayeredStore {
	return &LayeredStore{local: local, remote: remote}
}

func (s *LayeredStore) SaveSession(ctx context.Context, sess *api.WorkflowSession) error {
	if err := s.local.SaveSession(ctx, sess); err != nil {
		return err
	}
	return s.remote.SaveSession(ctx, sess)
}

func (s *LayeredStore) GetSession(ctx context.Context, employeeID string) (*api.WorkflowSession, error) {
	sess, err := s.local.GetSession(ctx, employeeID)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, ErrSessionNotFound) {
		return nil, err
	}
	return s.remote.GetSession(ctx, employeeID)
}

func (s *LayeredStore) PutSnapshot(ctx context.Context, snap StepSnapshot) error {
	// A stale local write means a newer snapshot is already cached; the
	// remote tier still needs the attempt because it may be behind.
	if err := s.local.PutSnapshot(ctx, snap); err != nil && !errors.Is(err, ErrStaleSnapshot) {
		return err
	}
	return s.remote.PutSnapshot(ctx, snap)
}

func (s *LayeredStore) GetSnapshot(ctx context.Context, employeeID string, step api.StepID) (StepSnapshot, error) {
	local, lerr := s.local.GetSnapshot(ctx, employeeID, step)
	remote, rerr := s.remote.GetSnapshot(ctx, employeeID, step)

	switch {
	case lerr == nil && rerr == nil:
		if local.Progress.Seq >= remote.Progress.Seq {
			return local, nil
		}
		return remote, nil
	case lerr == nil:
		if errors.Is(rerr, ErrSnapshotNotFound) {
			return local, nil
		}
		// Remote unreachable: fall back to the cache rather than failing
		// recovery outright.
		return local, nil
	case rerr == nil:
		if errors.Is(lerr, ErrSnapshotNotFound) {
			return remote, nil
		}
		return remote, nil
	default:
		if errors.Is(rerr, ErrSnapshotNotFound) && errors.Is(lerr, ErrSnapshotNotFound) {
			return StepSnapshot{}, ErrSnapshotNotFound
		}
		return StepSnapshot{}, rerr
	}
}

func (s *LayeredStore) ListSnapshots(ctx context.Context, employeeID string) ([]StepSnapshot, error) {
	remote, err := s.remote.ListSnapshots(ctx, employeeID)
	if err != nil {
		remote = nil // remote unreachable; recover from the cache alone
	}
	local, lerr := s.local.ListSnapshots(ctx, employeeID)
	if lerr != nil && err != nil {
		return nil, err
	}

	// Merge per step, higher sequence number wins.
	merged := make(map[api.StepID]StepSnapshot, len(remote)+len(local))
	for _, snap := range remote {
		merged[snap.Progress.StepID] = snap
	}
	for _, snap := range local {
		if cur, ok := merged[snap.Progress.StepID]; !ok || snap.Progress.Seq >= cur.Progress.Seq {
			merged[snap.Progress.StepID] = snap
		}
	}

	out := make([]StepSnapshot, 0, len(merged))
	for _, snap := range merged {
		out = append(out, snap)
	}
	return out, nil
}
