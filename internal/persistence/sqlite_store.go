package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hirewire/onboard/pkg/api"
)

// SQLiteSnapshotStore is a SnapshotStore backed by SQLite. It is the
// "remote durable" tier of the dual-write policy in single-binary
// deployments.
//
// It expects an *sql.DB that uses a SQLite driver (for example,
// "modernc.org/sqlite"). The caller is responsible for importing
// the driver, e.g.:
//
//	import _ "modernc.org/sqlite"
type SQLiteSnapshotStore struct {
	db *sql.DB
}

// Ensure SQLiteSnapshotStore implements SnapshotStore.
var _ SnapshotStore = (*SQLiteSnapshotStore)(nil)

// NewSQLiteSnapshotStore initializes the required schema in the given
// database and returns a new SQLiteSnapshotStore.
func NewSQLiteSnapshotStore(db *sql.DB) (*SQLiteSnapshotStore, error) {
	s := &SQLiteSnapshotStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteSnapshotStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS onboarding_sessions (
			employee_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			property_id TEXT NOT NULL,
			active_step TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS step_snapshots (
			employee_id TEXT NOT NULL,
			step_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			snapshot BLOB NOT NULL,
			saved_at INTEGER NOT NULL,
			PRIMARY KEY (employee_id, step_id)
		);`,
	)
	return err
}

func (s *SQLiteSnapshotStore) SaveSession(ctx context.Context, sess *api.WorkflowSession) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO onboarding_sessions (employee_id, session_id, property_id, active_step, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (employee_id) DO UPDATE SET
			session_id = excluded.session_id,
			property_id = excluded.property_id,
			active_step = excluded.active_step,
			updated_at = excluded.updated_at`,
		sess.EmployeeID,
		sess.ID,
		sess.PropertyID,
		string(sess.ActiveStep),
		sess.CreatedAt.UnixNano(),
		sess.UpdatedAt.UnixNano(),
	)
	return err
}

func (s *SQLiteSnapshotStore) GetSession(ctx context.Context, employeeID string) (*api.WorkflowSession, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT session_id, property_id, active_step, created_at, updated_at
		FROM onboarding_sessions
		WHERE employee_id = ?`,
		employeeID,
	)

	var (
		sess       api.WorkflowSession
		activeStep string
		createdAt  int64
		updatedAt  int64
	)
	if err := row.Scan(&sess.ID, &sess.PropertyID, &activeStep, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	sess.EmployeeID = employeeID
	sess.ActiveStep = api.StepID(activeStep)
	sess.CreatedAt = time.Unix(0, createdAt)
	sess.UpdatedAt = time.Unix(0, updatedAt)
	return &sess, nil
}

func (s *SQLiteSnapshotStore) PutSnapshot(ctx context.Context, snap StepSnapshot) error {
	blob, err := EncodeSnapshot(snap)
	if err != nil {
		return err
	}

	savedAt := snap.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}

	// The WHERE clause on the upsert enforces the sequence rule atomically:
	// an older write changes no rows, which we report as a stale snapshot.
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO step_snapshots (employee_id, step_id, seq, snapshot, saved_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (employee_id, step_id) DO UPDATE SET
			seq = excluded.seq,
			snapshot = excluded.snapshot,
			saved_at = excluded.saved_at
		WHERE excluded.seq >= step_snapshots.seq`,
		snap.EmployeeID,
		string(snap.Progress.StepID),
		snap.Progress.Seq,
		blob,
		savedAt.UnixNano(),
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrStaleSnapshot
	}
	return nil
}

func (s *SQLiteSnapshotStore) GetSnapshot(ctx context.Context, employeeID string, step api.StepID) (StepSnapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT snapshot FROM step_snapshots
		WHERE employee_id = ? AND step_id = ?`,
		employeeID,
		string(step),
	)

	var blob []byte
	if err := row.Scan(&blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return StepSnapshot{}, ErrSnapshotNotFound
		}
		return StepSnapshot{}, err
	}

	return DecodeSnapshot(blob)
}

func (s *SQLiteSnapshotStore) ListSnapshots(ctx context.Context, employeeID string) ([]StepSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT snapshot FROM step_snapshots
		WHERE employee_id = ?
		ORDER BY step_id ASC`,
		employeeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StepSnapshot
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return nil, err
		}
		snap, err := DecodeSnapshot(blob)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}
