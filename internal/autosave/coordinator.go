// Package autosave implements the debounced persistence coordinator that
// captures in-progress step data without explicit user submission.
//
// The coordinator coalesces keystroke-level edits into a single persist
// call after a quiet period, tags every persist attempt with a
// monotonically increasing sequence number, and retries failed writes with
// bounded exponential backoff. A snapshot is never dropped: until a write
// (or a newer write for the same step) succeeds, it stays queued.
package autosave

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hirewire/onboard/internal/persistence"
	"github.com/hirewire/onboard/pkg/api"
)

// Config holds the coordinator knobs. Zero values fall back to defaults.
type Config struct {
	// Debounce is the quiet period after the last edit before a persist
	// is triggered. Default 750ms.
	Debounce time.Duration

	// PersistTimeout bounds each individual persist attempt. Default 10s.
	PersistTimeout time.Duration

	// Retry controls how failed persist attempts are retried.
	// Default: 5 attempts, 250ms initial backoff, 5s cap.
	Retry api.RetryPolicy
}

func (c Config) withDefaults() Config {
	if c.Debounce <= 0 {
		c.Debounce = 750 * time.Millisecond
	}
	if c.PersistTimeout <= 0 {
		c.PersistTimeout = 10 * time.Second
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry = api.RetryPolicy{
			MaxAttempts:    5,
			InitialBackoff: 250 * time.Millisecond,
			MaxBackoff:     5 * time.Second,
		}
	}
	return c
}

// Coordinator debounces and persists step snapshots for one employee
// session. It is safe for concurrent use, though sessions are single-writer
// by design.
type Coordinator struct {
	store    persistence.SnapshotStore
	employee string
	cfg      Config
	obs      api.Observer

	mu       sync.Mutex
	pending  map[api.StepID]persistence.StepSnapshot
	status   api.SaveStatus
	seq      uint64
	timer    *time.Timer
	flushing bool
	closed   bool
}

// New creates a Coordinator persisting through the given store.
// If obs is nil, events are discarded.
func New(store persistence.SnapshotStore, employeeID string, cfg Config, obs api.Observer) *Coordinator {
	if obs == nil {
		obs = api.NoopObserver{}
	}
	return &Coordinator{
		store:    store,
		employee: employeeID,
		cfg:      cfg.withDefaults(),
		obs:      obs,
		pending:  make(map[api.StepID]persistence.StepSnapshot),
		status:   api.SaveIdle,
	}
}

// Status reports the externally visible save state.
func (c *Coordinator) Status() api.SaveStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Seq returns the sequence number of the most recently scheduled snapshot.
func (c *Coordinator) Seq() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Advance raises the sequence counter to at least seq. Called when a
// session is resumed so that new snapshots outrank everything already
// stored from earlier runs.
func (c *Coordinator) Advance(seq uint64) {
	c.mu.Lock()
	if seq > c.seq {
		c.seq = seq
	}
	c.mu.Unlock()
}

// Save schedules a debounced persist of the given step progress. The
// snapshot supersedes any still-pending snapshot for the same step; the
// debounce window restarts on every call.
//
// The returned sequence number identifies this snapshot; stores discard any
// write carrying a lower number.
func (c *Coordinator) Save(progress api.StepProgress) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return c.seq
	}

	c.seq++
	progress.Seq = c.seq
	progress.Data = progress.Data.Clone()

	c.pending[progress.StepID] = persistence.StepSnapshot{
		EmployeeID: c.employee,
		Progress:   progress,
		SavedAt:    time.Now(),
	}

	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.cfg.Debounce, c.flushAsync)

	return c.seq
}

// SaveNow persists the given step progress immediately, bypassing the
// debounce window. It is used for finalization writes so the completion
// snapshot always carries a sequence number greater than any pending
// auto-save; a late-arriving older auto-save is then discarded by the store.
func (c *Coordinator) SaveNow(ctx context.Context, progress api.StepProgress) (uint64, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return c.seq, errors.New("autosave: coordinator closed")
	}

	c.seq++
	progress.Seq = c.seq
	progress.Data = progress.Data.Clone()

	snap := persistence.StepSnapshot{
		EmployeeID: c.employee,
		Progress:   progress,
		SavedAt:    time.Now(),
	}

	// The immediate write supersedes whatever was debounced for this step.
	delete(c.pending, progress.StepID)
	c.mu.Unlock()

	err := c.persistOne(ctx, snap)
	if err != nil {
		c.setStatus(api.SaveError)
		return progress.Seq, err
	}
	c.setStatus(api.SaveSaved)
	return progress.Seq, nil
}

// Flush persists all pending snapshots synchronously, retrying per the
// configured policy. It returns the last error once attempts are exhausted;
// unsaved snapshots remain queued.
func (c *Coordinator) Flush(ctx context.Context) error {
	return c.flush(ctx)
}

// Close stops the debounce timer and attempts one final flush of pending
// snapshots. The coordinator accepts no further saves afterwards.
func (c *Coordinator) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()

	return c.flush(ctx)
}

func (c *Coordinator) setStatus(s api.SaveStatus) {
	c.mu.Lock()
	c.status = s
	c.mu.Unlock()
}

// flushAsync runs in the debounce timer's goroutine.
func (c *Coordinator) flushAsync() {
	_ = c.flush(context.Background())
}

func (c *Coordinator) flush(ctx context.Context) error {
	c.mu.Lock()
	if c.flushing {
		// A flush is already draining the queue; it will pick up anything
		// added since it started.
		c.mu.Unlock()
		return nil
	}
	c.flushing = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.flushing = false
		c.mu.Unlock()
	}()

	// A save landing while a pass is in flight is deflected by the flushing
	// guard above, so each successful pass re-checks the queue and drains
	// again until it is empty.
	for {
		var lastErr error
		for attempt := 1; attempt <= c.cfg.Retry.MaxAttempts; attempt++ {
			if attempt > 1 {
				delay := c.cfg.Retry.Delay(attempt - 1)
				select {
				case <-ctx.Done():
					c.setStatus(api.SaveError)
					return ctx.Err()
				case <-time.After(delay):
				}
			}

			lastErr = c.persistPending(ctx)
			if lastErr == nil {
				break
			}
		}
		if lastErr != nil {
			c.setStatus(api.SaveError)
			return lastErr
		}

		c.mu.Lock()
		drained := len(c.pending) == 0
		c.mu.Unlock()
		if drained {
			return nil
		}
	}
}

// persistPending writes every queued snapshot once. Snapshots are removed
// from the queue only when the write succeeds and no newer snapshot for the
// same step arrived meanwhile.
func (c *Coordinator) persistPending(ctx context.Context) error {
	c.mu.Lock()
	if len(c.pending) == 0 {
		if c.status == api.SaveSaving {
			c.status = api.SaveSaved
		}
		c.mu.Unlock()
		return nil
	}
	c.status = api.SaveSaving
	batch := make([]persistence.StepSnapshot, 0, len(c.pending))
	for _, snap := range c.pending {
		batch = append(batch, snap)
	}
	c.mu.Unlock()

	var firstErr error
	for _, snap := range batch {
		err := c.persistOne(ctx, snap)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		c.mu.Lock()
		if cur, ok := c.pending[snap.Progress.StepID]; ok && cur.Progress.Seq == snap.Progress.Seq {
			delete(c.pending, snap.Progress.StepID)
		}
		c.mu.Unlock()
	}

	if firstErr != nil {
		c.setStatus(api.SaveError)
		return firstErr
	}
	c.setStatus(api.SaveSaved)
	return nil
}

func (c *Coordinator) persistOne(ctx context.Context, snap persistence.StepSnapshot) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.PersistTimeout)
	defer cancel()

	err := c.store.PutSnapshot(ctx, snap)
	if errors.Is(err, persistence.ErrStaleSnapshot) {
		// A newer snapshot is already durable; this write is obsolete,
		// not failed.
		err = nil
	}

	c.obs.OnAutoSave(ctx, snap.Progress.StepID, snap.Progress.Seq, err)
	return err
}
