package api

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Observer receives callbacks from the workflow engine for logging and
// metrics.
//
// Implementations should be fast and non-blocking; heavy work should be done
// asynchronously so as not to delay the step controller.
type Observer interface {
	// OnSessionStart is called once when a WorkflowSession is first created
	// or resumed from durable storage.
	OnSessionStart(ctx context.Context, sess *WorkflowSession)

	// OnStepSubmitted is called after a step's data is run through its
	// validator on explicit submission, for both outcomes.
	OnStepSubmitted(ctx context.Context, sess *WorkflowSession, step StepID, res Result)

	// OnStepCompleted is called when a step transitions to StatusComplete.
	OnStepCompleted(ctx context.Context, sess *WorkflowSession, step StepID)

	// OnAutoSave is called after each persist attempt of the auto-save
	// coordinator (err != nil for failed attempts).
	OnAutoSave(ctx context.Context, step StepID, seq uint64, err error)

	// OnDocumentGenerated is called after a document-generation call
	// returns, for both successes and failures.
	OnDocumentGenerated(ctx context.Context, templateID string, unmapped int, err error, duration time.Duration)
}

// NoopObserver is an Observer that does nothing.
// It is used as the default when no observer is configured.
type NoopObserver struct{}

func (NoopObserver) OnSessionStart(ctx context.Context, sess *WorkflowSession) {}
func (NoopObserver) OnStepSubmitted(ctx context.Context, sess *WorkflowSession, step StepID, res Result) {
}
func (NoopObserver) OnStepCompleted(ctx context.Context, sess *WorkflowSession, step StepID) {}
func (NoopObserver) OnAutoSave(ctx context.Context, step StepID, seq uint64, err error)      {}
func (NoopObserver) OnDocumentGenerated(ctx context.Context, templateID string, unmapped int, err error, d time.Duration) {
}

// CompositeObserver fans out events to multiple observers.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an Observer that forwards events to each
// non-nil observer in obs.
func NewCompositeObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnSessionStart(ctx context.Context, sess *WorkflowSession) {
	for _, o := range c.observers {
		o.OnSessionStart(ctx, sess)
	}
}

func (c *CompositeObserver) OnStepSubmitted(ctx context.Context, sess *WorkflowSession, step StepID, res Result) {
	for _, o := range c.observers {
		o.OnStepSubmitted(ctx, sess, step, res)
	}
}

func (c *CompositeObserver) OnStepCompleted(ctx context.Context, sess *WorkflowSession, step StepID) {
	for _, o := range c.observers {
		o.OnStepCompleted(ctx, sess, step)
	}
}

func (c *CompositeObserver) OnAutoSave(ctx context.Context, step StepID, seq uint64, err error) {
	for _, o := range c.observers {
		o.OnAutoSave(ctx, step, seq, err)
	}
}

func (c *CompositeObserver) OnDocumentGenerated(ctx context.Context, templateID string, unmapped int, err error, d time.Duration) {
	for _, o := range c.observers {
		o.OnDocumentGenerated(ctx, templateID, unmapped, err, d)
	}
}

// LoggingObserver writes structured logs using log/slog.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver creates an Observer that logs session / step lifecycle
// events using the provided slog.Logger. If logger is nil, slog.Default()
// is used.
func NewLoggingObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnSessionStart(ctx context.Context, sess *WorkflowSession) {
	o.Logger.InfoContext(ctx, "session_start",
		slog.String("session_id", sess.ID),
		slog.String("employee_id", sess.EmployeeID),
	)
}

func (o *LoggingObserver) OnStepSubmitted(ctx context.Context, sess *WorkflowSession, step StepID, res Result) {
	level := slog.LevelDebug
	if !res.Valid {
		level = slog.LevelInfo
	}
	o.Logger.Log(ctx, level, "step_submitted",
		slog.String("session_id", sess.ID),
		slog.String("step", string(step)),
		slog.Bool("valid", res.Valid),
		slog.Int("field_errors", len(res.FieldErrors)),
	)
}

func (o *LoggingObserver) OnStepCompleted(ctx context.Context, sess *WorkflowSession, step StepID) {
	o.Logger.InfoContext(ctx, "step_completed",
		slog.String("session_id", sess.ID),
		slog.String("step", string(step)),
	)
}

func (o *LoggingObserver) OnAutoSave(ctx context.Context, step StepID, seq uint64, err error) {
	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelWarn
	}
	o.Logger.Log(ctx, level, "autosave",
		slog.String("step", string(step)),
		slog.Uint64("seq", seq),
		slog.Any("error", err),
	)
}

func (o *LoggingObserver) OnDocumentGenerated(ctx context.Context, templateID string, unmapped int, err error, d time.Duration) {
	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelError
	}
	o.Logger.Log(ctx, level, "document_generated",
		slog.String("template", templateID),
		slog.Int("unmapped_fields", unmapped),
		slog.Duration("duration", d),
		slog.Any("error", err),
	)
}

// BasicMetrics collects simple counters for sessions, steps, saves and
// generated documents. It implements Observer, and can be combined with
// LoggingObserver via NewCompositeObserver.
type BasicMetrics struct {
	NoopObserver

	sessionsStarted    atomic.Int64
	stepsSubmitted     atomic.Int64
	stepsRejected      atomic.Int64
	stepsCompleted     atomic.Int64
	savesApplied       atomic.Int64
	savesFailed        atomic.Int64
	documentsGenerated atomic.Int64
	documentsFailed    atomic.Int64
}

// BasicMetricsSnapshot is an immutable snapshot of BasicMetrics.
type BasicMetricsSnapshot struct {
	SessionsStarted    int64
	StepsSubmitted     int64
	StepsRejected      int64
	StepsCompleted     int64
	SavesApplied       int64
	SavesFailed        int64
	DocumentsGenerated int64
	DocumentsFailed    int64
}

func (m *BasicMetrics) OnSessionStart(ctx context.Context, sess *WorkflowSession) {
	m.sessionsStarted.Add(1)
}

func (m *BasicMetrics) OnStepSubmitted(ctx context.Context, sess *WorkflowSession, step StepID, res Result) {
	m.stepsSubmitted.Add(1)
	if !res.Valid {
		m.stepsRejected.Add(1)
	}
}

func (m *BasicMetrics) OnStepCompleted(ctx context.Context, sess *WorkflowSession, step StepID) {
	m.stepsCompleted.Add(1)
}

func (m *BasicMetrics) OnAutoSave(ctx context.Context, step StepID, seq uint64, err error) {
	if err != nil {
		m.savesFailed.Add(1)
		return
	}
	m.savesApplied.Add(1)
}

func (m *BasicMetrics) OnDocumentGenerated(ctx context.Context, templateID string, unmapped int, err error, d time.Duration) {
	if err != nil {
		m.documentsFailed.Add(1)
		return
	}
	m.documentsGenerated.Add(1)
}

// Snapshot returns a snapshot of the current metrics.
func (m *BasicMetrics) Snapshot() BasicMetricsSnapshot {
	return BasicMetricsSnapshot{
		SessionsStarted:    m.sessionsStarted.Load(),
		StepsSubmitted:     m.stepsSubmitted.Load(),
		StepsRejected:      m.stepsRejected.Load(),
		StepsCompleted:     m.stepsCompleted.Load(),
		SavesApplied:       m.savesApplied.Load(),
		SavesFailed:        m.savesFailed.Load(),
		DocumentsGenerated: m.documentsGenerated.Load(),
		DocumentsFailed:    m.documentsFailed.Load(),
	}
}
