// Package engine implements the step controller: the state machine that
// drives an employee through the onboarding wizard.
//
// Per step the machine is
//
//	NotStarted -> InProgress -> ReviewPending -> Complete
//
// with Edit as the always-permitted backward transition out of
// ReviewPending. The controller is the single writer of step status;
// form data flows through the auto-save coordinator.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hirewire/onboard/internal/autosave"
	"github.com/hirewire/onboard/internal/persistence"
	"github.com/hirewire/onboard/pkg/api"
	"github.com/hirewire/onboard/pkg/docgen"
	"github.com/hirewire/onboard/pkg/validate"
)

// ErrDocumentIncomplete is returned when finalization is blocked because a
// required template field could not be mapped.
var ErrDocumentIncomplete = errors.New("document has unmapped required fields")

// Notifier receives fire-and-forget notifications after a step completes.
// Implementations must not block; delivery failures are the notifier's own
// concern.
type Notifier interface {
	StepCompleted(ctx context.Context, sess *api.WorkflowSession, step api.StepID)
}

// NoopNotifier discards all notifications.
type NoopNotifier struct{}

func (NoopNotifier) StepCompleted(ctx context.Context, sess *api.WorkflowSession, step api.StepID) {}

// Config describes how to construct a Controller.
type Config struct {
	Wizard     api.WizardDefinition
	Validators *validate.Registry

	// SupplementValidators validate the data of an active assistance
	// branch. Branches without an entry are accepted as-is.
	SupplementValidators map[api.SupplementKind]api.Validator

	// Templates maps a step to the document template rendered during its
	// review phase. Steps without an entry have no document preview.
	Templates map[api.StepID]string

	// Generator renders review documents. Nil disables document gating.
	Generator *docgen.Generator

	Autosave autosave.Config
	Notifier Notifier
	Observer api.Observer
}

func (c Config) withDefaults() Config {
	if c.Validators == nil {
		c.Validators = validate.Default()
	}
	if c.SupplementValidators == nil {
		c.SupplementValidators = map[api.SupplementKind]api.Validator{
			api.SupplementTranslator: api.ValidatorFunc(validate.I9Translator),
			api.SupplementPreparer:   api.ValidatorFunc(validate.I9Preparer),
		}
	}
	if c.Templates == nil {
		c.Templates = map[api.StepID]string{
			api.StepI9:              "i9",
			api.StepW4:              "w4",
			api.StepDirectDeposit:   "direct-deposit",
			api.StepHealthInsurance: "health-insurance",
		}
	}
	if c.Notifier == nil {
		c.Notifier = NoopNotifier{}
	}
	if c.Observer == nil {
		c.Observer = api.NoopObserver{}
	}
	return c
}

// Controller drives one employee's onboarding session. It owns the
// in-memory WorkflowSession and serializes all transitions: a transition
// requested while another is in flight is rejected with
// api.ErrTransitionInFlight so the caller can re-request once the prior one
// resolves (last requested wins).
type Controller struct {
	cfg   Config
	store persistence.SnapshotStore
	saver *autosave.Coordinator

	mu       sync.Mutex
	sess     *api.WorkflowSession
	inFlight bool
}

// New creates a Controller for one employee backed by the given store.
func New(store persistence.SnapshotStore, employeeID string, cfg Config) *Controller {
	cfg = cfg.withDefaults()
	return &Controller{
		cfg:   cfg,
		store: store,
		saver: autosave.New(store, employeeID, cfg.Autosave, cfg.Observer),
	}
}

// StartSession creates a fresh WorkflowSession for the employee, with every
// wizard step at NotStarted and the first step active.
func (c *Controller) StartSession(ctx context.Context, employeeID, propertyID string) (*api.WorkflowSession, error) {
	if len(c.cfg.Wizard.Steps) == 0 {
		return nil, errors.New("wizard has no steps")
	}

	now := time.Now().UTC()
	sess := &api.WorkflowSession{
		ID:         uuid.NewString(),
		EmployeeID: employeeID,
		PropertyID: propertyID,
		ActiveStep: c.cfg.Wizard.Steps[0].ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, def := range c.cfg.Wizard.Steps {
		sess.Steps = append(sess.Steps, api.StepProgress{
			StepID:     def.ID,
			Status:     api.StatusNotStarted,
			Data:       api.FormData{},
			Supplement: api.Supplement{Kind: api.SupplementNone},
		})
	}

	if err := c.store.SaveSession(ctx, sess); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.sess = sess
	c.mu.Unlock()

	c.cfg.Observer.OnSessionStart(ctx, sess)
	return c.snapshotSession(), nil
}

// Session returns a copy of the current session state.
func (c *Controller) Session() *api.WorkflowSession {
	return c.snapshotSession()
}

// SaveStatus reports the auto-save coordinator's externally visible state.
func (c *Controller) SaveStatus() api.SaveStatus {
	return c.saver.Status()
}

// Flush forces any pending auto-save writes through synchronously.
func (c *Controller) Flush(ctx context.Context) error {
	return c.saver.Flush(ctx)
}

// Close flushes pending writes and stops the auto-save coordinator.
func (c *Controller) Close(ctx context.Context) error {
	return c.saver.Close(ctx)
}

// IsStepUnlocked reports whether every prerequisite of the step is
// Complete. This is the sole gating mechanism for navigation.
func (c *Controller) IsStepUnlocked(id api.StepID) (bool, error) {
	def, ok := c.cfg.Wizard.Step(id)
	if !ok {
		return false, fmt.Errorf("%w: %s", api.ErrStepNotFound, id)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return false, persistence.ErrSessionNotFound
	}

	for _, pre := range def.Prereqs {
		prog := c.sess.Step(pre)
		if prog == nil || prog.Status != api.StatusComplete {
			return false, nil
		}
	}
	return true, nil
}

// OpenStep makes the step active. Navigation within the unlocked region is
// non-linear; a step whose prerequisites are unmet cannot be entered.
func (c *Controller) OpenStep(ctx context.Context, id api.StepID) error {
	unlocked, err := c.IsStepUnlocked(id)
	if err != nil {
		return err
	}
	if !unlocked {
		return fmt.Errorf("%w: %s", api.ErrStepLocked, id)
	}

	c.mu.Lock()
	prog := c.sess.Step(id)
	if prog.Status == api.StatusNotStarted {
		prog.Status = api.StatusInProgress
	}
	c.sess.ActiveStep = id
	c.sess.UpdatedAt = time.Now().UTC()
	header := *c.sess
	header.Steps = nil
	snapshot := *prog
	c.mu.Unlock()

	c.saver.Save(snapshot)
	return c.store.SaveSession(ctx, &header)
}

// SetStepData records an in-progress edit and schedules a debounced
// persist. It never blocks and never fails on storage trouble; persistence
// state is observable via SaveStatus.
func (c *Controller) SetStepData(id api.StepID, data api.FormData) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	prog, err := c.editableStep(id)
	if err != nil {
		return err
	}

	prog.Data = data.Clone()
	if prog.Status == api.StatusNotStarted {
		prog.Status = api.StatusInProgress
	}
	c.sess.UpdatedAt = time.Now().UTC()

	c.saver.Save(*prog)
	return nil
}

// SelectSupplement activates one of the step's mutually exclusive
// assistance branches. Switching branches discards the previously entered
// branch data; the branches are alternatives, not cumulative.
func (c *Controller) SelectSupplement(id api.StepID, kind api.SupplementKind) error {
	def, ok := c.cfg.Wizard.Step(id)
	if !ok {
		return fmt.Errorf("%w: %s", api.ErrStepNotFound, id)
	}
	if kind != api.SupplementNone && !supplementAllowed(def, kind) {
		return fmt.Errorf("step %s does not offer supplement %s", id, kind)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	prog, err := c.editableStep(id)
	if err != nil {
		return err
	}

	if prog.Supplement.Kind == kind {
		return nil
	}
	prog.Supplement = api.Supplement{Kind: kind, Data: api.FormData{}}
	c.sess.UpdatedAt = time.Now().UTC()

	c.saver.Save(*prog)
	return nil
}

// SetSupplementData records edits to the active assistance branch.
func (c *Controller) SetSupplementData(id api.StepID, data api.FormData) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	prog, err := c.editableStep(id)
	if err != nil {
		return err
	}
	if prog.Supplement.Kind == api.SupplementNone {
		return fmt.Errorf("step %s has no active supplement", id)
	}

	prog.Supplement.Data = data.Clone()
	c.sess.UpdatedAt = time.Now().UTC()

	c.saver.Save(*prog)
	return nil
}

// Submit validates the step's current data and, on success, moves it to
// ReviewPending. Validation failures are returned in the Result and block
// only this transition.
func (c *Controller) Submit(ctx context.Context, id api.StepID) (api.Result, error) {
	if err := c.begin(); err != nil {
		return api.Result{}, err
	}
	defer c.end()

	unlocked, err := c.IsStepUnlocked(id)
	if err != nil {
		return api.Result{}, err
	}
	if !unlocked {
		return api.Result{}, fmt.Errorf("%w: %s", api.ErrStepLocked, id)
	}

	c.mu.Lock()
	prog := c.sess.Step(id)
	if prog == nil {
		c.mu.Unlock()
		return api.Result{}, fmt.Errorf("%w: %s", api.ErrStepNotFound, id)
	}
	if prog.Status == api.StatusComplete {
		c.mu.Unlock()
		return api.Result{}, fmt.Errorf("step %s is already complete", id)
	}
	data := prog.Data.Clone()
	supplement := prog.Supplement
	c.mu.Unlock()

	res := c.validateStep(id, data, supplement)
	c.mu.Lock()
	sess := c.sess
	c.mu.Unlock()
	c.cfg.Observer.OnStepSubmitted(ctx, sess, id, res)
	if !res.Valid {
		return res, nil
	}

	c.mu.Lock()
	prog = c.sess.Step(id)
	prog.Status = api.StatusReviewPending
	c.sess.UpdatedAt = time.Now().UTC()
	snapshot := *prog
	c.mu.Unlock()

	if _, err := c.saver.SaveNow(ctx, snapshot); err != nil {
		// The transition is applied in memory; persistence keeps retrying
		// through the coordinator's queue on the next save.
		return res, err
	}
	return res, nil
}

// Review renders the step's document preview while it is in ReviewPending.
// A generation failure leaves the step in ReviewPending; the caller retries.
func (c *Controller) Review(ctx context.Context, id api.StepID) (*docgen.FilledDocument, error) {
	templateID, ok := c.cfg.Templates[id]
	if !ok || c.cfg.Generator == nil {
		return nil, fmt.Errorf("step %s has no review document", id)
	}

	c.mu.Lock()
	prog := c.sess.Step(id)
	if prog == nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", api.ErrStepNotFound, id)
	}
	if prog.Status != api.StatusReviewPending {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", api.ErrNotInReview, id)
	}
	data := c.documentData(prog)
	c.mu.Unlock()

	return c.cfg.Generator.Generate(ctx, templateID, data)
}

// Edit moves a step back from ReviewPending to InProgress. Previously
// entered data is preserved exactly; any existing signature artifact is
// destroyed, since editing after signing always invalidates the signature.
func (c *Controller) Edit(ctx context.Context, id api.StepID) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	c.mu.Lock()
	prog := c.sess.Step(id)
	if prog == nil {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", api.ErrStepNotFound, id)
	}
	if prog.Status != api.StatusReviewPending {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", api.ErrNotInReview, id)
	}

	prog.Status = api.StatusInProgress
	prog.Signature = nil
	c.sess.UpdatedAt = time.Now().UTC()
	snapshot := *prog
	c.mu.Unlock()

	_, err := c.saver.SaveNow(ctx, snapshot)
	return err
}

// Complete finalizes a step. The controller never trusts the caller's
// claim of validity: final data is re-validated, prerequisites re-checked,
// the signature requirement enforced, and — when the step renders a
// document — required-field mapping re-verified before the status commits.
func (c *Controller) Complete(ctx context.Context, id api.StepID, finalData api.FormData, sig *api.SignatureArtifact) (api.Result, error) {
	if err := c.begin(); err != nil {
		return api.Result{}, err
	}
	defer c.end()

	def, ok := c.cfg.Wizard.Step(id)
	if !ok {
		return api.Result{}, fmt.Errorf("%w: %s", api.ErrStepNotFound, id)
	}

	unlocked, err := c.IsStepUnlocked(id)
	if err != nil {
		return api.Result{}, err
	}
	if !unlocked {
		return api.Result{}, fmt.Errorf("%w: %s", api.ErrStepLocked, id)
	}

	c.mu.Lock()
	prog := c.sess.Step(id)
	if prog.Status != api.StatusReviewPending {
		c.mu.Unlock()
		return api.Result{}, fmt.Errorf("%w: %s", api.ErrNotInReview, id)
	}
	if finalData == nil {
		finalData = prog.Data.Clone()
	} else {
		finalData = finalData.Clone()
	}
	supplement := prog.Supplement
	c.mu.Unlock()

	res := c.validateStep(id, finalData, supplement)
	if !res.Valid {
		return res, nil
	}

	if def.RequiresSignature && sig == nil {
		return res, api.ErrSignatureRequired
	}

	// Document gating: a required template field that cannot be mapped
	// blocks finalization (missing optional fields do not).
	if templateID, hasDoc := c.cfg.Templates[id]; hasDoc && c.cfg.Generator != nil {
		c.mu.Lock()
		trial := *c.sess.Step(id)
		trial.Data = finalData
		data := c.documentData(&trial)
		c.mu.Unlock()

		doc, err := c.cfg.Generator.Generate(ctx, templateID, data)
		if err != nil {
			return res, err
		}
		if doc.BlocksFinalization() {
			return res, fmt.Errorf("%w: %v", ErrDocumentIncomplete, doc.MissingRequired)
		}
	}

	c.mu.Lock()
	prog = c.sess.Step(id)
	prog.Data = finalData
	prog.Status = api.StatusComplete
	prog.Signature = sig
	prog.CompletedAt = time.Now().UTC()
	c.sess.UpdatedAt = prog.CompletedAt
	c.advanceActiveStepLocked()
	snapshot := *prog
	header := *c.sess
	header.Steps = nil
	sess := c.sess
	c.mu.Unlock()

	// The finalization write goes through the coordinator so it carries a
	// sequence number above any pending auto-save; a late older auto-save
	// is discarded by the store.
	if _, err := c.saver.SaveNow(ctx, snapshot); err != nil {
		// Roll the in-memory transition back; the caller retries.
		c.mu.Lock()
		prog = c.sess.Step(id)
		prog.Status = api.StatusReviewPending
		prog.Signature = nil
		prog.CompletedAt = time.Time{}
		c.mu.Unlock()
		return res, err
	}
	if err := c.store.SaveSession(ctx, &header); err != nil {
		return res, err
	}

	c.cfg.Observer.OnStepCompleted(ctx, sess, id)

	// Fire-and-forget: completion notifications never hold up the workflow.
	go c.cfg.Notifier.StepCompleted(context.WithoutCancel(ctx), c.snapshotSession(), id)

	return res, nil
}

// begin marks a transition in flight. A second transition requested before
// the first resolves is rejected; callers re-request, so the last requested
// transition wins once the in-flight one completes.
func (c *Controller) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight {
		return api.ErrTransitionInFlight
	}
	c.inFlight = true
	return nil
}

func (c *Controller) end() {
	c.mu.Lock()
	c.inFlight = false
	c.mu.Unlock()
}

// editableStep returns the step for data edits; completed steps are not
// editable (Edit on a signed step goes through the review transition).
// Caller holds c.mu.
func (c *Controller) editableStep(id api.StepID) (*api.StepProgress, error) {
	if c.sess == nil {
		return nil, persistence.ErrSessionNotFound
	}
	prog := c.sess.Step(id)
	if prog == nil {
		return nil, fmt.Errorf("%w: %s", api.ErrStepNotFound, id)
	}
	if prog.Status == api.StatusComplete {
		return nil, fmt.Errorf("step %s is already complete", id)
	}
	return prog, nil
}

// validateStep runs the step validator and, when an assistance branch is
// active, the branch's validator. Branch errors are namespaced so the UI
// can route them to the supplement form.
func (c *Controller) validateStep(id api.StepID, data api.FormData, supplement api.Supplement) api.Result {
	res := c.cfg.Validators.Validate(id, data)

	switch supplement.Kind {
	case api.SupplementNone:
		return res
	case api.SupplementTranslator, api.SupplementPreparer:
		v, ok := c.cfg.SupplementValidators[supplement.Kind]
		if !ok {
			return res
		}
		return mergeResults(res, v.Validate(supplement.Data), "supplement.")
	default:
		res.AddError("unknown supplement kind " + string(supplement.Kind))
		return res
	}
}

// mergeResults combines a step result with an assistance-branch result,
// prefixing the branch's field names. Both inputs are finalized, so each
// carries a derived field-count summary; those are dropped and a single
// summary is recomputed over the union. Genuine step-level messages
// survive the merge.
func mergeResults(step, branch api.Result, prefix string) api.Result {
	var merged api.Result
	merged.FieldErrors = map[string]string{}

	for field, msg := range step.FieldErrors {
		merged.AddFieldError(field, msg)
	}
	for field, msg := range branch.FieldErrors {
		merged.AddFieldError(prefix+field, msg)
	}
	for _, msg := range withoutSummary(step) {
		merged.AddError(msg)
	}
	for _, msg := range withoutSummary(branch) {
		merged.AddError(msg)
	}
	return merged.Finalize()
}

// withoutSummary returns a finalized result's step-level messages minus
// the field-count summary, which Finalize always appends last when field
// errors exist.
func withoutSummary(r api.Result) []string {
	if len(r.FieldErrors) > 0 && len(r.Errors) > 0 {
		return r.Errors[:len(r.Errors)-1]
	}
	return r.Errors
}

// documentData merges step data, the active supplement branch, and
// signature fields into the flat logical-field map the generator consumes.
// Caller holds c.mu.
func (c *Controller) documentData(prog *api.StepProgress) api.FormData {
	data := prog.Data.Clone()

	switch prog.Supplement.Kind {
	case api.SupplementNone:
		// No supplement fields.
	case api.SupplementTranslator:
		data["supplementKind"] = string(api.SupplementTranslator)
		data["assistantLastName"] = prog.Supplement.Data["translatorLastName"]
		data["assistantFirstName"] = prog.Supplement.Data["translatorFirstName"]
		data["assistantAddress"] = prog.Supplement.Data["translatorAddress"]
	case api.SupplementPreparer:
		data["supplementKind"] = string(api.SupplementPreparer)
		data["assistantLastName"] = prog.Supplement.Data["preparerLastName"]
		data["assistantFirstName"] = prog.Supplement.Data["preparerFirstName"]
		data["assistantAddress"] = prog.Supplement.Data["preparerAddress"]
	}

	if prog.Signature != nil {
		data["signatureDate"] = prog.Signature.SignedAt.Format("2006-01-02")
	}
	return data
}

// advanceActiveStepLocked moves the active step to the first incomplete
// step, in wizard order. Caller holds c.mu.
func (c *Controller) advanceActiveStepLocked() {
	for _, def := range c.cfg.Wizard.Steps {
		if prog := c.sess.Step(def.ID); prog != nil && prog.Status != api.StatusComplete {
			c.sess.ActiveStep = def.ID
			return
		}
	}
	// Everything complete: keep the last step active.
	if n := len(c.cfg.Wizard.Steps); n > 0 {
		c.sess.ActiveStep = c.cfg.Wizard.Steps[n-1].ID
	}
}

func (c *Controller) snapshotSession() *api.WorkflowSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return nil
	}

	out := *c.sess
	out.Steps = make([]api.StepProgress, len(c.sess.Steps))
	for i, prog := range c.sess.Steps {
		cp := prog
		cp.Data = prog.Data.Clone()
		cp.Supplement.Data = prog.Supplement.Data.Clone()
		out.Steps[i] = cp
	}
	return &out
}

func supplementAllowed(def api.StepDefinition, kind api.SupplementKind) bool {
	for _, k := range def.Supplements {
		if k == kind {
			return true
		}
	}
	return false
}
