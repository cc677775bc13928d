package engine

import (
	"context"

	"github.com/hirewire/onboard/pkg/api"
)

// ResumeSession reconstructs the WorkflowSession from whatever was durably
// persisted, including partially completed steps, so an interrupted
// onboarding run continues where it left off. With a layered store the
// local cache is consulted first and the remote tier serves as source of
// truth; per step, the snapshot with the highest sequence number wins.
func (c *Controller) ResumeSession(ctx context.Context, employeeID string) (*api.WorkflowSession, error) {
	sess, err := c.store.GetSession(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	snaps, err := c.store.ListSnapshots(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	byStep := make(map[api.StepID]api.StepProgress, len(snaps))
	var maxSeq uint64
	for _, snap := range snaps {
		byStep[snap.Progress.StepID] = snap.Progress
		if snap.Progress.Seq > maxSeq {
			maxSeq = snap.Progress.Seq
		}
	}
	// New saves must outrank everything persisted by earlier runs.
	c.saver.Advance(maxSeq)

	// Rebuild in wizard order; steps never touched come back as NotStarted.
	sess.Steps = sess.Steps[:0]
	for _, def := range c.cfg.Wizard.Steps {
		if prog, ok := byStep[def.ID]; ok {
			if prog.Data == nil {
				prog.Data = api.FormData{}
			}
			sess.Steps = append(sess.Steps, prog)
			continue
		}
		sess.Steps = append(sess.Steps, api.StepProgress{
			StepID:     def.ID,
			Status:     api.StatusNotStarted,
			Data:       api.FormData{},
			Supplement: api.Supplement{Kind: api.SupplementNone},
		})
	}

	// A stale header may point at a step this wizard no longer defines.
	if _, ok := c.cfg.Wizard.Step(sess.ActiveStep); !ok {
		sess.ActiveStep = c.cfg.Wizard.Steps[0].ID
	}

	c.mu.Lock()
	c.sess = sess
	c.mu.Unlock()

	c.cfg.Observer.OnSessionStart(ctx, sess)
	return c.snapshotSession(), nil
}
