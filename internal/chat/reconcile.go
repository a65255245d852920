package chat

import (
	"github.com/robfig/cron/v3"

	"github.com/yuanchaoma-db/genie-space/internal/logger"
)

const reconcileSchedule = "@every 3s"

// Reconciler periodically converges the displayed transcript onto the
// authoritative one. Display and session state are updated by independent
// flows; this sweep guarantees they never diverge permanently.
type Reconciler struct {
	cron *cron.Cron
}

func NewReconciler(registry *Registry) (*Reconciler, error) {
	c := cron.New()
	if _, err := c.AddFunc(reconcileSchedule, registry.Reconcile); err != nil {
		return nil, err
	}
	return &Reconciler{cron: c}, nil
}

func (r *Reconciler) Start() {
	logger.Debug("reconciler starting", "schedule", reconcileSchedule)
	r.cron.Start()
}

// Stop halts the schedule and waits for an in-progress sweep to finish.
func (r *Reconciler) Stop() {
	<-r.cron.Stop().Done()
}
