package runner

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/GoCodeAlone/taskgen"
)

// Schedule implements taskgen.Scheduler: the task runs on every tick of the
// standard five-field cron spec once Start has been called. A task has at
// most one schedule; scheduling it again replaces the previous one.
func (r *Runner) Schedule(spec, name string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidSchedule, spec, err)
	}
	if _, ok := r.lookup(name); !ok {
		return fmt.Errorf("%w: %s", taskgen.ErrTaskNotFound, name)
	}
	c := r.scheduler()

	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.entries[name]; ok {
		c.Remove(id)
	}
	id, err := c.AddFunc(spec, func() {
		r.logger.Info("Running scheduled task", "task", name, "schedule", spec)
		if err := r.Run(r.baseCtx, name); err != nil {
			r.logger.Error("Scheduled task failed", "task", name, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidSchedule, spec, err)
	}
	r.entries[name] = id
	return nil
}

// Scheduled returns the cron entry of every scheduled task.
func (r *Runner) Scheduled() map[string]cron.EntryID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]cron.EntryID, len(r.entries))
	for k, v := range r.entries {
		out[k] = v
	}
	return out
}

// Start starts the cron scheduler.
func (r *Runner) Start() {
	r.scheduler().Start()
}

// Stop stops the scheduler and waits for running scheduled tasks until ctx
// is done.
func (r *Runner) Stop(ctx context.Context) error {
	done := r.scheduler().Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) scheduler() *cron.Cron {
	r.cronOnce.Do(func() {
		r.cron = cron.New()
	})
	return r.cron
}
