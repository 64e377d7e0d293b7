// Package runner is an in-process task runner for the tasks taskgen
// registers: named actions with dependency lists, file watches re-running
// tasks on change, and cron schedules.
package runner

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/GoCodeAlone/taskgen"
)

type task struct {
	name   string
	deps   []string
	action taskgen.ActionFunc
}

// Runner keeps registered tasks and runs them with their dependencies.
// Dependencies of a task run concurrently; within one Run call every task
// runs at most once.
type Runner struct {
	logger taskgen.Logger

	mu    sync.RWMutex
	tasks map[string]*task
	order []string

	cronOnce sync.Once
	cron     *cron.Cron
	entries  map[string]cron.EntryID
	baseCtx  context.Context
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger used for task progress.
func WithLogger(l taskgen.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithContext sets the context scheduled runs use.
func WithContext(ctx context.Context) Option {
	return func(r *Runner) {
		r.baseCtx = ctx
	}
}

// New creates an empty Runner.
func New(opts ...Option) *Runner {
	r := &Runner{
		tasks:   make(map[string]*task),
		entries: make(map[string]cron.EntryID),
		baseCtx: context.Background(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = discard{}
	}
	if r.baseCtx == nil {
		r.baseCtx = context.Background()
	}
	return r
}

var _ taskgen.TaskRunner = (*Runner)(nil)
var _ taskgen.Scheduler = (*Runner)(nil)

// RegisterTask implements taskgen.TaskRunner. Dependencies are resolved when
// the task runs, so they may be registered later.
func (r *Runner) RegisterTask(name string, deps []string, action taskgen.ActionFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[name]; ok {
		return fmt.Errorf("%w: %s", taskgen.ErrTaskAlreadyRegistered, name)
	}
	r.tasks[name] = &task{name: name, deps: slices.Clone(deps), action: action}
	r.order = append(r.order, name)
	return nil
}

// Tasks returns the task names in registration order.
func (r *Runner) Tasks() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Dependencies returns the declared dependencies of a task.
func (r *Runner) Dependencies(name string) ([]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[name]
	if !ok {
		return nil, false
	}
	return slices.Clone(t.deps), true
}

// Run runs the named tasks concurrently, each after its dependencies, and
// waits for their completions. The first error cancels the rest.
func (r *Runner) Run(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return ErrNoTasks
	}
	for _, n := range names {
		if _, ok := r.lookup(n); !ok {
			return fmt.Errorf("%w: %s", taskgen.ErrTaskNotFound, n)
		}
	}
	if err := r.checkCycles(names); err != nil {
		return err
	}
	current := &run{runner: r, results: make(map[string]*result)}
	g, gctx := errgroup.WithContext(ctx)
	for _, n := range names {
		g.Go(func() error {
			return current.task(gctx, n)
		})
	}
	return g.Wait()
}

func (r *Runner) lookup(name string) (*task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[name]
	return t, ok
}

// checkCycles walks the dependency graph below names and reports the first
// cycle or unknown dependency.
func (r *Runner) checkCycles(names []string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	done := make(map[string]bool)
	var visit func(name string, stack []string) error
	visit = func(name string, stack []string) error {
		if slices.Contains(stack, name) {
			return fmt.Errorf("%w: %v", ErrDependencyCycle, append(stack, name))
		}
		if done[name] {
			return nil
		}
		t, ok := r.tasks[name]
		if !ok {
			return fmt.Errorf("%w: %s", taskgen.ErrTaskNotFound, name)
		}
		stack = append(stack, name)
		for _, dep := range t.deps {
			if err := visit(dep, stack); err != nil {
				return err
			}
		}
		done[name] = true
		return nil
	}
	for _, n := range names {
		if err := visit(n, nil); err != nil {
			return err
		}
	}
	return nil
}

type result struct {
	once sync.Once
	err  error
}

// run tracks the tasks started by one Run call.
type run struct {
	runner  *Runner
	mu      sync.Mutex
	results map[string]*result
}

func (rn *run) task(ctx context.Context, name string) error {
	t, ok := rn.runner.lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", taskgen.ErrTaskNotFound, name)
	}

	rn.mu.Lock()
	res, ok := rn.results[name]
	if !ok {
		res = &result{}
		rn.results[name] = res
	}
	rn.mu.Unlock()

	res.once.Do(func() {
		res.err = rn.execute(ctx, t)
	})
	return res.err
}

func (rn *run) execute(ctx context.Context, t *task) error {
	logger := rn.runner.logger
	if len(t.deps) > 0 {
		g, gctx := errgroup.WithContext(ctx)
		for _, dep := range t.deps {
			g.Go(func() error {
				return rn.task(gctx, dep)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	if t.action == nil {
		return nil
	}

	logger.Info("Starting task", "task", t.name)
	c, err := t.action(ctx)
	if err == nil && c != nil {
		err = c.Wait(ctx)
	}
	if err != nil {
		logger.Error("Task failed", "task", t.name, "error", err)
		return fmt.Errorf("task %s: %w", t.name, err)
	}
	logger.Info("Finished task", "task", t.name)
	return nil
}

type discard struct{}

func (discard) Info(string, ...any)  {}
func (discard) Error(string, ...any) {}
func (discard) Warn(string, ...any)  {}
func (discard) Debug(string, ...any) {}
