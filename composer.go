package taskgen

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/GoCodeAlone/taskgen/bundle"
	"github.com/GoCodeAlone/taskgen/stream"
)

// Composer registers the tasks described by task configurations with a
// TaskRunner.
//
// For a configuration named "css" it registers "css:<sub>" for every valid
// sub-task, "css:watch:<sub>" for every sub-task declaring watch, and the
// umbrella task "css" depending on all of them.
type Composer struct {
	runner     TaskRunner
	events     Subject
	paths      *Paths
	logger     Logger
	sources    SourceMatcher
	pipeline   *PipelineBuilder
	transforms *TransformResolver
	bundler    Bundler
	newName    func() string

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	names  map[string]bool
	live   map[string]bundle.Subscription
	closed bool
}

// NewComposer creates a composer registering into runner. Events are
// published to events, which may be nil.
func NewComposer(runner TaskRunner, events Subject, opts ...Option) (*Composer, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	return newComposer(runner, events, o), nil
}

func newComposer(runner TaskRunner, events Subject, o *options) *Composer {
	ctx, cancel := context.WithCancel(context.Background())
	return &Composer{
		runner:     runner,
		events:     events,
		paths:      o.paths,
		logger:     o.logger,
		sources:    o.matcher,
		pipeline:   NewPipelineBuilder(o.plugins, o.logger),
		transforms: NewTransformResolver(o.transforms, o.logger),
		bundler:    o.bundler,
		newName:    o.newName,
		ctx:        ctx,
		cancel:     cancel,
		names:      make(map[string]bool),
		live:       make(map[string]bundle.Subscription),
	}
}

// Compose registers the tasks of every configuration in order and returns the
// names of the umbrella tasks that were registered. Configuration problems are
// logged and the affected task or sub-task is skipped.
func (c *Composer) Compose(configs []TaskConfig) []string {
	var registered []string
	for _, cfg := range configs {
		if name, ok := c.composeTask(cfg); ok {
			registered = append(registered, name)
		}
	}
	return registered
}

func (c *Composer) composeTask(cfg TaskConfig) (string, bool) {
	if cfg.Name == "" {
		c.logger.Error("Task name must be set", "error", ErrTaskNameMissing)
		return "", false
	}
	if len(cfg.SubTasks) == 0 {
		c.logger.Warn("SubTasks are not set", "task", cfg.Name, "error", ErrSubTasksMissing)
	}

	var acc Accumulator
	var deps []string
	for i, declared := range cfg.SubTasks {
		sub, err := acc.Resolve(declared)
		if err != nil {
			c.logger.Warn("Inherited plugin was dropped", "task", cfg.Name, "index", i, "error", err)
		}
		if sub.Name == "" {
			sub.Name = c.uniqueName(cfg.Name)
		}
		subTaskName := cfg.Name + ":" + sub.Name

		if !sub.Valid() {
			c.logger.Error("Src and dest must be set", "task", subTaskName, "error", ErrSubTaskInvalid)
			c.emit(context.Background(), EventTypeSubTaskSkipped, SubTaskEvent{Task: cfg.Name, SubTask: subTaskName, Config: sub})
			continue
		}

		if c.register(subTaskName, nil, c.mainAction(cfg.Name, subTaskName, sub)) {
			deps = append(deps, subTaskName)
		}
		if !sub.Watch.IsZero() {
			watchName := cfg.Name + ":watch:" + sub.Name
			if c.register(watchName, nil, c.watchAction(subTaskName, sub)) {
				deps = append(deps, watchName)
			}
		}
	}

	if !c.register(cfg.Name, deps, noopAction) {
		return "", false
	}
	c.emit(context.Background(), EventTypeTaskRegistered, SubTaskEvent{Task: cfg.Name})

	if cfg.Schedule != "" {
		c.schedule(cfg)
	}
	return cfg.Name, true
}

func noopAction(context.Context) (Completion, error) {
	return nil, nil
}

func (c *Composer) register(name string, deps []string, action ActionFunc) bool {
	if err := c.runner.RegisterTask(name, deps, action); err != nil {
		c.logger.Error("Failed to register task", "task", name, "error", err)
		return false
	}
	c.logger.Info("Registered task", "task", name, "dependencies", deps)
	return true
}

func (c *Composer) schedule(cfg TaskConfig) {
	s, ok := c.runner.(Scheduler)
	if !ok {
		c.logger.Warn("Schedule ignored", "task", cfg.Name, "error", ErrSchedulingUnsupported)
		return
	}
	if err := s.Schedule(cfg.Schedule, cfg.Name); err != nil {
		c.logger.Error("Failed to schedule task", "task", cfg.Name, "schedule", cfg.Schedule, "error", err)
		return
	}
	c.logger.Info("Scheduled task", "task", cfg.Name, "schedule", cfg.Schedule)
}

func (c *Composer) uniqueName(task string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	for {
		name := c.newName()
		key := task + ":" + name
		if !c.names[key] {
			c.names[key] = true
			return name
		}
	}
}

// WatchPaths returns the anchored paths a sub-task's watch unit observes: the
// explicit watch list, or for watch set to true the source include and
// exclude entries. Otherwise it is empty.
func (c *Composer) WatchPaths(sub SubTaskConfig) []string {
	w := sub.Watch.Value()
	switch {
	case len(w.Paths) > 0:
		return c.paths.AbsAll(w.Paths)
	case w.Enabled:
		src := sub.Src.Value()
		return append(c.paths.AbsAll(src.Include), c.paths.AbsAll(src.Exclude)...)
	default:
		return []string{}
	}
}

func (c *Composer) watchAction(subTaskName string, sub SubTaskConfig) ActionFunc {
	paths := c.WatchPaths(sub)
	if len(paths) == 0 {
		c.logger.Warn("Watch is disabled for the sub-task", "task", subTaskName)
	}
	return func(ctx context.Context) (Completion, error) {
		c.logger.Info("Watching", "task", subTaskName, "paths", c.paths.DisplayAll(paths))
		w, err := c.runner.Watch(ctx, paths, []string{subTaskName}, func(ev WatchEvent) {
			c.logger.Info("File changed", "path", c.paths.Display(ev.Path), "op", ev.Op)
		})
		if err != nil {
			return nil, fmt.Errorf("watch %s: %w", subTaskName, err)
		}
		return w, nil
	}
}

func (c *Composer) mainAction(task, subTaskName string, sub SubTaskConfig) ActionFunc {
	return func(ctx context.Context) (Completion, error) {
		var (
			s   *stream.Stream
			err error
		)
		if spec := sub.Browserify.Value(); spec != nil && c.bundler != nil {
			s, err = c.bundleStream(task, subTaskName, sub, spec)
		} else {
			if spec != nil {
				c.logger.Error("Bundling is not available", "task", subTaskName, "error", ErrBundlerMissing)
			}
			s, err = c.sourceStream(sub)
		}
		if err != nil {
			return nil, err
		}
		c.emit(ctx, EventTypeSubTaskCompleted, SubTaskEvent{Task: task, SubTask: subTaskName, Config: sub})
		return s, nil
	}
}

func (c *Composer) sourceStream(sub SubTaskConfig) (*stream.Stream, error) {
	refs, err := c.sources.Glob(BuildSourceSet(c.paths, sub.Src.Value(), c.logger))
	if err != nil {
		return nil, fmt.Errorf("select sources: %w", err)
	}
	s := c.pipeline.Apply(stream.FromRefs(refs), sub.PluginRefs(), sub.Sourcemaps.Value())
	return s.Pipe("dest", stream.Dest(c.paths.Abs(sub.Dest.Value()))), nil
}

func (c *Composer) bundleStream(task, subTaskName string, sub SubTaskConfig, spec *BundleSpec) (*stream.Stream, error) {
	refs, err := c.sources.Glob(BuildSourceSet(c.paths, sub.Src.Value(), c.logger))
	if err != nil {
		return nil, fmt.Errorf("select bundle entries: %w", err)
	}
	entries := make([]string, 0, len(refs))
	for _, r := range refs {
		entries = append(entries, r.Path)
	}
	file := spec.File
	if file == "" {
		file = task + ".js"
	}
	req := bundle.Request{
		Entries:    entries,
		File:       file,
		Debug:      true,
		Cache:      spec.Watchify,
		Transforms: c.transforms.Resolve(spec.Transforms),
	}

	build := func() *stream.Stream {
		src := stream.New(func(ctx context.Context) ([]*stream.File, error) {
			data, err := c.bundler.Bundle(ctx, req)
			if err != nil {
				c.logger.Error(err.Error(), "task", subTaskName)
				return nil, err
			}
			root := c.paths.Root()
			return []*stream.File{{Path: filepath.Join(root, file), Base: root, Contents: data}}, nil
		})
		s := c.pipeline.Apply(src, sub.PluginRefs(), sub.Sourcemaps.Value())
		return s.Pipe("dest", stream.Dest(c.paths.Abs(sub.Dest.Value())))
	}

	if spec.Watchify {
		c.startLiveRebuild(task, subTaskName, sub, req, build)
	}
	return build(), nil
}

func (c *Composer) startLiveRebuild(task, subTaskName string, sub SubTaskConfig, req bundle.Request, build func() *stream.Stream) {
	live, ok := c.bundler.(LiveBundler)
	if !ok {
		c.logger.Warn("Bundler cannot rebuild on change", "task", subTaskName)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.live[subTaskName] != nil {
		return
	}
	subscription, err := live.Watch(c.ctx, req)
	if err != nil {
		c.logger.Error("Failed to watch bundle entries", "task", subTaskName, "error", err)
		return
	}
	c.live[subTaskName] = subscription

	go func() {
		for u := range subscription.Updates() {
			ev := SubTaskEvent{Task: task, SubTask: subTaskName, Config: sub, Path: u.Path}
			if u.Err != nil {
				ev.Error = u.Err.Error()
				c.emit(c.ctx, EventTypeBundleFailed, ev)
				continue
			}
			c.logger.Info("Bundle entry changed", "task", subTaskName, "path", c.paths.Display(u.Path), "op", u.Op)
			if err := build().Wait(c.ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				ev.Error = err.Error()
				c.emit(c.ctx, EventTypeBundleFailed, ev)
				continue
			}
			c.emit(c.ctx, EventTypeBundleRebuilt, ev)
		}
	}()
}

// LiveRebuilds returns the names of sub-tasks with an active live rebuild.
func (c *Composer) LiveRebuilds() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.live))
	for n := range c.live {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Close stops every live rebuild. Later runs no longer start new ones.
func (c *Composer) Close() error {
	c.mu.Lock()
	c.closed = true
	subs := c.live
	c.live = make(map[string]bundle.Subscription)
	c.mu.Unlock()

	c.cancel()
	var errs []error
	for name, s := range subs {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close live rebuild %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

func (c *Composer) emit(ctx context.Context, eventType string, data SubTaskEvent) {
	if c.events == nil {
		return
	}
	event := NewCloudEvent(eventType, EventSource, data, nil)
	if err := c.events.NotifyObservers(ctx, event); err != nil {
		c.logger.Debug("Failed to notify observers", "eventType", eventType, "error", err)
	}
}

// randomName returns a short random token for unnamed sub-tasks.
func randomName() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
