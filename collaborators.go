package taskgen

import (
	"context"

	"github.com/GoCodeAlone/taskgen/bundle"
	"github.com/GoCodeAlone/taskgen/stream"
)

// Completion is the not yet finished result of a task action. The host
// runner awaits it; *stream.Stream satisfies it.
type Completion interface {
	Wait(ctx context.Context) error
}

// ActionFunc is a registered task body. It constructs the work and returns
// without waiting for it.
type ActionFunc func(ctx context.Context) (Completion, error)

// WatchEvent describes one filesystem change seen by a runner watch.
type WatchEvent struct {
	Path string
	Op   string
}

// Watcher is a running filesystem watch. Wait blocks until the watch ends.
type Watcher interface {
	Completion
	Close() error
}

// TaskRunner is the host the generated tasks are registered into.
type TaskRunner interface {
	// RegisterTask adds a named task which runs after its dependencies.
	RegisterTask(name string, dependencies []string, action ActionFunc) error

	// Watch observes paths and re-runs tasks on every change, calling
	// onChange first. The watch lasts until ctx is done or it is closed.
	Watch(ctx context.Context, paths []string, tasks []string, onChange func(WatchEvent)) (Watcher, error)
}

// Scheduler is implemented by runners able to re-run tasks on a cron schedule.
type Scheduler interface {
	Schedule(spec, task string) error
}

// SourceMatcher expands include and "!"-prefixed exclude patterns into files.
type SourceMatcher interface {
	Glob(patterns []string) ([]stream.Ref, error)
}

// PluginLookup resolves a pipeline capability by name.
type PluginLookup interface {
	Lookup(name string) (stream.StageFactory, bool)
}

// TransformLoader resolves a bundle transform by module name.
type TransformLoader interface {
	Load(name string) (bundle.TransformFunc, error)
}

// Bundler combines entry files into one artifact.
type Bundler interface {
	Bundle(ctx context.Context, req bundle.Request) ([]byte, error)
}

// LiveBundler is a Bundler that can report entry changes for rebuilding.
type LiveBundler interface {
	Bundler
	Watch(ctx context.Context, req bundle.Request) (bundle.Subscription, error)
}
