package taskgen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type mockLogEntry struct {
	Level   string
	Message string
	Args    []any
}

type mockLogger struct {
	mu      sync.Mutex
	entries []mockLogEntry
}

func (l *mockLogger) log(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, mockLogEntry{Level: level, Message: msg, Args: args})
}

func (l *mockLogger) Info(msg string, args ...any)  { l.log("INFO", msg, args) }
func (l *mockLogger) Error(msg string, args ...any) { l.log("ERROR", msg, args) }
func (l *mockLogger) Warn(msg string, args ...any)  { l.log("WARN", msg, args) }
func (l *mockLogger) Debug(msg string, args ...any) { l.log("DEBUG", msg, args) }

func (l *mockLogger) count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.entries {
		if e.Level == level {
			n++
		}
	}
	return n
}

func (l *mockLogger) messages(level string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, e := range l.entries {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

type registeredTask struct {
	name   string
	deps   []string
	action ActionFunc
}

type watchCall struct {
	paths []string
	tasks []string
}

// fakeRunner records registrations; Watch returns immediately.
type fakeRunner struct {
	mu        sync.Mutex
	tasks     []registeredTask
	watches   []watchCall
	schedules map[string]string
}

func (r *fakeRunner) RegisterTask(name string, deps []string, action ActionFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tasks {
		if t.name == name {
			return fmt.Errorf("%w: %s", ErrTaskAlreadyRegistered, name)
		}
	}
	r.tasks = append(r.tasks, registeredTask{name: name, deps: deps, action: action})
	return nil
}

func (r *fakeRunner) Watch(_ context.Context, paths []string, tasks []string, _ func(WatchEvent)) (Watcher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watches = append(r.watches, watchCall{paths: paths, tasks: tasks})
	return closedWatcher{}, nil
}

func (r *fakeRunner) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var names []string
	for _, t := range r.tasks {
		names = append(names, t.name)
	}
	return names
}

func (r *fakeRunner) task(name string) (registeredTask, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tasks {
		if t.name == name {
			return t, true
		}
	}
	return registeredTask{}, false
}

// run calls the task's action and waits for its completion.
func (r *fakeRunner) run(t *testing.T, name string) {
	t.Helper()
	task, ok := r.task(name)
	require.True(t, ok, "task %s not registered", name)
	c, err := task.action(context.Background())
	require.NoError(t, err)
	if c != nil {
		require.NoError(t, c.Wait(context.Background()))
	}
}

type schedulingRunner struct {
	fakeRunner
}

func (r *schedulingRunner) Schedule(spec, task string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.schedules == nil {
		r.schedules = make(map[string]string)
	}
	r.schedules[task] = spec
	return nil
}

type closedWatcher struct{}

func (closedWatcher) Wait(context.Context) error { return nil }
func (closedWatcher) Close() error               { return nil }

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func sequentialNames(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}
