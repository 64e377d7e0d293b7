package bundle

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Update reports a change to one of a bundle's entry files.
type Update struct {
	Path string
	Op   string
	Time time.Time
	// Err is set when the underlying watcher reported a failure instead of a change.
	Err error
}

// Subscription delivers live rebuild notifications until closed.
type Subscription interface {
	// Updates is closed once the subscription stops.
	Updates() <-chan Update
	Close() error
}

// Watch subscribes to changes of req's entries. The cached build output of a
// changed entry is dropped before the update is delivered, so the next Bundle
// call re-reads it. The subscription ends when ctx is cancelled or Close is
// called.
func (b *Bundler) Watch(ctx context.Context, req Request) (Subscription, error) {
	if len(req.Entries) == 0 {
		return nil, ErrNoEntries
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	entries := make(map[string]bool, len(req.Entries))
	dirs := make(map[string]bool)
	for _, e := range req.Entries {
		entries[filepath.Clean(e)] = true
		dir := filepath.Dir(e)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	s := &watchSubscription{
		watcher: w,
		updates: make(chan Update, 16),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go s.loop(ctx, b, entries)
	return s, nil
}

type watchSubscription struct {
	watcher   *fsnotify.Watcher
	updates   chan Update
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
	closeErr  error
}

func (s *watchSubscription) Updates() <-chan Update {
	return s.updates
}

func (s *watchSubscription) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		<-s.stopped
	})
	return s.closeErr
}

func (s *watchSubscription) loop(ctx context.Context, b *Bundler, entries map[string]bool) {
	defer close(s.stopped)
	defer close(s.updates)
	defer func() { s.closeErr = s.watcher.Close() }()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			name := filepath.Clean(ev.Name)
			if !entries[name] || ev.Op == fsnotify.Chmod {
				continue
			}
			b.invalidate(name)
			if !s.send(ctx, Update{Path: name, Op: ev.Op.String(), Time: time.Now()}) {
				return
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			if !s.send(ctx, Update{Err: err, Time: time.Now()}) {
				return
			}
		}
	}
}

func (s *watchSubscription) send(ctx context.Context, u Update) bool {
	select {
	case s.updates <- u:
		return true
	case <-s.done:
		return false
	case <-ctx.Done():
		return false
	}
}

func (b *Bundler) invalidate(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.cache, path)
}
