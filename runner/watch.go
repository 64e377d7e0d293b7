package runner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/GoCodeAlone/taskgen"
	"github.com/GoCodeAlone/taskgen/matcher"
)

// Watch implements taskgen.TaskRunner. Paths are glob patterns or plain
// files and directories; a directory covers everything below it. Every
// matching change calls onChange and then runs tasks. Runs triggered by one
// watch never overlap.
func (r *Runner) Watch(ctx context.Context, paths []string, tasks []string, onChange func(taskgen.WatchEvent)) (taskgen.Watcher, error) {
	fw := &fileWatch{
		runner:   r,
		tasks:    append([]string(nil), tasks...),
		onChange: onChange,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	if len(paths) == 0 {
		go func() {
			defer close(fw.stopped)
			select {
			case <-ctx.Done():
			case <-fw.done:
			}
		}()
		return fw, nil
	}

	var patterns []string
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			fw.dirs = append(fw.dirs, filepath.Clean(p))
			continue
		}
		patterns = append(patterns, p)
	}
	set, err := matcher.Compile(patterns)
	if err != nil {
		return nil, err
	}
	fw.set = set

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	fw.watcher = w
	for _, root := range append(set.Roots(), fw.dirs...) {
		if err := fw.addTree(root); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	go fw.loop(ctx)
	return fw, nil
}

type fileWatch struct {
	runner   *Runner
	tasks    []string
	onChange func(taskgen.WatchEvent)
	set      *matcher.Set
	dirs     []string
	watcher  *fsnotify.Watcher

	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// Wait blocks until the watch is closed or ctx is done.
func (fw *fileWatch) Wait(ctx context.Context) error {
	select {
	case <-fw.stopped:
		return nil
	case <-ctx.Done():
		_ = fw.Close()
		return nil
	}
}

// Close stops the watch and waits for a running task to finish.
func (fw *fileWatch) Close() error {
	fw.closeOnce.Do(func() {
		close(fw.done)
	})
	<-fw.stopped
	return nil
}

func (fw *fileWatch) addTree(root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root && os.IsNotExist(err) {
				return filepath.SkipDir
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return fw.watcher.Add(path)
	})
	if err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}
	return nil
}

func (fw *fileWatch) matches(path string) bool {
	for _, d := range fw.dirs {
		if path == d || strings.HasPrefix(path, d+string(filepath.Separator)) {
			return true
		}
	}
	return fw.set.Match(path)
}

func (fw *fileWatch) loop(ctx context.Context) {
	defer close(fw.stopped)
	defer fw.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case <-fw.done:
			return
		case ev, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if ev.Op == fsnotify.Chmod {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = fw.addTree(ev.Name)
				}
			}
			if !fw.matches(filepath.Clean(ev.Name)) {
				continue
			}
			if fw.onChange != nil {
				fw.onChange(taskgen.WatchEvent{Path: ev.Name, Op: ev.Op.String()})
			}
			if len(fw.tasks) == 0 {
				continue
			}
			if err := fw.runner.Run(ctx, fw.tasks...); err != nil {
				fw.runner.logger.Error("Watch run failed", "tasks", fw.tasks, "error", err)
			}
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.runner.logger.Error("Watch error", "error", err)
		}
	}
}
