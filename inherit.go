package taskgen

import (
	"errors"
	"fmt"
)

// ResolveSubTask applies the inherit protocol to current, using stored as the
// accumulated state of the earlier siblings. It returns the resolved sub-task
// and the accumulator to use for the next sibling; the arguments are not
// modified.
//
// For every field present in current:
//   - the inherit marker is replaced by the accumulator's value;
//   - any other value becomes the accumulator's value.
//
// Absent fields stay absent, except that a sub-task with an inherited source
// and no destination inherits the destination too.
//
// Plugins merge per entry. A "~name" entry is replaced by the first entry
// called name in the accumulator. Literal entries are upserted into the
// accumulator by name, which therefore holds every distinct plugin declared
// so far in the sequence, with the most recent options. A "~name" entry with
// no match is dropped and reported through the returned error, which wraps
// ErrInheritedPluginMiss; the resolved values are valid even then.
func ResolveSubTask(current, stored SubTaskConfig) (SubTaskConfig, SubTaskConfig, error) {
	resolved := current
	next := stored

	resolveField(&resolved.Src, &next.Src)
	if current.Src.IsInherit() && current.Dest.IsZero() {
		resolved.Dest = Inherit[string]()
	}
	resolveField(&resolved.Dest, &next.Dest)
	resolveField(&resolved.Watch, &next.Watch)
	resolveField(&resolved.Sourcemaps, &next.Sourcemaps)
	resolveField(&resolved.Browserify, &next.Browserify)
	if current.Name != "" {
		next.Name = current.Name
	}

	var err error
	switch {
	case current.Plugins.IsInherit():
		resolved.Plugins = current.Plugins.resolvedFrom(Literal(clonePlugins(stored.Plugins.Value())))
	case current.Plugins.IsSet():
		var entries, pool []PluginEntry
		entries, pool, err = mergePlugins(current.Plugins.Value(), clonePlugins(stored.Plugins.Value()))
		resolved.Plugins = Literal(entries)
		next.Plugins = Literal(pool)
	}
	return resolved, next, err
}

func resolveField[T any](current, stored *Inheritable[T]) {
	switch {
	case current.IsInherit():
		*current = current.resolvedFrom(*stored)
	case !current.IsZero():
		*stored = *current
	}
}

func mergePlugins(declared, pool []PluginEntry) ([]PluginEntry, []PluginEntry, error) {
	var errs []error
	resolved := make([]PluginEntry, 0, len(declared))
	for _, entry := range declared {
		if name, ok := entry.InheritName(); ok {
			idx := indexOfPlugin(pool, name)
			if idx < 0 {
				errs = append(errs, fmt.Errorf("%w: %s", ErrInheritedPluginMiss, name))
				continue
			}
			resolved = append(resolved, pool[idx])
			continue
		}

		ref, _ := entry.Ref()
		if idx := indexOfPlugin(pool, ref.Name); idx >= 0 {
			pool[idx] = entry
		} else {
			pool = append(pool, entry)
		}
		resolved = append(resolved, entry)
	}
	return resolved, pool, errors.Join(errs...)
}

func indexOfPlugin(pool []PluginEntry, name string) int {
	for i, e := range pool {
		if ref, ok := e.Ref(); ok && ref.Name == name {
			return i
		}
	}
	return -1
}

func clonePlugins(entries []PluginEntry) []PluginEntry {
	if entries == nil {
		return nil
	}
	return append([]PluginEntry(nil), entries...)
}

// Accumulator threads the inherit state through one task's sub-task sequence.
// The zero value is ready to use and starts empty.
type Accumulator struct {
	stored SubTaskConfig
}

// Resolve resolves the next sibling and advances the accumulator.
func (a *Accumulator) Resolve(current SubTaskConfig) (SubTaskConfig, error) {
	resolved, next, err := ResolveSubTask(current, a.stored)
	a.stored = next
	return resolved, err
}

// Stored returns the current accumulator state.
func (a *Accumulator) Stored() SubTaskConfig {
	return a.stored
}
