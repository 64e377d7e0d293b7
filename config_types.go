package taskgen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// TaskConfig is one top-level build target.
type TaskConfig struct {
	// Name is registered as the umbrella task; required.
	Name string `json:"name"`
	// SubTasks are expanded in order; "~" values refer to the previous entry.
	SubTasks []SubTaskConfig `json:"subTasks"`
	// Schedule is an optional cron expression re-running the umbrella task.
	Schedule string `json:"schedule,omitempty"`
}

// IsEmpty reports whether the config carries no fields at all.
func (c TaskConfig) IsEmpty() bool {
	return c.Name == "" && len(c.SubTasks) == 0 && c.Schedule == ""
}

// SubTaskConfig is one unit of work within a task.
type SubTaskConfig struct {
	Name       string                     `json:"name,omitempty"`
	Src        Inheritable[SourceSpec]    `json:"src,omitzero"`
	Dest       Inheritable[string]        `json:"dest,omitzero"`
	Watch      Inheritable[WatchSpec]     `json:"watch,omitzero"`
	Plugins    Inheritable[[]PluginEntry] `json:"plugins,omitzero"`
	Sourcemaps Inheritable[bool]          `json:"sourcemaps,omitzero"`
	Browserify Inheritable[*BundleSpec]   `json:"browserify,omitzero"`
}

// Valid reports whether the sub-task can be registered: its source includes
// at least one pattern and it has a destination. An empty destination is the
// root itself. A source still holding an unresolved inherit marker counts as
// valid and implies the destination; once resolved, a marker that found
// nothing to inherit counts as absent.
func (s SubTaskConfig) Valid() bool {
	srcOK := s.Src.pending() || len(s.Src.Value().Include) > 0
	destOK := s.Src.pending() || s.Dest.pending() || s.Dest.IsSet()
	return srcOK && destOK
}

// PluginRefs returns the literal plugin references in declaration order.
// Unresolved "~name" entries are skipped.
func (s SubTaskConfig) PluginRefs() []PluginRef {
	var refs []PluginRef
	for _, e := range s.Plugins.Value() {
		if ref, ok := e.Ref(); ok {
			refs = append(refs, ref)
		}
	}
	return refs
}

// SourceSpec selects the files a sub-task reads.
type SourceSpec struct {
	Include []string `json:"include"`
	Exclude []string `json:"exclude,omitempty"`
}

// IsEmpty reports whether no patterns were given at all.
func (s SourceSpec) IsEmpty() bool {
	return s.Include == nil && s.Exclude == nil
}

// WatchSpec is the decoded "watch" field: true watches the sources, a list
// watches explicit paths.
type WatchSpec struct {
	Enabled bool
	Paths   []string
}

// UnmarshalJSON implements json.Unmarshaler.
func (w *WatchSpec) UnmarshalJSON(data []byte) error {
	var enabled bool
	if err := json.Unmarshal(data, &enabled); err == nil {
		*w = WatchSpec{Enabled: enabled}
		return nil
	}
	var paths []string
	if err := json.Unmarshal(data, &paths); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidWatch, string(data))
	}
	*w = WatchSpec{Enabled: len(paths) > 0, Paths: paths}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (w WatchSpec) MarshalJSON() ([]byte, error) {
	if len(w.Paths) > 0 {
		return json.Marshal(w.Paths)
	}
	return json.Marshal(w.Enabled)
}

// BundleSpec switches a sub-task to bundling mode.
type BundleSpec struct {
	// File names the bundle; defaults to "<task>.js".
	File       string         `json:"file,omitempty"`
	Transforms []TransformRef `json:"transforms,omitempty"`
	// Watchify keeps rebuilding the bundle when an entry changes.
	Watchify bool `json:"watchify,omitempty"`
}

// UnmarshalJSON accepts the older singular "transform" key as well.
func (b *BundleSpec) UnmarshalJSON(data []byte) error {
	type plain BundleSpec
	var raw struct {
		plain
		Transform []TransformRef `json:"transform"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*b = BundleSpec(raw.plain)
	if len(b.Transforms) == 0 {
		b.Transforms = raw.Transform
	}
	return nil
}

// PluginRef names a pipeline capability and its options. Options are opaque
// and handed to the capability verbatim.
type PluginRef struct {
	Name    string `json:"name"`
	Options any    `json:"options,omitempty"`
}

// PluginEntry is an element of a sub-task's plugin list: a literal reference
// or a "~name" request to reuse a same-named entry from earlier siblings.
type PluginEntry struct {
	ref         PluginRef
	inheritName string
}

// PluginLiteral wraps ref as a plugin list entry.
func PluginLiteral(ref PluginRef) PluginEntry {
	return PluginEntry{ref: ref}
}

// PluginInherit returns an entry reusing the earlier plugin called name.
func PluginInherit(name string) PluginEntry {
	return PluginEntry{inheritName: name}
}

// Ref returns the literal reference, if the entry is one.
func (e PluginEntry) Ref() (PluginRef, bool) {
	return e.ref, e.inheritName == ""
}

// InheritName returns the referenced name of a "~name" entry.
func (e PluginEntry) InheritName() (string, bool) {
	return e.inheritName, e.inheritName != ""
}

// UnmarshalJSON implements json.Unmarshaler. A bare string without the marker
// is shorthand for {"name": string}.
func (e *PluginEntry) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		if name, ok := strings.CutPrefix(s, InheritMarker); ok {
			if name == "" {
				return fmt.Errorf("%w: %q", ErrInvalidPluginEntry, s)
			}
			*e = PluginInherit(name)
			return nil
		}
		*e = PluginLiteral(PluginRef{Name: s})
		return nil
	}
	var ref PluginRef
	if err := json.Unmarshal(trimmed, &ref); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPluginEntry, err)
	}
	if ref.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidPluginEntry)
	}
	*e = PluginLiteral(ref)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (e PluginEntry) MarshalJSON() ([]byte, error) {
	if e.inheritName != "" {
		return json.Marshal(InheritMarker + e.inheritName)
	}
	return json.Marshal(e.ref)
}

// TransformRef names a bundle transform, optionally with options.
type TransformRef struct {
	Name    string `json:"name"`
	Options any    `json:"options,omitempty"`
}

// UnmarshalJSON accepts a bare module name or {"name", "options"}.
func (t *TransformRef) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*t = TransformRef{Name: name}
		return nil
	}
	type plain TransformRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTransformRef, err)
	}
	*t = TransformRef(p)
	return nil
}
