// Package plugins provides the capability registry consulted by pipeline
// builders: a mapping from plugin name to a factory that turns the plugin's
// options into a stream stage.
package plugins

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/GoCodeAlone/taskgen/stream"
)

// Registry errors
var (
	ErrPluginAlreadyRegistered = errors.New("plugin already registered")
	ErrPluginNameEmpty         = errors.New("plugin name is empty")
	ErrPluginFactoryNil        = errors.New("plugin factory is nil")
)

// Registry is a concurrency safe name -> factory map.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]stream.StageFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]stream.StageFactory)}
}

// Default returns a registry holding the built-in plugin set.
func Default() *Registry {
	r := NewRegistry()
	for name, factory := range builtins() {
		// names are static and unique
		_ = r.Register(name, factory)
	}
	return r
}

func builtins() map[string]stream.StageFactory {
	return map[string]stream.StageFactory{
		"concat":        Concat,
		"header":        Header,
		"footer":        Footer,
		"rename":        Rename,
		"replace":       Replace,
		SourcemapsInit:  SourcemapsInitFactory,
		SourcemapsWrite: SourcemapsWriteFactory,
	}
}

// Register adds a factory under name.
func (r *Registry) Register(name string, factory stream.StageFactory) error {
	if name == "" {
		return ErrPluginNameEmpty
	}
	if factory == nil {
		return fmt.Errorf("%w: %s", ErrPluginFactoryNil, name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("%w: %s", ErrPluginAlreadyRegistered, name)
	}
	r.factories[name] = factory
	return nil
}

// Lookup returns the factory registered under name.
func (r *Registry) Lookup(name string) (stream.StageFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	return f, ok
}

// Names lists the registered plugin names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
