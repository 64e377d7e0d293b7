package taskgen

import (
	"fmt"

	"github.com/GoCodeAlone/taskgen/plugins"
	"github.com/GoCodeAlone/taskgen/stream"
)

// SourcemapsDir is where sourcemaps.write puts the maps, relative to the
// destination.
const SourcemapsDir = "./maps"

// PipelineBuilder applies named plugins to a stream.
type PipelineBuilder struct {
	plugins PluginLookup
	logger  Logger
}

// NewPipelineBuilder creates a builder resolving plugin names with lookup.
func NewPipelineBuilder(lookup PluginLookup, logger Logger) *PipelineBuilder {
	return &PipelineBuilder{plugins: lookup, logger: loggerOrNoop(logger)}
}

// Apply pipes s through refs in declaration order, wrapped in the sourcemap
// init/write pair when sourcemaps is set. Unknown plugins are logged and
// skipped one by one; the stream is always returned.
func (b *PipelineBuilder) Apply(s *stream.Stream, refs []PluginRef, sourcemaps bool) *stream.Stream {
	if len(refs) == 0 {
		b.logger.Warn("No plugins are set for the sub-task")
		return s
	}

	wrapped := false
	if sourcemaps {
		if next, ok := b.pipe(s, PluginRef{Name: plugins.SourcemapsInit, Options: map[string]any{"loadMaps": true}}); ok {
			s, wrapped = next, true
		}
	}

	for _, ref := range refs {
		if next, ok := b.pipe(s, ref); ok {
			s = next
		}
	}

	if wrapped {
		if next, ok := b.pipe(s, PluginRef{Name: plugins.SourcemapsWrite, Options: SourcemapsDir}); ok {
			s = next
		}
	}
	return s
}

func (b *PipelineBuilder) pipe(s *stream.Stream, ref PluginRef) (*stream.Stream, bool) {
	var factory stream.StageFactory
	ok := false
	if b.plugins != nil {
		factory, ok = b.plugins.Lookup(ref.Name)
	}
	if !ok {
		b.logger.Error("Plugin is not found", "plugin", ref.Name, "error", fmt.Errorf("%w: %s", ErrPluginNotFound, ref.Name))
		return s, false
	}
	stage, err := factory(ref.Options)
	if err != nil {
		b.logger.Error("Plugin rejected its options", "plugin", ref.Name, "error", err)
		return s, false
	}
	b.logger.Info("Plugin", "plugin", ref.Name, "options", ref.Options)
	return s.Pipe(ref.Name, stage), true
}
