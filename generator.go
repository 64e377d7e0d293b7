package taskgen

import (
	"fmt"
	"sync"
)

// Generator is the entry point: it collects task configurations, from a
// configuration directory or supplied directly, and registers their tasks
// with a TaskRunner.
//
//	gen, err := taskgen.NewGenerator(r, taskgen.WithRoot(root))
//	if err != nil {
//	    return err
//	}
//	gen.SetConfigsPath("/build/configs")
//	names, err := gen.CreateTasks()
type Generator struct {
	subject

	runner   TaskRunner
	opts     *options
	loader   *ConfigLoader
	composer *Composer

	mu         sync.Mutex
	configsDir string
	configs    []TaskConfig
}

// NewGenerator creates a generator registering into runner. A logging
// observer reporting finished sub-tasks is registered by default.
func NewGenerator(runner TaskRunner, opts ...Option) (*Generator, error) {
	if runner == nil {
		return nil, ErrRunnerNil
	}
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	g := &Generator{
		runner:     runner,
		opts:       o,
		loader:     NewConfigLoader(o.paths, o.logger, o.loaderOpts...),
		configsDir: o.configsDir,
	}
	g.composer = newComposer(runner, g, o)
	if err := g.RegisterObserver(&loggingObserver{logger: o.logger, paths: o.paths}); err != nil {
		return nil, err
	}
	return g, nil
}

// Paths returns the path resolver used for every configured path.
func (g *Generator) Paths() *Paths {
	return g.opts.paths
}

// Loader returns the configuration loader.
func (g *Generator) Loader() *ConfigLoader {
	return g.loader
}

// Composer returns the composer registering the tasks.
func (g *Generator) Composer() *Composer {
	return g.composer
}

// SetConfigsPath sets the configuration directory, relative to the root.
func (g *Generator) SetConfigsPath(rel string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.configsDir = g.opts.paths.Abs(rel)
}

// ConfigsDir returns the absolute configuration directory.
func (g *Generator) ConfigsDir() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.configsDir
}

// SetConfigs supplies configurations directly, bypassing discovery. Empty
// entries are logged and dropped. An empty collection is fatal: it is logged
// and ErrNoConfigurations is returned.
func (g *Generator) SetConfigs(configs []TaskConfig) error {
	if len(configs) == 0 {
		g.opts.logger.Error("Configs must be a non-empty collection", "fatal", true, "error", ErrNoConfigurations)
		return ErrNoConfigurations
	}
	kept := make([]TaskConfig, 0, len(configs))
	for i, c := range configs {
		if c.IsEmpty() {
			g.opts.logger.Error("Wrong config format is passed", "index", i, "error", ErrEmptyConfig)
			continue
		}
		kept = append(kept, c)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.configs = kept
	return nil
}

// Configs returns the configurations CreateTasks will register: the ones
// supplied with SetConfigs, or else those found in the configuration
// directory.
func (g *Generator) Configs() ([]TaskConfig, error) {
	g.mu.Lock()
	configs, dir := g.configs, g.configsDir
	g.mu.Unlock()
	if configs != nil {
		return configs, nil
	}
	loaded, err := g.loader.LoadAll(dir)
	if err != nil {
		return nil, fmt.Errorf("load configs: %w", err)
	}
	return loaded, nil
}

// CreateTasks registers the tasks of every configuration and returns the
// umbrella task names in configuration order.
func (g *Generator) CreateTasks() ([]string, error) {
	configs, err := g.Configs()
	if err != nil {
		return nil, err
	}
	return g.composer.Compose(configs), nil
}

// Close stops live bundle rebuilds started by task runs.
func (g *Generator) Close() error {
	return g.composer.Close()
}

var _ Subject = (*Generator)(nil)
