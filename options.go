package taskgen

import (
	"github.com/GoCodeAlone/taskgen/bundle"
	"github.com/GoCodeAlone/taskgen/matcher"
	"github.com/GoCodeAlone/taskgen/plugins"
)

type options struct {
	paths      *Paths
	logger     Logger
	plugins    PluginLookup
	transforms TransformLoader
	bundler    Bundler
	matcher    SourceMatcher
	newName    func() string
	configsDir string
	loaderOpts []ConfigLoaderOption
}

// Option configures a Generator or a Composer.
type Option func(*options)

// WithRoot anchors every configured path at root instead of the working directory.
func WithRoot(root string) Option {
	return func(o *options) {
		o.paths = NewPaths(root)
	}
}

// WithLogger sets the logger. A nil logger discards everything.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithPlugins replaces the built-in plugin registry.
func WithPlugins(lookup PluginLookup) Option {
	return func(o *options) {
		o.plugins = lookup
	}
}

// WithTransforms replaces the built-in bundle transform loader.
func WithTransforms(loader TransformLoader) Option {
	return func(o *options) {
		o.transforms = loader
	}
}

// WithBundler replaces the built-in bundler. A nil bundler disables bundling
// mode; such sub-tasks fall back to piping their sources.
func WithBundler(b Bundler) Option {
	return func(o *options) {
		o.bundler = b
	}
}

// WithMatcher replaces the glob source matcher.
func WithMatcher(m SourceMatcher) Option {
	return func(o *options) {
		o.matcher = m
	}
}

// WithNameGenerator sets the function naming sub-tasks declared without a name.
func WithNameGenerator(fn func() string) Option {
	return func(o *options) {
		o.newName = fn
	}
}

// WithConfigLoaderOptions configures configuration discovery.
func WithConfigLoaderOptions(opts ...ConfigLoaderOption) Option {
	return func(o *options) {
		o.loaderOpts = append(o.loaderOpts, opts...)
	}
}

func buildOptions(opts []Option) (*options, error) {
	o := &options{
		plugins:    plugins.Default(),
		transforms: bundle.NewLoader(),
		bundler:    bundle.New(),
		matcher:    matcher.New(),
		newName:    randomName,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.paths == nil {
		p, err := WorkingDirPaths()
		if err != nil {
			return nil, err
		}
		o.paths = p
	}
	o.logger = loggerOrNoop(o.logger)
	if o.configsDir == "" {
		o.configsDir = o.paths.Abs(DefaultConfigsDir)
	}
	return o, nil
}
