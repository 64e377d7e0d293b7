package taskgen

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/GoCodeAlone/taskgen/feeders"
	"github.com/GoCodeAlone/taskgen/matcher"
)

// DefaultConfigsDir is the discovery directory relative to the root.
const DefaultConfigsDir = "/configs"

// ConfigLoader discovers and decodes task configuration files.
type ConfigLoader struct {
	paths      *Paths
	logger     Logger
	recursive  bool
	extensions []string
	verbose    bool
}

// ConfigLoaderOption configures a ConfigLoader.
type ConfigLoaderOption func(*ConfigLoader)

// WithRecursiveConfigs makes discovery descend into subdirectories.
func WithRecursiveConfigs(recursive bool) ConfigLoaderOption {
	return func(l *ConfigLoader) {
		l.recursive = recursive
	}
}

// WithConfigExtensions sets the file extensions that are discovered, such as
// ".json" or ".yaml". The default is ".json" only.
func WithConfigExtensions(exts ...string) ConfigLoaderOption {
	return func(l *ConfigLoader) {
		l.extensions = append([]string(nil), exts...)
	}
}

// WithVerboseConfigDebug turns on the feeders' debug logging.
func WithVerboseConfigDebug(enabled bool) ConfigLoaderOption {
	return func(l *ConfigLoader) {
		l.verbose = enabled
	}
}

// NewConfigLoader creates a loader resolving display paths against paths.
func NewConfigLoader(paths *Paths, logger Logger, opts ...ConfigLoaderOption) *ConfigLoader {
	l := &ConfigLoader{
		paths:      paths,
		logger:     loggerOrNoop(logger),
		extensions: []string{".json"},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// DefaultDir returns the discovery directory used when none is set.
func (l *ConfigLoader) DefaultDir() string {
	return l.paths.Abs(DefaultConfigsDir)
}

// ListConfigFiles returns the configuration files under dir, sorted by path.
// An empty result is not an error.
func (l *ConfigLoader) ListConfigFiles(dir string) ([]string, error) {
	patterns := make([]string, 0, len(l.extensions))
	for _, ext := range l.extensions {
		if l.recursive {
			patterns = append(patterns, filepath.Join(dir, "**", "*"+ext))
		} else {
			patterns = append(patterns, filepath.Join(dir, "*"+ext))
		}
	}
	refs, err := matcher.New().Glob(patterns)
	if err != nil {
		return nil, fmt.Errorf("list configs in %s: %w", l.paths.Display(dir), err)
	}
	files := make([]string, 0, len(refs))
	for _, r := range refs {
		files = append(files, r.Path)
	}
	sort.Strings(files)
	return files, nil
}

// LoadConfig decodes the task configurations held by one file. A file holds a
// single configuration object or an array of them. Malformed or empty entries
// are reported and dropped, and the rest of the file is kept.
//
// A missing file is reported before the load is attempted; the load error is
// what the caller receives.
func (l *ConfigLoader) LoadConfig(path string) ([]TaskConfig, error) {
	configs, skipped, err := l.InspectConfig(path)
	for _, p := range skipped {
		if errors.Is(p, ErrEmptyConfig) {
			l.logger.Error("Wrong config format is passed", "path", l.paths.Display(path))
			continue
		}
		l.logger.Error("Malformed config entry is skipped", "path", l.paths.Display(path), "error", p)
	}
	if err != nil {
		return nil, err
	}
	l.logger.Debug("Loaded config", "path", l.paths.Display(path), "tasks", len(configs))
	return configs, nil
}

// InspectConfig decodes like LoadConfig but returns the dropped entries
// instead of logging them.
func (l *ConfigLoader) InspectConfig(path string) ([]TaskConfig, []error, error) {
	if !matcher.Exists(path) {
		l.logger.Error("Config file doesn't exist", "path", l.paths.Display(path), "error", ErrConfigFileMissing)
	}

	feeder, err := feeders.ForFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnsupportedConfig, err)
	}
	if vf, ok := feeder.(feeders.VerboseFeeder); ok && l.verbose {
		vf.SetVerboseDebug(true, l.logger)
	}

	var doc any
	if err := feeder.Feed(&doc); err != nil {
		return nil, nil, fmt.Errorf("%w %s: %w", ErrConfigParse, l.paths.Display(path), err)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, nil, fmt.Errorf("%w %s: %w", ErrConfigParse, l.paths.Display(path), err)
	}
	configs, skipped, err := DecodeConfigs(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", l.paths.Display(path), err)
	}
	return configs, skipped, nil
}

// LoadAll loads every configuration file under dir in path order. Files that
// fail to load are logged and skipped.
func (l *ConfigLoader) LoadAll(dir string) ([]TaskConfig, error) {
	files, err := l.ListConfigFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		l.logger.Warn("No config files found", "dir", l.paths.Display(dir))
	}
	var all []TaskConfig
	for _, f := range files {
		configs, err := l.LoadConfig(f)
		if err != nil {
			l.logger.Error("Failed to load config", "path", l.paths.Display(f), "error", err)
			continue
		}
		all = append(all, configs...)
	}
	return all, nil
}

// DecodeConfigs decodes a JSON document holding one TaskConfig object or an
// array of them. Every entry and every sub-task is checked against the
// configuration schema on its own; the ones that fail are dropped and returned
// as skipped, and decoding goes on with their siblings. Empty entries are
// skipped with ErrEmptyConfig.
//
// An error is returned when the document is not JSON, is neither an object nor
// an array, or yields no configuration at all.
func DecodeConfigs(data []byte) ([]TaskConfig, []error, error) {
	entries, err := documentEntries(data)
	if err != nil {
		return nil, nil, err
	}

	var configs []TaskConfig
	var skipped []error
	for i, raw := range entries {
		cfg, dropped, err := decodeTaskConfig(raw)
		for _, d := range dropped {
			skipped = append(skipped, fmt.Errorf("task config #%d: %w", i, d))
		}
		switch {
		case err != nil:
			skipped = append(skipped, fmt.Errorf("task config #%d: %w", i, err))
		case cfg.IsEmpty():
			skipped = append(skipped, fmt.Errorf("task config #%d: %w", i, ErrEmptyConfig))
		default:
			configs = append(configs, cfg)
		}
	}

	if len(configs) == 0 {
		if len(skipped) == 0 {
			return nil, nil, ErrEmptyConfig
		}
		return nil, nil, errors.Join(skipped...)
	}
	return configs, skipped, nil
}

func documentEntries(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	var doc json.RawMessage
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, errors.Join(ErrConfigParse, err)
	}
	switch trimmed[0] {
	case '[':
		var entries []json.RawMessage
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, errors.Join(ErrConfigParse, err)
		}
		return entries, nil
	case '{':
		return []json.RawMessage{doc}, nil
	default:
		return nil, fmt.Errorf("%w: expected a task config object or an array of them", ErrConfigSchema)
	}
}

// decodeTaskConfig decodes one entry. Sub-tasks that fail are left out and
// returned as dropped; err reports an entry that cannot be used at all.
func decodeTaskConfig(raw json.RawMessage) (TaskConfig, []error, error) {
	if err := validateTaskEntry(raw); err != nil {
		return TaskConfig{}, nil, err
	}
	var head struct {
		Name     string            `json:"name"`
		Schedule string            `json:"schedule"`
		SubTasks []json.RawMessage `json:"subTasks"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return TaskConfig{}, nil, errors.Join(ErrConfigParse, err)
	}

	cfg := TaskConfig{Name: head.Name, Schedule: head.Schedule}
	var dropped []error
	for i, rawSub := range head.SubTasks {
		sub, err := decodeSubTask(rawSub)
		if err != nil {
			dropped = append(dropped, fmt.Errorf("task %q sub-task #%d: %w", head.Name, i, err))
			continue
		}
		cfg.SubTasks = append(cfg.SubTasks, sub)
	}
	return cfg, dropped, nil
}

func decodeSubTask(raw json.RawMessage) (SubTaskConfig, error) {
	if err := validateSubTask(raw); err != nil {
		return SubTaskConfig{}, err
	}
	var sub SubTaskConfig
	if err := json.Unmarshal(raw, &sub); err != nil {
		return SubTaskConfig{}, errors.Join(ErrConfigParse, err)
	}
	return sub, nil
}
