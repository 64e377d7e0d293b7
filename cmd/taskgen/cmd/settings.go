package cmd

import (
	"fmt"
	"strings"

	"github.com/golobby/config/v3"

	"github.com/GoCodeAlone/taskgen/feeders"
)

// Settings control where the CLI looks for configurations and how it logs.
type Settings struct {
	// Root anchors every configured path; defaults to the working directory.
	Root string `env:"TASKGEN_ROOT"`
	// Configs is the configuration directory relative to Root.
	Configs   string `env:"TASKGEN_CONFIGS"`
	LogLevel  string `env:"TASKGEN_LOG_LEVEL"`
	Recursive bool   `env:"TASKGEN_RECURSIVE"`
	// Formats lists the discovered file formats, comma separated.
	Formats string `env:"TASKGEN_FORMATS"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Configs:  "/configs",
		LogLevel: "info",
		Formats:  "json",
	}
}

// LoadSettings overlays the TASKGEN_* environment variables on the defaults.
func LoadSettings() (Settings, error) {
	s := DefaultSettings()
	if err := config.New().AddFeeder(feeders.NewEnvFeeder()).AddStruct(&s).Feed(); err != nil {
		return Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	return s, nil
}

// Extensions returns the configuration file extensions for Formats.
func (s Settings) Extensions() ([]string, error) {
	var exts []string
	for _, f := range strings.Split(s.Formats, ",") {
		switch strings.ToLower(strings.TrimSpace(f)) {
		case "":
		case "json":
			exts = append(exts, ".json")
		case "yaml", "yml":
			exts = append(exts, ".yaml", ".yml")
		case "toml":
			exts = append(exts, ".toml")
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
		}
	}
	if len(exts) == 0 {
		exts = []string{".json"}
	}
	return exts, nil
}
