package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettingsFromEnvironment(t *testing.T) {
	t.Setenv("TASKGEN_ROOT", "/project")
	t.Setenv("TASKGEN_CONFIGS", "/build/configs")
	t.Setenv("TASKGEN_LOG_LEVEL", "debug")
	t.Setenv("TASKGEN_RECURSIVE", "true")
	t.Setenv("TASKGEN_FORMATS", "json,toml")

	s, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, Settings{
		Root:      "/project",
		Configs:   "/build/configs",
		LogLevel:  "debug",
		Recursive: true,
		Formats:   "json,toml",
	}, s)

	exts, err := s.Extensions()
	require.NoError(t, err)
	assert.Equal(t, []string{".json", ".toml"}, exts)
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, "/configs", s.Configs)
	exts, err := s.Extensions()
	require.NoError(t, err)
	assert.Equal(t, []string{".json"}, exts)
}

func TestSlogLoggerLevels(t *testing.T) {
	for _, level := range []string{"", "debug", "info", "warn", "warning", "error", "DEBUG"} {
		_, err := NewSlogLogger(nil, level)
		assert.NoError(t, err, level)
	}
}
