package feeders

import (
	"os"
	"reflect"

	"gopkg.in/yaml.v3"
)

// YamlFeeder is a feeder that reads YAML files with optional verbose debug logging
type YamlFeeder struct {
	Path         string
	verboseDebug bool
	logger       interface {
		Debug(msg string, args ...any)
	}
}

// NewYamlFeeder creates a new YamlFeeder that reads from the specified YAML file
func NewYamlFeeder(filePath string) *YamlFeeder {
	return &YamlFeeder{Path: filePath}
}

// SetVerboseDebug enables or disables verbose debug logging
func (y *YamlFeeder) SetVerboseDebug(enabled bool, logger interface{ Debug(msg string, args ...any) }) {
	y.verboseDebug = enabled
	y.logger = logger
	if enabled && logger != nil {
		y.logger.Debug("Verbose YAML feeder debugging enabled")
	}
}

// Feed reads the YAML file and decodes it into structure
func (y *YamlFeeder) Feed(structure interface{}) error {
	if y.verboseDebug && y.logger != nil {
		y.logger.Debug("YamlFeeder: Starting feed process", "filePath", y.Path, "structureType", reflect.TypeOf(structure))
	}

	data, err := os.ReadFile(y.Path)
	if err != nil {
		return wrapYAMLReadError(y.Path, err)
	}
	if err := yaml.Unmarshal(data, structure); err != nil {
		if y.verboseDebug && y.logger != nil {
			y.logger.Debug("YamlFeeder: Feed completed with error", "filePath", y.Path, "error", err)
		}
		return wrapYAMLParseError(y.Path, err)
	}

	if y.verboseDebug && y.logger != nil {
		y.logger.Debug("YamlFeeder: Feed completed successfully", "filePath", y.Path)
	}
	return nil
}
