package feeders

import (
	"encoding/json"
	"os"
	"reflect"
)

// Feeder interface for common operations
type Feeder interface {
	Feed(target interface{}) error
}

// VerboseFeeder is a Feeder with switchable debug logging.
type VerboseFeeder interface {
	Feeder
	SetVerboseDebug(enabled bool, logger interface{ Debug(msg string, args ...any) })
}

// JSONFeeder is a feeder that reads JSON files with optional verbose debug logging
type JSONFeeder struct {
	Path         string
	verboseDebug bool
	logger       interface {
		Debug(msg string, args ...any)
	}
}

// NewJSONFeeder creates a new JSONFeeder that reads from the specified JSON file
func NewJSONFeeder(filePath string) *JSONFeeder {
	return &JSONFeeder{Path: filePath}
}

// SetVerboseDebug enables or disables verbose debug logging
func (j *JSONFeeder) SetVerboseDebug(enabled bool, logger interface{ Debug(msg string, args ...any) }) {
	j.verboseDebug = enabled
	j.logger = logger
	if enabled && logger != nil {
		j.logger.Debug("Verbose JSON feeder debugging enabled")
	}
}

// Feed reads the JSON file and decodes it into structure
func (j *JSONFeeder) Feed(structure interface{}) error {
	if j.verboseDebug && j.logger != nil {
		j.logger.Debug("JSONFeeder: Starting feed process", "filePath", j.Path, "structureType", reflect.TypeOf(structure))
	}

	data, err := os.ReadFile(j.Path)
	if err != nil {
		return wrapJSONReadError(j.Path, err)
	}
	if err := json.Unmarshal(data, structure); err != nil {
		if j.verboseDebug && j.logger != nil {
			j.logger.Debug("JSONFeeder: Feed completed with error", "filePath", j.Path, "error", err)
		}
		return wrapJSONParseError(j.Path, err)
	}

	if j.verboseDebug && j.logger != nil {
		j.logger.Debug("JSONFeeder: Feed completed successfully", "filePath", j.Path)
	}
	return nil
}
