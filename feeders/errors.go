package feeders

import (
	"errors"
	"fmt"
)

// Static error definitions for feeders

// JSON feeder errors
var (
	ErrJSONRead  = errors.New("failed to read JSON file")
	ErrJSONParse = errors.New("failed to parse JSON file")
)

// YAML feeder errors
var (
	ErrYAMLRead  = errors.New("failed to read YAML file")
	ErrYAMLParse = errors.New("failed to parse YAML file")
)

// TOML feeder errors
var (
	ErrTOMLRead  = errors.New("failed to read TOML file")
	ErrTOMLParse = errors.New("failed to parse TOML file")
)

// General feeder errors
var (
	ErrUnsupportedFormat = errors.New("unsupported config file format")
)

func wrapJSONReadError(path string, err error) error {
	return fmt.Errorf("%w %s: %v", ErrJSONRead, path, err)
}

func wrapJSONParseError(path string, err error) error {
	return fmt.Errorf("%w %s: %v", ErrJSONParse, path, err)
}

func wrapYAMLReadError(path string, err error) error {
	return fmt.Errorf("%w %s: %v", ErrYAMLRead, path, err)
}

func wrapYAMLParseError(path string, err error) error {
	return fmt.Errorf("%w %s: %v", ErrYAMLParse, path, err)
}

func wrapTOMLReadError(path string, err error) error {
	return fmt.Errorf("%w %s: %v", ErrTOMLRead, path, err)
}

func wrapTOMLParseError(path string, err error) error {
	return fmt.Errorf("%w %s: %v", ErrTOMLParse, path, err)
}

func wrapUnsupportedFormatError(path string) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}
