package cmd

import "errors"

var (
	ErrUnknownFormat   = errors.New("unknown config format")
	ErrUnknownLogLevel = errors.New("unknown log level")
	ErrInvalidConfigs  = errors.New("configuration is invalid")
)
