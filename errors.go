package taskgen

import (
	"errors"
)

// Task generator errors
var (
	// Configuration errors
	ErrNoConfigurations    = errors.New("must be a non-empty collection of configurations")
	ErrEmptyConfig         = errors.New("wrong config format is passed")
	ErrConfigFileMissing   = errors.New("config file doesn't exist")
	ErrConfigParse         = errors.New("failed to parse config file")
	ErrConfigSchema        = errors.New("config does not match schema")
	ErrUnsupportedConfig   = errors.New("unsupported config file format")
	ErrTaskNameMissing     = errors.New("task name must be set")
	ErrSubTasksMissing     = errors.New("subTasks are not set")
	ErrSubTaskInvalid      = errors.New("src and dest must be set")
	ErrInheritedPluginMiss = errors.New("inherited plugin not declared by a previous sub-task")
	ErrInvalidInheritable  = errors.New("invalid value for inheritable field")
	ErrInvalidWatch        = errors.New("watch must be a boolean or a list of paths")
	ErrInvalidPluginEntry  = errors.New("plugin entry must be an object or a ~name reference")
	ErrInvalidTransformRef = errors.New("transform must be a name or an object with a name")

	// Lookup errors
	ErrPluginNotFound    = errors.New("plugin does not exist")
	ErrTransformNotFound = errors.New("transform does not exist")
	ErrBundlerMissing    = errors.New("no bundler configured")

	// Runner errors
	ErrTaskAlreadyRegistered = errors.New("task already registered")
	ErrTaskNotFound          = errors.New("task not found")
	ErrSchedulingUnsupported = errors.New("task runner does not support scheduling")
)

// Observer errors
var (
	ErrObserverNil = errors.New("observer cannot be nil")
)

// Generator errors
var (
	ErrRunnerNil = errors.New("task runner cannot be nil")
)
