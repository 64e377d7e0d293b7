package taskgen

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const configSchemaURL = "https://github.com/GoCodeAlone/taskgen/taskconfig.schema.json"

//go:embed taskconfig.schema.json
var configSchemaJSON []byte

type configSchemas struct {
	task    *jsonschema.Schema
	subTask *jsonschema.Schema
}

var configSchema = sync.OnceValues(compileConfigSchemas)

func compileConfigSchemas() (*configSchemas, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(configSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(configSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("failed to add config schema: %w", err)
	}
	task, err := compiler.Compile(configSchemaURL + "#/$defs/taskEntry")
	if err != nil {
		return nil, fmt.Errorf("failed to compile task config schema: %w", err)
	}
	subTask, err := compiler.Compile(configSchemaURL + "#/$defs/subTask")
	if err != nil {
		return nil, fmt.Errorf("failed to compile sub-task schema: %w", err)
	}
	return &configSchemas{task: task, subTask: subTask}, nil
}

// validateTaskEntry checks the task level fields of one configuration entry.
// Its sub-tasks are checked one by one with validateSubTask.
func validateTaskEntry(data []byte) error {
	schemas, err := configSchema()
	if err != nil {
		return err
	}
	return validateAgainst(schemas.task, data)
}

func validateSubTask(data []byte) error {
	schemas, err := configSchema()
	if err != nil {
		return err
	}
	return validateAgainst(schemas.subTask, data)
}

func validateAgainst(schema *jsonschema.Schema, data []byte) error {
	v, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigSchema, err)
	}
	return nil
}
