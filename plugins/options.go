package plugins

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidOptions is returned when a plugin cannot interpret its options.
var ErrInvalidOptions = errors.New("invalid plugin options")

// decodeOptions re-marshals the opaque options value into target so plugins
// can declare typed option structs.
func decodeOptions(plugin string, options any, target any) error {
	data, err := json.Marshal(options)
	if err != nil {
		return fmt.Errorf("%w for %s: %v", ErrInvalidOptions, plugin, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w for %s: %v", ErrInvalidOptions, plugin, err)
	}
	return nil
}

// stringOrField accepts either a bare string or an object and returns the
// string, or decodes the object into target.
func stringOrField(plugin string, options any, target any) (string, error) {
	switch v := options.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return "", decodeOptions(plugin, options, target)
	}
}
