package feeders

import (
	"path/filepath"
	"strings"
)

// Extensions lists the file extensions ForFile understands.
var Extensions = []string{".json", ".yaml", ".yml", ".toml"}

// ForFile returns the feeder matching the extension of path.
func ForFile(path string) (Feeder, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return NewJSONFeeder(path), nil
	case ".yaml", ".yml":
		return NewYamlFeeder(path), nil
	case ".toml":
		return NewTomlFeeder(path), nil
	default:
		return nil, wrapUnsupportedFormatError(path)
	}
}
