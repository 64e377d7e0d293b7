package feeders

import (
	"os"

	"github.com/BurntSushi/toml"
)

// TomlFeeder is a feeder that reads TOML files
type TomlFeeder struct {
	Path string
}

// NewTomlFeeder creates a new TomlFeeder that reads from the specified TOML file
func NewTomlFeeder(filePath string) *TomlFeeder {
	return &TomlFeeder{Path: filePath}
}

// Feed reads the TOML file and decodes it into structure. Keys present in the
// file but absent from structure are ignored.
func (t *TomlFeeder) Feed(structure interface{}) error {
	data, err := os.ReadFile(t.Path)
	if err != nil {
		return wrapTOMLReadError(t.Path, err)
	}
	if _, err := toml.Decode(string(data), structure); err != nil {
		return wrapTOMLParseError(t.Path, err)
	}
	return nil
}
