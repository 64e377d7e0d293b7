package stream

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// SourceMap is a revision 3 source map attached to a File.
type SourceMap struct {
	Version        int      `json:"version"`
	File           string   `json:"file"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent,omitempty"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

// NewSourceMap returns a map that describes file as its own single source.
func NewSourceMap(file string, contents []byte) *SourceMap {
	return &SourceMap{
		Version:        3,
		File:           file,
		Sources:        []string{file},
		SourcesContent: []string{string(contents)},
		Names:          []string{},
	}
}

// Clone returns a deep copy of the map.
func (m *SourceMap) Clone() *SourceMap {
	c := *m
	c.Sources = append([]string(nil), m.Sources...)
	c.SourcesContent = append([]string(nil), m.SourcesContent...)
	c.Names = append([]string(nil), m.Names...)
	return &c
}

// Merge appends the sources of other that are not yet listed in m.
func (m *SourceMap) Merge(other *SourceMap) {
	seen := make(map[string]bool, len(m.Sources))
	for _, s := range m.Sources {
		seen[s] = true
	}
	for i, s := range other.Sources {
		if seen[s] {
			continue
		}
		seen[s] = true
		m.Sources = append(m.Sources, s)
		if i < len(other.SourcesContent) {
			m.SourcesContent = append(m.SourcesContent, other.SourcesContent[i])
		}
	}
}

// Encode serializes the map as JSON.
func (m *SourceMap) Encode() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode source map: %w", err)
	}
	return data, nil
}

// DataURL returns the map as a base64 data URL suitable for inline comments.
func (m *SourceMap) DataURL() (string, error) {
	data, err := m.Encode()
	if err != nil {
		return "", err
	}
	return "data:application/json;charset=utf-8;base64," + base64.StdEncoding.EncodeToString(data), nil
}

// DecodeSourceMap parses a JSON encoded source map.
func DecodeSourceMap(data []byte) (*SourceMap, error) {
	var m SourceMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode source map: %w", err)
	}
	return &m, nil
}
