package taskgen

import (
	"os"
	"strings"
)

// Paths anchors project relative path fragments at a root directory.
//
// Fragments are concatenated to the root verbatim, so configuration entries are
// expected to start with a separator ("/src/app.js"). No cleaning happens: ".."
// segments and doubled separators are passed through as written.
type Paths struct {
	root string
}

// NewPaths creates a resolver rooted at root.
func NewPaths(root string) *Paths {
	return &Paths{root: root}
}

// WorkingDirPaths creates a resolver rooted at the process working directory.
func WorkingDirPaths() (*Paths, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return NewPaths(wd), nil
}

// Root returns the anchor directory.
func (p *Paths) Root() string {
	return p.root
}

// Abs anchors rel at the root.
func (p *Paths) Abs(rel string) string {
	return p.root + rel
}

// AbsAll anchors every entry of rels. A nil slice yields an empty one.
func (p *Paths) AbsAll(rels []string) []string {
	out := make([]string, 0, len(rels))
	for _, r := range rels {
		out = append(out, p.Abs(r))
	}
	return out
}

// Display shortens an absolute path for log output by replacing the root with
// ".". A leading "!" negation is kept in front.
func (p *Paths) Display(abs string) string {
	if rest, ok := strings.CutPrefix(abs, "!"); ok {
		return "!" + p.Display(rest)
	}
	if p.root != "" && strings.HasPrefix(abs, p.root) {
		return "." + strings.TrimPrefix(abs, p.root)
	}
	return abs
}

// DisplayAll applies Display to every entry.
func (p *Paths) DisplayAll(abs []string) []string {
	out := make([]string, len(abs))
	for i, a := range abs {
		out[i] = p.Display(a)
	}
	return out
}
