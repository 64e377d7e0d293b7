// Package matcher expands source patterns into files on disk.
//
// Patterns use the usual glob syntax (`*`, `?`, `[...]`, `{a,b}` and `**` for
// any number of directories). A pattern prefixed with `!` excludes every file
// it matches from the result, regardless of where it appears in the list.
package matcher

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/GoCodeAlone/taskgen/stream"
)

// Negation is the prefix marking an exclude pattern.
const Negation = "!"

var (
	// ErrEmptyPattern is returned when a pattern is blank.
	ErrEmptyPattern = errors.New("empty pattern")
	// ErrInvalidPattern wraps glob compilation failures.
	ErrInvalidPattern = errors.New("invalid pattern")
)

type compiled struct {
	pattern string
	base    string
	magic   bool
	globs   []glob.Glob
}

func (c compiled) match(slashed string) bool {
	for _, g := range c.globs {
		if g.Match(slashed) {
			return true
		}
	}
	return false
}

// compileGlobs compiles pattern and, when it contains "/**/", the variant
// matching zero intermediate directories.
func compileGlobs(pattern string) ([]glob.Glob, error) {
	variants := []string{pattern}
	if strings.Contains(pattern, "/**/") {
		variants = append(variants, strings.ReplaceAll(pattern, "/**/", "/"))
	}
	globs := make([]glob.Glob, 0, len(variants))
	for _, v := range variants {
		g, err := glob.Compile(v, '/')
		if err != nil {
			return nil, err
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// Set is a compiled list of include and exclude patterns.
type Set struct {
	include []compiled
	exclude []compiled
}

// Compile compiles patterns into a Set.
func Compile(patterns []string) (*Set, error) {
	set := &Set{}
	for _, p := range patterns {
		negated := strings.HasPrefix(p, Negation)
		p = strings.TrimPrefix(p, Negation)
		if strings.TrimSpace(p) == "" {
			return nil, ErrEmptyPattern
		}
		globs, err := compileGlobs(filepath.ToSlash(p))
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, p, err)
		}
		c := compiled{pattern: p, base: Base(p), magic: HasMagic(p), globs: globs}
		if negated {
			set.exclude = append(set.exclude, c)
		} else {
			set.include = append(set.include, c)
		}
	}
	return set, nil
}

// Match reports whether path is selected by an include pattern and not
// rejected by any exclude pattern.
func (s *Set) Match(path string) bool {
	slashed := filepath.ToSlash(path)
	if s.excluded(slashed) {
		return false
	}
	for _, c := range s.include {
		if c.match(slashed) {
			return true
		}
	}
	return false
}

// Roots returns the static directories the include patterns are anchored at,
// in pattern order and without duplicates.
func (s *Set) Roots() []string {
	seen := make(map[string]bool)
	var roots []string
	for _, c := range s.include {
		root := c.base
		if !c.magic {
			root = filepath.Dir(c.pattern)
		}
		if seen[root] {
			continue
		}
		seen[root] = true
		roots = append(roots, root)
	}
	return roots
}

func (s *Set) excluded(slashed string) bool {
	for _, c := range s.exclude {
		if c.match(slashed) {
			return true
		}
	}
	return false
}

// Matcher resolves pattern lists against the filesystem.
type Matcher struct{}

// New creates a Matcher.
func New() *Matcher {
	return &Matcher{}
}

// Glob returns the files selected by patterns. Files are returned in include
// pattern order, each only once, with the static part of the matching pattern
// as their base. Include patterns whose base directory does not exist simply
// match nothing.
func (m *Matcher) Glob(patterns []string) ([]stream.Ref, error) {
	set, err := Compile(patterns)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var refs []stream.Ref
	add := func(path, base string) {
		if seen[path] || set.excluded(filepath.ToSlash(path)) {
			return
		}
		seen[path] = true
		refs = append(refs, stream.Ref{Path: path, Base: base})
	}

	for _, c := range set.include {
		if !c.magic {
			if info, err := os.Stat(c.pattern); err == nil && !info.IsDir() {
				add(c.pattern, filepath.Dir(c.pattern))
			}
			continue
		}

		err := filepath.WalkDir(c.base, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return filepath.SkipDir
				}
				return err
			}
			if d.IsDir() {
				return nil
			}
			if c.match(filepath.ToSlash(path)) {
				add(path, c.base)
			}
			return nil
		})
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("walk %s: %w", c.base, err)
		}
	}
	return refs, nil
}

// Exists reports whether path names an existing file or directory.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// HasMagic reports whether pattern contains glob meta characters.
func HasMagic(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// Base returns the longest leading directory of pattern that contains no glob
// meta characters.
func Base(pattern string) string {
	if !HasMagic(pattern) {
		return filepath.Dir(pattern)
	}
	parts := strings.Split(filepath.ToSlash(pattern), "/")
	var static []string
	for _, part := range parts[:len(parts)-1] {
		if HasMagic(part) {
			break
		}
		static = append(static, part)
	}
	base := strings.Join(static, "/")
	switch {
	case base == "" && strings.HasPrefix(pattern, "/"):
		return string(filepath.Separator)
	case base == "":
		return "."
	}
	return filepath.FromSlash(base)
}
