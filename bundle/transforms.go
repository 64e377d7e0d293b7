package bundle

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Transform lookup errors
var (
	// ErrTransformNotFound signals that no transform is registered under a name.
	ErrTransformNotFound = errors.New("transform not found")
	// ErrTransformNameInvalid is returned for names that can never be registered.
	ErrTransformNameInvalid = errors.New("invalid transform name")
	ErrTransformRegistered  = errors.New("transform already registered")
)

// TransformFunc rewrites the source of one entry file.
type TransformFunc func(file string, src []byte, options map[string]any) ([]byte, error)

// Transform is a loaded transform paired with its options.
type Transform struct {
	Name    string
	Func    TransformFunc
	Options map[string]any
}

// Loader resolves transform names to implementations.
type Loader struct {
	mu         sync.RWMutex
	transforms map[string]TransformFunc
}

// NewLoader returns a loader holding the built-in transforms.
func NewLoader() *Loader {
	return &Loader{transforms: map[string]TransformFunc{
		"strictify": strictify,
		"envify":    envify,
		"banner":    banner,
	}}
}

// Register adds fn under name.
func (l *Loader) Register(name string, fn TransformFunc) error {
	if err := validName(name); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.transforms[name]; ok {
		return fmt.Errorf("%w: %s", ErrTransformRegistered, name)
	}
	l.transforms[name] = fn
	return nil
}

// Load returns the transform registered under name. An unknown name yields an
// error wrapping ErrTransformNotFound; a malformed name yields
// ErrTransformNameInvalid.
func (l *Loader) Load(name string) (TransformFunc, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	fn, ok := l.transforms[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTransformNotFound, name)
	}
	return fn, nil
}

// Names lists the registered transforms.
func (l *Loader) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.transforms))
	for n := range l.transforms {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func validName(name string) error {
	if strings.TrimSpace(name) == "" || strings.ContainsAny(name, " \t\n") {
		return fmt.Errorf("%w: %q", ErrTransformNameInvalid, name)
	}
	return nil
}

func strictify(file string, src []byte, options map[string]any) ([]byte, error) {
	if bytes.HasPrefix(bytes.TrimSpace(src), []byte(`"use strict"`)) || bytes.HasPrefix(bytes.TrimSpace(src), []byte(`'use strict'`)) {
		return src, nil
	}
	return append([]byte("\"use strict\";\n"), src...), nil
}

var envRef = regexp.MustCompile(`process\.env\.([A-Za-z_][A-Za-z0-9_]*)`)

// envify inlines process.env.NAME references. Values come from options first,
// then from the process environment; unknown names are left alone.
func envify(file string, src []byte, options map[string]any) ([]byte, error) {
	var failed error
	out := envRef.ReplaceAllFunc(src, func(m []byte) []byte {
		name := string(envRef.FindSubmatch(m)[1])
		value, ok := options[name]
		if !ok {
			env, set := os.LookupEnv(name)
			if !set {
				return m
			}
			value = env
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			failed = err
			return m
		}
		return encoded
	})
	if failed != nil {
		return nil, fmt.Errorf("envify %s: %w", file, failed)
	}
	return out, nil
}

func banner(file string, src []byte, options map[string]any) ([]byte, error) {
	text, _ := options["text"].(string)
	if text == "" {
		return src, nil
	}
	return append([]byte("/*! "+text+" */\n"), src...), nil
}
