// Package bundle combines entry files into a single artifact.
//
// The bundler wraps every entry in its own function scope and concatenates
// the results in entry order. Bundle level transforms run on each entry's
// source before it is wrapped. When caching is requested the transformed
// source of each entry is kept between builds and reused as long as the file
// on disk is unchanged, which keeps live rebuilds cheap.
package bundle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/GoCodeAlone/taskgen/stream"
)

// Bundler errors
var (
	ErrNoEntries = errors.New("bundle has no entry files")
)

// Request describes one bundle build.
type Request struct {
	// Entries are absolute paths of the entry files, in bundle order.
	Entries []string
	// File is the name of the produced artifact.
	File string
	// Debug appends an inline source map listing the entries.
	Debug bool
	// Cache keeps transformed entries between builds of the same Bundler.
	Cache bool
	// Transforms run on each entry in order.
	Transforms []Transform
}

type cacheEntry struct {
	modTime time.Time
	size    int64
	key     string
	output  []byte
}

// Bundler builds bundles. It is safe for concurrent use.
type Bundler struct {
	mu    sync.Mutex
	cache map[string]cacheEntry
	hits  int
}

// New creates a Bundler with an empty cache.
func New() *Bundler {
	return &Bundler{cache: make(map[string]cacheEntry)}
}

// Bundle builds req and returns the artifact contents.
func (b *Bundler) Bundle(ctx context.Context, req Request) ([]byte, error) {
	if len(req.Entries) == 0 {
		return nil, ErrNoEntries
	}

	var buf bytes.Buffer
	sm := &stream.SourceMap{Version: 3, File: req.File, Names: []string{}}
	for _, entry := range req.Entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		src, err := b.load(entry, req)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&buf, "// %s\n;(function () {\n", filepath.Base(entry))
		buf.Write(src)
		if len(src) > 0 && src[len(src)-1] != '\n' {
			buf.WriteByte('\n')
		}
		buf.WriteString("})();\n")
		sm.Sources = append(sm.Sources, filepath.ToSlash(entry))
		sm.SourcesContent = append(sm.SourcesContent, string(src))
	}

	if req.Debug {
		url, err := sm.DataURL()
		if err != nil {
			return nil, err
		}
		buf.WriteString("//# sourceMappingURL=" + url + "\n")
	}
	return buf.Bytes(), nil
}

// CacheHits reports how many entries were served from the cache.
func (b *Bundler) CacheHits() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits
}

func (b *Bundler) load(entry string, req Request) ([]byte, error) {
	info, err := os.Stat(entry)
	if err != nil {
		return nil, fmt.Errorf("bundle entry %s: %w", entry, err)
	}
	key := transformKey(req.Transforms)

	if req.Cache {
		b.mu.Lock()
		cached, ok := b.cache[entry]
		if ok && cached.modTime.Equal(info.ModTime()) && cached.size == info.Size() && cached.key == key {
			b.hits++
			b.mu.Unlock()
			return cached.output, nil
		}
		b.mu.Unlock()
	}

	src, err := os.ReadFile(entry)
	if err != nil {
		return nil, fmt.Errorf("bundle entry %s: %w", entry, err)
	}
	for _, t := range req.Transforms {
		src, err = t.Func(entry, src, t.Options)
		if err != nil {
			return nil, fmt.Errorf("transform %s on %s: %w", t.Name, entry, err)
		}
	}

	if req.Cache {
		b.mu.Lock()
		b.cache[entry] = cacheEntry{modTime: info.ModTime(), size: info.Size(), key: key, output: src}
		b.mu.Unlock()
	}
	return src, nil
}

func transformKey(transforms []Transform) string {
	var buf bytes.Buffer
	for _, t := range transforms {
		fmt.Fprintf(&buf, "%s:%v;", t.Name, t.Options)
	}
	return buf.String()
}
