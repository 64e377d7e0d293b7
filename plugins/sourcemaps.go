package plugins

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/GoCodeAlone/taskgen/stream"
)

// Names of the sourcemap bracket capabilities.
const (
	SourcemapsInit  = "sourcemaps.init"
	SourcemapsWrite = "sourcemaps.write"
)

var mappingURL = regexp.MustCompile(`(?m)\n?(?://[#@]|/\*[#@])\s*sourceMappingURL=(\S+?)(?:\s*\*/)?\s*$`)

const inlinePrefix = "base64,"

type initOptions struct {
	LoadMaps bool `json:"loadMaps"`
}

// SourcemapsInitFactory starts source map tracking. With loadMaps, maps
// already referenced by the file (inline or next to it) are loaded and the
// reference comment is stripped; otherwise each file becomes its own source.
func SourcemapsInitFactory(options any) (stream.Stage, error) {
	var opts initOptions
	if options != nil {
		if err := decodeOptions(SourcemapsInit, options, &opts); err != nil {
			return nil, err
		}
	}
	return func(ctx context.Context, files []*stream.File) ([]*stream.File, error) {
		for _, f := range files {
			if f.SourceMap != nil {
				continue
			}
			if opts.LoadMaps {
				if sm, stripped, ok := loadExisting(f); ok {
					f.SourceMap = sm
					f.Contents = stripped
					continue
				}
			}
			f.SourceMap = stream.NewSourceMap(filepath.ToSlash(f.Relative()), f.Contents)
		}
		return files, nil
	}, nil
}

func loadExisting(f *stream.File) (*stream.SourceMap, []byte, bool) {
	loc := mappingURL.FindSubmatchIndex(f.Contents)
	if loc == nil {
		return nil, nil, false
	}
	url := string(f.Contents[loc[2]:loc[3]])

	var data []byte
	if i := strings.Index(url, inlinePrefix); strings.HasPrefix(url, "data:") && i >= 0 {
		decoded, err := base64.StdEncoding.DecodeString(url[i+len(inlinePrefix):])
		if err != nil {
			return nil, nil, false
		}
		data = decoded
	} else {
		read, err := os.ReadFile(filepath.Join(filepath.Dir(f.Path), filepath.FromSlash(url)))
		if err != nil {
			return nil, nil, false
		}
		data = read
	}

	sm, err := stream.DecodeSourceMap(data)
	if err != nil {
		return nil, nil, false
	}
	stripped := append(append([]byte(nil), f.Contents[:loc[0]]...), f.Contents[loc[1]:]...)
	return sm, stripped, true
}

type writeOptions struct {
	Path           string `json:"path"`
	IncludeContent *bool  `json:"includeContent"`
}

// SourcemapsWriteFactory emits the tracked maps. Options are the directory,
// relative to each file's base, that receives external .map files; without a
// directory the map is inlined as a data URL.
func SourcemapsWriteFactory(options any) (stream.Stage, error) {
	var opts writeOptions
	dir, err := stringOrField(SourcemapsWrite, options, &opts)
	if err != nil {
		return nil, err
	}
	if dir == "" {
		dir = opts.Path
	}
	includeContent := opts.IncludeContent == nil || *opts.IncludeContent

	return func(ctx context.Context, files []*stream.File) ([]*stream.File, error) {
		out := make([]*stream.File, 0, len(files))
		for _, f := range files {
			if f.SourceMap == nil {
				out = append(out, f)
				continue
			}
			sm := f.SourceMap.Clone()
			sm.File = filepath.ToSlash(f.Relative())
			if !includeContent {
				sm.SourcesContent = nil
			}
			f.SourceMap = nil

			if dir == "" {
				url, err := sm.DataURL()
				if err != nil {
					return nil, err
				}
				f.Contents = append(f.Contents, mappingComment(f.Path, url)...)
				out = append(out, f)
				continue
			}

			data, err := sm.Encode()
			if err != nil {
				return nil, err
			}
			mapPath := filepath.Join(f.Base, dir, f.Relative()+".map")
			url, err := filepath.Rel(filepath.Dir(f.Path), mapPath)
			if err != nil {
				return nil, fmt.Errorf("locate map for %s: %w", f.Path, err)
			}
			f.Contents = append(f.Contents, mappingComment(f.Path, filepath.ToSlash(url))...)
			out = append(out, f, &stream.File{Path: mapPath, Base: f.Base, Contents: data})
		}
		return out, nil
	}, nil
}

func mappingComment(path, url string) string {
	if filepath.Ext(path) == ".css" {
		return "\n/*# sourceMappingURL=" + url + " */\n"
	}
	return "\n//# sourceMappingURL=" + url + "\n"
}
