package plugins

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/GoCodeAlone/taskgen/stream"
)

type concatOptions struct {
	Path    string  `json:"path"`
	NewLine *string `json:"newLine"`
}

// Concat joins every file of the stream into one file. Options are either the
// output file name or {"path": name, "newLine": separator}.
func Concat(options any) (stream.Stage, error) {
	var opts concatOptions
	name, err := stringOrField("concat", options, &opts)
	if err != nil {
		return nil, err
	}
	if name != "" {
		opts.Path = name
	}
	if opts.Path == "" {
		return nil, fmt.Errorf("%w: concat requires an output file name", ErrInvalidOptions)
	}
	sep := "\n"
	if opts.NewLine != nil {
		sep = *opts.NewLine
	}

	return func(ctx context.Context, files []*stream.File) ([]*stream.File, error) {
		if len(files) == 0 {
			return nil, nil
		}
		var buf bytes.Buffer
		var sm *stream.SourceMap
		for i, f := range files {
			if i > 0 {
				buf.WriteString(sep)
			}
			buf.Write(f.Contents)
			if f.SourceMap != nil {
				if sm == nil {
					sm = &stream.SourceMap{Version: 3, Names: []string{}}
				}
				sm.Merge(f.SourceMap)
			}
		}
		first := files[0]
		out := &stream.File{
			Path:     filepath.Join(first.Base, opts.Path),
			Base:     first.Base,
			Contents: buf.Bytes(),
			Mode:     first.Mode,
		}
		if sm != nil {
			sm.File = opts.Path
			out.SourceMap = sm
		}
		return []*stream.File{out}, nil
	}, nil
}

type textOptions struct {
	Text string `json:"text"`
}

// Header prepends text to every file. "${file}" in the text expands to the
// file's relative path.
func Header(options any) (stream.Stage, error) {
	return wrapText("header", options, true)
}

// Footer appends text to every file. "${file}" expands as for Header.
func Footer(options any) (stream.Stage, error) {
	return wrapText("footer", options, false)
}

func wrapText(plugin string, options any, prepend bool) (stream.Stage, error) {
	var opts textOptions
	text, err := stringOrField(plugin, options, &opts)
	if err != nil {
		return nil, err
	}
	if text == "" {
		text = opts.Text
	}
	return func(ctx context.Context, files []*stream.File) ([]*stream.File, error) {
		for _, f := range files {
			expanded := strings.ReplaceAll(text, "${file}", filepath.ToSlash(f.Relative()))
			if prepend {
				f.Contents = append([]byte(expanded), f.Contents...)
			} else {
				f.Contents = append(f.Contents, expanded...)
			}
		}
		return files, nil
	}, nil
}

type renameOptions struct {
	Dirname  *string `json:"dirname"`
	Basename string  `json:"basename"`
	Prefix   string  `json:"prefix"`
	Suffix   string  `json:"suffix"`
	Extname  *string `json:"extname"`
}

// Rename changes the relative path of every file. Options are either the new
// relative path or an object with dirname, basename, prefix, suffix and
// extname fields.
func Rename(options any) (stream.Stage, error) {
	var opts renameOptions
	target, err := stringOrField("rename", options, &opts)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, files []*stream.File) ([]*stream.File, error) {
		for _, f := range files {
			rel := target
			if rel == "" {
				rel = renamed(f.Relative(), opts)
			}
			f.Path = filepath.Join(f.Base, rel)
			if f.SourceMap != nil {
				f.SourceMap.File = filepath.ToSlash(rel)
			}
		}
		return files, nil
	}, nil
}

func renamed(rel string, opts renameOptions) string {
	dir := filepath.Dir(rel)
	ext := filepath.Ext(rel)
	stem := strings.TrimSuffix(filepath.Base(rel), ext)
	if opts.Dirname != nil {
		dir = *opts.Dirname
	}
	if opts.Basename != "" {
		stem = opts.Basename
	}
	if opts.Extname != nil {
		ext = *opts.Extname
	}
	return filepath.Join(dir, opts.Prefix+stem+opts.Suffix+ext)
}

type replaceOptions struct {
	Search      string `json:"search"`
	Replacement string `json:"replacement"`
	Regexp      bool   `json:"regexp"`
}

// Replace substitutes text in every file. Options are {"search", "replacement",
// "regexp"} or a two element [search, replacement] list.
func Replace(options any) (stream.Stage, error) {
	var opts replaceOptions
	if pair, ok := options.([]any); ok {
		if len(pair) != 2 {
			return nil, fmt.Errorf("%w: replace expects [search, replacement]", ErrInvalidOptions)
		}
		opts.Search, _ = pair[0].(string)
		opts.Replacement, _ = pair[1].(string)
	} else if err := decodeOptions("replace", options, &opts); err != nil {
		return nil, err
	}
	if opts.Search == "" {
		return nil, fmt.Errorf("%w: replace requires a search string", ErrInvalidOptions)
	}

	var re *regexp.Regexp
	if opts.Regexp {
		compiled, err := regexp.Compile(opts.Search)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
		}
		re = compiled
	}
	return func(ctx context.Context, files []*stream.File) ([]*stream.File, error) {
		for _, f := range files {
			if re != nil {
				f.Contents = re.ReplaceAll(f.Contents, []byte(opts.Replacement))
				continue
			}
			f.Contents = bytes.ReplaceAll(f.Contents, []byte(opts.Search), []byte(opts.Replacement))
		}
		return files, nil
	}, nil
}
