// Package stream models the sequence of files a build pipeline works on.
//
// A Stream is built in two phases. Construction (New, Pipe) only records the
// source and the ordered list of stages; nothing touches the filesystem. The
// work happens when Files or Wait is called, which lets a task action hand the
// constructed pipeline back to a task runner and have the runner decide when
// to drive it to completion.
package stream

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// File is a single entry flowing through a pipeline.
type File struct {
	// Path is the absolute (or, for generated files, virtual) location of the file.
	Path string
	// Base is the directory Path is considered relative to. Files written by
	// Dest keep their path relative to Base.
	Base string
	// Contents holds the file body.
	Contents []byte
	// Mode is used when the file is written; zero means 0644.
	Mode fs.FileMode
	// SourceMap is attached by sourcemap stages and carried by later ones.
	SourceMap *SourceMap
}

// Relative returns the path of the file relative to its base.
func (f *File) Relative() string {
	if f.Base == "" {
		return f.Path
	}
	rel, err := filepath.Rel(f.Base, f.Path)
	if err != nil {
		return filepath.Base(f.Path)
	}
	return rel
}

// Clone returns a deep copy of the file.
func (f *File) Clone() *File {
	c := *f
	c.Contents = append([]byte(nil), f.Contents...)
	if f.SourceMap != nil {
		sm := f.SourceMap.Clone()
		c.SourceMap = sm
	}
	return &c
}

// Ref points at a file on disk together with the base it was matched from.
type Ref struct {
	Path string
	Base string
}

// Source produces the initial set of files for a stream.
type Source func(ctx context.Context) ([]*File, error)

// Stage transforms the files of a stream. Stages may return a different
// number of files than they receive.
type Stage func(ctx context.Context, files []*File) ([]*File, error)

// StageFactory builds a Stage from opaque, user supplied options.
type StageFactory func(options any) (Stage, error)

type namedStage struct {
	name  string
	stage Stage
}

// Stream is a lazily evaluated, linear pipeline of stages.
type Stream struct {
	source Source
	stages []namedStage
}

// New creates a stream reading from src.
func New(src Source) *Stream {
	return &Stream{source: src}
}

// Empty returns a stream without files.
func Empty() *Stream {
	return New(func(context.Context) ([]*File, error) { return nil, nil })
}

// FromFiles returns a stream over already loaded files.
func FromFiles(files ...*File) *Stream {
	return New(func(context.Context) ([]*File, error) {
		out := make([]*File, 0, len(files))
		for _, f := range files {
			out = append(out, f.Clone())
		}
		return out, nil
	})
}

// FromRefs returns a stream that reads the referenced files when evaluated.
func FromRefs(refs []Ref) *Stream {
	return New(func(ctx context.Context) ([]*File, error) {
		out := make([]*File, 0, len(refs))
		for _, ref := range refs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			info, err := os.Stat(ref.Path)
			if err != nil {
				return nil, fmt.Errorf("stat %s: %w", ref.Path, err)
			}
			data, err := os.ReadFile(ref.Path)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", ref.Path, err)
			}
			out = append(out, &File{
				Path:     ref.Path,
				Base:     ref.Base,
				Contents: data,
				Mode:     info.Mode().Perm(),
			})
		}
		return out, nil
	})
}

// Pipe returns a new stream with stage appended. The receiver is left untouched,
// so a partially built stream can be reused as the prefix of several pipelines.
func (s *Stream) Pipe(name string, stage Stage) *Stream {
	stages := make([]namedStage, len(s.stages), len(s.stages)+1)
	copy(stages, s.stages)
	stages = append(stages, namedStage{name: name, stage: stage})
	return &Stream{source: s.source, stages: stages}
}

// Stages lists the names of the stages in pipe order.
func (s *Stream) Stages() []string {
	names := make([]string, len(s.stages))
	for i, st := range s.stages {
		names[i] = st.name
	}
	return names
}

// Files evaluates the stream and returns the files produced by the last stage.
func (s *Stream) Files(ctx context.Context) ([]*File, error) {
	files, err := s.source(ctx)
	if err != nil {
		return nil, fmt.Errorf("stream source: %w", err)
	}
	for _, st := range s.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		files, err = st.stage(ctx, files)
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", st.name, err)
		}
	}
	return files, nil
}

// Wait drives the stream to completion, discarding the resulting files.
func (s *Stream) Wait(ctx context.Context) error {
	_, err := s.Files(ctx)
	return err
}

// Dest returns a stage that writes every file below dir, keeping the path
// relative to the file's base. The emitted files point at their new location.
func Dest(dir string) Stage {
	return func(ctx context.Context, files []*File) ([]*File, error) {
		out := make([]*File, 0, len(files))
		for _, f := range files {
			target := filepath.Join(dir, f.Relative())
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return nil, fmt.Errorf("create %s: %w", filepath.Dir(target), err)
			}
			mode := f.Mode
			if mode == 0 {
				mode = 0o644
			}
			if err := os.WriteFile(target, f.Contents, mode); err != nil {
				return nil, fmt.Errorf("write %s: %w", target, err)
			}
			written := f.Clone()
			written.Base = dir
			written.Path = target
			out = append(out, written)
		}
		return out, nil
	}
}
