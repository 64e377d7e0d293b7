package stream

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upper(ctx context.Context, files []*File) ([]*File, error) {
	for _, f := range files {
		out := make([]byte, len(f.Contents))
		for i, b := range f.Contents {
			if b >= 'a' && b <= 'z' {
				b -= 'a' - 'A'
			}
			out[i] = b
		}
		f.Contents = out
	}
	return files, nil
}

func TestStream_PipeIsLazyAndOrdered(t *testing.T) {
	var order []string
	record := func(name string) Stage {
		return func(ctx context.Context, files []*File) ([]*File, error) {
			order = append(order, name)
			return files, nil
		}
	}

	s := FromFiles(&File{Path: "/a.txt", Base: "/", Contents: []byte("a")}).
		Pipe("first", record("first")).
		Pipe("second", record("second"))

	assert.Empty(t, order, "constructing a stream must not run it")
	assert.Equal(t, []string{"first", "second"}, s.Stages())

	require.NoError(t, s.Wait(context.Background()))
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestStream_PipeDoesNotMutatePrefix(t *testing.T) {
	base := Empty().Pipe("one", upper)
	a := base.Pipe("two", upper)
	b := base.Pipe("three", upper)

	assert.Equal(t, []string{"one"}, base.Stages())
	assert.Equal(t, []string{"one", "two"}, a.Stages())
	assert.Equal(t, []string{"one", "three"}, b.Stages())
}

func TestStream_StageErrorIsWrapped(t *testing.T) {
	boom := errors.New("boom")
	s := Empty().Pipe("broken", func(ctx context.Context, files []*File) ([]*File, error) {
		return nil, boom
	})

	err := s.Wait(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "stage broken")
}

func TestFromRefsAndDest(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "css", "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "css", "nested", "a.css"), []byte("body{}"), 0o644))

	refs := []Ref{{Path: filepath.Join(src, "css", "nested", "a.css"), Base: filepath.Join(src, "css")}}
	files, err := FromRefs(refs).Pipe("upper", upper).Pipe("dest", Dest(out)).Files(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 1)

	written, err := os.ReadFile(filepath.Join(out, "nested", "a.css"))
	require.NoError(t, err)
	assert.Equal(t, "BODY{}", string(written))
	assert.Equal(t, filepath.Join(out, "nested", "a.css"), files[0].Path)
}

func TestFromRefs_MissingFile(t *testing.T) {
	_, err := FromRefs([]Ref{{Path: filepath.Join(t.TempDir(), "nope.js")}}).Files(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFile_Relative(t *testing.T) {
	assert.Equal(t, "app.js", (&File{Path: "app.js"}).Relative())
	assert.Equal(t, filepath.Join("a", "b.js"), (&File{Path: "/src/a/b.js", Base: "/src"}).Relative())
}

func TestSourceMap_MergeSkipsDuplicates(t *testing.T) {
	m := NewSourceMap("a.js", []byte("a"))
	m.Merge(NewSourceMap("b.js", []byte("b")))
	m.Merge(NewSourceMap("a.js", []byte("a")))

	assert.Equal(t, []string{"a.js", "b.js"}, m.Sources)
	assert.Equal(t, []string{"a", "b"}, m.SourcesContent)

	url, err := m.DataURL()
	require.NoError(t, err)
	assert.Contains(t, url, "data:application/json;charset=utf-8;base64,")
}
