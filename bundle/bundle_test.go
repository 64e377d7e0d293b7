package bundle

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEntry(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestBundle_WrapsEntriesInOrder(t *testing.T) {
	dir := t.TempDir()
	a := writeEntry(t, dir, "a.js", "var a = 1;")
	b := writeEntry(t, dir, "b.js", "var b = 2;\n")

	out, err := New().Bundle(context.Background(), Request{Entries: []string{b, a}, File: "app.js"})
	require.NoError(t, err)

	text := string(out)
	assert.Less(t, strings.Index(text, "var b = 2;"), strings.Index(text, "var a = 1;"))
	assert.Equal(t, 2, strings.Count(text, "})();"))
	assert.NotContains(t, text, "sourceMappingURL")
}

func TestBundle_DebugAddsInlineMap(t *testing.T) {
	dir := t.TempDir()
	a := writeEntry(t, dir, "a.js", "a")

	out, err := New().Bundle(context.Background(), Request{Entries: []string{a}, File: "app.js", Debug: true})
	require.NoError(t, err)
	assert.Contains(t, string(out), "//# sourceMappingURL=data:application/json")
}

func TestBundle_NoEntries(t *testing.T) {
	_, err := New().Bundle(context.Background(), Request{File: "x.js"})
	assert.ErrorIs(t, err, ErrNoEntries)
}

func TestBundle_AppliesTransforms(t *testing.T) {
	dir := t.TempDir()
	a := writeEntry(t, dir, "a.js", "if (process.env.NODE_ENV === 'production') {}")

	loader := NewLoader()
	envifyFn, err := loader.Load("envify")
	require.NoError(t, err)
	strict, err := loader.Load("strictify")
	require.NoError(t, err)

	out, err := New().Bundle(context.Background(), Request{
		Entries: []string{a},
		File:    "app.js",
		Transforms: []Transform{
			{Name: "envify", Func: envifyFn, Options: map[string]any{"NODE_ENV": "production"}},
			{Name: "strictify", Func: strict},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"use strict";`)
	assert.Contains(t, string(out), `if ("production" === 'production') {}`)
}

func TestBundle_TransformErrorIsWrapped(t *testing.T) {
	dir := t.TempDir()
	a := writeEntry(t, dir, "a.js", "a")
	boom := errors.New("boom")

	_, err := New().Bundle(context.Background(), Request{
		Entries:    []string{a},
		Transforms: []Transform{{Name: "fails", Func: func(string, []byte, map[string]any) ([]byte, error) { return nil, boom }}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "transform fails")
}

func TestBundle_CacheReusesUnchangedEntries(t *testing.T) {
	dir := t.TempDir()
	a := writeEntry(t, dir, "a.js", "a")
	calls := 0
	counting := Transform{Name: "count", Func: func(_ string, src []byte, _ map[string]any) ([]byte, error) {
		calls++
		return src, nil
	}}

	b := New()
	req := Request{Entries: []string{a}, File: "app.js", Cache: true, Transforms: []Transform{counting}}
	_, err := b.Bundle(context.Background(), req)
	require.NoError(t, err)
	_, err = b.Bundle(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, b.CacheHits())

	b.invalidate(a)
	_, err = b.Bundle(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestLoader(t *testing.T) {
	l := NewLoader()
	assert.Equal(t, []string{"banner", "envify", "strictify"}, l.Names())

	_, err := l.Load("missing")
	assert.ErrorIs(t, err, ErrTransformNotFound)

	_, err = l.Load("bad name")
	assert.ErrorIs(t, err, ErrTransformNameInvalid)
	assert.False(t, errors.Is(err, ErrTransformNotFound))

	require.NoError(t, l.Register("custom", strictify))
	assert.ErrorIs(t, l.Register("custom", strictify), ErrTransformRegistered)
}

func TestBanner(t *testing.T) {
	out, err := banner("a.js", []byte("x"), map[string]any{"text": "v1"})
	require.NoError(t, err)
	assert.Equal(t, "/*! v1 */\nx", string(out))

	out, err = banner("a.js", []byte("x"), nil)
	require.NoError(t, err)
	assert.Equal(t, "x", string(out))
}

func TestWatch_DeliversEntryChanges(t *testing.T) {
	dir := t.TempDir()
	a := writeEntry(t, dir, "a.js", "a")
	writeEntry(t, dir, "other.js", "o")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub, err := New().Watch(ctx, Request{Entries: []string{a}})
	require.NoError(t, err)
	defer sub.Close()

	writeEntry(t, dir, "other.js", "changed")
	writeEntry(t, dir, "a.js", "changed")

	select {
	case u := <-sub.Updates():
		require.NoError(t, u.Err)
		assert.Equal(t, a, u.Path)
	case <-time.After(5 * time.Second):
		t.Fatal("no update received")
	}
}

func TestWatch_CloseStopsUpdates(t *testing.T) {
	dir := t.TempDir()
	a := writeEntry(t, dir, "a.js", "a")

	sub, err := New().Watch(context.Background(), Request{Entries: []string{a}})
	require.NoError(t, err)
	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())

	_, open := <-sub.Updates()
	assert.False(t, open)
}
