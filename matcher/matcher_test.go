package matcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(f), 0o644))
	}
}

func paths(t *testing.T, root string, patterns ...string) []string {
	t.Helper()
	refs, err := New().Glob(patterns)
	require.NoError(t, err)
	out := make([]string, len(refs))
	for i, r := range refs {
		rel, err := filepath.Rel(root, r.Path)
		require.NoError(t, err)
		out[i] = filepath.ToSlash(rel)
	}
	return out
}

func TestGlob_IncludeAndExclude(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "in/a.css", "in/b.css", "in/skip.css", "in/c.js", "in/deep/d.css")

	got := paths(t, root, root+"/in/*.css", "!"+root+"/in/skip.css")
	assert.Equal(t, []string{"in/a.css", "in/b.css"}, got)
}

func TestGlob_DoubleStarMatchesAnyDepth(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "src/a.js", "src/x/b.js", "src/x/y/c.js", "src/x/y/c.css")

	got := paths(t, root, root+"/src/**/*.js")
	assert.Equal(t, []string{"src/a.js", "src/x/b.js", "src/x/y/c.js"}, got)
}

func TestGlob_IncludeOrderAndNoDuplicates(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "lib/z.js", "app/a.js")

	got := paths(t, root, root+"/lib/*.js", root+"/app/*.js", root+"/**/*.js")
	assert.Equal(t, []string{"lib/z.js", "app/a.js"}, got)
}

func TestGlob_LiteralAndMissing(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "one.txt")

	got := paths(t, root, root+"/one.txt", root+"/two.txt", root+"/missing/*.txt")
	assert.Equal(t, []string{"one.txt"}, got)
}

func TestGlob_BaseIsStaticPrefix(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "src/styles/main.css")

	refs, err := New().Glob([]string{root + "/src/**/*.css"})
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, filepath.Join(root, "src"), refs[0].Base)
}

func TestCompile_Errors(t *testing.T) {
	_, err := Compile([]string{"!"})
	assert.ErrorIs(t, err, ErrEmptyPattern)

	_, err = Compile([]string{"/ok/*.js", "   "})
	assert.ErrorIs(t, err, ErrEmptyPattern)
}

func TestSet_MatchAndRoots(t *testing.T) {
	set, err := Compile([]string{"/p/src/**/*.js", "/p/lib/*.js", "/p/index.js", "!/p/src/vendor/**"})
	require.NoError(t, err)

	assert.True(t, set.Match("/p/src/a/b.js"))
	assert.True(t, set.Match("/p/index.js"))
	assert.False(t, set.Match("/p/src/vendor/x.js"))
	assert.False(t, set.Match("/p/lib/deep/x.js"))
	assert.Equal(t, []string{"/p/src", "/p/lib", "/p"}, set.Roots())
}

func TestBase(t *testing.T) {
	tests := map[string]string{
		"/a/b/*.js":     "/a/b",
		"/a/**/c/*.js":  "/a",
		"/a/b/file.js":  "/a/b",
		"*.js":          ".",
		"/{a,b}/c.js":   "/",
		"rel/dir/?.txt": "rel/dir",
	}
	for pattern, want := range tests {
		assert.Equal(t, filepath.FromSlash(want), Base(pattern), pattern)
	}
}

func TestExists(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "here.json")
	assert.True(t, Exists(filepath.Join(root, "here.json")))
	assert.False(t, Exists(filepath.Join(root, "gone.json")))
}
