package cmd_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/taskgen/cmd/taskgen/cmd"
)

const cssConfig = `{"name": "css", "subTasks": [
  {"name": "bundle", "src": {"include": ["/in/*.css"]}, "dest": "/out", "plugins": [{"name": "concat", "options": "app.css"}]}
]}`

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := cmd.NewRootCommand()
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(new(bytes.Buffer))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	out, err := execute(t, "--help")
	assert.NoError(t, err)
	assert.Contains(t, out, "taskgen reads build task configurations")
}

func TestVersionInfo(t *testing.T) {
	assert.Contains(t, cmd.PrintVersion(), "taskgen v")
}

func TestListCommand(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "configs", "css.json"), cssConfig)

	out, err := execute(t, "list", "--root", root)
	require.NoError(t, err)
	assert.Equal(t, "css:bundle\ncss -> css:bundle\n", out)
}

func TestRunCommand(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "build", "css.json"), cssConfig)
	writeFile(t, filepath.Join(root, "in", "a.css"), "a{}")

	_, err := execute(t, "run", "--root", root, "--configs", "/build")
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(root, "out", "app.css"))
	require.NoError(t, err)
	assert.Equal(t, "a{}", string(data))

	_, err = execute(t, "run", "--root", root, "--configs", "/build", "nope")
	assert.Error(t, err)
}

func TestRunCommandWithoutConfigs(t *testing.T) {
	_, err := execute(t, "run", "--root", t.TempDir())
	assert.Error(t, err)
}

func TestValidateCommand(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "configs", "css.json"), cssConfig)

	out, err := execute(t, "validate", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, out, "ok   ./configs/css.json: css (1 sub-tasks)")

	writeFile(t, filepath.Join(root, "configs", "bad.json"), `{"name": "bad", "subTasks": [{"src": {"include": []}, "dest": "/d"}]}`)
	writeFile(t, filepath.Join(root, "configs", "zz.yaml"), "name: yaml\nsubTasks: []\n")
	out, err = execute(t, "validate", "--root", root, "--formats", "json,yaml")
	assert.ErrorIs(t, err, cmd.ErrInvalidConfigs)
	assert.Contains(t, out, "FAIL ./configs/bad.json: bad")
	assert.Contains(t, out, "FAIL ./configs/zz.yaml: yaml")

	writeFile(t, filepath.Join(root, "configs", "mixed.json"), `{"name": "mixed", "subTasks": [
		{"name": "bad", "src": {"include": ["/a"]}, "dest": 5},
		{"name": "ok", "src": {"include": ["/a"]}, "dest": "/d"}
	]}`)
	out, err = execute(t, "validate", "--root", root)
	assert.ErrorIs(t, err, cmd.ErrInvalidConfigs)
	assert.Contains(t, out, `FAIL ./configs/mixed.json: task config #0: task "mixed" sub-task #0`)
	assert.Contains(t, out, "ok   ./configs/mixed.json: mixed (1 sub-tasks)")
}

func TestUnknownFormatAndLevel(t *testing.T) {
	_, err := execute(t, "list", "--root", t.TempDir(), "--formats", "xml")
	assert.ErrorIs(t, err, cmd.ErrUnknownFormat)

	_, err = execute(t, "list", "--root", t.TempDir(), "--log-level", "loud")
	assert.ErrorIs(t, err, cmd.ErrUnknownLogLevel)
}
