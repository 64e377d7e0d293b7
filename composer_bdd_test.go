package taskgen

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"testing"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/cucumber/godog"
)

var (
	errUnexpectedTasks   = errors.New("unexpected registered tasks")
	errUnexpectedDeps    = errors.New("unexpected dependencies")
	errUnexpectedWatch   = errors.New("unexpected watch task")
	errUnexpectedContent = errors.New("unexpected file contents")
	errUnexpectedSkips   = errors.New("unexpected number of skipped sub-tasks")
	errNoError           = errors.New("no error to check")
)

// ComposerBDDTestContext holds the state of one scenario
type ComposerBDDTestContext struct {
	root      string
	runner    *fakeRunner
	generator *Generator
	skipped   int
	err       error
}

func (c *ComposerBDDTestContext) aProjectWithFiles(table *godog.Table) error {
	dir, err := os.MkdirTemp("", "taskgen-bdd-")
	if err != nil {
		return err
	}
	c.root = dir
	for _, row := range table.Rows[1:] {
		path := filepath.Join(dir, filepath.FromSlash(row.Cells[0].Value))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(row.Cells[1].Value), 0o644); err != nil {
			return err
		}
	}

	c.runner = &fakeRunner{}
	c.generator, err = NewGenerator(c.runner, WithRoot(dir), WithNameGenerator(sequentialNames("n")))
	if err != nil {
		return err
	}
	return c.generator.RegisterObserver(NewFunctionalObserver("skips", func(context.Context, cloudevents.Event) error {
		c.skipped++
		return nil
	}), EventTypeSubTaskSkipped)
}

func (c *ComposerBDDTestContext) theTaskConfiguration(doc *godog.DocString) error {
	configs, skipped, err := DecodeConfigs([]byte(doc.Content))
	if err != nil {
		return err
	}
	if len(skipped) > 0 {
		return errors.Join(skipped...)
	}
	return c.generator.SetConfigs(configs)
}

func (c *ComposerBDDTestContext) iCreateTheTasks() error {
	_, err := c.generator.CreateTasks()
	return err
}

func (c *ComposerBDDTestContext) theRegisteredTasksShouldBe(list string) error {
	want := strings.Split(list, ", ")
	if got := c.runner.names(); !slices.Equal(got, want) {
		return fmt.Errorf("%w: got %v, want %v", errUnexpectedTasks, got, want)
	}
	return nil
}

func (c *ComposerBDDTestContext) theTaskShouldDependOn(name, list string) error {
	task, ok := c.runner.task(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, name)
	}
	want := strings.Split(list, ", ")
	if !slices.Equal(task.deps, want) {
		return fmt.Errorf("%w: got %v, want %v", errUnexpectedDeps, task.deps, want)
	}
	return nil
}

func (c *ComposerBDDTestContext) noWatchTaskShouldBeRegistered() error {
	for _, n := range c.runner.names() {
		if strings.Contains(n, ":watch:") {
			return fmt.Errorf("%w: %s", errUnexpectedWatch, n)
		}
	}
	return nil
}

func (c *ComposerBDDTestContext) iRunTheTask(name string) error {
	task, ok := c.runner.task(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, name)
	}
	completion, err := task.action(context.Background())
	if err != nil || completion == nil {
		return err
	}
	return completion.Wait(context.Background())
}

func (c *ComposerBDDTestContext) theFileShouldContain(path, quoted string) error {
	want, err := strconv.Unquote(`"` + quoted + `"`)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(filepath.Join(c.root, filepath.FromSlash(path)))
	if err != nil {
		return err
	}
	if string(data) != want {
		return fmt.Errorf("%w: got %q, want %q", errUnexpectedContent, data, want)
	}
	return nil
}

func (c *ComposerBDDTestContext) subTasksShouldHaveBeenSkipped(n int) error {
	if c.skipped != n {
		return fmt.Errorf("%w: got %d, want %d", errUnexpectedSkips, c.skipped, n)
	}
	return nil
}

func (c *ComposerBDDTestContext) iSetAnEmptyConfigurationCollection() error {
	c.err = c.generator.SetConfigs(nil)
	return nil
}

func (c *ComposerBDDTestContext) theErrorShouldBe(msg string) error {
	if c.err == nil {
		return errNoError
	}
	if c.err.Error() != msg {
		return fmt.Errorf("unexpected error %q", c.err.Error())
	}
	return nil
}

func (c *ComposerBDDTestContext) cleanup() {
	if c.generator != nil {
		_ = c.generator.Close()
	}
	if c.root != "" {
		os.RemoveAll(c.root)
	}
}

// InitializeComposerScenario wires the composer steps
func InitializeComposerScenario(ctx *godog.ScenarioContext) {
	bddCtx := &ComposerBDDTestContext{}

	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		bddCtx.cleanup()
		return ctx, nil
	})

	ctx.Step(`^a project with files:$`, bddCtx.aProjectWithFiles)
	ctx.Step(`^the task configuration:$`, bddCtx.theTaskConfiguration)
	ctx.Step(`^I create the tasks$`, bddCtx.iCreateTheTasks)
	ctx.Step(`^the registered tasks should be "([^"]*)"$`, bddCtx.theRegisteredTasksShouldBe)
	ctx.Step(`^the task "([^"]*)" should depend on "([^"]*)"$`, bddCtx.theTaskShouldDependOn)
	ctx.Step(`^no watch task should be registered$`, bddCtx.noWatchTaskShouldBeRegistered)
	ctx.Step(`^I run the task "([^"]*)"$`, bddCtx.iRunTheTask)
	ctx.Step(`^the file "([^"]*)" should contain "([^"]*)"$`, bddCtx.theFileShouldContain)
	ctx.Step(`^(\d+) sub-tasks? should have been skipped$`, bddCtx.subTasksShouldHaveBeenSkipped)
	ctx.Step(`^I set an empty configuration collection$`, bddCtx.iSetAnEmptyConfigurationCollection)
	ctx.Step(`^the error should be "([^"]*)"$`, bddCtx.theErrorShouldBe)
}

// Test runner
func TestComposerBDDFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeComposerScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/composer.feature"},
			TestingT: t,
			Strict:   true,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
