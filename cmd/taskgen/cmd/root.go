package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GoCodeAlone/taskgen"
	"github.com/GoCodeAlone/taskgen/runner"
)

// OsExit is called by main on failure; tests replace it.
var OsExit = os.Exit

// Version information
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// PrintVersion prints version information
func PrintVersion() string {
	return fmt.Sprintf("taskgen v%s (commit: %s, built on: %s)", Version, Commit, Date)
}

type globalFlags struct {
	root      string
	configs   string
	logLevel  string
	formats   string
	recursive bool
}

// NewRootCommand creates the root command for the taskgen CLI
func NewRootCommand() *cobra.Command {
	flags := &globalFlags{}
	cmd := &cobra.Command{
		Use:   "taskgen",
		Short: "taskgen - Build tasks generated from declarative configs",
		Long: `taskgen reads build task configurations and registers the tasks they
describe: a main task per sub-task, optional watch tasks and one umbrella task
per configuration.`,
		Version:      PrintVersion(),
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.root, "root", "", "Project root every configured path is anchored at (env TASKGEN_ROOT)")
	pf.StringVar(&flags.configs, "configs", "", "Config directory relative to the root (env TASKGEN_CONFIGS)")
	pf.StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error (env TASKGEN_LOG_LEVEL)")
	pf.StringVar(&flags.formats, "formats", "", "Comma separated config formats: json, yaml, toml (env TASKGEN_FORMATS)")
	pf.BoolVar(&flags.recursive, "recursive", false, "Discover configs in subdirectories (env TASKGEN_RECURSIVE)")

	cmd.AddCommand(NewListCommand(flags))
	cmd.AddCommand(NewRunCommand(flags))
	cmd.AddCommand(NewValidateCommand(flags))

	return cmd
}

// settings overlays changed flags on the environment settings.
func (f *globalFlags) settings(cmd *cobra.Command) (Settings, error) {
	s, err := LoadSettings()
	if err != nil {
		return Settings{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("root") {
		s.Root = f.root
	}
	if flags.Changed("configs") {
		s.Configs = f.configs
	}
	if flags.Changed("log-level") {
		s.LogLevel = f.logLevel
	}
	if flags.Changed("formats") {
		s.Formats = f.formats
	}
	if flags.Changed("recursive") {
		s.Recursive = f.recursive
	}
	return s, nil
}

// environment is what every subcommand works with.
type environment struct {
	settings  Settings
	logger    *SlogLogger
	runner    *runner.Runner
	generator *taskgen.Generator
}

func (f *globalFlags) setup(cmd *cobra.Command) (*environment, error) {
	s, err := f.settings(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := NewSlogLogger(cmd.ErrOrStderr(), s.LogLevel)
	if err != nil {
		return nil, err
	}
	exts, err := s.Extensions()
	if err != nil {
		return nil, err
	}

	opts := []taskgen.Option{
		taskgen.WithLogger(logger),
		taskgen.WithConfigLoaderOptions(
			taskgen.WithConfigExtensions(exts...),
			taskgen.WithRecursiveConfigs(s.Recursive),
			taskgen.WithVerboseConfigDebug(strings.EqualFold(s.LogLevel, "debug")),
		),
	}
	if s.Root != "" {
		opts = append(opts, taskgen.WithRoot(s.Root))
	}

	r := runner.New(runner.WithLogger(logger), runner.WithContext(cmd.Context()))
	gen, err := taskgen.NewGenerator(r, opts...)
	if err != nil {
		return nil, err
	}
	if s.Configs != "" {
		gen.SetConfigsPath(s.Configs)
	}
	return &environment{settings: s, logger: logger, runner: r, generator: gen}, nil
}
