package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GoCodeAlone/taskgen"
)

// NewValidateCommand creates the validate command
func NewValidateCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configurations",
		Long: `Load every configuration file and report the ones that fail to parse or
match the schema, and the tasks and sub-tasks that would be skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := flags.setup(cmd)
			if err != nil {
				return err
			}
			defer env.generator.Close()

			gen := env.generator
			loader := gen.Loader()
			files, err := loader.ListConfigFiles(gen.ConfigsDir())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(files) == 0 {
				fmt.Fprintf(out, "no config files in %s\n", gen.Paths().Display(gen.ConfigsDir()))
				return nil
			}

			invalid := 0
			for _, f := range files {
				path := gen.Paths().Display(f)
				configs, skipped, err := loader.InspectConfig(f)
				if err != nil {
					invalid++
					fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
					continue
				}
				for _, p := range skipped {
					invalid++
					fmt.Fprintf(out, "FAIL %s: %v\n", path, p)
				}
				for _, c := range configs {
					problems := taskgen.CheckTaskConfig(c)
					if len(problems) == 0 {
						fmt.Fprintf(out, "ok   %s: %s (%d sub-tasks)\n", path, c.Name, len(c.SubTasks))
						continue
					}
					invalid++
					for _, p := range problems {
						fmt.Fprintf(out, "FAIL %s: %s: %v\n", path, c.Name, p)
					}
				}
			}
			if invalid > 0 {
				return fmt.Errorf("%w: %d problem(s)", ErrInvalidConfigs, invalid)
			}
			return nil
		},
	}
}
