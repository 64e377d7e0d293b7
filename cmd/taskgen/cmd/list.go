package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewListCommand creates the list command
func NewListCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the generated tasks",
		Long:  `List every task generated from the configurations together with its dependencies.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := flags.setup(cmd)
			if err != nil {
				return err
			}
			defer env.generator.Close()

			if _, err := env.generator.CreateTasks(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range env.runner.Tasks() {
				deps, _ := env.runner.Dependencies(name)
				if len(deps) == 0 {
					fmt.Fprintln(out, name)
					continue
				}
				fmt.Fprintf(out, "%s -> %s\n", name, strings.Join(deps, ", "))
			}
			return nil
		},
	}
}
