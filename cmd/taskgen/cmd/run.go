package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// NewRunCommand creates the run command
func NewRunCommand(flags *globalFlags) *cobra.Command {
	var serve bool
	cmd := &cobra.Command{
		Use:   "run [task...]",
		Short: "Run generated tasks",
		Long: `Run the named tasks with their dependencies. Without arguments every
configuration's umbrella task runs. Watch tasks keep running until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := flags.setup(cmd)
			if err != nil {
				return err
			}
			defer env.generator.Close()

			names, err := env.generator.CreateTasks()
			if err != nil {
				return err
			}
			targets := args
			if len(targets) == 0 {
				targets = names
			}
			if len(targets) == 0 {
				return fmt.Errorf("no tasks were generated from %s", env.generator.Paths().Display(env.generator.ConfigsDir()))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			env.runner.Start()
			defer func() {
				stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = env.runner.Stop(stopCtx)
			}()

			if err := env.runner.Run(ctx, targets...); err != nil {
				return err
			}
			if serve && len(env.runner.Scheduled()) > 0 {
				env.logger.Info("Waiting for scheduled runs", "tasks", len(env.runner.Scheduled()))
				<-ctx.Done()
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&serve, "serve", false, "Keep running scheduled tasks until interrupted")
	return cmd
}
