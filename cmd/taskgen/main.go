package main

import (
	"fmt"
	"os"

	"github.com/GoCodeAlone/taskgen/cmd/taskgen/cmd"
)

func main() {
	rootCmd := cmd.NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		cmd.OsExit(1)
	}
}
