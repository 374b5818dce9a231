package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tserr/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default configuration in the project",
	Long: `Write the default configuration to .tserr/config.toml so it can be
edited. Refuses to overwrite an existing config.

Example:
  tserr init`,
	Args: cobra.NoArgs,
	Run:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) {
	rootDir := mustGetRootDir()

	path, err := config.WriteDefault(rootDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", path)
}
