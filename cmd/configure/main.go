package main

import (
	"fmt"
	"os"

	"github.com/lifeos/lifeos-api/cmd/configure/commands"
	"github.com/spf13/cobra"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "lifeos-configure",
		Short: "Configuration tool for the Life OS API",
		Long:  "CLI tool for managing goal data, templates, and auth tokens",
	}

	rootCmd.AddCommand(commands.NewExportCmd())
	rootCmd.AddCommand(commands.NewImportCmd())
	rootCmd.AddCommand(commands.NewTemplateCmd())
	rootCmd.AddCommand(commands.NewStatsCmd())
	rootCmd.AddCommand(commands.NewTokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
