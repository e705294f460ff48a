package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/lifeos/lifeos-api/internal/kv"
	"github.com/spf13/cobra"
)

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export vision board goals to a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			kvStore, goals, err := openGoalStore(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if err := kvStore.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close store: %v\n", err)
				}
			}()

			all := goals.All()
			if err := kv.ExportGoalsFile(args[0], all); err != nil {
				return fmt.Errorf("failed to export goals: %w", err)
			}

			fmt.Printf("Exported %d goals to %s\n", len(all), args[0])
			return nil
		},
	}

	return cmd
}

// NewImportCmd creates the import command
func NewImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import vision board goals from a JSON file",
		Long:  "Import goals from a JSON file, replacing the current collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			imported, err := kv.ImportGoalsFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read goals file: %w", err)
			}

			kvStore, goals, err := openGoalStore(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if err := kvStore.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close store: %v\n", err)
				}
			}()

			goals.Replace(ctx, imported)
			fmt.Printf("Imported %d goals from %s\n", len(imported), args[0])
			return nil
		},
	}

	return cmd
}
