package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/lifeos/lifeos-api/internal/templates"
	"github.com/spf13/cobra"
)

// NewTemplateCmd creates the template command group
func NewTemplateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "List and apply vision board templates",
	}

	cmd.AddCommand(newTemplateListCmd())
	cmd.AddCommand(newTemplateApplyCmd())
	return cmd
}

func newTemplateListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := templates.All()
			if err != nil {
				return fmt.Errorf("failed to load templates: %w", err)
			}

			fmt.Println("Available templates:")
			for _, tpl := range all {
				fmt.Printf("  - %s: %s (%d goals)\n", tpl.ID, tpl.Name, len(tpl.Goals))
				fmt.Printf("    %s\n", tpl.Description)
			}
			return nil
		},
	}
}

func newTemplateApplyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply <template-id>",
		Short: "Apply a template, appending its goals to the board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			tpl, err := templates.ByID(args[0])
			if err != nil {
				return err
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

			added, err := goals.ApplyTemplate(ctx, tpl)
			if err != nil {
				return fmt.Errorf("failed to apply template: %w", err)
			}

			fmt.Printf("Applied template %q, added %d goals\n", tpl.Name, len(added))
			return nil
		},
	}
}
