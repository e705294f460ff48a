package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/lifeos/lifeos-api/internal/stats"
	"github.com/spf13/cobra"
)

// NewStatsCmd creates the stats command
func NewStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print vision board statistics",
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
			counts := stats.CountGoals(all)
			balance := stats.CategoryBalance(all)

			fmt.Printf("Goals: %d total, %d active, %d completed\n",
				counts.Total, counts.Active, counts.Completed)
			fmt.Printf("Average progress: %d%%\n", stats.AverageProgress(all))
			if top := stats.TopProgressedGoal(all); top != nil {
				fmt.Printf("Closest to done: %s (%d%%)\n", top.Title, top.Progress)
			}

			fmt.Println("Category balance:")
			for _, c := range balance.Categories {
				fmt.Printf("  %-13s %d\n", c.Category, c.Count)
			}
			if balance.Uncategorized > 0 {
				fmt.Printf("  %-13s %d\n", "uncategorized", balance.Uncategorized)
			}
			fmt.Println(balance.Insight)
			return nil
		},
	}
}
