// Package stats computes derived vision-board statistics. Everything here
// is a pure projection over a goal snapshot; no state is held.
package stats

import (
	"fmt"
	"math"
	"strings"

	"github.com/lifeos/lifeos-api/internal/models"
)

// Counts holds aggregate goal counts. Archived goals are excluded from
// every field.
type Counts struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
}

// CategoryCount is the per-category slice of the balance chart
type CategoryCount struct {
	Category models.LifeAreaCategory `json:"category"`
	Count    int                     `json:"count"`
	// BarWidth is count normalized against the largest category,
	// in [0,1]. Zero when no goals exist in any category.
	BarWidth float64 `json:"bar_width"`
}

// Balance is the category distribution of the board
type Balance struct {
	Categories    []CategoryCount `json:"categories"`
	Uncategorized int             `json:"uncategorized"`
	Insight       string          `json:"insight"`
}

// CountGoals returns total/active/completed counts, excluding archived
func CountGoals(goals []models.Goal) Counts {
	var c Counts
	for _, g := range goals {
		switch g.Status {
		case models.GoalStatusArchived:
			continue
		case models.GoalStatusActive:
			c.Active++
		case models.GoalStatusCompleted:
			c.Completed++
		}
		c.Total++
	}
	return c
}

// AverageProgress returns the mean progress across all goals, including
// archived and completed ones, rounded to the nearest integer. Zero when
// the collection is empty.
func AverageProgress(goals []models.Goal) int {
	if len(goals) == 0 {
		return 0
	}
	sum := 0
	for _, g := range goals {
		sum += g.Progress
	}
	return int(math.Round(float64(sum) / float64(len(goals))))
}

// TopProgressedGoal returns the active goal with the highest progress.
// Ties break to the earliest position in the collection. Returns nil
// when no active goals exist.
func TopProgressedGoal(goals []models.Goal) *models.Goal {
	var top *models.Goal
	for i := range goals {
		g := &goals[i]
		if g.Status != models.GoalStatusActive {
			continue
		}
		if top == nil || g.Progress > top.Progress {
			top = g
		}
	}
	if top == nil {
		return nil
	}
	cp := *top
	return &cp
}

// CategoryBalance computes per-category counts across the six fixed life
// areas plus a separate uncategorized bucket, with normalized bar widths.
func CategoryBalance(goals []models.Goal) Balance {
	counts := make(map[models.LifeAreaCategory]int)
	uncategorized := 0
	for _, g := range goals {
		if g.Category == "" {
			uncategorized++
			continue
		}
		counts[g.Category]++
	}

	maxCount := 0
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}

	balance := Balance{Uncategorized: uncategorized}
	for _, cat := range models.LifeAreaCategories {
		cc := CategoryCount{Category: cat, Count: counts[cat]}
		if maxCount > 0 {
			cc.BarWidth = float64(counts[cat]) / float64(maxCount)
		}
		balance.Categories = append(balance.Categories, cc)
	}
	balance.Insight = balanceInsight(balance)
	return balance
}

// balanceInsight produces the single advisory message for the balance
// view. An uncategorized-goals warning always wins; otherwise either a
// perfect-balance note or the list of empty categories.
func balanceInsight(b Balance) string {
	if b.Uncategorized > 0 {
		if b.Uncategorized == 1 {
			return "1 goal needs a category!"
		}
		return fmt.Sprintf("%d goals need a category!", b.Uncategorized)
	}

	var missing []string
	for _, cc := range b.Categories {
		if cc.Count == 0 {
			missing = append(missing, string(cc.Category))
		}
	}
	if len(missing) == 0 {
		return "Perfect balance! All life areas covered."
	}
	return fmt.Sprintf("Consider adding goals to: %s", strings.Join(missing, ", "))
}
