package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/lifeos/lifeos-api/internal/models"
)

const (
	// PlaceholderImageURL is returned when no image generator is available
	PlaceholderImageURL = "https://picsum.photos/seed/vision/800/600"
	// ErrorImageURL is returned when image generation fails upstream
	ErrorImageURL = "https://picsum.photos/seed/error/800/600"

	fallbackJournalPrompt = "What is one thing that brought you joy today?"
)

// FallbackProvider produces deterministic offline content. It is used when no
// API key is configured and as the safety net behind the live provider.
type FallbackProvider struct{}

// NewFallbackProvider creates the offline provider
func NewFallbackProvider() *FallbackProvider {
	return &FallbackProvider{}
}

func (*FallbackProvider) DailyBrief(context.Context) (string, error) {
	return `## Daily Brief

### Tech News
Stay updated with the latest in technology and productivity tools.

### Productivity Tip
Break large tasks into smaller, manageable chunks. This makes progress feel more achievable and helps maintain momentum throughout the day.

### Motivation
"Success is the sum of small efforts repeated day in and day out." - Robert Collier`, nil
}

func (*FallbackProvider) WeeklySummary(_ context.Context, snapshot WeeklySnapshot) (string, error) {
	habits := strings.Join(completedHabitNames(snapshot.Habits), ", ")
	todos := strings.Join(completedTodoTexts(snapshot.Todos), ", ")

	habitLine := "your daily routines"
	if habits != "" {
		habitLine = "your habits: " + habits
	}
	todoLine := "No tasks completed yet, but every journey begins with a single step!"
	if todos != "" {
		todoLine = todos
	}

	return fmt.Sprintf(`## Weekly Summary

### Your Progress This Week

Great job on completing %s!

**Completed Tasks:**
%s

### Keep Going!
Consistency is key. Keep building momentum and celebrating your small wins along the way.`, habitLine, todoLine), nil
}

func (*FallbackProvider) AnalyzeBrainDump(_ context.Context, text string) (string, error) {
	return fmt.Sprintf(`## Brain Dump Analysis

### Your Thoughts
%s

### Quick Organization
- Review your notes above
- Identify main themes
- Break down into actionable items
- Set priorities for what matters most

*Note: AI-powered analysis requires an API key. For now, use this space to manually organize your thoughts.*`, text), nil
}

func (*FallbackProvider) GenerateImage(context.Context, string) (string, error) {
	return PlaceholderImageURL, nil
}

func (*FallbackProvider) SuggestTasks(_ context.Context, planning PlanningContext) ([]string, error) {
	var suggestions []string
	for _, wg := range planning.WeeklyGoals {
		if !wg.Completed {
			suggestions = append(suggestions, "Work on: "+wg.Text)
			break
		}
	}
	if len(planning.Events) > 0 {
		suggestions = append(suggestions, "Prepare for: "+planning.Events[0].Title)
	}
	suggestions = append(suggestions, "Review and plan your day")
	if len(suggestions) > MaxSuggestedTasks {
		suggestions = suggestions[:MaxSuggestedTasks]
	}
	return suggestions, nil
}

func (*FallbackProvider) JournalPrompt(_ context.Context, reflection ReflectionContext) (string, error) {
	if completed := completedHabitNames(reflection.Habits); len(completed) > 0 {
		return fmt.Sprintf("What made it easier to complete %s today?", strings.Join(completed, ", ")), nil
	}
	return fallbackJournalPrompt, nil
}

func (*FallbackProvider) CongratulateGoal(_ context.Context, goal models.Goal) (string, error) {
	return fmt.Sprintf("Congratulations! You completed \"%s\". Remember why you started: %s. Take a moment to celebrate before setting your next milestone.", goal.Title, goal.Why), nil
}
