package ai

import (
	"context"

	"github.com/lifeos/lifeos-api/internal/models"
)

// Provider is the interface for AI content generation
type Provider interface {
	// DailyBrief returns a short markdown briefing for the day
	DailyBrief(ctx context.Context) (string, error)

	// WeeklySummary generates a motivational markdown summary from a
	// snapshot of the user's day
	WeeklySummary(ctx context.Context, snapshot WeeklySnapshot) (string, error)

	// AnalyzeBrainDump organizes free-form notes into a structured
	// markdown outline
	AnalyzeBrainDump(ctx context.Context, text string) (string, error)

	// GenerateImage turns a prompt into an image URL or data URI
	GenerateImage(ctx context.Context, prompt string) (string, error)

	// SuggestTasks proposes up to three actionable tasks for today
	SuggestTasks(ctx context.Context, planning PlanningContext) ([]string, error)

	// JournalPrompt returns a single reflective question
	JournalPrompt(ctx context.Context, reflection ReflectionContext) (string, error)

	// CongratulateGoal writes a short celebration note for a completed goal
	CongratulateGoal(ctx context.Context, goal models.Goal) (string, error)
}

// WeeklySnapshot is one day's data used to extrapolate a weekly summary
type WeeklySnapshot struct {
	Habits       []models.Habit
	Todos        []models.Todo
	JournalEntry string
}

// PlanningContext feeds task suggestions
type PlanningContext struct {
	WeeklyGoals []models.WeeklyGoal
	Events      []models.CalendarEvent
}

// ReflectionContext feeds journal prompt generation
type ReflectionContext struct {
	Habits     []models.Habit
	CoreValues []models.CoreValue
}

// MaxSuggestedTasks caps how many suggestions any provider returns
const MaxSuggestedTasks = 3

func completedHabitNames(habits []models.Habit) []string {
	var names []string
	for _, h := range habits {
		if h.Completed {
			names = append(names, h.Name)
		}
	}
	return names
}

func incompleteHabitNames(habits []models.Habit) []string {
	var names []string
	for _, h := range habits {
		if !h.Completed {
			names = append(names, h.Name)
		}
	}
	return names
}

func completedTodoTexts(todos []models.Todo) []string {
	var texts []string
	for _, t := range todos {
		if t.Completed {
			texts = append(texts, t.Text)
		}
	}
	return texts
}
