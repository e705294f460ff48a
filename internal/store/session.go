package store

import (
	"context"
	"fmt"

	"github.com/lifeos/lifeos-api/internal/kv"
	"github.com/lifeos/lifeos-api/internal/models"
	"go.uber.org/zap"
)

// Session is the single application session owning every collection.
// It is created at startup and lives for the process lifetime; all
// mutation goes through the store methods, never directly at the slices.
type Session struct {
	Goals       *GoalStore
	Habits      *HabitStore
	Todos       *TodoStore
	WeeklyGoals *WeeklyGoalStore
	Events      *EventStore
}

// NewSession loads every store from the persistence adapter
func NewSession(ctx context.Context, store kv.Store, images ImageResolver, notifier Notifier, logger *zap.Logger) (*Session, error) {
	goals, err := NewGoalStore(ctx, store, images, notifier, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize goal store: %w", err)
	}
	habits, err := NewHabitStore(ctx, store, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize habit store: %w", err)
	}
	todos, err := NewTodoStore(ctx, store, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize todo store: %w", err)
	}
	weekly, err := NewWeeklyGoalStore(ctx, store, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize weekly goal store: %w", err)
	}
	events, err := NewEventStore(ctx, store, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize event store: %w", err)
	}

	return &Session{
		Goals:       goals,
		Habits:      habits,
		Todos:       todos,
		WeeklyGoals: weekly,
		Events:      events,
	}, nil
}

// defaultHabits seeds a fresh installation with the standard daily
// routine. Icons are opaque keys owned by the presentation layer.
func defaultHabits() []models.Habit {
	return []models.Habit{
		{ID: 1, Name: "Morning Rise", Icon: "sun"},
		{ID: 2, Name: "Workout", Icon: "dumbbell"},
		{ID: 3, Name: "Hydrate", Icon: "droplet"},
		{ID: 4, Name: "Read", Icon: "book-open"},
		{ID: 5, Name: "Plan", Icon: "check-circle"},
		{ID: 6, Name: "Wind-down", Icon: "moon"},
	}
}

// CoreValues are the personal value statements used to seed journal
// prompts. They are static, like the original product's profile page.
var CoreValues = []models.CoreValue{
	{ID: 1, Value: "Growth", Statement: "I am dedicated to continuous learning and self-improvement, embracing challenges as opportunities to expand my knowledge and skills."},
	{ID: 2, Value: "Integrity", Statement: "I act with honesty and adhere to strong moral principles, ensuring my actions align with my values."},
	{ID: 3, Value: "Discipline", Statement: "I cultivate self-control and focus, consistently taking the actions necessary to achieve my long-term goals."},
	{ID: 4, Value: "Compassion", Statement: "I strive to understand and connect with others, showing kindness and empathy in my interactions."},
}
