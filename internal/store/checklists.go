package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/lifeos/lifeos-api/internal/kv"
	"github.com/lifeos/lifeos-api/internal/models"
	"go.uber.org/zap"
)

// HabitStore holds the daily habit collection. Habits are the target of
// the goal store's weak related-habit references.
type HabitStore struct {
	mu     sync.RWMutex
	habits []models.Habit
	lastID int64
	store  kv.Store
	logger *zap.Logger
}

// NewHabitStore loads the habit collection, seeding the defaults when
// the store is empty.
func NewHabitStore(ctx context.Context, store kv.Store, logger *zap.Logger) (*HabitStore, error) {
	s := &HabitStore{store: store, logger: logger}
	if err := kv.LoadOrDefault(ctx, store, kv.KeyHabits, &s.habits); err != nil {
		return nil, fmt.Errorf("failed to load habits: %w", err)
	}
	if len(s.habits) == 0 {
		s.habits = defaultHabits()
	}
	for _, h := range s.habits {
		if h.ID > s.lastID {
			s.lastID = h.ID
		}
	}
	return s, nil
}

// Add creates a habit with a fresh id and appends it
func (s *HabitStore) Add(ctx context.Context, name, icon string) (*models.Habit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("habit name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID = nextCollectionID(s.lastID)
	habit := models.Habit{ID: s.lastID, Name: name, Icon: icon}
	s.habits = append(s.habits, habit)
	s.persist(ctx)
	return &habit, nil
}

// Toggle flips a habit's completed flag. Unknown ids are a no-op.
func (s *HabitStore) Toggle(ctx context.Context, habitID int64) *models.Habit {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.habits {
		if s.habits[i].ID == habitID {
			s.habits[i].Completed = !s.habits[i].Completed
			updated := s.habits[i]
			s.persist(ctx)
			return &updated
		}
	}
	return nil
}

// All returns a copy of the habit collection
func (s *HabitStore) All() []models.Habit {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Habit, len(s.habits))
	copy(out, s.habits)
	return out
}

// Resolve maps habit ids to habits, silently skipping ids that no longer
// exist. Dangling references from goals are tolerated, never auto-pruned.
func (s *HabitStore) Resolve(ids []int64) []models.Habit {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byID := make(map[int64]models.Habit, len(s.habits))
	for _, h := range s.habits {
		byID[h.ID] = h
	}
	var out []models.Habit
	for _, id := range ids {
		if h, ok := byID[id]; ok {
			out = append(out, h)
		}
	}
	return out
}

func (s *HabitStore) persist(ctx context.Context) {
	if err := s.store.Save(ctx, kv.KeyHabits, s.habits); err != nil {
		s.logger.Warn("failed_to_persist_habits", zap.Error(err))
	}
}

// TodoStore holds single-day tasks
type TodoStore struct {
	mu     sync.RWMutex
	todos  []models.Todo
	lastID int64
	store  kv.Store
	logger *zap.Logger
}

// NewTodoStore loads the todo collection
func NewTodoStore(ctx context.Context, store kv.Store, logger *zap.Logger) (*TodoStore, error) {
	s := &TodoStore{store: store, logger: logger}
	if err := kv.LoadOrDefault(ctx, store, kv.KeyTodos, &s.todos); err != nil {
		return nil, fmt.Errorf("failed to load todos: %w", err)
	}
	for _, t := range s.todos {
		if t.ID > s.lastID {
			s.lastID = t.ID
		}
	}
	return s, nil
}

// Add creates a todo with a fresh id and appends it
func (s *TodoStore) Add(ctx context.Context, text string) (*models.Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("todo text is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID = nextCollectionID(s.lastID)
	todo := models.Todo{ID: s.lastID, Text: text}
	s.todos = append(s.todos, todo)
	s.persist(ctx)
	return &todo, nil
}

// Toggle flips a todo's completed flag. Unknown ids are a no-op.
func (s *TodoStore) Toggle(ctx context.Context, todoID int64) *models.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.todos {
		if s.todos[i].ID == todoID {
			s.todos[i].Completed = !s.todos[i].Completed
			updated := s.todos[i]
			s.persist(ctx)
			return &updated
		}
	}
	return nil
}

// Delete removes a todo. Unknown ids are a no-op.
func (s *TodoStore) Delete(ctx context.Context, todoID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.todos {
		if s.todos[i].ID == todoID {
			s.todos = append(s.todos[:i], s.todos[i+1:]...)
			s.persist(ctx)
			return true
		}
	}
	return false
}

// All returns a copy of the todo collection
func (s *TodoStore) All() []models.Todo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Todo, len(s.todos))
	copy(out, s.todos)
	return out
}

func (s *TodoStore) persist(ctx context.Context) {
	if err := s.store.Save(ctx, kv.KeyTodos, s.todos); err != nil {
		s.logger.Warn("failed_to_persist_todos", zap.Error(err))
	}
}

// WeeklyGoalStore holds the week's checklist items
type WeeklyGoalStore struct {
	mu     sync.RWMutex
	goals  []models.WeeklyGoal
	lastID int64
	store  kv.Store
	logger *zap.Logger
}

// NewWeeklyGoalStore loads the weekly goal collection
func NewWeeklyGoalStore(ctx context.Context, store kv.Store, logger *zap.Logger) (*WeeklyGoalStore, error) {
	s := &WeeklyGoalStore{store: store, logger: logger}
	if err := kv.LoadOrDefault(ctx, store, kv.KeyWeeklyGoals, &s.goals); err != nil {
		return nil, fmt.Errorf("failed to load weekly goals: %w", err)
	}
	for _, g := range s.goals {
		if g.ID > s.lastID {
			s.lastID = g.ID
		}
	}
	return s, nil
}

// Add creates a weekly goal with a fresh id and appends it
func (s *WeeklyGoalStore) Add(ctx context.Context, text string) (*models.WeeklyGoal, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("weekly goal text is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID = nextCollectionID(s.lastID)
	goal := models.WeeklyGoal{ID: s.lastID, Text: text}
	s.goals = append(s.goals, goal)
	s.persist(ctx)
	return &goal, nil
}

// Toggle flips a weekly goal's completed flag. Unknown ids are a no-op.
func (s *WeeklyGoalStore) Toggle(ctx context.Context, goalID int64) *models.WeeklyGoal {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.goals {
		if s.goals[i].ID == goalID {
			s.goals[i].Completed = !s.goals[i].Completed
			updated := s.goals[i]
			s.persist(ctx)
			return &updated
		}
	}
	return nil
}

// All returns a copy of the weekly goal collection
func (s *WeeklyGoalStore) All() []models.WeeklyGoal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.WeeklyGoal, len(s.goals))
	copy(out, s.goals)
	return out
}

func (s *WeeklyGoalStore) persist(ctx context.Context) {
	if err := s.store.Save(ctx, kv.KeyWeeklyGoals, s.goals); err != nil {
		s.logger.Warn("failed_to_persist_weekly_goals", zap.Error(err))
	}
}

// nextCollectionID assigns a timestamp-derived, monotonic id for the
// simple sibling collections
func nextCollectionID(lastID int64) int64 {
	id := time.Now().UnixMilli()
	if id <= lastID {
		id = lastID + 1
	}
	return id
}
