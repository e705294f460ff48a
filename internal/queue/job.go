package queue

import (
	"time"

	"github.com/google/uuid"
	"github.com/lifeos/lifeos-api/internal/models"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypeGoalCelebration is a job for writing a celebration note when
	// a vision-board goal is completed
	JobTypeGoalCelebration JobType = "goal_celebration"
)

// Job represents a job in the queue. The goal payload is embedded so the
// worker does not need to read the goal collection.
type Job struct {
	ID         uuid.UUID      `json:"id"`
	Type       JobType        `json:"type"`
	GoalID     int64          `json:"goal_id"`
	GoalTitle  string         `json:"goal_title"`
	GoalWhy    string         `json:"goal_why"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	RetryCount int            `json:"retry_count"`
	MaxRetries int            `json:"max_retries"`
}

// NewGoalCelebrationJob creates a celebration job for a completed goal
func NewGoalCelebrationJob(goal models.Goal) *Job {
	return &Job{
		ID:         uuid.New(),
		Type:       JobTypeGoalCelebration,
		GoalID:     goal.ID,
		GoalTitle:  goal.Title,
		GoalWhy:    goal.Why,
		Metadata:   make(map[string]any),
		CreatedAt:  time.Now(),
		RetryCount: 0,
		MaxRetries: 3,
	}
}

// CanRetry checks if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry increments the retry count
func (j *Job) IncrementRetry() {
	j.RetryCount++
}
