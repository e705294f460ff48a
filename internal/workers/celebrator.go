package workers

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/lifeos/lifeos-api/internal/kv"
	"github.com/lifeos/lifeos-api/internal/models"
	"github.com/lifeos/lifeos-api/internal/queue"
	"github.com/lifeos/lifeos-api/internal/services/ai"
)

// Celebrator processes goal celebration jobs. For each completed goal it
// writes a congratulation note and appends it to the notification list.
type Celebrator struct {
	aiProvider ai.Provider
	store      kv.Store
}

// NewCelebrator creates a new celebrator
func NewCelebrator(aiProvider ai.Provider, store kv.Store) *Celebrator {
	return &Celebrator{
		aiProvider: aiProvider,
		store:      store,
	}
}

// ProcessCelebrationJob writes and persists the celebration note
func (c *Celebrator) ProcessCelebrationJob(ctx context.Context, job *queue.Job) error {
	goal := models.Goal{
		ID:    job.GoalID,
		Title: job.GoalTitle,
		Why:   job.GoalWhy,
	}

	message, err := c.aiProvider.CongratulateGoal(ctx, goal)
	if err != nil {
		return fmt.Errorf("failed to write celebration note: %w", err)
	}

	var notifications []models.Notification
	if err := kv.LoadOrDefault(ctx, c.store, kv.KeyNotifications, &notifications); err != nil {
		return fmt.Errorf("failed to load notifications: %w", err)
	}

	// Each celebration job produces exactly one note, keyed by job id
	for _, n := range notifications {
		if n.ID == job.ID.String() {
			log.Printf("Celebration for goal %d already recorded, skipping", job.GoalID)
			return nil
		}
	}

	notifications = append(notifications, models.Notification{
		ID:        job.ID.String(),
		GoalID:    job.GoalID,
		GoalTitle: job.GoalTitle,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	})

	if err := c.store.Save(ctx, kv.KeyNotifications, notifications); err != nil {
		return fmt.Errorf("failed to persist notifications: %w", err)
	}

	log.Printf("Recorded celebration for goal %d (%s)", job.GoalID, job.GoalTitle)
	return nil
}

// ProcessJob processes a job based on its type
func (c *Celebrator) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()

	switch job.Type {
	case queue.JobTypeGoalCelebration:
		if err := c.ProcessCelebrationJob(ctx, job); err != nil {
			return c.handleJobError(msg, job, err)
		}
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack job: %w", ackErr)
		}
		return nil

	default:
		if nackErr := msg.Nack(false); nackErr != nil { // Unknown job type, send to DLQ
			log.Printf("Failed to nack unknown job type: %v", nackErr)
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// handleJobError retries transient failures and dead-letters the rest
func (c *Celebrator) handleJobError(msg queue.MessageInterface, job *queue.Job, err error) error {
	if job.CanRetry() {
		job.IncrementRetry()
		log.Printf("Celebration job %s failed (attempt %d/%d): %v, will retry", job.ID, job.RetryCount, job.MaxRetries, err)
		if nackErr := msg.Nack(true); nackErr != nil {
			log.Printf("Failed to nack job: %v", nackErr)
		}
		return fmt.Errorf("job failed (will retry): %w", err)
	}

	log.Printf("Celebration job %s failed after %d retries: %v, sending to DLQ", job.ID, job.MaxRetries, err)
	if nackErr := msg.Nack(false); nackErr != nil {
		log.Printf("Failed to nack job to DLQ: %v", nackErr)
	}
	return fmt.Errorf("job failed (max retries): %w", err)
}
