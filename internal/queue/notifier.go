package queue

import (
	"context"

	"github.com/lifeos/lifeos-api/internal/models"
	"go.uber.org/zap"
)

// CelebrationNotifier enqueues a celebration job whenever a goal completes.
// Enqueue failures are logged, never surfaced to the caller; completing a
// goal must not fail because the broker is down.
type CelebrationNotifier struct {
	queue  JobQueue
	logger *zap.Logger
}

// NewCelebrationNotifier creates a notifier backed by the job queue
func NewCelebrationNotifier(queue JobQueue, logger *zap.Logger) *CelebrationNotifier {
	return &CelebrationNotifier{queue: queue, logger: logger}
}

// GoalCompleted enqueues a goal celebration job
func (n *CelebrationNotifier) GoalCompleted(ctx context.Context, goal models.Goal) {
	job := NewGoalCelebrationJob(goal)
	if err := n.queue.Enqueue(ctx, job); err != nil {
		n.logger.Warn("failed_to_enqueue_celebration",
			zap.Int64("goal_id", goal.ID),
			zap.Error(err),
		)
		return
	}
	n.logger.Info("enqueued_celebration",
		zap.Int64("goal_id", goal.ID),
		zap.String("job_id", job.ID.String()),
	)
}
