package workers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lifeos/lifeos-api/internal/kv"
	"github.com/lifeos/lifeos-api/internal/models"
	"github.com/lifeos/lifeos-api/internal/queue"
	"github.com/lifeos/lifeos-api/internal/services/ai"
)

// mockMessage is a mock implementation of MessageInterface
type mockMessage struct {
	job        *queue.Job
	acked      bool
	nacked     bool
	nackedWith bool
	ackFunc    func() error
}

func (m *mockMessage) Ack() error {
	m.acked = true
	if m.ackFunc != nil {
		return m.ackFunc()
	}
	return nil
}

func (m *mockMessage) Nack(requeue bool) error {
	m.nacked = true
	m.nackedWith = requeue
	return nil
}

func (m *mockMessage) GetJob() *queue.Job {
	return m.job
}

var _ queue.MessageInterface = (*mockMessage)(nil)

// failingCongratulator errors on note generation
type failingCongratulator struct {
	*ai.FallbackProvider
}

func (failingCongratulator) CongratulateGoal(context.Context, models.Goal) (string, error) {
	return "", errors.New("model unavailable")
}

func TestCelebrator_ProcessJob(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	goal := models.Goal{ID: 9, Title: "Run a Marathon", Why: "To prove I can"}

	t.Run("writes one notification and acks", func(t *testing.T) {
		t.Parallel()

		store := kv.NewMemoryStore()
		c := NewCelebrator(ai.NewFallbackProvider(), store)
		msg := &mockMessage{job: queue.NewGoalCelebrationJob(goal)}

		if err := c.ProcessJob(ctx, msg); err != nil {
			t.Fatalf("ProcessJob: %v", err)
		}
		if !msg.acked {
			t.Error("Expected message acked")
		}

		var notifications []models.Notification
		if err := kv.LoadOrDefault(ctx, store, kv.KeyNotifications, &notifications); err != nil {
			t.Fatalf("load notifications: %v", err)
		}
		if len(notifications) != 1 {
			t.Fatalf("Expected one notification, got %d", len(notifications))
		}
		if notifications[0].GoalID != 9 {
			t.Errorf("Expected goal 9, got %d", notifications[0].GoalID)
		}
		if !strings.Contains(notifications[0].Message, "Run a Marathon") {
			t.Errorf("Expected goal title in note, got %q", notifications[0].Message)
		}
	})

	t.Run("redelivered job is recorded once", func(t *testing.T) {
		t.Parallel()

		store := kv.NewMemoryStore()
		c := NewCelebrator(ai.NewFallbackProvider(), store)
		job := queue.NewGoalCelebrationJob(goal)

		if err := c.ProcessJob(ctx, &mockMessage{job: job}); err != nil {
			t.Fatalf("ProcessJob: %v", err)
		}
		if err := c.ProcessJob(ctx, &mockMessage{job: job}); err != nil {
			t.Fatalf("ProcessJob (redelivery): %v", err)
		}

		var notifications []models.Notification
		if err := kv.LoadOrDefault(ctx, store, kv.KeyNotifications, &notifications); err != nil {
			t.Fatalf("load notifications: %v", err)
		}
		if len(notifications) != 1 {
			t.Errorf("Expected one notification after redelivery, got %d", len(notifications))
		}
	})

	t.Run("transient failure nacks with requeue", func(t *testing.T) {
		t.Parallel()

		c := NewCelebrator(failingCongratulator{}, kv.NewMemoryStore())
		msg := &mockMessage{job: queue.NewGoalCelebrationJob(goal)}

		if err := c.ProcessJob(ctx, msg); err == nil {
			t.Fatal("Expected error")
		}
		if !msg.nacked || !msg.nackedWith {
			t.Error("Expected nack with requeue")
		}
	})

	t.Run("exhausted retries dead-letter", func(t *testing.T) {
		t.Parallel()

		c := NewCelebrator(failingCongratulator{}, kv.NewMemoryStore())
		job := queue.NewGoalCelebrationJob(goal)
		job.RetryCount = job.MaxRetries
		msg := &mockMessage{job: job}

		if err := c.ProcessJob(ctx, msg); err == nil {
			t.Fatal("Expected error")
		}
		if !msg.nacked || msg.nackedWith {
			t.Error("Expected nack without requeue")
		}
	})

	t.Run("unknown job type dead-letters", func(t *testing.T) {
		t.Parallel()

		c := NewCelebrator(ai.NewFallbackProvider(), kv.NewMemoryStore())
		job := queue.NewGoalCelebrationJob(goal)
		job.Type = "mystery"
		msg := &mockMessage{job: job}

		if err := c.ProcessJob(ctx, msg); err == nil {
			t.Fatal("Expected error for unknown type")
		}
		if !msg.nacked || msg.nackedWith {
			t.Error("Expected nack without requeue")
		}
	})
}
