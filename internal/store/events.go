package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/lifeos/lifeos-api/internal/kv"
	"github.com/lifeos/lifeos-api/internal/models"
	"go.uber.org/zap"
)

// EventStore holds the daily planner's scheduled blocks. Overlapping
// events are stored as-is; only the time window and color are validated.
type EventStore struct {
	mu     sync.RWMutex
	events []models.CalendarEvent
	lastID int64
	store  kv.Store
	logger *zap.Logger
}

// NewEventStore loads the calendar event collection
func NewEventStore(ctx context.Context, store kv.Store, logger *zap.Logger) (*EventStore, error) {
	s := &EventStore{store: store, logger: logger}
	if err := kv.LoadOrDefault(ctx, store, kv.KeyEvents, &s.events); err != nil {
		return nil, fmt.Errorf("failed to load calendar events: %w", err)
	}
	for _, e := range s.events {
		if e.ID > s.lastID {
			s.lastID = e.ID
		}
	}
	return s, nil
}

// Add validates and appends a calendar event
func (s *EventStore) Add(ctx context.Context, eventTime string, duration float64, title string, color models.EventColor) (*models.CalendarEvent, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("event title is required")
	}
	if _, _, err := models.ParseEventTime(eventTime); err != nil {
		return nil, err
	}
	if duration <= 0 {
		return nil, fmt.Errorf("event duration must be positive")
	}
	switch color {
	case models.EventColorCyan, models.EventColorIndigo, models.EventColorTeal, models.EventColorRose:
	default:
		return nil, fmt.Errorf("invalid event color: %s", color)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID = nextCollectionID(s.lastID)
	event := models.CalendarEvent{
		ID:       s.lastID,
		Time:     eventTime,
		Duration: duration,
		Title:    title,
		Color:    color,
	}
	s.events = append(s.events, event)
	s.persist(ctx)
	return &event, nil
}

// Delete removes an event. Unknown ids are a no-op.
func (s *EventStore) Delete(ctx context.Context, eventID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.events {
		if s.events[i].ID == eventID {
			s.events = append(s.events[:i], s.events[i+1:]...)
			s.persist(ctx)
			return true
		}
	}
	return false
}

// All returns a copy of the event collection
func (s *EventStore) All() []models.CalendarEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.CalendarEvent, len(s.events))
	copy(out, s.events)
	return out
}

func (s *EventStore) persist(ctx context.Context) {
	if err := s.store.Save(ctx, kv.KeyEvents, s.events); err != nil {
		s.logger.Warn("failed_to_persist_calendar_events", zap.Error(err))
	}
}
