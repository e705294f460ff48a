package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/lifeos/lifeos-api/internal/models"
	"go.uber.org/zap"
)

// DefaultSyncInterval is how often the feed is polled
const DefaultSyncInterval = 30 * time.Second

// Syncer polls an external journal feed and holds the latest snapshot in
// memory. The feed is read-only; entries are never created or mutated here.
// A failed poll keeps the previous snapshot.
type Syncer struct {
	mu       sync.RWMutex
	data     models.JournalData
	lastErr  error
	feedURL  string
	interval time.Duration
	client   *http.Client
	logger   *zap.Logger
}

// NewSyncer creates a syncer for the given feed URL. A zero interval uses
// the default.
func NewSyncer(feedURL string, interval time.Duration, logger *zap.Logger) *Syncer {
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	return &Syncer{
		feedURL:  feedURL,
		interval: interval,
		client:   &http.Client{Timeout: 15 * time.Second},
		logger:   logger,
	}
}

// Run polls the feed once immediately, then on every tick until ctx is done
func (s *Syncer) Run(ctx context.Context) {
	if err := s.Sync(ctx); err != nil {
		s.logger.Warn("journal_sync_failed", zap.Error(err))
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("journal_syncer_stopped")
			return
		case <-ticker.C:
			if err := s.Sync(ctx); err != nil {
				s.logger.Warn("journal_sync_failed", zap.Error(err))
			}
		}
	}
}

// Sync fetches the feed once and replaces the snapshot on success
func (s *Syncer) Sync(ctx context.Context) error {
	if s.feedURL == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.feedURL, nil)
	if err != nil {
		return s.recordError(fmt.Errorf("failed to build journal feed request: %w", err))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return s.recordError(fmt.Errorf("failed to fetch journal feed: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return s.recordError(fmt.Errorf("journal feed returned status %d", resp.StatusCode))
	}

	var data models.JournalData
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return s.recordError(fmt.Errorf("failed to decode journal feed: %w", err))
	}

	s.mu.Lock()
	s.data = data
	s.lastErr = nil
	s.mu.Unlock()

	s.logger.Debug("journal_sync_completed",
		zap.Int("entry_count", len(data.Entries)),
		zap.Time("feed_last_sync", data.LastSync),
	)
	return nil
}

func (s *Syncer) recordError(err error) error {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
	return err
}

// Snapshot returns the current journal data
func (s *Syncer) Snapshot() models.JournalData {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.data
	out.Entries = make([]models.JournalEntry, len(s.data.Entries))
	copy(out.Entries, s.data.Entries)
	return out
}

// LastError returns the error from the most recent poll, or nil after a
// successful one
func (s *Syncer) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}
