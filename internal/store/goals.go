package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/lifeos/lifeos-api/internal/kv"
	"github.com/lifeos/lifeos-api/internal/models"
	"github.com/lifeos/lifeos-api/internal/templates"
	"go.uber.org/zap"
)

var (
	// ErrTitleRequired is returned when a goal is created without a title
	ErrTitleRequired = errors.New("goal title is required")
	// ErrWhyRequired is returned when a goal is created without a why
	ErrWhyRequired = errors.New("goal why is required")
	// ErrNoImageSource is returned when image source resolution yields no
	// usable image reference
	ErrNoImageSource = errors.New("no usable image source")
)

// ImageResolver produces an image reference for a prompt. Implementations
// must degrade to a placeholder rather than fail hard; a returned error
// still aborts only the single resolution, never a whole batch.
type ImageResolver interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// Notifier receives goal-completion events. Delivery is best-effort: a
// notifier must not fail the mutation that triggered it.
type Notifier interface {
	GoalCompleted(ctx context.Context, goal models.Goal)
}

// NopNotifier discards completion events
type NopNotifier struct{}

// GoalCompleted implements Notifier
func (NopNotifier) GoalCompleted(context.Context, models.Goal) {}

// PlaceholderImageURL is used when image generation fails or no generator
// is available
const PlaceholderImageURL = "https://picsum.photos/seed/vision/800/600"

// ImageSource describes where a new goal's image comes from: a direct
// reference (external URL or data URI) or a generation prompt.
type ImageSource struct {
	URL    string
	Prompt string
}

// AddOptions carries the optional fields of a new goal
type AddOptions struct {
	Category      models.LifeAreaCategory
	Progress      int
	TargetDate    *time.Time
	Tags          []string
	RelatedHabits []int64
}

// Filter selects a subset of the board for read-only views. Status is
// "all", "active", or "completed"; archived goals are always excluded.
// Category is "all" or an exact life area. Search is matched case-
// insensitively against title, why, and tags. The three axes compose
// with logical AND.
type Filter struct {
	Status   string
	Category string
	Search   string
}

// GoalStore is the authoritative, ordered collection of vision-board
// goals. All mutation funnels through its methods; reads return copies.
type GoalStore struct {
	mu       sync.RWMutex
	goals    []models.Goal
	lastID   int64
	store    kv.Store
	images   ImageResolver
	notifier Notifier
	logger   *zap.Logger
}

// NewGoalStore creates a goal store backed by the given persistence
// adapter and loads any existing collection from it.
func NewGoalStore(ctx context.Context, store kv.Store, images ImageResolver, notifier Notifier, logger *zap.Logger) (*GoalStore, error) {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	s := &GoalStore{
		store:    store,
		images:   images,
		notifier: notifier,
		logger:   logger,
	}
	if err := kv.LoadOrDefault(ctx, store, kv.KeyGoals, &s.goals); err != nil {
		return nil, fmt.Errorf("failed to load goals: %w", err)
	}
	for _, g := range s.goals {
		if g.ID > s.lastID {
			s.lastID = g.ID
		}
	}
	return s, nil
}

// nextID assigns a fresh unique id. IDs are derived from the current
// wall clock in milliseconds and forced monotonic so they are never
// reused even when two goals are created in the same millisecond.
func (s *GoalStore) nextID() int64 {
	id := time.Now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// persist writes the whole collection to the KV store. Persistence
// failures are logged but never fail the mutation that triggered them.
func (s *GoalStore) persist(ctx context.Context) {
	if err := s.store.Save(ctx, kv.KeyGoals, s.goals); err != nil {
		s.logger.Warn("failed_to_persist_goals",
			zap.Int("goal_count", len(s.goals)),
			zap.Error(err),
		)
	}
}

// resolveImage turns an ImageSource into an image reference, or returns
// ErrNoImageSource if the source is empty. Generation failures fall back
// to the placeholder rather than failing the creation.
func (s *GoalStore) resolveImage(ctx context.Context, src ImageSource) (url, prompt string, err error) {
	if strings.TrimSpace(src.URL) != "" {
		return strings.TrimSpace(src.URL), "", nil
	}
	if strings.TrimSpace(src.Prompt) == "" {
		return "", "", ErrNoImageSource
	}
	prompt = strings.TrimSpace(src.Prompt)
	if s.images == nil {
		return PlaceholderImageURL, prompt, nil
	}
	url, genErr := s.images.GenerateImage(ctx, prompt)
	if genErr != nil || url == "" {
		s.logger.Warn("image_generation_failed_using_placeholder",
			zap.String("prompt", prompt),
			zap.Error(genErr),
		)
		return PlaceholderImageURL, prompt, nil
	}
	return url, prompt, nil
}

// Add creates a new goal. Title, why, and a usable image source are
// required; on any validation failure the collection is unchanged and
// the error identifies the rejected field.
func (s *GoalStore) Add(ctx context.Context, title, why string, src ImageSource, opts AddOptions) (*models.Goal, error) {
	title = strings.TrimSpace(title)
	why = strings.TrimSpace(why)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if why == "" {
		return nil, ErrWhyRequired
	}

	imageURL, imagePrompt, err := s.resolveImage(ctx, src)
	if err != nil {
		return nil, err
	}

	progress := clampProgress(opts.Progress)

	s.mu.Lock()
	defer s.mu.Unlock()

	goal := models.Goal{
		ID:            s.nextID(),
		Title:         title,
		Why:           why,
		ImageURL:      imageURL,
		ImagePrompt:   imagePrompt,
		Category:      opts.Category,
		Progress:      progress,
		Status:        models.GoalStatusActive,
		RelatedHabits: models.DedupeHabitIDs(opts.RelatedHabits),
		CreatedAt:     time.Now().UTC(),
		TargetDate:    opts.TargetDate,
		Tags:          opts.Tags,
	}
	s.goals = append(s.goals, goal)
	s.persist(ctx)

	return &goal, nil
}

// UpdateProgress sets a goal's progress, clamped to [0,100]. Reaching
// 100 from a non-completed status flips the goal to completed and emits
// exactly one completion notification. Dropping back below 100 never
// auto-reverts the status: reactivation is an explicit SetStatus call.
// Unknown ids are a silent no-op.
func (s *GoalStore) UpdateProgress(ctx context.Context, goalID int64, progress int) *models.Goal {
	progress = clampProgress(progress)

	s.mu.Lock()
	idx := s.indexOf(goalID)
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}

	g := &s.goals[idx]
	g.Progress = progress

	completed := false
	if progress == 100 && g.Status != models.GoalStatusCompleted {
		g.Status = models.GoalStatusCompleted
		completed = true
	}
	updated := *g
	s.persist(ctx)
	s.mu.Unlock()

	if completed {
		s.notifier.GoalCompleted(ctx, updated)
	}
	return &updated
}

// SetStatus overrides a goal's status directly. Marking a goal completed
// jumps its progress to 100 and fires the completion notification if the
// goal was not already completed; reactivating leaves progress untouched.
func (s *GoalStore) SetStatus(ctx context.Context, goalID int64, status models.GoalStatus) *models.Goal {
	s.mu.Lock()
	idx := s.indexOf(goalID)
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}

	g := &s.goals[idx]
	completed := false
	if status == models.GoalStatusCompleted && g.Status != models.GoalStatusCompleted {
		g.Progress = 100
		completed = true
	}
	g.Status = status
	updated := *g
	s.persist(ctx)
	s.mu.Unlock()

	if completed {
		s.notifier.GoalCompleted(ctx, updated)
	}
	return &updated
}

// Update edits a goal's editable fields. Nil pointers leave the field
// unchanged. Progress edits through this path do not drive status
// transitions; that is UpdateProgress's job.
func (s *GoalStore) Update(ctx context.Context, goalID int64, title, why *string, category *models.LifeAreaCategory, targetDate **time.Time, tags *[]string) *models.Goal {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(goalID)
	if idx < 0 {
		return nil
	}

	g := &s.goals[idx]
	if title != nil && strings.TrimSpace(*title) != "" {
		g.Title = strings.TrimSpace(*title)
	}
	if why != nil && strings.TrimSpace(*why) != "" {
		g.Why = strings.TrimSpace(*why)
	}
	if category != nil {
		g.Category = *category
	}
	if targetDate != nil {
		g.TargetDate = *targetDate
	}
	if tags != nil {
		g.Tags = *tags
	}
	updated := *g
	s.persist(ctx)
	return &updated
}

// Delete removes a goal unconditionally. The user-facing confirmation
// step is the caller's concern. Unknown ids are a silent no-op.
func (s *GoalStore) Delete(ctx context.Context, goalID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(goalID)
	if idx < 0 {
		return false
	}
	s.goals = append(s.goals[:idx], s.goals[idx+1:]...)
	s.persist(ctx)
	return true
}

// ToggleRelatedHabit adds the habit id to the goal's related set if
// absent, removes it if present. Double invocation restores the original
// state. Unknown goal ids are a silent no-op.
func (s *GoalStore) ToggleRelatedHabit(ctx context.Context, goalID, habitID int64) *models.Goal {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(goalID)
	if idx < 0 {
		return nil
	}

	g := &s.goals[idx]
	if g.HasRelatedHabit(habitID) {
		var remaining []int64
		for _, id := range g.RelatedHabits {
			if id != habitID {
				remaining = append(remaining, id)
			}
		}
		g.RelatedHabits = remaining
	} else {
		g.RelatedHabits = append(g.RelatedHabits, habitID)
	}
	updated := *g
	s.persist(ctx)
	return &updated
}

// Reorder moves the element at fromIndex to toIndex, shifting the
// elements between them. Identity is untouched; this is a pure
// presentation-order change. Out-of-range indices are a no-op.
func (s *GoalStore) Reorder(ctx context.Context, fromIndex, toIndex int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.goals)
	if fromIndex < 0 || fromIndex >= n || toIndex < 0 || toIndex >= n || fromIndex == toIndex {
		return false
	}

	moved := s.goals[fromIndex]
	out := make([]models.Goal, 0, n)
	out = append(out, s.goals[:fromIndex]...)
	out = append(out, s.goals[fromIndex+1:]...)
	out = append(out, models.Goal{})
	copy(out[toIndex+1:], out[toIndex:])
	out[toIndex] = moved
	s.goals = out
	s.persist(ctx)
	return true
}

// ApplyTemplate bulk-inserts a template's goal drafts. Images are
// resolved one at a time - bounded concurrency of 1 is deliberate, to
// avoid burst rate limits on the image generator - and a failed
// generation yields the placeholder rather than blocking the batch.
// The finished batch is appended to the collection atomically.
func (s *GoalStore) ApplyTemplate(ctx context.Context, tpl templates.Template) ([]models.Goal, error) {
	type resolved struct {
		draft templates.GoalDraft
		url   string
	}

	prepared := make([]resolved, 0, len(tpl.Goals))
	for _, draft := range tpl.Goals {
		url := PlaceholderImageURL
		if s.images != nil {
			generated, err := s.images.GenerateImage(ctx, draft.ImagePrompt)
			if err != nil || generated == "" {
				s.logger.Warn("template_image_generation_failed_using_placeholder",
					zap.String("template_id", tpl.ID),
					zap.String("goal_title", draft.Title),
					zap.Error(err),
				)
			} else {
				url = generated
			}
		}
		prepared = append(prepared, resolved{draft: draft, url: url})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	batch := make([]models.Goal, 0, len(prepared))
	for _, r := range prepared {
		goal := models.Goal{
			ID:            s.nextID(),
			Title:         r.draft.Title,
			Why:           r.draft.Why,
			ImageURL:      r.url,
			ImagePrompt:   r.draft.ImagePrompt,
			Category:      r.draft.Category,
			Progress:      0,
			Status:        models.GoalStatusActive,
			RelatedHabits: models.DedupeHabitIDs(r.draft.RelatedHabits),
			CreatedAt:     now,
			Tags:          r.draft.Tags,
		}
		batch = append(batch, goal)
	}
	s.goals = append(s.goals, batch...)
	s.persist(ctx)

	s.logger.Info("applied_vision_board_template",
		zap.String("template_id", tpl.ID),
		zap.Int("goal_count", len(batch)),
	)
	return batch, nil
}

// Replace swaps the whole collection, used by import. No merge is
// attempted; the incoming array wins.
func (s *GoalStore) Replace(ctx context.Context, goals []models.Goal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.goals = make([]models.Goal, len(goals))
	copy(s.goals, goals)
	s.lastID = 0
	for _, g := range s.goals {
		if g.ID > s.lastID {
			s.lastID = g.ID
		}
	}
	s.persist(ctx)
}

// All returns a copy of the full ordered collection
func (s *GoalStore) All() []models.Goal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Goal, len(s.goals))
	copy(out, s.goals)
	return out
}

// Get returns the goal with the given id, or nil
func (s *GoalStore) Get(goalID int64) *models.Goal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(goalID)
	if idx < 0 {
		return nil
	}
	cp := s.goals[idx]
	return &cp
}

// FilterGoals returns the goals matching the filter, in collection order
func (s *GoalStore) FilterGoals(f Filter) []models.Goal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Goal
	for _, g := range s.goals {
		if g.Status == models.GoalStatusArchived {
			continue
		}
		switch f.Status {
		case "", "all":
		case string(models.GoalStatusActive):
			if g.Status != models.GoalStatusActive {
				continue
			}
		case string(models.GoalStatusCompleted):
			if g.Status != models.GoalStatusCompleted {
				continue
			}
		default:
			continue
		}
		if f.Category != "" && f.Category != "all" && string(g.Category) != f.Category {
			continue
		}
		if !g.MatchesSearch(f.Search) {
			continue
		}
		out = append(out, g)
	}
	return out
}

// GroupedBucket is one category partition of the filtered board
type GroupedBucket struct {
	Category string        `json:"category"`
	Goals    []models.Goal `json:"goals"`
}

// UncategorizedBucket is the bucket key for goals with no category
const UncategorizedBucket = "uncategorized"

// GroupByCategory partitions the filtered set into per-category buckets,
// preserving within-bucket order. Goals without a category land in the
// "uncategorized" bucket. Empty buckets are omitted.
func (s *GoalStore) GroupByCategory(f Filter) []GroupedBucket {
	filtered := s.FilterGoals(f)

	byCategory := make(map[string][]models.Goal)
	for _, g := range filtered {
		key := UncategorizedBucket
		if g.Category != "" {
			key = string(g.Category)
		}
		byCategory[key] = append(byCategory[key], g)
	}

	var out []GroupedBucket
	for _, cat := range models.LifeAreaCategories {
		if goals, ok := byCategory[string(cat)]; ok {
			out = append(out, GroupedBucket{Category: string(cat), Goals: goals})
		}
	}
	if goals, ok := byCategory[UncategorizedBucket]; ok {
		out = append(out, GroupedBucket{Category: UncategorizedBucket, Goals: goals})
	}
	return out
}

// indexOf returns the position of the goal with the given id, or -1.
// Callers must hold the lock.
func (s *GoalStore) indexOf(goalID int64) int {
	for i := range s.goals {
		if s.goals[i].ID == goalID {
			return i
		}
	}
	return -1
}

func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
