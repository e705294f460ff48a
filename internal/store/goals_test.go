package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/lifeos/lifeos-api/internal/kv"
	"github.com/lifeos/lifeos-api/internal/models"
	"github.com/lifeos/lifeos-api/internal/templates"
	"go.uber.org/zap"
)

type fakeImageResolver struct {
	mu       sync.Mutex
	calls    int
	inFlight int
	maxSeen  int
	failOn   map[int]bool // 1-based call numbers that fail
}

func (f *fakeImageResolver) GenerateImage(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.inFlight++
	if f.inFlight > f.maxSeen {
		f.maxSeen = f.inFlight
	}
	call := f.calls
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if f.failOn[call] {
		return "", errors.New("generator unavailable")
	}
	return "data:image/png;base64,generated", nil
}

type countingNotifier struct {
	mu    sync.Mutex
	goals []models.Goal
}

func (n *countingNotifier) GoalCompleted(_ context.Context, g models.Goal) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.goals = append(n.goals, g)
}

func (n *countingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.goals)
}

func newTestGoalStore(t *testing.T) (*GoalStore, *countingNotifier) {
	t.Helper()
	notifier := &countingNotifier{}
	s, err := NewGoalStore(context.Background(), kv.NewMemoryStore(), &fakeImageResolver{}, notifier, zap.NewNop())
	if err != nil {
		t.Fatalf("NewGoalStore: %v", err)
	}
	return s, notifier
}

func mustAdd(t *testing.T, s *GoalStore, title string) *models.Goal {
	t.Helper()
	g, err := s.Add(context.Background(), title, "because it matters", ImageSource{URL: "https://example.com/img.png"}, AddOptions{})
	if err != nil {
		t.Fatalf("Add(%q): %v", title, err)
	}
	return g
}

func TestAdd_RequiredFields(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tests := []struct {
		name    string
		title   string
		why     string
		src     ImageSource
		wantErr error
	}{
		{name: "empty title", title: "", why: "because", src: ImageSource{URL: "https://x/y.png"}, wantErr: ErrTitleRequired},
		{name: "whitespace title", title: "   ", why: "because", src: ImageSource{URL: "https://x/y.png"}, wantErr: ErrTitleRequired},
		{name: "empty why", title: "Run 5k", why: "", src: ImageSource{URL: "https://x/y.png"}, wantErr: ErrWhyRequired},
		{name: "no image source", title: "Run 5k", why: "because", src: ImageSource{}, wantErr: ErrNoImageSource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, _ := newTestGoalStore(t)
			before := len(s.All())
			_, err := s.Add(ctx, tt.title, tt.why, tt.src, AddOptions{})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
			if after := len(s.All()); after != before {
				t.Errorf("Expected collection unchanged (%d), got %d", before, after)
			}
		})
	}
}

func TestAdd_Defaults(t *testing.T) {
	t.Parallel()

	s, _ := newTestGoalStore(t)
	g := mustAdd(t, s, "Run a Marathon")

	if g.Status != models.GoalStatusActive {
		t.Errorf("Expected status active, got %s", g.Status)
	}
	if g.Progress != 0 {
		t.Errorf("Expected progress 0, got %d", g.Progress)
	}
	if g.ID == 0 {
		t.Error("Expected a fresh id")
	}
	if g.CreatedAt.IsZero() {
		t.Error("Expected created_at to be set")
	}
	if g.ImagePrompt != "" {
		t.Errorf("Expected no image prompt for direct URL source, got %q", g.ImagePrompt)
	}
}

func TestAdd_GeneratedImageKeepsPrompt(t *testing.T) {
	t.Parallel()

	s, _ := newTestGoalStore(t)
	g, err := s.Add(context.Background(), "Run 5k", "Health", ImageSource{Prompt: "runner at dawn"}, AddOptions{})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if g.ImagePrompt != "runner at dawn" {
		t.Errorf("Expected image prompt recorded, got %q", g.ImagePrompt)
	}
	if g.ImageURL == "" {
		t.Error("Expected an image URL")
	}
}

func TestAdd_UniqueMonotonicIDs(t *testing.T) {
	t.Parallel()

	s, _ := newTestGoalStore(t)
	seen := make(map[int64]bool)
	var prev int64
	for i := 0; i < 50; i++ {
		g := mustAdd(t, s, "goal")
		if seen[g.ID] {
			t.Fatalf("Duplicate id %d", g.ID)
		}
		if g.ID <= prev {
			t.Fatalf("IDs not monotonic: %d after %d", g.ID, prev)
		}
		seen[g.ID] = true
		prev = g.ID
	}
}

func TestUpdateProgress_Clamping(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("clamps above 100 and completes", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestGoalStore(t)
		g := mustAdd(t, s, "Run 5k")

		updated := s.UpdateProgress(ctx, g.ID, 130)
		if updated == nil {
			t.Fatal("Expected goal")
		}
		if updated.Progress != 100 {
			t.Errorf("Expected progress 100, got %d", updated.Progress)
		}
		if updated.Status != models.GoalStatusCompleted {
			t.Errorf("Expected status completed, got %s", updated.Status)
		}
	})

	t.Run("clamps below 0", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestGoalStore(t)
		g := mustAdd(t, s, "Run 5k")

		updated := s.UpdateProgress(ctx, g.ID, -5)
		if updated.Progress != 0 {
			t.Errorf("Expected progress 0, got %d", updated.Progress)
		}
		if updated.Status != models.GoalStatusActive {
			t.Errorf("Expected status active, got %s", updated.Status)
		}
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestGoalStore(t)
		if got := s.UpdateProgress(ctx, 999999, 50); got != nil {
			t.Errorf("Expected nil for unknown id, got %v", got)
		}
	})
}

func TestUpdateProgress_NoAutoRevert(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newTestGoalStore(t)
	g := mustAdd(t, s, "Run 5k")

	s.UpdateProgress(ctx, g.ID, 100)
	dropped := s.UpdateProgress(ctx, g.ID, 50)
	if dropped.Status != models.GoalStatusCompleted {
		t.Errorf("Expected status to stay completed after dropping below 100, got %s", dropped.Status)
	}

	reactivated := s.SetStatus(ctx, g.ID, models.GoalStatusActive)
	if reactivated.Status != models.GoalStatusActive {
		t.Errorf("Expected status active after reactivate, got %s", reactivated.Status)
	}
	if reactivated.Progress != 50 {
		t.Errorf("Expected reactivate to leave progress untouched, got %d", reactivated.Progress)
	}
}

func TestCompletionNotification_FiredExactlyOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, notifier := newTestGoalStore(t)

	g, err := s.Add(ctx, "Run 5k", "Health", ImageSource{URL: "https://example.com/run.png"}, AddOptions{})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	s.UpdateProgress(ctx, g.ID, 100)

	all := s.All()
	if len(all) != 1 {
		t.Fatalf("Expected one goal, got %d", len(all))
	}
	if all[0].Status != models.GoalStatusCompleted || all[0].Progress != 100 {
		t.Errorf("Expected completed/100, got %s/%d", all[0].Status, all[0].Progress)
	}
	if notifier.count() != 1 {
		t.Errorf("Expected exactly one completion notification, got %d", notifier.count())
	}

	// Setting 100 again must not fire a second notification
	s.UpdateProgress(ctx, g.ID, 100)
	if notifier.count() != 1 {
		t.Errorf("Expected still one notification, got %d", notifier.count())
	}
}

func TestSetStatus_MarkCompleteJumpsProgress(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, notifier := newTestGoalStore(t)
	g := mustAdd(t, s, "Run 5k")

	updated := s.SetStatus(ctx, g.ID, models.GoalStatusCompleted)
	if updated.Progress != 100 {
		t.Errorf("Expected mark-complete to set progress 100, got %d", updated.Progress)
	}
	if notifier.count() != 1 {
		t.Errorf("Expected one notification, got %d", notifier.count())
	}
}

func TestToggleRelatedHabit_Idempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newTestGoalStore(t)
	g := mustAdd(t, s, "Run 5k")

	first := s.ToggleRelatedHabit(ctx, g.ID, 2)
	if !first.HasRelatedHabit(2) {
		t.Fatal("Expected habit 2 linked after first toggle")
	}

	second := s.ToggleRelatedHabit(ctx, g.ID, 2)
	if second.HasRelatedHabit(2) {
		t.Fatal("Expected habit 2 unlinked after second toggle")
	}
	if len(second.RelatedHabits) != 0 {
		t.Errorf("Expected original state restored, got %v", second.RelatedHabits)
	}

	if got := s.ToggleRelatedHabit(ctx, 424242, 2); got != nil {
		t.Errorf("Expected nil for unknown goal, got %v", got)
	}
}

func TestDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newTestGoalStore(t)
	g := mustAdd(t, s, "Run 5k")

	if !s.Delete(ctx, g.ID) {
		t.Fatal("Expected delete to succeed")
	}
	if len(s.All()) != 0 {
		t.Error("Expected empty collection after delete")
	}
	if s.Delete(ctx, g.ID) {
		t.Error("Expected second delete to be a no-op")
	}
}

func TestReorder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newTestGoalStore(t)
	titles := []string{"A", "B", "C", "D"}
	for _, title := range titles {
		mustAdd(t, s, title)
	}

	if !s.Reorder(ctx, 0, 2) {
		t.Fatal("Expected reorder to succeed")
	}

	var got []string
	for _, g := range s.All() {
		got = append(got, g.Title)
	}
	want := []string{"B", "C", "A", "D"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected order %v, got %v", want, got)
		}
	}

	if s.Reorder(ctx, 0, 10) {
		t.Error("Expected out-of-range reorder to be rejected")
	}
}

func TestFilterGoals(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newTestGoalStore(t)

	run := mustAdd(t, s, "Run a Marathon")
	s.Update(ctx, run.ID, nil, nil, categoryPtr(models.CategoryHealth), nil, &[]string{"fitness"})

	read, _ := s.Add(ctx, "Read 24 Books", "To learn", ImageSource{URL: "https://x/r.png"}, AddOptions{Category: models.CategoryMind})
	s.UpdateProgress(ctx, read.ID, 100)

	archived := mustAdd(t, s, "Old Dream")
	s.UpdateProgress(ctx, archived.ID, 100)
	s.SetStatus(ctx, archived.ID, models.GoalStatusArchived)

	t.Run("completed excludes archived even at progress 100", func(t *testing.T) {
		t.Parallel()
		got := s.FilterGoals(Filter{Status: "completed", Category: "all"})
		if len(got) != 1 || got[0].ID != read.ID {
			t.Fatalf("Expected only the completed book goal, got %v", got)
		}
	})

	t.Run("status all still excludes archived", func(t *testing.T) {
		t.Parallel()
		got := s.FilterGoals(Filter{Status: "all", Category: "all"})
		if len(got) != 2 {
			t.Fatalf("Expected 2 goals, got %d", len(got))
		}
	})

	t.Run("category filter", func(t *testing.T) {
		t.Parallel()
		got := s.FilterGoals(Filter{Status: "all", Category: "health"})
		if len(got) != 1 || got[0].ID != run.ID {
			t.Fatalf("Expected only the health goal, got %v", got)
		}
	})

	t.Run("search is case-insensitive across title, why, tags", func(t *testing.T) {
		t.Parallel()
		if got := s.FilterGoals(Filter{Search: "marathon"}); len(got) != 1 {
			t.Errorf("title search: expected 1, got %d", len(got))
		}
		if got := s.FilterGoals(Filter{Search: "LEARN"}); len(got) != 1 {
			t.Errorf("why search: expected 1, got %d", len(got))
		}
		if got := s.FilterGoals(Filter{Search: "fitness"}); len(got) != 1 {
			t.Errorf("tag search: expected 1, got %d", len(got))
		}
		if got := s.FilterGoals(Filter{Search: "nomatch"}); len(got) != 0 {
			t.Errorf("expected no match, got %d", len(got))
		}
	})

	t.Run("axes compose with AND", func(t *testing.T) {
		t.Parallel()
		got := s.FilterGoals(Filter{Status: "completed", Category: "health", Search: ""})
		if len(got) != 0 {
			t.Errorf("Expected no completed health goals, got %d", len(got))
		}
	})
}

func TestGroupByCategory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newTestGoalStore(t)

	s.Add(ctx, "Run", "health", ImageSource{URL: "https://x/1.png"}, AddOptions{Category: models.CategoryHealth})
	s.Add(ctx, "Lift", "health", ImageSource{URL: "https://x/2.png"}, AddOptions{Category: models.CategoryHealth})
	s.Add(ctx, "Wander", "joy", ImageSource{URL: "https://x/3.png"}, AddOptions{})

	buckets := s.GroupByCategory(Filter{})
	if len(buckets) != 2 {
		t.Fatalf("Expected 2 buckets, got %d", len(buckets))
	}
	if buckets[0].Category != "health" || len(buckets[0].Goals) != 2 {
		t.Errorf("Expected health bucket with 2 goals, got %s/%d", buckets[0].Category, len(buckets[0].Goals))
	}
	if buckets[0].Goals[0].Title != "Run" || buckets[0].Goals[1].Title != "Lift" {
		t.Error("Expected within-bucket order preserved")
	}
	if buckets[1].Category != UncategorizedBucket || len(buckets[1].Goals) != 1 {
		t.Errorf("Expected uncategorized bucket with 1 goal, got %s/%d", buckets[1].Category, len(buckets[1].Goals))
	}
}

func TestApplyTemplate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	notifier := &countingNotifier{}
	resolver := &fakeImageResolver{failOn: map[int]bool{2: true}}
	s, err := NewGoalStore(ctx, kv.NewMemoryStore(), resolver, notifier, zap.NewNop())
	if err != nil {
		t.Fatalf("NewGoalStore: %v", err)
	}

	tpl, err := templates.ByID("balanced-life")
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}

	batch, err := s.ApplyTemplate(ctx, tpl)
	if err != nil {
		t.Fatalf("ApplyTemplate: %v", err)
	}
	if len(batch) != len(tpl.Goals) {
		t.Fatalf("Expected %d goals, got %d", len(tpl.Goals), len(batch))
	}
	if len(s.All()) != len(tpl.Goals) {
		t.Fatalf("Expected whole batch appended, got %d", len(s.All()))
	}

	// One resolution per draft, never concurrent
	if resolver.calls != len(tpl.Goals) {
		t.Errorf("Expected %d generator calls, got %d", len(tpl.Goals), resolver.calls)
	}
	if resolver.maxSeen > 1 {
		t.Errorf("Expected sequential image resolution, saw %d in flight", resolver.maxSeen)
	}

	// The failed entry falls back to the placeholder instead of blocking
	if batch[1].ImageURL != PlaceholderImageURL {
		t.Errorf("Expected placeholder for failed generation, got %s", batch[1].ImageURL)
	}
	if batch[0].ImageURL == PlaceholderImageURL {
		t.Error("Expected generated image for successful entry")
	}

	for _, g := range batch {
		if g.ID == 0 || g.CreatedAt.IsZero() {
			t.Errorf("Expected fresh id and timestamp for %q", g.Title)
		}
		if g.Status != models.GoalStatusActive {
			t.Errorf("Expected active status for %q", g.Title)
		}
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mem := kv.NewMemoryStore()

	s1, err := NewGoalStore(ctx, mem, &fakeImageResolver{}, NopNotifier{}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewGoalStore: %v", err)
	}
	g, err := s1.Add(ctx, "Run 5k", "Health", ImageSource{URL: "https://x/run.png"}, AddOptions{Category: models.CategoryHealth, Tags: []string{"fitness"}})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	s1.UpdateProgress(ctx, g.ID, 40)

	// A new store over the same backend sees the persisted state
	s2, err := NewGoalStore(ctx, mem, &fakeImageResolver{}, NopNotifier{}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewGoalStore (reload): %v", err)
	}
	reloaded := s2.Get(g.ID)
	if reloaded == nil {
		t.Fatal("Expected goal to survive reload")
	}
	if reloaded.Progress != 40 || reloaded.Category != models.CategoryHealth {
		t.Errorf("Unexpected reloaded goal: %+v", reloaded)
	}
}

func categoryPtr(c models.LifeAreaCategory) *models.LifeAreaCategory {
	return &c
}
