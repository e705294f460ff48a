package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/lifeos/lifeos-api/internal/kv"
	"github.com/lifeos/lifeos-api/internal/services/ai"
	"github.com/lifeos/lifeos-api/internal/services/journal"
	"github.com/lifeos/lifeos-api/internal/store"
	"go.uber.org/zap"
)

// testHarness wires the full route surface over an in-memory store
type testHarness struct {
	router  *mux.Router
	session *store.Session
	kvStore kv.Store
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	kvStore := kv.NewMemoryStore()
	logger := zap.NewNop()
	provider := ai.NewFallbackProvider()

	session, err := store.NewSession(context.Background(), kvStore, provider, store.NopNotifier{}, logger)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	syncer := journal.NewSyncer("", 0, logger)

	router := mux.NewRouter()
	NewGoalHandler(session.Goals).RegisterRoutes(router.PathPrefix("/goals").Subrouter())
	NewTemplateHandler(session.Goals).RegisterRoutes(router.PathPrefix("/templates").Subrouter())
	NewHabitHandler(session.Habits).RegisterRoutes(router.PathPrefix("/habits").Subrouter())
	NewTodoHandler(session.Todos).RegisterRoutes(router.PathPrefix("/todos").Subrouter())
	NewWeeklyGoalHandler(session.WeeklyGoals).RegisterRoutes(router.PathPrefix("/weekly-goals").Subrouter())
	NewEventHandler(session.Events).RegisterRoutes(router.PathPrefix("/events").Subrouter())
	NewJournalHandler(syncer).RegisterRoutes(router.PathPrefix("/journal").Subrouter())
	NewAIHandler(provider, session, syncer, kvStore).RegisterRoutes(router.PathPrefix("/ai").Subrouter())
	router.HandleFunc("/healthz", NewHealthChecker(kvStore, nil).HealthCheck).Methods("GET")

	return &testHarness{router: router, session: session, kvStore: kvStore}
}

func (h *testHarness) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

// envelope mirrors the standard response wrapper
type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Error     string          `json:"error"`
	Message   string          `json:"message"`
	Timestamp string          `json:"timestamp"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, dest any) envelope {
	t.Helper()

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body: %s)", err, rec.Body.String())
	}
	if dest != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, dest); err != nil {
			t.Fatalf("decode data: %v (data: %s)", err, string(env.Data))
		}
	}
	return env
}

func TestGoalLifecycle(t *testing.T) {
	t.Parallel()

	h := newTestHarness(t)

	rec := h.do(t, "POST", "/goals", map[string]any{
		"title":     "Run a marathon",
		"why":       "Prove I can finish what I start",
		"image_url": "https://example.com/run.jpg",
		"category":  "health",
		"tags":      "fitness, discipline",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}

	var created struct {
		ID       int64    `json:"id"`
		Progress int      `json:"progress"`
		Status   string   `json:"status"`
		Tags     []string `json:"tags"`
	}
	decodeEnvelope(t, rec, &created)
	if created.Status != "active" || created.Progress != 0 {
		t.Errorf("expected active goal at 0%%, got %s at %d", created.Status, created.Progress)
	}
	if len(created.Tags) != 2 {
		t.Errorf("expected 2 parsed tags, got %v", created.Tags)
	}

	rec = h.do(t, "POST", fmt.Sprintf("/goals/%d/progress", created.ID), map[string]any{"progress": 130})
	if rec.Code != http.StatusOK {
		t.Fatalf("progress: expected 200, got %d", rec.Code)
	}
	var updated struct {
		Progress int    `json:"progress"`
		Status   string `json:"status"`
	}
	decodeEnvelope(t, rec, &updated)
	if updated.Progress != 100 || updated.Status != "completed" {
		t.Errorf("expected clamped completion, got %d %s", updated.Progress, updated.Status)
	}

	rec = h.do(t, "GET", fmt.Sprintf("/goals/%d", created.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}

	rec = h.do(t, "PATCH", fmt.Sprintf("/goals/%d", created.ID), map[string]any{"title": "Run a marathon in 2027"})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch: expected 200, got %d", rec.Code)
	}

	rec = h.do(t, "DELETE", fmt.Sprintf("/goals/%d", created.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}
	rec = h.do(t, "DELETE", fmt.Sprintf("/goals/%d", created.ID), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete: expected 404, got %d", rec.Code)
	}
}

func TestCreateGoal_Validation(t *testing.T) {
	t.Parallel()

	h := newTestHarness(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing title", map[string]any{"why": "because", "image_url": "https://example.com/a.jpg"}},
		{"missing why", map[string]any{"title": "A goal", "image_url": "https://example.com/a.jpg"}},
		{"no image source", map[string]any{"title": "A goal", "why": "because"}},
		{"bad category", map[string]any{"title": "A goal", "why": "because", "image_url": "https://example.com/a.jpg", "category": "chaos"}},
		{"bad target date", map[string]any{"title": "A goal", "why": "because", "image_url": "https://example.com/a.jpg", "target_date": "next tuesday"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := h.do(t, "POST", "/goals", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d (%s)", rec.Code, rec.Body.String())
			}
			env := decodeEnvelope(t, rec, nil)
			if env.Success {
				t.Error("expected success=false on validation failure")
			}
		})
	}
}

func TestListGoals_FiltersAndGrouping(t *testing.T) {
	t.Parallel()

	h := newTestHarness(t)

	seed := []map[string]any{
		{"title": "Meditate daily", "why": "Calm mind", "image_url": "https://example.com/1.jpg", "category": "mindfulness"},
		{"title": "Ship side project", "why": "Learn by doing", "image_url": "https://example.com/2.jpg", "category": "career"},
		{"title": "Morning runs", "why": "Energy all day", "image_url": "https://example.com/3.jpg", "category": "health"},
	}
	for _, body := range seed {
		if rec := h.do(t, "POST", "/goals", body); rec.Code != http.StatusCreated {
			t.Fatalf("seed: expected 201, got %d", rec.Code)
		}
	}

	var listed []json.RawMessage
	rec := h.do(t, "GET", "/goals?category=career", nil)
	decodeEnvelope(t, rec, &listed)
	if len(listed) != 1 {
		t.Errorf("category filter: expected 1 goal, got %d", len(listed))
	}

	rec = h.do(t, "GET", "/goals?search=morning", nil)
	decodeEnvelope(t, rec, &listed)
	if len(listed) != 1 {
		t.Errorf("search filter: expected 1 goal, got %d", len(listed))
	}

	rec = h.do(t, "GET", "/goals?status=bogus", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad status filter: expected 400, got %d", rec.Code)
	}

	var buckets []struct {
		Category string            `json:"category"`
		Goals    []json.RawMessage `json:"goals"`
	}
	rec = h.do(t, "GET", "/goals?grouped=true", nil)
	decodeEnvelope(t, rec, &buckets)
	if len(buckets) != 3 {
		t.Errorf("grouped: expected 3 buckets, got %d", len(buckets))
	}
}

func TestReorderEndpoint(t *testing.T) {
	t.Parallel()

	h := newTestHarness(t)

	for _, title := range []string{"First", "Second", "Third"} {
		body := map[string]any{"title": title, "why": "order matters", "image_url": "https://example.com/g.jpg"}
		if rec := h.do(t, "POST", "/goals", body); rec.Code != http.StatusCreated {
			t.Fatalf("seed: expected 201, got %d", rec.Code)
		}
	}

	var goals []struct {
		Title string `json:"title"`
	}
	rec := h.do(t, "POST", "/goals/reorder", map[string]any{"from_index": 0, "to_index": 2})
	if rec.Code != http.StatusOK {
		t.Fatalf("reorder: expected 200, got %d", rec.Code)
	}
	decodeEnvelope(t, rec, &goals)
	want := []string{"Second", "Third", "First"}
	for i, w := range want {
		if goals[i].Title != w {
			t.Errorf("position %d: expected %q, got %q", i, w, goals[i].Title)
		}
	}

	rec = h.do(t, "POST", "/goals/reorder", map[string]any{"from_index": 0, "to_index": 99})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("out of range: expected 400, got %d", rec.Code)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	t.Parallel()

	h := newTestHarness(t)

	body := map[string]any{"title": "Read 20 books", "why": "Grow", "image_url": "https://example.com/books.jpg"}
	if rec := h.do(t, "POST", "/goals", body); rec.Code != http.StatusCreated {
		t.Fatalf("seed: expected 201, got %d", rec.Code)
	}

	rec := h.do(t, "GET", "/goals/export", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export: expected 200, got %d", rec.Code)
	}
	exported := rec.Body.Bytes()

	other := newTestHarness(t)
	req := httptest.NewRequest("POST", "/goals/import", bytes.NewReader(exported))
	importRec := httptest.NewRecorder()
	other.router.ServeHTTP(importRec, req)
	if importRec.Code != http.StatusOK {
		t.Fatalf("import: expected 200, got %d (%s)", importRec.Code, importRec.Body.String())
	}

	var listed []struct {
		Title string `json:"title"`
	}
	decodeEnvelope(t, other.do(t, "GET", "/goals", nil), &listed)
	if len(listed) != 1 || listed[0].Title != "Read 20 books" {
		t.Errorf("expected imported goal to round-trip, got %+v", listed)
	}
}

func TestTemplateEndpoints(t *testing.T) {
	t.Parallel()

	h := newTestHarness(t)

	var templates []struct {
		ID    string            `json:"id"`
		Goals []json.RawMessage `json:"goals"`
	}
	rec := h.do(t, "GET", "/templates", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	decodeEnvelope(t, rec, &templates)
	if len(templates) == 0 {
		t.Fatal("expected at least one template")
	}

	rec = h.do(t, "POST", "/templates/balanced-life/apply", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("apply: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	var added []json.RawMessage
	decodeEnvelope(t, rec, &added)
	if len(added) != 6 {
		t.Errorf("expected 6 goals from balanced-life, got %d", len(added))
	}

	rec = h.do(t, "POST", "/templates/nope/apply", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown template: expected 404, got %d", rec.Code)
	}
}

func TestChecklistEndpoints(t *testing.T) {
	t.Parallel()

	h := newTestHarness(t)

	var habits []struct {
		ID        int64 `json:"id"`
		Completed bool  `json:"completed"`
	}
	decodeEnvelope(t, h.do(t, "GET", "/habits", nil), &habits)
	if len(habits) != 6 {
		t.Fatalf("expected 6 seeded habits, got %d", len(habits))
	}

	rec := h.do(t, "POST", fmt.Sprintf("/habits/%d/toggle", habits[0].ID), nil)
	var toggled struct {
		Completed bool `json:"completed"`
	}
	decodeEnvelope(t, rec, &toggled)
	if !toggled.Completed {
		t.Error("expected habit completed after toggle")
	}

	rec = h.do(t, "POST", "/todos", map[string]any{"text": "Buy groceries"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create todo: expected 201, got %d", rec.Code)
	}
	var todo struct {
		ID int64 `json:"id"`
	}
	decodeEnvelope(t, rec, &todo)

	if rec = h.do(t, "POST", "/todos", map[string]any{"text": "   "}); rec.Code != http.StatusBadRequest {
		t.Errorf("blank todo: expected 400, got %d", rec.Code)
	}

	if rec = h.do(t, "DELETE", fmt.Sprintf("/todos/%d", todo.ID), nil); rec.Code != http.StatusOK {
		t.Errorf("delete todo: expected 200, got %d", rec.Code)
	}

	rec = h.do(t, "POST", "/weekly-goals", map[string]any{"text": "Finish the report"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create weekly goal: expected 201, got %d", rec.Code)
	}
}

func TestEventEndpoints(t *testing.T) {
	t.Parallel()

	h := newTestHarness(t)

	tests := []struct {
		name     string
		body     map[string]any
		wantCode int
	}{
		{"valid", map[string]any{"time": "09:30", "duration": 1.5, "title": "Deep work", "color": "cyan"}, http.StatusCreated},
		{"outside window", map[string]any{"time": "23:00", "duration": 1, "title": "Late", "color": "cyan"}, http.StatusBadRequest},
		{"zero duration", map[string]any{"time": "10:00", "duration": 0, "title": "Nothing", "color": "cyan"}, http.StatusBadRequest},
		{"bad color", map[string]any{"time": "10:00", "duration": 1, "title": "Meeting", "color": "magenta"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := h.do(t, "POST", "/events", tt.body)
			if rec.Code != tt.wantCode {
				t.Errorf("expected %d, got %d (%s)", tt.wantCode, rec.Code, rec.Body.String())
			}
		})
	}

	var events []struct {
		ID int64 `json:"id"`
	}
	decodeEnvelope(t, h.do(t, "GET", "/events", nil), &events)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if rec := h.do(t, "DELETE", fmt.Sprintf("/events/%d", events[0].ID), nil); rec.Code != http.StatusOK {
		t.Errorf("delete event: expected 200, got %d", rec.Code)
	}
}

func TestAIEndpoints_OfflineContent(t *testing.T) {
	t.Parallel()

	h := newTestHarness(t)

	var brief map[string]string
	rec := h.do(t, "GET", "/ai/daily-brief", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("brief: expected 200, got %d", rec.Code)
	}
	decodeEnvelope(t, rec, &brief)
	if brief["brief"] == "" {
		t.Error("expected non-empty brief")
	}

	rec = h.do(t, "GET", "/ai/weekly-summary", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("weekly summary: expected 200, got %d", rec.Code)
	}

	rec = h.do(t, "POST", "/ai/brain-dump", map[string]any{"text": "call dentist, fix bug, plan trip"})
	if rec.Code != http.StatusOK {
		t.Fatalf("brain dump: expected 200, got %d", rec.Code)
	}
	var organized map[string]string
	decodeEnvelope(t, rec, &organized)
	if organized["organized"] == "" {
		t.Error("expected organized output")
	}

	if rec = h.do(t, "POST", "/ai/brain-dump", map[string]any{"text": ""}); rec.Code != http.StatusBadRequest {
		t.Errorf("empty brain dump: expected 400, got %d", rec.Code)
	}

	var tasks map[string][]string
	rec = h.do(t, "GET", "/ai/suggest-tasks", nil)
	decodeEnvelope(t, rec, &tasks)
	if len(tasks["tasks"]) == 0 || len(tasks["tasks"]) > 3 {
		t.Errorf("expected 1-3 suggested tasks, got %d", len(tasks["tasks"]))
	}

	rec = h.do(t, "GET", "/ai/journal-prompt", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("journal prompt: expected 200, got %d", rec.Code)
	}

	var image map[string]string
	rec = h.do(t, "POST", "/ai/generate-image", map[string]any{"prompt": "sunrise over mountains"})
	decodeEnvelope(t, rec, &image)
	if image["image_url"] != store.PlaceholderImageURL {
		t.Errorf("expected placeholder image, got %q", image["image_url"])
	}

	var notifications []json.RawMessage
	rec = h.do(t, "GET", "/ai/notifications", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("notifications: expected 200, got %d", rec.Code)
	}
	decodeEnvelope(t, rec, &notifications)
	if len(notifications) != 0 {
		t.Errorf("expected empty notification list, got %d", len(notifications))
	}
}

func TestJournalEndpoints_EmptySnapshot(t *testing.T) {
	t.Parallel()

	h := newTestHarness(t)

	rec := h.do(t, "GET", "/journal", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("snapshot: expected 200, got %d", rec.Code)
	}

	if rec = h.do(t, "GET", "/journal/date/2026-01-15", nil); rec.Code != http.StatusNotFound {
		t.Errorf("missing entry: expected 404, got %d", rec.Code)
	}

	if rec = h.do(t, "GET", "/journal/date/january", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad date: expected 400, got %d", rec.Code)
	}

	rec = h.do(t, "GET", "/journal/mood-stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("mood stats: expected 200, got %d", rec.Code)
	}

	if rec = h.do(t, "GET", "/journal/search?mood=high", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad mood: expected 400, got %d", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	h := newTestHarness(t)

	rec := h.do(t, "GET", "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("basic: expected 200, got %d", rec.Code)
	}

	rec = h.do(t, "GET", "/healthz?mode=extended", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("extended: expected 200, got %d", rec.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Checks["store"] != "healthy" {
		t.Errorf("expected healthy store check, got %q", resp.Checks["store"])
	}
}
