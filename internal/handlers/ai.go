package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/lifeos/lifeos-api/internal/kv"
	"github.com/lifeos/lifeos-api/internal/models"
	"github.com/lifeos/lifeos-api/internal/services/ai"
	"github.com/lifeos/lifeos-api/internal/services/journal"
	"github.com/lifeos/lifeos-api/internal/store"
	"github.com/lifeos/lifeos-api/internal/validation"
)

// MaxBrainDumpLength caps the free-form text accepted for analysis
const MaxBrainDumpLength = 20000

// AIHandler serves generated dashboard content. Every operation degrades
// to deterministic offline content when the upstream provider fails, so
// these endpoints never surface provider errors to the client.
type AIHandler struct {
	provider ai.Provider
	session  *store.Session
	syncer   *journal.Syncer
	kvStore  kv.Store
}

// NewAIHandler creates a new AI handler
func NewAIHandler(provider ai.Provider, session *store.Session, syncer *journal.Syncer, kvStore kv.Store) *AIHandler {
	return &AIHandler{provider: provider, session: session, syncer: syncer, kvStore: kvStore}
}

// RegisterRoutes registers AI routes on the given router.
// The router should already have the /ai prefix.
func (h *AIHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/daily-brief", h.DailyBrief).Methods("GET")
	r.HandleFunc("/weekly-summary", h.WeeklySummary).Methods("GET")
	r.HandleFunc("/brain-dump", h.BrainDump).Methods("POST")
	r.HandleFunc("/suggest-tasks", h.SuggestTasks).Methods("GET")
	r.HandleFunc("/journal-prompt", h.JournalPrompt).Methods("GET")
	r.HandleFunc("/generate-image", h.GenerateImage).Methods("POST")
	r.HandleFunc("/notifications", h.Notifications).Methods("GET")
}

// DailyBrief returns the morning briefing
func (h *AIHandler) DailyBrief(w http.ResponseWriter, r *http.Request) {
	brief, err := h.provider.DailyBrief(r.Context())
	if err != nil {
		respondJSONError(w, http.StatusBadGateway, "Bad Gateway", "Brief generation failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"brief": brief})
}

// WeeklySummary generates a motivational summary from today's checklists
// and the most recent journal entry
func (h *AIHandler) WeeklySummary(w http.ResponseWriter, r *http.Request) {
	snapshot := ai.WeeklySnapshot{
		Habits:       h.session.Habits.All(),
		Todos:        h.session.Todos.All(),
		JournalEntry: h.todayJournalText(),
	}

	summary, err := h.provider.WeeklySummary(r.Context(), snapshot)
	if err != nil {
		respondJSONError(w, http.StatusBadGateway, "Bad Gateway", "Summary generation failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

// BrainDump organizes free-form notes into a structured outline
func (h *AIHandler) BrainDump(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	req.Text = validation.SanitizeText(req.Text)
	if req.Text == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Text is required")
		return
	}
	if len(req.Text) > MaxBrainDumpLength {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Text is too long")
		return
	}

	organized, err := h.provider.AnalyzeBrainDump(r.Context(), req.Text)
	if err != nil {
		respondJSONError(w, http.StatusBadGateway, "Bad Gateway", "Analysis failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"organized": organized})
}

// SuggestTasks proposes up to three tasks from this week's goals and
// today's planner
func (h *AIHandler) SuggestTasks(w http.ResponseWriter, r *http.Request) {
	planning := ai.PlanningContext{
		WeeklyGoals: h.session.WeeklyGoals.All(),
		Events:      h.session.Events.All(),
	}

	tasks, err := h.provider.SuggestTasks(r.Context(), planning)
	if err != nil {
		respondJSONError(w, http.StatusBadGateway, "Bad Gateway", "Suggestion failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

// JournalPrompt returns a reflection question seeded from habits and
// core values
func (h *AIHandler) JournalPrompt(w http.ResponseWriter, r *http.Request) {
	reflection := ai.ReflectionContext{
		Habits:     h.session.Habits.All(),
		CoreValues: store.CoreValues,
	}

	prompt, err := h.provider.JournalPrompt(r.Context(), reflection)
	if err != nil {
		respondJSONError(w, http.StatusBadGateway, "Bad Gateway", "Prompt generation failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"prompt": prompt})
}

// GenerateImage produces a vision-board image from a text prompt
func (h *AIHandler) GenerateImage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	req.Prompt = validation.SanitizeText(req.Prompt)
	if req.Prompt == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Prompt is required")
		return
	}

	url, err := h.provider.GenerateImage(r.Context(), req.Prompt)
	if err != nil {
		respondJSONError(w, http.StatusBadGateway, "Bad Gateway", "Image generation failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"image_url": url})
}

// Notifications lists goal celebration messages produced by the worker
func (h *AIHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	var notifications []models.Notification
	if err := kv.LoadOrDefault(r.Context(), h.kvStore, kv.KeyNotifications, &notifications); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to load notifications")
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	respondJSON(w, http.StatusOK, notifications)
}

// todayJournalText flattens today's journal entry into plain text for
// the summary prompt. Returns empty when no entry exists for today.
func (h *AIHandler) todayJournalText() string {
	entry := journal.EntryByDate(h.syncer.Snapshot().Entries, time.Now())
	if entry == nil {
		return ""
	}

	parts := []string{entry.Title}
	for _, block := range entry.Content {
		if block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n")
}
