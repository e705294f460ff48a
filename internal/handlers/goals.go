package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/lifeos/lifeos-api/internal/kv"
	"github.com/lifeos/lifeos-api/internal/models"
	"github.com/lifeos/lifeos-api/internal/stats"
	"github.com/lifeos/lifeos-api/internal/store"
	"github.com/lifeos/lifeos-api/internal/templates"
	"github.com/lifeos/lifeos-api/internal/validation"
)

// GoalHandler handles vision-board goal requests
type GoalHandler struct {
	goals *store.GoalStore
}

// NewGoalHandler creates a new goal handler
func NewGoalHandler(goals *store.GoalStore) *GoalHandler {
	return &GoalHandler{goals: goals}
}

// RegisterRoutes registers goal routes on the given router.
// The router should already have the /goals prefix.
func (h *GoalHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListGoals).Methods("GET")
	r.HandleFunc("", h.CreateGoal).Methods("POST")
	r.HandleFunc("/stats", h.Stats).Methods("GET")
	r.HandleFunc("/export", h.Export).Methods("GET")
	r.HandleFunc("/import", h.Import).Methods("POST")
	r.HandleFunc("/reorder", h.Reorder).Methods("POST")
	r.HandleFunc("/{id}", h.GetGoal).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateGoal).Methods("PATCH")
	r.HandleFunc("/{id}", h.DeleteGoal).Methods("DELETE")
	r.HandleFunc("/{id}/progress", h.UpdateProgress).Methods("POST")
	r.HandleFunc("/{id}/status", h.SetStatus).Methods("POST")
	r.HandleFunc("/{id}/habits/{habitID}", h.ToggleHabit).Methods("POST")
}

// CreateGoalRequest represents a create goal request. Either image_url or
// image_prompt must be provided.
type CreateGoalRequest struct {
	Title         string  `json:"title" validate:"required,min=1,max=500"`
	Why           string  `json:"why" validate:"required,min=1,max=5000"`
	ImageURL      string  `json:"image_url,omitempty" validate:"omitempty,url"`
	ImagePrompt   string  `json:"image_prompt,omitempty" validate:"max=2000"`
	Category      string  `json:"category,omitempty" validate:"life_area"`
	TargetDate    *string `json:"target_date,omitempty"`
	Tags          string  `json:"tags,omitempty"`
	RelatedHabits []int64 `json:"related_habits,omitempty"`
}

// UpdateGoalRequest represents a partial goal edit
type UpdateGoalRequest struct {
	Title      *string `json:"title,omitempty" validate:"omitempty,min=1,max=500"`
	Why        *string `json:"why,omitempty" validate:"omitempty,min=1,max=5000"`
	Category   *string `json:"category,omitempty"`
	TargetDate *string `json:"target_date,omitempty"`
	Tags       *string `json:"tags,omitempty"`
}

// ListGoals lists goals with optional status, category, and search filters.
// Passing grouped=true returns category buckets instead of a flat list.
func (h *GoalHandler) ListGoals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := store.Filter{
		Status:   q.Get("status"),
		Category: q.Get("category"),
		Search:   q.Get("search"),
	}
	if filter.Status != "" && filter.Status != "all" {
		if err := validation.ValidateGoalStatus(filter.Status); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
	}
	if filter.Category != "" && filter.Category != "all" {
		if err := validation.ValidateLifeArea(filter.Category); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
	}

	if q.Get("grouped") == "true" {
		respondJSON(w, http.StatusOK, h.goals.GroupByCategory(filter))
		return
	}
	respondJSON(w, http.StatusOK, h.goals.FilterGoals(filter))
}

// CreateGoal adds a goal to the vision board
func (h *GoalHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	var req CreateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	req.Title = validation.SanitizeText(req.Title)
	req.Why = validation.SanitizeText(req.Why)
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Validation Error", err.Error())
		return
	}

	var targetDate *time.Time
	if req.TargetDate != nil && *req.TargetDate != "" {
		parsed, err := time.Parse("2006-01-02", *req.TargetDate)
		if err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "target_date must be YYYY-MM-DD")
			return
		}
		targetDate = &parsed
	}

	goal, err := h.goals.Add(r.Context(), req.Title, req.Why,
		store.ImageSource{URL: req.ImageURL, Prompt: req.ImagePrompt},
		store.AddOptions{
			Category:      models.LifeAreaCategory(req.Category),
			RelatedHabits: req.RelatedHabits,
			TargetDate:    targetDate,
			Tags:          models.ParseTags(req.Tags),
		})
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, goal)
}

// GetGoal returns a single goal by id
func (h *GoalHandler) GetGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid goal id")
		return
	}

	goal := h.goals.Get(id)
	if goal == nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Goal not found")
		return
	}
	respondJSON(w, http.StatusOK, goal)
}

// UpdateGoal edits a goal's descriptive fields. Progress and status have
// their own endpoints.
func (h *GoalHandler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid goal id")
		return
	}

	var req UpdateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if req.Title != nil {
		title := validation.SanitizeText(*req.Title)
		req.Title = &title
	}
	if req.Why != nil {
		why := validation.SanitizeText(*req.Why)
		req.Why = &why
	}
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Validation Error", err.Error())
		return
	}

	var category *models.LifeAreaCategory
	if req.Category != nil {
		if err := validation.ValidateLifeArea(*req.Category); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		c := models.LifeAreaCategory(*req.Category)
		category = &c
	}

	var targetDate **time.Time
	if req.TargetDate != nil {
		if *req.TargetDate == "" {
			var cleared *time.Time
			targetDate = &cleared
		} else {
			parsed, err := time.Parse("2006-01-02", *req.TargetDate)
			if err != nil {
				respondJSONError(w, http.StatusBadRequest, "Bad Request", "target_date must be YYYY-MM-DD")
				return
			}
			p := &parsed
			targetDate = &p
		}
	}

	var tags *[]string
	if req.Tags != nil {
		parsed := models.ParseTags(*req.Tags)
		tags = &parsed
	}

	goal := h.goals.Update(r.Context(), id, req.Title, req.Why, category, targetDate, tags)
	if goal == nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Goal not found")
		return
	}
	respondJSON(w, http.StatusOK, goal)
}

// DeleteGoal removes a goal regardless of status
func (h *GoalHandler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid goal id")
		return
	}
	if !h.goals.Delete(r.Context(), id) {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Goal not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// UpdateProgress sets a goal's progress, clamped to 0-100. Reaching 100
// marks the goal completed.
func (h *GoalHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid goal id")
		return
	}

	var req struct {
		Progress int `json:"progress"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}

	goal := h.goals.UpdateProgress(r.Context(), id, req.Progress)
	if goal == nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Goal not found")
		return
	}
	respondJSON(w, http.StatusOK, goal)
}

// SetStatus moves a goal between active, completed, and archived
func (h *GoalHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid goal id")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if err := validation.ValidateGoalStatus(req.Status); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	goal := h.goals.SetStatus(r.Context(), id, models.GoalStatus(req.Status))
	if goal == nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Goal not found")
		return
	}
	respondJSON(w, http.StatusOK, goal)
}

// ToggleHabit links or unlinks a habit from a goal
func (h *GoalHandler) ToggleHabit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid goal id")
		return
	}
	habitID, err := pathInt64(r, "habitID")
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid habit id")
		return
	}

	goal := h.goals.ToggleRelatedHabit(r.Context(), id, habitID)
	if goal == nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Goal not found")
		return
	}
	respondJSON(w, http.StatusOK, goal)
}

// Reorder moves a goal from one display position to another
func (h *GoalHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FromIndex int `json:"from_index"`
		ToIndex   int `json:"to_index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}

	if !h.goals.Reorder(r.Context(), req.FromIndex, req.ToIndex) {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Index out of range")
		return
	}
	respondJSON(w, http.StatusOK, h.goals.All())
}

// StatsResponse aggregates the vision-board statistics block
type StatsResponse struct {
	Counts          stats.Counts  `json:"counts"`
	AverageProgress int           `json:"average_progress"`
	TopGoal         *models.Goal  `json:"top_goal,omitempty"`
	Balance         stats.Balance `json:"balance"`
}

// Stats returns derived statistics for the dashboard header
func (h *GoalHandler) Stats(w http.ResponseWriter, _ *http.Request) {
	goals := h.goals.All()
	respondJSON(w, http.StatusOK, StatsResponse{
		Counts:          stats.CountGoals(goals),
		AverageProgress: stats.AverageProgress(goals),
		TopGoal:         stats.TopProgressedGoal(goals),
		Balance:         stats.CategoryBalance(goals),
	})
}

// Export streams the goal collection as an indented JSON array
func (h *GoalHandler) Export(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="vision-board-goals.json"`)
	if err := kv.ExportGoals(w, h.goals.All()); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Export failed")
	}
}

// Import replaces the goal collection wholesale from a JSON array
func (h *GoalHandler) Import(w http.ResponseWriter, r *http.Request) {
	goals, err := kv.ImportGoals(r.Body)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	h.goals.Replace(r.Context(), goals)
	respondJSON(w, http.StatusOK, map[string]any{"imported": len(goals)})
}

// TemplateHandler serves vision board templates
type TemplateHandler struct {
	goals *store.GoalStore
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(goals *store.GoalStore) *TemplateHandler {
	return &TemplateHandler{goals: goals}
}

// RegisterRoutes registers template routes on the given router.
// The router should already have the /templates prefix.
func (h *TemplateHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListTemplates).Methods("GET")
	r.HandleFunc("/{id}/apply", h.ApplyTemplate).Methods("POST")
}

// ListTemplates returns the built-in template catalog
func (h *TemplateHandler) ListTemplates(w http.ResponseWriter, _ *http.Request) {
	all, err := templates.All()
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to load templates")
		return
	}
	respondJSON(w, http.StatusOK, all)
}

// ApplyTemplate appends a template's goals to the board as one batch
func (h *TemplateHandler) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := templates.ByID(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", err.Error())
		return
	}

	added, err := h.goals.ApplyTemplate(r.Context(), tpl)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to apply template")
		return
	}
	respondJSON(w, http.StatusCreated, added)
}
