package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/lifeos/lifeos-api/internal/models"
	"github.com/lifeos/lifeos-api/internal/store"
	"github.com/lifeos/lifeos-api/internal/validation"
)

// EventHandler handles daily planner requests
type EventHandler struct {
	events *store.EventStore
}

// NewEventHandler creates a new event handler
func NewEventHandler(events *store.EventStore) *EventHandler {
	return &EventHandler{events: events}
}

// RegisterRoutes registers event routes on the given router.
// The router should already have the /events prefix.
func (h *EventHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListEvents).Methods("GET")
	r.HandleFunc("", h.CreateEvent).Methods("POST")
	r.HandleFunc("/{id}", h.DeleteEvent).Methods("DELETE")
}

// CreateEventRequest represents a create event request
type CreateEventRequest struct {
	Time     string  `json:"time" validate:"required,hhmm"`
	Duration float64 `json:"duration" validate:"required,gt=0"`
	Title    string  `json:"title" validate:"required,min=1,max=200"`
	Color    string  `json:"color" validate:"required,event_color"`
}

// ListEvents returns the planner's scheduled blocks
func (h *EventHandler) ListEvents(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.events.All())
}

// CreateEvent schedules a block on the daily planner
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	req.Title = validation.SanitizeText(req.Title)
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Validation Error", err.Error())
		return
	}

	event, err := h.events.Add(r.Context(), req.Time, req.Duration, req.Title, models.EventColor(req.Color))
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, event)
}

// DeleteEvent removes a block from the planner
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid event id")
		return
	}

	if !h.events.Delete(r.Context(), id) {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Event not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"deleted": id})
}
