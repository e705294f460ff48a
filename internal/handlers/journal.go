package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/lifeos/lifeos-api/internal/services/journal"
)

// JournalHandler serves the synced journal snapshot
type JournalHandler struct {
	syncer *journal.Syncer
}

// NewJournalHandler creates a new journal handler
func NewJournalHandler(syncer *journal.Syncer) *JournalHandler {
	return &JournalHandler{syncer: syncer}
}

// RegisterRoutes registers journal routes on the given router.
// The router should already have the /journal prefix.
func (h *JournalHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.Snapshot).Methods("GET")
	r.HandleFunc("/sync", h.ForceSync).Methods("POST")
	r.HandleFunc("/search", h.Search).Methods("GET")
	r.HandleFunc("/mood-stats", h.MoodStats).Methods("GET")
	r.HandleFunc("/week/{start}", h.Week).Methods("GET")
	r.HandleFunc("/date/{date}", h.ByDate).Methods("GET")
}

// Snapshot returns the full synced journal
func (h *JournalHandler) Snapshot(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.syncer.Snapshot())
}

// ForceSync triggers an immediate sync against the journal feed
func (h *JournalHandler) ForceSync(w http.ResponseWriter, r *http.Request) {
	if err := h.syncer.Sync(r.Context()); err != nil {
		respondJSONError(w, http.StatusBadGateway, "Bad Gateway", "Journal sync failed")
		return
	}
	respondJSON(w, http.StatusOK, h.syncer.Snapshot())
}

// ByDate returns the entry for a given YYYY-MM-DD date, if any
func (h *JournalHandler) ByDate(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse("2006-01-02", mux.Vars(r)["date"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "date must be YYYY-MM-DD")
		return
	}

	entry := journal.EntryByDate(h.syncer.Snapshot().Entries, date)
	if entry == nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "No entry for that date")
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

// Week returns the entries falling in the seven days from the given start date
func (h *JournalHandler) Week(w http.ResponseWriter, r *http.Request) {
	start, err := time.Parse("2006-01-02", mux.Vars(r)["start"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "start must be YYYY-MM-DD")
		return
	}
	respondJSON(w, http.StatusOK, journal.WeekEntries(h.syncer.Snapshot().Entries, start))
}

// Search filters entries by text query and optionally by mood
func (h *JournalHandler) Search(w http.ResponseWriter, r *http.Request) {
	entries := h.syncer.Snapshot().Entries

	if moodStr := r.URL.Query().Get("mood"); moodStr != "" {
		mood, err := strconv.Atoi(moodStr)
		if err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "mood must be an integer")
			return
		}
		entries = journal.EntriesByMood(entries, mood)
	}
	if q := r.URL.Query().Get("q"); q != "" {
		entries = journal.Search(entries, q)
	}

	respondJSON(w, http.StatusOK, entries)
}

// MoodStats returns aggregate mood statistics over the synced entries
func (h *JournalHandler) MoodStats(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, journal.ComputeMoodStats(h.syncer.Snapshot().Entries))
}
