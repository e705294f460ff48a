package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/lifeos/lifeos-api/internal/store"
	"github.com/lifeos/lifeos-api/internal/validation"
)

// HabitHandler handles daily habit checklist requests
type HabitHandler struct {
	habits *store.HabitStore
}

// NewHabitHandler creates a new habit handler
func NewHabitHandler(habits *store.HabitStore) *HabitHandler {
	return &HabitHandler{habits: habits}
}

// RegisterRoutes registers habit routes on the given router.
// The router should already have the /habits prefix.
func (h *HabitHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListHabits).Methods("GET")
	r.HandleFunc("", h.CreateHabit).Methods("POST")
	r.HandleFunc("/{id}/toggle", h.ToggleHabit).Methods("POST")
}

// ListHabits returns every habit with its completion state
func (h *HabitHandler) ListHabits(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.habits.All())
}

// CreateHabit adds a habit to the daily checklist
func (h *HabitHandler) CreateHabit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Icon string `json:"icon"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}

	habit, err := h.habits.Add(r.Context(), validation.SanitizeText(req.Name), req.Icon)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, habit)
}

// ToggleHabit flips a habit's completion state
func (h *HabitHandler) ToggleHabit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid habit id")
		return
	}

	habit := h.habits.Toggle(r.Context(), id)
	if habit == nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Habit not found")
		return
	}
	respondJSON(w, http.StatusOK, habit)
}

// TodoHandler handles daily todo list requests
type TodoHandler struct {
	todos *store.TodoStore
}

// NewTodoHandler creates a new todo handler
func NewTodoHandler(todos *store.TodoStore) *TodoHandler {
	return &TodoHandler{todos: todos}
}

// RegisterRoutes registers todo routes on the given router.
// The router should already have the /todos prefix.
func (h *TodoHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListTodos).Methods("GET")
	r.HandleFunc("", h.CreateTodo).Methods("POST")
	r.HandleFunc("/{id}", h.DeleteTodo).Methods("DELETE")
	r.HandleFunc("/{id}/toggle", h.ToggleTodo).Methods("POST")
}

// ListTodos returns today's todo list
func (h *TodoHandler) ListTodos(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.todos.All())
}

// CreateTodo adds a task to today's list
func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}

	todo, err := h.todos.Add(r.Context(), validation.SanitizeText(req.Text))
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, todo)
}

// ToggleTodo flips a task's completion state
func (h *TodoHandler) ToggleTodo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid todo id")
		return
	}

	todo := h.todos.Toggle(r.Context(), id)
	if todo == nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Todo not found")
		return
	}
	respondJSON(w, http.StatusOK, todo)
}

// DeleteTodo removes a task from today's list
func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid todo id")
		return
	}

	if !h.todos.Delete(r.Context(), id) {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Todo not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// WeeklyGoalHandler handles weekly goal checklist requests
type WeeklyGoalHandler struct {
	weekly *store.WeeklyGoalStore
}

// NewWeeklyGoalHandler creates a new weekly goal handler
func NewWeeklyGoalHandler(weekly *store.WeeklyGoalStore) *WeeklyGoalHandler {
	return &WeeklyGoalHandler{weekly: weekly}
}

// RegisterRoutes registers weekly goal routes on the given router.
// The router should already have the /weekly-goals prefix.
func (h *WeeklyGoalHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListWeeklyGoals).Methods("GET")
	r.HandleFunc("", h.CreateWeeklyGoal).Methods("POST")
	r.HandleFunc("/{id}/toggle", h.ToggleWeeklyGoal).Methods("POST")
}

// ListWeeklyGoals returns this week's checklist
func (h *WeeklyGoalHandler) ListWeeklyGoals(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.weekly.All())
}

// CreateWeeklyGoal adds an item to this week's checklist
func (h *WeeklyGoalHandler) CreateWeeklyGoal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}

	goal, err := h.weekly.Add(r.Context(), validation.SanitizeText(req.Text))
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, goal)
}

// ToggleWeeklyGoal flips a weekly goal's completion state
func (h *WeeklyGoalHandler) ToggleWeeklyGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid weekly goal id")
		return
	}

	goal := h.weekly.Toggle(r.Context(), id)
	if goal == nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Weekly goal not found")
		return
	}
	respondJSON(w, http.StatusOK, goal)
}
