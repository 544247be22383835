package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/avern/todo-tracker-be/internal/auth"
	"github.com/avern/todo-tracker-be/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// TodoHandler handles HTTP requests for todo items.
type TodoHandler struct {
	service  services.TodoServiceProvider
	eventSvc services.EventServiceProvider
	timeout  time.Duration
}

// NewTodoHandler creates a new TodoHandler.
func NewTodoHandler(service services.TodoServiceProvider, eventSvc services.EventServiceProvider, timeout time.Duration) *TodoHandler {
	return &TodoHandler{service: service, eventSvc: eventSvc, timeout: timeout}
}

// ImportPayload defines the structure for import requests.
type ImportPayload struct {
	Todos json.RawMessage `json:"todos"`
}

// Create handles adding a new todo for the authenticated user.
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	var in services.TodoInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	todo, err := h.service.CreateTodo(ctx, userID, in)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			writeError(w, http.StatusBadRequest, "Description must be at least 3 characters")
			return
		}
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to create todo")
		writeError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	writeJSON(w, http.StatusOK, todo)
}

// GetAll lists the authenticated user's todos ordered by due date.
func (h *TodoHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	todos, err := h.service.GetTodosForUser(ctx, userID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to fetch todos")
		writeError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	writeJSON(w, http.StatusOK, todos)
}

// Update handles a full-field replace of one of the caller's todos.
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	todoID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		// A malformed id is treated like a missing record.
		writeError(w, http.StatusNotFound, "Todo not found or unauthorized")
		return
	}

	var in services.TodoInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	todo, err := h.service.UpdateTodo(ctx, userID, todoID, in)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTodoNotFound):
			writeError(w, http.StatusNotFound, "Todo not found or unauthorized")
		case errors.Is(err, services.ErrValidation):
			writeError(w, http.StatusBadRequest, "Description must be at least 3 characters")
		default:
			log.Error().Err(err).Int64("user_id", userID).Int64("todo_id", todoID).Msg("Failed to update todo")
			writeError(w, http.StatusInternalServerError, "Server Error")
		}
		return
	}

	writeJSON(w, http.StatusOK, todo)
}

// Delete removes one of the caller's todos.
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	todoID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Todo not found or unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.service.DeleteTodo(ctx, userID, todoID); err != nil {
		if errors.Is(err, services.ErrTodoNotFound) {
			writeError(w, http.StatusNotFound, "Todo not found or unauthorized")
			return
		}
		log.Error().Err(err).Int64("user_id", userID).Int64("todo_id", todoID).Msg("Failed to delete todo")
		writeError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Todo was deleted successfully"})
}

// Export returns every todo owned by the caller.
func (h *TodoHandler) Export(w http.ResponseWriter, r *http.Request) {
	h.GetAll(w, r)
}

// Import inserts a batch of todos under the caller's ownership. Any owner
// field in the payload is ignored. The batch is not atomic: records before
// the first failure stay inserted.
func (h *TodoHandler) Import(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	var payload ImportPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid data format. Expected an array of todos.")
		return
	}

	var records []services.TodoInput
	if err := json.Unmarshal(payload.Todos, &records); err != nil || records == nil {
		writeError(w, http.StatusBadRequest, "Invalid data format. Expected an array of todos.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	imported, err := h.service.ImportTodos(ctx, userID, records)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Int("imported", imported).Msg("Import aborted")
		if errors.Is(err, services.ErrValidation) {
			writeError(w, http.StatusBadRequest, "Invalid todo in import batch")
			return
		}
		writeError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	log.Info().Int64("user_id", userID).Int("imported", imported).Msg("Todos imported")
	msg := fmt.Sprintf("%d todos imported successfully", imported)
	if err := h.eventSvc.CreateEvent(ctx, "todo.import", "info", msg, &userID); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to record import event")
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}
