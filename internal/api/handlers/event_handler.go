package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/avern/todo-tracker-be/internal/auth"
	"github.com/avern/todo-tracker-be/internal/services"
	"github.com/rs/zerolog/log"
)

const recentEventLimit = 50

// EventHandler exposes the caller's recent audit events.
type EventHandler struct {
	service services.EventServiceProvider
	timeout time.Duration
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(service services.EventServiceProvider, timeout time.Duration) *EventHandler {
	return &EventHandler{service: service, timeout: timeout}
}

// GetRecent lists the most recent events belonging to the caller.
func (h *EventHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	events, err := h.service.GetEventsForUser(ctx, userID, recentEventLimit)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to fetch events")
		writeError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	writeJSON(w, http.StatusOK, events)
}
