package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/avern/todo-tracker-be/internal/auth"
	"github.com/avern/todo-tracker-be/internal/services"
	"github.com/rs/zerolog/log"
)

// UserHandler handles registration and login.
type UserHandler struct {
	service  services.UserServiceProvider
	eventSvc services.EventServiceProvider
	tokens   *auth.TokenManager
	timeout  time.Duration
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider, eventSvc services.EventServiceProvider, tokens *auth.TokenManager, timeout time.Duration) *UserHandler {
	return &UserHandler{service: service, eventSvc: eventSvc, tokens: tokens, timeout: timeout}
}

// CredentialsPayload defines the structure for register and login requests.
type CredentialsPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register handles new user registration.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload CredentialsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user, err := h.service.CreateUser(ctx, payload.Username, payload.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDuplicateUsername):
			writeError(w, http.StatusBadRequest, "Username already exists")
		case errors.Is(err, services.ErrValidation):
			writeError(w, http.StatusBadRequest, "Username and password are required")
		default:
			log.Error().Err(err).Str("username", payload.Username).Msg("Failed to register user")
			writeError(w, http.StatusInternalServerError, "Server Error")
		}
		return
	}

	log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("User registered")
	if err := h.eventSvc.CreateEvent(ctx, "user.register", "info", "Account created", &user.ID); err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to record registration event")
	}

	writeJSON(w, http.StatusOK, user)
}

// Login handles user authentication and token generation. Unknown username
// and wrong password produce the same response.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload CredentialsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user, err := h.service.AuthenticateUser(ctx, payload.Username, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			log.Warn().Str("username", payload.Username).Msg("Failed authentication attempt")
			if evErr := h.eventSvc.CreateEvent(ctx, "user.login.fail", "warn", "Failed login attempt", nil); evErr != nil {
				log.Error().Err(evErr).Msg("Failed to record login event")
			}
			writeError(w, http.StatusBadRequest, "Invalid username or password")
			return
		}
		log.Error().Err(err).Msg("Login failed")
		writeError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	token, err := h.tokens.Generate(user.ID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to sign token")
		writeError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	log.Info().Int64("user_id", user.ID).Msg("Login successful")
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
