package handler

import (
	"encoding/json"
	"net/http"

	"github.com/keyfold/keyfold/internal/account"
	"github.com/keyfold/keyfold/internal/api/middleware"
	"github.com/keyfold/keyfold/internal/api/request"
	"github.com/keyfold/keyfold/internal/api/response"
	"github.com/keyfold/keyfold/internal/session"
)

// SessionHandler handles login and logout
type SessionHandler struct {
	accounts *account.Service
	sessions *session.Manager
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(accounts *account.Service, sessions *session.Manager) *SessionHandler {
	return &SessionHandler{
		accounts: accounts,
		sessions: sessions,
	}
}

// Login handles POST /api/v1/login
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	identity, err := h.accounts.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	sess, err := h.sessions.Create(r.Context(), identity.Username)
	if err != nil {
		WriteError(w, err)
		return
	}

	setSessionCookie(w, sess)
	response.JSON(w, http.StatusOK, response.AuthResponseFromSession(sess))
}

// Logout handles POST /api/v1/logout. Logging out with an unknown or
// expired token is not an error.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.ExtractToken(r); token != "" {
		if err := h.sessions.Destroy(r.Context(), token); err != nil {
			WriteError(w, err)
			return
		}
	}

	clearSessionCookie(w)
	response.NoContent(w)
}
