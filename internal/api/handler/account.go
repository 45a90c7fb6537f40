package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/keyfold/keyfold/internal/account"
	"github.com/keyfold/keyfold/internal/api/middleware"
	"github.com/keyfold/keyfold/internal/api/request"
	"github.com/keyfold/keyfold/internal/api/response"
	"github.com/keyfold/keyfold/internal/mailer"
	"github.com/keyfold/keyfold/internal/session"
)

// Delivery modes reported in reset-password responses
const (
	deliveryEmail    = "email"
	deliveryResponse = "response"
)

// AccountHandler handles account-related endpoints
type AccountHandler struct {
	accounts *account.Service
	sessions *session.Manager
	mailer   mailer.Mailer
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accounts *account.Service, sessions *session.Manager, m mailer.Mailer) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		sessions: sessions,
		mailer:   m,
	}
}

// Signup handles POST /api/v1/signup
func (h *AccountHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req request.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	id, err := h.accounts.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.AccountResponse{
		ID:       id,
		Username: req.Username,
	})
}

// Profile handles GET /api/v1/profile
func (h *AccountHandler) Profile(w http.ResponseWriter, r *http.Request) {
	sess := middleware.MustGetSession(r.Context())

	response.JSON(w, http.StatusOK, response.ProfileResponse{
		Username:  sess.Username,
		ExpiresAt: sess.ExpiresAt,
	})
}

// UpdateProfile handles PUT /api/v1/profile. On success the old session is
// destroyed and a fresh one bound to the new username is issued.
func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	sess := middleware.MustGetSession(r.Context())
	identity := middleware.GetIdentity(r.Context())

	var req request.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if err := h.accounts.UpdateCredentials(r.Context(), identity, req.NewUsername, req.NewPassword); err != nil {
		WriteError(w, err)
		return
	}

	_ = h.sessions.Destroy(r.Context(), sess.Token)

	newSess, err := h.sessions.Create(r.Context(), req.NewUsername)
	if err != nil {
		WriteError(w, err)
		return
	}

	setSessionCookie(w, newSess)
	response.JSON(w, http.StatusOK, response.AuthResponseFromSession(newSess))
}

// ResetPassword handles POST /api/v1/reset-password. When a mailer is
// configured and the username is an email address, the new password is
// delivered out-of-band and omitted from the response.
func (h *AccountHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req request.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	plaintext, err := h.accounts.ResetPassword(r.Context(), req.Username)
	if err != nil {
		WriteError(w, err)
		return
	}

	if h.mailer != nil && strings.Contains(req.Username, "@") {
		if err := h.mailer.SendPasswordReset(r.Context(), req.Username, plaintext); err != nil {
			WriteError(w, err)
			return
		}
		response.JSON(w, http.StatusOK, response.ResetPasswordResponse{
			Username: req.Username,
			Delivery: deliveryEmail,
		})
		return
	}

	response.JSON(w, http.StatusOK, response.ResetPasswordResponse{
		Username:    req.Username,
		NewPassword: plaintext,
		Delivery:    deliveryResponse,
	})
}
