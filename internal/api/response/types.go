package response

import (
	"time"

	"github.com/keyfold/keyfold/internal/session"
)

// AccountResponse is returned after a successful signup
type AccountResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// AuthResponse is returned after login or a credential update
type AuthResponse struct {
	Username     string    `json:"username"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthResponseFromSession builds an AuthResponse from a session
func AuthResponseFromSession(sess *session.Session) AuthResponse {
	return AuthResponse{
		Username:     sess.Username,
		SessionToken: sess.Token,
		ExpiresAt:    sess.ExpiresAt,
	}
}

// ProfileResponse is returned for the authenticated profile view
type ProfileResponse struct {
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"session_expires_at"`
}

// ResetPasswordResponse is returned after a password reset. NewPassword is
// present exactly once, and only when no out-of-band delivery happened.
type ResetPasswordResponse struct {
	Username    string `json:"username"`
	NewPassword string `json:"new_password,omitempty"`
	Delivery    string `json:"delivery"`
}
