package request

// SignupRequest is the body for POST /api/v1/signup
type SignupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest is the body for POST /api/v1/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateProfileRequest is the body for PUT /api/v1/profile
type UpdateProfileRequest struct {
	NewUsername string `json:"new_username"`
	NewPassword string `json:"new_password"`
}

// ResetPasswordRequest is the body for POST /api/v1/reset-password
type ResetPasswordRequest struct {
	Username string `json:"username"`
}
