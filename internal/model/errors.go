package model

import "errors"

// Common errors used across the application
var (
	// Account errors
	ErrInvalidInput    = errors.New("invalid input")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrAccountNotFound = errors.New("account not found")

	// Authentication errors. ErrInvalidCredentials deliberately covers both
	// unknown usernames and wrong passwords so callers cannot enumerate
	// accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Session errors
	ErrInvalidSession = errors.New("invalid or expired session")
)
