package errors

import "errors"

// Common error types shared across the ledger client
var (
	// Credential errors
	ErrNoRefreshToken = errors.New("no refresh token stored")

	// Session errors
	ErrSessionExpired   = errors.New("session expired")
	ErrNotAuthenticated = errors.New("not authenticated")

	// Response errors
	ErrMalformedResponse = errors.New("malformed response")
)
