package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates the resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownProvider indicates a provider name outside the supported set
	ErrUnknownProvider = errors.New("unknown PMS provider")

	// ErrAuthFailed indicates a provider token endpoint rejected the credentials.
	// This is fatal for the whole sync pass, unlike per-record errors.
	ErrAuthFailed = errors.New("provider authentication failed")

	// ErrRateLimited indicates the bounded 429 retry budget was exhausted
	ErrRateLimited = errors.New("provider rate limit retries exhausted")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTokenExpired indicates the bearer token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates the bearer token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")

	// ErrSignatureInvalid indicates a webhook signature did not verify
	ErrSignatureInvalid = errors.New("webhook signature invalid")

	// ErrConnectionInactive indicates the connection is not in active status
	ErrConnectionInactive = errors.New("connection not active")
)
