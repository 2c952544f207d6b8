// Package common defines shared constants and sentinel errors used across
// client and server layers of GophTodo. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors. A task owned by someone else is reported
	// as ErrorNotFound as well.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal      = errors.New("internal error")
	ErrorUnauthorized  = errors.New("unauthorized")
	ErrorStoreFailure  = errors.New("store failure")
	ErrorNotConfigured = errors.New("not configured")

	// Validation errors (empty text, unknown priority, malformed dates).
	ErrorValidation = errors.New("validation error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
