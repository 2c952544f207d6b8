package client

import "errors"

var (
	ErrUnavailable           = errors.New("server unavailable")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrNotFound              = errors.New("not found")
	ErrValidation            = errors.New("rejected by server")
	ErrAlreadyExists         = errors.New("already exists")
	ErrNotConfigured         = errors.New("not available on this server")
	ErrLocalDataNotAvailable = errors.New("local data unavailable")
)

// IsRejection reports whether err is a definite answer from the server,
// as opposed to a failure to reach it.
func IsRejection(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrAlreadyExists) ||
		errors.Is(err, ErrNotConfigured)
}
