package sessions

import "errors"

var (
	ErrEmptyUsername  = errors.New("username is required")
	ErrInvalidMaxAge  = errors.New("session max age must be positive")
	ErrTokenExhausted = errors.New("could not generate an unused session token")
)
