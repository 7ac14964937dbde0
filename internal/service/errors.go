package service

import "errors"

// Service-level error taxonomy. Controllers translate these with errors.Is:
// invalid request -> 400, not found -> 404, access denied -> 403, anything
// else -> 500. Idempotent replays are not errors; they return the stored
// result with a cached flag.
var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrAccessDenied     = errors.New("access denied")
	ErrAttemptCompleted = errors.New("attempt already completed")
	ErrResultNotFound   = errors.New("result not found")
)
