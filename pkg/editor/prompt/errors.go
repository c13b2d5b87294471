package prompt

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("prompt: aborted")
	// ErrNotObject is returned for schemas or values that are not objects.
	ErrNotObject = errors.New("prompt: expected an object")
	// ErrRemoteRef is returned for remote $ref targets when remote
	// resolution is disabled or no loader is configured.
	ErrRemoteRef = errors.New("prompt: remote $ref not enabled")
)
