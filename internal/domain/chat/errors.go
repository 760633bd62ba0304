package chat

import "errors"

var (
	// ErrInvalidContext rejects unknown context types and self-threads.
	ErrInvalidContext = errors.New("invalid context")
	// ErrThreadNotActive rejects writes on a terminal thread.
	ErrThreadNotActive = errors.New("thread not active")
	// ErrInvalidMessage rejects empty or oversize bodies.
	ErrInvalidMessage = errors.New("invalid message")
	// ErrForbidden rejects callers acting on what they do not own.
	ErrForbidden = errors.New("forbidden")
	// ErrUnknownAction rejects action names outside the vocabulary.
	ErrUnknownAction = errors.New("unknown action")
	// ErrActionNotApplicable rejects actions invalid for the thread's context type.
	ErrActionNotApplicable = errors.New("action not applicable to context")
	// ErrInvalidTransition rejects illegal lifecycle changes.
	ErrInvalidTransition = errors.New("invalid lifecycle transition")
	// ErrNotFound is returned for unknown thread or message ids.
	ErrNotFound = errors.New("not found")
)
