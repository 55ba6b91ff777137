package registration

import "errors"

// Domain outcomes shared by the event, trip and interview flows. The
// api packages map these to HTTP codes in one place instead of pattern
// matching on message strings.
var (
	ErrNotFound          = errors.New("target not found")
	ErrCapacityFull      = errors.New("capacity exhausted")
	ErrAlreadyRegistered = errors.New("already registered")
	ErrNotRegistered     = errors.New("not registered")
	ErrLocked            = errors.New("registration in progress, try again")
)
