package arena

import "errors"

var (
	ErrNotFound         = errors.New("pet not found")
	ErrAlreadyInSession = errors.New("connection is already in a combat")
	ErrInvalidJoin      = errors.New("invalid combat request")
	ErrNoActiveSession  = errors.New("no active combat for this connection")
	ErrSessionFault     = errors.New("combat stopped after an internal error")
	ErrShuttingDown     = errors.New("server is shutting down")
)
