package client

import (
	"errors"
	"fmt"
)

var (
	// ErrChannelClosed is returned for every pending and future call once the
	// channel to the worker is gone.
	ErrChannelClosed = errors.New("worker channel closed")
	// ErrKindMismatch is returned when the response to a command has the wrong kind.
	ErrKindMismatch = errors.New("response kind mismatch")
	// ErrProtocol is returned when the worker breaks the startup contract or
	// sends a response without its payload.
	ErrProtocol = errors.New("protocol violation")
)

// RemoteError is an error response sent by the worker for a command it could
// not interpret.
type RemoteError struct {
	ID      uint64
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("worker rejected command %d: %s", e.ID, e.Message)
}
