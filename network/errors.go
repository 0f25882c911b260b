package network

import (
	"errors"
	"fmt"
)

var (
	// ErrStreamClosed indicates the peer closed the stream or a read hit EOF.
	ErrStreamClosed = errors.New("network: stream closed")
	// ErrDecode indicates a frame that could not be parsed.
	ErrDecode = errors.New("network: malformed frame")
	// ErrUnexpectedFrame indicates a frame that is not legal in the current phase.
	ErrUnexpectedFrame = errors.New("network: unexpected frame for phase")
	// ErrIncompleteTransfer indicates the peer disconnected with payloads outstanding.
	ErrIncompleteTransfer = errors.New("network: peer disconnected before transfer completed")
	// ErrCancelled indicates the peer cancelled the transfer.
	ErrCancelled = errors.New("network: transfer cancelled by peer")
	// ErrConnectionRejected indicates the peer answered the connection request with REJECT.
	ErrConnectionRejected = errors.New("network: connection rejected by peer")
	// ErrConnect indicates the transport could not be established.
	ErrConnect = errors.New("network: connect failed")
	// ErrEmptyBundle indicates a send with nothing to send.
	ErrEmptyBundle = errors.New("network: bundle is empty")
)

// Role identifies which side of a connection a state machine plays.
type Role string

const (
	RoleReceiver Role = "receiver"
	RoleSender   Role = "sender"
)

// ConnectionError records the phase in which a connection failed.
type ConnectionError struct {
	Role  Role
	Phase Phase
	Err   error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("network: %s failed in phase %s: %v", e.Role, e.Phase, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

func unexpectedFrame(phase Phase, got fmt.Stringer) error {
	return fmt.Errorf("%w %s: got %s", ErrUnexpectedFrame, phase, got)
}
