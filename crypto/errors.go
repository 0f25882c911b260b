package crypto

import (
	"errors"
	"fmt"

	"nearshare/protocol/securegcm"
)

var (
	// ErrAuthentication indicates a secure message whose HMAC did not verify.
	ErrAuthentication = errors.New("crypto: message authentication failed")
	// ErrInvalidMessage indicates a structurally valid message with unacceptable content.
	ErrInvalidMessage = errors.New("crypto: invalid message")
	// ErrHandshakeConsumed indicates a handshake state reused after keys were derived.
	ErrHandshakeConsumed = errors.New("crypto: handshake state already consumed")
)

// AlertError carries a UKEY2 alert, either received from the peer or raised
// locally while validating a handshake message.
type AlertError struct {
	Type    securegcm.Ukey2Alert_AlertType
	Message string
	// Remote is true when the alert was sent by the peer.
	Remote bool
}

func (e *AlertError) Error() string {
	origin := "local"
	if e.Remote {
		origin = "peer"
	}
	if e.Message == "" {
		return fmt.Sprintf("crypto: ukey2 alert %s (%s)", e.Type, origin)
	}
	return fmt.Sprintf("crypto: ukey2 alert %s (%s): %s", e.Type, origin, e.Message)
}

// Is lets locally raised alerts match ErrInvalidMessage.
func (e *AlertError) Is(target error) bool {
	return target == ErrInvalidMessage && !e.Remote
}

func newAlert(alertType securegcm.Ukey2Alert_AlertType, format string, args ...any) *AlertError {
	return &AlertError{Type: alertType, Message: fmt.Sprintf(format, args...)}
}

// AlertFor returns the alert type to send to the peer for err, and false when
// err does not map to a UKEY2 alert.
func AlertFor(err error) (securegcm.Ukey2Alert_AlertType, bool) {
	var alertErr *AlertError
	if errors.As(err, &alertErr) && !alertErr.Remote {
		return alertErr.Type, true
	}
	return 0, false
}
