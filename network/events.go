package network

import (
	"context"
	"sync"

	"nearshare/discovery"
	"nearshare/protocol/sharing"
)

// Event is delivered on Server.Events. Concrete types are PairingRequest,
// IncomingText, IncomingWifiCredentials, FileReceived and TransferFinished.
type Event interface {
	isEvent()
}

type peerInfo struct {
	EndpointID string
	Name       string
	DeviceType discovery.DeviceType
	Address    string
}

// PairingRequest asks the user whether to accept an incoming transfer. The
// connection waits until Respond is called or the server shuts down.
type PairingRequest struct {
	TransferID string
	EndpointID string
	DeviceName string
	DeviceType discovery.DeviceType
	Summary    string
	// AuthPin is the 4-digit code the sending device also shows.
	AuthPin string

	Files []*sharing.FileMetadata
	Texts []*sharing.TextMetadata
	Wifi  []*sharing.WifiCredentialsMetadata

	respond chan<- bool
}

// Respond delivers the user's decision. Only the first call has an effect.
func (r PairingRequest) Respond(accept bool) {
	select {
	case r.respond <- accept:
	default:
	}
}

// IncomingText carries a received text or URL.
type IncomingText struct {
	TransferID string
	DeviceName string
	PayloadID  int64
	Kind       sharing.TextMetadata_Type
	Title      string
	Text       string
}

// IncomingWifiCredentials carries a received wifi network.
type IncomingWifiCredentials struct {
	TransferID   string
	DeviceName   string
	PayloadID    int64
	SSID         string
	SecurityType sharing.WifiCredentialsMetadata_SecurityType
	Password     string
	HiddenSSID   bool
}

// FileReceived reports a file written by the server's PayloadSink.
type FileReceived struct {
	TransferID string
	DeviceName string
	PayloadID  int64
	Name       string
	Path       string
	Size       int64
}

// TransferFinished reports the end of an inbound connection. Err is nil when
// every announced payload arrived or the transfer was rejected locally.
type TransferFinished struct {
	TransferID string
	DeviceName string
	Accepted   bool
	Err        error
}

func (PairingRequest) isEvent()          {}
func (IncomingText) isEvent()            {}
func (IncomingWifiCredentials) isEvent() {}
func (FileReceived) isEvent()            {}
func (TransferFinished) isEvent()        {}

// notifier is the event sink shared by every connection of a server.
type notifier struct {
	mu     sync.RWMutex
	events chan Event
	closed bool
}

func newNotifier(capacity int) *notifier {
	return &notifier{events: make(chan Event, capacity)}
}

// publish delivers ev if there is room and drops it otherwise.
func (n *notifier) publish(ev Event) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		return false
	}
	select {
	case n.events <- ev:
		return true
	default:
		return false
	}
}

// deliver blocks until ev is accepted or ctx is done.
func (n *notifier) deliver(ctx context.Context, ev Event) error {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		return ErrStreamClosed
	}
	select {
	case n.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (n *notifier) close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.closed {
		n.closed = true
		close(n.events)
	}
}
