package network

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"nearshare/discovery"
)

const (
	defaultEventBuffer     = 32
	defaultDisconnectGrace = 2 * time.Second
)

// ServerOptions configures the receiving side.
type ServerOptions struct {
	EndpointID string
	DeviceName string
	DeviceType discovery.DeviceType

	// Sink stores received files. Required.
	Sink PayloadSink
	// Recorder persists transfer history when set.
	Recorder Recorder
	// AutoAccept skips the PairingRequest prompt.
	AutoAccept bool
	// MaxPayloadSize bounds the bytes buffered for unfinished payloads on
	// one connection. Defaults to DefaultMaxPayloadSize.
	MaxPayloadSize int64

	KeepAliveInterval time.Duration
	HandshakeTimeout  time.Duration
	DisconnectGrace   time.Duration
	EventBuffer       int

	Logger *zap.Logger
}

func (o ServerOptions) withDefaults() ServerOptions {
	out := o
	if out.KeepAliveInterval <= 0 {
		out.KeepAliveInterval = DefaultKeepAliveInterval
	}
	if out.HandshakeTimeout <= 0 {
		out.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if out.DisconnectGrace <= 0 {
		out.DisconnectGrace = defaultDisconnectGrace
	}
	if out.EventBuffer <= 0 {
		out.EventBuffer = defaultEventBuffer
	}
	if out.MaxPayloadSize <= 0 {
		out.MaxPayloadSize = DefaultMaxPayloadSize
	}
	if out.Logger == nil {
		out.Logger = zap.NewNop()
	}
	return out
}

func (o ServerOptions) validate() error {
	if o.DeviceName == "" {
		return errors.New("local device name is required")
	}
	if o.Sink == nil {
		return errors.New("payload sink is required")
	}
	return nil
}

// SendStatus is the progress of an outbound transfer.
type SendStatus int

const (
	SendStatusAwaitingResponse SendStatus = iota + 1
	SendStatusAccepted
	SendStatusRejected
	SendStatusFinished
	SendStatusFailed
)

func (s SendStatus) String() string {
	switch s {
	case SendStatusAwaitingResponse:
		return "awaiting_response"
	case SendStatusAccepted:
		return "accepted"
	case SendStatusRejected:
		return "rejected"
	case SendStatusFinished:
		return "finished"
	case SendStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SenderOptions configures one outbound transfer.
type SenderOptions struct {
	EndpointID string
	DeviceName string
	DeviceType discovery.DeviceType

	// ChunkSize > 0 streams files in chunks of that many bytes. Zero sends
	// each file as a single chunk.
	ChunkSize int

	// OnStatus is called from the sending goroutine on every status change.
	OnStatus func(SendStatus)
	// OnAuthPin receives the 4-digit code once keys are agreed.
	OnAuthPin func(string)
	Recorder  Recorder

	KeepAliveInterval time.Duration
	HandshakeTimeout  time.Duration
	DisconnectGrace   time.Duration

	Logger *zap.Logger
}

func (o SenderOptions) withDefaults() SenderOptions {
	out := o
	if out.EndpointID == "" {
		out.EndpointID = discovery.NewEndpointID()
	}
	if out.KeepAliveInterval <= 0 {
		out.KeepAliveInterval = DefaultKeepAliveInterval
	}
	if out.HandshakeTimeout <= 0 {
		out.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if out.DisconnectGrace <= 0 {
		out.DisconnectGrace = defaultDisconnectGrace
	}
	if out.ChunkSize < 0 {
		out.ChunkSize = 0
	}
	if out.Logger == nil {
		out.Logger = zap.NewNop()
	}
	return out
}
