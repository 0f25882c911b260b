package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

const (
	// DefaultConnectAttempts bounds immediate reconnect attempts to one device.
	DefaultConnectAttempts = 10
	// DefaultDialTimeout bounds each individual dial.
	DefaultDialTimeout = 5 * time.Second
)

var (
	// ErrConnect indicates every connect attempt to a device failed.
	ErrConnect = errors.New("discovery: connect failed")
	// ErrMediumUnavailable indicates the device's medium has no dialer.
	ErrMediumUnavailable = errors.New("discovery: medium unavailable")
)

// Medium identifies the transport a device was discovered on.
type Medium int

const (
	MediumWLAN Medium = iota
	MediumBluetooth
)

func (m Medium) String() string {
	switch m {
	case MediumWLAN:
		return "wlan"
	case MediumBluetooth:
		return "bluetooth"
	default:
		return "unknown"
	}
}

// ContextDialer opens WLAN streams. *net.Dialer satisfies it.
type ContextDialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// BluetoothDialer opens RFCOMM streams to a Bluetooth address.
type BluetoothDialer interface {
	DialBluetooth(ctx context.Context, address string) (net.Conn, error)
}

// Device is a discovered receiver that can be connected to.
type Device struct {
	EndpointID string
	Info       EndpointInfo
	Medium     Medium

	// WLAN reachability.
	HostName  string
	Addresses []string
	Port      int

	// Bluetooth reachability.
	BluetoothAddress string

	LastSeen time.Time

	Dialer    ContextDialer
	Bluetooth BluetoothDialer
	// Attempts overrides DefaultConnectAttempts when > 0.
	Attempts int
}

// Name returns the advertised display name, or the endpoint id when unnamed.
func (d Device) Name() string {
	if d.Info.Name != "" {
		return d.Info.Name
	}
	return d.EndpointID
}

// Connect opens a duplex stream to the device over its medium, retrying
// immediately until the attempt budget is spent.
func (d Device) Connect(ctx context.Context) (net.Conn, error) {
	var dial func(context.Context) (net.Conn, error)
	switch d.Medium {
	case MediumWLAN:
		dial = d.dialWLAN
	case MediumBluetooth:
		if d.Bluetooth == nil {
			return nil, fmt.Errorf("%w: %s", ErrMediumUnavailable, d.Medium)
		}
		dial = func(ctx context.Context) (net.Conn, error) {
			return d.Bluetooth.DialBluetooth(ctx, d.BluetoothAddress)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrMediumUnavailable, d.Medium)
	}

	attempts := d.Attempts
	if attempts <= 0 {
		attempts = DefaultConnectAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		conn, err := dial(ctx)
		if err == nil {
			return conn, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %s after %d attempts: %v", ErrConnect, d.Name(), attempts, lastErr)
}

func (d Device) dialWLAN(ctx context.Context) (net.Conn, error) {
	if len(d.Addresses) == 0 || d.Port <= 0 {
		return nil, errors.New("device has no reachable address")
	}
	dialer := d.Dialer
	if dialer == nil {
		dialer = &net.Dialer{Timeout: DefaultDialTimeout}
	}

	var lastErr error
	for _, address := range d.Addresses {
		conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(address, strconv.Itoa(d.Port)))
		if err == nil {
			return conn, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// Discoverer yields reachable receivers.
type Discoverer interface {
	Start() error
	Stop()
	Events() <-chan Event
	ListDevices() []Device
}
