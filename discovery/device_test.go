package discovery

import (
	"context"
	"errors"
	"net"
	"testing"
)

type flakyDialer struct {
	failures int
	calls    int
}

func (d *flakyDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	d.calls++
	if d.calls <= d.failures {
		return nil, errors.New("connection refused")
	}
	client, server := net.Pipe()
	go server.Close()
	return client, nil
}

type recordingBluetooth struct {
	address string
}

func (b *recordingBluetooth) DialBluetooth(ctx context.Context, address string) (net.Conn, error) {
	b.address = address
	client, server := net.Pipe()
	go server.Close()
	return client, nil
}

func TestConnectRetriesUntilSuccess(t *testing.T) {
	dialer := &flakyDialer{failures: 3}
	device := Device{Medium: MediumWLAN, Addresses: []string{"127.0.0.1"}, Port: 1, Dialer: dialer}

	conn, err := device.Connect(context.Background())
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	conn.Close()
	if dialer.calls != 4 {
		t.Fatalf("expected 4 dial attempts, got %d", dialer.calls)
	}
}

func TestConnectGivesUpAfterTenAttempts(t *testing.T) {
	dialer := &flakyDialer{failures: 100}
	device := Device{Medium: MediumWLAN, Addresses: []string{"127.0.0.1"}, Port: 1, Dialer: dialer}

	if _, err := device.Connect(context.Background()); !errors.Is(err, ErrConnect) {
		t.Fatalf("expected ErrConnect, got %v", err)
	}
	if dialer.calls != DefaultConnectAttempts {
		t.Fatalf("expected %d attempts, got %d", DefaultConnectAttempts, dialer.calls)
	}
}

func TestConnectDispatchesBluetooth(t *testing.T) {
	if _, err := (Device{Medium: MediumBluetooth}).Connect(context.Background()); !errors.Is(err, ErrMediumUnavailable) {
		t.Fatalf("expected ErrMediumUnavailable, got %v", err)
	}

	bluetooth := &recordingBluetooth{}
	device := Device{Medium: MediumBluetooth, BluetoothAddress: "AA:BB:CC:DD:EE:FF", Bluetooth: bluetooth}
	conn, err := device.Connect(context.Background())
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	conn.Close()
	if bluetooth.address != "AA:BB:CC:DD:EE:FF" {
		t.Fatalf("unexpected bluetooth address %q", bluetooth.address)
	}
}
