package network

import (
	"bytes"
	"errors"
	"net"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	payloads := [][]byte{
		{},
		[]byte("x"),
		bytes.Repeat([]byte{0xAB}, 70000),
	}

	var buffer bytes.Buffer
	for _, payload := range payloads {
		if err := WriteFrame(&buffer, payload); err != nil {
			t.Fatalf("WriteFrame failed: %v", err)
		}
	}
	for i, want := range payloads {
		got, err := ReadFrame(&buffer)
		if err != nil {
			t.Fatalf("ReadFrame %d failed: %v", i, err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("payload %d mismatch: got %d bytes, want %d", i, len(got), len(want))
		}
	}
}

func TestWriteFramePrefixesBigEndianLength(t *testing.T) {
	var buffer bytes.Buffer
	if err := WriteFrame(&buffer, make([]byte, 0x0102)); err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}
	if got := buffer.Bytes()[:4]; !bytes.Equal(got, []byte{0, 0, 1, 2}) {
		t.Fatalf("unexpected length prefix %x", got)
	}
}

func TestReadFrameReportsStreamClosed(t *testing.T) {
	if _, err := ReadFrame(bytes.NewReader(nil)); !errors.Is(err, ErrStreamClosed) {
		t.Fatalf("expected ErrStreamClosed on empty stream, got %v", err)
	}

	truncated := []byte{0, 0, 0, 10, 'a', 'b'}
	if _, err := ReadFrame(bytes.NewReader(truncated)); !errors.Is(err, ErrStreamClosed) {
		t.Fatalf("expected ErrStreamClosed on truncated frame, got %v", err)
	}
}

func TestReadFrameAssemblesPartialWrites(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		raw := []byte{0, 0, 0, 5, 'h', 'e', 'l', 'l', 'o'}
		for _, b := range raw {
			_, _ = client.Write([]byte{b})
		}
	}()

	got, err := ReadFrame(server)
	if err != nil {
		t.Fatalf("ReadFrame failed: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("unexpected payload %q", got)
	}
}

func TestWriteFrameOnClosedStream(t *testing.T) {
	client, server := net.Pipe()
	_ = server.Close()
	defer client.Close()

	if err := WriteFrame(client, []byte("late")); !errors.Is(err, ErrStreamClosed) {
		t.Fatalf("expected ErrStreamClosed, got %v", err)
	}
}
