package network

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

const (
	// DefaultKeepAliveInterval is how often a KeepAlive frame is sent once the
	// secure channel is up.
	DefaultKeepAliveInterval = 10 * time.Second
	// DefaultKeepAliveTimeout is advertised to the peer in the connection request.
	DefaultKeepAliveTimeout = 30 * time.Second
	// DefaultHandshakeTimeout bounds the cleartext phases of a connection.
	DefaultHandshakeTimeout = 30 * time.Second

	frameHeaderSize = 4
)

// WriteFrame writes payload prefixed with its 4-byte big-endian length.
func WriteFrame(w io.Writer, payload []byte) error {
	frame := make([]byte, frameHeaderSize+len(payload))
	binary.BigEndian.PutUint32(frame, uint32(len(payload)))
	copy(frame[frameHeaderSize:], payload)

	if _, err := w.Write(frame); err != nil {
		if isClosedErr(err) {
			return fmt.Errorf("%w: %v", ErrStreamClosed, err)
		}
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// ReadFrame blocks until one whole frame is available. No upper bound is
// placed on the declared length.
func ReadFrame(r io.Reader) ([]byte, error) {
	header := make([]byte, frameHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		if isClosedErr(err) {
			return nil, ErrStreamClosed
		}
		return nil, fmt.Errorf("read frame length: %w", err)
	}

	length := binary.BigEndian.Uint32(header)
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		if isClosedErr(err) {
			return nil, fmt.Errorf("%w: %d byte frame truncated", ErrStreamClosed, length)
		}
		return nil, fmt.Errorf("read frame payload: %w", err)
	}

	return payload, nil
}

func isClosedErr(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed)
}
