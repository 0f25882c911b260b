package network

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"nearshare/crypto"
	"nearshare/protocol/connections"
)

type outboundFrame struct {
	payload []byte
	session *crypto.SecureSession
	written chan error
}

// frameChannel splits a duplex stream into a reader goroutine and a writer
// goroutine. Frames queued after EnableEncryption are encrypted by the writer,
// so sequence numbers follow wire order.
type frameChannel struct {
	stream io.ReadWriteCloser
	logger *zap.Logger

	inbound  chan []byte
	outbound chan outboundFrame

	sessionMu sync.RWMutex
	session   *crypto.SecureSession

	errMu   sync.Mutex
	readErr error

	closeOnce sync.Once
	closed    chan struct{}
	wg        sync.WaitGroup
}

func newFrameChannel(stream io.ReadWriteCloser, logger *zap.Logger) *frameChannel {
	c := &frameChannel{
		stream:   stream,
		logger:   logger,
		inbound:  make(chan []byte, 64),
		outbound: make(chan outboundFrame),
		closed:   make(chan struct{}),
	}
	c.wg.Add(2)
	go c.readLoop()
	go c.writeLoop()
	return c
}

func (c *frameChannel) readLoop() {
	defer c.wg.Done()
	defer close(c.inbound)

	for {
		payload, err := ReadFrame(c.stream)
		if err != nil {
			c.errMu.Lock()
			c.readErr = err
			c.errMu.Unlock()
			return
		}
		select {
		case c.inbound <- payload:
		case <-c.closed:
			return
		}
	}
}

func (c *frameChannel) writeLoop() {
	defer c.wg.Done()

	for {
		select {
		case <-c.closed:
			return
		case frame := <-c.outbound:
			frame.written <- c.write(frame)
		}
	}
}

func (c *frameChannel) write(frame outboundFrame) error {
	payload := frame.payload
	if frame.session != nil {
		sealed, err := frame.session.Encrypt(payload)
		if err != nil {
			return err
		}
		payload = sealed
	}
	return WriteFrame(c.stream, payload)
}

// EnableEncryption routes every later Send and Receive through session.
func (c *frameChannel) EnableEncryption(session *crypto.SecureSession) {
	c.sessionMu.Lock()
	c.session = session
	c.sessionMu.Unlock()
}

func (c *frameChannel) currentSession() *crypto.SecureSession {
	c.sessionMu.RLock()
	defer c.sessionMu.RUnlock()
	return c.session
}

// Send queues payload and waits until it has been written.
func (c *frameChannel) Send(ctx context.Context, payload []byte) error {
	frame := outboundFrame{
		payload: payload,
		session: c.currentSession(),
		written: make(chan error, 1),
	}
	select {
	case c.outbound <- frame:
	case <-c.closed:
		return ErrStreamClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-frame.written:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive returns the next inbound frame, decrypted once encryption is on.
func (c *frameChannel) Receive(ctx context.Context) ([]byte, error) {
	var payload []byte
	select {
	case raw, ok := <-c.inbound:
		if !ok {
			return nil, c.readError()
		}
		payload = raw
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if session := c.currentSession(); session != nil {
		return session.Decrypt(payload)
	}
	return payload, nil
}

func (c *frameChannel) readError() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	if c.readErr == nil {
		return ErrStreamClosed
	}
	return c.readErr
}

func (c *frameChannel) SendOffline(ctx context.Context, frame *connections.V1Frame) error {
	raw, err := marshalOffline(frame)
	if err != nil {
		return err
	}
	if err := c.Send(ctx, raw); err != nil {
		return fmt.Errorf("send %s: %w", frame.GetType(), err)
	}
	return nil
}

func (c *frameChannel) ReceiveOffline(ctx context.Context) (*connections.V1Frame, error) {
	raw, err := c.Receive(ctx)
	if err != nil {
		return nil, err
	}
	return unmarshalOffline(raw)
}

// keepAlive sends a KeepAlive frame every interval until ctx is done.
func (c *frameChannel) keepAlive(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := c.SendOffline(ctx, keepAliveFrame()); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("keep-alive: %w", err)
			}
			c.logger.Debug("keep-alive sent")
		}
	}
}

// Close closes the stream and waits for both goroutines to exit.
func (c *frameChannel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.stream.Close()
		c.wg.Wait()
	})
	return err
}
