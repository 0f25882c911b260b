package network

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"
)

// Server accepts inbound connections and runs the receiver state machine on
// each of them. Connections are independent: one failing never affects the
// others.
type Server struct {
	listener net.Listener
	options  ServerOptions
	logger   *zap.Logger

	notify *notifier
	errs   chan error

	ctx    context.Context
	cancel context.CancelFunc

	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Listen starts a TCP listener and accept loop.
func Listen(address string, options ServerOptions) (*Server, error) {
	opts := options.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	if address == "" {
		address = ":0"
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("listen on %q: %w", address, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	server := &Server{
		listener: listener,
		options:  opts,
		logger:   opts.Logger,
		notify:   newNotifier(opts.EventBuffer),
		errs:     make(chan error, 16),
		ctx:      ctx,
		cancel:   cancel,
	}

	server.wg.Add(1)
	go server.acceptLoop()
	return server, nil
}

// Addr returns the listening address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Events returns pairing requests and received content.
func (s *Server) Events() <-chan Event {
	return s.notify.events
}

// Errors returns failed connections, each a *ConnectionError when the state
// machine had started.
func (s *Server) Errors() <-chan error {
	return s.errs
}

// Close stops accepting, cancels every open connection and waits for them.
func (s *Server) Close() error {
	var closeErr error
	s.closeOnce.Do(func() {
		s.cancel()
		closeErr = s.listener.Close()
		s.wg.Wait()
		s.notify.close()
		close(s.errs)
	})
	return closeErr
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}

			s.reportError(fmt.Errorf("accept connection: %w", err))
			continue
		}

		s.wg.Add(1)
		go s.handleInboundConn(conn)
	}
}

func (s *Server) handleInboundConn(conn net.Conn) {
	defer s.wg.Done()

	remote := conn.RemoteAddr().String()
	s.logger.Debug("inbound connection", zap.String("remote", remote))

	r := newReceiver(conn, remote, s.options, s.notify)
	if err := r.run(s.ctx); err != nil {
		s.reportError(err)
	}
}

func (s *Server) reportError(err error) {
	if err == nil || s.ctx.Err() != nil {
		return
	}

	select {
	case s.errs <- err:
	default:
	}
}
