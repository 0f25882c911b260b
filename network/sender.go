package network

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/golang/protobuf/proto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"nearshare/crypto"
	"nearshare/discovery"
	"nearshare/models"
	"nearshare/protocol/connections"
	"nearshare/protocol/sharing"
)

const cancelTimeout = time.Second

// Connector opens a duplex stream to a receiver. discovery.Device implements it.
type Connector interface {
	Connect(ctx context.Context) (net.Conn, error)
	Name() string
}

type senderState interface {
	phase() Phase
}

type sendInit struct{}

type sendConnectionRequested struct{}

type sendUkeyInit struct {
	handshake *crypto.ClientHandshake
}

type sendUkeyFinished struct {
	result *crypto.Result
}

type sendPairedKeyExchange struct {
	conn *secureConn
}

type sendAwaitingDecision struct {
	conn *secureConn
}

type sendTransferring struct {
	conn *secureConn
}

type sendDisconnected struct {
	status SendStatus
}

func (sendInit) phase() Phase                { return PhaseInit }
func (sendConnectionRequested) phase() Phase { return PhaseConnectionRequested }
func (sendUkeyInit) phase() Phase            { return PhaseUkeyInit }
func (sendUkeyFinished) phase() Phase        { return PhaseUkeyFinished }
func (sendPairedKeyExchange) phase() Phase   { return PhasePairedKeyExchange }
func (sendAwaitingDecision) phase() Phase    { return PhaseAwaitingIntroductionDecision }
func (sendTransferring) phase() Phase        { return PhaseTransferring }
func (sendDisconnected) phase() Phase        { return PhaseDisconnected }

// Send connects to device, offers bundle and streams it if the receiver
// accepts. The returned status is Finished, Rejected or Failed; err is
// non-nil only for Failed. The bundle is owned by Send once called.
func Send(ctx context.Context, device Connector, bundle *Bundle, opts SenderOptions) (SendStatus, error) {
	if bundle == nil || bundle.Len() == 0 {
		return SendStatusFailed, ErrEmptyBundle
	}
	opts = opts.withDefaults()
	if opts.DeviceName == "" {
		return SendStatusFailed, errors.New("local device name is required")
	}

	stream, err := device.Connect(ctx)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrConnect, err)
		opts.Logger.Warn("connect failed", zap.String("device", device.Name()), zap.Error(err))
		if opts.OnStatus != nil {
			opts.OnStatus(SendStatusFailed)
		}
		return SendStatusFailed, err
	}

	s := newSender(stream, device.Name(), bundle, opts)
	return s.run(ctx)
}

type sender struct {
	ch      *frameChannel
	bundle  *Bundle
	opts    SenderOptions
	logger  *zap.Logger
	history *history
	conn    *secureConn

	startKeepAlive func()
	stopKeepAlive  func()
}

func newSender(stream net.Conn, peerName string, bundle *Bundle, opts SenderOptions) *sender {
	logger := opts.Logger.With(
		zap.String("role", string(RoleSender)),
		zap.String("remote", stream.RemoteAddr().String()),
	)
	peer := peerInfo{Name: peerName, Address: stream.RemoteAddr().String()}
	return &sender{
		ch:      newFrameChannel(stream, logger),
		bundle:  bundle,
		opts:    opts,
		logger:  logger,
		history: newHistory(opts.Recorder, logger, models.DirectionSend, peer),
	}
}

func (s *sender) run(ctx context.Context) (SendStatus, error) {
	defer func() {
		_ = s.ch.Close()
	}()

	status := SendStatusFailed
	group, groupCtx := errgroup.WithContext(ctx)
	keepAliveCtx, stopKeepAlive := context.WithCancel(groupCtx)
	defer stopKeepAlive()
	s.stopKeepAlive = stopKeepAlive
	s.startKeepAlive = func() {
		group.Go(func() error {
			return s.ch.keepAlive(keepAliveCtx, s.opts.KeepAliveInterval)
		})
	}

	group.Go(func() error {
		defer stopKeepAlive()
		var err error
		status, err = s.machine(groupCtx)
		return err
	})
	if err := group.Wait(); err != nil {
		return SendStatusFailed, err
	}
	return status, nil
}

func (s *sender) report(status SendStatus) {
	if s.opts.OnStatus != nil {
		s.opts.OnStatus(status)
	}
}

func (s *sender) machine(ctx context.Context) (SendStatus, error) {
	handshakeCtx, cancelHandshake := context.WithTimeout(ctx, s.opts.HandshakeTimeout)
	defer cancelHandshake()

	var state senderState = sendInit{}
	for {
		stepCtx := ctx
		if state.phase() < PhasePairedKeyExchange {
			stepCtx = handshakeCtx
		}

		next, err := s.step(stepCtx, state)
		if err != nil {
			if ctx.Err() != nil && s.conn != nil {
				s.cancelPeer(ctx)
			}
			err = &ConnectionError{Role: RoleSender, Phase: state.phase(), Err: err}
			s.logger.Warn("outbound connection failed", zap.Error(err))
			s.history.finish(models.TransferStatusFailed, err)
			s.report(SendStatusFailed)
			return SendStatusFailed, err
		}
		if next.phase() != state.phase() {
			s.logger.Debug("phase", zap.Stringer("from", state.phase()), zap.Stringer("to", next.phase()))
		}
		if done, ok := next.(sendDisconnected); ok {
			return done.status, nil
		}
		state = next
	}
}

func (s *sender) step(ctx context.Context, state senderState) (senderState, error) {
	switch st := state.(type) {
	case sendInit:
		return s.requestConnection(ctx)
	case sendConnectionRequested:
		return s.sendClientInit(ctx)
	case sendUkeyInit:
		return s.finishHandshake(ctx, st)
	case sendUkeyFinished:
		return s.secureChannel(ctx, st)
	case sendPairedKeyExchange:
		return s.exchangePairedKeys(ctx, st)
	case sendAwaitingDecision:
		return s.awaitDecision(ctx, st)
	case sendTransferring:
		return s.transfer(ctx, st)
	default:
		return nil, fmt.Errorf("sender in unknown state %T", state)
	}
}

func (s *sender) requestConnection(ctx context.Context) (senderState, error) {
	info := discovery.EncodeEndpointInfo(s.opts.DeviceType, s.opts.DeviceName)
	frame := connectionRequestFrame(s.opts.EndpointID, s.opts.DeviceName, info, s.opts.KeepAliveInterval)
	if err := s.ch.SendOffline(ctx, frame); err != nil {
		return nil, err
	}
	return sendConnectionRequested{}, nil
}

func (s *sender) sendClientInit(ctx context.Context) (senderState, error) {
	handshake, err := crypto.NewClientHandshake()
	if err != nil {
		return nil, err
	}
	if err := s.ch.Send(ctx, handshake.ClientInit()); err != nil {
		return nil, fmt.Errorf("send client init: %w", err)
	}
	return sendUkeyInit{handshake: handshake}, nil
}

func (s *sender) finishHandshake(ctx context.Context, st sendUkeyInit) (senderState, error) {
	raw, err := s.ch.Receive(ctx)
	if err != nil {
		return nil, err
	}
	finish, result, err := st.handshake.HandleServerInit(raw)
	if err != nil {
		sendAlert(ctx, s.ch, s.logger, err)
		return nil, err
	}
	if err := s.ch.Send(ctx, finish); err != nil {
		return nil, fmt.Errorf("send client finish: %w", err)
	}
	if err := s.ch.SendOffline(ctx, connectionResponseFrame()); err != nil {
		return nil, err
	}
	if s.opts.OnAuthPin != nil {
		s.opts.OnAuthPin(result.AuthPin())
	}
	return sendUkeyFinished{result: result}, nil
}

func (s *sender) secureChannel(ctx context.Context, st sendUkeyFinished) (senderState, error) {
	if err := awaitConnectionResponse(ctx, s.ch, PhaseUkeyFinished); err != nil {
		return nil, err
	}
	s.ch.EnableEncryption(crypto.NewSecureSession(st.result.Keys))
	s.startKeepAlive()

	s.conn = newSecureConn(s.ch, s.bundle.ids, 0, s.logger)
	pke, err := pairedKeyEncryptionFrame()
	if err != nil {
		return nil, err
	}
	if err := s.conn.sendFrame(ctx, pke); err != nil {
		return nil, err
	}
	return sendPairedKeyExchange{conn: s.conn}, nil
}

func (s *sender) exchangePairedKeys(ctx context.Context, st sendPairedKeyExchange) (senderState, error) {
	frame, err := st.conn.nextFrame(ctx, PhasePairedKeyExchange)
	if err != nil {
		return nil, err
	}
	if frame.GetType() != sharing.V1Frame_PAIRED_KEY_ENCRYPTION {
		return nil, unexpectedFrame(PhasePairedKeyExchange, frame.GetType())
	}
	if err := st.conn.sendFrame(ctx, pairedKeyResultFrame()); err != nil {
		return nil, err
	}

	frame, err = st.conn.nextFrame(ctx, PhasePairedKeyExchange)
	if err != nil {
		return nil, err
	}
	if frame.GetType() != sharing.V1Frame_PAIRED_KEY_RESULT {
		return nil, unexpectedFrame(PhasePairedKeyExchange, frame.GetType())
	}

	intro := s.bundle.introduction()
	if err := st.conn.sendFrame(ctx, intro); err != nil {
		return nil, err
	}
	s.history.items(intro.GetIntroduction())
	s.report(SendStatusAwaitingResponse)
	return sendAwaitingDecision{conn: st.conn}, nil
}

func (s *sender) awaitDecision(ctx context.Context, st sendAwaitingDecision) (senderState, error) {
	frame, err := st.conn.nextFrame(ctx, PhaseAwaitingIntroductionDecision)
	if err != nil {
		return nil, err
	}
	if frame.GetType() != sharing.V1Frame_RESPONSE || frame.GetConnectionResponse() == nil {
		return nil, unexpectedFrame(PhaseAwaitingIntroductionDecision, frame.GetType())
	}

	status := frame.GetConnectionResponse().Status
	if status != sharing.ConnectionResponseFrame_ACCEPT {
		s.logger.Info("transfer declined", zap.Stringer("status", status))
		s.history.finish(models.TransferStatusRejected, nil)
		s.report(SendStatusRejected)
		s.stopKeepAlive()
		waitForPeerClose(ctx, s.ch, s.opts.DisconnectGrace)
		return sendDisconnected{status: SendStatusRejected}, nil
	}

	s.history.finish(models.TransferStatusAccepted, nil)
	s.report(SendStatusAccepted)
	return sendTransferring{conn: st.conn}, nil
}

func (s *sender) transfer(ctx context.Context, st sendTransferring) (senderState, error) {
	for _, entry := range s.bundle.entries {
		var err error
		switch {
		case entry.file != nil:
			err = s.streamFile(ctx, entry.file, entry.path)
		case entry.text != nil:
			err = s.sendBytes(ctx, entry.text.PayloadId, []byte(entry.body))
		case entry.wifi != nil:
			var raw []byte
			raw, err = proto.Marshal(entry.credentials)
			if err == nil {
				err = s.sendBytes(ctx, entry.wifi.PayloadId, raw)
			}
		}
		if err != nil {
			return nil, err
		}
	}

	s.history.finish(models.TransferStatusComplete, nil)
	s.logger.Info("transfer finished", zap.Int("entries", s.bundle.Len()))
	s.report(SendStatusFinished)
	s.stopKeepAlive()
	waitForPeerClose(ctx, s.ch, s.opts.DisconnectGrace)
	return sendDisconnected{status: SendStatusFinished}, nil
}

func (s *sender) sendBytes(ctx context.Context, id int64, data []byte) error {
	for _, frame := range SendPayload(id, data) {
		if err := s.ch.SendOffline(ctx, frame); err != nil {
			return err
		}
	}
	return nil
}

// streamFile sends a file as a FILE payload, reading it lazily.
func (s *sender) streamFile(ctx context.Context, meta *sharing.FileMetadata, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %q: %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	header := &connections.PayloadHeader{
		Id:        meta.PayloadId,
		Type:      connections.PayloadHeader_FILE,
		TotalSize: meta.Size,
		FileName:  meta.Name,
	}
	chunkSize := int64(s.opts.ChunkSize)
	if chunkSize <= 0 {
		chunkSize = meta.Size
	}

	var offset int64
	for offset < meta.Size {
		n := min(chunkSize, meta.Size-offset)
		buf := make([]byte, n)
		if _, err := io.ReadFull(file, buf); err != nil {
			return fmt.Errorf("read %q at offset %d: %w", path, offset, err)
		}
		if err := s.ch.SendOffline(ctx, dataFrame(header, offset, buf, false)); err != nil {
			return err
		}
		offset += n
	}
	return s.ch.SendOffline(ctx, dataFrame(header, offset, nil, true))
}

// cancelPeer tells the receiver the transfer is abandoned. Best effort.
func (s *sender) cancelPeer(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cancelTimeout)
	defer cancel()
	if err := s.conn.sendFrame(ctx, cancelFrame()); err != nil {
		s.logger.Debug("send cancel", zap.Error(err))
	}
}
