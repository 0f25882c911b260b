package network

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/golang/protobuf/proto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"nearshare/crypto"
	"nearshare/discovery"
	"nearshare/models"
	"nearshare/protocol/connections"
	"nearshare/protocol/sharing"
)

// receiverState is one phase of an inbound connection together with the
// data available in that phase.
type receiverState interface {
	phase() Phase
}

type recvInit struct{}

type recvConnectionRequested struct {
	peer peerInfo
}

type recvUkeyInit struct {
	peer      peerInfo
	handshake *crypto.ServerHandshake
}

type recvUkeyFinished struct {
	peer   peerInfo
	result *crypto.Result
}

type recvPairedKeyExchange struct {
	peer   peerInfo
	result *crypto.Result
	conn   *secureConn
}

type recvAwaitingDecision struct {
	peer   peerInfo
	result *crypto.Result
	conn   *secureConn
	intro  *sharing.IntroductionFrame
}

type recvTransferring struct {
	peer    peerInfo
	conn    *secureConn
	pending map[int64]any
}

type recvDisconnected struct {
	accepted bool
}

func (recvInit) phase() Phase                { return PhaseInit }
func (recvConnectionRequested) phase() Phase { return PhaseConnectionRequested }
func (recvUkeyInit) phase() Phase            { return PhaseUkeyInit }
func (recvUkeyFinished) phase() Phase        { return PhaseUkeyFinished }
func (recvPairedKeyExchange) phase() Phase   { return PhasePairedKeyExchange }
func (recvAwaitingDecision) phase() Phase    { return PhaseAwaitingIntroductionDecision }
func (recvTransferring) phase() Phase        { return PhaseTransferring }
func (recvDisconnected) phase() Phase        { return PhaseDisconnected }

// receiver drives one inbound connection.
type receiver struct {
	ch      *frameChannel
	opts    ServerOptions
	notify  *notifier
	remote  string
	logger  *zap.Logger
	peer    peerInfo
	history *history

	startKeepAlive func()
	stopKeepAlive  func()
}

func newReceiver(stream io.ReadWriteCloser, remote string, opts ServerOptions, notify *notifier) *receiver {
	logger := opts.Logger.With(zap.String("role", string(RoleReceiver)), zap.String("remote", remote))
	return &receiver{
		ch:     newFrameChannel(stream, logger),
		opts:   opts,
		notify: notify,
		remote: remote,
		logger: logger,
	}
}

// run drives the connection to completion and closes the stream.
func (r *receiver) run(ctx context.Context) error {
	defer func() {
		_ = r.ch.Close()
	}()

	group, groupCtx := errgroup.WithContext(ctx)
	keepAliveCtx, stopKeepAlive := context.WithCancel(groupCtx)
	defer stopKeepAlive()
	r.stopKeepAlive = stopKeepAlive
	r.startKeepAlive = func() {
		group.Go(func() error {
			return r.ch.keepAlive(keepAliveCtx, r.opts.KeepAliveInterval)
		})
	}

	group.Go(func() error {
		defer stopKeepAlive()
		return r.machine(groupCtx)
	})
	return group.Wait()
}

func (r *receiver) machine(ctx context.Context) error {
	handshakeCtx, cancelHandshake := context.WithTimeout(ctx, r.opts.HandshakeTimeout)
	defer cancelHandshake()

	var state receiverState = recvInit{}
	for {
		stepCtx := ctx
		if state.phase() < PhasePairedKeyExchange {
			stepCtx = handshakeCtx
		}

		next, err := r.step(stepCtx, state)
		if err != nil {
			err = &ConnectionError{Role: RoleReceiver, Phase: state.phase(), Err: err}
			r.logger.Warn("inbound connection failed", zap.Error(err))
			r.finish(false, err)
			return err
		}
		if next.phase() != state.phase() {
			r.logger.Debug("phase", zap.Stringer("from", state.phase()), zap.Stringer("to", next.phase()))
		}
		if done, ok := next.(recvDisconnected); ok {
			r.finish(done.accepted, nil)
			return nil
		}
		state = next
	}
}

func (r *receiver) step(ctx context.Context, state receiverState) (receiverState, error) {
	switch s := state.(type) {
	case recvInit:
		return r.awaitConnectionRequest(ctx)
	case recvConnectionRequested:
		return r.answerClientInit(ctx, s)
	case recvUkeyInit:
		return r.awaitClientFinish(ctx, s)
	case recvUkeyFinished:
		return r.secureChannel(ctx, s)
	case recvPairedKeyExchange:
		return r.exchangePairedKeys(ctx, s)
	case recvAwaitingDecision:
		return r.decide(ctx, s)
	case recvTransferring:
		return r.transfer(ctx, s)
	default:
		return nil, fmt.Errorf("receiver in unknown state %T", state)
	}
}

func (r *receiver) awaitConnectionRequest(ctx context.Context) (receiverState, error) {
	frame, err := r.ch.ReceiveOffline(ctx)
	if err != nil {
		return nil, err
	}
	if frame.GetType() != connections.V1Frame_CONNECTION_REQUEST || frame.GetConnectionRequest() == nil {
		return nil, unexpectedFrame(PhaseInit, frame.GetType())
	}

	request := frame.GetConnectionRequest()
	info, err := discovery.DecodeEndpointInfo(request.EndpointInfo)
	if err != nil {
		return nil, err
	}
	peer := peerInfo{
		EndpointID: request.EndpointId,
		Name:       info.Name,
		DeviceType: info.DeviceType,
		Address:    r.remote,
	}
	r.peer = peer
	r.logger = r.logger.With(zap.String("endpoint_id", peer.EndpointID))
	r.history = newHistory(r.opts.Recorder, r.logger, models.DirectionReceive, peer)
	return recvConnectionRequested{peer: peer}, nil
}

func (r *receiver) answerClientInit(ctx context.Context, s recvConnectionRequested) (receiverState, error) {
	raw, err := r.ch.Receive(ctx)
	if err != nil {
		return nil, err
	}
	handshake, err := crypto.NewServerHandshake(raw)
	if err != nil {
		sendAlert(ctx, r.ch, r.logger, err)
		return nil, err
	}
	if err := r.ch.Send(ctx, handshake.ServerInit()); err != nil {
		return nil, fmt.Errorf("send server init: %w", err)
	}
	return recvUkeyInit{peer: s.peer, handshake: handshake}, nil
}

func (r *receiver) awaitClientFinish(ctx context.Context, s recvUkeyInit) (receiverState, error) {
	raw, err := r.ch.Receive(ctx)
	if err != nil {
		return nil, err
	}
	result, err := s.handshake.HandleClientFinish(raw)
	if err != nil {
		sendAlert(ctx, r.ch, r.logger, err)
		return nil, err
	}
	return recvUkeyFinished{peer: s.peer, result: result}, nil
}

func (r *receiver) secureChannel(ctx context.Context, s recvUkeyFinished) (receiverState, error) {
	if err := awaitConnectionResponse(ctx, r.ch, PhaseUkeyFinished); err != nil {
		return nil, err
	}
	if err := r.ch.SendOffline(ctx, connectionResponseFrame()); err != nil {
		return nil, err
	}

	r.ch.EnableEncryption(crypto.NewSecureSession(s.result.Keys))
	r.startKeepAlive()

	conn := newSecureConn(r.ch, NewPayloadIDs(), r.opts.MaxPayloadSize, r.logger)
	pke, err := pairedKeyEncryptionFrame()
	if err != nil {
		return nil, err
	}
	if err := conn.sendFrame(ctx, pke); err != nil {
		return nil, err
	}
	return recvPairedKeyExchange{peer: s.peer, result: s.result, conn: conn}, nil
}

func (r *receiver) exchangePairedKeys(ctx context.Context, s recvPairedKeyExchange) (receiverState, error) {
	frame, err := s.conn.nextFrame(ctx, PhasePairedKeyExchange)
	if err != nil {
		return nil, err
	}
	if frame.GetType() != sharing.V1Frame_PAIRED_KEY_ENCRYPTION {
		return nil, unexpectedFrame(PhasePairedKeyExchange, frame.GetType())
	}
	if err := s.conn.sendFrame(ctx, pairedKeyResultFrame()); err != nil {
		return nil, err
	}

	frame, err = s.conn.nextFrame(ctx, PhasePairedKeyExchange)
	if err != nil {
		return nil, err
	}
	if frame.GetType() != sharing.V1Frame_PAIRED_KEY_RESULT {
		return nil, unexpectedFrame(PhasePairedKeyExchange, frame.GetType())
	}

	frame, err = s.conn.nextFrame(ctx, PhasePairedKeyExchange)
	if err != nil {
		return nil, err
	}
	if frame.GetType() != sharing.V1Frame_INTRODUCTION || frame.GetIntroduction() == nil {
		return nil, unexpectedFrame(PhasePairedKeyExchange, frame.GetType())
	}
	return recvAwaitingDecision{peer: s.peer, result: s.result, conn: s.conn, intro: frame.GetIntroduction()}, nil
}

func (r *receiver) decide(ctx context.Context, s recvAwaitingDecision) (receiverState, error) {
	intro := s.intro
	r.history.items(intro)

	pending := make(map[int64]any)
	for _, f := range intro.FileMetadata {
		pending[f.PayloadId] = f
	}
	for _, t := range intro.TextMetadata {
		pending[t.PayloadId] = t
	}
	for _, w := range intro.WifiCredentialsMetadata {
		pending[w.PayloadId] = w
	}
	if len(pending) == 0 {
		r.logger.Info("introduction has no supported attachments")
		if err := s.conn.sendFrame(ctx, responseFrame(sharing.ConnectionResponseFrame_UNSUPPORTED_ATTACHMENT_TYPE)); err != nil {
			return nil, err
		}
		r.history.finish(models.TransferStatusRejected, nil)
		r.disconnect(ctx)
		return recvDisconnected{}, nil
	}

	accept := r.opts.AutoAccept
	if !accept {
		decision, err := r.askUser(ctx, s)
		if err != nil {
			return nil, err
		}
		accept = decision
	}

	if !accept {
		if err := s.conn.sendFrame(ctx, responseFrame(sharing.ConnectionResponseFrame_REJECT)); err != nil {
			return nil, err
		}
		r.logger.Info("transfer rejected", zap.String("peer", s.peer.Name))
		r.history.finish(models.TransferStatusRejected, nil)
		r.disconnect(ctx)
		return recvDisconnected{}, nil
	}

	for id := range pending {
		s.conn.expect(id)
	}
	if err := s.conn.sendFrame(ctx, responseFrame(sharing.ConnectionResponseFrame_ACCEPT)); err != nil {
		return nil, err
	}
	r.history.finish(models.TransferStatusAccepted, nil)
	return recvTransferring{peer: s.peer, conn: s.conn, pending: pending}, nil
}

// askUser publishes a PairingRequest and blocks until it is answered.
func (r *receiver) askUser(ctx context.Context, s recvAwaitingDecision) (bool, error) {
	respond := make(chan bool, 1)
	request := PairingRequest{
		TransferID: r.history.id,
		EndpointID: s.peer.EndpointID,
		DeviceName: s.peer.Name,
		DeviceType: s.peer.DeviceType,
		Summary:    summarize(s.intro),
		AuthPin:    s.result.AuthPin(),
		Files:      s.intro.FileMetadata,
		Texts:      s.intro.TextMetadata,
		Wifi:       s.intro.WifiCredentialsMetadata,
		respond:    respond,
	}
	if err := r.notify.deliver(ctx, request); err != nil {
		return false, err
	}
	select {
	case accept := <-respond:
		return accept, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (r *receiver) transfer(ctx context.Context, s recvTransferring) (receiverState, error) {
	if len(s.pending) == 0 {
		r.history.finish(models.TransferStatusComplete, nil)
		r.logger.Info("transfer complete", zap.String("peer", s.peer.Name))
		r.disconnect(ctx)
		return recvDisconnected{accepted: true}, nil
	}

	item, err := s.conn.next(ctx, PhaseTransferring)
	if errors.Is(err, errPeerDisconnected) {
		return nil, fmt.Errorf("%w: %d payloads outstanding", ErrIncompleteTransfer, len(s.pending))
	}
	if err != nil {
		return nil, err
	}
	if item.frame != nil {
		if item.frame.GetType() == sharing.V1Frame_CANCEL {
			return nil, ErrCancelled
		}
		return nil, unexpectedFrame(PhaseTransferring, item.frame.GetType())
	}

	meta, ok := s.pending[item.payload.ID]
	if !ok {
		return nil, fmt.Errorf("%w %s: payload %d was not announced", ErrUnexpectedFrame, PhaseTransferring, item.payload.ID)
	}
	if err := r.dispatch(ctx, s.peer, meta, item.payload); err != nil {
		return nil, err
	}
	delete(s.pending, item.payload.ID)
	return s, nil
}

func (r *receiver) dispatch(ctx context.Context, peer peerInfo, meta any, payload *Payload) error {
	switch m := meta.(type) {
	case *sharing.FileMetadata:
		path, err := r.opts.Sink.SaveFile(ctx, m, payload.Data)
		if err != nil {
			return err
		}
		r.logger.Info("file received", zap.String("name", m.Name), zap.String("path", path), zap.Int("bytes", len(payload.Data)))
		r.history.itemDone(payload.ID, path)
		r.publish(FileReceived{
			TransferID: r.history.id,
			DeviceName: peer.Name,
			PayloadID:  payload.ID,
			Name:       m.Name,
			Path:       path,
			Size:       int64(len(payload.Data)),
		})
	case *sharing.TextMetadata:
		r.history.itemDone(payload.ID, "")
		return r.notify.deliver(ctx, IncomingText{
			TransferID: r.history.id,
			DeviceName: peer.Name,
			PayloadID:  payload.ID,
			Kind:       m.Type,
			Title:      m.TextTitle,
			Text:       string(payload.Data),
		})
	case *sharing.WifiCredentialsMetadata:
		var credentials sharing.WifiCredentials
		if err := proto.Unmarshal(payload.Data, &credentials); err != nil {
			return fmt.Errorf("%w: wifi credentials: %v", ErrDecode, err)
		}
		r.history.itemDone(payload.ID, "")
		return r.notify.deliver(ctx, IncomingWifiCredentials{
			TransferID:   r.history.id,
			DeviceName:   peer.Name,
			PayloadID:    payload.ID,
			SSID:         m.Ssid,
			SecurityType: m.SecurityType,
			Password:     credentials.Password,
			HiddenSSID:   credentials.HiddenSsid,
		})
	}
	return nil
}

// publish hands ev to the event stream without blocking. Text and Wi-Fi
// credentials exist nowhere else, so dispatch delivers those with deliver.
func (r *receiver) publish(ev Event) {
	if !r.notify.publish(ev) {
		r.logger.Warn("event dropped", zap.String("event", fmt.Sprintf("%T", ev)))
	}
}

// disconnect stops the keep-alive loop and closes the conversation politely.
func (r *receiver) disconnect(ctx context.Context) {
	r.stopKeepAlive()
	waitForPeerClose(ctx, r.ch, r.opts.DisconnectGrace)
}

func (r *receiver) finish(accepted bool, err error) {
	if r.history == nil {
		return
	}
	if err != nil {
		r.history.finish(models.TransferStatusFailed, err)
	}
	r.publish(TransferFinished{
		TransferID: r.history.id,
		DeviceName: r.peer.Name,
		Accepted:   accepted,
		Err:        err,
	})
}
