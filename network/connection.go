package network

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"nearshare/protocol/connections"
	"nearshare/protocol/sharing"
)

// errPeerDisconnected is returned by secureConn.next when the peer sent a
// Disconnection frame.
var errPeerDisconnected = errors.New("network: peer disconnected")

// inboundItem is one meaningful unit read from an established connection:
// either a sharing frame or a payload the caller registered as expected.
type inboundItem struct {
	frame   *sharing.V1Frame
	payload *Payload
}

// secureConn carries sharing frames and payloads once the secure channel is up.
type secureConn struct {
	ch          *frameChannel
	ids         *PayloadIDs
	reassembler *Reassembler
	logger      *zap.Logger

	expected map[int64]struct{}
	ready    []Payload
}

func newSecureConn(ch *frameChannel, ids *PayloadIDs, maxPayloadSize int64, logger *zap.Logger) *secureConn {
	return &secureConn{
		ch:          ch,
		ids:         ids,
		reassembler: NewReassembler(maxPayloadSize),
		logger:      logger,
		expected:    make(map[int64]struct{}),
	}
}

// expect marks id as a data payload rather than an encoded sharing frame.
func (s *secureConn) expect(id int64) {
	s.expected[id] = struct{}{}
}

// sendFrame serializes frame and sends it as a BYTES payload with a fresh id.
func (s *secureConn) sendFrame(ctx context.Context, frame *sharing.V1Frame) error {
	raw, err := marshalSharing(frame)
	if err != nil {
		return err
	}
	for _, offline := range SendPayload(s.ids.Next(), raw) {
		if err := s.ch.SendOffline(ctx, offline); err != nil {
			return fmt.Errorf("send %s: %w", frame.GetType(), err)
		}
	}
	return nil
}

// next reads until a sharing frame or an expected payload is complete.
// KeepAlive frames are absorbed.
func (s *secureConn) next(ctx context.Context, phase Phase) (inboundItem, error) {
	for {
		if len(s.ready) > 0 {
			payload := s.ready[0]
			s.ready = s.ready[1:]
			if _, ok := s.expected[payload.ID]; ok {
				delete(s.expected, payload.ID)
				return inboundItem{payload: &payload}, nil
			}
			frame, err := unmarshalSharing(payload.Data)
			if err != nil {
				return inboundItem{}, err
			}
			return inboundItem{frame: frame}, nil
		}

		offline, err := s.ch.ReceiveOffline(ctx)
		if err != nil {
			return inboundItem{}, err
		}
		switch offline.GetType() {
		case connections.V1Frame_KEEP_ALIVE:
			s.logger.Debug("keep-alive received")
		case connections.V1Frame_DISCONNECTION:
			return inboundItem{}, errPeerDisconnected
		case connections.V1Frame_PAYLOAD_TRANSFER:
			if err := s.reassembler.Push(offline.GetPayloadTransfer()); err != nil {
				return inboundItem{}, err
			}
			s.ready = append(s.ready, s.reassembler.DrainFinished()...)
		default:
			return inboundItem{}, unexpectedFrame(phase, offline.GetType())
		}
	}
}

// nextFrame is next for phases where only sharing frames are legal.
func (s *secureConn) nextFrame(ctx context.Context, phase Phase) (*sharing.V1Frame, error) {
	item, err := s.next(ctx, phase)
	if err != nil {
		return nil, err
	}
	if item.frame == nil {
		return nil, fmt.Errorf("%w %s: data payload %d", ErrUnexpectedFrame, phase, item.payload.ID)
	}
	if item.frame.GetType() == sharing.V1Frame_CANCEL {
		return nil, ErrCancelled
	}
	return item.frame, nil
}

// outstanding reports how many expected payloads have not completed.
func (s *secureConn) outstanding() int {
	return len(s.expected)
}
