package network

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"nearshare/crypto"
	"nearshare/protocol/connections"
)

// sendAlert tells the peer why a handshake message was refused. Errors that
// do not map to a UKEY2 alert are not reported.
func sendAlert(ctx context.Context, ch *frameChannel, logger *zap.Logger, cause error) {
	alertType, ok := crypto.AlertFor(cause)
	if !ok {
		return
	}
	raw, err := crypto.AlertMessage(alertType, cause.Error())
	if err != nil {
		return
	}
	if err := ch.Send(ctx, raw); err != nil {
		logger.Debug("send ukey2 alert", zap.Error(err))
	}
}

// awaitConnectionResponse reads the peer's cleartext ConnectionResponse.
func awaitConnectionResponse(ctx context.Context, ch *frameChannel, phase Phase) error {
	frame, err := ch.ReceiveOffline(ctx)
	if err != nil {
		return err
	}
	if frame.GetType() != connections.V1Frame_CONNECTION_RESPONSE {
		return unexpectedFrame(phase, frame.GetType())
	}
	response := frame.GetConnectionResponse()
	if response == nil {
		return fmt.Errorf("%w: connection response without body", ErrDecode)
	}
	if response.Response == connections.ConnectionResponseFrame_REJECT {
		return fmt.Errorf("%w: status %d", ErrConnectionRejected, response.Status)
	}
	return nil
}

// waitForPeerClose sends Disconnection and reads until the peer disconnects,
// closes the stream, or grace elapses. Errors are ignored.
func waitForPeerClose(ctx context.Context, ch *frameChannel, grace time.Duration) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), grace)
	defer cancel()

	if err := ch.SendOffline(ctx, disconnectionFrame()); err != nil {
		return
	}
	for {
		frame, err := ch.ReceiveOffline(ctx)
		if err != nil {
			if errors.Is(err, ErrDecode) {
				continue
			}
			return
		}
		if frame.GetType() == connections.V1Frame_DISCONNECTION {
			return
		}
	}
}
