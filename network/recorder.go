package network

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"nearshare/models"
	"nearshare/protocol/sharing"
)

// Recorder persists transfer history. storage.Store implements it.
type Recorder interface {
	SaveTransfer(transfer models.Transfer) error
	UpdateTransferStatus(transferID, status, errorMessage string) error
	AddTransferItem(item models.TransferItem) error
	MarkItemComplete(transferID string, payloadID int64, storedPath string) error
}

// history writes one transfer through a Recorder. Recorder failures are
// logged and never abort the connection. A nil recorder is a no-op.
type history struct {
	recorder Recorder
	logger   *zap.Logger
	id       string
	status   string
}

func newHistory(recorder Recorder, logger *zap.Logger, direction string, peer peerInfo) *history {
	h := &history{recorder: recorder, logger: logger, id: uuid.NewString(), status: models.TransferStatusPending}
	if recorder == nil {
		return h
	}
	err := recorder.SaveTransfer(models.Transfer{
		TransferID:     h.id,
		Direction:      direction,
		PeerEndpointID: peer.EndpointID,
		PeerName:       peer.Name,
		PeerDeviceType: peer.DeviceType.String(),
		RemoteAddress:  peer.Address,
		Status:         models.TransferStatusPending,
		StartedAt:      time.Now().UnixMilli(),
	})
	if err != nil {
		logger.Warn("record transfer", zap.Error(err))
	}
	return h
}

func (h *history) items(intro *sharing.IntroductionFrame) {
	if h.recorder == nil || intro == nil {
		return
	}
	var items []models.TransferItem
	for _, f := range intro.FileMetadata {
		items = append(items, models.TransferItem{PayloadID: f.PayloadId, Kind: models.ItemKindFile, Name: f.Name, Size: f.Size, MimeType: f.MimeType})
	}
	for _, t := range intro.TextMetadata {
		items = append(items, models.TransferItem{PayloadID: t.PayloadId, Kind: models.ItemKindText, Name: t.TextTitle, Size: t.Size})
	}
	for _, w := range intro.WifiCredentialsMetadata {
		items = append(items, models.TransferItem{PayloadID: w.PayloadId, Kind: models.ItemKindWifi, Name: w.Ssid})
	}
	for _, item := range items {
		item.TransferID = h.id
		if err := h.recorder.AddTransferItem(item); err != nil {
			h.logger.Warn("record transfer item", zap.Int64("payload_id", item.PayloadID), zap.Error(err))
		}
	}
}

func (h *history) itemDone(payloadID int64, storedPath string) {
	if h.recorder == nil {
		return
	}
	if err := h.recorder.MarkItemComplete(h.id, payloadID, storedPath); err != nil {
		h.logger.Warn("record item completion", zap.Int64("payload_id", payloadID), zap.Error(err))
	}
}

func (h *history) finish(status string, cause error) {
	h.status = status
	if h.recorder == nil {
		return
	}
	message := ""
	if cause != nil {
		message = cause.Error()
	}
	if err := h.recorder.UpdateTransferStatus(h.id, status, message); err != nil {
		h.logger.Warn("record transfer status", zap.String("status", status), zap.Error(err))
	}
}
