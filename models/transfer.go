package models

// Transfer directions.
const (
	DirectionSend    = "send"
	DirectionReceive = "receive"
)

// Transfer statuses.
const (
	TransferStatusPending  = "pending"
	TransferStatusAccepted = "accepted"
	TransferStatusRejected = "rejected"
	TransferStatusComplete = "complete"
	TransferStatusFailed   = "failed"
)

// Transfer records one inbound or outbound share with a peer.
type Transfer struct {
	TransferID     string         `json:"transfer_id"`
	Direction      string         `json:"direction"`
	PeerEndpointID string         `json:"peer_endpoint_id"`
	PeerName       string         `json:"peer_name"`
	PeerDeviceType string         `json:"peer_device_type"`
	RemoteAddress  string         `json:"remote_address"`
	Status         string         `json:"status"`
	Error          string         `json:"error,omitempty"`
	StartedAt      int64          `json:"started_at"`
	FinishedAt     int64          `json:"finished_at,omitempty"`
	Items          []TransferItem `json:"items,omitempty"`
}
