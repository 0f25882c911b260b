package models

// Kinds of transfer item.
const (
	ItemKindFile = "file"
	ItemKindText = "text"
	ItemKindWifi = "wifi"
)

// TransferItem is one payload announced in a transfer's introduction.
type TransferItem struct {
	TransferID string `json:"transfer_id"`
	PayloadID  int64  `json:"payload_id"`
	Kind       string `json:"kind"`
	Name       string `json:"name"`
	Size       int64  `json:"size"`
	MimeType   string `json:"mime_type"`
	StoredPath string `json:"stored_path"`
	Complete   bool   `json:"complete"`
}
