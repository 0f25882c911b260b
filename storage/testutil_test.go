package storage

import (
	"testing"

	"nearshare/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dataDir := t.TempDir()
	store, _, err := Open(dataDir)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close test store: %v", err)
		}
	})

	return store
}

func mustSaveTransfer(t *testing.T, store *Store, transferID, direction string, startedAt int64) {
	t.Helper()

	err := store.SaveTransfer(models.Transfer{
		TransferID:     transferID,
		Direction:      direction,
		PeerEndpointID: "AB12",
		PeerName:       "Pixel " + transferID,
		PeerDeviceType: "phone",
		RemoteAddress:  "192.168.1.20:41234",
		StartedAt:      startedAt,
	})
	if err != nil {
		t.Fatalf("save transfer %q: %v", transferID, err)
	}
}
