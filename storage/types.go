package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"nearshare/models"
)

var (
	// ErrNotFound indicates a requested row does not exist.
	ErrNotFound = errors.New("storage: record not found")
)

const (
	defaultListLimit = 50
	maxListLimit     = 1000
)

// TransferFilter narrows ListTransfers query results.
type TransferFilter struct {
	Direction      string
	PeerEndpointID string
	Status         string
	Limit          int
	Offset         int
}

type scanner interface {
	Scan(dest ...any) error
}

func validateDirection(direction string) error {
	switch direction {
	case models.DirectionSend, models.DirectionReceive:
		return nil
	default:
		return fmt.Errorf("invalid transfer direction %q", direction)
	}
}

func validateTransferStatus(status string) error {
	switch status {
	case models.TransferStatusPending, models.TransferStatusAccepted, models.TransferStatusRejected,
		models.TransferStatusComplete, models.TransferStatusFailed:
		return nil
	default:
		return fmt.Errorf("invalid transfer status %q", status)
	}
}

func validateItemKind(kind string) error {
	switch kind {
	case models.ItemKindFile, models.ItemKindText, models.ItemKindWifi:
		return nil
	default:
		return fmt.Errorf("invalid transfer item kind %q", kind)
	}
}

// terminalStatus reports whether a transfer in status will not change again.
func terminalStatus(status string) bool {
	switch status {
	case models.TransferStatusRejected, models.TransferStatusComplete, models.TransferStatusFailed:
		return true
	default:
		return false
	}
}

func nullString(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}

func nullInt64(v int64) sql.NullInt64 {
	if v == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: v, Valid: true}
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func nowUnixMilli() int64 {
	return time.Now().UnixMilli()
}
