package storage

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"nearshare/models"
)

func TestOpenCreatesDatabaseAndAppliesMigrations(t *testing.T) {
	dataDir := t.TempDir()
	store, dbPath, err := Open(dataDir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}()

	if dbPath != filepath.Join(dataDir, DefaultDBFileName) {
		t.Fatalf("unexpected db path: got %q", dbPath)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("database file not created: %v", err)
	}

	var version int
	if err := store.db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		t.Fatalf("read user_version: %v", err)
	}
	if version != len(migrations) {
		t.Fatalf("expected schema version %d, got %d", len(migrations), version)
	}

	var journalMode string
	if err := store.db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		t.Fatalf("read journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Fatalf("expected journal_mode wal, got %q", journalMode)
	}

	expectedTables := []string{
		"transfers",
		"transfer_items",
	}
	for _, table := range expectedTables {
		var count int
		if err := store.db.QueryRow(
			"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name = ?",
			table,
		).Scan(&count); err != nil {
			t.Fatalf("check table %q: %v", table, err)
		}
		if count != 1 {
			t.Fatalf("expected table %q to exist", table)
		}
	}
}

func TestOpenIsIdempotentOnExistingDatabase(t *testing.T) {
	dataDir := t.TempDir()
	first, _, err := Open(dataDir)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	second, _, err := Open(dataDir)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer second.Close()

	var version int
	if err := second.db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		t.Fatalf("read user_version: %v", err)
	}
	if version != len(migrations) {
		t.Fatalf("expected schema version %d after reopen, got %d", len(migrations), version)
	}
}

func TestOpenEnforcesForeignKeys(t *testing.T) {
	store := newTestStore(t)
	if err := store.requireForeignKeys(); err != nil {
		t.Fatalf("requireForeignKeys failed: %v", err)
	}
	_, err := store.db.Exec(`INSERT INTO transfer_items (transfer_id, payload_id, kind) VALUES ('missing', 1, 'text')`)
	if err == nil {
		t.Fatalf("expected item insert without a transfer to fail")
	}
}

func TestOpenClearsOrphanItemsAndExpiredHistory(t *testing.T) {
	dataDir := t.TempDir()
	store, dbPath, err := Open(dataDir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	mustSaveTransfer(t, store, "kept", models.DirectionReceive, nowUnixMilli())
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// A connection without _foreign_keys can leave rows the store never writes.
	raw, err := sql.Open("sqlite3", "file:"+filepath.ToSlash(dbPath))
	if err != nil {
		t.Fatalf("open raw connection: %v", err)
	}
	expired := time.Now().Add(-DefaultHistoryRetention - time.Hour).UnixMilli()
	statements := []struct {
		query string
		args  []any
	}{
		{`INSERT INTO transfers (transfer_id, direction, started_at) VALUES ('old', 'send', ?)`, []any{expired}},
		{`INSERT INTO transfer_items (transfer_id, payload_id, kind) VALUES ('old', 1, 'file')`, nil},
		{`INSERT INTO transfer_items (transfer_id, payload_id, kind) VALUES ('gone', 2, 'text')`, nil},
		{`INSERT INTO transfer_items (transfer_id, payload_id, kind) VALUES ('kept', 3, 'text')`, nil},
	}
	for _, stmt := range statements {
		if _, err := raw.Exec(stmt.query, stmt.args...); err != nil {
			t.Fatalf("seed %q: %v", stmt.query, err)
		}
	}
	if err := raw.Close(); err != nil {
		t.Fatalf("close raw connection: %v", err)
	}

	reopened, _, err := Open(dataDir)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	var transfers, items int
	if err := reopened.db.QueryRow(`SELECT COUNT(1) FROM transfers`).Scan(&transfers); err != nil {
		t.Fatalf("count transfers: %v", err)
	}
	if err := reopened.db.QueryRow(`SELECT COUNT(1) FROM transfer_items`).Scan(&items); err != nil {
		t.Fatalf("count items: %v", err)
	}
	if transfers != 1 || items != 1 {
		t.Fatalf("expected only the kept transfer and its item, got %d transfers and %d items", transfers, items)
	}
	if _, err := reopened.GetTransfer("old"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired transfer survived reopen")
	}
}

func TestMaintainPrunesWithConfiguredRetention(t *testing.T) {
	store := newTestStore(t)
	mustSaveTransfer(t, store, "recent", models.DirectionSend, nowUnixMilli())
	hourAgo := time.Now().Add(-time.Hour).UnixMilli()
	if _, err := store.db.Exec(`INSERT INTO transfers (transfer_id, direction, started_at) VALUES ('hour-old', 'send', ?)`, hourAgo); err != nil {
		t.Fatalf("seed transfer: %v", err)
	}

	store.SetHistoryRetention(time.Minute)
	if err := store.maintain(); err != nil {
		t.Fatalf("maintain failed: %v", err)
	}

	if _, err := store.GetTransfer("hour-old"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("transfer past retention survived maintenance")
	}
	if _, err := store.GetTransfer("recent"); err != nil {
		t.Fatalf("recent transfer pruned: %v", err)
	}
}
