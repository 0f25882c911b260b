package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	// DefaultDBFileName is the SQLite filename under app data dir.
	DefaultDBFileName = "history.db"
	// DefaultMaintenanceInterval is how often expired history is pruned and
	// the WAL truncated while the store is open.
	DefaultMaintenanceInterval = 24 * time.Hour
	// DefaultHistoryRetention controls automatic transfer history pruning.
	DefaultHistoryRetention = 90 * 24 * time.Hour
)

var migrations = []string{
	`
CREATE TABLE IF NOT EXISTS transfers (
  transfer_id      TEXT PRIMARY KEY,
  direction        TEXT NOT NULL CHECK(direction IN ('send','receive')),
  peer_endpoint_id TEXT NOT NULL DEFAULT '',
  peer_name        TEXT NOT NULL DEFAULT '',
  peer_device_type TEXT NOT NULL DEFAULT 'unknown',
  remote_address   TEXT NOT NULL DEFAULT '',
  status           TEXT NOT NULL CHECK(status IN ('pending','accepted','rejected','complete','failed')) DEFAULT 'pending',
  error_message    TEXT,
  started_at       INTEGER NOT NULL,
  finished_at      INTEGER
);
`,
	`
CREATE INDEX IF NOT EXISTS idx_transfers_started_at
ON transfers (started_at DESC, transfer_id);
`,
	`
CREATE INDEX IF NOT EXISTS idx_transfers_peer_time
ON transfers (peer_endpoint_id, started_at DESC);
`,
	`
CREATE TABLE IF NOT EXISTS transfer_items (
  transfer_id  TEXT NOT NULL REFERENCES transfers(transfer_id) ON DELETE CASCADE,
  payload_id   INTEGER NOT NULL,
  kind         TEXT NOT NULL CHECK(kind IN ('file','text','wifi')),
  name         TEXT NOT NULL DEFAULT '',
  size         INTEGER NOT NULL DEFAULT 0,
  mime_type    TEXT NOT NULL DEFAULT '',
  stored_path  TEXT NOT NULL DEFAULT '',
  complete     INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (transfer_id, payload_id)
);
`,
}

// Store holds transfer history in SQLite. A background loop prunes rows past
// the retention horizon and truncates the WAL.
type Store struct {
	db *sql.DB

	maintenanceInterval time.Duration
	maintenanceStop     chan struct{}
	maintenanceWG       sync.WaitGroup
	historyRetention    time.Duration
	closeOnce           sync.Once
}

// Open opens (or creates) history.db under the given data directory and runs migrations.
func Open(dataDir string) (*Store, string, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, "", fmt.Errorf("create storage directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DefaultDBFileName)
	store, err := OpenPath(dbPath)
	if err != nil {
		return nil, "", err
	}

	return store, dbPath, nil
}

// OpenPath opens the history database at dbPath, migrates it and clears out
// expired transfers and item rows whose transfer is gone.
func OpenPath(dbPath string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", filepath.ToSlash(dbPath))
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &Store{
		db:                  db,
		maintenanceInterval: DefaultMaintenanceInterval,
		maintenanceStop:     make(chan struct{}),
		historyRetention:    DefaultHistoryRetention,
	}
	setup := []func() error{
		store.requireForeignKeys,
		store.enableWALMode,
		store.applyMigrations,
		store.removeOrphanItems,
		store.maintain,
	}
	for _, step := range setup {
		if err := step(); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	store.startMaintenanceLoop()

	return store, nil
}

// Close stops the maintenance loop and closes the SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	var closeErr error
	s.closeOnce.Do(func() {
		if s.maintenanceStop != nil {
			close(s.maintenanceStop)
			s.maintenanceWG.Wait()
		}
		closeErr = s.db.Close()
		s.db = nil
	})
	return closeErr
}

// requireForeignKeys fails unless SQLite enforces foreign keys; pruning a
// transfer relies on the cascade to drop its items.
func (s *Store) requireForeignKeys() error {
	var enabled int
	if err := s.db.QueryRow("PRAGMA foreign_keys;").Scan(&enabled); err != nil {
		return fmt.Errorf("read foreign_keys: %w", err)
	}
	if enabled != 1 {
		return errors.New("sqlite foreign keys are disabled; transfer items would outlive their transfers")
	}
	return nil
}

// removeOrphanItems deletes item rows written while foreign keys were off.
func (s *Store) removeOrphanItems() error {
	_, err := s.db.Exec(`DELETE FROM transfer_items
		WHERE transfer_id NOT IN (SELECT transfer_id FROM transfers)`)
	if err != nil {
		return fmt.Errorf("remove orphan transfer items: %w", err)
	}
	return nil
}

func (s *Store) applyMigrations() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if version >= len(migrations) {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin migration transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i := version; i < len(migrations); i++ {
		if _, err := tx.Exec(migrations[i]); err != nil {
			return fmt.Errorf("apply migration %d: %w", i+1, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d;", i+1)); err != nil {
			return fmt.Errorf("set schema version %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration transaction: %w", err)
	}

	return nil
}

func (s *Store) enableWALMode() error {
	var journalMode string
	if err := s.db.QueryRow("PRAGMA journal_mode=WAL;").Scan(&journalMode); err != nil {
		return fmt.Errorf("enable WAL mode: %w", err)
	}
	if !strings.EqualFold(journalMode, "wal") {
		return fmt.Errorf("enable WAL mode: unexpected journal mode %q", journalMode)
	}
	return nil
}

func (s *Store) checkpointWAL() error {
	if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE);"); err != nil {
		return fmt.Errorf("wal checkpoint truncate: %w", err)
	}
	return nil
}

// maintain prunes history past the retention horizon, then truncates the WAL
// so the freed pages leave the log.
func (s *Store) maintain() error {
	if s.historyRetention > 0 {
		cutoff := time.Now().Add(-s.historyRetention).UnixMilli()
		if _, err := s.PruneTransfers(cutoff); err != nil {
			return err
		}
	}
	return s.checkpointWAL()
}

func (s *Store) startMaintenanceLoop() {
	interval := s.maintenanceInterval
	if interval <= 0 || s.maintenanceStop == nil {
		return
	}

	s.maintenanceWG.Add(1)
	go func() {
		defer s.maintenanceWG.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				_ = s.maintain()
			case <-s.maintenanceStop:
				return
			}
		}
	}()
}
