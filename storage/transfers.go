package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"nearshare/models"
)

// SetHistoryRetention configures the automatic transfer-history pruning horizon.
func (s *Store) SetHistoryRetention(retention time.Duration) {
	if retention <= 0 {
		retention = DefaultHistoryRetention
	}
	s.historyRetention = retention
}

// SaveTransfer inserts a new transfer row.
func (s *Store) SaveTransfer(transfer models.Transfer) error {
	if transfer.TransferID == "" {
		return errors.New("transfer_id is required")
	}
	if err := validateDirection(transfer.Direction); err != nil {
		return err
	}
	if transfer.Status == "" {
		transfer.Status = models.TransferStatusPending
	}
	if err := validateTransferStatus(transfer.Status); err != nil {
		return err
	}
	if transfer.StartedAt == 0 {
		transfer.StartedAt = nowUnixMilli()
	}
	if transfer.PeerDeviceType == "" {
		transfer.PeerDeviceType = "unknown"
	}

	_, err := s.db.Exec(
		`INSERT INTO transfers (
			transfer_id,
			direction,
			peer_endpoint_id,
			peer_name,
			peer_device_type,
			remote_address,
			status,
			error_message,
			started_at,
			finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		transfer.TransferID,
		transfer.Direction,
		transfer.PeerEndpointID,
		transfer.PeerName,
		transfer.PeerDeviceType,
		transfer.RemoteAddress,
		transfer.Status,
		nullString(transfer.Error),
		transfer.StartedAt,
		nullInt64(transfer.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("insert transfer %q: %w", transfer.TransferID, err)
	}

	if s.historyRetention > 0 {
		cutoff := time.Now().Add(-s.historyRetention).UnixMilli()
		if _, err := s.PruneTransfers(cutoff); err != nil {
			return fmt.Errorf("prune transfers: %w", err)
		}
	}

	return nil
}

// UpdateTransferStatus moves a transfer to status. Terminal statuses stamp
// finished_at; a non-empty errorMessage replaces the stored error.
func (s *Store) UpdateTransferStatus(transferID, status, errorMessage string) error {
	if transferID == "" {
		return errors.New("transfer_id is required")
	}
	if err := validateTransferStatus(status); err != nil {
		return err
	}

	var finishedAt sql.NullInt64
	if terminalStatus(status) {
		finishedAt = nullInt64(nowUnixMilli())
	}

	res, err := s.db.Exec(
		`UPDATE transfers
		SET status = ?,
			error_message = COALESCE(?, error_message),
			finished_at = COALESCE(?, finished_at)
		WHERE transfer_id = ?`,
		status,
		nullString(errorMessage),
		finishedAt,
		transferID,
	)
	if err != nil {
		return fmt.Errorf("update transfer status %q: %w", transferID, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected for transfer status %q: %w", transferID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// AddTransferItem records one announced payload of a transfer.
func (s *Store) AddTransferItem(item models.TransferItem) error {
	if item.TransferID == "" {
		return errors.New("transfer_id is required")
	}
	if err := validateItemKind(item.Kind); err != nil {
		return err
	}

	_, err := s.db.Exec(
		`INSERT INTO transfer_items (
			transfer_id,
			payload_id,
			kind,
			name,
			size,
			mime_type,
			stored_path,
			complete
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.TransferID,
		item.PayloadID,
		item.Kind,
		item.Name,
		item.Size,
		item.MimeType,
		item.StoredPath,
		boolToInt(item.Complete),
	)
	if err != nil {
		return fmt.Errorf("insert transfer item %q/%d: %w", item.TransferID, item.PayloadID, err)
	}

	return nil
}

// MarkItemComplete flags a payload as fully delivered, recording where it was stored.
func (s *Store) MarkItemComplete(transferID string, payloadID int64, storedPath string) error {
	res, err := s.db.Exec(
		`UPDATE transfer_items
		SET complete = 1,
			stored_path = ?
		WHERE transfer_id = ? AND payload_id = ?`,
		storedPath,
		transferID,
		payloadID,
	)
	if err != nil {
		return fmt.Errorf("mark transfer item %q/%d complete: %w", transferID, payloadID, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected for transfer item %q/%d: %w", transferID, payloadID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

const transferColumns = `
		transfer_id,
		direction,
		peer_endpoint_id,
		peer_name,
		peer_device_type,
		remote_address,
		status,
		error_message,
		started_at,
		finished_at`

// GetTransfer fetches a transfer and its items.
func (s *Store) GetTransfer(transferID string) (*models.Transfer, error) {
	row := s.db.QueryRow(`SELECT`+transferColumns+`
		FROM transfers
		WHERE transfer_id = ?`,
		transferID,
	)

	transfer, err := scanTransfer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get transfer %q: %w", transferID, err)
	}

	items, err := s.transferItems(transferID)
	if err != nil {
		return nil, err
	}
	transfer.Items = items

	return transfer, nil
}

// ListTransfers returns the most recent transfers first, without items.
func (s *Store) ListTransfers(filter TransferFilter) ([]models.Transfer, error) {
	if filter.Direction != "" {
		if err := validateDirection(filter.Direction); err != nil {
			return nil, err
		}
	}
	if filter.Status != "" {
		if err := validateTransferStatus(filter.Status); err != nil {
			return nil, err
		}
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := max(filter.Offset, 0)

	query := strings.Builder{}
	query.WriteString(`SELECT` + transferColumns + `
	FROM transfers`)

	where := make([]string, 0, 3)
	args := make([]any, 0, 5)

	if filter.Direction != "" {
		where = append(where, "direction = ?")
		args = append(args, filter.Direction)
	}
	if filter.PeerEndpointID != "" {
		where = append(where, "peer_endpoint_id = ?")
		args = append(args, filter.PeerEndpointID)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}

	if len(where) > 0 {
		query.WriteString(" WHERE ")
		query.WriteString(strings.Join(where, " AND "))
	}
	query.WriteString(" ORDER BY started_at DESC, transfer_id LIMIT ? OFFSET ?")
	args = append(args, limit, offset)

	rows, err := s.db.Query(query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()

	transfers := make([]models.Transfer, 0)
	for rows.Next() {
		transfer, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transfer row: %w", err)
		}
		transfers = append(transfers, *transfer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transfer rows: %w", err)
	}

	return transfers, nil
}

// PruneTransfers removes transfers (and their items) started before cutoffTimestamp.
func (s *Store) PruneTransfers(cutoffTimestamp int64) (int64, error) {
	if cutoffTimestamp <= 0 {
		return 0, errors.New("cutoff timestamp must be > 0")
	}

	res, err := s.db.Exec(`DELETE FROM transfers WHERE started_at < ?`, cutoffTimestamp)
	if err != nil {
		return 0, fmt.Errorf("prune transfers: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read rows affected for transfer prune: %w", err)
	}

	return rowsAffected, nil
}

func (s *Store) transferItems(transferID string) ([]models.TransferItem, error) {
	rows, err := s.db.Query(
		`SELECT
			transfer_id,
			payload_id,
			kind,
			name,
			size,
			mime_type,
			stored_path,
			complete
		FROM transfer_items
		WHERE transfer_id = ?
		ORDER BY rowid`,
		transferID,
	)
	if err != nil {
		return nil, fmt.Errorf("get transfer items %q: %w", transferID, err)
	}
	defer rows.Close()

	items := make([]models.TransferItem, 0)
	for rows.Next() {
		var (
			item     models.TransferItem
			complete int
		)
		if err := rows.Scan(
			&item.TransferID,
			&item.PayloadID,
			&item.Kind,
			&item.Name,
			&item.Size,
			&item.MimeType,
			&item.StoredPath,
			&complete,
		); err != nil {
			return nil, fmt.Errorf("scan transfer item row: %w", err)
		}
		item.Complete = complete != 0
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transfer item rows: %w", err)
	}

	return items, nil
}

func scanTransfer(row scanner) (*models.Transfer, error) {
	var (
		transfer   models.Transfer
		errMessage sql.NullString
		finishedAt sql.NullInt64
	)
	if err := row.Scan(
		&transfer.TransferID,
		&transfer.Direction,
		&transfer.PeerEndpointID,
		&transfer.PeerName,
		&transfer.PeerDeviceType,
		&transfer.RemoteAddress,
		&transfer.Status,
		&errMessage,
		&transfer.StartedAt,
		&finishedAt,
	); err != nil {
		return nil, err
	}
	transfer.Error = errMessage.String
	transfer.FinishedAt = finishedAt.Int64
	return &transfer, nil
}
