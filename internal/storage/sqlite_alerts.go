package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/good-yellow-bee/blazealert/internal/models"
)

type sqliteAlertRepo struct {
	db *sql.DB
}

const alertColumns = `id, source, severity, title, message, timestamp, status,
	tags_json, metadata_json, fingerprint, duplicate_count,
	first_seen, last_seen, acknowledged_at, resolved_at, acknowledged_by`

func (r *sqliteAlertRepo) Create(ctx context.Context, alert *models.Alert) error {
	tagsJSON, err := json.Marshal(alert.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	metadataJSON, err := json.Marshal(alert.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	query := `
		INSERT INTO alerts (id, source, severity, title, message, timestamp, status,
			tags_json, metadata_json, fingerprint, duplicate_count,
			first_seen, last_seen, acknowledged_at, resolved_at, acknowledged_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		alert.ID, alert.Source, alert.Severity, alert.Title, alert.Message,
		alert.Timestamp, alert.Status,
		string(tagsJSON), string(metadataJSON), alert.Fingerprint, alert.DuplicateCount,
		alert.FirstSeen, alert.LastSeen,
		nullTime(alert.AcknowledgedAt), nullTime(alert.ResolvedAt),
		nullString(alert.AcknowledgedBy),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("insert alert %s: %w", alert.ID, ErrDuplicateID)
		}
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

func (r *sqliteAlertRepo) Update(ctx context.Context, alert *models.Alert) error {
	metadataJSON, err := json.Marshal(alert.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	// Content fields (source, severity, title, message) are immutable
	// after creation and deliberately absent here.
	query := `
		UPDATE alerts SET status = ?, duplicate_count = ?, last_seen = ?,
			acknowledged_at = ?, resolved_at = ?, acknowledged_by = ?, metadata_json = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		alert.Status, alert.DuplicateCount, alert.LastSeen,
		nullTime(alert.AcknowledgedAt), nullTime(alert.ResolvedAt),
		nullString(alert.AcknowledgedBy), string(metadataJSON),
		alert.ID,
	)
	if err != nil {
		return fmt.Errorf("update alert: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("alert not found: %s", alert.ID)
	}
	return nil
}

func (r *sqliteAlertRepo) GetByID(ctx context.Context, id string) (*models.Alert, error) {
	query := "SELECT " + alertColumns + " FROM alerts WHERE id = ?"
	alert, err := scanAlert(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get alert: %w", err)
	}
	return alert, nil
}

func (r *sqliteAlertRepo) Query(ctx context.Context, filter QueryFilter) ([]*models.Alert, error) {
	query := "SELECT " + alertColumns + " FROM alerts WHERE 1=1"
	var args []any

	if filter.Severity != "" {
		query += " AND severity = ?"
		args = append(args, filter.Severity)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.Source != "" {
		query += " AND source = ?"
		args = append(args, filter.Source)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	query += " ORDER BY timestamp DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*models.Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

func (r *sqliteAlertRepo) CleanupOld(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	// Only resolved alerts age out; every other state stays until
	// explicitly resolved.
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM alerts WHERE status = ? AND resolved_at < ?",
		models.StatusResolved, cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("cleanup alerts: %w", err)
	}
	return result.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAlert(row scanner) (*models.Alert, error) {
	alert := &models.Alert{}
	var tagsJSON, metadataJSON string
	var acknowledgedAt, resolvedAt sql.NullTime
	var acknowledgedBy sql.NullString

	err := row.Scan(
		&alert.ID, &alert.Source, &alert.Severity, &alert.Title, &alert.Message,
		&alert.Timestamp, &alert.Status,
		&tagsJSON, &metadataJSON, &alert.Fingerprint, &alert.DuplicateCount,
		&alert.FirstSeen, &alert.LastSeen,
		&acknowledgedAt, &resolvedAt, &acknowledgedBy,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan alert: %w", err)
	}

	if err := json.Unmarshal([]byte(tagsJSON), &alert.Tags); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}
	if err := json.Unmarshal([]byte(metadataJSON), &alert.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}

	if acknowledgedAt.Valid {
		t := acknowledgedAt.Time
		alert.AcknowledgedAt = &t
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time
		alert.ResolvedAt = &t
	}
	alert.AcknowledgedBy = acknowledgedBy.String

	return alert, nil
}

// Helper functions

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
