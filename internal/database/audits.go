package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kamilpajak/verity/pkg/models"
)

// Audit represents a stored audit run.
type Audit struct {
	ID              uuid.UUID
	DocumentName    string
	Framework       string
	Strategy        string
	ComplianceScore float64
	Summary         *models.Summary
	CreatedAt       time.Time
}

// auditColumns is the standard column list for audit queries.
const auditColumns = `id, document_name, framework, strategy, compliance_score, summary, created_at`

// scanAudit scans a row into an Audit struct and unmarshals the summary JSON.
func scanAudit(row pgx.Row) (*Audit, error) {
	var a Audit
	var summaryJSON []byte
	err := row.Scan(
		&a.ID, &a.DocumentName, &a.Framework, &a.Strategy,
		&a.ComplianceScore, &summaryJSON, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if len(summaryJSON) > 0 {
		var s models.Summary
		if err := json.Unmarshal(summaryJSON, &s); err != nil {
			return nil, fmt.Errorf("failed to unmarshal audit summary: %w", err)
		}
		a.Summary = &s
	}
	return &a, nil
}

// SaveAudit persists a completed audit summary.
func (db *DB) SaveAudit(ctx context.Context, summary *models.Summary) (*Audit, error) {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal audit summary: %w", err)
	}

	row := db.pool.QueryRow(ctx, `
		INSERT INTO audits (document_name, framework, strategy, compliance_score, summary)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+auditColumns,
		summary.DocumentName, string(summary.Framework), string(summary.Strategy),
		summary.ComplianceScore, summaryJSON,
	)
	return scanAudit(row)
}

// GetAudit returns a stored audit by ID, or nil if not found.
func (db *DB) GetAudit(ctx context.Context, id uuid.UUID) (*Audit, error) {
	row := db.pool.QueryRow(ctx, `
		SELECT `+auditColumns+` FROM audits WHERE id = $1`, id)
	return scanAudit(row)
}

// ListAudits returns stored audits, newest first.
func (db *DB) ListAudits(ctx context.Context, limit int) ([]*Audit, error) {
	if limit < 1 {
		limit = 50
	}

	rows, err := db.pool.Query(ctx, `
		SELECT `+auditColumns+` FROM audits
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audits: %w", err)
	}
	defer rows.Close()

	var audits []*Audit
	for rows.Next() {
		a, err := scanAudit(rows)
		if err != nil {
			return nil, err
		}
		audits = append(audits, a)
	}
	return audits, rows.Err()
}
