package postgres

import (
	"context"

	"guideapi/internal/model"
	"guideapi/internal/repository"
)

// HistoryPostgres is a PostgreSQL implementation of repository.HistoryLedger.
// The guide_history table is append-only; this type intentionally has no
// update or delete methods.
type HistoryPostgres struct {
	db DBTX
}

// NewHistoryPostgres creates a new HistoryPostgres ledger.
func NewHistoryPostgres(db DBTX) *HistoryPostgres {
	return &HistoryPostgres{db: db}
}

var _ repository.HistoryLedger = (*HistoryPostgres)(nil)

const historyColumns = `id, tenant_id, guide_id, version, content, status, change_type, changed_by, changed_at`

func scanHistoryEntry(row interface{ Scan(...any) error }) (*model.HistoryEntry, error) {
	var e model.HistoryEntry
	if err := row.Scan(
		&e.ID,
		&e.TenantID,
		&e.GuideID,
		&e.Version,
		&e.Content,
		&e.Status,
		&e.ChangeType,
		&e.ChangedBy,
		&e.ChangedAt,
	); err != nil {
		return nil, err
	}
	return &e, nil
}

// Append inserts a new history entry and returns the stored record.
func (r *HistoryPostgres) Append(ctx context.Context, e *model.HistoryEntry) (*model.HistoryEntry, error) {
	const q = `
		INSERT INTO guide_history (id, tenant_id, guide_id, version, content, status, change_type, changed_by, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + historyColumns
	row := r.db.QueryRowContext(ctx, q,
		e.ID,
		e.TenantID,
		e.GuideID,
		e.Version,
		e.Content,
		e.Status,
		e.ChangeType,
		e.ChangedBy,
		e.ChangedAt,
	)
	return scanHistoryEntry(row)
}

// ListByDocument returns every entry for a guide, most recent first.
// The ledger has no join to guides, so entries resolve even after the
// parent guide is tombstoned. The seq tie-break keeps same-timestamp
// transitions in append order.
func (r *HistoryPostgres) ListByDocument(ctx context.Context, tenantID, guideID string) ([]model.HistoryEntry, error) {
	const q = `
		SELECT ` + historyColumns + `
		FROM guide_history
		WHERE tenant_id = $1 AND guide_id = $2
		ORDER BY changed_at DESC, seq DESC
	`
	rows, err := r.db.QueryContext(ctx, q, tenantID, guideID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]model.HistoryEntry, 0)
	for rows.Next() {
		e, err := scanHistoryEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// FindVersion returns the entry that introduced the given version.
// Exact match only, restricted to content-bearing change types; a
// version that never existed surfaces as sql.ErrNoRows.
func (r *HistoryPostgres) FindVersion(ctx context.Context, tenantID, guideID string, version int) (*model.HistoryEntry, error) {
	const q = `
		SELECT ` + historyColumns + `
		FROM guide_history
		WHERE tenant_id = $1 AND guide_id = $2 AND version = $3 AND change_type IN ('edit', 'rollback')
	`
	return scanHistoryEntry(r.db.QueryRowContext(ctx, q, tenantID, guideID, version))
}
