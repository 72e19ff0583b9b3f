package postgres

import (
	"context"
	"database/sql"
	"time"

	"guideapi/internal/model"
	"guideapi/internal/repository"
)

// GuidePostgres is a PostgreSQL implementation of repository.GuideRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type GuidePostgres struct {
	db DBTX
}

// NewGuidePostgres creates a new GuidePostgres repository.
func NewGuidePostgres(db DBTX) *GuidePostgres {
	return &GuidePostgres{db: db}
}

var _ repository.GuideRepository = (*GuidePostgres)(nil)

const guideColumns = `id, tenant_id, title, content, status, version, created_by, approved_by, approved_at, deleted_at, created_at, updated_at`

func scanGuide(row interface{ Scan(...any) error }) (*model.Guide, error) {
	var g model.Guide
	if err := row.Scan(
		&g.ID,
		&g.TenantID,
		&g.Title,
		&g.Content,
		&g.Status,
		&g.Version,
		&g.CreatedBy,
		&g.ApprovedBy,
		&g.ApprovedAt,
		&g.DeletedAt,
		&g.CreatedAt,
		&g.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &g, nil
}

// Create inserts a new guide row and returns the stored record.
func (r *GuidePostgres) Create(ctx context.Context, g *model.Guide) (*model.Guide, error) {
	const q = `
		INSERT INTO guides (id, tenant_id, title, content, status, version, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + guideColumns
	row := r.db.QueryRowContext(ctx, q,
		g.ID,
		g.TenantID,
		g.Title,
		g.Content,
		g.Status,
		g.Version,
		g.CreatedBy,
		g.CreatedAt,
		g.UpdatedAt,
	)
	return scanGuide(row)
}

// FindByID fetches a single live guide scoped to the tenant.
func (r *GuidePostgres) FindByID(ctx context.Context, tenantID, id string) (*model.Guide, error) {
	const q = `
		SELECT ` + guideColumns + `
		FROM guides
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
	`
	return scanGuide(r.db.QueryRowContext(ctx, q, id, tenantID))
}

// FindByIDForUpdate fetches a live guide and takes a row lock for the
// duration of the surrounding transaction.
func (r *GuidePostgres) FindByIDForUpdate(ctx context.Context, tenantID, id string) (*model.Guide, error) {
	const q = `
		SELECT ` + guideColumns + `
		FROM guides
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
		FOR UPDATE
	`
	return scanGuide(r.db.QueryRowContext(ctx, q, id, tenantID))
}

// Update writes the mutable guide fields, guarded by a compare-and-swap
// on expectedVersion so a concurrent change cannot be silently overwritten.
func (r *GuidePostgres) Update(ctx context.Context, g *model.Guide, expectedVersion int) error {
	const q = `
		UPDATE guides
		SET title = $1, content = $2, status = $3, version = $4, approved_by = $5, approved_at = $6, updated_at = $7
		WHERE id = $8 AND tenant_id = $9 AND version = $10 AND deleted_at IS NULL
	`
	res, err := r.db.ExecContext(ctx, q,
		g.Title,
		g.Content,
		g.Status,
		g.Version,
		g.ApprovedBy,
		g.ApprovedAt,
		g.UpdatedAt,
		g.ID,
		g.TenantID,
		expectedVersion,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrStaleVersion
	}
	return nil
}

// SoftDelete tombstones the guide row. The row itself is retained so the
// ledger's entries keep a resolvable parent.
func (r *GuidePostgres) SoftDelete(ctx context.Context, tenantID, id string, at time.Time) error {
	const q = `
		UPDATE guides
		SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND tenant_id = $3 AND deleted_at IS NULL
	`
	res, err := r.db.ExecContext(ctx, q, at, id, tenantID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// List returns live guides in the tenant using LIMIT/OFFSET pagination
// and a total count.
func (r *GuidePostgres) List(ctx context.Context, tenantID string, pq repository.PageQuery) (*repository.PageResult[model.Guide], error) {
	const qCount = `SELECT COUNT(*) FROM guides WHERE tenant_id = $1 AND deleted_at IS NULL`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, tenantID).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + guideColumns + `
		FROM guides
		WHERE tenant_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, tenantID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Guide, 0)
	for rows.Next() {
		g, err := scanGuide(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Guide]{
		Items: items,
		Total: total,
	}, nil
}
