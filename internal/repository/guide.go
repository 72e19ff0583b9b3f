package repository

import (
	"context"
	"time"

	"guideapi/internal/model"
)

// GuideRepository defines data access for guides using SQL queries only.
// No business logic here, strictly persistence operations.
//
// Every method is tenant-scoped: a guide that exists under a different
// tenant is indistinguishable from an absent row (sql.ErrNoRows), so
// existence is never revealed across tenants. Tombstoned guides are
// excluded from lookups; their history remains readable through the
// HistoryLedger.
type GuideRepository interface {
	// Create inserts a new guide row.
	// Returns the stored guide (may include values set by the DB).
	Create(ctx context.Context, g *model.Guide) (*model.Guide, error)

	// FindByID returns a live guide by tenant and ID.
	FindByID(ctx context.Context, tenantID, id string) (*model.Guide, error)

	// FindByIDForUpdate is FindByID with a row lock (SELECT ... FOR UPDATE).
	// Only meaningful inside a transaction; concurrent mutations of the
	// same guide serialize on this lock.
	FindByIDForUpdate(ctx context.Context, tenantID, id string) (*model.Guide, error)

	// Update persists the guide's mutable fields, compare-and-swapped on
	// expectedVersion. Returns ErrStaleVersion when no row matched.
	Update(ctx context.Context, g *model.Guide, expectedVersion int) error

	// SoftDelete tombstones a guide, keeping the row so the audit trail
	// stays resolvable. Returns sql.ErrNoRows if no live row matched.
	SoftDelete(ctx context.Context, tenantID, id string, at time.Time) error

	// List returns a paginated list of live guides in the tenant and the
	// total row count.
	List(ctx context.Context, tenantID string, pq PageQuery) (*PageResult[model.Guide], error)
}
