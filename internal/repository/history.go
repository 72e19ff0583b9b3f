package repository

import (
	"context"

	"guideapi/internal/model"
)

// HistoryLedger is the append-only audit trail of guide transitions.
// Entries are write-once: there is no update or delete, and reads must
// keep working after the parent guide has been tombstoned.
type HistoryLedger interface {
	// Append persists a new entry and returns it with the DB-assigned id
	// and timestamp.
	Append(ctx context.Context, e *model.HistoryEntry) (*model.HistoryEntry, error)

	// ListByDocument returns all entries for a guide, most recent first.
	ListByDocument(ctx context.Context, tenantID, guideID string) ([]model.HistoryEntry, error)

	// FindVersion returns the content-bearing entry that introduced the
	// given version. Exact match only; sql.ErrNoRows when the version
	// never existed.
	FindVersion(ctx context.Context, tenantID, guideID string, version int) (*model.HistoryEntry, error)
}
