package model

import "time"

// ChangeType captures which operation produced a history entry.
type ChangeType string

const (
	ChangeEdit     ChangeType = "edit"
	ChangeSubmit   ChangeType = "submit"
	ChangeApprove  ChangeType = "approve"
	ChangeReject   ChangeType = "reject"
	ChangeRollback ChangeType = "rollback"
)

// ContentBearing reports whether entries of this type introduced the
// content at their version. Only such entries participate in exact
// version lookups for rollback; submit/approve/reject snapshots share
// the version of the preceding content change.
func (t ChangeType) ContentBearing() bool {
	return t == ChangeEdit || t == ChangeRollback
}

// HistoryEntry is an immutable audit-trail snapshot of a guide captured
// at one transition. Entries are append-only and permanent: they are
// never updated or deleted, even after the parent guide is removed.
type HistoryEntry struct {
	ID         string     `json:"id"`
	TenantID   string     `json:"tenant_id"`
	GuideID    string     `json:"guide_id"`
	Version    int        `json:"version"`
	Content    string     `json:"content"`
	Status     Status     `json:"status"`
	ChangeType ChangeType `json:"change_type"`
	ChangedBy  string     `json:"changed_by"`
	ChangedAt  time.Time  `json:"changed_at"`
}
