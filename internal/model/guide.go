package model

import "time"

// Status is the lifecycle state of a guide.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Editable reports whether a guide in this status accepts content changes
// from its author. A pending or approved guide must go through Rollback
// (reviewer-only) to become editable again.
func (s Status) Editable() bool {
	return s == StatusDraft || s == StatusRejected
}

// Guide represents a versioned, collaboratively authored document subject
// to approval. This is a pure domain model with no database-specific
// dependencies or tags; it can be used across layers without coupling to
// persistence.
//
// Version starts at 1 and increases by exactly 1 on every content change
// (edit or rollback); it never decreases and is never reused.
type Guide struct {
	ID         string     `json:"id"`
	TenantID   string     `json:"tenant_id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Status     Status     `json:"status"`
	Version    int        `json:"version"`
	CreatedBy  string     `json:"created_by"`
	ApprovedBy *string    `json:"approved_by,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	DeletedAt  *time.Time `json:"-"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
