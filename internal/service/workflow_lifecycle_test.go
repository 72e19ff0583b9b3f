package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"guideapi/internal/metrics"
	"guideapi/internal/model"
	"guideapi/internal/notification"
	"guideapi/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory repository.Store for exercising full
// lifecycles without a database. Writes inside InTx are applied
// directly; the engine's gate checks all run before the first write, so
// failed operations leave the store untouched just like a rollback.
type memStore struct {
	guides  map[string]model.Guide
	entries []model.HistoryEntry
}

func newMemStore() *memStore {
	return &memStore{guides: make(map[string]model.Guide)}
}

func (s *memStore) Guides() repository.GuideRepository { return &memGuides{s} }
func (s *memStore) Ledger() repository.HistoryLedger   { return &memLedger{s} }
func (s *memStore) InTx(ctx context.Context, fn repository.TxFunc) error {
	return fn(s.Guides(), s.Ledger())
}

type memGuides struct{ s *memStore }

func (r *memGuides) Create(ctx context.Context, g *model.Guide) (*model.Guide, error) {
	r.s.guides[g.ID] = *g
	out := *g
	return &out, nil
}

func (r *memGuides) find(tenantID, id string) (model.Guide, bool) {
	g, ok := r.s.guides[id]
	if !ok || g.TenantID != tenantID || g.DeletedAt != nil {
		return model.Guide{}, false
	}
	return g, true
}

func (r *memGuides) FindByID(ctx context.Context, tenantID, id string) (*model.Guide, error) {
	g, ok := r.find(tenantID, id)
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &g, nil
}

func (r *memGuides) FindByIDForUpdate(ctx context.Context, tenantID, id string) (*model.Guide, error) {
	return r.FindByID(ctx, tenantID, id)
}

func (r *memGuides) Update(ctx context.Context, g *model.Guide, expectedVersion int) error {
	stored, ok := r.find(g.TenantID, g.ID)
	if !ok || stored.Version != expectedVersion {
		return repository.ErrStaleVersion
	}
	r.s.guides[g.ID] = *g
	return nil
}

func (r *memGuides) SoftDelete(ctx context.Context, tenantID, id string, at time.Time) error {
	g, ok := r.find(tenantID, id)
	if !ok {
		return sql.ErrNoRows
	}
	g.DeletedAt = &at
	r.s.guides[id] = g
	return nil
}

func (r *memGuides) List(ctx context.Context, tenantID string, pq repository.PageQuery) (*repository.PageResult[model.Guide], error) {
	var items []model.Guide
	for _, g := range r.s.guides {
		if g.TenantID == tenantID && g.DeletedAt == nil {
			items = append(items, g)
		}
	}
	return &repository.PageResult[model.Guide]{Items: items, Total: len(items)}, nil
}

type memLedger struct{ s *memStore }

func (l *memLedger) Append(ctx context.Context, e *model.HistoryEntry) (*model.HistoryEntry, error) {
	l.s.entries = append(l.s.entries, *e)
	out := *e
	return &out, nil
}

func (l *memLedger) ListByDocument(ctx context.Context, tenantID, guideID string) ([]model.HistoryEntry, error) {
	var out []model.HistoryEntry
	for i := len(l.s.entries) - 1; i >= 0; i-- {
		e := l.s.entries[i]
		if e.TenantID == tenantID && e.GuideID == guideID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (l *memLedger) FindVersion(ctx context.Context, tenantID, guideID string, version int) (*model.HistoryEntry, error) {
	for _, e := range l.s.entries {
		if e.TenantID == tenantID && e.GuideID == guideID && e.Version == version && e.ChangeType.ContentBearing() {
			out := e
			return &out, nil
		}
	}
	return nil, sql.ErrNoRows
}

func TestWorkflowLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := NewWorkflowService(store, notification.Noop{}, nil, metrics.NewUnregistered(), zerolog.Nop())

	writer := model.Actor{ID: "user-a", Role: model.RoleMember, TenantID: "tenant-1"}
	other := model.Actor{ID: "user-b", Role: model.RoleMember, TenantID: "tenant-1"}
	reviewer := model.Actor{ID: "user-r", Role: model.RoleManager, TenantID: "tenant-1"}
	outsider := model.Actor{ID: "user-x", Role: model.RoleAdmin, TenantID: "tenant-2"}

	// Author creates and revises a guide, then sends it for review.
	g, err := svc.Create(ctx, writer, "Trash Rules", "v1")
	require.NoError(t, err)
	assert.Equal(t, 1, g.Version)
	assert.Equal(t, model.StatusDraft, g.Status)

	g, err = svc.Edit(ctx, writer, g.ID, "v2", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, g.Version)

	// Someone else in the tenant cannot touch it.
	_, err = svc.Edit(ctx, other, g.ID, "hijacked", 2)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	// Nobody outside the tenant can even see it.
	_, err = svc.Get(ctx, outsider, g.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Edit(ctx, outsider, g.ID, "cross-tenant", 2)
	assert.ErrorIs(t, err, ErrNotFound)

	g, err = svc.Submit(ctx, writer, g.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, g.Status)
	assert.Equal(t, 2, g.Version)

	// Pending content is frozen.
	_, err = svc.Edit(ctx, writer, g.ID, "v3", 2)
	assert.ErrorIs(t, err, ErrInvalidState)

	g, err = svc.Approve(ctx, reviewer, g.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, g.Status)
	require.NotNil(t, g.ApprovedBy)
	assert.Equal(t, reviewer.ID, *g.ApprovedBy)

	// Rolling back to a version that never had content fails cleanly.
	_, err = svc.Rollback(ctx, reviewer, g.ID, 99, 2)
	assert.ErrorIs(t, err, ErrNotFound)

	// Rollback restores v1's content under version 3, back in draft.
	g, err = svc.Rollback(ctx, reviewer, g.ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, g.Version)
	assert.Equal(t, "v1", g.Content)
	assert.Equal(t, model.StatusDraft, g.Status)

	// The trail shows every transition, newest first.
	entries, err := svc.GetHistory(ctx, reviewer, g.ID)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	wantTypes := []model.ChangeType{
		model.ChangeRollback,
		model.ChangeApprove,
		model.ChangeSubmit,
		model.ChangeEdit,
		model.ChangeEdit,
	}
	for i, want := range wantTypes {
		assert.Equal(t, want, entries[i].ChangeType, "entry %d", i)
	}

	// A stale base version is rejected once someone else has moved on.
	_, err = svc.Edit(ctx, writer, g.ID, "late edit", 2)
	assert.ErrorIs(t, err, ErrConflict)

	// Removal tombstones the guide but keeps the trail queryable.
	err = svc.Remove(ctx, reviewer, g.ID)
	require.NoError(t, err)
	_, err = svc.Get(ctx, writer, g.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	entries, err = svc.GetHistory(ctx, reviewer, g.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 5)
}
