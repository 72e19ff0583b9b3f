package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"guideapi/internal/metrics"
	"guideapi/internal/model"
	"guideapi/internal/notification"
	"guideapi/internal/repository"
	"guideapi/internal/storage"
)

var (
	ErrNotFound         = errors.New("guide not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrValidation       = errors.New("validation failed")
	ErrInvalidState     = errors.New("operation not allowed in current status")
	ErrConflict         = errors.New("guide version conflict")
)

const (
	maxTitleLen   = 200
	maxContentLen = 1 << 20

	defaultNotifyTimeout = 3 * time.Second
	exportURLExpiry      = 15 * time.Minute
)

// GuideListResult is the service-level DTO for paginated guides.
type GuideListResult struct {
	Items []model.Guide `json:"data"`
	Total int           `json:"total"`
}

// WorkflowService is the guide lifecycle engine: it enforces the
// draft → pending → approved/rejected state machine, the monotonic
// versioning invariant, ownership and reviewer gates, and tenant
// isolation, writing the guide row and its audit entry in one
// transaction.
//
// Every operation takes the acting user's resolved identity (Actor);
// the service trusts it and never re-derives roles or tenancy.
type WorkflowService interface {
	// Create makes a new guide in draft at version 1, owned by the actor.
	Create(ctx context.Context, actor model.Actor, title, content string) (*model.Guide, error)

	// Edit replaces the content of the actor's own guide. Only legal in
	// draft or rejected; any prior review outcome is invalidated by
	// forcing status back to draft. baseVersion is the version the caller
	// last observed; a mismatch fails with ErrConflict.
	Edit(ctx context.Context, actor model.Actor, guideID, content string, baseVersion int) (*model.Guide, error)

	// Submit moves the actor's own draft guide to pending review.
	Submit(ctx context.Context, actor model.Actor, guideID string) (*model.Guide, error)

	// Approve and Reject resolve a pending review. Reviewer-only.
	Approve(ctx context.Context, actor model.Actor, guideID string) (*model.Guide, error)
	Reject(ctx context.Context, actor model.Actor, guideID string) (*model.Guide, error)

	// Rollback restores the content of targetVersion under a new, higher
	// version number. Reviewer-only; the version axis stays monotonic
	// even though the content moves backward.
	Rollback(ctx context.Context, actor model.Actor, guideID string, targetVersion, baseVersion int) (*model.Guide, error)

	// Remove tombstones a guide. Reviewer-only. The audit trail remains
	// fully queryable afterwards.
	Remove(ctx context.Context, actor model.Actor, guideID string) error

	// Get returns a single live guide in the actor's tenant.
	Get(ctx context.Context, actor model.Actor, guideID string) (*model.Guide, error)

	// List returns live guides in the actor's tenant using limit/offset.
	List(ctx context.Context, actor model.Actor, limit, offset int) (*GuideListResult, error)

	// GetHistory returns the full audit trail, most recent first.
	// Reviewer-only; works for tombstoned guides.
	GetHistory(ctx context.Context, actor model.Actor, guideID string) ([]model.HistoryEntry, error)

	// ExportHistory archives the full audit trail to object storage and
	// returns a presigned download URL. Reviewer-only.
	ExportHistory(ctx context.Context, actor model.Actor, guideID string) (string, error)
}

// workflowService is a concrete implementation of WorkflowService.
type workflowService struct {
	store         repository.Store
	notifier      notification.Notifier
	archive       storage.Storage
	metrics       *metrics.Metrics
	log           zerolog.Logger
	notifyTimeout time.Duration
}

// NewWorkflowService constructs a new WorkflowService. The notifier is an
// explicit dependency so the engine carries no hidden global state.
func NewWorkflowService(store repository.Store, notifier notification.Notifier, archive storage.Storage, m *metrics.Metrics, log zerolog.Logger) WorkflowService {
	return &workflowService{
		store:         store,
		notifier:      notifier,
		archive:       archive,
		metrics:       m,
		log:           log,
		notifyTimeout: defaultNotifyTimeout,
	}
}

func (s *workflowService) Create(ctx context.Context, actor model.Actor, title, content string) (*model.Guide, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if len(title) > maxTitleLen {
		return nil, fmt.Errorf("%w: title exceeds %d characters", ErrValidation, maxTitleLen)
	}
	if err := validateContent(content); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	g := &model.Guide{
		ID:        uuid.NewString(),
		TenantID:  actor.TenantID,
		Title:     title,
		Content:   content,
		Status:    model.StatusDraft,
		Version:   1,
		CreatedBy: actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var out *model.Guide
	err := s.store.InTx(ctx, func(guides repository.GuideRepository, ledger repository.HistoryLedger) error {
		stored, err := guides.Create(ctx, g)
		if err != nil {
			return fmt.Errorf("create guide: %w", err)
		}
		if _, err := ledger.Append(ctx, entryFor(stored, model.ChangeEdit, actor.ID, now)); err != nil {
			return fmt.Errorf("append history: %w", err)
		}
		out = stored
		return nil
	})
	s.count("create", err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *workflowService) Edit(ctx context.Context, actor model.Actor, guideID, content string, baseVersion int) (*model.Guide, error) {
	if err := validateContent(content); err != nil {
		return nil, err
	}

	var out *model.Guide
	err := s.store.InTx(ctx, func(guides repository.GuideRepository, ledger repository.HistoryLedger) error {
		g, err := guides.FindByIDForUpdate(ctx, actor.TenantID, guideID)
		if err != nil {
			return asNotFound(err)
		}
		if g.CreatedBy != actor.ID {
			return fmt.Errorf("%w: only the author may edit", ErrPermissionDenied)
		}
		if !g.Status.Editable() {
			return fmt.Errorf("%w: cannot edit a %s guide", ErrInvalidState, g.Status)
		}
		if baseVersion != g.Version {
			return fmt.Errorf("%w: base version %d, current version %d", ErrConflict, baseVersion, g.Version)
		}

		now := time.Now().UTC()
		g.Content = content
		g.Status = model.StatusDraft
		g.Version++
		g.UpdatedAt = now

		if err := s.update(ctx, guides, g, baseVersion); err != nil {
			return err
		}
		if _, err := ledger.Append(ctx, entryFor(g, model.ChangeEdit, actor.ID, now)); err != nil {
			return fmt.Errorf("append history: %w", err)
		}
		out = g
		return nil
	})
	s.count("edit", err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *workflowService) Submit(ctx context.Context, actor model.Actor, guideID string) (*model.Guide, error) {
	var out *model.Guide
	err := s.store.InTx(ctx, func(guides repository.GuideRepository, ledger repository.HistoryLedger) error {
		g, err := guides.FindByIDForUpdate(ctx, actor.TenantID, guideID)
		if err != nil {
			return asNotFound(err)
		}
		if g.CreatedBy != actor.ID {
			return fmt.Errorf("%w: only the author may submit", ErrPermissionDenied)
		}
		if g.Status != model.StatusDraft {
			return fmt.Errorf("%w: cannot submit a %s guide", ErrInvalidState, g.Status)
		}

		now := time.Now().UTC()
		g.Status = model.StatusPending
		g.UpdatedAt = now

		if err := s.update(ctx, guides, g, g.Version); err != nil {
			return err
		}
		if _, err := ledger.Append(ctx, entryFor(g, model.ChangeSubmit, actor.ID, now)); err != nil {
			return fmt.Errorf("append history: %w", err)
		}
		out = g
		return nil
	})
	s.count("submit", err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *workflowService) Approve(ctx context.Context, actor model.Actor, guideID string) (*model.Guide, error) {
	return s.review(ctx, actor, guideID, model.StatusApproved)
}

func (s *workflowService) Reject(ctx context.Context, actor model.Actor, guideID string) (*model.Guide, error) {
	return s.review(ctx, actor, guideID, model.StatusRejected)
}

// review is the shared Approve/Reject path. The reviewer's identity and
// timestamp overwrite any previous review outcome; the version is
// untouched because the content did not change.
func (s *workflowService) review(ctx context.Context, actor model.Actor, guideID string, outcome model.Status) (*model.Guide, error) {
	op := "approve"
	change := model.ChangeApprove
	event := notification.EventApproved
	if outcome == model.StatusRejected {
		op = "reject"
		change = model.ChangeReject
		event = notification.EventRejected
	}

	if !actor.Role.CanReview() {
		s.count(op, ErrPermissionDenied)
		return nil, fmt.Errorf("%w: reviewer role required", ErrPermissionDenied)
	}

	var out *model.Guide
	err := s.store.InTx(ctx, func(guides repository.GuideRepository, ledger repository.HistoryLedger) error {
		g, err := guides.FindByIDForUpdate(ctx, actor.TenantID, guideID)
		if err != nil {
			return asNotFound(err)
		}
		if g.Status != model.StatusPending {
			return fmt.Errorf("%w: cannot %s a %s guide", ErrInvalidState, op, g.Status)
		}

		now := time.Now().UTC()
		reviewer := actor.ID
		g.Status = outcome
		g.ApprovedBy = &reviewer
		g.ApprovedAt = &now
		g.UpdatedAt = now

		if err := s.update(ctx, guides, g, g.Version); err != nil {
			return err
		}
		if _, err := ledger.Append(ctx, entryFor(g, change, actor.ID, now)); err != nil {
			return fmt.Errorf("append history: %w", err)
		}
		out = g
		return nil
	})
	s.count(op, err)
	if err != nil {
		return nil, err
	}

	s.notifyAsync(out.CreatedBy, event,
		fmt.Sprintf("your guide %q was %s", out.Title, outcome), guideLink(out.ID))
	return out, nil
}

func (s *workflowService) Rollback(ctx context.Context, actor model.Actor, guideID string, targetVersion, baseVersion int) (*model.Guide, error) {
	if !actor.Role.CanReview() {
		s.count("rollback", ErrPermissionDenied)
		return nil, fmt.Errorf("%w: reviewer role required", ErrPermissionDenied)
	}

	var out *model.Guide
	err := s.store.InTx(ctx, func(guides repository.GuideRepository, ledger repository.HistoryLedger) error {
		g, err := guides.FindByIDForUpdate(ctx, actor.TenantID, guideID)
		if err != nil {
			return asNotFound(err)
		}
		if baseVersion != g.Version {
			return fmt.Errorf("%w: base version %d, current version %d", ErrConflict, baseVersion, g.Version)
		}

		snap, err := ledger.FindVersion(ctx, actor.TenantID, guideID, targetVersion)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: version %d has no snapshot", ErrNotFound, targetVersion)
			}
			return fmt.Errorf("find version: %w", err)
		}

		now := time.Now().UTC()
		g.Content = snap.Content
		g.Status = model.StatusDraft
		g.Version++ // never targetVersion; the axis stays monotonic
		g.UpdatedAt = now

		if err := s.update(ctx, guides, g, baseVersion); err != nil {
			return err
		}
		if _, err := ledger.Append(ctx, entryFor(g, model.ChangeRollback, actor.ID, now)); err != nil {
			return fmt.Errorf("append history: %w", err)
		}
		out = g
		return nil
	})
	s.count("rollback", err)
	if err != nil {
		return nil, err
	}

	s.notifyAsync(out.CreatedBy, notification.EventRolledBack,
		fmt.Sprintf("your guide %q was rolled back to version %d", out.Title, targetVersion), guideLink(out.ID))
	return out, nil
}

func (s *workflowService) Remove(ctx context.Context, actor model.Actor, guideID string) error {
	if !actor.Role.CanReview() {
		s.count("remove", ErrPermissionDenied)
		return fmt.Errorf("%w: reviewer role required", ErrPermissionDenied)
	}

	var removed *model.Guide
	err := s.store.InTx(ctx, func(guides repository.GuideRepository, ledger repository.HistoryLedger) error {
		g, err := guides.FindByIDForUpdate(ctx, actor.TenantID, guideID)
		if err != nil {
			return asNotFound(err)
		}
		if err := guides.SoftDelete(ctx, actor.TenantID, guideID, time.Now().UTC()); err != nil {
			return asNotFound(err)
		}
		removed = g
		return nil
	})
	s.count("remove", err)
	if err != nil {
		return err
	}

	s.notifyAsync(removed.CreatedBy, notification.EventRemoved,
		fmt.Sprintf("your guide %q was removed", removed.Title), "")
	return nil
}

func (s *workflowService) Get(ctx context.Context, actor model.Actor, guideID string) (*model.Guide, error) {
	g, err := s.store.Guides().FindByID(ctx, actor.TenantID, guideID)
	if err != nil {
		return nil, asNotFound(err)
	}
	return g, nil
}

// List returns paginated guides without exposing repository types.
func (s *workflowService) List(ctx context.Context, actor model.Actor, limit, offset int) (*GuideListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.store.Guides().List(ctx, actor.TenantID, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &GuideListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *workflowService) GetHistory(ctx context.Context, actor model.Actor, guideID string) ([]model.HistoryEntry, error) {
	if !actor.Role.CanReview() {
		return nil, fmt.Errorf("%w: reviewer role required", ErrPermissionDenied)
	}

	entries, err := s.store.Ledger().ListByDocument(ctx, actor.TenantID, guideID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	// Every guide writes a ledger entry at creation, so an empty trail
	// means the guide never existed in this tenant.
	if len(entries) == 0 {
		return nil, ErrNotFound
	}
	return entries, nil
}

// historyArchive is the JSON document written to object storage by
// ExportHistory.
type historyArchive struct {
	GuideID    string               `json:"guide_id"`
	TenantID   string               `json:"tenant_id"`
	ExportedBy string               `json:"exported_by"`
	ExportedAt time.Time            `json:"exported_at"`
	Entries    []model.HistoryEntry `json:"entries"`
}

func (s *workflowService) ExportHistory(ctx context.Context, actor model.Actor, guideID string) (string, error) {
	entries, err := s.GetHistory(ctx, actor, guideID)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	body, err := json.Marshal(historyArchive{
		GuideID:    guideID,
		TenantID:   actor.TenantID,
		ExportedBy: actor.ID,
		ExportedAt: now,
		Entries:    entries,
	})
	if err != nil {
		return "", fmt.Errorf("marshal archive: %w", err)
	}

	key := fmt.Sprintf("audit/%s/%s/%s.json", actor.TenantID, guideID, uuid.NewString())
	_, err = s.archive.Put(ctx, key, bytes.NewReader(body), storage.PutObjectOptions{
		Size:        int64(len(body)),
		ContentType: "application/json",
		Metadata: map[string]string{
			"exported-by": actor.ID,
		},
	})
	if err != nil {
		return "", fmt.Errorf("upload archive: %w", err)
	}

	url, err := s.archive.PresignGet(ctx, key, exportURLExpiry)
	if err != nil {
		return "", fmt.Errorf("presign archive: %w", err)
	}
	return url, nil
}

// update wraps the repository CAS write, translating a stale version
// into the service-level conflict error.
func (s *workflowService) update(ctx context.Context, guides repository.GuideRepository, g *model.Guide, expectedVersion int) error {
	if err := guides.Update(ctx, g, expectedVersion); err != nil {
		if errors.Is(err, repository.ErrStaleVersion) {
			return fmt.Errorf("%w: concurrent update detected", ErrConflict)
		}
		return fmt.Errorf("update guide: %w", err)
	}
	return nil
}

// notifyAsync dispatches a notification after the transaction has
// committed. Delivery is best-effort: failures are logged and counted,
// never propagated, and the call is bounded by notifyTimeout.
func (s *workflowService) notifyAsync(targetUserID string, event notification.Event, message, link string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()

		if err := s.notifier.Notify(ctx, targetUserID, event, message, link); err != nil {
			if s.metrics != nil {
				s.metrics.Notifications.WithLabelValues(string(event), "error").Inc()
			}
			s.log.Warn().
				Err(err).
				Str("event", string(event)).
				Str("target_user_id", targetUserID).
				Msg("notification dispatch failed")
			return
		}
		if s.metrics != nil {
			s.metrics.Notifications.WithLabelValues(string(event), "ok").Inc()
		}
	}()
}

func (s *workflowService) count(operation string, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	s.metrics.Transitions.WithLabelValues(operation, outcome).Inc()
}

// entryFor snapshots the guide's state after a transition.
func entryFor(g *model.Guide, change model.ChangeType, actorID string, at time.Time) *model.HistoryEntry {
	return &model.HistoryEntry{
		ID:         uuid.NewString(),
		TenantID:   g.TenantID,
		GuideID:    g.ID,
		Version:    g.Version,
		Content:    g.Content,
		Status:     g.Status,
		ChangeType: change,
		ChangedBy:  actorID,
		ChangedAt:  at,
	}
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: content is required", ErrValidation)
	}
	if len(content) > maxContentLen {
		return fmt.Errorf("%w: content exceeds %d bytes", ErrValidation, maxContentLen)
	}
	return nil
}

func guideLink(id string) string {
	return "/guides/" + id
}

// asNotFound maps a missing row (including cross-tenant and tombstoned
// lookups) to the service-level not-found error. Existence is never
// revealed across tenants.
func asNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
