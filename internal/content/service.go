package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storycat.app/internal/auth"
	"storycat.app/internal/ids"
	"storycat.app/internal/pipeline"
)

// Service applies pipeline policy to every content mutation. All stage
// actions flow through one transition path so status and current_stage are
// always written together.
type Service struct {
	store Store
	now   func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs a content Service.
func NewService(store Store, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("content: store is required")
	}
	svc := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// NewItem is the input for item creation.
type NewItem struct {
	ProjectID      string
	PublishDate    time.Time
	MarketingTitle string
	MarketingNotes string
	DMAssigneeID   string
}

// Create inserts a fresh item at the top of the pipeline. Digital marketing
// managers and admins only.
func (s *Service) Create(ctx context.Context, actor auth.Profile, in NewItem) (*Item, error) {
	if actor.Role != pipeline.RoleAdmin && actor.Role != pipeline.RoleDigitalMarketingManager {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(in.ProjectID) == "" {
		return nil, fmt.Errorf("%w: project_id is required", ErrInvalidInput)
	}
	if in.PublishDate.IsZero() {
		return nil, fmt.Errorf("%w: publish_date is required", ErrInvalidInput)
	}
	now := s.now().UTC()
	item := &Item{
		ID:             ids.New(),
		ProjectID:      in.ProjectID,
		PublishDate:    in.PublishDate,
		Status:         pipeline.StatusPendingDM,
		CurrentStage:   pipeline.StageForStatus(pipeline.StatusPendingDM),
		MarketingTitle: strings.TrimSpace(in.MarketingTitle),
		MarketingNotes: in.MarketingNotes,
		DMAssigneeID:   in.DMAssigneeID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if item.DMAssigneeID == "" && actor.Role == pipeline.RoleDigitalMarketingManager {
		item.DMAssigneeID = actor.ID
	}
	if err := s.store.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Get loads one item.
func (s *Service) Get(ctx context.Context, id string) (*Item, error) {
	return s.store.FindItem(ctx, id)
}

// ListByProject returns the items of a project in publish-date order.
func (s *Service) ListByProject(ctx context.Context, projectID string) ([]*Item, error) {
	return s.store.ListItemsByProject(ctx, projectID)
}

// ListByStatus returns items sitting at a pipeline status (dashboard queues).
func (s *Service) ListByStatus(ctx context.Context, status pipeline.Status) ([]*Item, error) {
	return s.store.ListItemsByStatus(ctx, status)
}

// ListAssignedTo returns items where the user holds any stage assignment.
func (s *Service) ListAssignedTo(ctx context.Context, userID string) ([]*Item, error) {
	return s.store.ListItemsAssignedTo(ctx, userID)
}

// PermissionsFor derives the edit/lock/banner state for one viewer.
func (s *Service) PermissionsFor(ctx context.Context, actor auth.Profile, id string) (Permissions, error) {
	item, err := s.store.FindItem(ctx, id)
	if err != nil {
		return Permissions{}, err
	}
	view := item.Policy()
	perms := Permissions{
		CanEdit: pipeline.CanEdit(view, actor.Role, actor.ID),
		Locked:  pipeline.StageLocked(view, item.CurrentStage),
	}
	if !perms.CanEdit {
		perms.Reason = pipeline.EditDisabledReason(view, actor.Role)
	}
	return perms, nil
}

// DraftUpdate carries optional payload edits. Only fields belonging to a
// stage the actor may edit are applied.
type DraftUpdate struct {
	MarketingTitle  *string
	MarketingNotes  *string
	MarketingThread *string
	CopyContent     *string
	CopyNotes       *string
	DesignAssetURL  *string
	PublishDate     *time.Time
}

// UpdateDraft edits stage payload fields without moving the pipeline.
func (s *Service) UpdateDraft(ctx context.Context, actor auth.Profile, id string, upd DraftUpdate) (*Item, error) {
	item, err := s.store.FindItem(ctx, id)
	if err != nil {
		return nil, err
	}
	view := item.Policy()
	if !pipeline.CanEdit(view, actor.Role, actor.ID) {
		return nil, fmt.Errorf("%w: %s", ErrForbidden, pipeline.EditDisabledReason(view, actor.Role))
	}
	if actor.Role != pipeline.RoleAdmin && pipeline.StageLocked(view, item.CurrentStage) {
		return nil, ErrLocked
	}

	if upd.MarketingTitle != nil {
		item.MarketingTitle = strings.TrimSpace(*upd.MarketingTitle)
	}
	if upd.MarketingNotes != nil {
		item.MarketingNotes = *upd.MarketingNotes
	}
	if upd.MarketingThread != nil {
		item.MarketingThread = *upd.MarketingThread
	}
	if upd.CopyContent != nil {
		item.CopyContent = *upd.CopyContent
	}
	if upd.CopyNotes != nil {
		item.CopyNotes = *upd.CopyNotes
	}
	if upd.DesignAssetURL != nil {
		item.DesignAssetURL = strings.TrimSpace(*upd.DesignAssetURL)
	}
	if upd.PublishDate != nil && !upd.PublishDate.IsZero() {
		item.PublishDate = *upd.PublishDate
	}
	item.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// act loads the item, enforces edit permission, applies the transition and
// runs the per-action mutation before persisting.
func (s *Service) act(ctx context.Context, actor auth.Profile, id string, req pipeline.Request, mutate func(*Item, time.Time)) (*Item, error) {
	item, err := s.store.FindItem(ctx, id)
	if err != nil {
		return nil, err
	}
	view := item.Policy()
	if !pipeline.CanEdit(view, actor.Role, actor.ID) {
		return nil, fmt.Errorf("%w: %s", ErrForbidden, pipeline.EditDisabledReason(view, actor.Role))
	}

	req.Role = actor.Role
	result, err := pipeline.Transition(item.Status, req)
	if err != nil {
		switch {
		case errors.Is(err, pipeline.ErrRoleNotAllowed):
			return nil, fmt.Errorf("%w: %s", ErrForbidden, err)
		case errors.Is(err, pipeline.ErrIllegalTransition):
			return nil, fmt.Errorf("%w: %s", ErrConflict, err)
		default:
			return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
		}
	}

	now := s.now().UTC()
	item.Status = result.Status
	item.CurrentStage = result.Stage
	if mutate != nil {
		mutate(item, now)
	}
	item.UpdatedAt = now
	if err := s.store.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// SubmitIdea moves a pending_dm item into copywriting. The marketing title
// must be filled in first.
func (s *Service) SubmitIdea(ctx context.Context, actor auth.Profile, id string) (*Item, error) {
	item, err := s.store.FindItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(item.MarketingTitle) == "" {
		return nil, fmt.Errorf("%w: marketing title is required before submitting", ErrInvalidInput)
	}
	return s.act(ctx, actor, id, pipeline.Request{Action: pipeline.ActionSubmitIdea}, func(it *Item, now time.Time) {
		it.DMSubmittedAt = &now
	})
}

// SubmitCopy sends one or more drafted items to copy QC. Each item must
// carry copy content; the batch stops at the first failure.
func (s *Service) SubmitCopy(ctx context.Context, actor auth.Profile, itemIDs []string) ([]*Item, error) {
	if len(itemIDs) == 0 {
		return nil, fmt.Errorf("%w: no items selected", ErrInvalidInput)
	}
	out := make([]*Item, 0, len(itemIDs))
	for _, id := range itemIDs {
		item, err := s.store.FindItem(ctx, id)
		if err != nil {
			return out, err
		}
		if strings.TrimSpace(item.CopyContent) == "" {
			return out, fmt.Errorf("%w: item %s has no copy content", ErrInvalidInput, id)
		}
		updated, err := s.act(ctx, actor, id, pipeline.Request{Action: pipeline.ActionSubmitCopy}, func(it *Item, now time.Time) {
			it.CopySubmittedAt = &now
			it.RejectionReason = ""
		})
		if err != nil {
			return out, err
		}
		out = append(out, updated)
	}
	return out, nil
}

// ApproveCopy passes copy QC and freezes the copywriting stage.
func (s *Service) ApproveCopy(ctx context.Context, actor auth.Profile, id string) (*Item, error) {
	return s.act(ctx, actor, id, pipeline.Request{Action: pipeline.ActionApproveCopy}, func(it *Item, now time.Time) {
		it.CopyLockedAt = &now
	})
}

// RejectCopy routes the item back to the copywriter with feedback.
func (s *Service) RejectCopy(ctx context.Context, actor auth.Profile, id, reason string) (*Item, error) {
	return s.act(ctx, actor, id, pipeline.Request{Action: pipeline.ActionRejectCopy, Reason: reason}, func(it *Item, now time.Time) {
		it.RejectionReason = strings.TrimSpace(reason)
		it.CopyLockedAt = nil
	})
}

// SubmitDesign sends the finished asset to design QC. The asset URL is
// mandatory.
func (s *Service) SubmitDesign(ctx context.Context, actor auth.Profile, id, assetURL string) (*Item, error) {
	assetURL = strings.TrimSpace(assetURL)
	item, err := s.store.FindItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if assetURL == "" && item.DesignAssetURL == "" {
		return nil, fmt.Errorf("%w: a design asset is required before submitting", ErrInvalidInput)
	}
	return s.act(ctx, actor, id, pipeline.Request{Action: pipeline.ActionSubmitDesign}, func(it *Item, now time.Time) {
		if assetURL != "" {
			it.DesignAssetURL = assetURL
		}
		it.DesignSubmittedAt = &now
		it.RejectionReason = ""
	})
}

// ApproveDesign completes the item and freezes the design stage.
func (s *Service) ApproveDesign(ctx context.Context, actor auth.Profile, id string) (*Item, error) {
	return s.act(ctx, actor, id, pipeline.Request{Action: pipeline.ActionApproveDesign}, func(it *Item, now time.Time) {
		it.DesignLockedAt = &now
	})
}

// RejectDesign routes the item back to the designer with feedback.
func (s *Service) RejectDesign(ctx context.Context, actor auth.Profile, id, reason string) (*Item, error) {
	return s.act(ctx, actor, id, pipeline.Request{Action: pipeline.ActionRejectDesign, Reason: reason}, func(it *Item, now time.Time) {
		it.RejectionReason = strings.TrimSpace(reason)
		it.DesignLockedAt = nil
	})
}

// Verify marks a completed item as admin-verified, making it immutable to
// every non-admin role.
func (s *Service) Verify(ctx context.Context, actor auth.Profile, id string) (*Item, error) {
	return s.act(ctx, actor, id, pipeline.Request{Action: pipeline.ActionVerify}, func(it *Item, now time.Time) {
		it.IsAdminVerified = true
		it.AdminVerifiedAt = &now
	})
}

// Reopen routes a completed item back to an earlier status, clearing
// verification and the locks of every stage at or after the destination.
func (s *Service) Reopen(ctx context.Context, actor auth.Profile, id, reason string, dest pipeline.Status) (*Item, error) {
	return s.act(ctx, actor, id, pipeline.Request{Action: pipeline.ActionReopen, Reason: reason, ReopenTo: dest}, func(it *Item, now time.Time) {
		it.IsAdminVerified = false
		it.AdminVerifiedAt = nil
		it.RejectionReason = strings.TrimSpace(reason)
		switch dest {
		case pipeline.StatusPendingCopy:
			it.CopyLockedAt = nil
			it.CopyQCLockedAt = nil
			it.DesignLockedAt = nil
			it.DesignQCLockedAt = nil
		case pipeline.StatusPendingDesign:
			it.DesignLockedAt = nil
			it.DesignQCLockedAt = nil
		case pipeline.StatusPendingDesignQC:
			it.DesignQCLockedAt = nil
		}
	})
}
