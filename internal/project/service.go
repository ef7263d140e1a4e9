package project

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storycat.app/internal/auth"
	"storycat.app/internal/content"
	"storycat.app/internal/ids"
	"storycat.app/internal/pipeline"
)

// Service manages campaign projects. Creation also provisions the onboarding
// record and auto-generates the project's content items, which the hosted
// predecessor did inside an opaque stored procedure.
type Service struct {
	store Store
	items content.Store
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

// NewService constructs a project Service.
func NewService(store Store, items content.Store, opts ...ServiceOption) (*Service, error) {
	if store == nil || items == nil {
		return nil, errors.New("project: store and content store are required")
	}
	svc := &Service{store: store, items: items, now: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// NewProject is the input for project creation.
type NewProject struct {
	Title        string
	Brief        string
	StartDate    time.Time
	EndDate      time.Time
	ContentCount int
	Onboarding   Onboarding
}

// Create provisions a project, its onboarding record and ContentCount items
// with publish dates spread evenly across the campaign window. Admin only.
func (s *Service) Create(ctx context.Context, actor auth.Profile, in NewProject) (*Project, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() || in.EndDate.Before(in.StartDate) {
		return nil, fmt.Errorf("%w: start and end dates must form a valid window", ErrInvalidInput)
	}
	if in.ContentCount < 0 || in.ContentCount > 500 {
		return nil, fmt.Errorf("%w: content_count must be between 0 and 500", ErrInvalidInput)
	}

	now := s.now().UTC()
	p := &Project{
		ID:           ids.New(),
		Title:        title,
		Brief:        in.Brief,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		Status:       StatusActive,
		ContentCount: in.ContentCount,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	ob := in.Onboarding
	ob.ProjectID = p.ID
	ob.CompanyName = strings.TrimSpace(ob.CompanyName)
	ob.CreatedAt = now
	ob.UpdatedAt = now

	if err := s.store.CreateProject(ctx, p, &ob); err != nil {
		return nil, err
	}

	// Generated items are staffed from the onboarding roster so every
	// stage has an assignee from day one.
	for i, publishAt := range spreadDates(in.StartDate, in.EndDate, in.ContentCount) {
		item := &content.Item{
			ID:                 ids.New(),
			ProjectID:          p.ID,
			PublishDate:        publishAt,
			Status:             pipeline.StatusPendingDM,
			CurrentStage:       pipeline.StageForStatus(pipeline.StatusPendingDM),
			MarketingTitle:     fmt.Sprintf("%s content #%d", title, i+1),
			DMAssigneeID:       ob.DedicatedDMID,
			CopyAssigneeID:     ob.DedicatedCopyID,
			CopyQCAssigneeID:   ob.DedicatedCopyQCID,
			DesignAssigneeID:   ob.DedicatedDesignerID,
			DesignQCAssigneeID: ob.DedicatedDesignQCID,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if err := s.items.CreateItem(ctx, item); err != nil {
			return nil, fmt.Errorf("generate content item %d: %w", i+1, err)
		}
	}
	return p, nil
}

// spreadDates places n publish dates evenly inside the campaign window.
func spreadDates(start, end time.Time, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	out := make([]time.Time, n)
	step := end.Sub(start) / time.Duration(n+1)
	for i := range out {
		out[i] = start.Add(step * time.Duration(i+1))
	}
	return out
}

// Get loads one project the actor may see.
func (s *Service) Get(ctx context.Context, actor auth.Profile, id string) (*Project, error) {
	p, err := s.store.FindProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin() {
		return p, nil
	}
	visible, err := s.store.ListProjectsVisibleTo(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	for _, v := range visible {
		if v.ID == p.ID {
			return p, nil
		}
	}
	return nil, ErrForbidden
}

// List returns all projects for admins and the visible subset for everyone
// else.
func (s *Service) List(ctx context.Context, actor auth.Profile) ([]*Project, error) {
	if actor.IsAdmin() {
		return s.store.ListProjects(ctx)
	}
	return s.store.ListProjectsVisibleTo(ctx, actor.ID)
}

// Onboarding loads the client metadata record for a project.
func (s *Service) Onboarding(ctx context.Context, actor auth.Profile, projectID string) (*Onboarding, error) {
	if _, err := s.Get(ctx, actor, projectID); err != nil {
		return nil, err
	}
	return s.store.FindOnboarding(ctx, projectID)
}

// UpdateOnboarding replaces the client metadata record. Admin only.
func (s *Service) UpdateOnboarding(ctx context.Context, actor auth.Profile, ob Onboarding) (*Onboarding, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(ob.ProjectID) == "" {
		return nil, fmt.Errorf("%w: project_id is required", ErrInvalidInput)
	}
	ob.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateOnboarding(ctx, &ob); err != nil {
		return nil, err
	}
	return &ob, nil
}

// AddChangeRequest appends a free-text note to a project. Notes are
// append-only; there is no edit or delete.
func (s *Service) AddChangeRequest(ctx context.Context, actor auth.Profile, projectID, note string) (*ChangeRequest, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, fmt.Errorf("%w: note is required", ErrInvalidInput)
	}
	if _, err := s.Get(ctx, actor, projectID); err != nil {
		return nil, err
	}
	cr := &ChangeRequest{
		ID:        ids.New(),
		ProjectID: projectID,
		AuthorID:  actor.ID,
		Note:      note,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.AppendChangeRequest(ctx, cr); err != nil {
		return nil, err
	}
	return cr, nil
}

// ChangeRequests lists a project's notes ordered by creation time.
func (s *Service) ChangeRequests(ctx context.Context, actor auth.Profile, projectID string) ([]*ChangeRequest, error) {
	if _, err := s.Get(ctx, actor, projectID); err != nil {
		return nil, err
	}
	return s.store.ListChangeRequests(ctx, projectID)
}
