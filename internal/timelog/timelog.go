package timelog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storycat.app/internal/ids"
	"storycat.app/internal/pipeline"
)

var (
	ErrNotFound = errors.New("timelog: not found")
	// ErrActiveExists signals the user already has an open tracking session.
	// The pg store maps the partial unique index violation here, so the
	// invariant holds even across concurrent requests.
	ErrActiveExists = errors.New("timelog: an active session already exists")
	// ErrNoActive signals a stop without a running session.
	ErrNoActive     = errors.New("timelog: no active session")
	ErrInvalidInput = errors.New("timelog: invalid input")
)

// Log is one time-tracking session. EndTime is nil while the session runs.
type Log struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	ContentItemID   string     `json:"content_item_id"`
	ProjectID       string     `json:"project_id"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationSeconds int64      `json:"duration_seconds"`
}

// RoleTime is an aggregate of tracked seconds attributed to a role.
type RoleTime struct {
	Role         pipeline.Role `json:"role"`
	TotalSeconds int64         `json:"total_seconds"`
}

// Store describes persistence for time logs.
type Store interface {
	// CreateLog inserts an open session. Implementations must refuse a
	// second open session for the same user with ErrActiveExists.
	CreateLog(ctx context.Context, l *Log) error
	FindActiveLog(ctx context.Context, userID string) (*Log, error)
	CloseLog(ctx context.Context, id string, endTime time.Time, durationSeconds int64) (*Log, error)
	TimeByRoleForContent(ctx context.Context, contentItemID string) ([]RoleTime, error)
	TimeByRoleForProject(ctx context.Context, projectID string) ([]RoleTime, error)
}

// Service starts and stops tracking sessions and reports role aggregates.
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

// NewService constructs a timelog Service.
func NewService(store Store, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("timelog: store is required")
	}
	svc := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Start opens a tracking session for the user against a content item.
func (s *Service) Start(ctx context.Context, userID, contentItemID, projectID string) (*Log, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(contentItemID) == "" || strings.TrimSpace(projectID) == "" {
		return nil, fmt.Errorf("%w: content_item_id and project_id are required", ErrInvalidInput)
	}
	l := &Log{
		ID:            ids.New(),
		UserID:        userID,
		ContentItemID: contentItemID,
		ProjectID:     projectID,
		StartTime:     s.now().UTC(),
	}
	if err := s.store.CreateLog(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Stop closes the user's active session and records its duration.
func (s *Service) Stop(ctx context.Context, userID string) (*Log, error) {
	active, err := s.store.FindActiveLog(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNoActive
		}
		return nil, err
	}
	end := s.now().UTC()
	duration := int64(end.Sub(active.StartTime) / time.Second)
	if duration < 0 {
		duration = 0
	}
	return s.store.CloseLog(ctx, active.ID, end, duration)
}

// Active returns the user's open session, or ErrNoActive.
func (s *Service) Active(ctx context.Context, userID string) (*Log, error) {
	l, err := s.store.FindActiveLog(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNoActive
		}
		return nil, err
	}
	return l, nil
}

// ByRoleForContent aggregates tracked time per role for one content item.
func (s *Service) ByRoleForContent(ctx context.Context, contentItemID string) ([]RoleTime, error) {
	return s.store.TimeByRoleForContent(ctx, contentItemID)
}

// ByRoleForProject aggregates tracked time per role across a project.
func (s *Service) ByRoleForProject(ctx context.Context, projectID string) ([]RoleTime, error) {
	return s.store.TimeByRoleForProject(ctx, projectID)
}
