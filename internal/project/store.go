package project

import "context"

// Store describes persistence operations for projects and their satellites.
type Store interface {
	CreateProject(ctx context.Context, p *Project, ob *Onboarding) error
	FindProject(ctx context.Context, id string) (*Project, error)
	ListProjects(ctx context.Context) ([]*Project, error)
	// ListProjectsVisibleTo returns projects where the user is a dedicated
	// specialist or holds a content item assignment.
	ListProjectsVisibleTo(ctx context.Context, userID string) ([]*Project, error)
	FindOnboarding(ctx context.Context, projectID string) (*Onboarding, error)
	UpdateOnboarding(ctx context.Context, ob *Onboarding) error
	AppendChangeRequest(ctx context.Context, cr *ChangeRequest) error
	ListChangeRequests(ctx context.Context, projectID string) ([]*ChangeRequest, error)
}
