package content

import (
	"context"

	"storycat.app/internal/pipeline"
)

// Store describes persistence operations for content items. Find and list
// results carry DedicatedDMID joined from project onboarding.
type Store interface {
	CreateItem(ctx context.Context, item *Item) error
	FindItem(ctx context.Context, id string) (*Item, error)
	UpdateItem(ctx context.Context, item *Item) error
	ListItemsByProject(ctx context.Context, projectID string) ([]*Item, error)
	ListItemsByStatus(ctx context.Context, status pipeline.Status) ([]*Item, error)
	ListItemsAssignedTo(ctx context.Context, userID string) ([]*Item, error)
}
