package memory

import (
	"context"

	"storycat.app/internal/content"
	"storycat.app/internal/pipeline"
)

var _ content.Store = (*Store)(nil)

func (s *Store) CreateItem(ctx context.Context, item *content.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[item.ID]; ok {
		return content.ErrConflict
	}
	s.items[item.ID] = *item
	return nil
}

func (s *Store) FindItem(ctx context.Context, id string) (*content.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return nil, content.ErrNotFound
	}
	out := item
	out.DedicatedDMID = s.dedicatedDMLocked(item.ProjectID)
	return &out, nil
}

func (s *Store) UpdateItem(ctx context.Context, item *content.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[item.ID]; !ok {
		return content.ErrNotFound
	}
	s.items[item.ID] = *item
	return nil
}

func (s *Store) ListItemsByProject(ctx context.Context, projectID string) ([]*content.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*content.Item
	for _, item := range s.items {
		if item.ProjectID != projectID {
			continue
		}
		cp := item
		cp.DedicatedDMID = s.dedicatedDMLocked(item.ProjectID)
		out = append(out, &cp)
	}
	sortByID(out, func(i *content.Item) string {
		return i.PublishDate.Format("2006-01-02T15:04:05") + i.ID
	})
	return out, nil
}

func (s *Store) ListItemsByStatus(ctx context.Context, status pipeline.Status) ([]*content.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*content.Item
	for _, item := range s.items {
		if item.Status != status {
			continue
		}
		cp := item
		cp.DedicatedDMID = s.dedicatedDMLocked(item.ProjectID)
		out = append(out, &cp)
	}
	sortByID(out, func(i *content.Item) string { return i.ID })
	return out, nil
}

func (s *Store) ListItemsAssignedTo(ctx context.Context, userID string) ([]*content.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*content.Item
	for _, item := range s.items {
		if !assignedTo(item, userID) {
			continue
		}
		cp := item
		cp.DedicatedDMID = s.dedicatedDMLocked(item.ProjectID)
		out = append(out, &cp)
	}
	sortByID(out, func(i *content.Item) string { return i.ID })
	return out, nil
}

func assignedTo(item content.Item, userID string) bool {
	if userID == "" {
		return false
	}
	return item.DMAssigneeID == userID ||
		item.CopyAssigneeID == userID ||
		item.CopyQCAssigneeID == userID ||
		item.DesignAssigneeID == userID ||
		item.DesignQCAssigneeID == userID
}

// dedicatedDMLocked resolves the project onboarding override; callers hold
// at least the read lock.
func (s *Store) dedicatedDMLocked(projectID string) string {
	if ob, ok := s.onboardings[projectID]; ok {
		return ob.DedicatedDMID
	}
	return ""
}
