package memory

import (
	"context"

	"storycat.app/internal/project"
)

var _ project.Store = (*Store)(nil)

func (s *Store) CreateProject(ctx context.Context, p *project.Project, ob *project.Onboarding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[p.ID]; ok {
		return project.ErrConflict
	}
	s.projects[p.ID] = *p
	if ob != nil {
		s.onboardings[p.ID] = *ob
	}
	return nil
}

func (s *Store) FindProject(ctx context.Context, id string) (*project.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, project.ErrNotFound
	}
	out := p
	return &out, nil
}

func (s *Store) ListProjects(ctx context.Context) ([]*project.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*project.Project, 0, len(s.projects))
	for _, p := range s.projects {
		cp := p
		out = append(out, &cp)
	}
	sortByID(out, func(p *project.Project) string { return p.ID })
	return out, nil
}

func (s *Store) ListProjectsVisibleTo(ctx context.Context, userID string) ([]*project.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	visible := make(map[string]bool)
	for projectID, ob := range s.onboardings {
		if ob.DedicatedDMID == userID || ob.DedicatedCopyID == userID ||
			ob.DedicatedCopyQCID == userID || ob.DedicatedDesignerID == userID ||
			ob.DedicatedDesignQCID == userID {
			visible[projectID] = true
		}
	}
	for _, item := range s.items {
		if assignedTo(item, userID) {
			visible[item.ProjectID] = true
		}
	}
	var out []*project.Project
	for id := range visible {
		if p, ok := s.projects[id]; ok {
			cp := p
			out = append(out, &cp)
		}
	}
	sortByID(out, func(p *project.Project) string { return p.ID })
	return out, nil
}

func (s *Store) FindOnboarding(ctx context.Context, projectID string) (*project.Onboarding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ob, ok := s.onboardings[projectID]
	if !ok {
		return nil, project.ErrNotFound
	}
	out := ob
	return &out, nil
}

func (s *Store) UpdateOnboarding(ctx context.Context, ob *project.Onboarding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[ob.ProjectID]; !ok {
		return project.ErrNotFound
	}
	s.onboardings[ob.ProjectID] = *ob
	return nil
}

func (s *Store) AppendChangeRequest(ctx context.Context, cr *project.ChangeRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[cr.ProjectID]; !ok {
		return project.ErrNotFound
	}
	s.changeRequests[cr.ProjectID] = append(s.changeRequests[cr.ProjectID], *cr)
	return nil
}

func (s *Store) ListChangeRequests(ctx context.Context, projectID string) ([]*project.ChangeRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.changeRequests[projectID]
	out := make([]*project.ChangeRequest, 0, len(list))
	for _, cr := range list {
		cp := cr
		out = append(out, &cp)
	}
	return out, nil
}
