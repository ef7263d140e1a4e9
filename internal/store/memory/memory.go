// Package memory implements every service store in process. It backs the
// handler tests and the DSN-less development mode; production runs on the
// pg store.
package memory

import (
	"context"
	"strings"
	"sync"

	"storycat.app/internal/auth"
	"storycat.app/internal/content"
	"storycat.app/internal/project"
	"storycat.app/internal/timelog"
)

// Store keeps all entities in maps guarded by one mutex. Values are copied
// on the way in and out so callers never share memory with the store.
type Store struct {
	mu             sync.RWMutex
	profiles       map[string]auth.Profile
	projects       map[string]project.Project
	onboardings    map[string]project.Onboarding // keyed by project id
	changeRequests map[string][]project.ChangeRequest
	items          map[string]content.Item
	logs           map[string]timelog.Log
	perf           []perfRow
}

// New creates an empty store.
func New() *Store {
	return &Store{
		profiles:       make(map[string]auth.Profile),
		projects:       make(map[string]project.Project),
		onboardings:    make(map[string]project.Onboarding),
		changeRequests: make(map[string][]project.ChangeRequest),
		items:          make(map[string]content.Item),
		logs:           make(map[string]timelog.Log),
	}
}

var _ auth.ProfileStore = (*Store)(nil)

func (s *Store) CreateProfile(ctx context.Context, p *auth.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.profiles {
		if strings.EqualFold(existing.Email, p.Email) {
			return auth.ErrAlreadyExists
		}
	}
	s.profiles[p.ID] = *p
	return nil
}

func (s *Store) FindProfile(ctx context.Context, id string) (*auth.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	out := p
	return &out, nil
}

func (s *Store) FindProfileByEmail(ctx context.Context, email string) (*auth.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.profiles {
		if strings.EqualFold(p.Email, email) {
			out := p
			return &out, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (s *Store) ListProfiles(ctx context.Context) ([]*auth.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*auth.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		cp := p
		out = append(out, &cp)
	}
	sortByID(out, func(p *auth.Profile) string { return p.ID })
	return out, nil
}

func (s *Store) DeleteProfile(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[id]; !ok {
		return auth.ErrNotFound
	}
	delete(s.profiles, id)
	return nil
}

// sortByID keeps list results deterministic; map iteration order is not.
func sortByID[T any](items []T, key func(T) string) {
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && key(items[j]) < key(items[j-1]); j-- {
			items[j], items[j-1] = items[j-1], items[j]
		}
	}
}
