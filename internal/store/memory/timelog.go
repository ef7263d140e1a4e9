package memory

import (
	"context"
	"time"

	"storycat.app/internal/pipeline"
	"storycat.app/internal/timelog"
)

var _ timelog.Store = (*Store)(nil)

func (s *Store) CreateLog(ctx context.Context, l *timelog.Log) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.logs {
		if existing.UserID == l.UserID && existing.EndTime == nil {
			return timelog.ErrActiveExists
		}
	}
	s.logs[l.ID] = *l
	return nil
}

func (s *Store) FindActiveLog(ctx context.Context, userID string) (*timelog.Log, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.logs {
		if l.UserID == userID && l.EndTime == nil {
			out := l
			return &out, nil
		}
	}
	return nil, timelog.ErrNotFound
}

func (s *Store) CloseLog(ctx context.Context, id string, endTime time.Time, durationSeconds int64) (*timelog.Log, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.logs[id]
	if !ok {
		return nil, timelog.ErrNotFound
	}
	end := endTime
	l.EndTime = &end
	l.DurationSeconds = durationSeconds
	s.logs[id] = l
	out := l
	return &out, nil
}

func (s *Store) TimeByRoleForContent(ctx context.Context, contentItemID string) ([]timelog.RoleTime, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.aggregateByRoleLocked(func(l timelog.Log) bool {
		return l.ContentItemID == contentItemID
	}), nil
}

func (s *Store) TimeByRoleForProject(ctx context.Context, projectID string) ([]timelog.RoleTime, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.aggregateByRoleLocked(func(l timelog.Log) bool {
		return l.ProjectID == projectID
	}), nil
}

// aggregateByRoleLocked sums closed-session durations per role; the role is
// the profile role of the log's owner. Callers hold at least the read lock.
func (s *Store) aggregateByRoleLocked(match func(timelog.Log) bool) []timelog.RoleTime {
	totals := make(map[pipeline.Role]int64)
	for _, l := range s.logs {
		if l.EndTime == nil || !match(l) {
			continue
		}
		p, ok := s.profiles[l.UserID]
		if !ok {
			continue
		}
		totals[p.Role] += l.DurationSeconds
	}
	out := make([]timelog.RoleTime, 0, len(totals))
	for role, secs := range totals {
		out = append(out, timelog.RoleTime{Role: role, TotalSeconds: secs})
	}
	sortByID(out, func(rt timelog.RoleTime) string { return string(rt.Role) })
	return out
}
