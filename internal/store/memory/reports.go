package memory

import (
	"context"
	"sort"
	"time"

	"storycat.app/internal/pipeline"
	"storycat.app/internal/reports"
)

var _ reports.Store = (*Store)(nil)

type perfRow struct {
	reports.PerformanceEntry
}

func (s *Store) ProductionStats(ctx context.Context, from, to time.Time) (reports.ProductionStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var stats reports.ProductionStats
	for _, item := range s.items {
		if item.CreatedAt.Before(from) || item.CreatedAt.After(to) {
			continue
		}
		stats.TotalItems++
		switch {
		case item.IsAdminVerified:
			stats.VerifiedItems++
			stats.CompletedItems++
		case item.Status == pipeline.StatusCompleted:
			stats.CompletedItems++
		default:
			stats.InProgress++
		}
	}
	if stats.TotalItems > 0 {
		stats.CompletionRate = float64(stats.CompletedItems) / float64(stats.TotalItems)
	}
	return stats, nil
}

func (s *Store) ProductionVolume(ctx context.Context, from, to time.Time) ([]reports.VolumePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byPeriod := make(map[string]*reports.VolumePoint)
	point := func(t time.Time) *reports.VolumePoint {
		period := t.UTC().Format("2006-01")
		p, ok := byPeriod[period]
		if !ok {
			p = &reports.VolumePoint{Period: period}
			byPeriod[period] = p
		}
		return p
	}
	for _, item := range s.items {
		if !item.CreatedAt.Before(from) && !item.CreatedAt.After(to) {
			point(item.CreatedAt).Created++
		}
		if item.Status == pipeline.StatusCompleted &&
			!item.UpdatedAt.Before(from) && !item.UpdatedAt.After(to) {
			point(item.UpdatedAt).Completed++
		}
	}
	out := make([]reports.VolumePoint, 0, len(byPeriod))
	for _, p := range byPeriod {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out, nil
}

func (s *Store) TimeEfficiency(ctx context.Context) ([]reports.RoleEfficiency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	totals := make(map[pipeline.Role]*reports.RoleEfficiency)
	touched := make(map[pipeline.Role]map[string]bool)
	for _, l := range s.logs {
		if l.EndTime == nil {
			continue
		}
		p, ok := s.profiles[l.UserID]
		if !ok {
			continue
		}
		eff, ok := totals[p.Role]
		if !ok {
			eff = &reports.RoleEfficiency{Role: p.Role}
			totals[p.Role] = eff
			touched[p.Role] = make(map[string]bool)
		}
		eff.TotalSeconds += l.DurationSeconds
		touched[p.Role][l.ContentItemID] = true
	}
	out := make([]reports.RoleEfficiency, 0, len(totals))
	for role, eff := range totals {
		eff.ItemsTouched = len(touched[role])
		if eff.ItemsTouched > 0 {
			eff.AvgSecondsPerItem = eff.TotalSeconds / int64(eff.ItemsTouched)
		}
		out = append(out, *eff)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Role < out[j].Role })
	return out, nil
}

func (s *Store) TeamRanking(ctx context.Context) ([]reports.MemberScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	scores := s.memberScoresLocked(nil)
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].UserID < scores[j].UserID
	})
	return scores, nil
}

func (s *Store) AgencyLeaderboard(ctx context.Context) ([]reports.MemberScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	scores := s.memberScoresLocked(nil)
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].ItemsCompleted != scores[j].ItemsCompleted {
			return scores[i].ItemsCompleted > scores[j].ItemsCompleted
		}
		return scores[i].UserID < scores[j].UserID
	})
	return scores, nil
}

func (s *Store) CreativeLeaderboard(ctx context.Context) ([]reports.MemberScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	creative := map[pipeline.Role]bool{
		pipeline.RoleCopywriter: true,
		pipeline.RoleDesigner:   true,
	}
	scores := s.memberScoresLocked(func(role pipeline.Role) bool { return creative[role] })
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].ItemsCompleted != scores[j].ItemsCompleted {
			return scores[i].ItemsCompleted > scores[j].ItemsCompleted
		}
		return scores[i].UserID < scores[j].UserID
	})
	return scores, nil
}

// memberScoresLocked computes per-employee completed counts and tracked time.
// Completed attribution: an employee completed an item if it is verified and
// they hold any assignee slot on it. Callers hold at least the read lock.
func (s *Store) memberScoresLocked(roleFilter func(pipeline.Role) bool) []reports.MemberScore {
	var out []reports.MemberScore
	for _, p := range s.profiles {
		if p.Role == pipeline.RoleAdmin {
			continue
		}
		if roleFilter != nil && !roleFilter(p.Role) {
			continue
		}
		score := reports.MemberScore{UserID: p.ID, FullName: p.FullName, Role: p.Role}
		for _, item := range s.items {
			if item.IsAdminVerified && assignedTo(item, p.ID) {
				score.ItemsCompleted++
			}
		}
		for _, l := range s.logs {
			if l.UserID == p.ID && l.EndTime != nil {
				score.TotalSeconds += l.DurationSeconds
			}
		}
		if score.TotalSeconds > 0 {
			score.Score = float64(score.ItemsCompleted) / (float64(score.TotalSeconds) / 3600)
		} else {
			score.Score = float64(score.ItemsCompleted)
		}
		out = append(out, score)
	}
	return out
}

func (s *Store) WorkloadDistribution(ctx context.Context) ([]reports.StageLoad, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[pipeline.Stage]int)
	for _, item := range s.items {
		if item.Status == pipeline.StatusCompleted {
			continue
		}
		counts[item.CurrentStage]++
	}
	var out []reports.StageLoad
	for _, stage := range pipeline.Stages() {
		if n := counts[stage]; n > 0 {
			out = append(out, reports.StageLoad{Stage: stage, OpenItems: n})
		}
	}
	return out, nil
}

func (s *Store) WorkflowBottlenecks(ctx context.Context) ([]reports.Bottleneck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := time.Now().UTC()
	byStatus := make(map[pipeline.Status]*reports.Bottleneck)
	for _, item := range s.items {
		if item.Status == pipeline.StatusCompleted {
			continue
		}
		b, ok := byStatus[item.Status]
		if !ok {
			b = &reports.Bottleneck{Status: item.Status}
			byStatus[item.Status] = b
		}
		b.OpenItems++
		age := int64(now.Sub(item.UpdatedAt) / time.Second)
		if age > b.OldestAgeSeconds {
			b.OldestAgeSeconds = age
		}
	}
	out := make([]reports.Bottleneck, 0, len(byStatus))
	for _, b := range byStatus {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OpenItems > out[j].OpenItems })
	return out, nil
}

func (s *Store) InsertPerformanceEntry(ctx context.Context, e *reports.PerformanceEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.perf = append(s.perf, perfRow{PerformanceEntry: *e})
	return nil
}

func (s *Store) PerformanceTrend(ctx context.Context, projectID string, from, to time.Time) ([]reports.PerformanceEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []reports.PerformanceEntry
	for _, row := range s.perf {
		if row.ProjectID != projectID {
			continue
		}
		if row.Day.Before(from) || row.Day.After(to) {
			continue
		}
		out = append(out, row.PerformanceEntry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

func (s *Store) PerformanceSummary(ctx context.Context, projectID string) (reports.PerformanceSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summary := reports.PerformanceSummary{ProjectID: projectID}
	for _, row := range s.perf {
		if row.ProjectID != projectID {
			continue
		}
		summary.Impressions += row.Impressions
		summary.Clicks += row.Clicks
		summary.Conversions += row.Conversions
		summary.SpendCents += row.SpendCents
	}
	if summary.Impressions > 0 {
		summary.CTR = float64(summary.Clicks) / float64(summary.Impressions)
	}
	return summary, nil
}
