package pg

import (
	"context"
	"time"

	"storycat.app/internal/reports"
)

var _ reports.Store = (*Store)(nil)

func (s *Store) ProductionStats(ctx context.Context, from, to time.Time) (reports.ProductionStats, error) {
	var stats reports.ProductionStats
	err := s.db.QueryRowContext(ctx, `
		select count(*),
			count(*) filter (where status='completed'),
			count(*) filter (where is_admin_verified),
			count(*) filter (where status <> 'completed')
		from content_items
		where created_at between $1 and $2
	`, from, to).Scan(&stats.TotalItems, &stats.CompletedItems, &stats.VerifiedItems, &stats.InProgress)
	if err != nil {
		return reports.ProductionStats{}, err
	}
	if stats.TotalItems > 0 {
		stats.CompletionRate = float64(stats.CompletedItems) / float64(stats.TotalItems)
	}
	return stats, nil
}

func (s *Store) ProductionVolume(ctx context.Context, from, to time.Time) ([]reports.VolumePoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		select period, sum(created), sum(completed) from (
			select to_char(created_at, 'YYYY-MM') as period, 1 as created, 0 as completed
			from content_items where created_at between $1 and $2
			union all
			select to_char(updated_at, 'YYYY-MM'), 0, 1
			from content_items where status='completed' and updated_at between $1 and $2
		) v group by period order by period
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []reports.VolumePoint
	for rows.Next() {
		var p reports.VolumePoint
		if err := rows.Scan(&p.Period, &p.Created, &p.Completed); err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

func (s *Store) TimeEfficiency(ctx context.Context) ([]reports.RoleEfficiency, error) {
	rows, err := s.db.QueryContext(ctx, `
		select p.role, coalesce(sum(t.duration_seconds),0), count(distinct t.content_item_id)
		from time_logs t join profiles p on p.id = t.user_id
		where t.end_time is not null
		group by p.role order by p.role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []reports.RoleEfficiency
	for rows.Next() {
		var e reports.RoleEfficiency
		if err := rows.Scan(&e.Role, &e.TotalSeconds, &e.ItemsTouched); err != nil {
			return nil, err
		}
		if e.ItemsTouched > 0 {
			e.AvgSecondsPerItem = e.TotalSeconds / int64(e.ItemsTouched)
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

// memberScoreQuery counts verified items where the employee holds any
// assignee slot and sums their closed tracked time.
const memberScoreQuery = `
	select p.id, p.full_name, p.role,
		(select count(*) from content_items i
		 where i.is_admin_verified
		   and p.id in (i.dm_assignee_id, i.copy_assignee_id, i.copy_qc_assignee_id,
				i.design_assignee_id, i.design_qc_assignee_id)),
		coalesce((select sum(t.duration_seconds) from time_logs t
		 where t.user_id = p.id and t.end_time is not null), 0)
	from profiles p
	where p.role <> 'admin'`

func (s *Store) TeamRanking(ctx context.Context) ([]reports.MemberScore, error) {
	scores, err := s.queryMemberScores(ctx, memberScoreQuery+` order by p.id`)
	if err != nil {
		return nil, err
	}
	sortScores(scores, func(a, b reports.MemberScore) bool { return a.Score > b.Score })
	return scores, nil
}

func (s *Store) AgencyLeaderboard(ctx context.Context) ([]reports.MemberScore, error) {
	scores, err := s.queryMemberScores(ctx, memberScoreQuery+` order by p.id`)
	if err != nil {
		return nil, err
	}
	sortScores(scores, func(a, b reports.MemberScore) bool { return a.ItemsCompleted > b.ItemsCompleted })
	return scores, nil
}

func (s *Store) CreativeLeaderboard(ctx context.Context) ([]reports.MemberScore, error) {
	scores, err := s.queryMemberScores(ctx,
		memberScoreQuery+` and p.role in ('copywriter','designer') order by p.id`)
	if err != nil {
		return nil, err
	}
	sortScores(scores, func(a, b reports.MemberScore) bool { return a.ItemsCompleted > b.ItemsCompleted })
	return scores, nil
}

func (s *Store) queryMemberScores(ctx context.Context, query string) ([]reports.MemberScore, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []reports.MemberScore
	for rows.Next() {
		var m reports.MemberScore
		if err := rows.Scan(&m.UserID, &m.FullName, &m.Role, &m.ItemsCompleted, &m.TotalSeconds); err != nil {
			return nil, err
		}
		if m.TotalSeconds > 0 {
			m.Score = float64(m.ItemsCompleted) / (float64(m.TotalSeconds) / 3600)
		} else {
			m.Score = float64(m.ItemsCompleted)
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

// sortScores is a stable insertion sort; rankings are small.
func sortScores(scores []reports.MemberScore, less func(a, b reports.MemberScore) bool) {
	for i := 1; i < len(scores); i++ {
		for j := i; j > 0 && less(scores[j], scores[j-1]); j-- {
			scores[j], scores[j-1] = scores[j-1], scores[j]
		}
	}
}

func (s *Store) WorkloadDistribution(ctx context.Context) ([]reports.StageLoad, error) {
	rows, err := s.db.QueryContext(ctx, `
		select current_stage, count(*)
		from content_items where status <> 'completed'
		group by current_stage order by current_stage`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []reports.StageLoad
	for rows.Next() {
		var sl reports.StageLoad
		if err := rows.Scan(&sl.Stage, &sl.OpenItems); err != nil {
			return nil, err
		}
		res = append(res, sl)
	}
	return res, rows.Err()
}

func (s *Store) WorkflowBottlenecks(ctx context.Context) ([]reports.Bottleneck, error) {
	rows, err := s.db.QueryContext(ctx, `
		select status, count(*),
			coalesce(max(extract(epoch from now() - updated_at))::bigint, 0)
		from content_items where status <> 'completed'
		group by status order by count(*) desc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []reports.Bottleneck
	for rows.Next() {
		var b reports.Bottleneck
		if err := rows.Scan(&b.Status, &b.OpenItems, &b.OldestAgeSeconds); err != nil {
			return nil, err
		}
		res = append(res, b)
	}
	return res, rows.Err()
}

func (s *Store) InsertPerformanceEntry(ctx context.Context, e *reports.PerformanceEntry) error {
	_, err := s.db.ExecContext(ctx, `
		insert into marketing_performance(id, project_id, day, impressions, clicks, conversions, spend_cents, created_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8)
	`, e.ID, e.ProjectID, e.Day, e.Impressions, e.Clicks, e.Conversions, e.SpendCents, e.CreatedAt)
	return err
}

func (s *Store) PerformanceTrend(ctx context.Context, projectID string, from, to time.Time) ([]reports.PerformanceEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, project_id, day, impressions, clicks, conversions, spend_cents, created_at
		from marketing_performance
		where project_id=$1 and day between $2 and $3
		order by day`, projectID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []reports.PerformanceEntry
	for rows.Next() {
		var e reports.PerformanceEntry
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.Day, &e.Impressions, &e.Clicks,
			&e.Conversions, &e.SpendCents, &e.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

func (s *Store) PerformanceSummary(ctx context.Context, projectID string) (reports.PerformanceSummary, error) {
	summary := reports.PerformanceSummary{ProjectID: projectID}
	err := s.db.QueryRowContext(ctx, `
		select coalesce(sum(impressions),0), coalesce(sum(clicks),0),
			coalesce(sum(conversions),0), coalesce(sum(spend_cents),0)
		from marketing_performance where project_id=$1
	`, projectID).Scan(&summary.Impressions, &summary.Clicks, &summary.Conversions, &summary.SpendCents)
	if err != nil {
		return reports.PerformanceSummary{}, err
	}
	if summary.Impressions > 0 {
		summary.CTR = float64(summary.Clicks) / float64(summary.Impressions)
	}
	return summary, nil
}
