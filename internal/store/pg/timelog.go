package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"storycat.app/internal/timelog"
)

var _ timelog.Store = (*Store)(nil)

// CreateLog inserts an open session. The partial unique index
// time_logs_one_active_per_user rejects a second open row for the same
// user, which closes the start/start race at the database.
func (s *Store) CreateLog(ctx context.Context, l *timelog.Log) error {
	_, err := s.db.ExecContext(ctx, `
		insert into time_logs(id, user_id, content_item_id, project_id, start_time)
		values ($1,$2,$3,$4,$5)
	`, l.ID, l.UserID, l.ContentItemID, l.ProjectID, l.StartTime)
	if isUniqueViolation(err, "time_logs_one_active_per_user") {
		return timelog.ErrActiveExists
	}
	return err
}

func (s *Store) FindActiveLog(ctx context.Context, userID string) (*timelog.Log, error) {
	row := s.db.QueryRowContext(ctx, `
		select id, user_id, content_item_id, project_id, start_time, end_time, duration_seconds
		from time_logs where user_id=$1 and end_time is null`, userID)
	return scanLog(row)
}

func (s *Store) CloseLog(ctx context.Context, id string, endTime time.Time, durationSeconds int64) (*timelog.Log, error) {
	row := s.db.QueryRowContext(ctx, `
		update time_logs set end_time=$2, duration_seconds=$3
		where id=$1 and end_time is null
		returning id, user_id, content_item_id, project_id, start_time, end_time, duration_seconds
	`, id, endTime, durationSeconds)
	return scanLog(row)
}

func scanLog(row interface{ Scan(...any) error }) (*timelog.Log, error) {
	var l timelog.Log
	err := row.Scan(&l.ID, &l.UserID, &l.ContentItemID, &l.ProjectID,
		&l.StartTime, &l.EndTime, &l.DurationSeconds)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, timelog.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *Store) TimeByRoleForContent(ctx context.Context, contentItemID string) ([]timelog.RoleTime, error) {
	return s.queryRoleTime(ctx, `
		select p.role, coalesce(sum(t.duration_seconds),0)
		from time_logs t join profiles p on p.id = t.user_id
		where t.content_item_id=$1 and t.end_time is not null
		group by p.role order by p.role`, contentItemID)
}

func (s *Store) TimeByRoleForProject(ctx context.Context, projectID string) ([]timelog.RoleTime, error) {
	return s.queryRoleTime(ctx, `
		select p.role, coalesce(sum(t.duration_seconds),0)
		from time_logs t join profiles p on p.id = t.user_id
		where t.project_id=$1 and t.end_time is not null
		group by p.role order by p.role`, projectID)
}

func (s *Store) queryRoleTime(ctx context.Context, query string, args ...any) ([]timelog.RoleTime, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []timelog.RoleTime
	for rows.Next() {
		var rt timelog.RoleTime
		if err := rows.Scan(&rt.Role, &rt.TotalSeconds); err != nil {
			return nil, err
		}
		res = append(res, rt)
	}
	return res, rows.Err()
}
