package pg

import (
	"context"
	"database/sql"
	"errors"

	"storycat.app/internal/project"
)

var _ project.Store = (*Store)(nil)

const projectColumns = `id, title, brief, start_date, end_date, status, content_count, created_at, updated_at`

func scanProject(row interface{ Scan(...any) error }) (*project.Project, error) {
	var p project.Project
	err := row.Scan(&p.ID, &p.Title, &p.Brief, &p.StartDate, &p.EndDate,
		&p.Status, &p.ContentCount, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, project.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) CreateProject(ctx context.Context, p *project.Project, ob *project.Onboarding) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		insert into projects(id, title, brief, start_date, end_date, status, content_count, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, p.ID, p.Title, p.Brief, p.StartDate, p.EndDate, p.Status, p.ContentCount,
		p.CreatedAt, p.UpdatedAt); err != nil {
		if isUniqueViolation(err, "") {
			return project.ErrConflict
		}
		return err
	}
	if ob != nil {
		if _, err := tx.ExecContext(ctx, `
			insert into project_onboarding(project_id, company_name, brand_assets_url,
				dedicated_dm_id, dedicated_copy_id, dedicated_copy_qc_id,
				dedicated_designer_id, dedicated_design_qc_id, created_at, updated_at)
			values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		`, ob.ProjectID, ob.CompanyName, ob.BrandAssetsURL,
			nullable(ob.DedicatedDMID), nullable(ob.DedicatedCopyID), nullable(ob.DedicatedCopyQCID),
			nullable(ob.DedicatedDesignerID), nullable(ob.DedicatedDesignQCID),
			ob.CreatedAt, ob.UpdatedAt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) FindProject(ctx context.Context, id string) (*project.Project, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+projectColumns+` from projects where id=$1`, id)
	return scanProject(row)
}

func (s *Store) ListProjects(ctx context.Context) ([]*project.Project, error) {
	return s.queryProjects(ctx, `select `+projectColumns+` from projects order by created_at, id`)
}

// ListProjectsVisibleTo returns projects where the user holds an onboarding
// slot or any item assignment.
func (s *Store) ListProjectsVisibleTo(ctx context.Context, userID string) ([]*project.Project, error) {
	return s.queryProjects(ctx, `
		select `+projectColumns+` from projects p
		where exists (
			select 1 from project_onboarding o
			where o.project_id = p.id
			  and $1 in (o.dedicated_dm_id, o.dedicated_copy_id, o.dedicated_copy_qc_id,
				o.dedicated_designer_id, o.dedicated_design_qc_id)
		) or exists (
			select 1 from content_items i
			where i.project_id = p.id
			  and $1 in (i.dm_assignee_id, i.copy_assignee_id, i.copy_qc_assignee_id,
				i.design_assignee_id, i.design_qc_assignee_id)
		)
		order by p.created_at, p.id`, userID)
}

func (s *Store) queryProjects(ctx context.Context, query string, args ...any) ([]*project.Project, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*project.Project
	for rows.Next() {
		var p project.Project
		if err := rows.Scan(&p.ID, &p.Title, &p.Brief, &p.StartDate, &p.EndDate,
			&p.Status, &p.ContentCount, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, &p)
	}
	return res, rows.Err()
}

func (s *Store) FindOnboarding(ctx context.Context, projectID string) (*project.Onboarding, error) {
	row := s.db.QueryRowContext(ctx, `
		select project_id, company_name, brand_assets_url,
			coalesce(dedicated_dm_id,''), coalesce(dedicated_copy_id,''),
			coalesce(dedicated_copy_qc_id,''), coalesce(dedicated_designer_id,''),
			coalesce(dedicated_design_qc_id,''), created_at, updated_at
		from project_onboarding where project_id=$1`, projectID)
	var ob project.Onboarding
	err := row.Scan(&ob.ProjectID, &ob.CompanyName, &ob.BrandAssetsURL,
		&ob.DedicatedDMID, &ob.DedicatedCopyID, &ob.DedicatedCopyQCID,
		&ob.DedicatedDesignerID, &ob.DedicatedDesignQCID, &ob.CreatedAt, &ob.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, project.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ob, nil
}

func (s *Store) UpdateOnboarding(ctx context.Context, ob *project.Onboarding) error {
	res, err := s.db.ExecContext(ctx, `
		update project_onboarding set
			company_name=$2, brand_assets_url=$3,
			dedicated_dm_id=$4, dedicated_copy_id=$5, dedicated_copy_qc_id=$6,
			dedicated_designer_id=$7, dedicated_design_qc_id=$8, updated_at=$9
		where project_id=$1
	`, ob.ProjectID, ob.CompanyName, ob.BrandAssetsURL,
		nullable(ob.DedicatedDMID), nullable(ob.DedicatedCopyID), nullable(ob.DedicatedCopyQCID),
		nullable(ob.DedicatedDesignerID), nullable(ob.DedicatedDesignQCID), ob.UpdatedAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return project.ErrNotFound
	}
	return nil
}

func (s *Store) AppendChangeRequest(ctx context.Context, cr *project.ChangeRequest) error {
	_, err := s.db.ExecContext(ctx, `
		insert into project_change_requests(id, project_id, author_id, note, created_at)
		values ($1,$2,$3,$4,$5)
	`, cr.ID, cr.ProjectID, cr.AuthorID, cr.Note, cr.CreatedAt)
	return err
}

func (s *Store) ListChangeRequests(ctx context.Context, projectID string) ([]*project.ChangeRequest, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, project_id, author_id, note, created_at
		from project_change_requests where project_id=$1 order by created_at, id`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*project.ChangeRequest
	for rows.Next() {
		var cr project.ChangeRequest
		if err := rows.Scan(&cr.ID, &cr.ProjectID, &cr.AuthorID, &cr.Note, &cr.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, &cr)
	}
	return res, rows.Err()
}
