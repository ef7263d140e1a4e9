package pg

import (
	"context"
	"database/sql"
	"errors"

	"storycat.app/internal/content"
	"storycat.app/internal/pipeline"
)

var _ content.Store = (*Store)(nil)

// itemColumns joins the dedicated digital marketer from the project
// onboarding record so the policy engine sees the override.
const itemColumns = `
	i.id, i.project_id, i.publish_date, i.status, i.current_stage,
	i.marketing_title, i.marketing_notes, i.marketing_thread,
	i.copy_content, i.copy_notes, i.design_asset_url,
	coalesce(i.dm_assignee_id,''), coalesce(i.copy_assignee_id,''),
	coalesce(i.copy_qc_assignee_id,''), coalesce(i.design_assignee_id,''),
	coalesce(i.design_qc_assignee_id,''), coalesce(o.dedicated_dm_id,''),
	i.dm_submitted_at, i.copy_submitted_at, i.design_submitted_at,
	i.dm_locked_at, i.copy_locked_at, i.copy_qc_locked_at,
	i.design_locked_at, i.design_qc_locked_at, i.posting_locked_at,
	i.is_admin_verified, i.admin_verified_at, coalesce(i.rejection_reason,''),
	i.created_at, i.updated_at`

const itemFrom = ` from content_items i
	left join project_onboarding o on o.project_id = i.project_id`

func scanItem(row interface{ Scan(...any) error }) (*content.Item, error) {
	var it content.Item
	err := row.Scan(
		&it.ID, &it.ProjectID, &it.PublishDate, &it.Status, &it.CurrentStage,
		&it.MarketingTitle, &it.MarketingNotes, &it.MarketingThread,
		&it.CopyContent, &it.CopyNotes, &it.DesignAssetURL,
		&it.DMAssigneeID, &it.CopyAssigneeID,
		&it.CopyQCAssigneeID, &it.DesignAssigneeID,
		&it.DesignQCAssigneeID, &it.DedicatedDMID,
		&it.DMSubmittedAt, &it.CopySubmittedAt, &it.DesignSubmittedAt,
		&it.DMLockedAt, &it.CopyLockedAt, &it.CopyQCLockedAt,
		&it.DesignLockedAt, &it.DesignQCLockedAt, &it.PostingLockedAt,
		&it.IsAdminVerified, &it.AdminVerifiedAt, &it.RejectionReason,
		&it.CreatedAt, &it.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, content.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// nullable maps the empty string to NULL for optional foreign keys.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (s *Store) CreateItem(ctx context.Context, it *content.Item) error {
	_, err := s.db.ExecContext(ctx, `
		insert into content_items(
			id, project_id, publish_date, status, current_stage,
			marketing_title, marketing_notes, marketing_thread,
			copy_content, copy_notes, design_asset_url,
			dm_assignee_id, copy_assignee_id, copy_qc_assignee_id,
			design_assignee_id, design_qc_assignee_id,
			is_admin_verified, rejection_reason, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
	`, it.ID, it.ProjectID, it.PublishDate, it.Status, it.CurrentStage,
		it.MarketingTitle, it.MarketingNotes, it.MarketingThread,
		it.CopyContent, it.CopyNotes, it.DesignAssetURL,
		nullable(it.DMAssigneeID), nullable(it.CopyAssigneeID), nullable(it.CopyQCAssigneeID),
		nullable(it.DesignAssigneeID), nullable(it.DesignQCAssigneeID),
		it.IsAdminVerified, nullable(it.RejectionReason), it.CreatedAt, it.UpdatedAt)
	if isUniqueViolation(err, "") {
		return content.ErrConflict
	}
	return err
}

func (s *Store) FindItem(ctx context.Context, id string) (*content.Item, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+itemColumns+itemFrom+` where i.id=$1`, id)
	return scanItem(row)
}

func (s *Store) UpdateItem(ctx context.Context, it *content.Item) error {
	res, err := s.db.ExecContext(ctx, `
		update content_items set
			status=$2, current_stage=$3,
			marketing_title=$4, marketing_notes=$5, marketing_thread=$6,
			copy_content=$7, copy_notes=$8, design_asset_url=$9,
			dm_assignee_id=$10, copy_assignee_id=$11, copy_qc_assignee_id=$12,
			design_assignee_id=$13, design_qc_assignee_id=$14,
			dm_submitted_at=$15, copy_submitted_at=$16, design_submitted_at=$17,
			dm_locked_at=$18, copy_locked_at=$19, copy_qc_locked_at=$20,
			design_locked_at=$21, design_qc_locked_at=$22, posting_locked_at=$23,
			is_admin_verified=$24, admin_verified_at=$25, rejection_reason=$26,
			updated_at=$27
		where id=$1
	`, it.ID, it.Status, it.CurrentStage,
		it.MarketingTitle, it.MarketingNotes, it.MarketingThread,
		it.CopyContent, it.CopyNotes, it.DesignAssetURL,
		nullable(it.DMAssigneeID), nullable(it.CopyAssigneeID), nullable(it.CopyQCAssigneeID),
		nullable(it.DesignAssigneeID), nullable(it.DesignQCAssigneeID),
		it.DMSubmittedAt, it.CopySubmittedAt, it.DesignSubmittedAt,
		it.DMLockedAt, it.CopyLockedAt, it.CopyQCLockedAt,
		it.DesignLockedAt, it.DesignQCLockedAt, it.PostingLockedAt,
		it.IsAdminVerified, it.AdminVerifiedAt, nullable(it.RejectionReason),
		it.UpdatedAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return content.ErrNotFound
	}
	return nil
}

func (s *Store) queryItems(ctx context.Context, where string, args ...any) ([]*content.Item, error) {
	rows, err := s.db.QueryContext(ctx, `select `+itemColumns+itemFrom+` `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*content.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, it)
	}
	return res, rows.Err()
}

func (s *Store) ListItemsByProject(ctx context.Context, projectID string) ([]*content.Item, error) {
	return s.queryItems(ctx, `where i.project_id=$1 order by i.publish_date, i.id`, projectID)
}

func (s *Store) ListItemsByStatus(ctx context.Context, status pipeline.Status) ([]*content.Item, error) {
	return s.queryItems(ctx, `where i.status=$1 order by i.updated_at, i.id`, status)
}

func (s *Store) ListItemsAssignedTo(ctx context.Context, userID string) ([]*content.Item, error) {
	return s.queryItems(ctx, `
		where $1 in (i.dm_assignee_id, i.copy_assignee_id, i.copy_qc_assignee_id,
			i.design_assignee_id, i.design_qc_assignee_id)
		order by i.publish_date, i.id`, userID)
}
