package pg

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"storycat.app/internal/auth"
	"storycat.app/internal/content"
	"storycat.app/internal/pipeline"
	"storycat.app/internal/timelog"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db), mock
}

func TestCreateProfileDuplicateEmail(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("insert into profiles").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "profiles_email_key"})

	err := store.CreateProfile(context.Background(), &auth.Profile{
		ID:       "u1",
		Email:    "dup@storycat.app",
		FullName: "Dup",
		Role:     pipeline.RoleCopywriter,
		Status:   auth.ProfileStatusActive,
	})
	if !errors.Is(err, auth.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFindProfileNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("select .* from profiles where id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.FindProfile(context.Background(), "missing")
	if !errors.Is(err, auth.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFindItemScansJoinedRow(t *testing.T) {
	store, mock := newMockStore(t)

	now := time.Now().UTC()
	cols := []string{
		"id", "project_id", "publish_date", "status", "current_stage",
		"marketing_title", "marketing_notes", "marketing_thread",
		"copy_content", "copy_notes", "design_asset_url",
		"dm_assignee_id", "copy_assignee_id", "copy_qc_assignee_id",
		"design_assignee_id", "design_qc_assignee_id", "dedicated_dm_id",
		"dm_submitted_at", "copy_submitted_at", "design_submitted_at",
		"dm_locked_at", "copy_locked_at", "copy_qc_locked_at",
		"design_locked_at", "design_qc_locked_at", "posting_locked_at",
		"is_admin_verified", "admin_verified_at", "rejection_reason",
		"created_at", "updated_at",
	}
	mock.ExpectQuery("select .* from content_items i").
		WithArgs("item-1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			"item-1", "proj-1", now, "pending_copy", "copywriter",
			"Launch teaser", "", "",
			"", "", "",
			"dm-1", "copy-1", "", "", "", "dedicated-dm",
			now, nil, nil,
			now, nil, nil, nil, nil, nil,
			false, nil, "",
			now, now,
		))

	item, err := store.FindItem(context.Background(), "item-1")
	if err != nil {
		t.Fatalf("FindItem: %v", err)
	}
	if item.Status != pipeline.StatusPendingCopy || item.CurrentStage != pipeline.StageCopywriter {
		t.Fatalf("unexpected state: %s / %s", item.Status, item.CurrentStage)
	}
	if item.DedicatedDMID != "dedicated-dm" {
		t.Fatalf("onboarding join not applied: %q", item.DedicatedDMID)
	}
	if item.DMLockedAt == nil || item.CopyLockedAt != nil {
		t.Fatalf("lock timestamps scanned wrong")
	}
}

func TestUpdateItemNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("update content_items set").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.UpdateItem(context.Background(), &content.Item{ID: "ghost"})
	if !errors.Is(err, content.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateLogMapsActiveIndexViolation(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("insert into time_logs").
		WithArgs("log-2", "u1", "item-1", "proj-1", sqlmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "time_logs_one_active_per_user"})

	err := store.CreateLog(context.Background(), &timelog.Log{
		ID:            "log-2",
		UserID:        "u1",
		ContentItemID: "item-1",
		ProjectID:     "proj-1",
		StartTime:     time.Now().UTC(),
	})
	if !errors.Is(err, timelog.ErrActiveExists) {
		t.Fatalf("expected ErrActiveExists, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateLogOtherUniqueViolationPassesThrough(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("insert into time_logs").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "time_logs_pkey"})

	err := store.CreateLog(context.Background(), &timelog.Log{
		ID: "log-1", UserID: "u1", ContentItemID: "i1", ProjectID: "p1",
	})
	if errors.Is(err, timelog.ErrActiveExists) {
		t.Fatalf("pkey violation must not map to ErrActiveExists")
	}
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestCloseLogAlreadyClosed(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("update time_logs set end_time").
		WithArgs("log-1", sqlmock.AnyArg(), int64(90)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.CloseLog(context.Background(), "log-1", time.Now().UTC(), 90)
	if !errors.Is(err, timelog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTimeByRoleForProject(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("select p.role, coalesce").
		WithArgs("proj-1").
		WillReturnRows(sqlmock.NewRows([]string{"role", "total"}).
			AddRow("copywriter", int64(3600)).
			AddRow("designer", int64(1800)))

	got, err := store.TimeByRoleForProject(context.Background(), "proj-1")
	if err != nil {
		t.Fatalf("TimeByRoleForProject: %v", err)
	}
	if len(got) != 2 || got[0].Role != pipeline.RoleCopywriter || got[0].TotalSeconds != 3600 {
		t.Fatalf("unexpected aggregates: %+v", got)
	}
}
