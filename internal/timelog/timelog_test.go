package timelog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"storycat.app/internal/auth"
	"storycat.app/internal/pipeline"
	"storycat.app/internal/store/memory"
	"storycat.app/internal/timelog"
)

// seedTimelogProfiles registers the owners of the tracked sessions; role
// aggregation resolves roles through the profile store.
func seedTimelogProfiles(t *testing.T, mem *memory.Store) {
	t.Helper()
	profiles := []auth.Profile{
		{ID: "copy-1", Email: "copy@storycat.test", Role: pipeline.RoleCopywriter, Status: auth.ProfileStatusActive},
		{ID: "design-1", Email: "design@storycat.test", Role: pipeline.RoleDesigner, Status: auth.ProfileStatusActive},
	}
	for i := range profiles {
		if err := mem.CreateProfile(context.Background(), &profiles[i]); err != nil {
			t.Fatalf("seed profile %s: %v", profiles[i].ID, err)
		}
	}
}

func newTimelogService(t *testing.T, opts ...timelog.ServiceOption) *timelog.Service {
	t.Helper()
	svc, err := timelog.NewService(memory.New(), opts...)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestStartRefusesSecondActiveSession(t *testing.T) {
	svc := newTimelogService(t)
	ctx := context.Background()

	first, err := svc.Start(ctx, "u1", "item-1", "proj-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if first.EndTime != nil {
		t.Fatalf("fresh session must be open")
	}

	if _, err := svc.Start(ctx, "u1", "item-2", "proj-1"); !errors.Is(err, timelog.ErrActiveExists) {
		t.Fatalf("expected ErrActiveExists, got %v", err)
	}

	// A different user is unaffected.
	if _, err := svc.Start(ctx, "u2", "item-1", "proj-1"); err != nil {
		t.Fatalf("second user start: %v", err)
	}
}

func TestStartValidatesInput(t *testing.T) {
	svc := newTimelogService(t)
	ctx := context.Background()

	if _, err := svc.Start(ctx, "u1", "", "proj-1"); !errors.Is(err, timelog.ErrInvalidInput) {
		t.Fatalf("missing item: expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Start(ctx, "u1", "item-1", " "); !errors.Is(err, timelog.ErrInvalidInput) {
		t.Fatalf("missing project: expected ErrInvalidInput, got %v", err)
	}
}

func TestStopRecordsDuration(t *testing.T) {
	current := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return current }
	svc := newTimelogService(t, timelog.WithClock(clock))
	ctx := context.Background()

	if _, err := svc.Start(ctx, "u1", "item-1", "proj-1"); err != nil {
		t.Fatalf("start: %v", err)
	}

	current = current.Add(90 * time.Minute)
	closed, err := svc.Stop(ctx, "u1")
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if closed.DurationSeconds != 90*60 {
		t.Fatalf("duration = %d, want %d", closed.DurationSeconds, 90*60)
	}
	if closed.EndTime == nil || !closed.EndTime.Equal(current) {
		t.Fatalf("end time = %v, want %v", closed.EndTime, current)
	}

	if _, err := svc.Stop(ctx, "u1"); !errors.Is(err, timelog.ErrNoActive) {
		t.Fatalf("second stop: expected ErrNoActive, got %v", err)
	}
}

func TestActiveReportsOpenSession(t *testing.T) {
	svc := newTimelogService(t)
	ctx := context.Background()

	if _, err := svc.Active(ctx, "u1"); !errors.Is(err, timelog.ErrNoActive) {
		t.Fatalf("expected ErrNoActive before start, got %v", err)
	}

	started, err := svc.Start(ctx, "u1", "item-1", "proj-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	active, err := svc.Active(ctx, "u1")
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if active.ID != started.ID {
		t.Fatalf("active id = %s, want %s", active.ID, started.ID)
	}
}

func TestByRoleAggregatesClosedSessionsOnly(t *testing.T) {
	current := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return current }
	mem := memory.New()
	svc, err := timelog.NewService(mem, timelog.WithClock(clock))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()
	seedTimelogProfiles(t, mem)

	// Copywriter tracks an hour, designer tracks thirty minutes.
	if _, err := svc.Start(ctx, "copy-1", "item-1", "proj-1"); err != nil {
		t.Fatalf("start copy: %v", err)
	}
	current = current.Add(time.Hour)
	if _, err := svc.Stop(ctx, "copy-1"); err != nil {
		t.Fatalf("stop copy: %v", err)
	}
	if _, err := svc.Start(ctx, "design-1", "item-1", "proj-1"); err != nil {
		t.Fatalf("start design: %v", err)
	}
	current = current.Add(30 * time.Minute)
	if _, err := svc.Stop(ctx, "design-1"); err != nil {
		t.Fatalf("stop design: %v", err)
	}
	// An open session must not leak into the aggregate.
	if _, err := svc.Start(ctx, "copy-1", "item-1", "proj-1"); err != nil {
		t.Fatalf("restart copy: %v", err)
	}

	agg, err := svc.ByRoleForContent(ctx, "item-1")
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	got := map[pipeline.Role]int64{}
	for _, rt := range agg {
		got[rt.Role] = rt.TotalSeconds
	}
	if got[pipeline.RoleCopywriter] != 3600 {
		t.Fatalf("copywriter seconds = %d, want 3600", got[pipeline.RoleCopywriter])
	}
	if got[pipeline.RoleDesigner] != 1800 {
		t.Fatalf("designer seconds = %d, want 1800", got[pipeline.RoleDesigner])
	}

	byProject, err := svc.ByRoleForProject(ctx, "proj-1")
	if err != nil {
		t.Fatalf("project aggregate: %v", err)
	}
	var total int64
	for _, rt := range byProject {
		total += rt.TotalSeconds
	}
	if total != 3600+1800 {
		t.Fatalf("project total = %d, want %d", total, 3600+1800)
	}
}
