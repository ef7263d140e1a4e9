package reports_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"storycat.app/internal/pipeline"
	"storycat.app/internal/reports"
)

// stubStore feeds canned aggregates into the service.
type stubStore struct {
	reports.Store
	bottlenecks []reports.Bottleneck
	load        []reports.StageLoad
	inserted    []reports.PerformanceEntry
}

func (s *stubStore) WorkflowBottlenecks(ctx context.Context) ([]reports.Bottleneck, error) {
	return s.bottlenecks, nil
}

func (s *stubStore) WorkloadDistribution(ctx context.Context) ([]reports.StageLoad, error) {
	return s.load, nil
}

func (s *stubStore) InsertPerformanceEntry(ctx context.Context, e *reports.PerformanceEntry) error {
	s.inserted = append(s.inserted, *e)
	return nil
}

func TestActionableInsightsSeverity(t *testing.T) {
	week := int64(8 * 24 * 60 * 60)
	store := &stubStore{
		bottlenecks: []reports.Bottleneck{
			{Status: pipeline.StatusPendingCopyQC, OpenItems: 12, OldestAgeSeconds: week},
			{Status: pipeline.StatusPendingDesign, OpenItems: 11, OldestAgeSeconds: 60},
			{Status: pipeline.StatusPendingDM, OpenItems: 2, OldestAgeSeconds: week},
			{Status: pipeline.StatusPendingDesignQC, OpenItems: 1, OldestAgeSeconds: 60},
		},
		load: []reports.StageLoad{
			{Stage: pipeline.StageCopywriter, OpenItems: 3},
			{Stage: pipeline.StageDesigner, OpenItems: 9},
		},
	}
	svc, err := reports.NewService(store)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	insights, err := svc.ActionableInsights(context.Background())
	if err != nil {
		t.Fatalf("insights: %v", err)
	}
	// Deep+old queue, deep queue, old queue, plus the busiest-stage info line.
	if len(insights) != 4 {
		t.Fatalf("expected 4 insights, got %d: %+v", len(insights), insights)
	}
	if insights[0].Severity != "critical" {
		t.Fatalf("deep and old queue must be critical, got %s", insights[0].Severity)
	}
	if insights[1].Severity != "warning" || insights[2].Severity != "warning" {
		t.Fatalf("expected two warnings, got %s/%s", insights[1].Severity, insights[2].Severity)
	}
	last := insights[len(insights)-1]
	if last.Severity != "info" || !strings.Contains(last.Message, "Design stage") {
		t.Fatalf("busiest-stage info line wrong: %+v", last)
	}
}

func TestActionableInsightsQuietPipeline(t *testing.T) {
	svc, err := reports.NewService(&stubStore{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	insights, err := svc.ActionableInsights(context.Background())
	if err != nil {
		t.Fatalf("insights: %v", err)
	}
	if len(insights) != 0 {
		t.Fatalf("a quiet pipeline produces no insights, got %+v", insights)
	}
}

func TestLogPerformanceValidation(t *testing.T) {
	store := &stubStore{}
	svc, err := reports.NewService(store)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		entry reports.PerformanceEntry
	}{
		{"missing project", reports.PerformanceEntry{Day: day}},
		{"missing day", reports.PerformanceEntry{ProjectID: "proj-1"}},
		{"negative clicks", reports.PerformanceEntry{ProjectID: "proj-1", Day: day, Clicks: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.LogPerformance(context.Background(), tc.entry); !errors.Is(err, reports.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}

	entry, err := svc.LogPerformance(context.Background(), reports.PerformanceEntry{
		ProjectID:   "proj-1",
		Day:         day,
		Impressions: 1000,
		Clicks:      40,
		SpendCents:  2500,
	})
	if err != nil {
		t.Fatalf("log performance: %v", err)
	}
	if entry.ID == "" {
		t.Fatalf("entry id not assigned")
	}
	if len(store.inserted) != 1 {
		t.Fatalf("entry not persisted")
	}
}

func TestPerformanceTrendRequiresProject(t *testing.T) {
	svc, err := reports.NewService(&stubStore{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if _, err := svc.PerformanceTrend(context.Background(), " ", time.Time{}, time.Time{}); !errors.Is(err, reports.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.PerformanceSummaryFor(context.Background(), ""); !errors.Is(err, reports.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
