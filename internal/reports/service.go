package reports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storycat.app/internal/ids"
	"storycat.app/internal/pipeline"
)

var ErrInvalidInput = errors.New("reports: invalid input")

// Store describes the aggregate queries behind the reporting surface.
type Store interface {
	ProductionStats(ctx context.Context, from, to time.Time) (ProductionStats, error)
	ProductionVolume(ctx context.Context, from, to time.Time) ([]VolumePoint, error)
	TimeEfficiency(ctx context.Context) ([]RoleEfficiency, error)
	TeamRanking(ctx context.Context) ([]MemberScore, error)
	AgencyLeaderboard(ctx context.Context) ([]MemberScore, error)
	CreativeLeaderboard(ctx context.Context) ([]MemberScore, error)
	WorkloadDistribution(ctx context.Context) ([]StageLoad, error)
	WorkflowBottlenecks(ctx context.Context) ([]Bottleneck, error)
	InsertPerformanceEntry(ctx context.Context, e *PerformanceEntry) error
	PerformanceTrend(ctx context.Context, projectID string, from, to time.Time) ([]PerformanceEntry, error)
	PerformanceSummary(ctx context.Context, projectID string) (PerformanceSummary, error)
}

// Service fronts the aggregate store and derives insights.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService constructs a reports Service.
func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, errors.New("reports: store is required")
	}
	return &Service{store: store, now: time.Now}, nil
}

// normalizeWindow defaults an empty window to the trailing 90 days.
func (s *Service) normalizeWindow(from, to time.Time) (time.Time, time.Time) {
	if to.IsZero() {
		to = s.now().UTC()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -90)
	}
	return from, to
}

// ProductionStats reports agency output for the window.
func (s *Service) ProductionStats(ctx context.Context, from, to time.Time) (ProductionStats, error) {
	from, to = s.normalizeWindow(from, to)
	return s.store.ProductionStats(ctx, from, to)
}

// ProductionVolume reports monthly created/completed counts.
func (s *Service) ProductionVolume(ctx context.Context, from, to time.Time) ([]VolumePoint, error) {
	from, to = s.normalizeWindow(from, to)
	return s.store.ProductionVolume(ctx, from, to)
}

// TimeEfficiency reports tracked time per role.
func (s *Service) TimeEfficiency(ctx context.Context) ([]RoleEfficiency, error) {
	return s.store.TimeEfficiency(ctx)
}

// TeamRanking ranks all employees by completed work per tracked hour.
func (s *Service) TeamRanking(ctx context.Context) ([]MemberScore, error) {
	return s.store.TeamRanking(ctx)
}

// AgencyLeaderboard ranks all employees by raw verified output.
func (s *Service) AgencyLeaderboard(ctx context.Context) ([]MemberScore, error) {
	return s.store.AgencyLeaderboard(ctx)
}

// CreativeLeaderboard ranks copywriters and designers by verified output.
func (s *Service) CreativeLeaderboard(ctx context.Context) ([]MemberScore, error) {
	return s.store.CreativeLeaderboard(ctx)
}

// WorkloadDistribution counts open items per actor stage.
func (s *Service) WorkloadDistribution(ctx context.Context) ([]StageLoad, error) {
	return s.store.WorkloadDistribution(ctx)
}

// WorkflowBottlenecks reports statuses where work is piling up.
func (s *Service) WorkflowBottlenecks(ctx context.Context) ([]Bottleneck, error) {
	return s.store.WorkflowBottlenecks(ctx)
}

// Insight thresholds. A queue deeper than bottleneckDepth or older than
// bottleneckAge is worth flagging.
const (
	bottleneckDepth = 10
	bottleneckAge   = 7 * 24 * time.Hour
)

// ActionableInsights derives recommendations from the bottleneck and
// workload reports. Pure derivation; no extra queries beyond the two feeds.
func (s *Service) ActionableInsights(ctx context.Context) ([]Insight, error) {
	bottlenecks, err := s.store.WorkflowBottlenecks(ctx)
	if err != nil {
		return nil, err
	}
	load, err := s.store.WorkloadDistribution(ctx)
	if err != nil {
		return nil, err
	}

	var insights []Insight
	for _, b := range bottlenecks {
		age := time.Duration(b.OldestAgeSeconds) * time.Second
		switch {
		case b.OpenItems >= bottleneckDepth && age >= bottleneckAge:
			insights = append(insights, Insight{
				Severity: "critical",
				Message: fmt.Sprintf("%d items are waiting in %s, the oldest for %d days. Rebalance assignments for the %s stage.",
					b.OpenItems, b.Status, int(age.Hours()/24), pipeline.StageLabel(pipeline.StageForStatus(b.Status))),
			})
		case b.OpenItems >= bottleneckDepth:
			insights = append(insights, Insight{
				Severity: "warning",
				Message:  fmt.Sprintf("%d items queued in %s. Consider adding capacity.", b.OpenItems, b.Status),
			})
		case age >= bottleneckAge:
			insights = append(insights, Insight{
				Severity: "warning",
				Message:  fmt.Sprintf("The oldest item in %s has waited %d days.", b.Status, int(age.Hours()/24)),
			})
		}
	}

	var busiest StageLoad
	for _, sl := range load {
		if sl.OpenItems > busiest.OpenItems {
			busiest = sl
		}
	}
	if busiest.OpenItems > 0 {
		insights = append(insights, Insight{
			Severity: "info",
			Message:  fmt.Sprintf("Most open work sits in the %s stage (%d items).", pipeline.StageLabel(busiest.Stage), busiest.OpenItems),
		})
	}
	return insights, nil
}

// LogPerformance records one day of paid marketing results.
func (s *Service) LogPerformance(ctx context.Context, e PerformanceEntry) (*PerformanceEntry, error) {
	if strings.TrimSpace(e.ProjectID) == "" {
		return nil, fmt.Errorf("%w: project_id is required", ErrInvalidInput)
	}
	if e.Day.IsZero() {
		return nil, fmt.Errorf("%w: day is required", ErrInvalidInput)
	}
	if e.Impressions < 0 || e.Clicks < 0 || e.Conversions < 0 || e.SpendCents < 0 {
		return nil, fmt.Errorf("%w: metrics must be non-negative", ErrInvalidInput)
	}
	e.ID = ids.New()
	e.CreatedAt = s.now().UTC()
	if err := s.store.InsertPerformanceEntry(ctx, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// PerformanceTrend returns daily entries for a project within the window.
func (s *Service) PerformanceTrend(ctx context.Context, projectID string, from, to time.Time) ([]PerformanceEntry, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, fmt.Errorf("%w: project_id is required", ErrInvalidInput)
	}
	from, to = s.normalizeWindow(from, to)
	return s.store.PerformanceTrend(ctx, projectID, from, to)
}

// PerformanceSummaryFor aggregates a project's marketing results.
func (s *Service) PerformanceSummaryFor(ctx context.Context, projectID string) (PerformanceSummary, error) {
	if strings.TrimSpace(projectID) == "" {
		return PerformanceSummary{}, fmt.Errorf("%w: project_id is required", ErrInvalidInput)
	}
	return s.store.PerformanceSummary(ctx, projectID)
}
