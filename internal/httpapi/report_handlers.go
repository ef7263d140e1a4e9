package httpapi

import (
	"net/http"
	"strings"
	"time"

	"storycat.app/internal/audit"
	"storycat.app/internal/pipeline"
	"storycat.app/internal/reports"
)

type performanceEntryRequest struct {
	ProjectID   string `json:"project_id"`
	Day         string `json:"day"` // YYYY-MM-DD
	Impressions int64  `json:"impressions"`
	Clicks      int64  `json:"clicks"`
	Conversions int64  `json:"conversions"`
	SpendCents  int64  `json:"spend_cents"`
}

// handleReports dispatches the /v1/reports/ surface. Aggregate views are
// admin-only; marketing performance is also open to the digital marketing
// manager who produces the numbers.
func (a *API) handleReports(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentProfile(w, r)
	if !ok {
		return
	}
	report := strings.TrimPrefix(r.URL.Path, "/v1/reports/")

	canMarketing := actor.IsAdmin() || actor.Role == pipeline.RoleDigitalMarketingManager
	if strings.HasPrefix(report, "performance") {
		if !canMarketing {
			writeError(w, r, http.StatusForbidden, "admin or digital marketing manager role required")
			return
		}
	} else if !actor.IsAdmin() {
		writeError(w, r, http.StatusForbidden, "admin role required")
		return
	}

	switch report {
	case "production":
		a.reportWindow(w, r, func(from, to time.Time) (any, error) {
			return a.reports.ProductionStats(r.Context(), from, to)
		})
	case "volume":
		a.reportWindow(w, r, func(from, to time.Time) (any, error) {
			return a.reports.ProductionVolume(r.Context(), from, to)
		})
	case "efficiency":
		a.report(w, r, func() (any, error) { return a.reports.TimeEfficiency(r.Context()) })
	case "ranking":
		a.report(w, r, func() (any, error) { return a.reports.TeamRanking(r.Context()) })
	case "leaderboard":
		a.report(w, r, func() (any, error) { return a.reports.AgencyLeaderboard(r.Context()) })
	case "leaderboard/creative":
		a.report(w, r, func() (any, error) { return a.reports.CreativeLeaderboard(r.Context()) })
	case "workload":
		a.report(w, r, func() (any, error) { return a.reports.WorkloadDistribution(r.Context()) })
	case "bottlenecks":
		a.report(w, r, func() (any, error) { return a.reports.WorkflowBottlenecks(r.Context()) })
	case "insights":
		a.report(w, r, func() (any, error) { return a.reports.ActionableInsights(r.Context()) })
	case "performance":
		a.logPerformance(w, r)
	case "performance/trend":
		a.performanceTrend(w, r)
	case "performance/summary":
		a.performanceSummary(w, r)
	default:
		writeError(w, r, http.StatusNotFound, "unknown report")
	}
}

func (a *API) report(w http.ResponseWriter, r *http.Request, fn func() (any, error)) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	out, err := fn()
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"report": out})
}

func (a *API) reportWindow(w http.ResponseWriter, r *http.Request, fn func(from, to time.Time) (any, error)) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	from, to, err := parseWindow(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	out, err := fn(from, to)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"report": out})
}

func (a *API) logPerformance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req performanceEntryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	day, err := parseDate(req.Day)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "day must be YYYY-MM-DD")
		return
	}
	entry, err := a.reports.LogPerformance(r.Context(), reports.PerformanceEntry{
		ProjectID:   req.ProjectID,
		Day:         day,
		Impressions: req.Impressions,
		Clicks:      req.Clicks,
		Conversions: req.Conversions,
		SpendCents:  req.SpendCents,
	})
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "reports.performance.log", map[string]any{
		"project_id": entry.ProjectID,
		"day":        day.Format("2006-01-02"),
	})
	writeJSON(w, http.StatusCreated, entry)
}

func (a *API) performanceTrend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	from, to, err := parseWindow(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	trend, err := a.reports.PerformanceTrend(r.Context(), r.URL.Query().Get("project_id"), from, to)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"report": trend})
}

func (a *API) performanceSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	summary, err := a.reports.PerformanceSummaryFor(r.Context(), r.URL.Query().Get("project_id"))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"report": summary})
}

// parseWindow reads optional from/to query dates; zero values let the
// service default the window.
func parseWindow(r *http.Request) (time.Time, time.Time, error) {
	var from, to time.Time
	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		v, err := parseDate(raw)
		if err != nil {
			return from, to, err
		}
		from = v
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
		v, err := parseDate(raw)
		if err != nil {
			return from, to, err
		}
		to = v
	}
	return from, to, nil
}
