package reports

import (
	"time"

	"storycat.app/internal/pipeline"
)

// ProductionStats summarises agency output over a window.
type ProductionStats struct {
	TotalItems     int     `json:"total_items"`
	CompletedItems int     `json:"completed_items"`
	VerifiedItems  int     `json:"verified_items"`
	InProgress     int     `json:"in_progress"`
	CompletionRate float64 `json:"completion_rate"`
}

// VolumePoint is one month of created/completed counts.
type VolumePoint struct {
	Period    string `json:"period"` // YYYY-MM
	Created   int    `json:"created"`
	Completed int    `json:"completed"`
}

// RoleEfficiency reports tracked time attributed to a role.
type RoleEfficiency struct {
	Role              pipeline.Role `json:"role"`
	TotalSeconds      int64         `json:"total_seconds"`
	ItemsTouched      int           `json:"items_touched"`
	AvgSecondsPerItem int64         `json:"avg_seconds_per_item"`
}

// MemberScore ranks one employee.
type MemberScore struct {
	UserID         string        `json:"user_id"`
	FullName       string        `json:"full_name"`
	Role           pipeline.Role `json:"role"`
	ItemsCompleted int           `json:"items_completed"`
	TotalSeconds   int64         `json:"total_seconds"`
	Score          float64       `json:"score"`
}

// StageLoad counts open items per actor stage.
type StageLoad struct {
	Stage     pipeline.Stage `json:"stage"`
	OpenItems int            `json:"open_items"`
}

// Bottleneck describes a status where work is piling up.
type Bottleneck struct {
	Status           pipeline.Status `json:"status"`
	OpenItems        int             `json:"open_items"`
	OldestAgeSeconds int64           `json:"oldest_age_seconds"`
}

// Insight is a human-readable recommendation derived from the other reports.
type Insight struct {
	Severity string `json:"severity"` // info | warning | critical
	Message  string `json:"message"`
}

// PerformanceEntry is one day of paid marketing results for a project.
type PerformanceEntry struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	Day         time.Time `json:"day"`
	Impressions int64     `json:"impressions"`
	Clicks      int64     `json:"clicks"`
	Conversions int64     `json:"conversions"`
	SpendCents  int64     `json:"spend_cents"`
	CreatedAt   time.Time `json:"created_at"`
}

// PerformanceSummary aggregates a project's paid marketing results.
type PerformanceSummary struct {
	ProjectID   string  `json:"project_id"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Conversions int64   `json:"conversions"`
	SpendCents  int64   `json:"spend_cents"`
	CTR         float64 `json:"ctr"`
}
