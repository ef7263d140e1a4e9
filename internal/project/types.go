package project

import "time"

const (
	StatusActive    = "active"
	StatusArchived  = "archived"
	StatusCompleted = "completed"
)

// Project is a client campaign container owning content items.
type Project struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Brief        string    `json:"brief"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	Status       string    `json:"status"`
	ContentCount int       `json:"content_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Onboarding is the 1:1 client metadata record. Dedicated specialist ids are
// used for display and for visibility filtering; the dedicated DM id also
// feeds the pipeline policy override.
type Onboarding struct {
	ProjectID            string    `json:"project_id"`
	CompanyName          string    `json:"company_name"`
	BrandAssetsURL       string    `json:"brand_assets_url,omitempty"`
	DedicatedDMID        string    `json:"dedicated_dm_id,omitempty"`
	DedicatedCopyID      string    `json:"dedicated_copywriter_id,omitempty"`
	DedicatedCopyQCID    string    `json:"dedicated_copy_qc_id,omitempty"`
	DedicatedDesignerID  string    `json:"dedicated_designer_id,omitempty"`
	DedicatedDesignQCID  string    `json:"dedicated_designer_qc_id,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// ChangeRequest is an append-only client note on a project.
type ChangeRequest struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	AuthorID  string    `json:"author_id"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}
