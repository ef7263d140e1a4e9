package content

import (
	"time"

	"storycat.app/internal/pipeline"
)

// Item is one deliverable scheduled for a publish date within a project.
// Stage payloads, assignees and lock timestamps mirror the content_items
// table; DedicatedDMID is joined in from the project onboarding record for
// the policy engine and never written through this struct.
type Item struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	PublishDate time.Time `json:"publish_date"`

	Status       pipeline.Status `json:"status"`
	CurrentStage pipeline.Stage  `json:"current_stage"`

	MarketingTitle  string `json:"marketing_title"`
	MarketingNotes  string `json:"marketing_notes"`
	MarketingThread string `json:"marketing_thread"`
	CopyContent     string `json:"copy_content"`
	CopyNotes       string `json:"copy_notes"`
	DesignAssetURL  string `json:"design_asset_url"`

	DMAssigneeID       string `json:"dm_assignee_id,omitempty"`
	CopyAssigneeID     string `json:"copy_assignee_id,omitempty"`
	CopyQCAssigneeID   string `json:"copy_qc_assignee_id,omitempty"`
	DesignAssigneeID   string `json:"design_assignee_id,omitempty"`
	DesignQCAssigneeID string `json:"design_qc_assignee_id,omitempty"`
	DedicatedDMID      string `json:"-"`

	DMSubmittedAt     *time.Time `json:"dm_submitted_at,omitempty"`
	CopySubmittedAt   *time.Time `json:"copy_submitted_at,omitempty"`
	DesignSubmittedAt *time.Time `json:"design_submitted_at,omitempty"`

	DMLockedAt       *time.Time `json:"dm_stage_locked_at,omitempty"`
	CopyLockedAt     *time.Time `json:"copy_stage_locked_at,omitempty"`
	CopyQCLockedAt   *time.Time `json:"copy_qc_stage_locked_at,omitempty"`
	DesignLockedAt   *time.Time `json:"design_stage_locked_at,omitempty"`
	DesignQCLockedAt *time.Time `json:"design_qc_stage_locked_at,omitempty"`
	PostingLockedAt  *time.Time `json:"posting_stage_locked_at,omitempty"`

	IsAdminVerified bool       `json:"is_admin_verified"`
	AdminVerifiedAt *time.Time `json:"admin_verified_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Policy projects the item onto the view the pipeline engine reads.
func (c *Item) Policy() pipeline.Item {
	return pipeline.Item{
		Status:             c.Status,
		CurrentStage:       c.CurrentStage,
		DMAssigneeID:       c.DMAssigneeID,
		CopyAssigneeID:     c.CopyAssigneeID,
		CopyQCAssigneeID:   c.CopyQCAssigneeID,
		DesignAssigneeID:   c.DesignAssigneeID,
		DesignQCAssigneeID: c.DesignQCAssigneeID,
		DedicatedDMID:      c.DedicatedDMID,
		DMLockedAt:         c.DMLockedAt,
		CopyLockedAt:       c.CopyLockedAt,
		CopyQCLockedAt:     c.CopyQCLockedAt,
		DesignLockedAt:     c.DesignLockedAt,
		DesignQCLockedAt:   c.DesignQCLockedAt,
		PostingLockedAt:    c.PostingLockedAt,
		AdminVerifiedAt:    c.AdminVerifiedAt,
	}
}

// Permissions is the read-only banner payload for one viewer.
type Permissions struct {
	CanEdit bool   `json:"can_edit"`
	Locked  bool   `json:"locked"`
	Reason  string `json:"reason,omitempty"`
}
