package pipeline

import "time"

// Stage identifies the actor position of a content item inside the
// production pipeline. The zero-to-terminal order is fixed.
type Stage string

const (
	StageAdmin           Stage = "admin"
	StageDigitalMarketer Stage = "digital_marketer"
	StageCopywriter      Stage = "copywriter"
	StageCopyQC          Stage = "copy_qc"
	StageDesigner        Stage = "designer"
	StageDesignQC        Stage = "design_qc"
	StagePosting         Stage = "digital_marketer_posting"
	StageCompleted       Stage = "completed"
)

// stageOrder is the total order used by NextStage.
var stageOrder = []Stage{
	StageAdmin,
	StageDigitalMarketer,
	StageCopywriter,
	StageCopyQC,
	StageDesigner,
	StageDesignQC,
	StagePosting,
	StageCompleted,
}

// Stages returns the pipeline stages in order.
func Stages() []Stage {
	out := make([]Stage, len(stageOrder))
	copy(out, stageOrder)
	return out
}

// Role is an employee role. Roles gate which stages a profile may act on.
type Role string

const (
	RoleAdmin                   Role = "admin"
	RoleDigitalMarketingManager Role = "digital_marketing_manager"
	RoleCopywriter              Role = "copywriter"
	RoleCopyQC                  Role = "copy_qc"
	RoleDesigner                Role = "designer"
	RoleDesignerQC              Role = "designer_qc"
)

// Roles returns every known role.
func Roles() []Role {
	return []Role{
		RoleAdmin,
		RoleDigitalMarketingManager,
		RoleCopywriter,
		RoleCopyQC,
		RoleDesigner,
		RoleDesignerQC,
	}
}

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	for _, known := range Roles() {
		if r == known {
			return true
		}
	}
	return false
}

// Status is the coarse pipeline position persisted on a content item. It is
// richer than Stage because it records rejection provenance.
type Status string

const (
	StatusPendingDM            Status = "pending_dm"
	StatusPendingCopy          Status = "pending_copy"
	StatusPendingCopyQC        Status = "pending_copy_qc"
	StatusPendingDesign        Status = "pending_design"
	StatusPendingDesignQC      Status = "pending_design_qc"
	StatusRejectedFromCopyQC   Status = "rejected_from_copy_qc"
	StatusRejectedFromDesignQC Status = "rejected_from_design_qc"
	StatusCompleted            Status = "completed"
)

// stageRole maps each stage to the single role that acts on it. The admin
// and completed stages have no actionable role.
var stageRole = map[Stage]Role{
	StageDigitalMarketer: RoleDigitalMarketingManager,
	StageCopywriter:      RoleCopywriter,
	StageCopyQC:          RoleCopyQC,
	StageDesigner:        RoleDesigner,
	StageDesignQC:        RoleDesignerQC,
	StagePosting:         RoleDigitalMarketingManager,
}

// roleStages maps each role to the stages it may act on. Not the inverse of
// stageRole: admin covers every stage, and the marketing role re-enters the
// pipeline after design QC to handle posting.
var roleStages = map[Role][]Stage{
	RoleAdmin:                   stageOrder,
	RoleDigitalMarketingManager: {StageDigitalMarketer, StagePosting},
	RoleCopywriter:              {StageCopywriter},
	RoleCopyQC:                  {StageCopyQC},
	RoleDesigner:                {StageDesigner},
	RoleDesignerQC:              {StageDesignQC},
}

var stageLabels = map[Stage]string{
	StageAdmin:           "Admin",
	StageDigitalMarketer: "Digital Marketing",
	StageCopywriter:      "Copywriting",
	StageCopyQC:          "Copy QC",
	StageDesigner:        "Design",
	StageDesignQC:        "Design QC",
	StagePosting:         "Posting",
	StageCompleted:       "Completed",
}

var roleLabels = map[Role]string{
	RoleAdmin:                   "Admin",
	RoleDigitalMarketingManager: "Digital Marketing Manager",
	RoleCopywriter:              "Copywriter",
	RoleCopyQC:                  "Copy QC",
	RoleDesigner:                "Designer",
	RoleDesignerQC:              "Designer QC",
}

// StageLabel returns the display name of a stage.
func StageLabel(s Stage) string {
	if label, ok := stageLabels[s]; ok {
		return label
	}
	return string(s)
}

// RoleLabel returns the display name of a role.
func RoleLabel(r Role) string {
	if label, ok := roleLabels[r]; ok {
		return label
	}
	return string(r)
}

// Item is the policy view of a content item: exactly the fields the engine
// reads. DedicatedDMID comes from the owning project's onboarding record.
type Item struct {
	Status       Status
	CurrentStage Stage

	DMAssigneeID       string
	CopyAssigneeID     string
	CopyQCAssigneeID   string
	DesignAssigneeID   string
	DesignQCAssigneeID string
	DedicatedDMID      string

	DMLockedAt       *time.Time
	CopyLockedAt     *time.Time
	CopyQCLockedAt   *time.Time
	DesignLockedAt   *time.Time
	DesignQCLockedAt *time.Time
	PostingLockedAt  *time.Time
	AdminVerifiedAt  *time.Time
}
