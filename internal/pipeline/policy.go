package pipeline

import "fmt"

// assigneeID resolves the assignee responsible for a stage. The admin and
// completed stages have no assignee.
func assigneeID(item Item, stage Stage) string {
	switch stage {
	case StageDigitalMarketer, StagePosting:
		return item.DMAssigneeID
	case StageCopywriter:
		return item.CopyAssigneeID
	case StageCopyQC:
		return item.CopyQCAssigneeID
	case StageDesigner:
		return item.DesignAssigneeID
	case StageDesignQC:
		return item.DesignQCAssigneeID
	default:
		return ""
	}
}

// roleAllowedOnStage reports whether role appears in the allowed-stages set
// for stage. Unknown roles and stages match nothing.
func roleAllowedOnStage(role Role, stage Stage) bool {
	for _, s := range roleStages[role] {
		if s == stage {
			return true
		}
	}
	return false
}

// CanEdit reports whether the given user may edit the item right now.
// Admin always may. Everyone else must hold the role the current stage
// belongs to and be the stage assignee; for the two marketing stages the
// project's dedicated DM qualifies even without an item-level assignment.
func CanEdit(item Item, role Role, userID string) bool {
	if role == RoleAdmin {
		return true
	}
	if userID == "" {
		return false
	}
	if !roleAllowedOnStage(role, item.CurrentStage) {
		return false
	}
	if assigneeID(item, item.CurrentStage) == userID {
		return true
	}
	if item.CurrentStage == StageDigitalMarketer || item.CurrentStage == StagePosting {
		return item.DedicatedDMID != "" && item.DedicatedDMID == userID
	}
	return false
}

// StageLocked reports whether the stage has been locked on this item.
// A lock is purely the presence of the stage's lock timestamp; the completed
// stage locks when the item is admin-verified, the admin stage never locks.
func StageLocked(item Item, stage Stage) bool {
	switch stage {
	case StageDigitalMarketer:
		return item.DMLockedAt != nil
	case StageCopywriter:
		return item.CopyLockedAt != nil
	case StageCopyQC:
		return item.CopyQCLockedAt != nil
	case StageDesigner:
		return item.DesignLockedAt != nil
	case StageDesignQC:
		return item.DesignQCLockedAt != nil
	case StagePosting:
		return item.PostingLockedAt != nil
	case StageCompleted:
		return item.AdminVerifiedAt != nil
	default:
		return false
	}
}

// NextStage returns the stage immediately following s in pipeline order.
// Completed and unrecognized stages map to completed.
func NextStage(s Stage) Stage {
	for i, stage := range stageOrder {
		if stage != s {
			continue
		}
		if i == len(stageOrder)-1 {
			return StageCompleted
		}
		return stageOrder[i+1]
	}
	return StageCompleted
}

// RoleMatchesStage reports whether role is the designated actor for stage.
// Admin matches every stage.
func RoleMatchesStage(stage Stage, role Role) bool {
	if role == RoleAdmin {
		return true
	}
	designated, ok := stageRole[stage]
	return ok && designated == role
}

// EditDisabledReason explains why an item is read-only for the given role.
// Completed items win over role mismatch, which wins over assignment.
func EditDisabledReason(item Item, role Role) string {
	if item.CurrentStage == StageCompleted {
		return "This item is completed and verified. It can no longer be edited."
	}
	if !RoleMatchesStage(item.CurrentStage, role) {
		required := RoleLabel(stageRole[item.CurrentStage])
		return fmt.Sprintf("This item is in the %s stage and can only be edited by the %s role.",
			StageLabel(item.CurrentStage), required)
	}
	return "You are not assigned to this item."
}
