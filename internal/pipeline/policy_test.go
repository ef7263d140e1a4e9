package pipeline

import (
	"testing"
	"time"
)

func TestAdminOverride(t *testing.T) {
	for _, stage := range Stages() {
		item := Item{CurrentStage: stage}
		if !CanEdit(item, RoleAdmin, "anyone") {
			t.Fatalf("admin must be able to edit items in stage %s", stage)
		}
		if !CanEdit(item, RoleAdmin, "") {
			t.Fatalf("admin override must not depend on user id (stage %s)", stage)
		}
	}
}

func TestStageRoleGating(t *testing.T) {
	for _, stage := range Stages() {
		for _, role := range Roles() {
			if role == RoleAdmin || roleAllowedOnStage(role, stage) {
				continue
			}
			item := Item{
				CurrentStage:       stage,
				DMAssigneeID:       "u1",
				CopyAssigneeID:     "u1",
				CopyQCAssigneeID:   "u1",
				DesignAssigneeID:   "u1",
				DesignQCAssigneeID: "u1",
				DedicatedDMID:      "u1",
			}
			if CanEdit(item, role, "u1") {
				t.Fatalf("role %s must not edit stage %s regardless of assignment", role, stage)
			}
		}
	}
}

func TestAssigneeGating(t *testing.T) {
	item := Item{CurrentStage: StageCopyQC, CopyQCAssigneeID: "U1"}
	if !CanEdit(item, RoleCopyQC, "U1") {
		t.Fatalf("assignee must be allowed to edit")
	}
	if CanEdit(item, RoleCopyQC, "U2") {
		t.Fatalf("non-assignee must not edit")
	}
	if CanEdit(item, RoleDesigner, "U1") {
		t.Fatalf("wrong role must not edit even when assigned elsewhere")
	}
}

func TestDedicatedDMOverride(t *testing.T) {
	item := Item{CurrentStage: StageDigitalMarketer, DedicatedDMID: "U3"}
	if !CanEdit(item, RoleDigitalMarketingManager, "U3") {
		t.Fatalf("dedicated DM must qualify despite nil direct assignee")
	}
	if CanEdit(item, RoleDigitalMarketingManager, "U4") {
		t.Fatalf("unrelated DM must not edit")
	}

	item.CurrentStage = StagePosting
	if !CanEdit(item, RoleDigitalMarketingManager, "U3") {
		t.Fatalf("dedicated DM override must also apply to the posting stage")
	}

	// Project-level override must not leak into non-marketing stages.
	item.CurrentStage = StageCopywriter
	if CanEdit(item, RoleCopywriter, "U3") {
		t.Fatalf("dedicated DM id must not grant access to the copy stage")
	}
}

func TestStageLocked(t *testing.T) {
	verified := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	item := Item{}
	if StageLocked(item, StageCompleted) {
		t.Fatalf("completed must be unlocked without admin verification")
	}
	item.AdminVerifiedAt = &verified
	if !StageLocked(item, StageCompleted) {
		t.Fatalf("completed must lock once admin_verified_at is set")
	}
	if StageLocked(item, StageAdmin) {
		t.Fatalf("admin stage never locks")
	}

	now := time.Now().UTC()
	locked := Item{CopyLockedAt: &now}
	if !StageLocked(locked, StageCopywriter) {
		t.Fatalf("copy stage must report locked")
	}
	if StageLocked(locked, StageDesigner) {
		t.Fatalf("design stage must not report locked")
	}
}

func TestNextStageTotality(t *testing.T) {
	stage := StageAdmin
	steps := 0
	for stage != StageCompleted {
		stage = NextStage(stage)
		steps++
		if steps > len(stageOrder) {
			t.Fatalf("next-stage walk did not terminate")
		}
	}
	if steps != 7 {
		t.Fatalf("expected 7 steps from admin to completed, got %d", steps)
	}
	if NextStage(StageCompleted) != StageCompleted {
		t.Fatalf("completed must be a fixed point")
	}
	if NextStage(Stage("bogus")) != StageCompleted {
		t.Fatalf("unknown stages must default to completed")
	}
}

func TestRoleMatchesStageExhaustive(t *testing.T) {
	for _, stage := range Stages() {
		for _, role := range Roles() {
			want := role == RoleAdmin || stageRole[stage] == role
			if got := RoleMatchesStage(stage, role); got != want {
				t.Fatalf("RoleMatchesStage(%s, %s) = %v, want %v", stage, role, got, want)
			}
		}
	}
}

func TestEditDisabledReasonPriority(t *testing.T) {
	verified := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	done := Item{CurrentStage: StageCompleted, AdminVerifiedAt: &verified}
	if got := EditDisabledReason(done, RoleCopywriter); got != "This item is completed and verified. It can no longer be edited." {
		t.Fatalf("completed message must win over role mismatch, got %q", got)
	}

	wrongRole := Item{CurrentStage: StageDesigner}
	reason := EditDisabledReason(wrongRole, RoleCopywriter)
	if reason == "" || reason == "You are not assigned to this item." {
		t.Fatalf("expected role-mismatch message, got %q", reason)
	}

	rightRole := Item{CurrentStage: StageDesigner, DesignAssigneeID: "someone-else"}
	if got := EditDisabledReason(rightRole, RoleDesigner); got != "You are not assigned to this item." {
		t.Fatalf("expected assignment message, got %q", got)
	}
}
