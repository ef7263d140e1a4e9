package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrIllegalTransition signals the action is not legal from the current status.
	ErrIllegalTransition = errors.New("pipeline: illegal transition")
	// ErrRoleNotAllowed signals the acting role may not perform the action.
	ErrRoleNotAllowed = errors.New("pipeline: role not allowed")
	// ErrReasonRequired signals a reject or reopen without feedback text.
	ErrReasonRequired = errors.New("pipeline: reason required")
	// ErrBadDestination signals an unsupported reopen destination.
	ErrBadDestination = errors.New("pipeline: unsupported reopen destination")
)

// Action is a pipeline operation performed from a dashboard.
type Action string

const (
	ActionSubmitIdea    Action = "submit_idea"
	ActionSubmitCopy    Action = "submit_copy"
	ActionApproveCopy   Action = "approve_copy"
	ActionRejectCopy    Action = "reject_copy"
	ActionSubmitDesign  Action = "submit_design"
	ActionApproveDesign Action = "approve_design"
	ActionRejectDesign  Action = "reject_design"
	ActionVerify        Action = "verify"
	ActionReopen        Action = "reopen"
)

// Request describes one attempted pipeline action.
type Request struct {
	Action Action
	Role   Role
	// Reason carries the free-text feedback for reject and reopen actions.
	Reason string
	// ReopenTo is the destination status for an admin reopen.
	ReopenTo Status
}

// Result is the consistent (status, stage) pair produced by a legal
// transition. Both fields are always derived together so the persisted
// status and current_stage columns can never drift apart.
type Result struct {
	Status Status
	Stage  Stage
}

// rule describes one row of the transition table.
type rule struct {
	from          []Status
	actor         Role
	to            Status
	needsReason   bool
	adminOnly     bool
	needsReopenTo bool
}

var transitionTable = map[Action]rule{
	ActionSubmitIdea: {
		from:  []Status{StatusPendingDM},
		actor: RoleDigitalMarketingManager,
		to:    StatusPendingCopy,
	},
	ActionSubmitCopy: {
		from:  []Status{StatusPendingCopy, StatusRejectedFromCopyQC},
		actor: RoleCopywriter,
		to:    StatusPendingCopyQC,
	},
	ActionApproveCopy: {
		from:  []Status{StatusPendingCopyQC},
		actor: RoleCopyQC,
		to:    StatusPendingDesign,
	},
	ActionRejectCopy: {
		from:        []Status{StatusPendingCopyQC},
		actor:       RoleCopyQC,
		to:          StatusRejectedFromCopyQC,
		needsReason: true,
	},
	ActionSubmitDesign: {
		from:  []Status{StatusPendingDesign, StatusRejectedFromDesignQC},
		actor: RoleDesigner,
		to:    StatusPendingDesignQC,
	},
	ActionApproveDesign: {
		from:  []Status{StatusPendingDesignQC},
		actor: RoleDesignerQC,
		to:    StatusCompleted,
	},
	ActionRejectDesign: {
		from:        []Status{StatusPendingDesignQC},
		actor:       RoleDesignerQC,
		to:          StatusRejectedFromDesignQC,
		needsReason: true,
	},
	ActionVerify: {
		from:      []Status{StatusCompleted},
		adminOnly: true,
		to:        StatusCompleted,
	},
	ActionReopen: {
		from:          []Status{StatusCompleted},
		adminOnly:     true,
		needsReason:   true,
		needsReopenTo: true,
	},
}

// reopenDestinations limits where an admin may route a completed item back to.
var reopenDestinations = map[Status]struct{}{
	StatusPendingCopy:     {},
	StatusPendingDesign:   {},
	StatusPendingDesignQC: {},
}

// StageForStatus returns the actor stage implied by a status. This is the
// invariant linking the two persisted fields: every write of status must
// write this stage alongside it.
func StageForStatus(status Status) Stage {
	switch status {
	case StatusPendingDM:
		return StageDigitalMarketer
	case StatusPendingCopy, StatusRejectedFromCopyQC:
		return StageCopywriter
	case StatusPendingCopyQC:
		return StageCopyQC
	case StatusPendingDesign, StatusRejectedFromDesignQC:
		return StageDesigner
	case StatusPendingDesignQC:
		return StageDesignQC
	case StatusCompleted:
		return StageCompleted
	default:
		return StageCompleted
	}
}

// Consistent reports whether a persisted (status, stage) pair obeys the
// linking invariant.
func Consistent(status Status, stage Stage) bool {
	return StageForStatus(status) == stage
}

// Transition validates and applies one action against the current status,
// returning the next status together with its derived stage.
func Transition(from Status, req Request) (Result, error) {
	r, ok := transitionTable[req.Action]
	if !ok {
		return Result{}, fmt.Errorf("%w: unknown action %q", ErrIllegalTransition, req.Action)
	}
	if !statusIn(from, r.from) {
		return Result{}, fmt.Errorf("%w: %s from %s", ErrIllegalTransition, req.Action, from)
	}
	if req.Role != RoleAdmin {
		if r.adminOnly || req.Role != r.actor {
			return Result{}, fmt.Errorf("%w: %s may not %s", ErrRoleNotAllowed, req.Role, req.Action)
		}
	}
	if r.needsReason && strings.TrimSpace(req.Reason) == "" {
		return Result{}, fmt.Errorf("%w: %s", ErrReasonRequired, req.Action)
	}

	to := r.to
	if r.needsReopenTo {
		if _, ok := reopenDestinations[req.ReopenTo]; !ok {
			return Result{}, fmt.Errorf("%w: %s", ErrBadDestination, req.ReopenTo)
		}
		to = req.ReopenTo
	}
	return Result{Status: to, Stage: StageForStatus(to)}, nil
}

func statusIn(s Status, list []Status) bool {
	for _, candidate := range list {
		if s == candidate {
			return true
		}
	}
	return false
}
