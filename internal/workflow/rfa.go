package workflow

import (
	"fmt"

	"github.com/sitewalk/submittalflow/internal/models"
)

// transitionRFA implements the RFA approval machine.
//
//	PENDING_REVIEW         → PENDING_CM_APPROVAL | REVISION_REQUIRED
//	PENDING_CM_APPROVAL    → PENDING_FINAL_APPROVAL (INTERNAL, CM round)
//	                       | APPROVED | APPROVED_WITH_COMMENTS (EXTERNAL)
//	                       | REJECTED
//	PENDING_FINAL_APPROVAL → APPROVED | APPROVED_WITH_COMMENTS
//	                       | APPROVED_REVISION_REQUIRED | REJECTED
//
// SUBMIT_REVISION (REVISION_REQUIRED → PENDING_REVIEW) is handled by
// the revision chain manager, which spawns a successor document rather
// than mutating this one in place.
func transitionRFA(in Input) (models.Status, error) {
	switch in.Action {
	case models.ActionSendToCM:
		if in.Status != models.StatusPendingReview {
			return "", ErrInvalidTransition
		}
		return models.StatusPendingCMApproval, nil

	case models.ActionRequestRevision:
		if in.Status != models.StatusPendingReview {
			return "", ErrInvalidTransition
		}
		return models.StatusRevisionRequired, nil

	case models.ActionApprove:
		return approveRFA(in, models.StatusApproved)

	case models.ActionApproveWithComments:
		return approveRFA(in, models.StatusApprovedWithComments)

	case models.ActionApproveRevisionRequired:
		// Only the final reviewer round may approve with a mandated
		// follow-up revision.
		if in.Status != models.StatusPendingFinalApproval {
			return "", ErrInvalidTransition
		}
		return models.StatusApprovedRevisionRequired, nil

	case models.ActionReject:
		if in.Status != models.StatusPendingCMApproval && in.Status != models.StatusPendingFinalApproval {
			return "", ErrInvalidTransition
		}
		return models.StatusRejected, nil

	case models.ActionSubmitRevision:
		// Accepted only through the revision endpoint; reaching the
		// in-place machine with it is a caller bug.
		return "", ErrInvalidTransition
	}
	return "", fmt.Errorf("action %q: %w", in.Action, ErrUnknownAction)
}

// approveRFA resolves the two approval rounds. On an INTERNAL site the
// CM round advances to the final reviewer round instead of terminating;
// an EXTERNAL site terminates in one round.
func approveRFA(in Input, terminal models.Status) (models.Status, error) {
	switch in.Status {
	case models.StatusPendingCMApproval:
		if in.CMSystemType == models.CMInternal {
			// First round belongs to the CM role only.
			if in.Role != models.RoleCM {
				return "", ErrInvalidTransition
			}
			return models.StatusPendingFinalApproval, nil
		}
		return terminal, nil
	case models.StatusPendingFinalApproval:
		return terminal, nil
	}
	return "", ErrInvalidTransition
}

// RFA notification targets: reviewers while awaiting the final round,
// a fixed secondary set once a terminal state is reached.
var (
	rfaReviewerRoles  = []models.Role{models.RoleAdmin, models.RolePM}
	rfaSecondaryRoles = []models.Role{models.RoleSite, models.RoleBIM}
)

// NotifyTargets returns the roles to alert after a document reached the
// given status, or nil when the status is not in the notify set.
func NotifyTargets(docType models.DocumentType, s models.Status) []models.Role {
	if docType.IsRFA() {
		if s == models.StatusPendingFinalApproval {
			return rfaReviewerRoles
		}
		if IsTerminal(docType, s) {
			return rfaSecondaryRoles
		}
		return nil
	}
	// Work requests alert the assignee pool on approval and the
	// requesting site when work is ready for acceptance.
	switch s {
	case models.StatusPendingBIM:
		return []models.Role{models.RoleBIM}
	case models.StatusPendingAcceptance:
		return []models.Role{models.RoleSite}
	}
	return nil
}
