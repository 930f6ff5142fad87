package workflow

import (
	"fmt"

	"github.com/sitewalk/submittalflow/internal/models"
)

// transitionWorkRequest implements the internal work-request machine.
//
//	DRAFT              → PENDING_BIM | REJECTED_BY_PM
//	PENDING_BIM        → IN_PROGRESS            (assignment)
//	IN_PROGRESS        → PENDING_ACCEPTANCE     (requires ≥1 file)
//	PENDING_ACCEPTANCE → COMPLETED | REVISION_REQUESTED
//	REVISION_REQUESTED → PENDING_ACCEPTANCE     (resubmission)
func transitionWorkRequest(in Input) (models.Status, error) {
	switch in.Action {
	case models.ActionApproveRequest:
		if in.Status != models.StatusDraft {
			return "", ErrInvalidTransition
		}
		return models.StatusPendingBIM, nil

	case models.ActionRejectRequest:
		if in.Status != models.StatusDraft {
			return "", ErrInvalidTransition
		}
		return models.StatusRejectedByPM, nil

	case models.ActionAssign:
		if in.Status != models.StatusPendingBIM {
			return "", ErrInvalidTransition
		}
		return models.StatusInProgress, nil

	case models.ActionSubmitWork:
		if in.Status != models.StatusInProgress {
			return "", ErrInvalidTransition
		}
		if in.FileCount == 0 {
			return "", ErrFilesRequired
		}
		return models.StatusPendingAcceptance, nil

	case models.ActionAcceptWork:
		if in.Status != models.StatusPendingAcceptance {
			return "", ErrInvalidTransition
		}
		return models.StatusCompleted, nil

	case models.ActionRequestRework:
		if in.Status != models.StatusPendingAcceptance {
			return "", ErrInvalidTransition
		}
		return models.StatusRevisionRequested, nil

	case models.ActionResubmitWork:
		if in.Status != models.StatusRevisionRequested {
			return "", ErrInvalidTransition
		}
		return models.StatusPendingAcceptance, nil
	}
	return "", fmt.Errorf("action %q: %w", in.Action, ErrUnknownAction)
}
