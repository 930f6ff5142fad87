// Package workflow implements the approval state machines for RFA and
// work-request documents. Transition is a pure function of the current
// status, the requested action, the site's CM system type and the
// acting role; it performs no I/O and appends nothing. Callers commit
// the resulting status together with the audit entry.
package workflow

import (
	"errors"
	"fmt"

	"github.com/sitewalk/submittalflow/internal/models"
)

var (
	// ErrInvalidTransition means the action is not applicable to the
	// document's current status. Handlers map this to the same HTTP
	// status as a permission denial so workflow internals do not leak.
	ErrInvalidTransition = errors.New("action not allowed from current status")
	// ErrUnknownAction means the action name is not part of the
	// document type's workflow at all.
	ErrUnknownAction = errors.New("unknown workflow action")
	// ErrFilesRequired means the action needs at least one attached file.
	ErrFilesRequired = errors.New("action requires at least one attached file")
)

// Input carries everything a transition decision depends on.
type Input struct {
	Status       models.Status
	Action       models.Action
	CMSystemType models.CMSystemType
	Role         models.Role
	FileCount    int
}

// Transition resolves the next status for a document of the given type.
func Transition(docType models.DocumentType, in Input) (models.Status, error) {
	if docType.IsRFA() {
		return transitionRFA(in)
	}
	if docType == models.DocTypeWorkRequest {
		return transitionWorkRequest(in)
	}
	return "", fmt.Errorf("document type %q: %w", docType, ErrUnknownAction)
}

// InitialStatus returns the status a freshly created document starts in.
func InitialStatus(docType models.DocumentType) models.Status {
	if docType.IsRFA() {
		return models.StatusPendingReview
	}
	return models.StatusDraft
}

// IsTerminal reports whether no further workflow action applies.
func IsTerminal(docType models.DocumentType, s models.Status) bool {
	if docType.IsRFA() {
		switch s {
		case models.StatusApproved, models.StatusApprovedWithComments,
			models.StatusApprovedRevisionRequired, models.StatusRejected:
			return true
		}
		return false
	}
	switch s {
	case models.StatusCompleted, models.StatusRejectedByPM:
		return true
	}
	return false
}

// RevisableFrom reports whether a new revision may be spawned from the
// given status. RFAs revise out of the revision-required states; work
// requests revise out of rework requests.
func RevisableFrom(docType models.DocumentType, s models.Status) bool {
	if docType.IsRFA() {
		return s == models.StatusRevisionRequired || s == models.StatusApprovedRevisionRequired
	}
	return s == models.StatusRevisionRequested
}
