// Package tasksync reacts to document writes and drives the external
// task-tracking store. It is a background reactor: failures are never
// thrown to the trigger's caller, they are recorded on the source
// document as a syncError annotation and left for reconciliation.
package tasksync

import "github.com/sitewalk/submittalflow/internal/models"

// Kind classifies one before/after snapshot pair.
type Kind int

const (
	// KindNone means nothing to sync (deletion, untracked creation, or
	// an unrecognized change logged for diagnosis).
	KindNone Kind = iota
	// KindCreateTask means the document just entered its tracking-start
	// state with no task link yet: allocate a number and create the task.
	KindCreateTask
	// KindSyncStatus means a tracked document changed status: mirror it.
	KindSyncStatus
	// KindRelink means a document was created already carrying a task
	// link (a revision inherited it): point the task at the new document.
	KindRelink
)

func (k Kind) String() string {
	switch k {
	case KindCreateTask:
		return "create-task"
	case KindSyncStatus:
		return "sync-status"
	case KindRelink:
		return "relink"
	}
	return "no-op"
}

// trackingStart designates, per document type, the transition that
// begins external tracking.
var trackingStart = map[models.DocumentType][2]models.Status{
	models.DocTypeRFAGeneral:     {models.StatusPendingReview, models.StatusPendingCMApproval},
	models.DocTypeRFAShopDrawing: {models.StatusPendingReview, models.StatusPendingCMApproval},
	models.DocTypeWorkRequest:    {models.StatusDraft, models.StatusPendingBIM},
}

// Classify is the pure decision table over one trigger event.
func Classify(ev models.DocumentWriteEvent) Kind {
	after := ev.After
	if after == nil {
		// Deletion: nothing to sync.
		return KindNone
	}
	if ev.Before == nil {
		if after.TaskLink != nil && after.TaskLink.TaskUID != "" {
			return KindRelink
		}
		// Creation in a not-yet-tracked state; tracking begins later.
		return KindNone
	}

	before := ev.Before
	if before.Status == after.Status {
		return KindNone
	}
	start, ok := trackingStart[after.DocumentType]
	if ok && before.Status == start[0] && after.Status == start[1] &&
		(after.TaskLink == nil || after.TaskLink.TaskUID == "") {
		return KindCreateTask
	}
	if after.TaskLink != nil && after.TaskLink.TaskUID != "" {
		return KindSyncStatus
	}
	return KindNone
}
