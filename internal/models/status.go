package models

// DocumentType identifies which workflow variant a document follows.
// RFA subtypes share the RFA state machine but are gated by different
// role sets at creation time.
type DocumentType string

const (
	DocTypeRFAGeneral     DocumentType = "RFA_GENERAL"
	DocTypeRFAShopDrawing DocumentType = "RFA_SHOPDRAWING"
	DocTypeWorkRequest    DocumentType = "WORK_REQUEST"
)

// IsRFA reports whether the type follows the RFA approval workflow.
func (t DocumentType) IsRFA() bool {
	return t == DocTypeRFAGeneral || t == DocTypeRFAShopDrawing
}

// Status is a workflow state. RFA and work-request documents share the
// same document shape but draw from disjoint status sets.
type Status string

// RFA statuses.
const (
	StatusPendingReview            Status = "PENDING_REVIEW"
	StatusPendingCMApproval        Status = "PENDING_CM_APPROVAL"
	StatusPendingFinalApproval     Status = "PENDING_FINAL_APPROVAL"
	StatusRevisionRequired         Status = "REVISION_REQUIRED"
	StatusApproved                 Status = "APPROVED"
	StatusApprovedWithComments     Status = "APPROVED_WITH_COMMENTS"
	StatusApprovedRevisionRequired Status = "APPROVED_REVISION_REQUIRED"
	StatusRejected                 Status = "REJECTED"
)

// Work-request statuses.
const (
	StatusDraft             Status = "DRAFT"
	StatusPendingBIM        Status = "PENDING_BIM"
	StatusInProgress        Status = "IN_PROGRESS"
	StatusPendingAcceptance Status = "PENDING_ACCEPTANCE"
	StatusRevisionRequested Status = "REVISION_REQUESTED"
	StatusCompleted         Status = "COMPLETED"
	StatusRejectedByPM      Status = "REJECTED_BY_PM"
)

// Action is a workflow action name as received from clients.
type Action string

// RFA actions.
const (
	ActionSendToCM                 Action = "SEND_TO_CM"
	ActionRequestRevision          Action = "REQUEST_REVISION"
	ActionSubmitRevision           Action = "SUBMIT_REVISION"
	ActionApprove                  Action = "APPROVE"
	ActionApproveWithComments      Action = "APPROVE_WITH_COMMENTS"
	ActionApproveRevisionRequired  Action = "APPROVE_REVISION_REQUIRED"
	ActionReject                   Action = "REJECT"
)

// Work-request actions.
const (
	ActionApproveRequest Action = "APPROVE_REQUEST"
	ActionRejectRequest  Action = "REJECT_REQUEST"
	ActionAssign         Action = "ASSIGN"
	ActionSubmitWork     Action = "SUBMIT_WORK"
	ActionAcceptWork     Action = "ACCEPT_WORK"
	ActionRequestRework  Action = "REQUEST_REWORK"
	ActionResubmitWork   Action = "RESUBMIT_WORK"
)

// ActionCreate gates document creation and opens every audit trail.
const ActionCreate Action = "CREATE"

// Role is a user role within a site.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleSite  Role = "SITE"
	RoleCM    Role = "CM"
	RolePM    Role = "PM"
	RoleBIM   Role = "BIM"
)

// CMSystemType selects the number of RFA approval rounds for a site.
type CMSystemType string

const (
	// CMInternal routes the first approval through a CM role and the
	// second through the reviewer set (two rounds).
	CMInternal CMSystemType = "INTERNAL"
	// CMExternal lets the reviewer set approve directly (one round).
	CMExternal CMSystemType = "EXTERNAL"
)
