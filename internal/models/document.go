package models

import "time"

// Document is the Firestore record for an RFA or work-request document.
// Both types share this shape; Status draws from the state set matching
// DocumentType. Documents are never deleted; retirement flips IsLatest.
type Document struct {
	ID              string          `firestore:"-"`
	SiteID          string          `firestore:"siteId"`
	DocumentType    DocumentType    `firestore:"documentType"`
	DocumentNumber  string          `firestore:"documentNumber"`
	RunningNumber   int64           `firestore:"runningNumber"`
	Title           string          `firestore:"title,omitempty"`
	Status          Status          `firestore:"status"`
	Workflow        []WorkflowEntry `firestore:"workflow"`
	RevisionNumber  int             `firestore:"revisionNumber"`
	IsLatest        bool            `firestore:"isLatest"`
	ParentID        string          `firestore:"parentId,omitempty"`
	RevisionHistory []string        `firestore:"revisionHistory,omitempty"`
	TaskLink        *TaskLink       `firestore:"taskLink,omitempty"`
	SyncError       string          `firestore:"syncError,omitempty"`
	CreatedBy       string          `firestore:"createdBy"`
	CreatedByRole   Role            `firestore:"createdByRole"`
	CreatedAt       time.Time       `firestore:"createdAt"`
	UpdatedAt       time.Time       `firestore:"updatedAt,omitempty"`
}

// WorkflowEntry is one step of the append-only audit trail. Status is
// the document status at the moment the entry was appended.
type WorkflowEntry struct {
	EntryID   string    `firestore:"entryId"`
	Action    Action    `firestore:"action"`
	Status    Status    `firestore:"status"`
	UserID    string    `firestore:"userId"`
	Role      Role      `firestore:"role"`
	Timestamp time.Time `firestore:"timestamp"`
	Comments  string    `firestore:"comments,omitempty"`
	Files     []FileRef `firestore:"files,omitempty"`
}

// FileRef points at an attachment in its permanent document-scoped path.
type FileRef struct {
	FileName string `firestore:"fileName"`
	Path     string `firestore:"path"`
	URL      string `firestore:"url,omitempty"`
}

// TaskLink points into the external task-tracking store. A set link
// implies the task exists there, eventually; the two stores are not
// updated atomically.
type TaskLink struct {
	TaskUID      string `firestore:"taskUid"`
	TaskName     string `firestore:"taskName"`
	TaskCategory string `firestore:"taskCategory,omitempty"`
	ProjectName  string `firestore:"projectName,omitempty"`
}

// FamilyRoot returns the id anchoring the document's revision family.
func (d *Document) FamilyRoot() string {
	if d.ParentID != "" {
		return d.ParentID
	}
	return d.ID
}

// Counter backs the unique-number generator. One counter document per
// (siteId, documentType) key, mutated only inside a transaction.
type Counter struct {
	CurrentValue int64 `firestore:"currentValue"`
}
