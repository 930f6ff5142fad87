package models

// These structs define the JSON payloads for the client-facing HTTP
// functions and the Firestore-trigger event consumed by the
// synchronizer.

// StagedFile references an upload sitting in the per-user temporary
// staging path. Accepted workflow actions move it to the permanent
// document-scoped path.
type StagedFile struct {
	FileName   string `json:"fileName"`
	StagedPath string `json:"stagedPath"`
}

// CreateRequest is the input of the document-create function.
type CreateRequest struct {
	SiteID       string       `json:"siteId"`
	DocumentType DocumentType `json:"documentType"`
	Title        string       `json:"title"`
	Comments     string       `json:"comments,omitempty"`
	NewFiles     []StagedFile `json:"newFiles,omitempty"`
}

// CreateResponse is the output of the document-create function.
type CreateResponse struct {
	Success        bool   `json:"success"`
	DocumentID     string `json:"documentId,omitempty"`
	DocumentNumber string `json:"documentNumber,omitempty"`
	Status         Status `json:"status,omitempty"`
	Error          string `json:"error,omitempty"`
}

// ActionRequest is the input of the document-action and
// document-revision functions.
type ActionRequest struct {
	Action         Action       `json:"action"`
	Comments       string       `json:"comments,omitempty"`
	NewFiles       []StagedFile `json:"newFiles,omitempty"`
	DocumentNumber string       `json:"documentNumber,omitempty"`
}

// ActionResponse is the output of the document-action function.
type ActionResponse struct {
	Success    bool   `json:"success"`
	NewStatus  Status `json:"newStatus,omitempty"`
	DocumentID string `json:"documentId,omitempty"`
	Error      string `json:"error,omitempty"`
}

// BatchActionRequest is the input of the batch-action function.
type BatchActionRequest struct {
	IDs      []string      `json:"ids"`
	Action   Action        `json:"action"`
	Payload  ActionRequest `json:"payload"`
}

// BatchItemError reports a single failed item of a batch action.
type BatchItemError struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// BatchActionResponse is the output of the batch-action function.
type BatchActionResponse struct {
	UpdatedCount int              `json:"updatedCount"`
	ErrorCount   int              `json:"errorCount"`
	Errors       []BatchItemError `json:"errors,omitempty"`
}

// DocumentWriteEvent is the document-write trigger contract: fired at
// least once per commit with the before/after snapshot. A missing After
// means the document was deleted; a missing Before means it was created.
type DocumentWriteEvent struct {
	DocumentID string    `json:"documentId"`
	Before     *Document `json:"before,omitempty"`
	After      *Document `json:"after,omitempty"`
}

// Notification names the roles to be alerted about a status change.
// Delivery is a collaborator concern; the engine only produces values.
type Notification struct {
	SiteID         string `json:"siteId"`
	DocumentNumber string `json:"documentNumber"`
	Status         Status `json:"status"`
	TargetRoles    []Role `json:"targetRoles"`
}
