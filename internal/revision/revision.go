// Package revision spawns successor documents and retires their
// predecessors. The pair of writes is committed as a single store
// transaction so a family can never observably hold two latest members.
package revision

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/sitewalk/submittalflow/internal/models"
	"github.com/sitewalk/submittalflow/internal/workflow"
)

// ErrNotRevisable means the document's current status does not permit
// spawning a revision.
var ErrNotRevisable = errors.New("document status does not permit a revision")

// ErrSuperseded means the document is no longer the latest member of
// its family.
var ErrSuperseded = errors.New("document already superseded")

// Store is the persistence contract: a read plus the atomic
// insert-and-retire swap.
type Store interface {
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	InsertRevision(ctx context.Context, originalID string, successor *models.Document, retireStatus *models.Status) (string, error)
}

// Actor identifies who requested the revision.
type Actor struct {
	UserID string
	Role   models.Role
}

// Manager executes revision creation against a Store.
type Manager struct {
	store Store
}

// NewManager wraps an injected store.
func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Revise creates the successor of originalID: all fields copied,
// revision number incremented, status reset to the workflow's initial
// state and a fresh audit entry recorded. The original is retired in
// the same transaction. Returns the committed successor.
func (m *Manager) Revise(ctx context.Context, originalID string, actor Actor, comments string, files []models.FileRef) (*models.Document, error) {
	original, err := m.store.GetDocument(ctx, originalID)
	if err != nil {
		return nil, err
	}
	if !original.IsLatest {
		return nil, fmt.Errorf("document %s: %w", originalID, ErrSuperseded)
	}
	if !workflow.RevisableFrom(original.DocumentType, original.Status) {
		return nil, fmt.Errorf("document %s in %s: %w", originalID, original.Status, ErrNotRevisable)
	}

	successor := BuildSuccessor(original, actor, comments, files, time.Now())

	// Work requests are closed out when superseded; RFAs keep their
	// history-visible status untouched.
	var retire *models.Status
	if original.DocumentType == models.DocTypeWorkRequest {
		completed := models.StatusCompleted
		retire = &completed
	}

	id, err := m.store.InsertRevision(ctx, originalID, successor, retire)
	if err != nil {
		return nil, fmt.Errorf("insert revision of %s: %w", originalID, err)
	}
	successor.ID = id
	log.Printf("[Doc: %s] Revision %d created as %s by %s", original.DocumentNumber, successor.RevisionNumber, id, actor.UserID)
	return successor, nil
}

// BuildSuccessor assembles the successor document. ParentID stays
// anchored at the family root so the chain root is stable across many
// revisions; the original's id is appended to the history.
func BuildSuccessor(original *models.Document, actor Actor, comments string, files []models.FileRef, now time.Time) *models.Document {
	initial := workflow.InitialStatus(original.DocumentType)
	successor := *original
	successor.ID = ""
	successor.RevisionNumber = original.RevisionNumber + 1
	successor.IsLatest = true
	successor.ParentID = original.FamilyRoot()
	successor.RevisionHistory = append(append([]string{}, original.RevisionHistory...), original.ID)
	successor.Status = initial
	successor.SyncError = ""
	successor.UpdatedAt = now
	successor.Workflow = append(append([]models.WorkflowEntry{}, original.Workflow...), models.WorkflowEntry{
		EntryID:   uuid.NewString(),
		Action:    models.ActionSubmitRevision,
		Status:    initial,
		UserID:    actor.UserID,
		Role:      actor.Role,
		Timestamp: now,
		Comments:  comments,
		Files:     files,
	})
	return &successor
}
