package services

import (
	"context"
	"fmt"

	"github.com/sitewalk/submittalflow/internal/models"
	"github.com/sitewalk/submittalflow/internal/permission"
	"github.com/sitewalk/submittalflow/internal/revision"
)

// ReviseFunction handles SUBMIT_REVISION: creator-gated creation of a
// successor document through the revision chain manager.
type ReviseFunction struct {
	store   DocumentStore
	manager *revision.Manager
	mover   FileMover
}

// NewRevise wires a ReviseFunction from injected collaborators.
func NewRevise(store DocumentStore, manager *revision.Manager, mover FileMover) *ReviseFunction {
	return &ReviseFunction{store: store, manager: manager, mover: mover}
}

// Process spawns a revision of docID and returns the successor.
func (f *ReviseFunction) Process(ctx context.Context, actor Actor, docID string, req *models.ActionRequest) (*models.Document, error) {
	if actor.UserID == "" || actor.Role == "" {
		return nil, ErrUnauthenticated
	}
	if docID == "" {
		return nil, fmt.Errorf("document id is required: %w", ErrValidation)
	}

	doc, err := f.store.GetDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	site, err := f.store.GetSite(ctx, doc.SiteID)
	if err != nil {
		return nil, err
	}
	// Revisions are restricted to the document's own creator acting in
	// a creator role; the gate folds both checks into one answer.
	if !permission.CanSubmitRevision(site, actor.UserID, actor.Role, doc) {
		return nil, fmt.Errorf("revise %s by %s: %w", doc.DocumentNumber, actor.UserID, ErrPermission)
	}

	var files []models.FileRef
	if len(req.NewFiles) > 0 {
		files, err = f.mover.MoveAll(ctx, doc.SiteID, doc.DocumentNumber, req.NewFiles)
		if err != nil {
			return nil, fmt.Errorf("stage files for %s: %w", doc.DocumentNumber, err)
		}
	}

	return f.manager.Revise(ctx, docID, revision.Actor{UserID: actor.UserID, Role: actor.Role}, req.Comments, files)
}
