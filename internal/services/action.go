package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/sitewalk/submittalflow/internal/models"
	"github.com/sitewalk/submittalflow/internal/permission"
	"github.com/sitewalk/submittalflow/internal/workflow"
)

// ActionFunction handles a single workflow action: gate → state machine
// → transactional commit with an expected-status precondition → side
// effects (file move before the commit, notification value after).
type ActionFunction struct {
	store    DocumentStore
	mover    FileMover
	notifier Notifier
}

// NewAction wires an ActionFunction from injected collaborators.
func NewAction(store DocumentStore, mover FileMover, notifier Notifier) *ActionFunction {
	return &ActionFunction{store: store, mover: mover, notifier: notifier}
}

// Process applies one action to the document and returns the committed
// document. Gate denial and wrong-current-status surface as the same
// error kind on purpose.
func (f *ActionFunction) Process(ctx context.Context, actor Actor, docID string, req *models.ActionRequest) (*models.Document, error) {
	if actor.UserID == "" || actor.Role == "" {
		return nil, ErrUnauthenticated
	}
	if docID == "" || req.Action == "" {
		return nil, fmt.Errorf("document id and action are required: %w", ErrValidation)
	}

	doc, err := f.store.GetDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	if !doc.IsLatest {
		return nil, fmt.Errorf("document %s superseded: %w", docID, ErrPermission)
	}
	site, err := f.store.GetSite(ctx, doc.SiteID)
	if err != nil {
		return nil, err
	}

	if !permission.CanPerform(site, actor.UserID, actor.Role, doc.DocumentType, req.Action) {
		return nil, fmt.Errorf("%s by %s on %s: %w", req.Action, actor.Role, doc.DocumentNumber, ErrPermission)
	}

	next, err := workflow.Transition(doc.DocumentType, workflow.Input{
		Status:       doc.Status,
		Action:       req.Action,
		CMSystemType: site.CMSystemType,
		Role:         actor.Role,
		FileCount:    len(req.NewFiles),
	})
	if err != nil {
		return nil, err
	}

	// Files move before the commit: a workflow entry must never point
	// at a path that does not exist yet.
	var files []models.FileRef
	if len(req.NewFiles) > 0 {
		files, err = f.mover.MoveAll(ctx, doc.SiteID, doc.DocumentNumber, req.NewFiles)
		if err != nil {
			return nil, fmt.Errorf("stage files for %s: %w", doc.DocumentNumber, err)
		}
	}

	entry := models.WorkflowEntry{
		EntryID:   uuid.NewString(),
		Action:    req.Action,
		Status:    next,
		UserID:    actor.UserID,
		Role:      actor.Role,
		Timestamp: time.Now(),
		Comments:  req.Comments,
		Files:     files,
	}
	committed, err := f.store.ApplyAction(ctx, docID, doc.Status, func(d *models.Document) error {
		d.Status = next
		d.Workflow = append(d.Workflow, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[Doc: %s][Action: %s] %s → %s by %s (%s)", committed.DocumentNumber, req.Action, doc.Status, next, actor.UserID, actor.Role)

	if targets := workflow.NotifyTargets(committed.DocumentType, next); len(targets) > 0 {
		n := models.Notification{
			SiteID:         committed.SiteID,
			DocumentNumber: committed.DocumentNumber,
			Status:         next,
			TargetRoles:    targets,
		}
		if err := f.notifier.Notify(ctx, n); err != nil {
			// Delivery is best effort; the transition already committed.
			log.Printf("[Doc: %s] WARNING: notification enqueue failed: %v", committed.DocumentNumber, err)
		}
	}
	return committed, nil
}
