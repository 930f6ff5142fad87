package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/sitewalk/submittalflow/internal/models"
	"github.com/sitewalk/submittalflow/internal/numbering"
	"github.com/sitewalk/submittalflow/internal/permission"
	"github.com/sitewalk/submittalflow/internal/workflow"
)

// typeCodes are the namespace fragments embedded in document numbers.
var typeCodes = map[models.DocumentType]string{
	models.DocTypeRFAGeneral:     "GEN",
	models.DocTypeRFAShopDrawing: "SHD",
	models.DocTypeWorkRequest:    "WR",
}

// CreateFunction handles document creation: gate check, number
// allocation, file staging move and the initial store write.
type CreateFunction struct {
	store    DocumentStore
	mover    FileMover
	notifier Notifier
}

// NewCreate wires a CreateFunction from injected collaborators.
func NewCreate(store DocumentStore, mover FileMover, notifier Notifier) *CreateFunction {
	return &CreateFunction{store: store, mover: mover, notifier: notifier}
}

// Process creates one document and returns it with its store id set.
func (f *CreateFunction) Process(ctx context.Context, actor Actor, req *models.CreateRequest) (*models.Document, error) {
	if actor.UserID == "" || actor.Role == "" {
		return nil, ErrUnauthenticated
	}
	if req.SiteID == "" || req.Title == "" {
		return nil, fmt.Errorf("siteId and title are required: %w", ErrValidation)
	}
	typeCode, ok := typeCodes[req.DocumentType]
	if !ok {
		return nil, fmt.Errorf("unknown document type %q: %w", req.DocumentType, ErrValidation)
	}

	site, err := f.store.GetSite(ctx, req.SiteID)
	if err != nil {
		return nil, err
	}
	if !permission.CanPerform(site, actor.UserID, actor.Role, req.DocumentType, models.ActionCreate) {
		return nil, fmt.Errorf("create %s as %s: %w", req.DocumentType, actor.Role, ErrPermission)
	}

	// The generator's existence probe doubles as the pre-creation
	// uniqueness check on the composite number.
	counterKey := numbering.CounterKey(req.SiteID, string(req.DocumentType))
	alloc, err := numbering.Allocate(ctx, f.store, counterKey, numbering.DocumentNumber(site.ShortName, typeCode))
	if err != nil {
		return nil, err
	}

	var files []models.FileRef
	if len(req.NewFiles) > 0 {
		files, err = f.mover.MoveAll(ctx, req.SiteID, alloc.Number, req.NewFiles)
		if err != nil {
			return nil, fmt.Errorf("stage files for %s: %w", alloc.Number, err)
		}
	}

	now := time.Now()
	initial := workflow.InitialStatus(req.DocumentType)
	doc := &models.Document{
		SiteID:         req.SiteID,
		DocumentType:   req.DocumentType,
		DocumentNumber: alloc.Number,
		RunningNumber:  alloc.Sequence,
		Title:          req.Title,
		Status:         initial,
		RevisionNumber: 0,
		IsLatest:       true,
		CreatedBy:      actor.UserID,
		CreatedByRole:  actor.Role,
		CreatedAt:      now,
		Workflow: []models.WorkflowEntry{{
			EntryID:   uuid.NewString(),
			Action:    models.ActionCreate,
			Status:    initial,
			UserID:    actor.UserID,
			Role:      actor.Role,
			Timestamp: now,
			Comments:  req.Comments,
			Files:     files,
		}},
	}

	id, err := f.store.CreateDocument(ctx, doc)
	if err != nil {
		return nil, err
	}
	doc.ID = id
	log.Printf("[Doc: %s][Site: %s] Created as %s by %s (%s)", doc.DocumentNumber, doc.SiteID, id, actor.UserID, actor.Role)
	return doc, nil
}
