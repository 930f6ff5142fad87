package tasksync

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sitewalk/submittalflow/internal/models"
	"github.com/sitewalk/submittalflow/internal/numbering"
	"github.com/sitewalk/submittalflow/internal/taskstore"
)

// DocumentStore is the slice of the source store the syncer patches.
type DocumentStore interface {
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	GetSite(ctx context.Context, siteID string) (*models.Site, error)
	SetTaskLink(ctx context.Context, id string, link *models.TaskLink) error
	SetSyncError(ctx context.Context, id, message string) error
	ClearSyncError(ctx context.Context, id string) error
}

// Config holds syncer settings.
type Config struct {
	// DocumentBaseURL prefixes the link written into external tasks.
	DocumentBaseURL string
	// RelateWorkByType maps a document type to the external activity
	// record carrying the order code for task numbers.
	RelateWorkByType map[models.DocumentType]string
}

// DefaultRelateWorks is the standard activity mapping.
var DefaultRelateWorks = map[models.DocumentType]string{
	models.DocTypeRFAGeneral:     "rfa-general",
	models.DocTypeRFAShopDrawing: "rfa-shopdrawing",
	models.DocTypeWorkRequest:    "work-request",
}

// Syncer consumes document-write events and upserts external tasks.
// Every external write is keyed deterministically (the task number or
// the known uid), so at-least-once event delivery re-applies the same
// patch instead of duplicating records.
type Syncer struct {
	docs   DocumentStore
	tasks  taskstore.Client
	cfg    Config
	logger *slog.Logger
}

// New wires a Syncer from injected stores.
func New(docs DocumentStore, tasks taskstore.Client, cfg Config, logger *slog.Logger) *Syncer {
	if cfg.RelateWorkByType == nil {
		cfg.RelateWorkByType = DefaultRelateWorks
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{docs: docs, tasks: tasks, cfg: cfg, logger: logger}
}

// Handle processes one trigger event. It always returns nil: a
// malformed event will not improve on redelivery, and external-store
// failures are recorded on the source document and swallowed, since a
// background reactor has no caller to answer and automatic retry is
// deliberately not performed.
func (s *Syncer) Handle(ctx context.Context, ev models.DocumentWriteEvent) error {
	if ev.DocumentID == "" {
		s.logger.Error("document write event missing documentId")
		return nil
	}
	kind := Classify(ev)
	logger := s.logger.With("documentId", ev.DocumentID, "kind", kind.String())

	var err error
	switch kind {
	case KindNone:
		logger.Info("nothing to sync")
		return nil
	case KindCreateTask:
		err = s.createTask(ctx, ev.DocumentID)
	case KindSyncStatus:
		err = s.syncStatus(ctx, ev.DocumentID, ev.After)
	case KindRelink:
		err = s.relink(ctx, ev.DocumentID, ev.After)
	}
	if err != nil {
		logger.Error("sync failed", "error", err)
		if recErr := s.docs.SetSyncError(ctx, ev.DocumentID, err.Error()); recErr != nil {
			logger.Error("recording sync error also failed", "error", recErr)
		}
		return nil
	}
	logger.Info("sync complete")
	return nil
}

// createTask resolves the external project and activity, allocates a
// collision-safe task number and upserts the task, then patches the
// source document with the new link (clearing syncError in that write).
// The trigger snapshot may be stale under at-least-once delivery, so the
// live document is re-read first: if a prior delivery already wrote a
// task link, the task exists and only its state is mirrored.
func (s *Syncer) createTask(ctx context.Context, docID string) error {
	doc, err := s.docs.GetDocument(ctx, docID)
	if err != nil {
		return fmt.Errorf("re-read document: %w", err)
	}
	if doc.TaskLink != nil && doc.TaskLink.TaskUID != "" {
		return s.syncStatus(ctx, docID, doc)
	}

	site, err := s.docs.GetSite(ctx, doc.SiteID)
	if err != nil {
		return fmt.Errorf("resolve site: %w", err)
	}
	project, err := s.tasks.ProjectByName(ctx, site.ProjectName)
	if err != nil {
		return fmt.Errorf("resolve project: %w", err)
	}
	relateWorkID, ok := s.cfg.RelateWorkByType[doc.DocumentType]
	if !ok {
		return fmt.Errorf("no activity mapping for document type %s", doc.DocumentType)
	}
	rw, err := s.tasks.RelateWork(ctx, relateWorkID)
	if err != nil {
		return fmt.Errorf("resolve activity: %w", err)
	}

	seqStore := taskstore.SequenceStore{Client: s.tasks, ProjectID: project.ID}
	alloc, err := numbering.Allocate(ctx, seqStore, project.ID, numbering.TaskNumber(project.ProjectCode, rw.Order))
	if err != nil {
		return fmt.Errorf("allocate task number: %w", err)
	}

	task := &taskstore.Task{
		UID:            alloc.Number,
		TaskName:       doc.Title,
		TaskCategory:   rw.Name,
		CurrentStep:    string(doc.Status),
		Link:           s.documentLink(docID, doc),
		DocumentNumber: doc.DocumentNumber,
		Rev:            doc.RevisionNumber,
	}
	if task.TaskName == "" {
		task.TaskName = doc.DocumentNumber
	}
	if err := s.tasks.UpsertTask(ctx, task); err != nil {
		return err
	}

	link := &models.TaskLink{
		TaskUID:      task.UID,
		TaskName:     task.TaskName,
		TaskCategory: rw.Name,
		ProjectName:  project.Name,
	}
	if err := s.docs.SetTaskLink(ctx, docID, link); err != nil {
		return fmt.Errorf("write task link back: %w", err)
	}
	return nil
}

// syncStatus mirrors a tracked document's status and link into its task.
func (s *Syncer) syncStatus(ctx context.Context, docID string, doc *models.Document) error {
	task, err := s.tasks.Task(ctx, doc.TaskLink.TaskUID)
	if err != nil {
		return fmt.Errorf("load task: %w", err)
	}
	task.CurrentStep = string(doc.Status)
	task.Link = s.documentLink(docID, doc)
	task.DocumentNumber = doc.DocumentNumber
	task.Rev = doc.RevisionNumber
	if err := s.tasks.UpsertTask(ctx, task); err != nil {
		return err
	}
	return s.docs.ClearSyncError(ctx, docID)
}

// relink handles a newly created document that inherited a task link
// from its predecessor: verify the task exists, point it at the new
// document, and only then clear the predecessor's failure annotation.
func (s *Syncer) relink(ctx context.Context, docID string, doc *models.Document) error {
	task, err := s.tasks.Task(ctx, doc.TaskLink.TaskUID)
	if err != nil {
		return fmt.Errorf("verify task: %w", err)
	}
	task.CurrentStep = string(doc.Status)
	task.Link = s.documentLink(docID, doc)
	task.DocumentNumber = doc.DocumentNumber
	task.Rev = doc.RevisionNumber
	if err := s.tasks.UpsertTask(ctx, task); err != nil {
		return err
	}
	if n := len(doc.RevisionHistory); n > 0 {
		predecessor := doc.RevisionHistory[n-1]
		if err := s.docs.ClearSyncError(ctx, predecessor); err != nil {
			return fmt.Errorf("clear predecessor sync error: %w", err)
		}
	}
	return nil
}

func (s *Syncer) documentLink(docID string, doc *models.Document) string {
	return fmt.Sprintf("%s/sites/%s/documents/%s", s.cfg.DocumentBaseURL, doc.SiteID, docID)
}
