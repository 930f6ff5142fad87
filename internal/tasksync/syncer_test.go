package tasksync

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitewalk/submittalflow/internal/models"
	"github.com/sitewalk/submittalflow/internal/taskstore"
)

// fakeDocs records the patches the syncer applies to the source store.
type fakeDocs struct {
	sites      map[string]*models.Site
	docs       map[string]*models.Document
	taskLinks  map[string]*models.TaskLink
	syncErrors map[string]string
}

func newFakeDocs() *fakeDocs {
	return &fakeDocs{
		sites: map[string]*models.Site{
			"S1": {SiteID: "S1", ShortName: "STW", ProjectName: "Skytower"},
		},
		docs:       make(map[string]*models.Document),
		taskLinks:  make(map[string]*models.TaskLink),
		syncErrors: make(map[string]string),
	}
}

func (f *fakeDocs) add(id string, doc *models.Document) {
	copied := *doc
	f.docs[id] = &copied
}

func (f *fakeDocs) GetDocument(_ context.Context, id string) (*models.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %s not found", id)
	}
	copied := *doc
	return &copied, nil
}

func (f *fakeDocs) GetSite(_ context.Context, siteID string) (*models.Site, error) {
	site, ok := f.sites[siteID]
	if !ok {
		return nil, fmt.Errorf("site %s not found", siteID)
	}
	return site, nil
}

func (f *fakeDocs) SetTaskLink(_ context.Context, id string, link *models.TaskLink) error {
	f.taskLinks[id] = link
	if doc, ok := f.docs[id]; ok {
		doc.TaskLink = link
	}
	delete(f.syncErrors, id)
	return nil
}

func (f *fakeDocs) SetSyncError(_ context.Context, id, message string) error {
	f.syncErrors[id] = message
	return nil
}

func (f *fakeDocs) ClearSyncError(_ context.Context, id string) error {
	delete(f.syncErrors, id)
	return nil
}

// fakeTasks implements taskstore.Client in memory, counting counter
// increments so idempotency tests can assert on them.
type fakeTasks struct {
	projects    map[string]*taskstore.Project
	relateWorks map[string]*taskstore.RelateWork
	tasks       map[string]*taskstore.Task
	increments  int
	upsertErr   error
}

func newFakeTasks() *fakeTasks {
	return &fakeTasks{
		projects: map[string]*taskstore.Project{
			"p1": {ID: "p1", Name: "Skytower", ProjectCode: "PRJ4"},
		},
		relateWorks: map[string]*taskstore.RelateWork{
			"rfa-general":  {ID: "rfa-general", Name: "RFA", Order: 3},
			"work-request": {ID: "work-request", Name: "Work Request", Order: 5},
		},
		tasks: make(map[string]*taskstore.Task),
	}
}

func (f *fakeTasks) ProjectByName(_ context.Context, name string) (*taskstore.Project, error) {
	for _, p := range f.projects {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("project %q: %w", name, taskstore.ErrNotFound)
}

func (f *fakeTasks) RelateWork(_ context.Context, id string) (*taskstore.RelateWork, error) {
	rw, ok := f.relateWorks[id]
	if !ok {
		return nil, fmt.Errorf("relate work %s: %w", id, taskstore.ErrNotFound)
	}
	return rw, nil
}

func (f *fakeTasks) Task(_ context.Context, uid string) (*taskstore.Task, error) {
	t, ok := f.tasks[uid]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", uid, taskstore.ErrNotFound)
	}
	copied := *t
	return &copied, nil
}

func (f *fakeTasks) UpsertTask(_ context.Context, t *taskstore.Task) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	copied := *t
	f.tasks[t.UID] = &copied
	return nil
}

func (f *fakeTasks) NextTaskSequence(_ context.Context, projectID string) (int64, error) {
	p, ok := f.projects[projectID]
	if !ok {
		return 0, fmt.Errorf("project %s: %w", projectID, taskstore.ErrNotFound)
	}
	f.increments++
	p.TaskCounter++
	return p.TaskCounter, nil
}

func (f *fakeTasks) TaskNumberExists(_ context.Context, number string) (bool, error) {
	_, ok := f.tasks[number]
	return ok, nil
}

func newTestSyncer(docs *fakeDocs, tasks *fakeTasks) *Syncer {
	return New(docs, tasks, Config{DocumentBaseURL: "https://app.example.com"}, nil)
}

func trackingEvent(docID string) models.DocumentWriteEvent {
	return models.DocumentWriteEvent{
		DocumentID: docID,
		Before: &models.Document{
			SiteID: "S1", DocumentType: models.DocTypeRFAGeneral,
			DocumentNumber: "STW-GEN-0001", Status: models.StatusPendingReview,
		},
		After: &models.Document{
			SiteID: "S1", DocumentType: models.DocTypeRFAGeneral,
			DocumentNumber: "STW-GEN-0001", Status: models.StatusPendingCMApproval,
			Title: "Facade anchors",
		},
	}
}

func TestCreateTaskPath(t *testing.T) {
	docs := newFakeDocs()
	tasks := newFakeTasks()
	s := newTestSyncer(docs, tasks)

	ev := trackingEvent("d1")
	docs.add("d1", ev.After)
	require.NoError(t, s.Handle(context.Background(), ev))

	link := docs.taskLinks["d1"]
	require.NotNil(t, link, "task link must be written back")
	assert.Equal(t, "PRJ430001", link.TaskUID)
	assert.Equal(t, "Skytower", link.ProjectName)

	task := tasks.tasks[link.TaskUID]
	require.NotNil(t, task)
	assert.Equal(t, string(models.StatusPendingCMApproval), task.CurrentStep)
	assert.Equal(t, "STW-GEN-0001", task.DocumentNumber)
	assert.Equal(t, "Facade anchors", task.TaskName)
	assert.Equal(t, 0, task.Rev)
	assert.Empty(t, docs.syncErrors["d1"])
}

// The trigger delivers at least once, and a redelivered event carries
// the same stale snapshot with no task link. The live re-read inside
// create-task must catch the link the first pass wrote: exactly one
// task, exactly one counter increment, no matter how often the
// identical event arrives.
func TestHandleIdempotentOnReplay(t *testing.T) {
	docs := newFakeDocs()
	tasks := newFakeTasks()
	s := newTestSyncer(docs, tasks)

	ev := trackingEvent("d1")
	docs.add("d1", ev.After)
	require.NoError(t, s.Handle(context.Background(), ev))
	firstLink := docs.taskLinks["d1"]
	require.NotNil(t, firstLink)

	// Redeliver the identical event, stale snapshot and all.
	require.NoError(t, s.Handle(context.Background(), ev))
	require.NoError(t, s.Handle(context.Background(), ev))

	assert.Equal(t, firstLink.TaskUID, docs.taskLinks["d1"].TaskUID)
	assert.Len(t, tasks.tasks, 1, "no duplicate task")
	assert.Equal(t, 1, tasks.increments, "no second counter increment")
}

func TestSyncStatusPath(t *testing.T) {
	docs := newFakeDocs()
	tasks := newFakeTasks()
	tasks.tasks["PRJ430001"] = &taskstore.Task{UID: "PRJ430001", CurrentStep: string(models.StatusPendingCMApproval)}
	s := newTestSyncer(docs, tasks)

	link := &models.TaskLink{TaskUID: "PRJ430001"}
	docs.syncErrors["d1"] = "stale failure"
	ev := models.DocumentWriteEvent{
		DocumentID: "d1",
		Before: &models.Document{
			SiteID: "S1", DocumentType: models.DocTypeRFAGeneral,
			DocumentNumber: "STW-GEN-0001", Status: models.StatusPendingCMApproval, TaskLink: link,
		},
		After: &models.Document{
			SiteID: "S1", DocumentType: models.DocTypeRFAGeneral,
			DocumentNumber: "STW-GEN-0001", Status: models.StatusApproved, TaskLink: link, RevisionNumber: 0,
		},
	}
	require.NoError(t, s.Handle(context.Background(), ev))

	assert.Equal(t, string(models.StatusApproved), tasks.tasks["PRJ430001"].CurrentStep)
	_, stillFailed := docs.syncErrors["d1"]
	assert.False(t, stillFailed, "syncError cleared on success")
}

func TestSyncFailureRecordsError(t *testing.T) {
	docs := newFakeDocs()
	tasks := newFakeTasks()
	tasks.tasks["PRJ430001"] = &taskstore.Task{UID: "PRJ430001"}
	tasks.upsertErr = errors.New("task store unavailable")
	s := newTestSyncer(docs, tasks)

	link := &models.TaskLink{TaskUID: "PRJ430001"}
	ev := models.DocumentWriteEvent{
		DocumentID: "d1",
		Before:     &models.Document{SiteID: "S1", DocumentType: models.DocTypeRFAGeneral, Status: models.StatusPendingCMApproval, TaskLink: link},
		After:      &models.Document{SiteID: "S1", DocumentType: models.DocTypeRFAGeneral, Status: models.StatusApproved, TaskLink: link},
	}

	// The reactor swallows the failure and annotates the document.
	require.NoError(t, s.Handle(context.Background(), ev))
	assert.Contains(t, docs.syncErrors["d1"], "task store unavailable")
}

func TestRelinkPath(t *testing.T) {
	docs := newFakeDocs()
	tasks := newFakeTasks()
	tasks.tasks["PRJ430001"] = &taskstore.Task{
		UID: "PRJ430001", DocumentNumber: "STW-GEN-0001", Rev: 0,
		CurrentStep: string(models.StatusRevisionRequired),
	}
	docs.syncErrors["d1"] = "sync failed before revision"
	s := newTestSyncer(docs, tasks)

	ev := models.DocumentWriteEvent{
		DocumentID: "d2",
		After: &models.Document{
			SiteID: "S1", DocumentType: models.DocTypeRFAGeneral,
			DocumentNumber: "STW-GEN-0001", Status: models.StatusPendingReview,
			RevisionNumber:  1,
			RevisionHistory: []string{"d1"},
			TaskLink:        &models.TaskLink{TaskUID: "PRJ430001"},
		},
	}
	require.NoError(t, s.Handle(context.Background(), ev))

	task := tasks.tasks["PRJ430001"]
	assert.Equal(t, 1, task.Rev)
	assert.Contains(t, task.Link, "/documents/d2")
	_, stillFailed := docs.syncErrors["d1"]
	assert.False(t, stillFailed, "predecessor syncError cleared after relink")
}

func TestRelinkMissingTaskRecordsError(t *testing.T) {
	docs := newFakeDocs()
	tasks := newFakeTasks()
	s := newTestSyncer(docs, tasks)

	ev := models.DocumentWriteEvent{
		DocumentID: "d2",
		After: &models.Document{
			SiteID: "S1", DocumentType: models.DocTypeRFAGeneral,
			Status:   models.StatusPendingReview,
			TaskLink: &models.TaskLink{TaskUID: "PRJ999999"},
		},
	}
	require.NoError(t, s.Handle(context.Background(), ev))
	assert.NotEmpty(t, docs.syncErrors["d2"])
}

// An event with no documentId can never be acted on; returning an
// error would only request endless redelivery of the same payload.
func TestHandleDropsMissingID(t *testing.T) {
	docs := newFakeDocs()
	tasks := newFakeTasks()
	s := newTestSyncer(docs, tasks)

	require.NoError(t, s.Handle(context.Background(), models.DocumentWriteEvent{}))
	assert.Empty(t, tasks.tasks)
	assert.Empty(t, docs.taskLinks)
}
