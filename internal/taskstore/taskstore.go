// Package taskstore talks to the external, independently-owned
// task-tracking store. The engine references tasks, it never owns them:
// tasks are created once, patched by the synchronizer and never
// deleted. All writes are upserts on deterministic keys so at-least-once
// trigger replays re-apply the same patch instead of duplicating.
package taskstore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

// ErrNotFound is returned when a project, activity or task is missing.
var ErrNotFound = errors.New("task store record not found")

// Project is the external project record. TaskCounter is the
// transactional sequence field task numbers are allocated from.
type Project struct {
	ID          string `firestore:"-"`
	Name        string `firestore:"name"`
	ProjectCode string `firestore:"projectCode"`
	TaskCounter int64  `firestore:"taskCounter"`
}

// RelateWork is an activity/category record; Order feeds the task
// number composition.
type RelateWork struct {
	ID    string `firestore:"-"`
	Name  string `firestore:"name"`
	Order int    `firestore:"order"`
}

// Task mirrors the high-level document state into the external store.
type Task struct {
	UID            string `firestore:"-"`
	TaskName       string `firestore:"taskName"`
	TaskCategory   string `firestore:"taskCategory,omitempty"`
	CurrentStep    string `firestore:"currentStep"`
	Link           string `firestore:"link"`
	DocumentNumber string `firestore:"documentNumber"`
	Rev            int    `firestore:"rev"`
}

// Client is the contract the synchronizer consumes.
type Client interface {
	ProjectByName(ctx context.Context, name string) (*Project, error)
	RelateWork(ctx context.Context, id string) (*RelateWork, error)
	Task(ctx context.Context, uid string) (*Task, error)
	UpsertTask(ctx context.Context, t *Task) error
	NextTaskSequence(ctx context.Context, projectID string) (int64, error)
	TaskNumberExists(ctx context.Context, number string) (bool, error)
}

// Firestore collection names in the external project.
const (
	projectsCollection    = "projects"
	relateWorksCollection = "relateWorks"
	tasksCollection       = "tasks"
)

// FirestoreClient implements Client against the external store's own
// Firestore project.
type FirestoreClient struct {
	client *firestore.Client
}

// NewFirestoreClient wraps an injected Firestore client pointed at the
// external project.
func NewFirestoreClient(client *firestore.Client) *FirestoreClient {
	return &FirestoreClient{client: client}
}

// ProjectByName resolves a project record by its display name.
func (c *FirestoreClient) ProjectByName(ctx context.Context, name string) (*Project, error) {
	it := c.client.Collection(projectsCollection).Where("name", "==", name).Limit(1).Documents(ctx)
	snap, err := it.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("project %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query project %q: %w", name, err)
	}
	var p Project
	if err := snap.DataTo(&p); err != nil {
		return nil, fmt.Errorf("decode project %q: %w", name, err)
	}
	p.ID = snap.Ref.ID
	return &p, nil
}

// RelateWork loads an activity record by id.
func (c *FirestoreClient) RelateWork(ctx context.Context, id string) (*RelateWork, error) {
	snap, err := c.client.Collection(relateWorksCollection).Doc(id).Get(ctx)
	if err != nil {
		if snap != nil && !snap.Exists() {
			return nil, fmt.Errorf("relate work %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get relate work %s: %w", id, err)
	}
	var rw RelateWork
	if err := snap.DataTo(&rw); err != nil {
		return nil, fmt.Errorf("decode relate work %s: %w", id, err)
	}
	rw.ID = snap.Ref.ID
	return &rw, nil
}

// Task loads a task by its uid (the generated task number).
func (c *FirestoreClient) Task(ctx context.Context, uid string) (*Task, error) {
	snap, err := c.client.Collection(tasksCollection).Doc(uid).Get(ctx)
	if err != nil {
		if snap != nil && !snap.Exists() {
			return nil, fmt.Errorf("task %s: %w", uid, ErrNotFound)
		}
		return nil, fmt.Errorf("get task %s: %w", uid, err)
	}
	var t Task
	if err := snap.DataTo(&t); err != nil {
		return nil, fmt.Errorf("decode task %s: %w", uid, err)
	}
	t.UID = snap.Ref.ID
	return &t, nil
}

// UpsertTask writes the task under its deterministic uid. Replaying the
// same upsert is a no-op beyond re-applying identical fields.
func (c *FirestoreClient) UpsertTask(ctx context.Context, t *Task) error {
	if t.UID == "" {
		return fmt.Errorf("upsert task: missing uid")
	}
	if _, err := c.client.Collection(tasksCollection).Doc(t.UID).Set(ctx, t); err != nil {
		return fmt.Errorf("upsert task %s: %w", t.UID, err)
	}
	return nil
}

// NextTaskSequence atomically increments the project's taskCounter.
func (c *FirestoreClient) NextTaskSequence(ctx context.Context, projectID string) (int64, error) {
	ref := c.client.Collection(projectsCollection).Doc(projectID)
	var next int64
	err := c.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if snap != nil && !snap.Exists() {
				return fmt.Errorf("project %s: %w", projectID, ErrNotFound)
			}
			return err
		}
		var p Project
		if err := snap.DataTo(&p); err != nil {
			return err
		}
		next = p.TaskCounter + 1
		return tx.Update(ref, []firestore.Update{{Path: "taskCounter", Value: next}})
	})
	if err != nil {
		return 0, fmt.Errorf("task counter %s: %w", projectID, err)
	}
	return next, nil
}

// TaskNumberExists reports whether a task already carries the number.
func (c *FirestoreClient) TaskNumberExists(ctx context.Context, number string) (bool, error) {
	snap, err := c.client.Collection(tasksCollection).Doc(number).Get(ctx)
	if err != nil {
		if snap != nil && !snap.Exists() {
			return false, nil
		}
		return false, fmt.Errorf("check task number %s: %w", number, err)
	}
	return snap.Exists(), nil
}

// SequenceStore adapts a Client and project id to the numbering
// generator's store contract.
type SequenceStore struct {
	Client    Client
	ProjectID string
}

func (s SequenceStore) NextSequence(ctx context.Context, _ string) (int64, error) {
	return s.Client.NextTaskSequence(ctx, s.ProjectID)
}

func (s SequenceStore) NumberExists(ctx context.Context, number string) (bool, error) {
	return s.Client.TaskNumberExists(ctx, number)
}
