// Package services hosts the handler-facing orchestration: each
// function struct validates input, consults the permission gate, asks
// the state machine for the next status, commits the store write and
// performs the accepted-action side effects (file moves, notification
// values). Synchronization with the external task store happens
// elsewhere, in the trigger-driven reactor.
package services

import (
	"context"
	"log"

	"github.com/sitewalk/submittalflow/internal/models"
)

// Actor is the authenticated caller, as asserted by the identity
// collaborator in front of these functions.
type Actor struct {
	UserID string
	Role   models.Role
}

// DocumentStore is the persistence contract shared by the services.
// Implemented by store.Store; tests substitute in-memory fakes.
type DocumentStore interface {
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	GetSite(ctx context.Context, siteID string) (*models.Site, error)
	CreateDocument(ctx context.Context, doc *models.Document) (string, error)
	ApplyAction(ctx context.Context, id string, expected models.Status, mutate func(*models.Document) error) (*models.Document, error)
	NextSequence(ctx context.Context, counterKey string) (int64, error)
	NumberExists(ctx context.Context, number string) (bool, error)
}

// FileMover relocates staged uploads to their permanent path.
// Implemented by staging.Mover.
type FileMover interface {
	MoveAll(ctx context.Context, siteID, documentNumber string, files []models.StagedFile) ([]models.FileRef, error)
}

// Notifier enqueues a notification toward the delivery collaborator.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}

// LogNotifier is the default Notifier: it only records the value. Real
// delivery is a push-notification collaborator outside this engine.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, n models.Notification) error {
	log.Printf("[Doc: %s] NOTIFY roles %v of status %s", n.DocumentNumber, n.TargetRoles, n.Status)
	return nil
}
