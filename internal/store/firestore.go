// Package store adapts Firestore to the narrow persistence contracts
// the engine components consume. All multi-field mutations that must
// not observably diverge (the counter increment, the action commit, the
// revision-pair swap) run inside Firestore transactions.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/sitewalk/submittalflow/internal/models"
)

// Collection names. Overridable per deployment through Config.
const (
	DefaultDocumentsCollection = "documents"
	DefaultSitesCollection     = "sites"
	DefaultCountersCollection  = "counters"
)

// ErrNotFound is returned when a document or site id resolves to nothing.
var ErrNotFound = errors.New("record not found")

// ErrStatusChanged is returned when an expected-status precondition
// fails inside a transaction: another writer got there first.
var ErrStatusChanged = errors.New("document status changed concurrently")

// Config names the collections a Store operates on.
type Config struct {
	Documents string
	Sites     string
	Counters  string
}

// Store is the Firestore-backed document store.
type Store struct {
	client *firestore.Client
	cfg    Config
}

// New wraps an injected Firestore client. Empty collection names fall
// back to the defaults.
func New(client *firestore.Client, cfg Config) *Store {
	if cfg.Documents == "" {
		cfg.Documents = DefaultDocumentsCollection
	}
	if cfg.Sites == "" {
		cfg.Sites = DefaultSitesCollection
	}
	if cfg.Counters == "" {
		cfg.Counters = DefaultCountersCollection
	}
	return &Store{client: client, cfg: cfg}
}

// GetDocument loads one document by id.
func (s *Store) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	snap, err := s.client.Collection(s.cfg.Documents).Doc(id).Get(ctx)
	if err != nil {
		if snap != nil && !snap.Exists() {
			return nil, fmt.Errorf("document %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get document %s: %w", id, err)
	}
	var doc models.Document
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", id, err)
	}
	doc.ID = snap.Ref.ID
	return &doc, nil
}

// GetSite loads a site's workflow configuration.
func (s *Store) GetSite(ctx context.Context, siteID string) (*models.Site, error) {
	snap, err := s.client.Collection(s.cfg.Sites).Doc(siteID).Get(ctx)
	if err != nil {
		if snap != nil && !snap.Exists() {
			return nil, fmt.Errorf("site %s: %w", siteID, ErrNotFound)
		}
		return nil, fmt.Errorf("get site %s: %w", siteID, err)
	}
	var site models.Site
	if err := snap.DataTo(&site); err != nil {
		return nil, fmt.Errorf("decode site %s: %w", siteID, err)
	}
	site.SiteID = snap.Ref.ID
	return &site, nil
}

// CreateDocument inserts a new document and returns its store id.
func (s *Store) CreateDocument(ctx context.Context, doc *models.Document) (string, error) {
	ref, _, err := s.client.Collection(s.cfg.Documents).Add(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("create document %s: %w", doc.DocumentNumber, err)
	}
	return ref.ID, nil
}

// NextSequence atomically increments the counter for counterKey and
// returns the post-increment value. The counter document is created
// lazily on first use.
func (s *Store) NextSequence(ctx context.Context, counterKey string) (int64, error) {
	ref := s.client.Collection(s.cfg.Counters).Doc(counterKey)
	var next int64
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		var counter models.Counter
		if err != nil {
			if snap == nil || snap.Exists() {
				return err
			}
			// First use of this key.
		} else if err := snap.DataTo(&counter); err != nil {
			return err
		}
		counter.CurrentValue++
		next = counter.CurrentValue
		return tx.Set(ref, counter)
	})
	if err != nil {
		return 0, fmt.Errorf("counter %s: %w", counterKey, err)
	}
	return next, nil
}

// NumberExists reports whether any document already carries the
// composite number. The number embeds the site short name, so a flat
// query covers per-site uniqueness.
func (s *Store) NumberExists(ctx context.Context, number string) (bool, error) {
	snaps, err := s.client.Collection(s.cfg.Documents).
		Where("documentNumber", "==", number).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return false, fmt.Errorf("query number %s: %w", number, err)
	}
	return len(snaps) > 0, nil
}

// ApplyAction commits a workflow transition: inside one transaction the
// document is re-read, the expected-status precondition is verified,
// mutate is applied and the full document written back. Returns the
// committed document.
func (s *Store) ApplyAction(ctx context.Context, id string, expected models.Status, mutate func(*models.Document) error) (*models.Document, error) {
	ref := s.client.Collection(s.cfg.Documents).Doc(id)
	var committed *models.Document
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if snap != nil && !snap.Exists() {
				return fmt.Errorf("document %s: %w", id, ErrNotFound)
			}
			return err
		}
		var doc models.Document
		if err := snap.DataTo(&doc); err != nil {
			return err
		}
		doc.ID = snap.Ref.ID
		if doc.Status != expected {
			return fmt.Errorf("expected %s, found %s: %w", expected, doc.Status, ErrStatusChanged)
		}
		if err := mutate(&doc); err != nil {
			return err
		}
		doc.UpdatedAt = time.Now()
		committed = &doc
		return tx.Set(ref, &doc)
	})
	if err != nil {
		return nil, err
	}
	return committed, nil
}

// InsertRevision commits the revision-pair swap in one transaction: the
// successor is inserted and the original retired (isLatest=false, plus
// an optional terminal status for work requests). The original is
// re-read inside the transaction so two concurrent revisions of the
// same document cannot both win.
func (s *Store) InsertRevision(ctx context.Context, originalID string, successor *models.Document, retireStatus *models.Status) (string, error) {
	originalRef := s.client.Collection(s.cfg.Documents).Doc(originalID)
	successorRef := s.client.Collection(s.cfg.Documents).NewDoc()
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(originalRef)
		if err != nil {
			if snap != nil && !snap.Exists() {
				return fmt.Errorf("document %s: %w", originalID, ErrNotFound)
			}
			return err
		}
		var original models.Document
		if err := snap.DataTo(&original); err != nil {
			return err
		}
		if !original.IsLatest {
			return fmt.Errorf("document %s already superseded: %w", originalID, ErrStatusChanged)
		}
		if err := tx.Set(successorRef, successor); err != nil {
			return err
		}
		updates := []firestore.Update{
			{Path: "isLatest", Value: false},
			{Path: "updatedAt", Value: time.Now()},
		}
		if retireStatus != nil {
			updates = append(updates, firestore.Update{Path: "status", Value: *retireStatus})
		}
		return tx.Update(originalRef, updates)
	})
	if err != nil {
		return "", err
	}
	return successorRef.ID, nil
}

// SetTaskLink records a freshly created external task on the document
// and clears any stale sync failure in the same write.
func (s *Store) SetTaskLink(ctx context.Context, id string, link *models.TaskLink) error {
	_, err := s.client.Collection(s.cfg.Documents).Doc(id).Update(ctx, []firestore.Update{
		{Path: "taskLink", Value: link},
		{Path: "syncError", Value: firestore.Delete},
	})
	if err != nil {
		return fmt.Errorf("set task link on %s: %w", id, err)
	}
	return nil
}

// SetSyncError annotates the document with the last synchronization
// failure for a human or reconciliation job to act on.
func (s *Store) SetSyncError(ctx context.Context, id, message string) error {
	_, err := s.client.Collection(s.cfg.Documents).Doc(id).Update(ctx, []firestore.Update{
		{Path: "syncError", Value: message},
	})
	if err != nil {
		return fmt.Errorf("set sync error on %s: %w", id, err)
	}
	return nil
}

// ClearSyncError removes the failure annotation after a successful sync.
func (s *Store) ClearSyncError(ctx context.Context, id string) error {
	_, err := s.client.Collection(s.cfg.Documents).Doc(id).Update(ctx, []firestore.Update{
		{Path: "syncError", Value: firestore.Delete},
	})
	if err != nil {
		return fmt.Errorf("clear sync error on %s: %w", id, err)
	}
	return nil
}
