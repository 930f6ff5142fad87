package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/sitewalk/submittalflow/internal/models"
	"github.com/sitewalk/submittalflow/internal/staging"
	"github.com/sitewalk/submittalflow/internal/store"
)

// memStore is an in-memory DocumentStore with the same transactional
// behavior as the Firestore adapter: ApplyAction re-reads under the
// lock and enforces the expected-status precondition.
type memStore struct {
	mu       sync.Mutex
	docs     map[string]*models.Document
	sites    map[string]*models.Site
	counters map[string]int64
	nextID   int
}

func newMemStore() *memStore {
	return &memStore{
		docs:     make(map[string]*models.Document),
		sites:    make(map[string]*models.Site),
		counters: make(map[string]int64),
	}
}

func (s *memStore) addSite(site *models.Site) {
	s.sites[site.SiteID] = site
}

func (s *memStore) GetDocument(_ context.Context, id string) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, store.ErrNotFound)
	}
	copied := *doc
	return &copied, nil
}

func (s *memStore) GetSite(_ context.Context, siteID string) (*models.Site, error) {
	site, ok := s.sites[siteID]
	if !ok {
		return nil, fmt.Errorf("site %s: %w", siteID, store.ErrNotFound)
	}
	return site, nil
}

func (s *memStore) CreateDocument(_ context.Context, doc *models.Document) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := fmt.Sprintf("doc-%d", s.nextID)
	copied := *doc
	copied.ID = id
	s.docs[id] = &copied
	return id, nil
}

func (s *memStore) ApplyAction(_ context.Context, id string, expected models.Status, mutate func(*models.Document) error) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, store.ErrNotFound)
	}
	if doc.Status != expected {
		return nil, fmt.Errorf("expected %s, found %s: %w", expected, doc.Status, store.ErrStatusChanged)
	}
	copied := *doc
	copied.Workflow = append([]models.WorkflowEntry{}, doc.Workflow...)
	if err := mutate(&copied); err != nil {
		return nil, err
	}
	s.docs[id] = &copied
	result := copied
	return &result, nil
}

func (s *memStore) NextSequence(_ context.Context, counterKey string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[counterKey]++
	return s.counters[counterKey], nil
}

func (s *memStore) NumberExists(_ context.Context, number string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range s.docs {
		if doc.DocumentNumber == number {
			return true, nil
		}
	}
	return false, nil
}

// memMover pretends every staged file moved successfully.
type memMover struct {
	moved []models.StagedFile
}

func (m *memMover) MoveAll(_ context.Context, siteID, documentNumber string, files []models.StagedFile) ([]models.FileRef, error) {
	m.moved = append(m.moved, files...)
	refs := make([]models.FileRef, 0, len(files))
	for _, f := range files {
		refs = append(refs, models.FileRef{
			FileName: f.FileName,
			Path:     staging.PermanentPath(siteID, documentNumber, f.FileName),
		})
	}
	return refs, nil
}

// memNotifier captures produced notification values.
type memNotifier struct {
	sent []models.Notification
}

func (n *memNotifier) Notify(_ context.Context, notification models.Notification) error {
	n.sent = append(n.sent, notification)
	return nil
}

func internalSite() *models.Site {
	return &models.Site{
		SiteID:       "S1",
		ShortName:    "STW",
		ProjectName:  "Skytower",
		CMSystemType: models.CMInternal,
	}
}
