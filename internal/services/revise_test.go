package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitewalk/submittalflow/internal/models"
	"github.com/sitewalk/submittalflow/internal/revision"
)

// InsertRevision completes the revision.Store contract on the fake.
func (s *memStore) InsertRevision(_ context.Context, originalID string, successor *models.Document, retireStatus *models.Status) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	original, ok := s.docs[originalID]
	if !ok {
		return "", fmt.Errorf("document %s not found", originalID)
	}
	if !original.IsLatest {
		return "", revision.ErrSuperseded
	}
	s.nextID++
	id := fmt.Sprintf("doc-%d", s.nextID)
	inserted := *successor
	inserted.ID = id
	s.docs[id] = &inserted
	original.IsLatest = false
	if retireStatus != nil {
		original.Status = *retireStatus
	}
	return id, nil
}

func TestReviseCreatorOnly(t *testing.T) {
	st := newMemStore()
	st.addSite(internalSite())
	create, action, _ := newTestApp(st)
	revise := NewRevise(st, revision.NewManager(st), &memMover{})
	ctx := context.Background()

	doc, err := create.Process(ctx, Actor{UserID: "site-user", Role: models.RoleSite}, &models.CreateRequest{
		SiteID: "S1", DocumentType: models.DocTypeRFAGeneral, Title: "Anchors",
	})
	require.NoError(t, err)
	_, err = action.Process(ctx, Actor{UserID: "pm-user", Role: models.RolePM}, doc.ID, &models.ActionRequest{Action: models.ActionRequestRevision})
	require.NoError(t, err)

	// A different user with the creator role is still denied.
	_, err = revise.Process(ctx, Actor{UserID: "other-user", Role: models.RoleSite}, doc.ID, &models.ActionRequest{Action: models.ActionSubmitRevision})
	require.ErrorIs(t, err, ErrPermission)

	successor, err := revise.Process(ctx, Actor{UserID: "site-user", Role: models.RoleSite}, doc.ID, &models.ActionRequest{
		Action:   models.ActionSubmitRevision,
		Comments: "re-detailed per CM comments",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, successor.RevisionNumber)
	assert.Equal(t, models.StatusPendingReview, successor.Status)
	assert.Equal(t, doc.ID, successor.ParentID)

	retired, err := st.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.False(t, retired.IsLatest)
}

func TestReviseRequiresRevisableStatus(t *testing.T) {
	st := newMemStore()
	st.addSite(internalSite())
	create, _, _ := newTestApp(st)
	revise := NewRevise(st, revision.NewManager(st), &memMover{})
	ctx := context.Background()

	doc, err := create.Process(ctx, Actor{UserID: "site-user", Role: models.RoleSite}, &models.CreateRequest{
		SiteID: "S1", DocumentType: models.DocTypeRFAGeneral, Title: "Anchors",
	})
	require.NoError(t, err)

	_, err = revise.Process(ctx, Actor{UserID: "site-user", Role: models.RoleSite}, doc.ID, &models.ActionRequest{Action: models.ActionSubmitRevision})
	require.ErrorIs(t, err, revision.ErrNotRevisable)
}
