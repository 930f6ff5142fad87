package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitewalk/submittalflow/internal/models"
)

func addWorkRequest(st *memStore, status models.Status) string {
	id, _ := st.CreateDocument(context.Background(), &models.Document{
		SiteID:       "S1",
		DocumentType: models.DocTypeWorkRequest,
		Status:       status,
		IsLatest:     true,
		Workflow:     []models.WorkflowEntry{{Action: models.ActionCreate, Status: models.StatusDraft}},
	})
	return id
}

func TestBatchApproveDrafts(t *testing.T) {
	st := newMemStore()
	st.addSite(internalSite())
	_, action, _ := newTestApp(st)
	batch := NewBatch(action)
	ctx := context.Background()

	ids := []string{
		addWorkRequest(st, models.StatusDraft),
		addWorkRequest(st, models.StatusDraft),
		// Already moved on: short-circuits with a per-item error.
		addWorkRequest(st, models.StatusInProgress),
		addWorkRequest(st, models.StatusDraft),
	}

	res, err := batch.Process(ctx, Actor{UserID: "pm-user", Role: models.RolePM}, &models.BatchActionRequest{
		IDs:    ids,
		Action: models.ActionApproveRequest,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, res.UpdatedCount)
	assert.Equal(t, 1, res.ErrorCount)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, ids[2], res.Errors[0].ID)

	for i, id := range ids {
		doc, err := st.GetDocument(ctx, id)
		require.NoError(t, err)
		if i == 2 {
			assert.Equal(t, models.StatusInProgress, doc.Status)
			continue
		}
		assert.Equal(t, models.StatusPendingBIM, doc.Status)
		// The approval appended its own audit entry per document.
		assert.Len(t, doc.Workflow, 2)
	}
}

func TestBatchRejectsMissingDocumentPerItem(t *testing.T) {
	st := newMemStore()
	st.addSite(internalSite())
	_, action, _ := newTestApp(st)
	batch := NewBatch(action)

	draft := addWorkRequest(st, models.StatusDraft)
	res, err := batch.Process(context.Background(), Actor{UserID: "pm-user", Role: models.RolePM}, &models.BatchActionRequest{
		IDs:    []string{draft, "missing-doc"},
		Action: models.ActionRejectRequest,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.UpdatedCount)
	assert.Equal(t, 1, res.ErrorCount)
	assert.Equal(t, "missing-doc", res.Errors[0].ID)
}

func TestBatchValidation(t *testing.T) {
	st := newMemStore()
	st.addSite(internalSite())
	_, action, _ := newTestApp(st)
	batch := NewBatch(action)
	ctx := context.Background()

	_, err := batch.Process(ctx, Actor{UserID: "pm-user", Role: models.RolePM}, &models.BatchActionRequest{
		Action: models.ActionApproveRequest,
	})
	require.ErrorIs(t, err, ErrValidation)

	_, err = batch.Process(ctx, Actor{UserID: "pm-user", Role: models.RolePM}, &models.BatchActionRequest{
		IDs:    []string{"doc-1"},
		Action: models.ActionApprove, // RFA approval is not batchable
	})
	require.ErrorIs(t, err, ErrValidation)

	_, err = batch.Process(ctx, Actor{}, &models.BatchActionRequest{
		IDs:    []string{"doc-1"},
		Action: models.ActionApproveRequest,
	})
	require.ErrorIs(t, err, ErrUnauthenticated)
}
