package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/sitewalk/submittalflow/internal/models"
)

// batchConcurrency bounds the fan-out of one batch request.
const batchConcurrency = 8

// BatchFunction approves or rejects many DRAFT work requests in one
// call. Each item commits atomically on its own; a document no longer
// in DRAFT yields a per-item error instead of failing the batch.
type BatchFunction struct {
	action *ActionFunction
}

// NewBatch wires a BatchFunction on top of the single-action service.
func NewBatch(action *ActionFunction) *BatchFunction {
	return &BatchFunction{action: action}
}

// Process fans the action out over the ids and aggregates the outcome.
func (f *BatchFunction) Process(ctx context.Context, actor Actor, req *models.BatchActionRequest) (*models.BatchActionResponse, error) {
	if actor.UserID == "" || actor.Role == "" {
		return nil, ErrUnauthenticated
	}
	if len(req.IDs) == 0 {
		return nil, fmt.Errorf("ids are required: %w", ErrValidation)
	}
	if req.Action != models.ActionApproveRequest && req.Action != models.ActionRejectRequest {
		return nil, fmt.Errorf("action %q is not batchable: %w", req.Action, ErrValidation)
	}

	var (
		mu      sync.Mutex
		updated int
		failed  []models.BatchItemError
	)
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(batchConcurrency)
	for _, id := range req.IDs {
		eg.Go(func() error {
			itemReq := req.Payload
			itemReq.Action = req.Action
			_, err := f.action.Process(gctx, actor, id, &itemReq)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, models.BatchItemError{ID: id, Error: err.Error()})
			} else {
				updated++
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// Stable output order for clients and tests.
	sort.Slice(failed, func(i, j int) bool { return failed[i].ID < failed[j].ID })
	return &models.BatchActionResponse{
		UpdatedCount: updated,
		ErrorCount:   len(failed),
		Errors:       failed,
	}, nil
}
