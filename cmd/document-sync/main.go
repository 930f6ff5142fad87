package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/sitewalk/submittalflow/internal/gcp"
	"github.com/sitewalk/submittalflow/internal/models"
	"github.com/sitewalk/submittalflow/internal/store"
	"github.com/sitewalk/submittalflow/internal/tasksync"
	"github.com/sitewalk/submittalflow/internal/taskstore"
)

var (
	syncer  *tasksync.Syncer
	once    sync.Once
	initErr error
)

func init() {
	// Register the event-driven function with the Functions Framework.
	functions.CloudEvent("DocumentSync", handleDocumentSync)
}

// main is required by the Go Functions Framework.
func main() {}

// newSyncer constructs the two store clients: the source document store
// and the independently-owned task store, each in its own project.
func newSyncer(ctx context.Context) (*tasksync.Syncer, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}
	taskProjectID := gcp.GetEnv("TASKSTORE_PROJECT_ID", "")
	if taskProjectID == "" {
		return nil, fmt.Errorf("TASKSTORE_PROJECT_ID environment variable must be set")
	}

	docClient, err := gcp.NewFirestoreClient(ctx, projectID)
	if err != nil {
		return nil, err
	}
	taskClient, err := gcp.NewFirestoreClient(ctx, taskProjectID)
	if err != nil {
		return nil, err
	}

	docs := store.New(docClient, store.Config{
		Documents: gcp.GetEnv("DOCUMENTS_COLLECTION", store.DefaultDocumentsCollection),
		Sites:     gcp.GetEnv("SITES_COLLECTION", store.DefaultSitesCollection),
		Counters:  gcp.GetEnv("COUNTERS_COLLECTION", store.DefaultCountersCollection),
	})
	cfg := tasksync.Config{
		DocumentBaseURL: gcp.GetEnv("DOCUMENT_BASE_URL", "https://app.sitewalk.io"),
	}
	return tasksync.New(docs, taskstore.NewFirestoreClient(taskClient), cfg, slog.Default()), nil
}

// handleDocumentSync consumes one document-write trigger event. The
// trigger fires at least once per commit; the syncer's upserts are
// idempotent, so replays are safe. Sync failures never propagate back:
// returning an error here would request a redelivery, and this design
// records failures on the document instead of retrying.
func handleDocumentSync(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		syncer, initErr = newSyncer(context.Background())
	})
	if initErr != nil {
		log.Printf("CRITICAL: syncer initialization failed: %v", initErr)
		return initErr
	}

	var ev models.DocumentWriteEvent
	if err := json.Unmarshal(e.Data(), &ev); err != nil {
		log.Printf("ERROR: Could not decode document write event %s: %v", e.ID(), err)
		// Malformed payloads will not improve on redelivery.
		return nil
	}
	return syncer.Handle(ctx, ev)
}
