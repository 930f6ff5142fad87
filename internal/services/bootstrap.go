package services

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/sitewalk/submittalflow/internal/gcp"
	"github.com/sitewalk/submittalflow/internal/models"
	"github.com/sitewalk/submittalflow/internal/revision"
	"github.com/sitewalk/submittalflow/internal/staging"
	"github.com/sitewalk/submittalflow/internal/store"
)

// AppConfig holds the environment configuration shared by the
// client-facing functions.
type AppConfig struct {
	ProjectID          string
	DocumentsBucket    string
	PublicFilesBaseURL string
	Collections        store.Config
}

// loadAppConfig reads and validates the environment.
func loadAppConfig() (*AppConfig, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}
	bucket := gcp.GetEnv("DOCUMENTS_BUCKET", "")
	if bucket == "" {
		return nil, fmt.Errorf("DOCUMENTS_BUCKET environment variable must be set")
	}
	return &AppConfig{
		ProjectID:          projectID,
		DocumentsBucket:    bucket,
		PublicFilesBaseURL: gcp.GetEnv("PUBLIC_FILES_BASE_URL", "https://storage.googleapis.com/"+bucket),
		Collections: store.Config{
			Documents: gcp.GetEnv("DOCUMENTS_COLLECTION", store.DefaultDocumentsCollection),
			Sites:     gcp.GetEnv("SITES_COLLECTION", store.DefaultSitesCollection),
			Counters:  gcp.GetEnv("COUNTERS_COLLECTION", store.DefaultCountersCollection),
		},
	}, nil
}

// App bundles the wired services for the HTTP functions.
type App struct {
	Create *CreateFunction
	Action *ActionFunction
	Batch  *BatchFunction
	Revise *ReviseFunction
}

// NewApp constructs the clients once and injects them through the
// service constructors. Called from each function's cold start.
func NewApp(ctx context.Context) (*App, error) {
	cfg, err := loadAppConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, err
	}
	storageClient, err := gcp.NewStorageClient(ctx)
	if err != nil {
		return nil, err
	}

	st := store.New(firestoreClient, cfg.Collections)
	mover := staging.NewMover(storageClient, cfg.DocumentsBucket, cfg.PublicFilesBaseURL)
	notifier := LogNotifier{}

	action := NewAction(st, mover, notifier)
	log.Printf("Workflow services initialized for project %s", cfg.ProjectID)
	return &App{
		Create: NewCreate(st, mover, notifier),
		Action: action,
		Batch:  NewBatch(action),
		Revise: NewRevise(st, revision.NewManager(st), mover),
	}, nil
}

// ActorFromRequest reads the caller identity asserted by the upstream
// authentication collaborator.
func ActorFromRequest(r *http.Request) Actor {
	return Actor{
		UserID: r.Header.Get("X-User-Id"),
		Role:   models.Role(r.Header.Get("X-User-Role")),
	}
}
