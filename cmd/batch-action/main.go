package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/sitewalk/submittalflow/internal/models"
	"github.com/sitewalk/submittalflow/internal/services"
)

var (
	app     *services.App
	once    sync.Once
	initErr error
)

func init() {
	functions.HTTP("BatchAction", handleBatchAction)
}

func main() {}

// handleBatchAction approves or rejects many DRAFT work requests in one
// call, reporting per-item failures.
func handleBatchAction(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		app, initErr = services.NewApp(context.Background())
	})
	if initErr != nil {
		log.Printf("CRITICAL: service initialization failed: %v", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	var req models.BatchActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("ERROR: Could not decode request body: %v", err)
		http.Error(w, "Bad Request: could not parse JSON", http.StatusBadRequest)
		return
	}

	res, err := app.Batch.Process(r.Context(), services.ActorFromRequest(r), &req)
	if err != nil {
		http.Error(w, err.Error(), services.HTTPStatus(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(res)
}
