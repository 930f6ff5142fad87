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
	// Register the HTTP function with the framework.
	functions.HTTP("DocumentAction", handleDocumentAction)
}

// main is required by the Go Functions Framework.
func main() {}

// handleDocumentAction applies one workflow action to a document
// addressed by the documentId query parameter.
func handleDocumentAction(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		app, initErr = services.NewApp(context.Background())
	})
	if initErr != nil {
		log.Printf("CRITICAL: service initialization failed: %v", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	docID := r.URL.Query().Get("documentId")
	var req models.ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("ERROR: Could not decode request body: %v", err)
		http.Error(w, "Bad Request: could not parse JSON", http.StatusBadRequest)
		return
	}

	doc, err := app.Action.Process(r.Context(), services.ActorFromRequest(r), docID, &req)
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(services.HTTPStatus(err))
		_ = json.NewEncoder(w).Encode(models.ActionResponse{Success: false, Error: err.Error()})
		return
	}
	_ = json.NewEncoder(w).Encode(models.ActionResponse{
		Success:    true,
		NewStatus:  doc.Status,
		DocumentID: doc.ID,
	})
}
