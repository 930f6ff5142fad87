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
	functions.HTTP("DocumentCreate", handleDocumentCreate)
}

func main() {}

// handleDocumentCreate creates a new RFA or work-request document.
func handleDocumentCreate(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		app, initErr = services.NewApp(context.Background())
	})
	if initErr != nil {
		log.Printf("CRITICAL: service initialization failed: %v", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	var req models.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("ERROR: Could not decode request body: %v", err)
		http.Error(w, "Bad Request: could not parse JSON", http.StatusBadRequest)
		return
	}

	doc, err := app.Create.Process(r.Context(), services.ActorFromRequest(r), &req)
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(services.HTTPStatus(err))
		_ = json.NewEncoder(w).Encode(models.CreateResponse{Success: false, Error: err.Error()})
		return
	}
	_ = json.NewEncoder(w).Encode(models.CreateResponse{
		Success:        true,
		DocumentID:     doc.ID,
		DocumentNumber: doc.DocumentNumber,
		Status:         doc.Status,
	})
}
