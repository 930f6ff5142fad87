package services

import (
	"errors"
	"net/http"

	"github.com/sitewalk/submittalflow/internal/numbering"
	"github.com/sitewalk/submittalflow/internal/revision"
	"github.com/sitewalk/submittalflow/internal/store"
	"github.com/sitewalk/submittalflow/internal/workflow"
)

var (
	// ErrValidation means missing or malformed input.
	ErrValidation = errors.New("invalid request")
	// ErrUnauthenticated means no actor identity on the request.
	ErrUnauthenticated = errors.New("missing caller identity")
	// ErrPermission means the gate denied the action, or the document
	// is not in a status the action applies to. The two are
	// deliberately not distinguished so workflow internals do not leak
	// to callers.
	ErrPermission = errors.New("action not permitted")
	// ErrConflict means a duplicate document number or a concurrent
	// writer won the race.
	ErrConflict = errors.New("conflicting write")
)

// HTTPStatus maps a service error to the response code the HTTP
// functions return.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrPermission),
		errors.Is(err, workflow.ErrInvalidTransition),
		errors.Is(err, revision.ErrNotRevisable):
		return http.StatusForbidden
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict),
		errors.Is(err, store.ErrStatusChanged),
		errors.Is(err, revision.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, ErrValidation),
		errors.Is(err, workflow.ErrFilesRequired),
		errors.Is(err, workflow.ErrUnknownAction):
		return http.StatusBadRequest
	case errors.Is(err, numbering.ErrRetryExhausted):
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}
