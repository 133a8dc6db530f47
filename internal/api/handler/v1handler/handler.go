// Package v1handler implements the HTTP handlers for version 1 of the API.
// Handlers decode requests, delegate to the sitechecker service and translate
// semantic errors into HTTP status codes.
package v1handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sitecheck/internal/sitechecker"
	"sitecheck/pkg/domain"
	"sitecheck/pkg/logger"
	"sitecheck/pkg/serrors"
)

// DefaultLimit is the page size used when the request does not specify one.
const DefaultLimit = 20

// MaxLimit caps the page size a client may request.
const MaxLimit = 100

// Deps carries the service dependencies the handlers delegate to.
type Deps struct {
	Checker sitechecker.SiteChecker
}

type Handler struct {
	deps Deps
}

func New(deps Deps) *Handler {
	return &Handler{deps: deps}
}

// Routes returns a mux with all v1 endpoints registered.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/sites", h.CreateSite)
	mux.HandleFunc("GET /v1/sites", h.ListSites)
	mux.HandleFunc("DELETE /v1/sites/{id}", h.DeleteSite)
	mux.HandleFunc("POST /v1/sites/{id}/scans", h.CreateScan)
	mux.HandleFunc("GET /v1/sites/{id}/results", h.ListResults)
	mux.HandleFunc("GET /v1/sites/{id}/report", h.GetReport)
	mux.HandleFunc("POST /v1/scans", h.ScanAll)

	return mux
}

// errorResponse is the JSON body returned for all error statuses.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps semantic error kinds to HTTP statuses. Unrecognized errors
// are logged and reported as opaque internal errors so no storage or crawl
// details leak to clients.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := err.Error()

	switch {
	case errors.Is(err, serrors.ErrBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, serrors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, serrors.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, serrors.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, serrors.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, serrors.ErrRateLimited):
		status = http.StatusTooManyRequests
	case errors.Is(err, serrors.ErrTimeout):
		status = http.StatusGatewayTimeout
	default:
		logger.Error(r.Context(), "internal error handling request", zap.Error(err))
		message = "internal error"
	}

	writeJSON(w, status, errorResponse{Error: message})
}

// siteIDFromPath parses the {id} path segment into a SiteID.
func siteIDFromPath(r *http.Request) (domain.SiteID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return domain.SiteID{}, serrors.Wrap(serrors.ErrBadRequest, err, "invalid site id")
	}

	return domain.SiteID(id), nil
}

// limitFromQuery parses the limit query parameter, clamped to MaxLimit.
func limitFromQuery(r *http.Request) (uint, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return DefaultLimit, nil
	}

	limit, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || limit == 0 {
		return 0, serrors.With(serrors.ErrBadRequest, "invalid limit: %s", raw)
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return uint(limit), nil
}
