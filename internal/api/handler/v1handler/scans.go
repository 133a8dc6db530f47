package v1handler

import (
	"net/http"

	"sitecheck/pkg/domain"
)

type scanResponse struct {
	Enqueued bool `json:"enqueued"`
}

type scanAllResponse struct {
	Enqueued int `json:"enqueued"`
}

type resultPage struct {
	Items      []domain.ScanRecord `json:"items"`
	NextCursor string              `json:"nextCursor,omitempty"`
}

// reportResponse is the condensed view of the latest crawl: a single error
// flag plus the broken pages, without the storage-level record fields. Error
// is true when the crawl failed or when a completed crawl found broken pages;
// the message keeps the two cases distinguishable.
type reportResponse struct {
	Error   bool                 `json:"error"`
	Message string               `json:"message"`
	Pages   []domain.PageOutcome `json:"pages"`
}

// CreateScan enqueues a crawl job for one site. Enqueued is false when an
// equivalent job was already queued and the request was deduplicated.
func (h *Handler) CreateScan(w http.ResponseWriter, r *http.Request) {
	siteID, err := siteIDFromPath(r)
	if err != nil {
		writeError(w, r, err)

		return
	}

	added, err := h.deps.Checker.Scan(r.Context(), siteID)
	if err != nil {
		writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusAccepted, scanResponse{Enqueued: added})
}

// ScanAll enqueues a crawl job for every registered site.
func (h *Handler) ScanAll(w http.ResponseWriter, r *http.Request) {
	added, err := h.deps.Checker.ScanAll(r.Context())
	if err != nil {
		writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusAccepted, scanAllResponse{Enqueued: added})
}

// ListResults returns a page of stored crawl results for a site, newest
// first.
func (h *Handler) ListResults(w http.ResponseWriter, r *http.Request) {
	siteID, err := siteIDFromPath(r)
	if err != nil {
		writeError(w, r, err)

		return
	}

	limit, err := limitFromQuery(r)
	if err != nil {
		writeError(w, r, err)

		return
	}

	records, next, err := h.deps.Checker.Results(r.Context(), siteID, r.URL.Query().Get("cursor"), limit)
	if err != nil {
		writeError(w, r, err)

		return
	}
	if records == nil {
		records = []domain.ScanRecord{}
	}

	writeJSON(w, http.StatusOK, resultPage{Items: records, NextCursor: next})
}

// GetReport returns the latest crawl result for a site in report form.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	siteID, err := siteIDFromPath(r)
	if err != nil {
		writeError(w, r, err)

		return
	}

	record, err := h.deps.Checker.LatestResult(r.Context(), siteID)
	if err != nil {
		writeError(w, r, err)

		return
	}

	pages := record.BrokenPages
	if pages == nil {
		pages = []domain.PageOutcome{}
	}

	writeJSON(w, http.StatusOK, reportResponse{
		Error:   !record.Success || len(pages) > 0,
		Message: record.Message,
		Pages:   pages,
	})
}
