package v1handler

import (
	"encoding/json"
	"net/http"

	"sitecheck/pkg/domain"
	"sitecheck/pkg/serrors"
)

type createSiteRequest struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

type sitePage struct {
	Items      []domain.Site `json:"items"`
	NextCursor string        `json:"nextCursor,omitempty"`
}

// CreateSite registers a new site to be crawled.
func (h *Handler) CreateSite(w http.ResponseWriter, r *http.Request) {
	var req createSiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, serrors.Wrap(serrors.ErrBadRequest, err, "invalid request body"))

		return
	}

	site, err := h.deps.Checker.Register(r.Context(), req.URL, req.Name)
	if err != nil {
		writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusCreated, site)
}

// ListSites returns a page of registered sites.
func (h *Handler) ListSites(w http.ResponseWriter, r *http.Request) {
	limit, err := limitFromQuery(r)
	if err != nil {
		writeError(w, r, err)

		return
	}

	sites, next, err := h.deps.Checker.Sites(r.Context(), r.URL.Query().Get("cursor"), limit)
	if err != nil {
		writeError(w, r, err)

		return
	}
	if sites == nil {
		sites = []domain.Site{}
	}

	writeJSON(w, http.StatusOK, sitePage{Items: sites, NextCursor: next})
}

// DeleteSite removes a registered site. Stored crawl results are kept.
func (h *Handler) DeleteSite(w http.ResponseWriter, r *http.Request) {
	siteID, err := siteIDFromPath(r)
	if err != nil {
		writeError(w, r, err)

		return
	}

	if err := h.deps.Checker.Delete(r.Context(), siteID); err != nil {
		writeError(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
