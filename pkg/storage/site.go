package storage

import (
	"context"
	"time"

	"sitecheck/pkg/domain"
)

// SitePage groups a page of sites together with an optional NextCursor used
// for pagination.
type SitePage struct {
	// Sites contains the current page of registered sites.
	Sites []domain.Site
	// NextCursor points to the timestamp to be used as the cursor for fetching
	// the next page. It is nil when there is no next page.
	NextCursor *time.Time
}

// SiteStorage defines CRUD and query operations for registered sites.
// Implementations should handle soft-deletes where applicable.
type SiteStorage interface {
	// StoreSites inserts one or more sites and returns the stored rows as they
	// exist in the database (including generated fields).
	StoreSites(ctx context.Context, sites ...domain.Site) ([]domain.Site, error)
	// SiteByID fetches a site by its ID, excluding soft-deleted records.
	// Returns nil when not found.
	SiteByID(ctx context.Context, ID domain.SiteID) (*domain.Site, error)
	// SiteByURL fetches a site by its normalized base URL, excluding
	// soft-deleted records. Returns nil when not found.
	SiteByURL(ctx context.Context, URL string) (*domain.Site, error)
	// Sites returns a page of sites created before the optional cursor time,
	// limited by the given limit, ordered newest first.
	Sites(ctx context.Context, cursor time.Time, limit uint) (SitePage, error)
	// DeleteSite performs a soft delete for the given site ID and returns the
	// deleted site, or nil if it was not found.
	DeleteSite(ctx context.Context, ID domain.SiteID) (*domain.Site, error)
}
