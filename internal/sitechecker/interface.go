package sitechecker

import (
	"context"

	"sitecheck/pkg/domain"
)

// SiteChecker coordinates site registration, crawl scheduling and result
// retrieval. Crawls themselves run asynchronously in background workers; Scan
// and ScanAll only enqueue work.
type SiteChecker interface {
	// Register stores a new site after validating and normalizing its base URL.
	Register(ctx context.Context, URL string, name string) (*domain.Site, error)
	// Sites returns a page of registered sites together with the cursor for
	// the next page, or an empty cursor when there is none.
	Sites(ctx context.Context, cursor string, limit uint) ([]domain.Site, string, error)
	// Scan enqueues a crawl job for the given site. The boolean result is
	// false when an equivalent job was already queued and the request was
	// deduplicated.
	Scan(ctx context.Context, siteID domain.SiteID) (bool, error)
	// ScanAll enqueues a crawl job for every registered site and returns the
	// number of jobs actually added.
	ScanAll(ctx context.Context) (int, error)
	// Results returns a page of stored crawl results for the given site,
	// newest first, together with the cursor for the next page.
	Results(ctx context.Context, siteID domain.SiteID, cursor string, limit uint) ([]domain.ScanRecord, string, error)
	// LatestResult returns the most recent crawl result for the site, or a
	// not-found error when the site has never been crawled.
	LatestResult(ctx context.Context, siteID domain.SiteID) (*domain.ScanRecord, error)
	// Delete removes a registered site. Stored results are kept for history.
	Delete(ctx context.Context, siteID domain.SiteID) error
}
