// Package sitechecker implements the application service behind the API: it
// owns site registration, schedules crawl jobs and serves stored results.
package sitechecker

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"sitecheck/internal/config"
	"sitecheck/internal/crawler"
	"sitecheck/pkg/domain"
	"sitecheck/pkg/serrors"
	"sitecheck/pkg/storage"
)

// Options configure how crawl jobs are enqueued and how site URLs are
// normalized. These settings are typically derived from application
// configuration.
type Options struct {
	// MaxAttempts is the maximum number of attempts the background worker
	// should make when processing a crawl job before marking it failed.
	MaxAttempts int
	// UniqueJobPeriod is the window during which a second crawl request for
	// the same site reuses the queued job instead of enqueueing a duplicate.
	UniqueJobPeriod time.Duration
	// Normalization is the URL folding policy applied to base URLs at
	// registration time.
	Normalization crawler.NormalizationMode
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		MaxAttempts:     cfg.SiteChecker.MaxAttempts,
		UniqueJobPeriod: cfg.SiteChecker.UniqueJobPeriod,
		Normalization:   crawler.NormalizationMode(cfg.Crawler.Normalization),
	}
}

// siteChecker is the concrete implementation of the SiteChecker interface.
// It coordinates persistence with the storage layer and job enqueueing.
type siteChecker struct {
	options Options
	storage storage.Storage
}

// New creates a new SiteChecker backed by the provided storage and configured
// with the given options.
func New(storage storage.Storage, options Options) SiteChecker {
	if options.Normalization == "" {
		options.Normalization = crawler.NormalizationExact
	}

	return &siteChecker{
		options: options,
		storage: storage,
	}
}

// Register validates the base URL, normalizes it and stores the site. A URL
// already registered under an equivalent spelling is rejected with a conflict
// error.
func (s siteChecker) Register(ctx context.Context, URL string, name string) (*domain.Site, error) {
	u, err := url.Parse(URL)
	if err != nil || u.Host == "" {
		return nil, serrors.With(serrors.ErrBadRequest, "invalid base URL: %s", URL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, serrors.With(serrors.ErrBadRequest, "unsupported URL scheme: %s", u.Scheme)
	}

	normalized := crawler.Normalize(URL, s.options.Normalization)

	var site *domain.Site
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		existing, err := tx.SiteByURL(ctx, normalized)
		if err != nil {
			return fmt.Errorf("could not look up site by url: %w", err)
		}
		if existing != nil {
			return serrors.With(serrors.ErrConflict, "site already registered: %s", normalized)
		}

		stored, err := tx.StoreSites(ctx, domain.Site{
			URL:  normalized,
			Name: name,
		})
		if err != nil {
			return fmt.Errorf("could not store site: %w", err)
		}
		site = &stored[0]

		return nil
	}); err != nil {
		return nil, fmt.Errorf("could not register site: %w", err)
	}

	return site, nil
}

// Sites returns a page of registered sites. It supports cursor-based
// pagination using an RFC3339 timestamp string and returns the next cursor
// when more results are available.
func (s siteChecker) Sites(ctx context.Context, cursor string, limit uint) ([]domain.Site, string, error) {
	cursorTime, err := parseCursor(cursor)
	if err != nil {
		return nil, "", err
	}

	page, err := s.storage.Sites(ctx, cursorTime, limit)
	if err != nil {
		return nil, "", fmt.Errorf("could not get sites: %w", err)
	}

	var next string
	if page.NextCursor != nil {
		next = page.NextCursor.Format(time.RFC3339)
	}

	return page.Sites, next, nil
}

// Scan enqueues a crawl job for the site. River's unique jobs guarantee at
// most one queued crawl per site within the configured period; the returned
// boolean is false when the request was absorbed by an existing job.
func (s siteChecker) Scan(ctx context.Context, siteID domain.SiteID) (bool, error) {
	site, err := s.storage.SiteByID(ctx, siteID)
	if err != nil {
		return false, fmt.Errorf("could not get site: %w", err)
	}
	if site == nil {
		return false, serrors.With(serrors.ErrNotFound, "site not found")
	}

	added, err := s.storage.AddJob(ctx, JobArgs{
		SiteID:          site.ID,
		URL:             site.URL,
		maxAttempts:     s.options.MaxAttempts,
		uniqueJobPeriod: s.options.UniqueJobPeriod,
	}, nil)
	if err != nil {
		return false, fmt.Errorf("could not add crawl job: %w", err)
	}

	return added, nil
}

// ScanAll enqueues a crawl job for every registered site, paging through the
// full site list. Sites whose jobs were deduplicated do not count toward the
// returned total.
func (s siteChecker) ScanAll(ctx context.Context) (int, error) {
	const pageSize = 100

	var added int
	var cursor time.Time
	for {
		page, err := s.storage.Sites(ctx, cursor, pageSize)
		if err != nil {
			return added, fmt.Errorf("could not list sites: %w", err)
		}

		for _, site := range page.Sites {
			ok, err := s.storage.AddJob(ctx, JobArgs{
				SiteID:          site.ID,
				URL:             site.URL,
				maxAttempts:     s.options.MaxAttempts,
				uniqueJobPeriod: s.options.UniqueJobPeriod,
			}, nil)
			if err != nil {
				return added, fmt.Errorf("could not add crawl job for %s: %w", site.URL, err)
			}
			if ok {
				added++
			}
		}

		if page.NextCursor == nil {
			return added, nil
		}
		cursor = *page.NextCursor
	}
}

// Results returns a page of stored crawl results for the site, newest first.
func (s siteChecker) Results(ctx context.Context,
	siteID domain.SiteID,
	cursor string,
	limit uint) ([]domain.ScanRecord, string, error) {
	cursorTime, err := parseCursor(cursor)
	if err != nil {
		return nil, "", err
	}

	site, err := s.storage.SiteByID(ctx, siteID)
	if err != nil {
		return nil, "", fmt.Errorf("could not get site: %w", err)
	}
	if site == nil {
		return nil, "", serrors.With(serrors.ErrNotFound, "site not found")
	}

	page, err := s.storage.ScanRecordsBySite(ctx, siteID, cursorTime, limit)
	if err != nil {
		return nil, "", fmt.Errorf("could not get scan records: %w", err)
	}

	var next string
	if page.NextCursor != nil {
		next = page.NextCursor.Format(time.RFC3339)
	}

	return page.Records, next, nil
}

// LatestResult fetches the most recent crawl result for the site. It returns
// a not-found error when the site does not exist or has never been crawled.
func (s siteChecker) LatestResult(ctx context.Context, siteID domain.SiteID) (*domain.ScanRecord, error) {
	site, err := s.storage.SiteByID(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("could not get site: %w", err)
	}
	if site == nil {
		return nil, serrors.With(serrors.ErrNotFound, "site not found")
	}

	record, err := s.storage.LatestScanRecord(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("could not get latest scan record: %w", err)
	}
	if record == nil {
		return nil, serrors.With(serrors.ErrNotFound, "site has not been crawled yet")
	}

	return record, nil
}

// Delete removes a registered site. If the site does not exist, a not-found
// error is returned. Queued crawl jobs are not cancelled here; the worker
// skips sites that disappeared before the job ran.
func (s siteChecker) Delete(ctx context.Context, siteID domain.SiteID) error {
	res, err := s.storage.DeleteSite(ctx, siteID)
	if err != nil {
		return fmt.Errorf("could not delete site: %w", err)
	}
	if res == nil {
		return serrors.With(serrors.ErrNotFound, "site not found")
	}

	return nil
}

func parseCursor(cursor string) (time.Time, error) {
	if cursor == "" {
		return time.Time{}, nil
	}

	t, err := time.Parse(time.RFC3339, cursor)
	if err != nil {
		return time.Time{}, serrors.Wrap(serrors.ErrBadRequest, err, "invalid cursor")
	}

	return t, nil
}
