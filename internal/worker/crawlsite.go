package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/riverqueue/river"
	"go.uber.org/zap"

	"sitecheck/internal/crawler"
	"sitecheck/internal/sitechecker"
	"sitecheck/pkg/domain"
	"sitecheck/pkg/logger"
	"sitecheck/pkg/serrors"
)

// CrawlStore is the slice of the storage layer the crawl worker needs: a site
// lookup before the crawl and a result insert after it.
type CrawlStore interface {
	SiteByID(ctx context.Context, ID domain.SiteID) (*domain.Site, error)
	StoreScanRecord(ctx context.Context, record domain.ScanRecord) (*domain.ScanRecord, error)
}

// CrawlSiteWorker is a River worker that runs a full availability crawl for
// one registered site and persists the resulting report.
//
// The crawl outcome and the job outcome are deliberately separate: a crawl
// that completed and found broken pages is a successful job, and even a crawl
// that failed mid-way leaves a failed ScanRecord behind so the history shows
// the attempt. Only infrastructure errors (storage failures, crawl
// interruptions worth retrying) are surfaced to River.
type CrawlSiteWorker struct {
	river.WorkerDefaults[sitechecker.JobArgs]

	// crawler discovers and checks the site's pages.
	crawler crawler.Crawler
	// store loads the site and persists the crawl result.
	store CrawlStore
}

// NewCrawlSiteWorker constructs a CrawlSiteWorker using the provided crawler
// and storage.
func NewCrawlSiteWorker(c crawler.Crawler, store CrawlStore) *CrawlSiteWorker {
	return &CrawlSiteWorker{
		crawler: c,
		store:   store,
	}
}

// Work executes a single crawl job. The site is re-read from storage so a
// deletion between enqueue and execution cancels the job instead of crawling
// a site nobody is watching.
func (w *CrawlSiteWorker) Work(ctx context.Context, job *river.Job[sitechecker.JobArgs]) error {
	ctx = logger.WithFields(ctx,
		zap.Int64("jobID", job.ID),
		zap.String("siteID", job.Args.SiteID.String()),
		zap.String("url", job.Args.URL))

	site, err := w.store.SiteByID(ctx, job.Args.SiteID)
	if err != nil {
		logger.Error(ctx, "error loading site for crawl", zap.Error(err))

		return fmt.Errorf("could not load site: %w", err)
	}
	if site == nil {
		logger.Info(ctx, "site deleted before crawl, cancelling job")

		return river.JobCancel(serrors.With(serrors.ErrNotFound, "site not found")) //nolint: wrapcheck
	}

	report, crawlErr := w.crawler.Crawl(ctx, site.URL)

	// the report is stored even when the crawl failed; a failed record is
	// still history worth keeping
	if _, err := w.store.StoreScanRecord(ctx, domain.ScanRecord{
		SiteID:      site.ID,
		BrokenPages: report.BrokenPages,
		TotalPages:  report.TotalPages,
		Success:     report.Success,
		Message:     report.Message,
	}); err != nil {
		logger.Error(ctx, "error storing crawl result", zap.Error(err))

		return fmt.Errorf("could not store crawl result: %w", err)
	}

	if crawlErr != nil {
		logger.Error(ctx, "error crawling site", zap.Error(crawlErr))

		// an invalid base URL cannot be fixed by retrying
		if errors.Is(crawlErr, serrors.ErrBadRequest) {
			return river.JobCancel(crawlErr) //nolint: wrapcheck
		}

		return fmt.Errorf("could not crawl site: %w", crawlErr)
	}

	logger.Info(ctx, "site crawled",
		zap.Int("totalPages", report.TotalPages),
		zap.Int("brokenPages", len(report.BrokenPages)))

	return nil
}
