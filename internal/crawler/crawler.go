// Package crawler discovers the pages of a site and checks each one for
// availability. Discovery prefers the site's sitemaps and falls back to
// extracting links from the base page when no sitemap can be found. Checking
// is paced so the target origin is never hammered.
package crawler

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"sitecheck/pkg/domain"
	"sitecheck/pkg/serrors"
)

// Crawler runs a full availability crawl against a base URL.
type Crawler interface {
	// Crawl discovers the pages of the site at baseURL and checks each one.
	// The returned report is always meaningful: when discovery fails or the
	// context is cancelled mid-crawl, the report carries Success=false and
	// whatever was checked so far, alongside the error.
	Crawl(ctx context.Context, baseURL string) (domain.CrawlReport, error)
}

type crawler struct {
	cfg      Config
	client   Doer
	limiter  *rate.Limiter
	observer Observer
}

// New creates a Crawler using the given HTTP client. Pass NewHTTPClient() for
// production use. The observer receives progress events; pass NopObserver{}
// to discard them.
func New(client Doer, observer Observer, cfg Config) Crawler {
	cfg = cfg.withDefaults()

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestDelay > 0 {
		// one token per delay interval, shared by all workers, so the origin
		// sees at most one page check per RequestDelay regardless of Workers
		limiter = rate.NewLimiter(rate.Every(cfg.RequestDelay), 1)
	}

	return &crawler{
		cfg:      cfg,
		client:   client,
		limiter:  limiter,
		observer: observer,
	}
}

func (c *crawler) Crawl(ctx context.Context, baseURL string) (domain.CrawlReport, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		report := failedReport(fmt.Sprintf("Invalid base URL: %s", baseURL))
		c.observer.Observe(ctx, Event{Kind: EventFailed, URL: baseURL, Err: report.Message})

		return report, serrors.With(serrors.ErrBadRequest, "invalid base URL: %s", baseURL)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		report := failedReport(fmt.Sprintf("Unsupported URL scheme: %s", base.Scheme))
		c.observer.Observe(ctx, Event{Kind: EventFailed, URL: baseURL, Err: report.Message})

		return report, serrors.With(serrors.ErrBadRequest, "unsupported URL scheme: %s", base.Scheme)
	}

	c.observer.Observe(ctx, Event{Kind: EventResolving, URL: baseURL})

	pages := c.resolveSitemaps(ctx, base)
	if len(pages) == 0 {
		// no sitemap anywhere; scrape the base page itself for links
		extracted, err := c.extractPageLinks(ctx, base)
		if err != nil {
			report := failedReport(fmt.Sprintf("Could not discover pages: %v", err))
			c.observer.Observe(ctx, Event{Kind: EventFailed, URL: baseURL, Err: report.Message})

			return report, fmt.Errorf("could not discover pages for %q: %w", baseURL, err)
		}
		// the base page is a candidate too, links alone would skip it
		pages = dedupe(append([]string{baseURL}, extracted...), c.cfg.Normalization)
	}

	c.observer.Observe(ctx, Event{Kind: EventChecking, URL: baseURL, Total: len(pages)})

	broken, checked, runErr := c.checkPages(ctx, pages)

	report := domain.CrawlReport{
		BrokenPages: broken,
		TotalPages:  checked,
		Success:     runErr == nil,
	}
	observeCrawl(report.Success)
	switch {
	case runErr != nil:
		report.Message = fmt.Sprintf("Crawl interrupted after %d of %d pages", checked, len(pages))
		c.observer.Observe(ctx, Event{
			Kind: EventFailed, URL: baseURL, Err: runErr.Error(),
			Checked: checked, Broken: len(broken), Total: len(pages),
		})

		return report, fmt.Errorf("crawl of %q interrupted: %w", baseURL, runErr)
	case len(broken) == 0:
		report.Message = "No broken pages found"
	default:
		report.Message = fmt.Sprintf("There are %d broken pages", len(broken))
	}

	c.observer.Observe(ctx, Event{
		Kind: EventDone, URL: baseURL,
		Checked: checked, Broken: len(broken), Total: len(pages),
	})

	return report, nil
}

// checkPages runs the paced check over all candidates. Workers==1 checks
// strictly in order; otherwise a bounded pool checks concurrently while the
// shared limiter keeps the request pacing intact. On cancellation the partial
// tallies collected so far are returned together with the context error.
func (c *crawler) checkPages(ctx context.Context, pages []string) (broken []domain.PageOutcome, checked int, err error) {
	if c.cfg.Workers <= 1 {
		for _, page := range pages {
			if err := c.limiter.Wait(ctx); err != nil {
				return broken, checked, err
			}

			outcome := c.checkPage(ctx, page)
			checked++
			if outcome.Broken() {
				broken = append(broken, outcome)
			}
			c.observer.Observe(ctx, Event{
				Kind: EventPageChecked, URL: outcome.URL, Status: outcome.Status, Err: outcome.Err,
				Checked: checked, Broken: len(broken), Total: len(pages),
			})
		}

		return broken, checked, nil
	}

	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(c.cfg.Workers)

	for _, page := range pages {
		group.Go(func() error {
			if err := c.limiter.Wait(groupCtx); err != nil {
				return err
			}

			outcome := c.checkPage(groupCtx, page)

			mu.Lock()
			checked++
			if outcome.Broken() {
				broken = append(broken, outcome)
			}
			ev := Event{
				Kind: EventPageChecked, URL: outcome.URL, Status: outcome.Status, Err: outcome.Err,
				Checked: checked, Broken: len(broken), Total: len(pages),
			}
			mu.Unlock()
			c.observer.Observe(groupCtx, ev)

			return nil
		})
	}

	// the only worker error is a cancelled limiter wait
	err = group.Wait()

	return broken, checked, err
}

func failedReport(message string) domain.CrawlReport {
	observeCrawl(false)

	return domain.CrawlReport{Success: false, Message: message}
}
