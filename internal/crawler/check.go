package crawler

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"sitecheck/pkg/domain"
)

// checkPage fetches one candidate URL and classifies the outcome. Any
// response below 400 counts as healthy, redirects included; the client
// follows them and classifies the final hop. Transport failures and timeouts
// are broken outcomes, never errors: a page that cannot be fetched is exactly
// what the crawl exists to find.
func (c *crawler) checkPage(ctx context.Context, pageURL string) domain.PageOutcome {
	start := time.Now()
	outcome := c.doCheckPage(ctx, pageURL)

	label := "healthy"
	switch {
	case outcome.Err != "":
		label = "broken_transport"
	case outcome.Status >= 400:
		label = "broken_status"
	}
	observePageCheck(label, time.Since(start).Seconds())

	return outcome
}

func (c *crawler) doCheckPage(ctx context.Context, pageURL string) domain.PageOutcome {
	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	if c.cfg.HeadPrecheck {
		if outcome, ok := c.headPrecheck(reqCtx, pageURL); ok {
			return outcome
		}
		// HEAD rejected or inconclusive; upgrade to GET. Some servers only
		// implement GET correctly.
	}

	req, err := c.newRequest(reqCtx, http.MethodGet, pageURL)
	if err != nil {
		return domain.PageOutcome{URL: pageURL, Err: err.Error()}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.PageOutcome{URL: pageURL, Err: classifyFetchError(err)}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
		_ = resp.Body.Close()
	}()

	return domain.PageOutcome{URL: pageURL, Status: resp.StatusCode}
}

// headPrecheck issues a HEAD request. The second return value is false when
// the result is not trustworthy and the caller must fall back to GET: HEAD
// errors, method rejections and any status of 400 or above fall through, since
// plenty of servers answer HEAD with errors they would not return for GET.
func (c *crawler) headPrecheck(ctx context.Context, pageURL string) (domain.PageOutcome, bool) {
	req, err := c.newRequest(ctx, http.MethodHead, pageURL)
	if err != nil {
		return domain.PageOutcome{}, false
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.PageOutcome{}, false
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		return domain.PageOutcome{URL: pageURL, Status: resp.StatusCode}, true
	}

	return domain.PageOutcome{}, false
}

// classifyFetchError maps a transport failure to the broken-page message.
// Timeouts get a stable message so callers and humans can tell budget
// exhaustion apart from origin-side failures like DNS or connection resets.
func classifyFetchError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timed out"
	}

	// url.Error repeats the method and URL already recorded in the outcome
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err.Error()
	}

	return err.Error()
}
