package crawler

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Doer is the minimal HTTP client capability the crawler needs. *http.Client
// satisfies it; tests substitute a stub to exercise failure paths without a
// network.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewHTTPClient builds the http.Client used for crawling. Timeouts are
// enforced per request via context, so the client itself only bounds the
// connection setup phases. Redirects are followed up to a fixed cap; a page
// behind a redirect chain counts as healthy if the chain terminates below 400.
func NewHTTPClient() *http.Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects")
			}

			return nil
		},
	}
}

// newRequest creates a request carrying the browser-like header set. Some
// origins answer 403 or serve degraded markup to clients without these
// headers.
func (c *crawler) newRequest(ctx context.Context, method, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	return req, nil
}
