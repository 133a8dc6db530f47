package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// linkAttrs maps HTML elements to the attribute carrying their target. The
// broader set (images, scripts, stylesheets) catches broken asset references
// that anchor-only extraction would miss.
var linkAttrs = map[string]string{
	"a":      "href",
	"link":   "href",
	"img":    "src",
	"script": "src",
}

// extractPageLinks fetches base and returns the same-host targets referenced
// by the page. This is the discovery fallback for sites without a sitemap; a
// failure here is fatal to the crawl because no candidate set can be
// established at all.
func (c *crawler) extractPageLinks(ctx context.Context, base *url.URL) ([]string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := c.newRequest(reqCtx, http.MethodGet, base.String())
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not fetch base page: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("base page returned status %d", resp.StatusCode)
	}

	// Redirects may have moved us; resolve relative links against the final URL.
	finalURL := base
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL
	}

	return collectLinks(resp.Body, finalURL, base.Hostname()), nil
}

// collectLinks tokenizes HTML and gathers absolute same-host link targets.
// All values are resolved against one base, so an exact-match set is enough
// for deduplication.
func collectLinks(body io.Reader, base *url.URL, host string) []string {
	tokenizer := html.NewTokenizer(body)
	seen := make(map[string]struct{})
	var links []string

	for {
		tokenType := tokenizer.Next()
		if tokenType == html.ErrorToken {
			// end of document, or a parse error mid-stream; either way keep
			// what was collected so far
			return links
		}
		if tokenType != html.StartTagToken && tokenType != html.SelfClosingTagToken {
			continue
		}

		token := tokenizer.Token()
		attrKey, ok := linkAttrs[token.Data]
		if !ok {
			continue
		}

		for _, attr := range token.Attr {
			if attr.Key != attrKey || attr.Val == "" {
				continue
			}

			target, err := url.Parse(strings.TrimSpace(attr.Val))
			if err != nil {
				continue
			}
			resolved := base.ResolveReference(target)
			if resolved.Scheme != "http" && resolved.Scheme != "https" {
				continue
			}
			// same-domain scope only; cross-domain links are never checked
			if !strings.EqualFold(resolved.Hostname(), host) {
				continue
			}
			resolved.Fragment = ""

			s := resolved.String()
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			links = append(links, s)
		}
	}
}
