package crawler

import (
	"context"
	"encoding/xml"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"sitecheck/pkg/logger"
)

// maxSitemapBytes caps how much of a sitemap document is read. Sitemaps above
// the protocol's 50MB limit are cut off rather than buffered whole.
const maxSitemapBytes = 50 << 20

// xmlLoc is a single <url> or <sitemap> entry; both shapes carry their target
// in a <loc> child.
type xmlLoc struct {
	Loc string `xml:"loc"`
}

// xmlURLSet is the root element of a standard sitemap file.
type xmlURLSet struct {
	XMLName xml.Name `xml:"urlset"`
	URLs    []xmlLoc `xml:"url"`
}

// xmlSitemapIndex is the root element of a sitemap index file.
type xmlSitemapIndex struct {
	XMLName  xml.Name `xml:"sitemapindex"`
	Sitemaps []xmlLoc `xml:"sitemap"`
}

// localePattern matches path segments that encode a locale: "en", "fr",
// "pt-br", "zh-CN".
var localePattern = regexp.MustCompile(`(?i)^[a-z]{2}(-[a-z]{2})?$`)

// localeFromPath returns the first non-empty path segment when it looks like
// a locale code, or "" otherwise.
func localeFromPath(path string) string {
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		if localePattern.MatchString(seg) {
			return seg
		}

		return ""
	}

	return ""
}

// isSitemapLocation reports whether the URL path already names a sitemap
// document.
func isSitemapLocation(path string) bool {
	return strings.HasSuffix(path, "sitemap.xml") || strings.HasSuffix(path, "sitemap_index.xml")
}

// sitemapLocations returns the ordered list of sitemap URLs to probe for the
// given base. When the base itself points at a sitemap it is the sole
// candidate.
func sitemapLocations(base *url.URL) []string {
	if isSitemapLocation(base.Path) {
		return []string{base.String()}
	}

	root := *base
	if !strings.HasSuffix(root.Path, "/") {
		root.Path += "/"
	}
	root.RawQuery = ""
	root.Fragment = ""

	origin := url.URL{Scheme: base.Scheme, Host: base.Host}

	locations := []string{
		root.String() + "sitemap.xml",
		root.String() + "sitemap_index.xml",
		origin.String() + "/sitemap.xml",
	}

	// base at the origin root makes the first and third probe identical
	return dedupe(locations, NormalizationExact)
}

// resolveSitemaps discovers candidate URLs for base through sitemap probing.
// Every probe is best-effort: fetch errors, non-2xx responses and malformed
// documents skip that location without failing the resolution. The returned
// list is filtered by the base URL's locale segment (when present and
// enabled) and deduplicated. An empty result means the caller should fall
// back to link extraction.
func (c *crawler) resolveSitemaps(ctx context.Context, base *url.URL) []string {
	var found []string
	for _, loc := range sitemapLocations(base) {
		found = append(found, c.fetchSitemap(ctx, loc, 0)...)
	}

	if c.cfg.LocaleFilter {
		if locale := localeFromPath(base.Path); locale != "" {
			found = filterByLocale(found, locale)
		}
	}

	return dedupe(found, c.cfg.Normalization)
}

// fetchSitemap fetches and parses one sitemap document, recursing into
// sitemap indexes up to the configured depth.
func (c *crawler) fetchSitemap(ctx context.Context, loc string, depth int) []string {
	if depth > c.cfg.MaxSitemapDepth {
		logger.Warn(ctx, "sitemap recursion depth exceeded", zap.String("location", loc))

		return nil
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := c.newRequest(reqCtx, http.MethodGet, loc)
	if err != nil {
		return nil
	}

	resp, err := c.client.Do(req)
	if err != nil {
		logger.Debug(ctx, "sitemap probe failed", zap.String("location", loc), zap.Error(err))

		return nil
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Debug(ctx, "sitemap probe skipped",
			zap.String("location", loc),
			zap.Int("status", resp.StatusCode))

		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSitemapBytes))
	if err != nil {
		return nil
	}

	// A sitemap index lists nested sitemaps; follow each one.
	var index xmlSitemapIndex
	if err := xml.Unmarshal(body, &index); err == nil && len(index.Sitemaps) > 0 {
		var urls []string
		for _, sm := range index.Sitemaps {
			child := strings.TrimSpace(sm.Loc)
			if child == "" {
				continue
			}
			urls = append(urls, c.fetchSitemap(ctx, child, depth+1)...)
		}

		return urls
	}

	var urlset xmlURLSet
	if err := xml.Unmarshal(body, &urlset); err != nil {
		logger.Debug(ctx, "malformed sitemap", zap.String("location", loc), zap.Error(err))

		return nil
	}

	urls := make([]string, 0, len(urlset.URLs))
	for _, u := range urlset.URLs {
		if loc := strings.TrimSpace(u.Loc); loc != "" {
			urls = append(urls, loc)
		}
	}

	return urls
}

// filterByLocale keeps only URLs whose first path segment equals locale.
// Crawling one locale of a multi-locale site must not be flooded by
// sibling-locale URLs discovered through a shared sitemap.
func filterByLocale(urls []string, locale string) []string {
	out := make([]string, 0, len(urls))
	for _, raw := range urls {
		u, err := url.Parse(raw)
		if err != nil {
			continue
		}
		segs := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)
		if len(segs) > 0 && segs[0] == locale {
			out = append(out, raw)
		}
	}

	return out
}
