package crawler

import (
	"time"

	"sitecheck/internal/config"
)

// NormalizationMode selects how aggressively URL paths are folded when
// building deduplication keys.
type NormalizationMode string

const (
	// NormalizationExact preserves the path byte-for-byte. This is the
	// default: folding the path would merge locale-bearing paths such as
	// /en/pricing and /EN/pricing on case-sensitive origins.
	NormalizationExact NormalizationMode = "exact"
	// NormalizationFold additionally lowercases the path and strips the
	// trailing slash. Opt-in for sites known to serve paths
	// case-insensitively; may incorrectly collide case-sensitive paths.
	NormalizationFold NormalizationMode = "fold"
)

// Config controls a single crawl invocation.
type Config struct {
	// Timeout bounds each individual page fetch.
	Timeout time.Duration
	// RequestDelay is the fixed pacing delay applied between page checks.
	RequestDelay time.Duration
	// LocaleFilter restricts sitemap results to the base URL's locale
	// segment when one is present (e.g. /en/).
	LocaleFilter bool
	// Normalization selects the path folding policy used for deduplication.
	Normalization NormalizationMode
	// MaxSitemapDepth caps sitemap-index recursion to guard against
	// pathological input.
	MaxSitemapDepth int
	// Workers is the number of concurrent page checkers. 1 means strictly
	// sequential checking; higher values share the single pacing limiter so
	// the target origin still sees at most one request per RequestDelay.
	Workers int
	// HeadPrecheck issues a HEAD request before the GET and skips the GET
	// when the HEAD already proves the page healthy.
	HeadPrecheck bool
	// UserAgent is sent with every request.
	UserAgent string
}

// NewConfig constructs a crawl Config from the application configuration.
func NewConfig(cfg *config.Config) Config {
	return Config{
		Timeout:         cfg.Crawler.Timeout,
		RequestDelay:    cfg.Crawler.RequestDelay,
		LocaleFilter:    cfg.Crawler.LocaleFilter,
		Normalization:   NormalizationMode(cfg.Crawler.Normalization),
		MaxSitemapDepth: cfg.Crawler.MaxSitemapDepth,
		Workers:         cfg.Crawler.Workers,
		HeadPrecheck:    cfg.Crawler.HeadPrecheck,
		UserAgent:       cfg.Crawler.UserAgent,
	}
}

// withDefaults fills in zero values so a partially populated Config is usable.
func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.RequestDelay < 0 {
		c.RequestDelay = 0
	}
	if c.Normalization == "" {
		c.Normalization = NormalizationExact
	}
	if c.MaxSitemapDepth <= 0 {
		c.MaxSitemapDepth = 5
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}

	return c
}

// defaultUserAgent mimics a desktop browser; some origins reject requests
// without a realistic identification header set.
const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
