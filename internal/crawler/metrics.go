package crawler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"sitecheck/pkg/metrics"
)

//nolint: gochecknoglobals
var (
	crawlsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sitecheck",
		Subsystem: "crawler",
		Name:      "crawls_total",
		Help:      "Completed crawl invocations by result.",
	}, []string{"result"})

	pagesCheckedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sitecheck",
		Subsystem: "crawler",
		Name:      "pages_checked_total",
		Help:      "Checked pages by outcome.",
	}, []string{"outcome"})

	checkDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sitecheck",
		Subsystem: "crawler",
		Name:      "page_check_duration_seconds",
		Help:      "Duration of individual page checks.",
		Buckets:   metrics.DefaultBuckets,
	})
)

func observeCrawl(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	crawlsTotal.WithLabelValues(result).Inc()
}

func observePageCheck(outcome string, seconds float64) {
	pagesCheckedTotal.WithLabelValues(outcome).Inc()
	checkDuration.Observe(seconds)
}
