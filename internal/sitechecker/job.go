package sitechecker

import (
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"

	"sitecheck/pkg/domain"
)

// JobArgs contains the arguments for a crawl job submitted to River.
// SiteID is the unique key so that each site has at most one queued crawl.
type JobArgs struct {
	// SiteID identifies the site to crawl. Marked unique so River enforces one
	// job per site according to InsertOpts.UniqueOpts.
	SiteID domain.SiteID `json:"siteId" river:"unique"`
	// URL is the site's base URL, carried in the payload so the worker does
	// not need a lookup before starting discovery.
	URL string `json:"url"`

	// maxAttempts configures the maximum number of times River should retry the job.
	maxAttempts int
	// uniqueJobPeriod defines the lookback window during which a job with the
	// same site is considered a duplicate across the specified states.
	uniqueJobPeriod time.Duration
}

// Kind returns the River job kind used to register and dispatch the crawl worker.
func (args JobArgs) Kind() string { return "CrawlSiteJob" }

// InsertOpts returns the River options that control how the job is enqueued,
// including the maximum retry attempts and uniqueness constraints that prevent
// piling up duplicate crawls for the same site.
func (args JobArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		MaxAttempts: args.maxAttempts,
		// make sure we only have one job per site in any active state
		UniqueOpts: river.UniqueOpts{
			ByArgs:   true,
			ByPeriod: args.uniqueJobPeriod,
			ByState: []rivertype.JobState{
				rivertype.JobStateAvailable,
				rivertype.JobStateCompleted,
				rivertype.JobStatePending,
				rivertype.JobStateRunning,
				rivertype.JobStateRetryable,
				rivertype.JobStateScheduled,
			},
		},
	}
}
