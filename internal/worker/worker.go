package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"go.uber.org/zap/exp/zapslog"

	"sitecheck/internal/config"
	"sitecheck/internal/crawler"
	"sitecheck/pkg/logger"
)

// Store combines the storage slices required by the background workers.
type Store interface {
	CrawlStore
	CleanupStore
}

// cleanupInterval is how often the scan record cleanup job runs.
const cleanupInterval = 24 * time.Hour

// Start registers the background workers and starts the River client. The
// queue's MaxWorkers bounds how many sites are crawled concurrently; each
// crawl still paces its own page requests internally.
func Start(ctx context.Context,
	cfg *config.Config,
	dbPool *pgxpool.Pool,
	c crawler.Crawler,
	store Store) (*river.Client[pgx.Tx], error) {
	workers := river.NewWorkers()
	river.AddWorker(workers, NewCrawlSiteWorker(c, store))
	river.AddWorker(workers, NewCleanupWorker(store, cfg.SiteChecker.ResultRetention))

	maxWorkers := cfg.SiteChecker.MaxConcurrentCrawls
	if maxWorkers <= 0 {
		maxWorkers = 1
	}

	riverClient, err := river.NewClient(riverpgxv5.New(dbPool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: maxWorkers},
		},
		Workers: workers,
		PeriodicJobs: []*river.PeriodicJob{
			river.NewPeriodicJob(
				river.PeriodicInterval(cleanupInterval),
				func() (river.JobArgs, *river.InsertOpts) {
					return CleanupArgs{}, nil
				},
				&river.PeriodicJobOpts{RunOnStart: true},
			),
		},
		Logger: slog.New(zapslog.NewHandler(logger.Get(ctx).Core())),
	})
	if err != nil {
		return nil, fmt.Errorf("could not create river queue client: %w", err)
	}

	if err := riverClient.Start(ctx); err != nil {
		return nil, fmt.Errorf("could not start river queue client: %w", err)
	}

	return riverClient, nil
}
