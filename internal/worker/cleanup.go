package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/riverqueue/river"
	"go.uber.org/zap"

	"sitecheck/pkg/logger"
)

// CleanupArgs is the payload of the periodic scan record cleanup job. It
// carries no data; the retention window comes from configuration.
type CleanupArgs struct{}

func (CleanupArgs) Kind() string { return "CleanupScanRecordsJob" }

func (CleanupArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		UniqueOpts: river.UniqueOpts{
			ByArgs:   true,
			ByPeriod: time.Hour,
		},
	}
}

// CleanupStore is the slice of the storage layer the cleanup worker needs.
type CleanupStore interface {
	DeleteScanRecordsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// CleanupWorker deletes stored crawl results older than the retention window.
// Results of deleted sites age out the same way, so history does not grow
// without bound.
type CleanupWorker struct {
	river.WorkerDefaults[CleanupArgs]

	store     CleanupStore
	retention time.Duration
}

// NewCleanupWorker constructs a CleanupWorker with the given retention window.
func NewCleanupWorker(store CleanupStore, retention time.Duration) *CleanupWorker {
	return &CleanupWorker{
		store:     store,
		retention: retention,
	}
}

// Work deletes every scan record older than the retention window. A
// non-positive retention disables cleanup entirely.
func (w *CleanupWorker) Work(ctx context.Context, job *river.Job[CleanupArgs]) error {
	if w.retention <= 0 {
		return nil
	}

	cutoff := time.Now().Add(-w.retention)

	deleted, err := w.store.DeleteScanRecordsBefore(ctx, cutoff)
	if err != nil {
		logger.Error(ctx, "error cleaning up old scan records", zap.Error(err))

		return fmt.Errorf("could not delete old scan records: %w", err)
	}

	if deleted > 0 {
		logger.Info(ctx, "cleaned up old scan records",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff))
	}

	return nil
}
