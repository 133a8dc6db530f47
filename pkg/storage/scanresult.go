package storage

import (
	"context"
	"time"

	"sitecheck/pkg/domain"
)

// ScanRecordPage groups a page of scan records together with an optional
// NextCursor used for pagination.
type ScanRecordPage struct {
	// Records contains the current page of scan records.
	Records []domain.ScanRecord
	// NextCursor points to the timestamp to be used as the cursor for fetching
	// the next page. It is nil when there is no next page.
	NextCursor *time.Time
}

// ScanResultStorage defines persistence operations for completed crawl
// results.
type ScanResultStorage interface {
	// StoreScanRecord inserts one crawl result and returns the stored row
	// including generated fields.
	StoreScanRecord(ctx context.Context, record domain.ScanRecord) (*domain.ScanRecord, error)
	// ScanRecordsBySite returns a page of results for the given site created
	// before the optional cursor time, ordered newest first.
	ScanRecordsBySite(ctx context.Context,
		siteID domain.SiteID,
		cursor time.Time,
		limit uint) (ScanRecordPage, error)
	// LatestScanRecord returns the most recent result for the given site, or
	// nil when the site has never been crawled.
	LatestScanRecord(ctx context.Context, siteID domain.SiteID) (*domain.ScanRecord, error)
	// DeleteScanRecordsBefore removes results created before the cutoff and
	// returns the number of deleted rows. Used for retention cleanup.
	DeleteScanRecordsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
