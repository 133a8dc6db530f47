package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"sitecheck/pkg/domain"
	"sitecheck/pkg/storage"
)

const (
	scanResultsTable = "scan_results"
)

func (p *PgSQL) StoreScanRecord(ctx context.Context, record domain.ScanRecord) (*domain.ScanRecord, error) {
	var row PgScanRecord
	if err := row.FromDomain(record); err != nil {
		return nil, err
	}

	var result PgScanRecord
	found, err := p.Builder.Insert(scanResultsTable).
		Rows(row).
		Returning(&PgScanRecord{}).
		Executor().ScanStructContext(ctx, &result)
	if err != nil {
		return nil, fmt.Errorf("could not store scan record into pg: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("insert returned no row")
	}

	return result.ToDomain()
}

// ScanRecordsBySite returns a page of crawl results for a site filtered by
// optional cursor and limited by limit. Results are ordered by created_at
// DESC, id DESC.
func (p *PgSQL) ScanRecordsBySite(ctx context.Context,
	siteID domain.SiteID,
	cursor time.Time,
	limit uint) (storage.ScanRecordPage, error) {
	w := []goqu.Expression{
		goqu.I("site_id").Eq(uuid.UUID(siteID)),
	}
	if !cursor.IsZero() {
		w = append(w, goqu.I("created_at").Lt(cursor))
	}

	// fetch one extra to determine if there is a next page
	fetch := limit + 1
	ds := p.Builder.From(scanResultsTable).
		Where(w...).
		Order(goqu.I("created_at").Desc(), goqu.I("id").Desc()).
		Limit(fetch)

	var rows []PgScanRecord
	if err := ds.Executor().ScanStructsContext(ctx, &rows); err != nil {
		return storage.ScanRecordPage{}, fmt.Errorf("could not fetch scan records from pg: %w", err)
	}

	var nextCursor *time.Time
	if uint(len(rows)) > limit {
		trimmed := rows[:limit]
		nextCursor = &trimmed[len(trimmed)-1].CreatedAt
		rows = trimmed
	}

	records, err := pgScanRecordsToDomain(rows)
	if err != nil {
		return storage.ScanRecordPage{}, err
	}

	return storage.ScanRecordPage{
		Records:    records,
		NextCursor: nextCursor,
	}, nil
}

// LatestScanRecord returns the most recent crawl result for the given site, or
// nil when none exists.
func (p *PgSQL) LatestScanRecord(ctx context.Context, siteID domain.SiteID) (*domain.ScanRecord, error) {
	var row PgScanRecord
	found, err := p.Builder.From(scanResultsTable).
		Where(goqu.I("site_id").Eq(uuid.UUID(siteID))).
		Order(goqu.I("created_at").Desc(), goqu.I("id").Desc()).
		Limit(1).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch latest scan record: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain()
}

// DeleteScanRecordsBefore removes crawl results older than the cutoff. Results
// are immutable history, so this is a hard delete driven by retention policy.
func (p *PgSQL) DeleteScanRecordsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := p.Builder.From(scanResultsTable).
		Where(goqu.I("created_at").Lt(cutoff)).
		Delete().
		Executor().ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("could not delete old scan records in pg: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("could not read affected rows: %w", err)
	}

	return n, nil
}
