package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"sitecheck/pkg/domain"
)

func storeTestSite(t *testing.T, pg interface {
	StoreSites(ctx context.Context, sites ...domain.Site) ([]domain.Site, error)
}, url string) domain.Site {
	t.Helper()

	stored, err := pg.StoreSites(context.Background(), domain.Site{URL: url, Name: "test"})
	require.NoError(t, err)
	require.Len(t, stored, 1)

	return stored[0]
}

func TestPgSQL_StoreScanRecord(t *testing.T) {
	t.Parallel()

	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	site := storeTestSite(t, pgSQL, "https://records.example/")

	record := domain.ScanRecord{
		SiteID: site.ID,
		BrokenPages: []domain.PageOutcome{
			{URL: "https://records.example/missing", Status: 404},
			{URL: "https://records.example/slow", Err: "timed out"},
		},
		TotalPages: 12,
		Success:    true,
		Message:    "There are 2 broken pages",
	}

	stored, err := pgSQL.StoreScanRecord(ctx, record)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, site.ID, stored.SiteID)
	require.Equal(t, 12, stored.TotalPages)
	require.True(t, stored.Success)
	require.Len(t, stored.BrokenPages, 2)
	require.Equal(t, 404, stored.BrokenPages[0].Status)
	require.Equal(t, "timed out", stored.BrokenPages[1].Err)
	require.False(t, stored.CreatedAt.IsZero())
}

func TestPgSQL_StoreScanRecord_NoBrokenPages(t *testing.T) {
	t.Parallel()

	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	site := storeTestSite(t, pgSQL, "https://healthy.example/")

	stored, err := pgSQL.StoreScanRecord(ctx, domain.ScanRecord{
		SiteID:     site.ID,
		TotalPages: 3,
		Success:    true,
		Message:    "No broken pages found",
	})
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Empty(t, stored.BrokenPages)
	require.NotNil(t, stored.BrokenPages)
}

func TestPgSQL_LatestScanRecord(t *testing.T) {
	t.Parallel()

	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	site := storeTestSite(t, pgSQL, "https://latest.example/")

	// no records yet
	got, err := pgSQL.LatestScanRecord(ctx, site.ID)
	require.NoError(t, err)
	require.Nil(t, got)

	for i, msg := range []string{"first", "second", "third"} {
		stored, err := pgSQL.StoreScanRecord(ctx, domain.ScanRecord{
			SiteID:     site.ID,
			TotalPages: i,
			Success:    true,
			Message:    msg,
		})
		require.NoError(t, err)

		created := time.Now().UTC().Add(time.Duration(i) * time.Minute)
		_, err = pgSQL.DB.ExecContext(ctx,
			"UPDATE scan_results SET created_at = $1 WHERE id = $2", created, uuid.UUID(stored.ID))
		require.NoError(t, err)
	}

	got, err = pgSQL.LatestScanRecord(ctx, site.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "third", got.Message)
}

func TestPgSQL_ScanRecordsBySite_Pagination(t *testing.T) {
	t.Parallel()

	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	site := storeTestSite(t, pgSQL, "https://history.example/")
	other := storeTestSite(t, pgSQL, "https://other.example/")

	now := time.Now().UTC()
	for i := range 5 {
		stored, err := pgSQL.StoreScanRecord(ctx, domain.ScanRecord{
			SiteID:     site.ID,
			TotalPages: i,
			Success:    true,
			Message:    "ok",
		})
		require.NoError(t, err)

		created := now.Add(-time.Duration(4-i) * time.Minute)
		_, err = pgSQL.DB.ExecContext(ctx,
			"UPDATE scan_results SET created_at = $1 WHERE id = $2", created, uuid.UUID(stored.ID))
		require.NoError(t, err)
	}
	// a record for another site must not leak into the page
	_, err := pgSQL.StoreScanRecord(ctx, domain.ScanRecord{
		SiteID:     other.ID,
		TotalPages: 99,
		Success:    true,
		Message:    "other",
	})
	require.NoError(t, err)

	p1, err := pgSQL.ScanRecordsBySite(ctx, site.ID, time.Time{}, 3)
	require.NoError(t, err)
	require.Len(t, p1.Records, 3)
	require.NotNil(t, p1.NextCursor)
	for _, rec := range p1.Records {
		require.Equal(t, site.ID, rec.SiteID)
	}

	p2, err := pgSQL.ScanRecordsBySite(ctx, site.ID, *p1.NextCursor, 3)
	require.NoError(t, err)
	require.Len(t, p2.Records, 2)
	require.Nil(t, p2.NextCursor)
}

func TestPgSQL_DeleteScanRecordsBefore(t *testing.T) {
	t.Parallel()

	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	site := storeTestSite(t, pgSQL, "https://retention.example/")

	now := time.Now().UTC()
	ages := []time.Duration{-48 * time.Hour, -36 * time.Hour, -1 * time.Hour}
	for _, age := range ages {
		stored, err := pgSQL.StoreScanRecord(ctx, domain.ScanRecord{
			SiteID:  site.ID,
			Success: true,
			Message: "ok",
		})
		require.NoError(t, err)
		_, err = pgSQL.DB.ExecContext(ctx,
			"UPDATE scan_results SET created_at = $1 WHERE id = $2", now.Add(age), uuid.UUID(stored.ID))
		require.NoError(t, err)
	}

	deleted, err := pgSQL.DeleteScanRecordsBefore(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 2, deleted)

	page, err := pgSQL.ScanRecordsBySite(ctx, site.ID, time.Time{}, 10)
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
}
