package sitechecker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"github.com/stretchr/testify/require"

	"sitecheck/internal/sitechecker"
	"sitecheck/pkg/domain"
	"sitecheck/pkg/serrors"
	"sitecheck/pkg/storage"
)

// fakeStorage implements storage.Storage with overridable behavior per test.
// WithTx runs the callback against the fake itself, mirroring how the real
// implementation hands out a transactional view of the same data.
type fakeStorage struct {
	storeSites        func(ctx context.Context, sites ...domain.Site) ([]domain.Site, error)
	siteByID          func(ctx context.Context, ID domain.SiteID) (*domain.Site, error)
	siteByURL         func(ctx context.Context, URL string) (*domain.Site, error)
	sites             func(ctx context.Context, cursor time.Time, limit uint) (storage.SitePage, error)
	deleteSite        func(ctx context.Context, ID domain.SiteID) (*domain.Site, error)
	storeScanRecord   func(ctx context.Context, record domain.ScanRecord) (*domain.ScanRecord, error)
	scanRecordsBySite func(ctx context.Context,
		siteID domain.SiteID, cursor time.Time, limit uint) (storage.ScanRecordPage, error)
	latestScanRecord func(ctx context.Context, siteID domain.SiteID) (*domain.ScanRecord, error)
	addJob           func(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (bool, error)
}

func (f *fakeStorage) StoreSites(ctx context.Context, sites ...domain.Site) ([]domain.Site, error) {
	return f.storeSites(ctx, sites...)
}

func (f *fakeStorage) SiteByID(ctx context.Context, id domain.SiteID) (*domain.Site, error) {
	return f.siteByID(ctx, id)
}

func (f *fakeStorage) SiteByURL(ctx context.Context, url string) (*domain.Site, error) {
	return f.siteByURL(ctx, url)
}

func (f *fakeStorage) Sites(ctx context.Context, cursor time.Time, limit uint) (storage.SitePage, error) {
	return f.sites(ctx, cursor, limit)
}

func (f *fakeStorage) DeleteSite(ctx context.Context, id domain.SiteID) (*domain.Site, error) {
	return f.deleteSite(ctx, id)
}

func (f *fakeStorage) StoreScanRecord(ctx context.Context, record domain.ScanRecord) (*domain.ScanRecord, error) {
	return f.storeScanRecord(ctx, record)
}

func (f *fakeStorage) ScanRecordsBySite(ctx context.Context,
	siteID domain.SiteID,
	cursor time.Time,
	limit uint) (storage.ScanRecordPage, error) {
	return f.scanRecordsBySite(ctx, siteID, cursor, limit)
}

func (f *fakeStorage) LatestScanRecord(ctx context.Context, siteID domain.SiteID) (*domain.ScanRecord, error) {
	return f.latestScanRecord(ctx, siteID)
}

func (f *fakeStorage) AddJob(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (bool, error) {
	return f.addJob(ctx, args, opts)
}

func (f *fakeStorage) DeleteScanRecordsBefore(context.Context, time.Time) (int64, error) {
	return 0, errors.New("not supported in fake")
}

func (f *fakeStorage) Close() error { return nil }

func (f *fakeStorage) Begin(context.Context) (storage.TxStorage, error) {
	return nil, errors.New("not supported in fake")
}

func (f *fakeStorage) WithTx(ctx context.Context, cb func(storage.AllStorage) error) error {
	return cb(f)
}

func newChecker(st *fakeStorage) sitechecker.SiteChecker {
	return sitechecker.New(st, sitechecker.Options{
		MaxAttempts:     3,
		UniqueJobPeriod: time.Hour,
	})
}

func TestSiteChecker_Register(t *testing.T) {
	var storedURL string
	st := &fakeStorage{
		siteByURL: func(_ context.Context, _ string) (*domain.Site, error) {
			return nil, nil
		},
		storeSites: func(_ context.Context, sites ...domain.Site) ([]domain.Site, error) {
			require.Len(t, sites, 1)
			storedURL = sites[0].URL
			sites[0].ID = domain.SiteID(uuid.New())

			return sites, nil
		},
	}

	site, err := newChecker(st).Register(context.Background(), "HTTPS://Example.COM:443/blog?b=2&a=1#top", "Blog")
	require.NoError(t, err)
	require.NotNil(t, site)
	// scheme and host lowercased, default port dropped, query sorted, fragment removed
	require.Equal(t, "https://example.com/blog?a=1&b=2", storedURL)
	require.Equal(t, "Blog", site.Name)
}

func TestSiteChecker_Register_InvalidURL(t *testing.T) {
	st := &fakeStorage{}

	for _, in := range []string{"not a url", "ftp://example.com/", ""} {
		_, err := newChecker(st).Register(context.Background(), in, "bad")
		require.Error(t, err, in)
		require.ErrorIs(t, err, serrors.ErrBadRequest, in)
	}
}

func TestSiteChecker_Register_Duplicate(t *testing.T) {
	existing := domain.Site{ID: domain.SiteID(uuid.New()), URL: "https://example.com/"}
	st := &fakeStorage{
		siteByURL: func(_ context.Context, url string) (*domain.Site, error) {
			require.Equal(t, "https://example.com/", url)

			return &existing, nil
		},
	}

	_, err := newChecker(st).Register(context.Background(), "https://example.com/", "dupe")
	require.Error(t, err)
	require.ErrorIs(t, err, serrors.ErrConflict)
}

func TestSiteChecker_Scan(t *testing.T) {
	siteID := domain.SiteID(uuid.New())
	site := domain.Site{ID: siteID, URL: "https://example.com/"}

	var gotArgs river.JobArgs
	st := &fakeStorage{
		siteByID: func(_ context.Context, id domain.SiteID) (*domain.Site, error) {
			require.Equal(t, siteID, id)

			return &site, nil
		},
		addJob: func(_ context.Context, args river.JobArgs, _ *river.InsertOpts) (bool, error) {
			gotArgs = args

			return true, nil
		},
	}

	added, err := newChecker(st).Scan(context.Background(), siteID)
	require.NoError(t, err)
	require.True(t, added)

	jobArgs, ok := gotArgs.(sitechecker.JobArgs)
	require.True(t, ok)
	require.Equal(t, siteID, jobArgs.SiteID)
	require.Equal(t, "https://example.com/", jobArgs.URL)
	require.Equal(t, "CrawlSiteJob", jobArgs.Kind())
}

func TestSiteChecker_Scan_SiteNotFound(t *testing.T) {
	st := &fakeStorage{
		siteByID: func(context.Context, domain.SiteID) (*domain.Site, error) {
			return nil, nil
		},
	}

	_, err := newChecker(st).Scan(context.Background(), domain.SiteID(uuid.New()))
	require.Error(t, err)
	require.ErrorIs(t, err, serrors.ErrNotFound)
}

func TestSiteChecker_Scan_Deduplicated(t *testing.T) {
	site := domain.Site{ID: domain.SiteID(uuid.New()), URL: "https://example.com/"}
	st := &fakeStorage{
		siteByID: func(context.Context, domain.SiteID) (*domain.Site, error) { return &site, nil },
		addJob: func(context.Context, river.JobArgs, *river.InsertOpts) (bool, error) {
			// river reports the job was skipped as a duplicate
			return false, nil
		},
	}

	added, err := newChecker(st).Scan(context.Background(), site.ID)
	require.NoError(t, err)
	require.False(t, added)
}

func TestSiteChecker_ScanAll_PagesThroughSites(t *testing.T) {
	pageOne := []domain.Site{
		{ID: domain.SiteID(uuid.New()), URL: "https://a.example/"},
		{ID: domain.SiteID(uuid.New()), URL: "https://b.example/"},
	}
	pageTwo := []domain.Site{
		{ID: domain.SiteID(uuid.New()), URL: "https://c.example/"},
	}
	cursor := time.Now().UTC()

	var enqueued []string
	st := &fakeStorage{
		sites: func(_ context.Context, c time.Time, _ uint) (storage.SitePage, error) {
			if c.IsZero() {
				return storage.SitePage{Sites: pageOne, NextCursor: &cursor}, nil
			}

			return storage.SitePage{Sites: pageTwo}, nil
		},
		addJob: func(_ context.Context, args river.JobArgs, _ *river.InsertOpts) (bool, error) {
			jobArgs := args.(sitechecker.JobArgs)
			enqueued = append(enqueued, jobArgs.URL)

			// b.example already has a queued job
			return jobArgs.URL != "https://b.example/", nil
		},
	}

	added, err := newChecker(st).ScanAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, added)
	require.Equal(t, []string{"https://a.example/", "https://b.example/", "https://c.example/"}, enqueued)
}

func TestSiteChecker_Results(t *testing.T) {
	siteID := domain.SiteID(uuid.New())
	site := domain.Site{ID: siteID, URL: "https://example.com/"}
	next := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	records := []domain.ScanRecord{
		{ID: domain.ScanRecordID(uuid.New()), SiteID: siteID, Success: true, Message: "No broken pages found"},
	}

	st := &fakeStorage{
		siteByID: func(context.Context, domain.SiteID) (*domain.Site, error) { return &site, nil },
		scanRecordsBySite: func(_ context.Context,
			id domain.SiteID, cursor time.Time, limit uint) (storage.ScanRecordPage, error) {
			require.Equal(t, siteID, id)
			require.True(t, cursor.IsZero())
			require.EqualValues(t, 10, limit)

			return storage.ScanRecordPage{Records: records, NextCursor: &next}, nil
		},
	}

	got, nextCursor, err := newChecker(st).Results(context.Background(), siteID, "", 10)
	require.NoError(t, err)
	require.Equal(t, records, got)
	require.Equal(t, next.Format(time.RFC3339), nextCursor)
}

func TestSiteChecker_Results_InvalidCursor(t *testing.T) {
	st := &fakeStorage{}

	_, _, err := newChecker(st).Results(context.Background(), domain.SiteID(uuid.New()), "yesterday", 10)
	require.Error(t, err)
	require.ErrorIs(t, err, serrors.ErrBadRequest)
}

func TestSiteChecker_LatestResult(t *testing.T) {
	siteID := domain.SiteID(uuid.New())
	site := domain.Site{ID: siteID, URL: "https://example.com/"}

	t.Run("found", func(t *testing.T) {
		record := domain.ScanRecord{ID: domain.ScanRecordID(uuid.New()), SiteID: siteID}
		st := &fakeStorage{
			siteByID:         func(context.Context, domain.SiteID) (*domain.Site, error) { return &site, nil },
			latestScanRecord: func(context.Context, domain.SiteID) (*domain.ScanRecord, error) { return &record, nil },
		}

		got, err := newChecker(st).LatestResult(context.Background(), siteID)
		require.NoError(t, err)
		require.Equal(t, &record, got)
	})

	t.Run("never crawled", func(t *testing.T) {
		st := &fakeStorage{
			siteByID:         func(context.Context, domain.SiteID) (*domain.Site, error) { return &site, nil },
			latestScanRecord: func(context.Context, domain.SiteID) (*domain.ScanRecord, error) { return nil, nil },
		}

		_, err := newChecker(st).LatestResult(context.Background(), siteID)
		require.Error(t, err)
		require.ErrorIs(t, err, serrors.ErrNotFound)
	})
}

func TestSiteChecker_Delete(t *testing.T) {
	siteID := domain.SiteID(uuid.New())

	t.Run("deletes", func(t *testing.T) {
		site := domain.Site{ID: siteID}
		st := &fakeStorage{
			deleteSite: func(context.Context, domain.SiteID) (*domain.Site, error) { return &site, nil },
		}
		require.NoError(t, newChecker(st).Delete(context.Background(), siteID))
	})

	t.Run("not found", func(t *testing.T) {
		st := &fakeStorage{
			deleteSite: func(context.Context, domain.SiteID) (*domain.Site, error) { return nil, nil },
		}
		err := newChecker(st).Delete(context.Background(), siteID)
		require.Error(t, err)
		require.ErrorIs(t, err, serrors.ErrNotFound)
	})
}
