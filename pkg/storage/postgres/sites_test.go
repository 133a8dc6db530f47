package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"sitecheck/pkg/domain"
)

func TestPgSQL_StoreSites(t *testing.T) {
	t.Parallel()

	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)

	ctx := context.Background()

	t.Run("store single site", func(t *testing.T) {
		t.Parallel()

		res, err := pgSQL.StoreSites(ctx, domain.Site{
			URL:  "https://single.example/",
			Name: "Single",
		})
		require.NoError(t, err)
		require.Len(t, res, 1)
		require.Equal(t, "https://single.example/", res[0].URL)
		require.Equal(t, "Single", res[0].Name)
		require.False(t, res[0].CreatedAt.IsZero())
	})

	t.Run("store multiple sites", func(t *testing.T) {
		t.Parallel()

		res, err := pgSQL.StoreSites(ctx,
			domain.Site{URL: "https://multi-a.example/", Name: "A"},
			domain.Site{URL: "https://multi-b.example/", Name: "B"},
		)
		require.NoError(t, err)
		require.Len(t, res, 2)
	})

	t.Run("store no sites", func(t *testing.T) {
		t.Parallel()

		res, err := pgSQL.StoreSites(ctx)
		require.NoError(t, err)
		require.Empty(t, res)
	})
}

func TestPgSQL_SiteByURL(t *testing.T) {
	t.Parallel()

	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	stored, err := pgSQL.StoreSites(ctx, domain.Site{URL: "https://byurl.example/", Name: "ByURL"})
	require.NoError(t, err)

	got, err := pgSQL.SiteByURL(ctx, "https://byurl.example/")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, stored[0].ID, got.ID)

	// unknown URL
	got2, err := pgSQL.SiteByURL(ctx, "https://unknown.example/")
	require.NoError(t, err)
	require.Nil(t, got2)

	// soft-deleted sites are invisible
	_, err = pgSQL.DeleteSite(ctx, stored[0].ID)
	require.NoError(t, err)
	got3, err := pgSQL.SiteByURL(ctx, "https://byurl.example/")
	require.NoError(t, err)
	require.Nil(t, got3)
}

func TestPgSQL_DeleteSite(t *testing.T) {
	t.Parallel()

	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	stored, err := pgSQL.StoreSites(ctx, domain.Site{URL: "https://delete.example/", Name: "Doomed"})
	require.NoError(t, err)
	id := stored[0].ID

	deleted, err := pgSQL.DeleteSite(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, deleted)
	require.Equal(t, id, deleted.ID)

	// fetching by id should return nil
	got, err := pgSQL.SiteByID(ctx, id)
	require.NoError(t, err)
	require.Nil(t, got)

	// deleting again should not error
	deleted2, err := pgSQL.DeleteSite(ctx, id)
	require.NoError(t, err)
	require.Nil(t, deleted2)

	// deleting an unknown id should return nil
	deleted3, err := pgSQL.DeleteSite(ctx, domain.SiteID(uuid.New()))
	require.NoError(t, err)
	require.Nil(t, deleted3)
}

func TestPgSQL_Sites_Pagination(t *testing.T) {
	t.Parallel()

	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	sites := make([]domain.Site, 0, 5)
	for range 5 {
		sites = append(sites, domain.Site{
			URL:  "https://page.example/" + uuid.NewString(),
			Name: "Paged",
		})
	}
	stored, err := pgSQL.StoreSites(ctx, sites...)
	require.NoError(t, err)
	require.Len(t, stored, 5)

	// adjust created_at to be deterministic descending: now, now-1m, ...
	now := time.Now().UTC()
	for i, site := range stored {
		created := now.Add(-time.Duration(4-i) * time.Minute)
		_, err := pgSQL.DB.ExecContext(ctx, "UPDATE sites SET created_at = $1 WHERE id = $2", created, uuid.UUID(site.ID))
		require.NoError(t, err)
	}

	// first page, limit 2
	p1, err := pgSQL.Sites(ctx, time.Time{}, 2)
	require.NoError(t, err)
	require.Len(t, p1.Sites, 2)
	require.NotNil(t, p1.NextCursor)

	// second page
	p2, err := pgSQL.Sites(ctx, *p1.NextCursor, 2)
	require.NoError(t, err)
	require.Len(t, p2.Sites, 2)
	require.NotNil(t, p2.NextCursor)

	// third (last) page, should have 1 left and no next cursor
	p3, err := pgSQL.Sites(ctx, *p2.NextCursor, 2)
	require.NoError(t, err)
	require.Len(t, p3.Sites, 1)
	require.Nil(t, p3.NextCursor)
}
