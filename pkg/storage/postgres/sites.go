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
	sitesTable = "sites"
)

func (p *PgSQL) StoreSites(ctx context.Context, sites ...domain.Site) ([]domain.Site, error) {
	if len(sites) == 0 {
		return nil, nil
	}

	var result []PgSite
	if err := p.Builder.Insert(sitesTable).
		Rows(domainSitesToPg(sites)).
		Returning(&PgSite{}).
		Executor().ScanStructsContext(ctx, &result); err != nil {
		return nil, fmt.Errorf("could not store sites into pg: %w", err)
	}

	return pgSitesToDomain(result), nil
}

// SiteByID returns a site by its ID, excluding soft-deleted rows.
func (p *PgSQL) SiteByID(ctx context.Context, id domain.SiteID) (*domain.Site, error) {
	var row PgSite
	found, err := p.Builder.From(sitesTable).
		Where(
			goqu.I("id").Eq(uuid.UUID(id)),
			goqu.I("deleted_at").IsNull(),
		).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch site by id: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}

// SiteByURL returns a site by its base URL, excluding soft-deleted rows. The
// URL is matched exactly; callers are expected to normalize before storing and
// querying.
func (p *PgSQL) SiteByURL(ctx context.Context, URL string) (*domain.Site, error) {
	var row PgSite
	found, err := p.Builder.From(sitesTable).
		Where(
			goqu.I("url").Eq(URL),
			goqu.I("deleted_at").IsNull(),
		).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch site by url: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}

// Sites returns a page of registered sites filtered by optional cursor and
// limited by limit. Results are ordered by created_at DESC, id DESC.
func (p *PgSQL) Sites(ctx context.Context, cursor time.Time, limit uint) (storage.SitePage, error) {
	w := []goqu.Expression{
		goqu.I("deleted_at").IsNull(),
	}
	if !cursor.IsZero() {
		w = append(w, goqu.I("created_at").Lt(cursor))
	}

	// fetch one extra to determine if there is a next page
	fetch := limit + 1
	ds := p.Builder.From(sitesTable).
		Where(w...).
		Order(goqu.I("created_at").Desc(), goqu.I("id").Desc()).
		Limit(fetch)

	var rows []PgSite
	if err := ds.Executor().ScanStructsContext(ctx, &rows); err != nil {
		return storage.SitePage{}, fmt.Errorf("could not fetch sites from pg: %w", err)
	}

	// if we fetched more than the limit, there is a next page
	var nextCursor *time.Time
	if uint(len(rows)) > limit {
		trimmed := rows[:limit]
		nextCursor = &trimmed[len(trimmed)-1].CreatedAt
		rows = trimmed
	}

	return storage.SitePage{
		Sites:      pgSitesToDomain(rows),
		NextCursor: nextCursor,
	}, nil
}

// DeleteSite performs a soft delete by setting deleted_at timestamp for the
// given site id, returning the deleted record.
func (p *PgSQL) DeleteSite(ctx context.Context, id domain.SiteID) (*domain.Site, error) {
	var row PgSite
	found, err := p.Builder.Update(sitesTable).
		Set(goqu.Record{
			"deleted_at": goqu.L("CURRENT_TIMESTAMP"),
		}).Where(
		goqu.I("id").Eq(uuid.UUID(id)),
		goqu.I("deleted_at").IsNull(),
	).Returning(&PgSite{}).Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not delete site in pg: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}
