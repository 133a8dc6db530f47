package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sitecheck/pkg/domain"
)

type PgSite struct {
	ID uuid.UUID `db:"id" goqu:"skipinsert"`

	URL  string `db:"url"`
	Name string `db:"name"`

	CreatedAt time.Time    `db:"created_at" goqu:"skipinsert"`
	UpdatedAt sql.NullTime `db:"updated_at" goqu:"skipinsert"`
	DeletedAt sql.NullTime `db:"deleted_at" goqu:"skipinsert"`
}

func (p *PgSite) ToDomain() *domain.Site {
	return &domain.Site{
		ID:        domain.SiteID(p.ID),
		URL:       p.URL,
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt.Time,
		DeletedAt: p.DeletedAt.Time,
	}
}

func (p *PgSite) FromDomain(site domain.Site) {
	*p = PgSite{
		ID:        uuid.UUID(site.ID),
		URL:       site.URL,
		Name:      site.Name,
		CreatedAt: site.CreatedAt,
		UpdatedAt: sql.NullTime{
			Time:  site.UpdatedAt,
			Valid: !site.UpdatedAt.IsZero(),
		},
		DeletedAt: sql.NullTime{
			Time:  site.DeletedAt,
			Valid: !site.DeletedAt.IsZero(),
		},
	}
}

func domainSitesToPg(sites []domain.Site) []PgSite {
	out := make([]PgSite, len(sites))
	for i := range out {
		out[i].FromDomain(sites[i])
	}

	return out
}

func pgSitesToDomain(sites []PgSite) []domain.Site {
	out := make([]domain.Site, 0, len(sites))
	for _, site := range sites {
		out = append(out, *site.ToDomain())
	}

	return out
}

type PgScanRecord struct {
	ID     uuid.UUID `db:"id"      goqu:"skipinsert"`
	SiteID uuid.UUID `db:"site_id"`

	BrokenPages json.RawMessage `db:"broken_pages"`
	TotalPages  int             `db:"total_pages"`
	Success     bool            `db:"success"`
	Message     string          `db:"message"`

	CreatedAt time.Time `db:"created_at" goqu:"skipinsert"`
}

func (p *PgScanRecord) ToDomain() (*domain.ScanRecord, error) {
	var broken []domain.PageOutcome
	if err := json.Unmarshal(p.BrokenPages, &broken); err != nil {
		return nil, fmt.Errorf("could not unmarshal broken pages: %w", err)
	}

	return &domain.ScanRecord{
		ID:          domain.ScanRecordID(p.ID),
		SiteID:      domain.SiteID(p.SiteID),
		BrokenPages: broken,
		TotalPages:  p.TotalPages,
		Success:     p.Success,
		Message:     p.Message,
		CreatedAt:   p.CreatedAt,
	}, nil
}

func (p *PgScanRecord) FromDomain(record domain.ScanRecord) error {
	broken := record.BrokenPages
	if broken == nil {
		// keep the stored payload a JSON array, never null
		broken = []domain.PageOutcome{}
	}
	b, err := json.Marshal(broken)
	if err != nil {
		return fmt.Errorf("could not marshal broken pages: %w", err)
	}

	*p = PgScanRecord{
		ID:          uuid.UUID(record.ID),
		SiteID:      uuid.UUID(record.SiteID),
		BrokenPages: b,
		TotalPages:  record.TotalPages,
		Success:     record.Success,
		Message:     record.Message,
		CreatedAt:   record.CreatedAt,
	}

	return nil
}

func pgScanRecordsToDomain(records []PgScanRecord) ([]domain.ScanRecord, error) {
	out := make([]domain.ScanRecord, 0, len(records))
	for _, record := range records {
		d, err := record.ToDomain()
		if err != nil {
			return nil, err
		}

		out = append(out, *d)
	}

	return out, nil
}
