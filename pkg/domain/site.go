package domain

import (
	"time"

	"github.com/google/uuid"
)

// SiteID uniquely identifies a registered site.
// It wraps uuid.UUID to provide type safety at the domain layer.
type SiteID uuid.UUID

// String returns the canonical UUID string form.
func (id SiteID) String() string { return uuid.UUID(id).String() }

// MarshalText encodes the ID as a UUID string so JSON payloads carry readable
// identifiers.
func (id SiteID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

// UnmarshalText parses a UUID string into the ID.
func (id *SiteID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err //nolint: wrapcheck
	}
	*id = SiteID(u)

	return nil
}

// Site is a registered website whose pages are periodically checked for
// broken links. The URL is the crawl entry point and is stored in normalized
// form so that the same site cannot be registered twice under trivially
// different spellings.
type Site struct {
	// ID is the unique identifier of the site.
	ID SiteID `json:"id"`

	// URL is the base URL crawls start from.
	URL string `json:"url"`
	// Name is a human-readable label for the site.
	Name string `json:"name"`

	// CreatedAt is the time when the site was registered.
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is the time when the site record was last changed.
	UpdatedAt time.Time `json:"updatedAt"`
	// DeletedAt marks when the site was soft-deleted; zero value means not deleted.
	DeletedAt time.Time `json:"-"`
}
