package domain

import (
	"time"

	"github.com/google/uuid"
)

// ScanRecordID uniquely identifies a stored crawl result.
type ScanRecordID uuid.UUID

// String returns the canonical UUID string form.
func (id ScanRecordID) String() string { return uuid.UUID(id).String() }

// MarshalText encodes the ID as a UUID string.
func (id ScanRecordID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

// UnmarshalText parses a UUID string into the ID.
func (id *ScanRecordID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err //nolint: wrapcheck
	}
	*id = ScanRecordID(u)

	return nil
}

// PageOutcome is the result of checking a single candidate URL. A healthy
// page has Status below 400 and an empty Err. A broken page carries either
// the HTTP status that was returned (Status >= 400) or the transport-level
// failure message (Err non-empty), never both.
type PageOutcome struct {
	// URL is the checked page.
	URL string `json:"url"`
	// Status is the HTTP status code received, or 0 when the request never
	// produced a response.
	Status int `json:"status,omitempty"`
	// Err describes a transport failure (timeout, DNS, connection reset).
	Err string `json:"error,omitempty"`
}

// Broken reports whether the outcome counts as a broken page.
func (o PageOutcome) Broken() bool {
	return o.Status >= 400 || o.Err != ""
}

// CrawlReport is the aggregate result of one crawl invocation. Success
// reflects whether the crawl mechanism itself completed; a crawl that ran to
// the end but found broken pages is still a successful crawl.
type CrawlReport struct {
	// BrokenPages holds the outcomes classified as broken, in check order.
	BrokenPages []PageOutcome `json:"brokenPages"`
	// TotalPages is the number of candidate URLs that were checked.
	TotalPages int `json:"totalPages"`
	// Success is true when the crawl completed (regardless of page health).
	Success bool `json:"success"`
	// Message is a human-readable summary of the crawl.
	Message string `json:"message"`
}

// ScanRecord is a persisted crawl result for a registered site.
type ScanRecord struct {
	// ID is the unique identifier of the record.
	ID ScanRecordID `json:"id"`
	// SiteID references the site the crawl ran against.
	SiteID SiteID `json:"siteId"`

	// BrokenPages holds the broken outcomes of the crawl.
	BrokenPages []PageOutcome `json:"brokenPages"`
	// TotalPages is the number of pages checked by the crawl.
	TotalPages int `json:"totalPages"`
	// Success is true when the crawl mechanism completed.
	Success bool `json:"success"`
	// Message is the crawl summary message.
	Message string `json:"message"`

	// CreatedAt is the time when the crawl finished and the record was stored.
	CreatedAt time.Time `json:"createdAt"`
}
