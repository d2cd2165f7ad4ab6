// Package citation resolves citation counts for DOIs by querying external
// metadata providers in a fixed fallback order.
package citation

import (
	"context"
	"strings"
)

// Paper is one provider's answer for a DOI. Only CitationCount survives into
// a canonical record.
type Paper struct {
	DOI           string   `json:"doi"`
	Title         string   `json:"title"`
	Year          int      `json:"year,omitempty"` // 0 when unknown
	CitationCount int      `json:"citation_count"`
	Venue         string   `json:"venue,omitempty"`
	Authors       []string `json:"authors,omitempty"`
	Abstract      string   `json:"abstract,omitempty"`
	URL           string   `json:"url,omitempty"`
	IsOpenAccess  bool     `json:"is_open_access"`
}

// Provider is a source of citation metadata.
//
// Lookup returns ErrNotFound (possibly wrapped) when the provider answered
// without usable data, and any other error for transport, status or parse
// failures.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, doi string) (*Paper, error)
}

var doiPrefixes = []string{
	"https://doi.org/",
	"http://doi.org/",
	"https://dx.doi.org/",
	"http://dx.doi.org/",
	"doi:",
}

// NormalizeDOI trims whitespace and strips a leading resolver URL or "doi:"
// prefix. Case is preserved.
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	lower := strings.ToLower(doi)
	for _, prefix := range doiPrefixes {
		if strings.HasPrefix(lower, prefix) {
			doi = doi[len(prefix):]
			break
		}
	}
	return strings.TrimSpace(doi)
}
