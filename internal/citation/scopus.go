package citation

import (
	"context"
	"fmt"
	"strings"

	"github.com/araddon/dateparse"
	"github.com/tidwall/gjson"
)

const (
	// ScopusBaseURL is the Elsevier content API base URL.
	ScopusBaseURL = "https://api.elsevier.com/content"

	// ScopusRateLimit matches the article retrieval quota.
	ScopusRateLimit = 9.0
)

// Scopus looks up articles in the Elsevier article retrieval API. It needs
// an API key and is only part of the chain when one is configured.
type Scopus struct {
	*client
}

// NewScopus creates the publisher provider. apiKey is sent as X-ELS-APIKey.
func NewScopus(apiKey string, opts ...Option) *Scopus {
	opts = append([]Option{WithAPIKey(apiKey)}, opts...)
	return &Scopus{client: newClient("scopus", ScopusBaseURL, ScopusRateLimit, DefaultUserAgent, opts)}
}

// Name implements Provider.
func (s *Scopus) Name() string { return s.name }

// Lookup implements Provider.
func (s *Scopus) Lookup(ctx context.Context, doi string) (*Paper, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("%w: scopus requires an API key", ErrAuthError)
	}

	u := fmt.Sprintf("%s/article/doi/%s", s.baseURL, escapeDOI(doi))

	var body string
	if err := s.get(ctx, u, &body, "X-ELS-APIKey", s.apiKey, "Accept", "application/json"); err != nil {
		return nil, err
	}
	if !gjson.Valid(body) {
		return nil, fmt.Errorf("%w: scopus: malformed JSON", ErrInvalidResponse)
	}

	resp := gjson.Get(body, "full-text-retrieval-response")
	if !resp.IsObject() {
		return nil, fmt.Errorf("%w: scopus has no record for %s", ErrNotFound, doi)
	}
	core := resp.Get("coredata")

	p := &Paper{
		DOI:           doi,
		Title:         core.Get("dc:title").String(),
		Year:          coverYear(core.Get("prism:coverDate").String()),
		CitationCount: max(int(core.Get("citedby-count").Int()), 0),
		Venue:         core.Get("prism:publicationName").String(),
		URL:           firstHref(core.Get("link")),
		IsOpenAccess:  core.Get("openaccess").Int() == 1,
	}
	resp.Get("authors.author").ForEach(func(_, a gjson.Result) bool {
		name := strings.TrimSpace(a.Get("given-name").String() + " " + a.Get("surname").String())
		p.Authors = append(p.Authors, name)
		return true
	})
	return p, nil
}

// coverYear extracts the year from a cover date such as "2019-05-01".
func coverYear(date string) int {
	if date == "" {
		return 0
	}
	t, err := dateparse.ParseAny(date)
	if err != nil {
		return 0
	}
	return t.Year()
}

// firstHref returns the "@href" of the first link object. Keys starting with
// "@" cannot be addressed by gjson paths, so the object is walked.
func firstHref(links gjson.Result) string {
	var href string
	links.Get("0").ForEach(func(k, v gjson.Result) bool {
		if k.String() == "@href" {
			href = v.String()
			return false
		}
		return true
	})
	return href
}
