package citation

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/encoding/json"
)

const (
	// SemanticScholarBaseURL is the Semantic Scholar Graph API base URL.
	SemanticScholarBaseURL = "https://api.semanticscholar.org/graph/v1"

	// SemanticScholarDelay precedes every request regardless of outcome,
	// keeping unauthenticated use under the published rate limit.
	SemanticScholarDelay = 100 * time.Millisecond

	semanticScholarFields = "title,year,citationCount,venue,authors,abstract,url,isOpenAccess"
)

// SemanticScholar looks up papers in the Semantic Scholar Graph API.
type SemanticScholar struct {
	*client
}

// NewSemanticScholar creates the primary provider.
func NewSemanticScholar(opts ...Option) *SemanticScholar {
	return &SemanticScholar{client: newClient("semanticscholar", SemanticScholarBaseURL, 0, DefaultUserAgent, opts)}
}

// Name implements Provider.
func (s *SemanticScholar) Name() string { return s.name }

type s2Paper struct {
	Title         string  `json:"title"`
	Year          *int    `json:"year"`
	CitationCount int     `json:"citationCount"`
	Venue         string  `json:"venue"`
	Abstract      *string `json:"abstract"`
	URL           string  `json:"url"`
	IsOpenAccess  bool    `json:"isOpenAccess"`
	Authors       []struct {
		Name string `json:"name"`
	} `json:"authors"`
}

// Lookup implements Provider. A response without a title is ErrNotFound.
func (s *SemanticScholar) Lookup(ctx context.Context, doi string) (*Paper, error) {
	if err := s.sleep(ctx, SemanticScholarDelay); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/paper/DOI:%s?fields=%s", s.baseURL, escapeDOI(doi), semanticScholarFields)

	var headers []string
	if s.apiKey != "" {
		headers = append(headers, "x-api-key", s.apiKey)
	}

	var body string
	if err := s.get(ctx, u, &body, headers...); err != nil {
		return nil, err
	}

	var raw s2Paper
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, fmt.Errorf("%w: semanticscholar: %v", ErrInvalidResponse, err)
	}
	if raw.Title == "" {
		return nil, fmt.Errorf("%w: semanticscholar has no title for %s", ErrNotFound, doi)
	}

	p := &Paper{
		DOI:           doi,
		Title:         raw.Title,
		CitationCount: max(raw.CitationCount, 0),
		Venue:         raw.Venue,
		URL:           raw.URL,
		IsOpenAccess:  raw.IsOpenAccess,
	}
	if raw.Year != nil {
		p.Year = *raw.Year
	}
	if raw.Abstract != nil {
		p.Abstract = *raw.Abstract
	}
	for _, a := range raw.Authors {
		p.Authors = append(p.Authors, a.Name)
	}
	return p, nil
}
