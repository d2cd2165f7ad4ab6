package citation

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	// CrossrefBaseURL is the Crossref REST API base URL.
	CrossrefBaseURL = "https://api.crossref.org"

	// CrossrefRateLimit stays within Crossref's public pool allowance.
	CrossrefRateLimit = 10.0
)

// Crossref looks up registration metadata in the Crossref REST API.
type Crossref struct {
	*client
}

// NewCrossref creates the cross-reference provider.
func NewCrossref(opts ...Option) *Crossref {
	return &Crossref{client: newClient("crossref", CrossrefBaseURL, CrossrefRateLimit, DefaultUserAgent, opts)}
}

// Name implements Provider.
func (c *Crossref) Name() string { return c.name }

// Lookup implements Provider. A body without a message object is ErrNotFound.
func (c *Crossref) Lookup(ctx context.Context, doi string) (*Paper, error) {
	u := fmt.Sprintf("%s/works/%s", c.baseURL, escapeDOI(doi))

	var body string
	if err := c.get(ctx, u, &body, "Accept", "application/json"); err != nil {
		return nil, err
	}
	if !gjson.Valid(body) {
		return nil, fmt.Errorf("%w: crossref: malformed JSON", ErrInvalidResponse)
	}

	msg := gjson.Get(body, "message")
	if !msg.IsObject() {
		return nil, fmt.Errorf("%w: crossref has no message for %s", ErrNotFound, doi)
	}

	p := &Paper{
		DOI:           doi,
		Title:         msg.Get("title.0").String(),
		Year:          int(msg.Get("published-print.date-parts.0.0").Int()),
		CitationCount: max(int(msg.Get("is-referenced-by-count").Int()), 0),
		Venue:         msg.Get("container-title.0").String(),
		URL:           msg.Get("URL").String(),
	}
	msg.Get("author").ForEach(func(_, a gjson.Result) bool {
		name := strings.TrimSpace(a.Get("given").String() + " " + a.Get("family").String())
		p.Authors = append(p.Authors, name)
		return true
	})
	return p, nil
}
