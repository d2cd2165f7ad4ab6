package citation

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	// ScholarBaseURL is the Google Scholar search endpoint.
	ScholarBaseURL = "https://scholar.google.com"

	// ScholarMinDelay and ScholarMaxDelay bound the random pause before each
	// scrape.
	ScholarMinDelay = 2 * time.Second
	ScholarMaxDelay = 5 * time.Second

	// BrowserUserAgent is sent to Scholar, which rejects obvious bots.
	BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

var citedByPattern = regexp.MustCompile(`Cited by (\d+)`)

// Scholar scrapes the Google Scholar results page for a DOI query. It is the
// last resort: a page without a "Cited by N" marker yields a count of 0 and
// no error.
type Scholar struct {
	*client
	jitter func() time.Duration
}

// NewScholar creates the scrape-based provider.
func NewScholar(opts ...Option) *Scholar {
	return &Scholar{
		client: newClient("scholar", ScholarBaseURL, 0, BrowserUserAgent, opts),
		jitter: randomScholarDelay,
	}
}

func randomScholarDelay() time.Duration {
	span := int64(ScholarMaxDelay - ScholarMinDelay)
	return ScholarMinDelay + time.Duration(rand.Int64N(span))
}

// Name implements Provider.
func (s *Scholar) Name() string { return s.name }

// Lookup implements Provider.
func (s *Scholar) Lookup(ctx context.Context, doi string) (*Paper, error) {
	if err := s.sleep(ctx, s.jitter()); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/scholar?q=%s", s.baseURL, url.QueryEscape("doi:"+doi))

	var body string
	if err := s.get(ctx, u, &body); err != nil {
		return nil, err
	}

	count, err := parseCitedBy(body)
	if err != nil {
		return nil, err
	}
	return &Paper{DOI: doi, CitationCount: count}, nil
}

// parseCitedBy returns the number in the first "Cited by N" text of an HTML
// page, or 0 when there is none.
func parseCitedBy(html string) (int, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0, fmt.Errorf("%w: scholar: %v", ErrInvalidResponse, err)
	}

	// Scholar renders the count as a link; checking links first keeps the
	// number from running into adjacent text.
	var (
		count int
		found bool
	)
	doc.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if m := citedByPattern.FindStringSubmatch(a.Text()); m != nil {
			count, _ = strconv.Atoi(m[1])
			found = true
			return false
		}
		return true
	})
	if found {
		return count, nil
	}

	if m := citedByPattern.FindStringSubmatch(doc.Text()); m != nil {
		count, _ = strconv.Atoi(m[1])
	}
	return count, nil
}
