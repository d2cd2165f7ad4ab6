package citation

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// noSleep records requested delays without waiting.
type noSleep struct {
	delays []time.Duration
}

func (n *noSleep) sleep(ctx context.Context, d time.Duration) error {
	n.delays = append(n.delays, d)
	return ctx.Err()
}

func jsonServer(t *testing.T, status int, body string, check func(r *http.Request)) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestNormalizeDOI(t *testing.T) {
	tests := []struct{ in, want string }{
		{"10.1038/nature14539", "10.1038/nature14539"},
		{"  https://doi.org/10.1038/nature14539 ", "10.1038/nature14539"},
		{"http://doi.org/10.1/ABC", "10.1/ABC"},
		{"https://dx.doi.org/10.1/x", "10.1/x"},
		{"doi:10.1/x", "10.1/x"},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := NormalizeDOI(tt.in); got != tt.want {
			t.Errorf("NormalizeDOI(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSemanticScholar_Lookup(t *testing.T) {
	body := `{"title":"Deep learning","year":2015,"citationCount":50000,"venue":"Nature",
		"authors":[{"name":"Yann LeCun"},{"name":"Yoshua Bengio"}],"abstract":null,"isOpenAccess":false}`
	srv, _ := jsonServer(t, http.StatusOK, body, func(r *http.Request) {
		if r.URL.Path != "/paper/DOI:10.1038/nature14539" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "s2key" {
			t.Errorf("x-api-key = %q, want s2key", r.Header.Get("x-api-key"))
		}
		if !strings.Contains(r.URL.Query().Get("fields"), "citationCount") {
			t.Errorf("fields = %q", r.URL.Query().Get("fields"))
		}
	})

	sleeper := &noSleep{}
	p := NewSemanticScholar(WithBaseURL(srv.URL), WithAPIKey("s2key"), WithSleeper(sleeper.sleep))

	paper, err := p.Lookup(context.Background(), "10.1038/nature14539")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if paper.CitationCount != 50000 || paper.Year != 2015 || len(paper.Authors) != 2 {
		t.Errorf("Lookup() = %+v", paper)
	}
	if len(sleeper.delays) != 1 || sleeper.delays[0] != SemanticScholarDelay {
		t.Errorf("delays = %v, want [%v]", sleeper.delays, SemanticScholarDelay)
	}
}

func TestSemanticScholar_DelayEvenOnFailure(t *testing.T) {
	srv, _ := jsonServer(t, http.StatusInternalServerError, `{}`, nil)
	sleeper := &noSleep{}
	p := NewSemanticScholar(WithBaseURL(srv.URL), WithSleeper(sleeper.sleep))

	if _, err := p.Lookup(context.Background(), "10.1/x"); err == nil {
		t.Fatal("Lookup() expected error for HTTP 500")
	}
	if len(sleeper.delays) != 1 {
		t.Errorf("delay should precede every request, got %v", sleeper.delays)
	}
}

func TestSemanticScholar_EmptyTitleIsNotFound(t *testing.T) {
	srv, _ := jsonServer(t, http.StatusOK, `{"title":"","citationCount":9}`, nil)
	p := NewSemanticScholar(WithBaseURL(srv.URL), WithSleeper((&noSleep{}).sleep))

	_, err := p.Lookup(context.Background(), "10.1/x")
	if !IsNotFound(err) {
		t.Errorf("Lookup() error = %v, want not found", err)
	}
}

func TestSemanticScholar_MalformedBody(t *testing.T) {
	srv, _ := jsonServer(t, http.StatusOK, `{not json`, nil)
	p := NewSemanticScholar(WithBaseURL(srv.URL), WithSleeper((&noSleep{}).sleep))

	_, err := p.Lookup(context.Background(), "10.1/x")
	if !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("Lookup() error = %v, want ErrInvalidResponse", err)
	}
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		check  func(error) bool
		name   string
	}{
		{http.StatusNotFound, IsNotFound, "not found"},
		{http.StatusUnauthorized, IsAuthError, "auth"},
		{http.StatusForbidden, IsAuthError, "auth"},
		{http.StatusTooManyRequests, IsRateLimited, "rate limited"},
	}
	for _, tt := range tests {
		srv, _ := jsonServer(t, tt.status, `{}`, nil)
		p := NewCrossref(WithBaseURL(srv.URL))
		_, err := p.Lookup(context.Background(), "10.1/x")
		if !tt.check(err) {
			t.Errorf("status %d: error = %v, want %s", tt.status, err, tt.name)
		}
	}

	srv, _ := jsonServer(t, http.StatusBadGateway, `{}`, nil)
	_, err := NewCrossref(WithBaseURL(srv.URL)).Lookup(context.Background(), "10.1/x")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadGateway || apiErr.Provider != "crossref" {
		t.Errorf("status 502: error = %v, want *APIError", err)
	}
}

func TestCrossref_Lookup(t *testing.T) {
	body := `{"status":"ok","message":{"DOI":"10.1/x","title":["Graph Networks"],
		"container-title":["JMLR"],"is-referenced-by-count":42,
		"published-print":{"date-parts":[[2019,5]]},
		"author":[{"given":"Ada","family":"Lovelace"},{"family":"Turing"}],
		"URL":"https://doi.org/10.1/x"}}`
	srv, _ := jsonServer(t, http.StatusOK, body, func(r *http.Request) {
		if r.URL.Path != "/works/10.1/x" {
			t.Errorf("path = %q", r.URL.Path)
		}
	})

	paper, err := NewCrossref(WithBaseURL(srv.URL)).Lookup(context.Background(), "10.1/x")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if paper.CitationCount != 42 || paper.Title != "Graph Networks" || paper.Venue != "JMLR" || paper.Year != 2019 {
		t.Errorf("Lookup() = %+v", paper)
	}
	if len(paper.Authors) != 2 || paper.Authors[0] != "Ada Lovelace" || paper.Authors[1] != "Turing" {
		t.Errorf("Authors = %q", paper.Authors)
	}
}

func TestCrossref_MissingMessage(t *testing.T) {
	srv, _ := jsonServer(t, http.StatusOK, `{"status":"ok"}`, nil)
	_, err := NewCrossref(WithBaseURL(srv.URL)).Lookup(context.Background(), "10.1/x")
	if !IsNotFound(err) {
		t.Errorf("Lookup() error = %v, want not found", err)
	}
}

func TestScopus_Lookup(t *testing.T) {
	body := `{"full-text-retrieval-response":{"coredata":{"dc:title":"Sparse Models",
		"prism:coverDate":"2021-03-01","citedby-count":"17","prism:publicationName":"Neurocomputing",
		"openaccess":"1","link":[{"@href":"https://api.elsevier.com/x","@rel":"self"}]},
		"authors":{"author":[{"given-name":"Grace","surname":"Hopper"}]}}}`
	srv, _ := jsonServer(t, http.StatusOK, body, func(r *http.Request) {
		if r.Header.Get("X-ELS-APIKey") != "elskey" {
			t.Errorf("X-ELS-APIKey = %q", r.Header.Get("X-ELS-APIKey"))
		}
		if r.URL.Path != "/article/doi/10.1/x" {
			t.Errorf("path = %q", r.URL.Path)
		}
	})

	paper, err := NewScopus("elskey", WithBaseURL(srv.URL)).Lookup(context.Background(), "10.1/x")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if paper.CitationCount != 17 || paper.Year != 2021 || paper.Venue != "Neurocomputing" {
		t.Errorf("Lookup() = %+v", paper)
	}
	if !paper.IsOpenAccess || paper.URL != "https://api.elsevier.com/x" {
		t.Errorf("IsOpenAccess/URL = %v/%q", paper.IsOpenAccess, paper.URL)
	}
	if len(paper.Authors) != 1 || paper.Authors[0] != "Grace Hopper" {
		t.Errorf("Authors = %q", paper.Authors)
	}
}

func TestScholar_Lookup(t *testing.T) {
	page := `<html><body><div class="gs_ri"><h3>Paper</h3>
		<div class="gs_fl"><a href="/scholar?cites=1">Cited by 321</a> <a>Related articles</a></div>
		</div><div><a>Cited by 5</a></div></body></html>`

	var gotUA, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.UserAgent()
		gotQuery = r.URL.Query().Get("q")
		w.Write([]byte(page))
	}))
	defer srv.Close()

	sleeper := &noSleep{}
	p := NewScholar(WithBaseURL(srv.URL), WithSleeper(sleeper.sleep))

	paper, err := p.Lookup(context.Background(), "10.1/x")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if paper.CitationCount != 321 {
		t.Errorf("CitationCount = %d, want 321 (first match)", paper.CitationCount)
	}
	if gotUA != BrowserUserAgent {
		t.Errorf("User-Agent = %q", gotUA)
	}
	if gotQuery != "doi:10.1/x" {
		t.Errorf("q = %q", gotQuery)
	}
	if len(sleeper.delays) != 1 || sleeper.delays[0] < ScholarMinDelay || sleeper.delays[0] >= ScholarMaxDelay {
		t.Errorf("delays = %v, want one in [%v, %v)", sleeper.delays, ScholarMinDelay, ScholarMaxDelay)
	}
}

func TestScholar_NoPatternIsZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>Did not match any articles.</body></html>"))
	}))
	defer srv.Close()

	paper, err := NewScholar(WithBaseURL(srv.URL), WithSleeper((&noSleep{}).sleep)).Lookup(context.Background(), "10.1/x")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if paper.CitationCount != 0 {
		t.Errorf("CitationCount = %d, want 0", paper.CitationCount)
	}
}

func TestParseCitedBy_PlainText(t *testing.T) {
	got, err := parseCitedBy("<p>Cited by 12 and more</p>")
	if err != nil {
		t.Fatal(err)
	}
	if got != 12 {
		t.Errorf("parseCitedBy() = %d, want 12", got)
	}
}

func TestRandomScholarDelay(t *testing.T) {
	for range 100 {
		d := randomScholarDelay()
		if d < ScholarMinDelay || d >= ScholarMaxDelay {
			t.Fatalf("randomScholarDelay() = %v, out of range", d)
		}
	}
}

func TestSleepContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := SleepContext(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("SleepContext() = %v, want context.Canceled", err)
	}
}
