package citation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/carlmjohnson/requests"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent identifies API requests.
	DefaultUserAgent = "litsurvey/1.0 (+https://github.com/matsen/litsurvey)"
)

// Sleeper pauses for d or until ctx ends. Providers call it for their
// mandated pre-request delays; tests substitute a recorder.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the default Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// client holds the HTTP plumbing shared by every provider.
type client struct {
	name       string
	httpClient *http.Client
	limiter    *rate.Limiter
	sleep      Sleeper
	baseURL    string
	apiKey     string
	userAgent  string
}

// Option configures a provider.
type Option func(*client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithAPIKey sets the API key for authenticated requests.
func WithAPIKey(key string) Option {
	return func(c *client) {
		c.apiKey = key
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithSleeper replaces the function used for pre-request delays.
func WithSleeper(s Sleeper) Option {
	return func(c *client) {
		c.sleep = s
	}
}

// WithRateLimit sets the sustained request rate in requests per second.
// A non-positive rate disables limiting.
func WithRateLimit(perSecond float64) Option {
	return func(c *client) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

func newClient(name, baseURL string, perSecond float64, userAgent string, opts []Option) *client {
	c := &client{
		name:       name,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		sleep:      SleepContext,
		baseURL:    baseURL,
		userAgent:  userAgent,
	}
	WithRateLimit(perSecond)(c)

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// rateLimitTransport waits on limiter before every round trip.
func rateLimitTransport(limiter *rate.Limiter, rt http.RoundTripper) http.RoundTripper {
	if rt == nil {
		rt = http.DefaultTransport
	}
	return requests.RoundTripFunc(func(req *http.Request) (*http.Response, error) {
		if err := limiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
		return rt.RoundTrip(req)
	})
}

// get fetches rawURL into body. headers are added pairwise (key, value).
func (c *client) get(ctx context.Context, rawURL string, body *string, headers ...string) error {
	rb := requests.URL(rawURL).
		Client(c.httpClient).
		Transport(rateLimitTransport(c.limiter, c.httpClient.Transport)).
		UserAgent(c.userAgent).
		AddValidator(statusValidator(c.name)).
		ToString(body)

	for i := 0; i+1 < len(headers); i += 2 {
		rb.Header(headers[i], headers[i+1])
	}

	err := rb.Fetch(ctx)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if isClassified(err) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", ErrNetworkError, c.name, err)
}

func isClassified(err error) bool {
	var apiErr *APIError
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrAuthError) ||
		errors.Is(err, ErrRateLimited) ||
		errors.As(err, &apiErr)
}

// escapeDOI escapes each path segment of a DOI, keeping the slashes.
func escapeDOI(doi string) string {
	parts := strings.Split(doi, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
