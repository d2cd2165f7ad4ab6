package citation

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Config carries the settings that decide which providers join the chain.
// Keys come from the caller, never from the process environment.
type Config struct {
	SemanticScholarAPIKey string
	ScopusAPIKey          string // Empty leaves Scopus out of the chain
	UserAgent             string
}

// Result is the outcome of resolving one DOI.
type Result struct {
	DOI      string `json:"doi"`
	Count    int    `json:"count"`
	Provider string `json:"provider,omitempty"` // Empty when no provider had a positive count
	Paper    *Paper `json:"paper,omitempty"`
}

// Resolver queries providers in order until one reports a positive count.
type Resolver struct {
	providers []Provider
	log       logrus.FieldLogger
}

// NewResolver builds the standard chain: Semantic Scholar, Crossref, Scopus
// (only when cfg has a Scopus key), then Google Scholar. opts apply to every
// provider.
func NewResolver(cfg Config, log logrus.FieldLogger, opts ...Option) *Resolver {
	common := append([]Option{WithUserAgent(cfg.UserAgent)}, opts...)

	s2Opts := common
	if cfg.SemanticScholarAPIKey != "" {
		s2Opts = append(append([]Option{}, common...), WithAPIKey(cfg.SemanticScholarAPIKey))
	}

	providers := []Provider{
		NewSemanticScholar(s2Opts...),
		NewCrossref(common...),
	}
	if cfg.ScopusAPIKey != "" {
		providers = append(providers, NewScopus(cfg.ScopusAPIKey, common...))
	}
	// Scholar keeps its browser User-Agent.
	providers = append(providers, NewScholar(opts...))

	return NewChain(log, providers...)
}

// NewChain builds a resolver over an explicit provider order.
func NewChain(log logrus.FieldLogger, providers ...Provider) *Resolver {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Resolver{providers: providers, log: log}
}

// Providers returns the provider names in query order.
func (r *Resolver) Providers() []string {
	names := make([]string, len(r.providers))
	for i, p := range r.providers {
		names[i] = p.Name()
	}
	return names
}

// Resolve returns a best-effort citation count for doi.
//
// 0 means either zero citations or that no provider could answer; the two
// are only distinguished in the log. The error is non-nil only when ctx ends
// before resolution finishes, and then wraps ErrAborted.
func (r *Resolver) Resolve(ctx context.Context, doi string) (int, error) {
	res, err := r.ResolveDetailed(ctx, doi)
	return res.Count, err
}

// ResolveDetailed is Resolve, also reporting which provider answered.
func (r *Resolver) ResolveDetailed(ctx context.Context, doi string) (Result, error) {
	doi = NormalizeDOI(doi)
	res := Result{DOI: doi}
	if doi == "" {
		return res, nil
	}

	for _, p := range r.providers {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("%w: %v", ErrAborted, err)
		}

		log := r.log.WithFields(logrus.Fields{"doi": doi, "provider": p.Name()})
		paper, err := p.Lookup(ctx, doi)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return res, fmt.Errorf("%w: %v", ErrAborted, ctxErr)
			}
			logLookupError(log, err)
			continue
		}

		if paper.CitationCount > 0 {
			log.WithField("cites", paper.CitationCount).Debug("resolved")
			res.Count = paper.CitationCount
			res.Provider = p.Name()
			res.Paper = paper
			return res, nil
		}
		log.Debug("no citations reported")
	}

	r.log.WithField("doi", doi).Info("no citation data found")
	return res, nil
}

// logLookupError reports a provider failure. Not-found is routine and only
// logged at debug level.
func logLookupError(log logrus.FieldLogger, err error) {
	switch {
	case IsNotFound(err):
		log.Debug("not found")
	case IsAuthError(err):
		log.WithError(err).WithField("reason", "auth").Warn("provider rejected credentials; check the API key")
	case IsRateLimited(err):
		log.WithError(err).WithField("reason", "rate_limited").Warn("provider rate limit hit; skipping to next provider")
	default:
		log.WithError(err).Warn("lookup failed")
	}
}
