package citation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/matsen/litsurvey/internal/record"
	"github.com/matsen/litsurvey/internal/storage"
)

// DefaultCheckpointEvery is the number of updated rows between checkpoints.
const DefaultCheckpointEvery = 10

// CountResolver resolves a DOI to a citation count. *Resolver implements it.
type CountResolver interface {
	ResolveDetailed(ctx context.Context, doi string) (Result, error)
}

// Checkpointer persists the table being filled.
type Checkpointer interface {
	Checkpoint(table record.Table) error
}

// CheckpointFunc adapts a function to Checkpointer.
type CheckpointFunc func(table record.Table) error

// Checkpoint implements Checkpointer.
func (f CheckpointFunc) Checkpoint(table record.Table) error { return f(table) }

// TableFile checkpoints by overwriting the canonical table at path.
func TableFile(path string) Checkpointer {
	return CheckpointFunc(func(table record.Table) error {
		return storage.WriteTable(path, table)
	})
}

// ResolutionJournal records resolutions across runs. *storage.Journal
// implements it.
type ResolutionJournal interface {
	Record(res storage.Resolution) error
	Lookup(doi string) (*storage.Resolution, error)
}

// FillOptions configures FillMissing.
type FillOptions struct {
	CheckpointEvery int               // Defaults to DefaultCheckpointEvery
	Journal         ResolutionJournal // Optional
	UseCache        bool              // Reuse positive journal entries instead of querying
	RunID           string            // Generated when empty
	Log             logrus.FieldLogger
	Now             func() time.Time
}

// FillStats summarizes a FillMissing run.
type FillStats struct {
	RunID        string `json:"run_id"`
	Total        int    `json:"total"`
	MissingDOI   int    `json:"missing_doi"`
	AlreadyCited int    `json:"already_cited"`
	Updated      int    `json:"updated"`
	Found        int    `json:"found"`
	FromCache    int    `json:"from_cache"`
	Checkpoints  int    `json:"checkpoints"`
}

// FillMissing resolves citation counts for rows that have a DOI but no
// positive count, writing them into table in place.
//
// Rows without a DOI and rows whose Cites is already positive are skipped,
// so an interrupted run can be repeated. Every resolved row counts as an
// update, even when the count is 0. The table is checkpointed after every
// CheckpointEvery updates and once at the end. A checkpoint failure stops
// the run with an error. A resolver abort stops the run after a final
// checkpoint and returns the abort error.
func FillMissing(ctx context.Context, table *record.Table, resolver CountResolver, cp Checkpointer, opts FillOptions) (FillStats, error) {
	every := opts.CheckpointEvery
	if every <= 0 {
		every = DefaultCheckpointEvery
	}
	log := opts.Log
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	stats := FillStats{RunID: runID, Total: table.Len()}
	log = log.WithField("run_id", runID)
	log.WithField("papers", stats.Total).Info("filling missing citation counts")

	checkpoint := func() error {
		if err := cp.Checkpoint(*table); err != nil {
			return fmt.Errorf("checkpoint after %d updates: %w", stats.Updated, err)
		}
		stats.Checkpoints++
		return nil
	}

	for i := range table.Records {
		rec := &table.Records[i]

		doi := NormalizeDOI(rec.DOI)
		if doi == "" {
			stats.MissingDOI++
			continue
		}
		if rec.Cites > 0 {
			stats.AlreadyCited++
			continue
		}

		res, cached := cachedResult(opts, doi, log)
		if !cached {
			var err error
			res, err = resolver.ResolveDetailed(ctx, doi)
			if err != nil {
				log.WithError(err).Warn("stopping early")
				if cpErr := checkpoint(); cpErr != nil {
					return stats, cpErr
				}
				return stats, err
			}
		} else {
			stats.FromCache++
		}

		rec.Cites = res.Count
		stats.Updated++
		if res.Count > 0 {
			stats.Found++
		}
		log.WithFields(logrus.Fields{"row": i, "doi": doi, "cites": res.Count}).Info("updated citation count")

		if opts.Journal != nil && !cached {
			entry := storage.Resolution{DOI: doi, Cites: res.Count, Provider: res.Provider, RunID: runID, ResolvedAt: now()}
			if err := opts.Journal.Record(entry); err != nil {
				log.WithError(err).Warn("journal write failed")
			}
		}

		if stats.Updated%every == 0 {
			if err := checkpoint(); err != nil {
				return stats, err
			}
			log.WithField("updated", stats.Updated).Info("checkpoint saved")
		}
	}

	if err := checkpoint(); err != nil {
		return stats, err
	}
	log.WithFields(logrus.Fields{"updated": stats.Updated, "found": stats.Found}).Info("fill complete")
	return stats, nil
}

func cachedResult(opts FillOptions, doi string, log logrus.FieldLogger) (Result, bool) {
	if !opts.UseCache || opts.Journal == nil {
		return Result{}, false
	}
	entry, err := opts.Journal.Lookup(doi)
	if err != nil {
		log.WithError(err).Warn("journal lookup failed")
		return Result{}, false
	}
	if entry == nil || entry.Cites <= 0 {
		return Result{}, false
	}
	return Result{DOI: doi, Count: entry.Cites, Provider: entry.Provider}, true
}
