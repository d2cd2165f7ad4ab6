package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Resolution is one journaled citation lookup.
type Resolution struct {
	DOI        string
	Cites      int
	Provider   string // Empty when no provider had a positive count
	RunID      string
	ResolvedAt time.Time
}

// Journal wraps a SQLite database recording citation lookups across runs.
type Journal struct {
	db *sql.DB
}

// OpenJournal opens or creates a journal database at path.
func OpenJournal(path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createJournalSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating journal schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

func createJournalSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS resolutions (
			doi TEXT PRIMARY KEY,
			cites INTEGER NOT NULL,
			provider TEXT,
			run_id TEXT,
			resolved_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_resolutions_provider ON resolutions(provider);
	`
	_, err := db.Exec(schema)
	return err
}

// Record stores res, replacing any earlier lookup of the same DOI.
func (j *Journal) Record(res Resolution) error {
	if res.ResolvedAt.IsZero() {
		res.ResolvedAt = time.Now()
	}
	_, err := j.db.Exec(`
		INSERT OR REPLACE INTO resolutions (doi, cites, provider, run_id, resolved_at)
		VALUES (?, ?, ?, ?, ?)
	`, res.DOI, res.Cites, nullableStringValue(res.Provider), nullableStringValue(res.RunID), res.ResolvedAt.Unix())
	if err != nil {
		return fmt.Errorf("recording %s: %w", res.DOI, err)
	}
	return nil
}

// Lookup returns the journaled resolution for doi, or nil if there is none.
func (j *Journal) Lookup(doi string) (*Resolution, error) {
	var res Resolution
	var provider, runID sql.NullString
	var resolvedAt int64

	err := j.db.QueryRow(`
		SELECT doi, cites, provider, run_id, resolved_at
		FROM resolutions
		WHERE doi = ?
	`, doi).Scan(&res.DOI, &res.Cites, &provider, &runID, &resolvedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	res.Provider = provider.String
	res.RunID = runID.String
	res.ResolvedAt = time.Unix(resolvedAt, 0)
	return &res, nil
}

// ProviderCounts returns how many journaled DOIs each provider resolved.
// Lookups that found nothing are counted under "none".
func (j *Journal) ProviderCounts() (map[string]int, error) {
	rows, err := j.db.Query(`
		SELECT COALESCE(provider, 'none'), COUNT(*)
		FROM resolutions
		GROUP BY COALESCE(provider, 'none')
	`)
	if err != nil {
		return nil, fmt.Errorf("counting providers: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var provider string
		var n int
		if err := rows.Scan(&provider, &n); err != nil {
			return nil, err
		}
		counts[provider] = n
	}
	return counts, rows.Err()
}

// Count returns the number of journaled DOIs.
func (j *Journal) Count() (int, error) {
	var count int
	err := j.db.QueryRow("SELECT COUNT(*) FROM resolutions").Scan(&count)
	return count, err
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
