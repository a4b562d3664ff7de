// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store caches reconciled searches in SQLite so that they can be
// exported after the fact. The cache is bounded: adding beyond MaxEntries
// evicts the oldest search, and searches older than Expiry are gone.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/litbridge/internal/logger"
	"github.com/pdiddy/litbridge/pkg/types"
)

var (
	// ErrNotFound reports an unknown search identifier.
	ErrNotFound = errors.New("search not found")

	// ErrExpired reports a search that aged out of the cache.
	ErrExpired = errors.New("search expired")
)

const (
	defaultMaxEntries = 100
	defaultExpiry     = 24 * time.Hour
)

// Entry is one cached search.
type Entry struct {
	ID        string
	CreatedAt time.Time
	Request   types.SearchRequest
	Coverage  types.Coverage
	Papers    []types.Paper
	Warnings  []string
}

// Response returns the entry in API shape.
func (e Entry) Response() types.SearchResponse {
	return types.SearchResponse{
		Coverage: e.Coverage,
		Papers:   e.Papers,
		SearchID: e.ID,
		Warnings: e.Warnings,
	}
}

// Summary describes a cached search without its papers.
type Summary struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	PubMedQuery string    `json:"pubmed_query"`
	Papers      int       `json:"papers"`
}

// Store manages the search cache database.
type Store struct {
	db         *sql.DB
	maxEntries int
	expiry     time.Duration

	// now is the clock; tests replace it.
	now func() time.Time
}

// Open opens or creates the cache database at cfg.Path and creates the
// schema if it does not exist.
func Open(cfg types.CacheConfig) (*Store, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:         db,
		maxEntries: cfg.MaxEntries,
		expiry:     cfg.Expiry,
		now:        time.Now,
	}
	if s.maxEntries <= 0 {
		s.maxEntries = defaultMaxEntries
	}
	if s.expiry <= 0 {
		s.expiry = defaultExpiry
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS searches (
			id TEXT PRIMARY KEY,
			created_at INTEGER NOT NULL,
			pubmed_query TEXT,
			request TEXT NOT NULL,
			coverage TEXT NOT NULL,
			papers TEXT NOT NULL,
			paper_count INTEGER NOT NULL,
			warnings TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_searches_created_at ON searches(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Add stores e under a new identifier and returns it. Expired searches are
// purged and the oldest searches evicted so that at most MaxEntries remain.
func (s *Store) Add(ctx context.Context, e Entry) (string, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}

	request, err := json.Marshal(e.Request)
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}
	coverage, err := json.Marshal(e.Coverage)
	if err != nil {
		return "", fmt.Errorf("encoding coverage: %w", err)
	}
	papers, err := json.Marshal(e.Papers)
	if err != nil {
		return "", fmt.Errorf("encoding papers: %w", err)
	}
	warnings, err := json.Marshal(e.Warnings)
	if err != nil {
		return "", fmt.Errorf("encoding warnings: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM searches WHERE created_at < ?`, s.cutoff()); err != nil {
		return "", fmt.Errorf("purging expired searches: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO searches (id, created_at, pubmed_query, request, coverage, papers, paper_count, warnings)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.CreatedAt.UnixNano(), e.Request.PubMedQuery,
		string(request), string(coverage), string(papers), len(e.Papers), string(warnings),
	); err != nil {
		return "", fmt.Errorf("inserting search %s: %w", e.ID, err)
	}

	res, err := tx.ExecContext(ctx,
		`DELETE FROM searches WHERE id NOT IN (
			SELECT id FROM searches ORDER BY created_at DESC, rowid DESC LIMIT ?
		)`, s.maxEntries)
	if err != nil {
		return "", fmt.Errorf("evicting old searches: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing search: %w", err)
	}

	if n, _ := res.RowsAffected(); n > 0 {
		logger.Named("store").Debug().Int64("evicted", n).Msg("cache full, evicted oldest searches")
	}
	return e.ID, nil
}

// Get returns the search stored under id. A search older than the expiry
// is deleted and reported as ErrExpired.
func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	var (
		created                   int64
		request, coverage, papers string
		warnings                  sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT created_at, request, coverage, papers, warnings FROM searches WHERE id = ?`, id,
	).Scan(&created, &request, &coverage, &papers, &warnings)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("querying search %s: %w", id, err)
	}

	if created < s.cutoff() {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM searches WHERE id = ?`, id); err != nil {
			return Entry{}, fmt.Errorf("deleting expired search %s: %w", id, err)
		}
		return Entry{}, fmt.Errorf("%w: %s", ErrExpired, id)
	}

	e := Entry{ID: id, CreatedAt: time.Unix(0, created)}
	if err := json.Unmarshal([]byte(request), &e.Request); err != nil {
		return Entry{}, fmt.Errorf("decoding request: %w", err)
	}
	if err := json.Unmarshal([]byte(coverage), &e.Coverage); err != nil {
		return Entry{}, fmt.Errorf("decoding coverage: %w", err)
	}
	if err := json.Unmarshal([]byte(papers), &e.Papers); err != nil {
		return Entry{}, fmt.Errorf("decoding papers: %w", err)
	}
	if warnings.Valid {
		if err := json.Unmarshal([]byte(warnings.String), &e.Warnings); err != nil {
			return Entry{}, fmt.Errorf("decoding warnings: %w", err)
		}
	}
	return e, nil
}

// List returns the live searches, newest first.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, pubmed_query, paper_count FROM searches
		 WHERE created_at >= ? ORDER BY created_at DESC, rowid DESC`, s.cutoff())
	if err != nil {
		return nil, fmt.Errorf("listing searches: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum     Summary
			created int64
			query   sql.NullString
		)
		if err := rows.Scan(&sum.ID, &created, &query, &sum.Papers); err != nil {
			return nil, fmt.Errorf("scanning search: %w", err)
		}
		sum.CreatedAt = time.Unix(0, created)
		sum.PubMedQuery = query.String
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Cleanup deletes expired searches and reports how many were removed.
func (s *Store) Cleanup(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM searches WHERE created_at < ?`, s.cutoff())
	if err != nil {
		return 0, fmt.Errorf("purging expired searches: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (s *Store) cutoff() int64 {
	return s.now().Add(-s.expiry).UnixNano()
}
