// Package history keeps an append-only SQLite log of assembled analyses.
// The pipeline never reads it back.
package history

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/raysh454/phishscan/internal/logging"
	"github.com/raysh454/phishscan/internal/model"
)

//go:embed schema.sql
var schemaFS embed.FS

var (
	ErrNotFound  = errors.New("analysis not found")
	ErrDuplicate = errors.New("analysis already recorded")
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 200
)

// Summary is one row of List.
type Summary struct {
	ID          string    `json:"id"`
	Target      string    `json:"target"`
	Findings    int       `json:"findings"`
	FaviconHash string    `json:"favicon_hash,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

type ListOptions struct {
	Limit int
	// FaviconHash restricts the listing to analyses whose icon matched.
	FaviconHash string
}

type Store struct {
	db     *sql.DB
	logger logging.Logger
}

// Open opens (creating if needed) the database file at path.
func Open(path string, logger logging.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("history: empty database path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure dir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA journal_mode = WAL; PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragmas: %w", err)
	}
	s, err := NewStore(db, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewStore runs migrations from schema.sql on db.
func NewStore(db *sql.DB, logger logging.Logger) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}
	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema.sql: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		return nil, fmt.Errorf("failed to execute schema: %w", err)
	}
	return &Store{db: db, logger: logger.With(logging.Field{Key: "component", Value: "history"})}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Save records an assembled result.
func (s *Store) Save(ctx context.Context, res *model.AnalysisResult) error {
	if res == nil || res.ID == "" {
		return fmt.Errorf("history: result without id")
	}
	blob, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	var hash sql.NullString
	if res.Favicon != nil {
		hash = sql.NullString{String: res.Favicon.Hash, Valid: true}
	}

	out, err := s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, target, findings, favicon_hash, started_at, completed_at, result)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(id) DO NOTHING`,
		res.ID, res.Target, len(res.Heuristics), hash,
		res.StartedAt.UnixNano(), res.CompletedAt.UnixNano(), string(blob),
	)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	if n, err := out.RowsAffected(); err == nil && n == 0 {
		return ErrDuplicate
	}
	s.logger.Debug("analysis recorded",
		logging.Field{Key: "id", Value: res.ID},
		logging.Field{Key: "target", Value: res.Target})
	return nil
}

// Get returns the stored result, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*model.AnalysisResult, error) {
	var blob string
	err := s.db.QueryRowContext(ctx, `SELECT result FROM analyses WHERE id = ? LIMIT 1`, id).Scan(&blob)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var res model.AnalysisResult
	if err := json.Unmarshal([]byte(blob), &res); err != nil {
		return nil, fmt.Errorf("decode analysis %s: %w", id, err)
	}
	return &res, nil
}

// List returns the most recent analyses first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Summary, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	query := `SELECT id, target, findings, favicon_hash, started_at, completed_at FROM analyses`
	args := []any{}
	if opts.FaviconHash != "" {
		query += ` WHERE favicon_hash = ?`
		args = append(args, opts.FaviconHash)
	}
	query += ` ORDER BY started_at DESC, id LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var (
			sum                Summary
			hash               sql.NullString
			started, completed int64
		)
		if err := rows.Scan(&sum.ID, &sum.Target, &sum.Findings, &hash, &started, &completed); err != nil {
			return nil, err
		}
		sum.FaviconHash = hash.String
		sum.StartedAt = time.Unix(0, started).UTC()
		sum.CompletedAt = time.Unix(0, completed).UTC()
		out = append(out, sum)
	}
	return out, rows.Err()
}
