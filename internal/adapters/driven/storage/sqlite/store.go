package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/speakmath/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/speakmath/internal/core/domain"
	"github.com/custodia-labs/speakmath/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.TokenStore = (*Store)(nil)

// Store persists unrecognized notation tokens in a SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store in the specified data directory.
// If dataDir is empty, defaults to ~/.speakmath/data/tokens.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".speakmath", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "tokens.db")

	// WAL mode lets the MCP server and CLI share the file.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_tokens.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// Record upserts every token in one transaction, incrementing its count.
func (s *Store) Record(ctx context.Context, tokens []string, sample, label string, at time.Time) error {
	if len(tokens) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO unrecognized_tokens (token, count, sample, context, first_seen, last_seen)
		VALUES (?, 1, ?, ?, ?, ?)
		ON CONFLICT(token) DO UPDATE SET
			count = count + 1,
			sample = excluded.sample,
			context = excluded.context,
			last_seen = excluded.last_seen
	`)
	if err != nil {
		return fmt.Errorf("preparing token upsert: %w", err)
	}
	defer stmt.Close()

	at = at.UTC()
	for _, tok := range tokens {
		if _, err := stmt.ExecContext(ctx, tok, sample, label, at, at); err != nil {
			return fmt.Errorf("recording token %s: %w", tok, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing tokens: %w", err)
	}
	return nil
}

// Get retrieves the record for one token.
func (s *Store) Get(ctx context.Context, token string) (*domain.TokenRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT token, count, sample, context, first_seen, last_seen
		FROM unrecognized_tokens WHERE token = ?
	`, token)

	rec, err := scanToken(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning token: %w", err)
	}
	return rec, nil
}

// List returns records ordered by descending count. A limit of zero or
// less returns every record.
func (s *Store) List(ctx context.Context, limit int) ([]domain.TokenRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT token, count, sample, context, first_seen, last_seen
		FROM unrecognized_tokens
		ORDER BY count DESC, token
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying tokens: %w", err)
	}
	defer rows.Close()

	var out []domain.TokenRecord
	for rows.Next() {
		rec, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning token: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// Clear deletes every record.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM unrecognized_tokens"); err != nil {
		return fmt.Errorf("clearing tokens: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanToken(row scanner) (*domain.TokenRecord, error) {
	var rec domain.TokenRecord
	var firstSeen, lastSeen sql.NullTime
	if err := row.Scan(&rec.Token, &rec.Count, &rec.Sample, &rec.Context, &firstSeen, &lastSeen); err != nil {
		return nil, err
	}
	if firstSeen.Valid {
		rec.FirstSeen = firstSeen.Time
	}
	if lastSeen.Valid {
		rec.LastSeen = lastSeen.Time
	}
	return &rec, nil
}
