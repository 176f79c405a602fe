// Package store persists platforms and recorded ask results in sqlite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"mentionlab/internal/platform"
)

// ErrNotFound aliases the contract-level sentinel.
var ErrNotFound = platform.ErrNotFound

const schema = `
CREATE TABLE IF NOT EXISTS platforms (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	url           TEXT NOT NULL,
	is_logged_in  INTEGER NOT NULL DEFAULT 0,
	session_data  TEXT,
	updated_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS queries (
	id          TEXT PRIMARY KEY,
	platform_id TEXT NOT NULL,
	question    TEXT NOT NULL,
	response    TEXT NOT NULL,
	sources     TEXT,
	created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (platform_id) REFERENCES platforms(id)
);
`

// Store wraps the sqlite database.
type Store struct {
	db *sql.DB
}

// Open opens (and migrates) the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Seed inserts the supported platforms that are not present yet.
func (s *Store) Seed(ctx context.Context) error {
	for _, p := range platform.SupportedPlatforms {
		_, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO platforms (id, name, url, is_logged_in) VALUES (?, ?, ?, 0)`,
			p.ID, p.Name, p.URL)
		if err != nil {
			return fmt.Errorf("seed platform %s: %w", p.ID, err)
		}
	}
	return nil
}

// Get returns one platform record.
func (s *Store) Get(ctx context.Context, id string) (*platform.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, url, is_logged_in, COALESCE(session_data, '') FROM platforms WHERE id = ?`, id)

	var rec platform.Record
	var loggedIn int
	if err := row.Scan(&rec.ID, &rec.Name, &rec.URL, &loggedIn, &rec.SessionData); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get platform: %w", err)
	}
	rec.IsLoggedIn = loggedIn != 0
	return &rec, nil
}

// List returns all platform records ordered by id.
func (s *Store) List(ctx context.Context) ([]platform.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, url, is_logged_in, COALESCE(session_data, '') FROM platforms ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list platforms: %w", err)
	}
	defer rows.Close()

	var records []platform.Record
	for rows.Next() {
		var rec platform.Record
		var loggedIn int
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.URL, &loggedIn, &rec.SessionData); err != nil {
			return nil, err
		}
		rec.IsLoggedIn = loggedIn != 0
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SaveSession writes the serialized storage state back to the record.
func (s *Store) SaveSession(ctx context.Context, id, sessionData string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE platforms SET session_data = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		sessionData, id)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return requireRow(res)
}

// SetLoggedIn flips the login flag; logging out also clears the session.
func (s *Store) SetLoggedIn(ctx context.Context, id string, loggedIn bool) error {
	var res sql.Result
	var err error
	if loggedIn {
		res, err = s.db.ExecContext(ctx,
			`UPDATE platforms SET is_logged_in = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	} else {
		res, err = s.db.ExecContext(ctx,
			`UPDATE platforms SET is_logged_in = 0, session_data = NULL, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	}
	if err != nil {
		return fmt.Errorf("set logged in: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Query is one recorded ask result.
type Query struct {
	ID         string
	PlatformID string
	Question   string
	Response   string
	Sources    string
	CreatedAt  time.Time
}

// RecordQuery stores a successful ask result and returns its id.
func (s *Store) RecordQuery(ctx context.Context, platformID, question, response, sourcesJSON string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO queries (id, platform_id, question, response, sources) VALUES (?, ?, ?, ?, ?)`,
		id, platformID, question, response, sourcesJSON)
	if err != nil {
		return "", fmt.Errorf("record query: %w", err)
	}
	return id, nil
}

// QueriesForPlatform returns recorded results, newest first.
func (s *Store) QueriesForPlatform(ctx context.Context, platformID string) ([]Query, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, platform_id, question, response, COALESCE(sources, ''), created_at
		 FROM queries WHERE platform_id = ? ORDER BY created_at DESC`, platformID)
	if err != nil {
		return nil, fmt.Errorf("list queries: %w", err)
	}
	defer rows.Close()

	var out []Query
	for rows.Next() {
		var q Query
		if err := rows.Scan(&q.ID, &q.PlatformID, &q.Question, &q.Response, &q.Sources, &q.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}
