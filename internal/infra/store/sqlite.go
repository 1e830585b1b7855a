package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	_ "modernc.org/sqlite"

	"github.com/osa030/lyricpost/internal/domain/track"
)

const schema = `
CREATE TABLE IF NOT EXISTS play_history (
	user_name   TEXT    NOT NULL,
	position    INTEGER NOT NULL,
	title       TEXT    NOT NULL,
	artist      TEXT    NOT NULL,
	progress_ms INTEGER NOT NULL,
	PRIMARY KEY (user_name, position)
)`

// SQLiteStore keeps history rows in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and creates when needed) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.Wrap(err, "failed to create database directory")
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	// A single connection keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to create schema")
	}
	return &SQLiteStore{db: db}, nil
}

// Load implements Store.
func (s *SQLiteStore) Load(ctx context.Context, user string) (track.History, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT title, artist, progress_ms FROM play_history WHERE user_name = ? ORDER BY position`, user)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query history of %s", user)
	}
	defer rows.Close()

	h := track.History{}
	for rows.Next() {
		var r track.PlayRecord
		if err := rows.Scan(&r.Title, &r.Artist, &r.ProgressMs); err != nil {
			return nil, errors.Wrap(err, "failed to scan history row")
		}
		h = append(h, r)
	}
	return h, errors.Wrap(rows.Err(), "failed to read history rows")
}

// Save implements Store.
func (s *SQLiteStore) Save(ctx context.Context, user string, h track.History) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM play_history WHERE user_name = ?`, user); err != nil {
		return errors.Wrapf(err, "failed to clear history of %s", user)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO play_history (user_name, position, title, artist, progress_ms) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "failed to prepare insert")
	}
	defer stmt.Close()

	for i, r := range h {
		if _, err := stmt.ExecContext(ctx, user, i, r.Title, r.Artist, r.ProgressMs); err != nil {
			return errors.Wrapf(err, "failed to insert history row %d", i)
		}
	}

	return errors.Wrap(tx.Commit(), "failed to commit history")
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
