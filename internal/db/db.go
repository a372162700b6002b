package db

import (
	"fmt"
	"log/slog"

	_ "github.com/glebarez/go-sqlite"
	"github.com/jmoiron/sqlx"
)

const matchSchema = `
CREATE TABLE IF NOT EXISTS matches (
	id TEXT PRIMARY KEY,
	room_id TEXT NOT NULL,
	winner_id INTEGER NOT NULL,
	winner_session TEXT NOT NULL,
	loser_session TEXT NOT NULL,
	shots INTEGER NOT NULL,
	started_at TEXT NOT NULL,
	finished_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_matches_finished_at ON matches(finished_at);`

// Connect opens the SQLite database at dsn and makes sure the schema exists.
// The pool is limited to one connection so that ":memory:" databases are
// shared by every query.
func Connect(dsn string) (*sqlx.DB, error) {
	pool, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	pool.SetMaxOpenConns(1)

	if _, err := pool.Exec(matchSchema); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("failed to create matches table: %w", err)
	}

	slog.Info("DB connection initialized and schema verified.", "dsn", dsn)
	return pool, nil
}
