package usage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteTracker implements Tracker using SQLite via the pure-Go driver.
//
// Totals are kept pre-aggregated in a single upsert table keyed by
// (user_id, provider, model), so reads are cheap and the write path is one
// statement per settled response.
type SQLiteTracker struct {
	db     *sql.DB
	logger *slog.Logger
}

// SQLiteTrackerConfig configures the SQLite usage tracker.
type SQLiteTrackerConfig struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

const trackerSchema = `
CREATE TABLE IF NOT EXISTS usage_totals (
    user_id TEXT NOT NULL,
    provider TEXT NOT NULL,
    model TEXT NOT NULL,
    requests INTEGER NOT NULL DEFAULT 0,
    input_tokens INTEGER NOT NULL DEFAULT 0,
    output_tokens INTEGER NOT NULL DEFAULT 0,
    cost REAL NOT NULL DEFAULT 0,
    updated_at INTEGER NOT NULL,
    PRIMARY KEY (user_id, provider, model)
);
`

// NewSQLiteTracker creates a new SQLite usage tracker.
func NewSQLiteTracker(cfg SQLiteTrackerConfig) (*SQLiteTracker, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.DBPath, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(trackerSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger := slog.Default().With("component", "usage.sqlite")
	logger.Info("usage tracker initialized", "path", cfg.DBPath)

	return &SQLiteTracker{db: db, logger: logger}, nil
}

// Record applies one accounting entry.
func (t *SQLiteTracker) Record(ctx context.Context, rec *Record) error {
	_, err := t.db.ExecContext(ctx, `
		INSERT INTO usage_totals (user_id, provider, model, requests, input_tokens, output_tokens, cost, updated_at)
		VALUES (?, ?, ?, 1, ?, ?, ?, ?)
		ON CONFLICT(user_id, provider, model) DO UPDATE SET
			requests = requests + 1,
			input_tokens = input_tokens + excluded.input_tokens,
			output_tokens = output_tokens + excluded.output_tokens,
			cost = cost + excluded.cost,
			updated_at = excluded.updated_at
	`, rec.UserID, rec.Provider, rec.Model, rec.InputTokens, rec.OutputTokens, rec.Cost, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to record usage: %w", err)
	}
	return nil
}

// Summarize returns a user's accumulated usage.
func (t *SQLiteTracker) Summarize(ctx context.Context, userID string) ([]*Summary, error) {
	rows, err := t.db.QueryContext(ctx, `
		SELECT user_id, provider, model, requests, input_tokens, output_tokens, cost
		FROM usage_totals WHERE user_id = ?
		ORDER BY provider, model
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage: %w", err)
	}
	defer rows.Close()

	var out []*Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.UserID, &s.Provider, &s.Model, &s.Requests,
			&s.InputTokens, &s.OutputTokens, &s.Cost); err != nil {
			return nil, fmt.Errorf("failed to scan usage row: %w", err)
		}
		out = append(out, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read usage rows: %w", err)
	}
	return out, nil
}

// Close closes the database connection.
func (t *SQLiteTracker) Close() error {
	return t.db.Close()
}
