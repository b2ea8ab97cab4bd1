package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/parallax.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite storage backend.
// It initializes the database schema and enables WAL mode if configured.
func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "store.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStore{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite store initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *SQLiteStore) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return NewStorageError("sqlite", "enable_wal", err)
		}
		s.logger.Debug("WAL mode enabled")
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return NewStorageError("sqlite", "set_busy_timeout", err)
	}

	// Cascading deletes rely on foreign key enforcement
	if _, err := s.db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		return NewStorageError("sqlite", "enable_foreign_keys", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return NewStorageError("sqlite", "create_schema", err)
	}
	s.logger.Debug("database schema created")

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}
	s.logger.Debug("schema version verified", "version", version)

	return nil
}

// CreateConversation inserts a new conversation.
func (s *SQLiteStore) CreateConversation(ctx context.Context, c *Conversation) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations (id, user_id, title, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Title, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return NewStorageError("sqlite", "create_conversation", err)
	}
	return nil
}

// GetConversation returns a conversation by id.
func (s *SQLiteStore) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	var c Conversation
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, created_at, updated_at FROM conversations WHERE id = ?`, id,
	).Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Kind: "conversation", ID: id}
	}
	if err != nil {
		return nil, NewStorageError("sqlite", "get_conversation", err)
	}
	return &c, nil
}

// ListConversations returns a user's conversations, most recently updated first.
func (s *SQLiteStore) ListConversations(ctx context.Context, userID string) ([]*Conversation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, title, created_at, updated_at FROM conversations
		 WHERE user_id = ? ORDER BY updated_at DESC`, userID,
	)
	if err != nil {
		return nil, NewStorageError("sqlite", "list_conversations", err)
	}
	defer rows.Close()

	var out []*Conversation
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, NewStorageError("sqlite", "scan_conversation", err)
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "list_conversations", err)
	}
	return out, nil
}

// TouchConversation bumps a conversation's updated_at timestamp.
func (s *SQLiteStore) TouchConversation(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE conversations SET updated_at = ? WHERE id = ?`, at.UTC(), id,
	)
	if err != nil {
		return NewStorageError("sqlite", "touch_conversation", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{Kind: "conversation", ID: id}
	}
	return nil
}

// DeleteConversation removes a conversation and, via cascade, its queries
// and responses.
func (s *SQLiteStore) DeleteConversation(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return NewStorageError("sqlite", "delete_conversation", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{Kind: "conversation", ID: id}
	}
	return nil
}

// DeleteConversationsBefore removes conversations last updated before the cutoff.
func (s *SQLiteStore) DeleteConversationsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM conversations WHERE updated_at < ?`, cutoff.UTC(),
	)
	if err != nil {
		return 0, NewStorageError("sqlite", "delete_conversations_before", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, NewStorageError("sqlite", "delete_conversations_before", err)
	}
	return n, nil
}

// CreateQuery inserts a new query.
func (s *SQLiteStore) CreateQuery(ctx context.Context, q *Query) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO queries (id, conversation_id, prompt, system_prompt, created_at) VALUES (?, ?, ?, ?, ?)`,
		q.ID, q.ConversationID, q.Prompt, nullableString(q.SystemPrompt), q.CreatedAt,
	)
	if err != nil {
		return NewStorageError("sqlite", "create_query", err)
	}
	return nil
}

// ListQueries returns a conversation's queries in submission order.
func (s *SQLiteStore) ListQueries(ctx context.Context, conversationID string) ([]*Query, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, conversation_id, prompt, system_prompt, created_at FROM queries
		 WHERE conversation_id = ? ORDER BY created_at ASC`, conversationID,
	)
	if err != nil {
		return nil, NewStorageError("sqlite", "list_queries", err)
	}
	defer rows.Close()

	var out []*Query
	for rows.Next() {
		var q Query
		var systemPrompt sql.NullString
		if err := rows.Scan(&q.ID, &q.ConversationID, &q.Prompt, &systemPrompt, &q.CreatedAt); err != nil {
			return nil, NewStorageError("sqlite", "scan_query", err)
		}
		q.SystemPrompt = systemPrompt.String
		out = append(out, &q)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "list_queries", err)
	}
	return out, nil
}

// CreateResponse inserts a settled response row.
func (s *SQLiteStore) CreateResponse(ctx context.Context, r *Response) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO responses (id, query_id, provider, model, content, token_count, duration_ms, cost, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.QueryID, r.Provider, r.Model, r.Content,
		nullableInt(r.TokenCount), r.DurationMs, nullableFloat(r.Cost),
		nullableString(r.Error), r.CreatedAt,
	)
	if err != nil {
		return NewStorageError("sqlite", "create_response", err)
	}
	return nil
}

// ListResponses returns a query's responses in insertion order.
func (s *SQLiteStore) ListResponses(ctx context.Context, queryID string) ([]*Response, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query_id, provider, model, content, token_count, duration_ms, cost, error, created_at
		 FROM responses WHERE query_id = ? ORDER BY created_at ASC, id ASC`, queryID,
	)
	if err != nil {
		return nil, NewStorageError("sqlite", "list_responses", err)
	}
	defer rows.Close()

	var out []*Response
	for rows.Next() {
		var r Response
		var tokenCount sql.NullInt64
		var cost sql.NullFloat64
		var errMsg sql.NullString
		if err := rows.Scan(&r.ID, &r.QueryID, &r.Provider, &r.Model, &r.Content,
			&tokenCount, &r.DurationMs, &cost, &errMsg, &r.CreatedAt); err != nil {
			return nil, NewStorageError("sqlite", "scan_response", err)
		}
		if tokenCount.Valid {
			v := int(tokenCount.Int64)
			r.TokenCount = &v
		}
		if cost.Valid {
			v := cost.Float64
			r.Cost = &v
		}
		r.Error = errMsg.String
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "list_responses", err)
	}
	return out, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// nullableString converts empty strings to NULL.
func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// nullableInt converts nil pointers to NULL.
func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// nullableFloat converts nil pointers to NULL.
func nullableFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
