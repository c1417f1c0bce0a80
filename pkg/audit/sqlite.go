package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStorage implements Storage using SQLite. It follows the same
// single-writer setup as the credential store: WAL mode, busy timeout,
// one connection.
type SQLiteStorage struct {
	db *sql.DB

	insertStmt *sql.Stmt
	recentStmt *sql.Stmt
	countStmt  *sql.Stmt
	pruneStmt  *sql.Stmt
}

// SQLiteConfig configures the SQLite audit storage.
type SQLiteConfig struct {
	// Path is the SQLite database file path.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds.
	BusyTimeout time.Duration
}

// NewSQLiteStorage opens (creating if necessary) the audit database at
// the given path.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	return NewSQLiteStorageWithConfig(SQLiteConfig{Path: path})
}

// NewSQLiteStorageWithConfig opens the audit database with custom
// configuration.
func NewSQLiteStorageWithConfig(cfg SQLiteConfig) (*SQLiteStorage, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	// modernc.org/sqlite takes pragmas in _pragma=name(value) form.
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)",
		cfg.Path, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLiteStorage{db: db}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return s, nil
}

func (s *SQLiteStorage) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS logs (
		id TEXT PRIMARY KEY,
		credential_id TEXT NOT NULL,
		provider_type TEXT NOT NULL,
		system_prompt TEXT NOT NULL,
		prompt TEXT NOT NULL,
		outcome TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_logs_created_at ON logs(created_at);
	CREATE INDEX IF NOT EXISTS idx_logs_credential ON logs(credential_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStorage) prepareStatements() error {
	var err error

	s.insertStmt, err = s.db.Prepare(`
		INSERT INTO logs (id, credential_id, provider_type, system_prompt, prompt, outcome, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}

	s.recentStmt, err = s.db.Prepare(`
		SELECT id, credential_id, provider_type, system_prompt, prompt, outcome, created_at
		FROM logs
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare recent statement: %w", err)
	}

	s.countStmt, err = s.db.Prepare(`SELECT COUNT(*) FROM logs`)
	if err != nil {
		return fmt.Errorf("failed to prepare count statement: %w", err)
	}

	s.pruneStmt, err = s.db.Prepare(`DELETE FROM logs WHERE created_at < ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare prune statement: %w", err)
	}

	return nil
}

// Store persists one entry.
func (s *SQLiteStorage) Store(ctx context.Context, e *Entry) error {
	_, err := s.insertStmt.ExecContext(ctx,
		e.ID,
		e.CredentialID,
		e.ProviderType,
		e.SystemPrompt,
		e.Prompt,
		e.Outcome,
		e.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store audit entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *SQLiteStorage) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.recentStmt.QueryContext(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		var (
			e         Entry
			createdAt int64
		)
		if err := rows.Scan(&e.ID, &e.CredentialID, &e.ProviderType, &e.SystemPrompt, &e.Prompt, &e.Outcome, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		e.CreatedAt = time.Unix(createdAt, 0)
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit entries: %w", err)
	}
	return out, nil
}

// Count returns the number of stored entries.
func (s *SQLiteStorage) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.countStmt.QueryRowContext(ctx).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count audit entries: %w", err)
	}
	return n, nil
}

// PruneBefore deletes entries created before the cutoff.
func (s *SQLiteStorage) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.pruneStmt.ExecContext(ctx, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to prune audit entries: %w", err)
	}
	return result.RowsAffected()
}

// Close closes the prepared statements and the database.
func (s *SQLiteStorage) Close() error {
	for _, stmt := range []*sql.Stmt{s.insertStmt, s.recentStmt, s.countStmt, s.pruneStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}
	if s.db != nil {
		_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
		return s.db.Close()
	}
	return nil
}
