package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"rotor-hq/rotor/pkg/credential"
)

// SQLiteStore implements credential.Store using SQLite for persistence.
// It is suitable for single-instance deployments where credentials and
// their cooldown state must survive restarts.
//
// The store opens the database in WAL mode with a busy timeout and keeps
// a single connection, since SQLite only supports one writer.
type SQLiteStore struct {
	db *sql.DB

	listStmt     *sql.Stmt
	listAllStmt  *sql.Stmt
	markUsedStmt *sql.Stmt
	insertStmt   *sql.Stmt
	deleteStmt   *sql.Stmt
}

// SQLiteConfig configures the SQLite credential store.
type SQLiteConfig struct {
	// Path is the SQLite database file path.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds.
	BusyTimeout time.Duration
}

// NewSQLiteStore opens (creating if necessary) the credential database at
// the given path with default settings.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	return NewSQLiteStoreWithConfig(SQLiteConfig{Path: path})
}

// NewSQLiteStoreWithConfig opens the credential database with custom
// configuration.
func NewSQLiteStoreWithConfig(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	// modernc.org/sqlite takes pragmas in _pragma=name(value) form; the
	// mattn-style _journal_mode keys are silently ignored by this driver.
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)",
		cfg.Path, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single writer only.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLiteStore{db: db}

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

// initSchema creates the credentials table if it doesn't exist.
// last_used_at is a nullable Unix timestamp; NULL means never used.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS credentials (
		id TEXT PRIMARY KEY,
		secret TEXT NOT NULL,
		provider_type TEXT NOT NULL,
		last_used_at INTEGER,
		cooldown_seconds INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_credentials_provider ON credentials(provider_type);
	CREATE INDEX IF NOT EXISTS idx_credentials_last_used ON credentials(last_used_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// prepareStatements prepares SQL statements for reuse.
func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.listStmt, err = s.db.Prepare(`
		SELECT id, secret, provider_type, last_used_at, cooldown_seconds
		FROM credentials
		WHERE last_used_at IS NULL OR (last_used_at + cooldown_seconds) <= ?
		ORDER BY last_used_at IS NOT NULL, last_used_at ASC, id ASC
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare list statement: %w", err)
	}

	s.listAllStmt, err = s.db.Prepare(`
		SELECT id, secret, provider_type, last_used_at, cooldown_seconds
		FROM credentials
		ORDER BY id ASC
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare list-all statement: %w", err)
	}

	s.markUsedStmt, err = s.db.Prepare(`
		UPDATE credentials SET last_used_at = ? WHERE id = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare mark-used statement: %w", err)
	}

	s.insertStmt, err = s.db.Prepare(`
		INSERT INTO credentials (id, secret, provider_type, last_used_at, cooldown_seconds)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}

	s.deleteStmt, err = s.db.Prepare(`
		DELETE FROM credentials WHERE id = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare delete statement: %w", err)
	}

	return nil
}

// ListEligible returns eligible credentials matching the filter, ordered
// by last_used_at ascending with never-used entries first.
//
// The provider filter is applied in Go rather than with a dynamic IN
// clause so the hot-path statement stays prepared.
func (s *SQLiteStore) ListEligible(ctx context.Context, filter []string, asOf time.Time) ([]*credential.Credential, error) {
	rows, err := s.listStmt.QueryContext(ctx, asOf.Unix())
	if err != nil {
		return nil, &credential.StoreError{Op: "list_eligible", Cause: err}
	}
	defer rows.Close()

	var eligible []*credential.Credential
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, &credential.StoreError{Op: "list_eligible", Cause: err}
		}
		if c.MatchesFilter(filter) {
			eligible = append(eligible, c)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, &credential.StoreError{Op: "list_eligible", Cause: err}
	}

	return eligible, nil
}

// MarkUsed sets last_used_at for the credential with the given id.
func (s *SQLiteStore) MarkUsed(ctx context.Context, id string, usedAt time.Time) error {
	result, err := s.markUsedStmt.ExecContext(ctx, usedAt.Unix(), id)
	if err != nil {
		return &credential.StoreError{Op: "mark_used", Cause: err}
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return &credential.StoreError{Op: "mark_used", Cause: err}
	}
	if affected == 0 {
		return &credential.NotFoundError{ID: id}
	}
	return nil
}

// Insert adds a new credential.
func (s *SQLiteStore) Insert(ctx context.Context, c *credential.Credential) error {
	var lastUsed any
	if !c.LastUsedAt.IsZero() {
		lastUsed = c.LastUsedAt.Unix()
	}

	_, err := s.insertStmt.ExecContext(ctx,
		c.ID,
		c.Secret,
		c.ProviderType,
		lastUsed,
		int64(c.Cooldown/time.Second),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return &credential.StoreError{
				Op:    "insert",
				Cause: fmt.Errorf("credential %q already exists", c.ID),
			}
		}
		return &credential.StoreError{Op: "insert", Cause: err}
	}
	return nil
}

// All returns every credential ordered by id.
func (s *SQLiteStore) All(ctx context.Context) ([]*credential.Credential, error) {
	rows, err := s.listAllStmt.QueryContext(ctx)
	if err != nil {
		return nil, &credential.StoreError{Op: "all", Cause: err}
	}
	defer rows.Close()

	var out []*credential.Credential
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, &credential.StoreError{Op: "all", Cause: err}
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, &credential.StoreError{Op: "all", Cause: err}
	}
	return out, nil
}

// Delete removes a credential by id.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	result, err := s.deleteStmt.ExecContext(ctx, id)
	if err != nil {
		return &credential.StoreError{Op: "delete", Cause: err}
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return &credential.StoreError{Op: "delete", Cause: err}
	}
	if affected == 0 {
		return &credential.NotFoundError{ID: id}
	}
	return nil
}

// Close closes the prepared statements and the database.
func (s *SQLiteStore) Close() error {
	for _, stmt := range []*sql.Stmt{s.listStmt, s.listAllStmt, s.markUsedStmt, s.insertStmt, s.deleteStmt} {
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

// scanCredential reads one credentials row.
func scanCredential(rows *sql.Rows) (*credential.Credential, error) {
	var (
		c               credential.Credential
		lastUsed        sql.NullInt64
		cooldownSeconds int64
	)

	if err := rows.Scan(&c.ID, &c.Secret, &c.ProviderType, &lastUsed, &cooldownSeconds); err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	if lastUsed.Valid {
		c.LastUsedAt = time.Unix(lastUsed.Int64, 0)
	}
	c.Cooldown = time.Duration(cooldownSeconds) * time.Second

	return &c, nil
}
