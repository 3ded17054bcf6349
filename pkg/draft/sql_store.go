package draft

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"  // Postgres Driver
	_ "modernc.org/sqlite" // SQLite Driver
)

// Dialect selects placeholder syntax for SQLStore.
type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

func (d Dialect) String() string {
	if d == DialectPostgres {
		return "postgres"
	}
	return "sqlite"
}

// SQLStore keeps draft slots in a `drafts` table.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

// NewSQLStore wraps db and creates the drafts table when missing.
func NewSQLStore(ctx context.Context, db *sql.DB, dialect Dialect) (*SQLStore, error) {
	s := &SQLStore{db: db, dialect: dialect, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	query := `
    CREATE TABLE IF NOT EXISTS drafts (
        slot TEXT PRIMARY KEY,
        value TEXT NOT NULL,
        updated_at TIMESTAMP NOT NULL
    );`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to migrate drafts table: %w", err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	query := s.rebind("SELECT value FROM drafts WHERE slot = ?")

	var value string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get draft: %w", err)
	}
	return value, true, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	query := s.rebind(`
		INSERT INTO drafts (slot, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (slot) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at`)

	if _, err := s.db.ExecContext(ctx, query, key, value, s.now().UTC()); err != nil {
		return fmt.Errorf("failed to persist draft: %w", err)
	}
	return nil
}

func (s *SQLStore) Remove(ctx context.Context, key string) error {
	query := s.rebind("DELETE FROM drafts WHERE slot = ?")
	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("failed to remove draft: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	out := make([]byte, 0, len(query)+8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			out = append(out, fmt.Sprintf("$%d", n)...)
			continue
		}
		out = append(out, query[i])
	}
	return string(out)
}
