package draft

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"
)

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Options selects and configures a Store backend.
type Options struct {
	Backend string
	DSN     string
	// TTL applies to the redis backend only.
	TTL time.Duration
}

// Handle is a Store that owns resources.
type Handle interface {
	Store
	io.Closer
}

// Open constructs the backend named in opts.
func Open(ctx context.Context, opts Options) (Handle, error) {
	switch opts.Backend {
	case BackendMemory, "":
		return NewMemoryStore(), nil
	case BackendSQLite:
		db, err := sql.Open("sqlite", opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite db: %w", err)
		}
		// A single connection keeps :memory: databases coherent.
		db.SetMaxOpenConns(1)
		return openSQL(ctx, db, DialectSQLite)
	case BackendPostgres:
		db, err := sql.Open("postgres", opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres db: %w", err)
		}
		return openSQL(ctx, db, DialectPostgres)
	case BackendRedis:
		s, err := NewRedisStore(opts.DSN, opts.TTL)
		if err != nil {
			return nil, err
		}
		if err := s.Ping(ctx); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("redis unreachable: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown draft backend %q", opts.Backend)
	}
}

func openSQL(ctx context.Context, db *sql.DB, dialect Dialect) (Handle, error) {
	s, err := NewSQLStore(ctx, db, dialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}
