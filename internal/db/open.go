package db

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/EternisAI/silo-license/internal/licenses"
	"github.com/EternisAI/silo-license/internal/store/memory"
	"github.com/EternisAI/silo-license/internal/store/postgres"
	"github.com/EternisAI/silo-license/internal/store/sqlite"
)

const DefaultURL = "sqlite://./licenses.db"

// Driver identifies the backing store selected by a database URL.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
	DriverMemory   Driver = "memory"
)

// ParseURL resolves a database URL to a driver and the DSN that driver
// expects. postgres:// is rewritten to postgresql://; sqlite:// and
// sqlite:/// both map to a file path.
func ParseURL(url string) (Driver, string, error) {
	if url == "" {
		url = DefaultURL
	}

	switch {
	case strings.HasPrefix(url, "postgres://"):
		return DriverPostgres, "postgresql://" + strings.TrimPrefix(url, "postgres://"), nil
	case strings.HasPrefix(url, "postgresql://"):
		return DriverPostgres, url, nil
	case strings.HasPrefix(url, "sqlite:///"):
		return DriverSQLite, strings.TrimPrefix(url, "sqlite:///"), nil
	case strings.HasPrefix(url, "sqlite://"):
		return DriverSQLite, strings.TrimPrefix(url, "sqlite://"), nil
	case strings.HasPrefix(url, "memory://"):
		return DriverMemory, "", nil
	default:
		return "", "", fmt.Errorf("unsupported database url scheme: %q", url)
	}
}

// Open migrates and opens the store selected by cfg.Url. The returned close
// function releases the underlying connections.
func Open(ctx context.Context, cfg Config) (licenses.Store, func(), error) {
	driver, dsn, err := ParseURL(cfg.Url)
	if err != nil {
		return nil, nil, err
	}

	switch driver {
	case DriverPostgres:
		if err := RunMigrations(dsn, cfg.Schema); err != nil {
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		pool, err := InitDB(ctx, dsn, cfg.Schema)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewStore(pool), pool.Close, nil

	case DriverSQLite:
		conn, err := OpenSQLite(dsn)
		if err != nil {
			return nil, nil, err
		}
		if err := RunSQLiteMigrations(conn.DB); err != nil {
			conn.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return sqlite.NewStore(conn), func() {
			if err := conn.Close(); err != nil {
				slog.Error("Failed to close SQLite database", "error", err)
			}
		}, nil

	default:
		slog.Warn("Using in-memory license store, data will not survive a restart")
		return memory.NewStore(), func() {}, nil
	}
}
