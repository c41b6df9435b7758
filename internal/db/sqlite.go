package db

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// OpenSQLite opens the SQLite database at path. An empty path or ":memory:"
// opens a private in-memory database.
func OpenSQLite(path string) (*sqlx.DB, error) {
	var dsn string
	if path == "" || path == ":memory:" {
		dsn = ":memory:"
	} else {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("create data dir: %w", err)
			}
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	conn, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// SQLite serialises writers; a single connection also keeps an in-memory
	// database alive for the lifetime of the pool.
	conn.SetMaxOpenConns(1)

	slog.Info("Opened SQLite database", "path", dsn)
	return conn, nil
}
