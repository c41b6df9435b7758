package db

import (
	"context"
	"testing"
	"time"

	"github.com/EternisAI/silo-license/internal/licenses"
	"github.com/EternisAI/silo-license/internal/store/memory"
	"github.com/EternisAI/silo-license/internal/store/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		url    string
		driver Driver
		dsn    string
	}{
		{"", DriverSQLite, "./licenses.db"},
		{"sqlite://./licenses.db", DriverSQLite, "./licenses.db"},
		{"sqlite:///./licenses.db", DriverSQLite, "./licenses.db"},
		{"sqlite:///var/lib/licenses.db", DriverSQLite, "var/lib/licenses.db"},
		{"sqlite://:memory:", DriverSQLite, ":memory:"},
		{"postgres://u:p@host:5432/db", DriverPostgres, "postgresql://u:p@host:5432/db"},
		{"postgresql://u:p@host:5432/db?sslmode=disable", DriverPostgres, "postgresql://u:p@host:5432/db?sslmode=disable"},
		{"memory://", DriverMemory, ""},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			driver, dsn, err := ParseURL(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.driver, driver)
			assert.Equal(t, tt.dsn, dsn)
		})
	}
}

func TestParseURLUnsupported(t *testing.T) {
	_, _, err := ParseURL("mysql://localhost/db")
	assert.Error(t, err)
}

func TestOpenSQLiteMemory(t *testing.T) {
	store, closeFn, err := Open(context.Background(), Config{Url: "sqlite://:memory:"})
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &sqlite.Store{}, store)

	svc := licenses.NewService(store, licenses.DefaultConfig())
	l, err := svc.Create(context.Background(), licenses.CreateParams{Key: "PRO-OPEN", DaysValid: 1})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), l.ExpiresAt, 5*time.Second)
}

func TestOpenMemory(t *testing.T) {
	store, closeFn, err := Open(context.Background(), Config{Url: "memory://"})
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &memory.Store{}, store)
}

func TestMigrationsIdempotent(t *testing.T) {
	conn, err := OpenSQLite("")
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, RunSQLiteMigrations(conn.DB))
	require.NoError(t, RunSQLiteMigrations(conn.DB))
}
