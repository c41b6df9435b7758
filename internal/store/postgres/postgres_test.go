package postgres_test

import (
	"context"
	"testing"

	"github.com/EternisAI/silo-license/internal/db"
	"github.com/EternisAI/silo-license/internal/licenses"
	"github.com/EternisAI/silo-license/internal/store/postgres"
	"github.com/EternisAI/silo-license/internal/store/storetest"
	pgcontainer "github.com/EternisAI/silo-license/systemtest/postgres"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
)

func TestStoreContract(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Postgres container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := pgcontainer.StartPostgres(ctx, "silo", "silo", "licenses")
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgcontainer.TerminatePostgres(context.Background(), container) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	n := 0
	storetest.Run(t, func(t *testing.T) licenses.Store {
		// Each subtest gets its own schema so stores start empty.
		n++
		schema := "store_test_" + string(rune('a'+n))
		require.NoError(t, db.RunMigrations(dsn, schema))

		pool, err := db.InitDB(ctx, dsn, schema)
		require.NoError(t, err)
		t.Cleanup(pool.Close)
		return postgres.NewStore(pool)
	})
}
