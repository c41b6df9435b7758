package systemtest

import (
	"context"
	"testing"

	internalhttp "github.com/EternisAI/silo-license/internal/api/http"
	"github.com/EternisAI/silo-license/internal/api/http/middleware"
	"github.com/EternisAI/silo-license/internal/credential"
	"github.com/EternisAI/silo-license/internal/db"
	"github.com/EternisAI/silo-license/internal/licenses"
	"github.com/EternisAI/silo-license/internal/metrics"
	"github.com/EternisAI/silo-license/systemtest/postgres"
	"github.com/EternisAI/silo-license/systemtest/tests"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
)

const (
	tokenSecret = "systemtest-secret"
	adminAPIKey = "systemtest-admin-key"
)

func TestSystemIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping system test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := postgres.StartPostgres(ctx, "silo", "silo", "licenses")
	require.NoError(t, err)
	t.Cleanup(func() { _ = postgres.TerminatePostgres(context.Background(), container) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	store, closeStore, err := db.Open(ctx, db.Config{Url: dsn, Schema: "licensing"})
	require.NoError(t, err)
	t.Cleanup(closeStore)

	licenseService := licenses.NewService(store, licenses.DefaultConfig())
	credentialService, err := credential.NewService(licenseService, credential.Config{Secret: tokenSecret})
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	internalhttp.SetupRoute(engine, &internalhttp.Services{
		Licenses:    licenseService,
		Credentials: credentialService,
		Metrics:     metrics.New(),
		Admin:       middleware.AdminConfig{APIKey: adminAPIKey},
	})

	t.Run("HealthCheck", func(t *testing.T) { tests.TestHealthCheck(t, engine) })
	t.Run("AdminAuth", func(t *testing.T) { tests.TestAdminAuth(t, engine, adminAPIKey) })
	t.Run("LicenseLifecycle", func(t *testing.T) { tests.TestLicenseLifecycle(t, engine, adminAPIKey) })
	t.Run("DuplicateKey", func(t *testing.T) { tests.TestDuplicateKey(t, engine, adminAPIKey) })
	t.Run("ListLicenses", func(t *testing.T) { tests.TestListLicenses(t, engine, adminAPIKey) })
	t.Run("Metrics", func(t *testing.T) { tests.TestMetrics(t, engine) })
}
