package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	internalhttp "github.com/EternisAI/silo-license/internal/api/http"
	"github.com/EternisAI/silo-license/internal/credential"
	"github.com/EternisAI/silo-license/internal/db"
	"github.com/EternisAI/silo-license/internal/licenses"
	"github.com/EternisAI/silo-license/internal/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var (
	AppVersion string
	cfgFile    string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "silo-license-server",
		Short:         "Issue, activate and verify software licenses",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return InitConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./application.yaml)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newSeedCmd())

	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP license server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, closeStore, err := db.Open(cmd.Context(), config.Database)
			if err != nil {
				return err
			}
			closeStore()
			slog.Info("Migrations applied", "database", redactURL(config.Database.Url))
			return nil
		},
	}
}

// buildServices opens the configured store and constructs the services on top of it.
func buildServices(ctx context.Context) (*internalhttp.Services, func(), error) {
	store, closeStore, err := db.Open(ctx, config.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open license store: %w", err)
	}

	licenseService := licenses.NewService(store, config.License)
	credentialService, err := credential.NewService(licenseService, config.Token)
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	return &internalhttp.Services{
		Licenses:    licenseService,
		Credentials: credentialService,
		Metrics:     metrics.New(),
		Admin:       config.Admin,
	}, closeStore, nil
}

func runServe() error {
	slog.Info("Silo License Server", "version", AppVersion)

	if config.Token.Secret == credential.InsecureSecret {
		slog.Warn("token.secret is set to the default value; set TOKEN_SECRET before deploying")
	}
	if !config.Admin.Enabled() {
		slog.Warn("Admin routes are unauthenticated; set admin.api_key or admin.username/admin.password_hash")
	}

	services, closeStore, err := buildServices(context.Background())
	if err != nil {
		return err
	}
	defer closeStore()

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-API-Key"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(gin.Recovery())
	internalhttp.SetupRoute(engine, services)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", config.Http.Port),
		Handler: engine,
	}

	errChan := make(chan error, 1)
	go func() {
		var err error
		if config.Http.TLS.Enabled {
			slog.Info("Starting HTTPS server", "address", httpServer.Addr)
			err = httpServer.ListenAndServeTLS(config.Http.TLS.CertFile, config.Http.TLS.KeyFile)
		} else {
			slog.Info("Starting HTTP server", "address", httpServer.Addr)
			err = httpServer.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var serveErr error
	select {
	case serveErr = <-errChan:
		slog.Error("Server error", "error", serveErr)
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig)
	}

	slog.Info("Shutting down server...")

	var wg sync.WaitGroup
	shutdownTimeout := 10 * time.Second

	wg.Add(1)
	go func() {
		defer wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
		} else {
			slog.Info("HTTP server stopped")
		}
	}()

	wg.Wait()
	slog.Info("Shutdown complete")
	return serveErr
}
