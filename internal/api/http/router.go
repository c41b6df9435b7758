package http

import (
	"github.com/EternisAI/silo-license/internal/api/http/handler"
	"github.com/EternisAI/silo-license/internal/api/http/middleware"
	"github.com/EternisAI/silo-license/internal/credential"
	"github.com/EternisAI/silo-license/internal/licenses"
	"github.com/EternisAI/silo-license/internal/metrics"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Licenses    *licenses.Service
	Credentials *credential.Service
	Metrics     *metrics.Metrics
	Admin       middleware.AdminConfig
}

func SetupRoute(engine *gin.Engine, srvs *Services) {
	engine.Use(middleware.RequestLogger())

	healthHandler := handler.NewHealthHandler()
	engine.GET("/", healthHandler.Root)
	engine.GET("/health", healthHandler.Check)

	if srvs.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(srvs.Metrics.Handler()))
	}

	licenseHandler := handler.NewLicenseHandler(srvs.Credentials, srvs.Metrics)
	engine.POST("/activate", licenseHandler.Activate)
	engine.POST("/validate", licenseHandler.Verify)
	engine.POST("/verify", licenseHandler.Verify)

	adminHandler := handler.NewAdminHandler(srvs.Licenses, srvs.Metrics)
	admin := engine.Group("/admin", middleware.AdminAuth(srvs.Admin))
	admin.POST("/create", adminHandler.CreateLicense)
	admin.POST("/revoke", adminHandler.RevokeLicense)
	admin.GET("/list", adminHandler.ListLicenses)
	admin.GET("/licenses/:key", adminHandler.GetLicense)
}
