package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/EternisAI/silo-license/internal/api/http/dto"
	"github.com/EternisAI/silo-license/internal/keygen"
	"github.com/EternisAI/silo-license/internal/licenses"
	"github.com/EternisAI/silo-license/internal/metrics"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	licenses *licenses.Service
	metrics  *metrics.Metrics
}

func NewAdminHandler(licenseService *licenses.Service, m *metrics.Metrics) *AdminHandler {
	return &AdminHandler{
		licenses: licenseService,
		metrics:  m,
	}
}

func (h *AdminHandler) CreateLicense(ctx *gin.Context) {
	var req dto.CreateLicenseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params := licenses.CreateParams{
		Key:    req.Key,
		Owner:  req.Owner,
		Prefix: req.Prefix,
		Note:   req.Note,
	}
	if req.DaysValid != nil {
		params.DaysValid = *req.DaysValid
	}

	created, err := h.licenses.Create(ctx.Request.Context(), params)
	if err != nil {
		switch {
		case errors.Is(err, licenses.ErrDuplicateKey):
			ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, licenses.ErrInvalidInput):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, keygen.ErrKeyGenerationExhausted):
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to generate a unique license key, please try again"})
		default:
			slog.Error("Failed to create license", "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create license"})
		}
		return
	}

	h.metrics.ObserveCreated()
	ctx.JSON(http.StatusCreated, dto.LicenseMessageResponse{
		Message:         "License created",
		LicenseResponse: dto.NewLicenseResponse(created),
	})
}

func (h *AdminHandler) RevokeLicense(ctx *gin.Context) {
	var req dto.RevokeLicenseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "License key is required"})
		return
	}

	revoked, err := h.licenses.Revoke(ctx.Request.Context(), req.Key)
	if err != nil {
		if errors.Is(err, licenses.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "License not found"})
			return
		}
		slog.Error("Failed to revoke license", "key", req.Key, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke license"})
		return
	}

	h.metrics.ObserveRevoked()
	ctx.JSON(http.StatusOK, dto.LicenseMessageResponse{
		Message:         fmt.Sprintf("License %s revoked", revoked.Key),
		LicenseResponse: dto.NewLicenseResponse(revoked),
	})
}

func (h *AdminHandler) GetLicense(ctx *gin.Context) {
	l, err := h.licenses.Lookup(ctx.Request.Context(), ctx.Param("key"))
	if err != nil {
		if errors.Is(err, licenses.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "License not found"})
			return
		}
		slog.Error("Failed to get license", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	ctx.JSON(http.StatusOK, dto.NewLicenseResponse(l))
}

func (h *AdminHandler) ListLicenses(ctx *gin.Context) {
	activeOnly, err := strconv.ParseBool(ctx.DefaultQuery("active_only", "true"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "active_only must be a boolean"})
		return
	}

	list, err := h.licenses.List(ctx.Request.Context(), activeOnly)
	if err != nil {
		slog.Error("Failed to list licenses", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	items := make([]dto.LicenseResponse, len(list))
	for i, l := range list {
		items[i] = dto.NewLicenseResponse(l)
	}

	ctx.JSON(http.StatusOK, dto.ListLicensesResponse{
		Count:    len(items),
		Licenses: items,
	})
}
