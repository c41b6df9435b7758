package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/EternisAI/silo-license/internal/api/http/dto"
	"github.com/EternisAI/silo-license/internal/credential"
	"github.com/EternisAI/silo-license/internal/licenses"
	"github.com/EternisAI/silo-license/internal/metrics"
	"github.com/gin-gonic/gin"
)

var activationMessages = map[credential.Status]string{
	credential.StatusValid:   "License is valid",
	credential.StatusRevoked: "License has been revoked",
	credential.StatusExpired: "License expired",
}

type LicenseHandler struct {
	credentials *credential.Service
	metrics     *metrics.Metrics
}

func NewLicenseHandler(credentials *credential.Service, m *metrics.Metrics) *LicenseHandler {
	return &LicenseHandler{
		credentials: credentials,
		metrics:     m,
	}
}

func (h *LicenseHandler) Activate(ctx *gin.Context) {
	var req dto.ActivateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "License key is required"})
		return
	}

	act, err := h.credentials.Activate(ctx.Request.Context(), req.Key)
	if err != nil {
		if errors.Is(err, licenses.ErrNotFound) {
			h.metrics.ObserveActivation("not_found")
			ctx.JSON(http.StatusNotFound, gin.H{"error": "License not found"})
			return
		}
		slog.Error("Failed to activate license", "key", req.Key, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	h.metrics.ObserveActivation(string(act.Status))

	resp := dto.ActivateResponse{
		Status:  string(act.Status),
		Message: activationMessages[act.Status],
	}
	if act.Status == credential.StatusValid {
		resp.Token = act.Token
		resp.ExpiresAt = &act.ExpiresAt
	}
	ctx.JSON(http.StatusOK, resp)
}

func (h *LicenseHandler) Verify(ctx *gin.Context) {
	var req dto.VerifyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Token is required"})
		return
	}

	v, err := h.credentials.Verify(ctx.Request.Context(), req.Token)
	if err != nil {
		slog.Error("Failed to verify token", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	h.metrics.ObserveVerification(v.Reason)

	if !v.Valid {
		ctx.JSON(http.StatusOK, dto.VerifyResponse{Valid: false, Reason: v.Reason})
		return
	}
	ctx.JSON(http.StatusOK, dto.VerifyResponse{
		Valid:   true,
		Key:     v.Key,
		Owner:   v.Owner,
		Expires: &v.ExpiresAt,
	})
}
