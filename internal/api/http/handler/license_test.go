package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/EternisAI/silo-license/internal/api/http/dto"
	"github.com/EternisAI/silo-license/internal/credential"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "License Server is running.", decode[dto.MessageResponse](t, w).Message)

	w = env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode[dto.HealthResponse](t, w).Status)
}

func TestActivateValid(t *testing.T) {
	env := newTestEnv(t)
	l := env.createLicense(t, "PRO-AAAA", "Acme", 30)

	w := env.do(t, http.MethodPost, "/activate", dto.ActivateRequest{Key: "PRO-AAAA"})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[dto.ActivateResponse](t, w)
	assert.Equal(t, "valid", resp.Status)
	assert.NotEmpty(t, resp.Token)
	require.NotNil(t, resp.ExpiresAt)
	assert.True(t, l.ExpiresAt.Equal(*resp.ExpiresAt))
}

func TestActivateMissingKey(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/activate", "{}")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/activate", "not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestActivateNotFound(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/activate", dto.ActivateRequest{Key: "PRO-NOPE"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "License not found")
}

func TestActivateRevokedHasNoToken(t *testing.T) {
	env := newTestEnv(t)
	env.createLicense(t, "PRO-REV", "", 30)
	w := env.do(t, http.MethodPost, "/admin/revoke", dto.RevokeLicenseRequest{Key: "PRO-REV"})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/activate", dto.ActivateRequest{Key: "PRO-REV"})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[dto.ActivateResponse](t, w)
	assert.Equal(t, "revoked", resp.Status)
	assert.Empty(t, resp.Token)
	assert.Nil(t, resp.ExpiresAt)
	assert.NotContains(t, w.Body.String(), "token")
}

func TestActivateExpired(t *testing.T) {
	env := newTestEnv(t)
	env.createLicense(t, "PRO-OLD", "", 30)
	env.now = env.now.Add(31 * 24 * time.Hour)

	w := env.do(t, http.MethodPost, "/activate", dto.ActivateRequest{Key: "PRO-OLD"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "expired", decode[dto.ActivateResponse](t, w).Status)
}

func TestVerifyRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	env.createLicense(t, "PRO-RT", "Acme", 30)

	act := decode[dto.ActivateResponse](t, env.do(t, http.MethodPost, "/activate", dto.ActivateRequest{Key: "PRO-RT"}))

	w := env.do(t, http.MethodPost, "/verify", dto.VerifyRequest{Token: act.Token})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[dto.VerifyResponse](t, w)
	assert.True(t, resp.Valid)
	assert.Empty(t, resp.Reason)
	assert.Equal(t, "PRO-RT", resp.Key)
	assert.Equal(t, "Acme", resp.Owner)
	require.NotNil(t, resp.Expires)
	assert.True(t, act.ExpiresAt.Equal(*resp.Expires))
}

func TestVerifyAfterRevocation(t *testing.T) {
	env := newTestEnv(t)
	env.createLicense(t, "PRO-RV", "", 30)
	act := decode[dto.ActivateResponse](t, env.do(t, http.MethodPost, "/activate", dto.ActivateRequest{Key: "PRO-RV"}))

	env.do(t, http.MethodPost, "/admin/revoke", dto.RevokeLicenseRequest{Key: "PRO-RV"})

	resp := decode[dto.VerifyResponse](t, env.do(t, http.MethodPost, "/verify", dto.VerifyRequest{Token: act.Token}))
	assert.False(t, resp.Valid)
	assert.Equal(t, credential.ReasonLicenseRevoked, resp.Reason)
	assert.Empty(t, resp.Key)
}

func TestVerifyInvalidToken(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/verify", dto.VerifyRequest{Token: "garbage"})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[dto.VerifyResponse](t, w)
	assert.False(t, resp.Valid)
	assert.Equal(t, credential.ReasonInvalidToken, resp.Reason)
}

func TestVerifyMissingToken(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/verify", "{}")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Token is required")
}
