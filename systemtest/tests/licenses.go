package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/EternisAI/silo-license/internal/api/http/dto"
	"github.com/EternisAI/silo-license/internal/credential"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminAuth(t *testing.T, router *gin.Engine, apiKey string) {
	t.Run("missing key", func(t *testing.T) {
		rr := doJSON(router, "GET", "/admin/list", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("wrong key", func(t *testing.T) {
		rr := doJSONWithAPIKey(router, "GET", "/admin/list", nil, "wrong")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("valid key", func(t *testing.T) {
		rr := doJSONWithAPIKey(router, "GET", "/admin/list", nil, apiKey)
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestLicenseLifecycle(t *testing.T, router *gin.Engine, apiKey string) {
	rr := doJSONWithAPIKey(router, "POST", "/admin/create", dto.CreateLicenseRequest{Owner: "Acme Corp"}, apiKey)
	require.Equal(t, http.StatusCreated, rr.Code)

	var created dto.LicenseMessageResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Regexp(t, `^PRO-[A-Z0-9]{12}$`, created.Key)

	var token string
	t.Run("activate", func(t *testing.T) {
		rr := doJSON(router, "POST", "/activate", dto.ActivateRequest{Key: created.Key})
		require.Equal(t, http.StatusOK, rr.Code)

		var resp dto.ActivateResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "valid", resp.Status)
		require.NotEmpty(t, resp.Token)
		token = resp.Token
	})

	t.Run("verify", func(t *testing.T) {
		rr := doJSON(router, "POST", "/validate", dto.VerifyRequest{Token: token})
		require.Equal(t, http.StatusOK, rr.Code)

		var resp dto.VerifyResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.True(t, resp.Valid)
		assert.Equal(t, created.Key, resp.Key)
		assert.Equal(t, "Acme Corp", resp.Owner)
	})

	t.Run("lookup", func(t *testing.T) {
		rr := doJSONWithAPIKey(router, "GET", "/admin/licenses/"+created.Key, nil, apiKey)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp dto.LicenseResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.True(t, created.ExpiresAt.Equal(resp.ExpiresAt))
		assert.True(t, created.CreatedAt.Equal(resp.CreatedAt))
	})

	t.Run("revoke", func(t *testing.T) {
		rr := doJSONWithAPIKey(router, "POST", "/admin/revoke", dto.RevokeLicenseRequest{Key: created.Key}, apiKey)
		require.Equal(t, http.StatusOK, rr.Code)

		rr = doJSON(router, "POST", "/verify", dto.VerifyRequest{Token: token})
		require.Equal(t, http.StatusOK, rr.Code)

		var resp dto.VerifyResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.False(t, resp.Valid)
		assert.Equal(t, credential.ReasonLicenseRevoked, resp.Reason)

		rr = doJSON(router, "POST", "/activate", dto.ActivateRequest{Key: created.Key})
		require.Equal(t, http.StatusOK, rr.Code)

		var act dto.ActivateResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &act))
		assert.Equal(t, "revoked", act.Status)
		assert.Empty(t, act.Token)
	})

	t.Run("unknown key", func(t *testing.T) {
		rr := doJSON(router, "POST", "/activate", dto.ActivateRequest{Key: "PRO-DOESNOTEXIST"})
		assert.Equal(t, http.StatusNotFound, rr.Code)

		rr = doJSONWithAPIKey(router, "POST", "/admin/revoke", dto.RevokeLicenseRequest{Key: "PRO-DOESNOTEXIST"}, apiKey)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestDuplicateKey(t *testing.T, router *gin.Engine, apiKey string) {
	body := dto.CreateLicenseRequest{Key: "TRIAL-DUP", Owner: "First"}
	rr := doJSONWithAPIKey(router, "POST", "/admin/create", body, apiKey)
	require.Equal(t, http.StatusCreated, rr.Code)

	body.Owner = "Second"
	rr = doJSONWithAPIKey(router, "POST", "/admin/create", body, apiKey)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = doJSONWithAPIKey(router, "GET", "/admin/licenses/TRIAL-DUP", nil, apiKey)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp dto.LicenseResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "First", resp.Owner)
}

func TestListLicenses(t *testing.T, router *gin.Engine, apiKey string) {
	rr := doJSONWithAPIKey(router, "POST", "/admin/create", dto.CreateLicenseRequest{Key: "LIST-ACTIVE"}, apiKey)
	require.Equal(t, http.StatusCreated, rr.Code)
	rr = doJSONWithAPIKey(router, "POST", "/admin/create", dto.CreateLicenseRequest{Key: "LIST-REVOKED"}, apiKey)
	require.Equal(t, http.StatusCreated, rr.Code)
	rr = doJSONWithAPIKey(router, "POST", "/admin/revoke", dto.RevokeLicenseRequest{Key: "LIST-REVOKED"}, apiKey)
	require.Equal(t, http.StatusOK, rr.Code)

	keys := func(path string) map[string]bool {
		rr := doJSONWithAPIKey(router, "GET", path, nil, apiKey)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp dto.ListLicensesResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, len(resp.Licenses), resp.Count)

		out := make(map[string]bool, len(resp.Licenses))
		for _, l := range resp.Licenses {
			out[l.Key] = true
		}
		return out
	}

	active := keys("/admin/list")
	assert.True(t, active["LIST-ACTIVE"])
	assert.False(t, active["LIST-REVOKED"])

	all := keys("/admin/list?active_only=false")
	assert.True(t, all["LIST-ACTIVE"])
	assert.True(t, all["LIST-REVOKED"])
}
