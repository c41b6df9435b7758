package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupAdminRouter(cfg AdminConfig) *gin.Engine {
	r := gin.New()
	r.GET("/admin/list", AdminAuth(cfg), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestAdminAuthOpenWhenUnconfigured(t *testing.T) {
	cfg := AdminConfig{}
	assert.False(t, cfg.Enabled())

	r := setupAdminRouter(cfg)
	req, _ := http.NewRequest(http.MethodGet, "/admin/list", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminAuthAPIKey(t *testing.T) {
	r := setupAdminRouter(AdminConfig{APIKey: "s3cret"})

	tests := []struct {
		name   string
		key    string
		status int
	}{
		{name: "valid key", key: "s3cret", status: http.StatusOK},
		{name: "wrong key", key: "nope", status: http.StatusUnauthorized},
		{name: "missing key", key: "", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "/admin/list", nil)
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestAdminAuthBasic(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)

	r := setupAdminRouter(AdminConfig{Username: "admin", PasswordHash: hash})

	tests := []struct {
		name     string
		user     string
		password string
		status   int
	}{
		{name: "valid", user: "admin", password: "hunter2", status: http.StatusOK},
		{name: "wrong password", user: "admin", password: "hunter3", status: http.StatusUnauthorized},
		{name: "wrong user", user: "root", password: "hunter2", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "/admin/list", nil)
			req.SetBasicAuth(tt.user, tt.password)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}

	t.Run("challenge", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/admin/list", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Header().Get("WWW-Authenticate"), "Basic")
	})
}

func TestAdminAuthEitherMethod(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)

	r := setupAdminRouter(AdminConfig{APIKey: "s3cret", Username: "admin", PasswordHash: hash})

	req, _ := http.NewRequest(http.MethodGet, "/admin/list", nil)
	req.SetBasicAuth("admin", "hunter2")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req, _ = http.NewRequest(http.MethodGet, "/admin/list", nil)
	req.Header.Set("X-API-Key", "s3cret")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
