package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/EternisAI/silo-license/internal/credential"
	"github.com/EternisAI/silo-license/internal/licenses"
	"github.com/EternisAI/silo-license/internal/metrics"
	"github.com/EternisAI/silo-license/internal/store/memory"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	now         time.Time
	licenses    *licenses.Service
	credentials *credential.Service
	metrics     *metrics.Metrics
	router      *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	clock := func() time.Time { return env.now }

	env.licenses = licenses.NewService(memory.NewStore(), licenses.DefaultConfig()).WithClock(clock)
	cred, err := credential.NewService(env.licenses, credential.Config{Secret: "test-secret", Algorithm: "HS256"})
	require.NoError(t, err)
	env.credentials = cred.WithClock(clock)
	env.metrics = metrics.New()

	lh := NewLicenseHandler(env.credentials, env.metrics)
	ah := NewAdminHandler(env.licenses, env.metrics)
	hh := NewHealthHandler()

	r := gin.New()
	r.GET("/", hh.Root)
	r.GET("/health", hh.Check)
	r.POST("/activate", lh.Activate)
	r.POST("/verify", lh.Verify)
	r.POST("/admin/create", ah.CreateLicense)
	r.POST("/admin/revoke", ah.RevokeLicense)
	r.GET("/admin/list", ah.ListLicenses)
	r.GET("/admin/licenses/:key", ah.GetLicense)
	env.router = r
	return env
}

func (e *testEnv) createLicense(t *testing.T, key, owner string, days int) licenses.License {
	t.Helper()
	l, err := e.licenses.Create(context.Background(), licenses.CreateParams{Key: key, Owner: owner, DaysValid: days})
	require.NoError(t, err)
	return l
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf *bytes.Buffer
	switch b := body.(type) {
	case nil:
		buf = &bytes.Buffer{}
	case string:
		buf = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		buf = bytes.NewBuffer(raw)
	}

	req, err := http.NewRequest(method, path, buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}
