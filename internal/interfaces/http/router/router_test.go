package router

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webgen-ai-api/internal/application/chat"
	"webgen-ai-api/internal/application/materialize"
	"webgen-ai-api/internal/config"
	"webgen-ai-api/internal/interfaces/http/handler"
	"webgen-ai-api/internal/interfaces/http/middleware"
)

func newTestRouter(t *testing.T) (*Router, *config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	root := t.TempDir()
	staticDir := filepath.Join(root, "static")
	require.NoError(t, os.MkdirAll(staticDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "index.html"), []byte("landing"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "script.js"), []byte("let messages = [];"), 0o644))

	cfg := &config.Config{
		App:        config.AppConfig{Name: "webgen-ai-api", Env: "test"},
		Generation: config.GenerationConfig{BaseDir: filepath.Join(root, "examples"), Isolate: true},
		Static:     config.StaticConfig{Dir: staticDir, Index: "index.html"},
		Observability: config.ObservabilityConfig{
			Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
		},
	}

	svc := chat.NewService(nil, materialize.New(), chat.Options{BaseDir: cfg.Generation.BaseDir, Isolate: true})
	r := NewWithDeps(cfg, &RouterHandlers{
		Health: handler.NewHealthHandler(cfg),
		Chat:   handler.NewChatHandler(svc, cfg),
		Site:   handler.NewSiteHandler(cfg),
	})
	return r, cfg
}

// TestRouter_Routes 验证路由注册与中间件生效
func TestRouter_Routes(t *testing.T) {
	r, _ := newTestRouter(t)

	cases := map[string]int{
		"/":                   http.StatusOK,
		"/static/script.js":   http.StatusOK,
		"/health":             http.StatusOK,
		"/live":               http.StatusOK,
		"/examples/missing/":  http.StatusNotFound,
		"/metrics":            http.StatusOK,
		"/definitely/unknown": http.StatusNotFound,
	}
	for path, status := range cases {
		w := httptest.NewRecorder()
		r.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, status, w.Code, path)
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader), path)
	}
}

// TestRouter_MetricsExposeHTTPCounters 验证请求计数出现在指标输出中
func TestRouter_MetricsExposeHTTPCounters(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "webgen_http_requests_total"))
}
