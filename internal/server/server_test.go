package server

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equipstore/backend/internal/config"
	"github.com/equipstore/backend/internal/database"
)

func TestNewRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tempDir := t.TempDir()
	err := os.WriteFile(filepath.Join(tempDir, "index.html"), []byte("<html></html>"), 0o644)
	assert.NoError(t, err)

	router := NewRouter(tempDir)
	assert.NotNil(t, router)

	req, _ := http.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<html></html>")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req, _ = http.NewRequest("GET", "/api/unknown", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "route not found")
}

func freePort(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return strconv.Itoa(l.Addr().(*net.TCPAddr).Port)
}

func TestServer_RunAndShutdown(t *testing.T) {
	db, err := database.Open(filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)

	cfg := &config.Config{
		Server: config.ServerConfig{Port: freePort(t), ShutdownTimeout: 5 * time.Second},
		Auth:   config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour},
		Monitoring: config.MonitoringConfig{
			Enabled:   true,
			Policy:    config.PolicyDefault,
			Window:    time.Minute,
			Threshold: 5,
			Interval:  time.Hour,
		},
	}
	srv, err := New(db, cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	url := "http://127.0.0.1:" + cfg.Server.Port + "/api/health"
	assert.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)
	assert.True(t, srv.Monitor().Running())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.False(t, srv.Monitor().Running())
}
