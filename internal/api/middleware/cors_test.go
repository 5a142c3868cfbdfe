package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func corsRouter() (*gin.Engine, *int) {
	gin.SetMode(gin.TestMode)
	hits := 0
	r := gin.New()
	g := r.Group("/api", CORS(http.MethodGet, http.MethodOptions))
	g.GET("/list", func(c *gin.Context) {
		hits++
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	g.OPTIONS("/list", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r, &hits
}

func TestCORS_SimpleRequest(t *testing.T) {
	r, hits := corsRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/list", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, 1, *hits)
}

func TestCORS_Preflight(t *testing.T) {
	r, hits := corsRouter()

	req := httptest.NewRequest(http.MethodOptions, "/api/list", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.True(t, w.Code == http.StatusOK || w.Code == http.StatusNoContent)
	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodGet)
	assert.Equal(t, 0, *hits)
}

func TestCORS_PlainOptions(t *testing.T) {
	r, _ := corsRouter()

	req := httptest.NewRequest(http.MethodOptions, "/api/list", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}
