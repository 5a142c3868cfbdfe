package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/equipstore/backend/internal/api/middleware"
	"github.com/equipstore/backend/internal/models"
)

// asUser stands in for AuthMiddleware.
func asUser(userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Set(middleware.RoleKey, role)
		c.Next()
	}
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type loggedOperation struct {
	UserID     string
	Action     models.OperationAction
	EntityType string
	EntityID   string
}

type recordingLogger struct {
	mu  sync.Mutex
	ops []loggedOperation
}

func (l *recordingLogger) LogOperation(_ context.Context, userID string, action models.OperationAction, entityType string, entityID *string, _ interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	op := loggedOperation{UserID: userID, Action: action, EntityType: entityType}
	if entityID != nil {
		op.EntityID = *entityID
	}
	l.ops = append(l.ops, op)
}

func (l *recordingLogger) operations() []loggedOperation {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]loggedOperation(nil), l.ops...)
}
