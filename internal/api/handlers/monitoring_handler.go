package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/equipstore/backend/internal/api/middleware"
	"github.com/equipstore/backend/internal/models"
	"github.com/equipstore/backend/internal/services"
)

// MonitoringQuery is the read side of activity monitoring.
type MonitoringQuery interface {
	GetMonitoredUsers(ctx context.Context) ([]models.MonitoredUserView, error)
	IsUserAdmin(ctx context.Context, userID string) (bool, error)
}

// EvaluationTrigger runs one evaluation on demand.
type EvaluationTrigger interface {
	RunOnce(ctx context.Context) (*services.EvaluationResult, error)
}

type MonitoringHandler struct {
	query   MonitoringQuery
	trigger EvaluationTrigger
}

func NewMonitoringHandler(query MonitoringQuery, trigger EvaluationTrigger) *MonitoringHandler {
	return &MonitoringHandler{query: query, trigger: trigger}
}

// MonitoredUsers lists every flagged user wrapped in {"users": [...]}.
// The route carries no authentication.
func (h *MonitoringHandler) MonitoredUsers(c *gin.Context) {
	users, err := h.query.GetMonitoredUsers(c.Request.Context())
	if err != nil {
		middleware.GetRequestLogger(c).WithError(err).Error("Error fetching monitored users")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch monitored users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// Monitoring lists flagged users for an authenticated admin. The admin check
// reads the role from the database, not from the session token.
func (h *MonitoringHandler) Monitoring(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	ctx := c.Request.Context()
	isAdmin, err := h.query.IsUserAdmin(ctx, userID)
	if err != nil {
		middleware.GetRequestLogger(c).WithError(err).Error("Get monitored users error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if !isAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
		return
	}

	users, err := h.query.GetMonitoredUsers(ctx)
	if err != nil {
		middleware.GetRequestLogger(c).WithError(err).Error("Get monitored users error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, users)
}

// RunEvaluation triggers an evaluation immediately and returns its result.
func (h *MonitoringHandler) RunEvaluation(c *gin.Context) {
	res, err := h.trigger.RunOnce(c.Request.Context())
	if err != nil {
		middleware.GetRequestLogger(c).WithError(err).Error("manual evaluation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Evaluation failed"})
		return
	}
	c.JSON(http.StatusOK, res)
}
