package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/equipstore/backend/internal/models"
)

// MonitoringService is the read side of the monitoring subsystem used by the
// admin endpoints. It does no authorization of its own.
type MonitoringService struct {
	db       *gorm.DB
	registry *MonitoredUserRegistry
}

func NewMonitoringService(db *gorm.DB, registry *MonitoredUserRegistry) *MonitoringService {
	return &MonitoringService{db: db, registry: registry}
}

// GetMonitoredUsers returns the full registry with user identity, newest first.
// Storage errors are returned so callers can tell "none" from "failed".
func (s *MonitoringService) GetMonitoredUsers(ctx context.Context) ([]models.MonitoredUserView, error) {
	return s.registry.ListAll(ctx)
}

// IsUserMonitored reports whether userID has been flagged.
func (s *MonitoringService) IsUserMonitored(ctx context.Context, userID string) (bool, error) {
	return s.registry.Exists(ctx, userID)
}

// IsUserAdmin reports whether userID holds the admin role.
func (s *MonitoringService) IsUserAdmin(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	var count int64
	err := s.db.WithContext(ctx).
		Table("users AS u").
		Joins("JOIN user_roles r ON u.role_id = r.id").
		Where("u.id = ? AND r.name = ?", userID, models.RoleAdmin).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check admin role for %s: %w", userID, err)
	}
	return count > 0, nil
}
