package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/equipstore/backend/internal/models"
)

// MonitoredUserRegistry is the deduplicated store of flagged users.
// The unique index on user_id is its only concurrency control.
type MonitoredUserRegistry struct {
	db *gorm.DB
}

func NewMonitoredUserRegistry(db *gorm.DB) *MonitoredUserRegistry {
	return &MonitoredUserRegistry{db: db}
}

// UpsertIfAbsent inserts a record for userID unless one already exists.
// An existing record keeps its reason and timestamp. inserted reports
// whether this call created the record.
func (r *MonitoredUserRegistry) UpsertIfAbsent(ctx context.Context, userID, reason string) (inserted bool, err error) {
	rec := models.MonitoredUser{UserID: userID, Reason: reason}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&rec)
	if res.Error != nil {
		return false, fmt.Errorf("insert monitored user %s: %w", userID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Exists reports whether userID is monitored.
func (r *MonitoredUserRegistry) Exists(ctx context.Context, userID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.MonitoredUser{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check monitored user %s: %w", userID, err)
	}
	return count > 0, nil
}

// ListAll returns every record joined with the user's email and name,
// most recently flagged first. Records whose user no longer exists are omitted.
func (r *MonitoredUserRegistry) ListAll(ctx context.Context) ([]models.MonitoredUserView, error) {
	out := make([]models.MonitoredUserView, 0)
	err := r.db.WithContext(ctx).
		Table("monitored_users AS m").
		Select("m.id, m.user_id, m.reason, m.created_at, u.email, u.name").
		Joins("JOIN users u ON u.id = m.user_id").
		Order("m.created_at DESC").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list monitored users: %w", err)
	}
	if out == nil {
		out = []models.MonitoredUserView{}
	}
	return out, nil
}
