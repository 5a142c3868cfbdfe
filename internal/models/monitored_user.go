package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultMonitoringReason is stored when the evaluator is not configured with its own reason.
const DefaultMonitoringReason = "Multiple operations in short time"

// MonitoredUser flags a user as suspicious. The unique index on UserID keeps
// at most one record per user; later flag attempts are ignored.
type MonitoredUser struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"uniqueIndex;not null"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

func (m *MonitoredUser) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return
}

// MonitoredUserView is a monitored user joined with the identity of the flagged account.
type MonitoredUserView struct {
	MonitoredUser
	Email string `json:"email"`
	Name  string `json:"name"`
}
