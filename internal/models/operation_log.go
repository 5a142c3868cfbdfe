package models

import (
	"time"
)

// OperationAction is the kind of action recorded in the operation log.
type OperationAction string

const (
	ActionCreate OperationAction = "CREATE"
	ActionRead   OperationAction = "READ"
	ActionUpdate OperationAction = "UPDATE"
	ActionDelete OperationAction = "DELETE"
)

// Valid reports whether a is one of the four known actions.
func (a OperationAction) Valid() bool {
	switch a {
	case ActionCreate, ActionRead, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

// OperationLog is one append-only record of an action performed by a user.
// Rows are never updated; retention is handled outside the application.
type OperationLog struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	UserID     string          `json:"user_id" gorm:"index;not null"`
	Action     OperationAction `json:"action" gorm:"size:16;not null"`
	EntityType string          `json:"entity_type" gorm:"not null"`
	EntityID   *string         `json:"entity_id,omitempty"`
	Details    string          `json:"details" gorm:"type:text"` // JSON payload, diagnostic only
	CreatedAt  time.Time       `json:"created_at" gorm:"index"`
}
