package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/equipstore/backend/internal/logger"
	"github.com/equipstore/backend/internal/metrics"
	"github.com/equipstore/backend/internal/models"
)

var (
	ErrMissingUserID = errors.New("user id is required")
	ErrInvalidAction = errors.New("invalid operation action")
)

const defaultLogWriteTimeout = 2 * time.Second

// OperationLogService appends operation log entries. Writes are best-effort:
// a failure is logged and counted but never reaches the caller.
type OperationLogService struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewOperationLogService returns a writer bounded by timeout per entry.
func NewOperationLogService(db *gorm.DB, timeout time.Duration) *OperationLogService {
	if timeout <= 0 {
		timeout = defaultLogWriteTimeout
	}
	return &OperationLogService{db: db, timeout: timeout}
}

// LogOperation records that userID performed action on an entity. details is
// stored as JSON. The write ignores cancellation of ctx so a finished request
// still gets its entry, but it never runs longer than the configured timeout.
func (s *OperationLogService) LogOperation(ctx context.Context, userID string, action models.OperationAction, entityType string, entityID *string, details interface{}) {
	entry, err := newOperationLog(userID, action, entityType, entityID, details)
	fields := logrus.Fields{"user_id": userID, "action": action, "entity_type": entityType}
	if err != nil {
		metrics.IncOperationLogFailure()
		logger.WithFields(fields).WithError(err).Warn("dropping operation log entry")
		return
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	if err := s.db.WithContext(writeCtx).Create(entry).Error; err != nil {
		metrics.IncOperationLogFailure()
		logger.WithFields(fields).WithError(err).Error("Error logging operation")
		return
	}
	metrics.IncOperationLogged(string(action))
}

func newOperationLog(userID string, action models.OperationAction, entityType string, entityID *string, details interface{}) (*models.OperationLog, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	if !action.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}

	payload, err := json.Marshal(details)
	if err != nil {
		logger.WithFields(logrus.Fields{"user_id": userID, "action": action}).
			WithError(err).Warn("operation details are not JSON encodable, storing null")
		payload = []byte("null")
	}

	return &models.OperationLog{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    string(payload),
	}, nil
}
