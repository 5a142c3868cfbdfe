package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/equipstore/backend/internal/logger"
	"github.com/equipstore/backend/internal/models"
)

var ErrInvalidEvaluatorConfig = errors.New("invalid evaluator configuration")

// EvaluatorConfig parameterizes one policy: a user is flagged when they have at
// least Threshold operations logged within the trailing Window.
type EvaluatorConfig struct {
	Window       time.Duration
	Threshold    int
	Reason       string
	QueryTimeout time.Duration
}

// Suspect is a user whose activity in the window met the threshold.
type Suspect struct {
	UserID         string    `json:"user_id"`
	OperationCount int64     `json:"operation_count"`
	LastOperation  time.Time `json:"last_operation"`
}

// EvaluationResult describes one evaluation run.
type EvaluationResult struct {
	EvaluatedAt time.Time `json:"evaluated_at"`
	Boundary    time.Time `json:"boundary"`
	Suspects    []Suspect `json:"suspects"`
	Flagged     []string  `json:"flagged"`
}

// SuspicionEvaluator scans the operation log for high-frequency actors and
// records them in the monitored-user registry.
type SuspicionEvaluator struct {
	db       *gorm.DB
	registry *MonitoredUserRegistry
	cfg      EvaluatorConfig
	now      func() time.Time
}

func NewSuspicionEvaluator(db *gorm.DB, registry *MonitoredUserRegistry, cfg EvaluatorConfig) (*SuspicionEvaluator, error) {
	if cfg.Window <= 0 || cfg.Threshold <= 0 {
		return nil, fmt.Errorf("%w: window %s, threshold %d", ErrInvalidEvaluatorConfig, cfg.Window, cfg.Threshold)
	}
	if cfg.Reason == "" {
		cfg.Reason = models.DefaultMonitoringReason
	}
	return &SuspicionEvaluator{db: db, registry: registry, cfg: cfg, now: time.Now}, nil
}

// SetClock replaces the time source. Used by tests.
func (e *SuspicionEvaluator) SetClock(now func() time.Time) {
	e.now = now
}

// Config returns the active policy.
func (e *SuspicionEvaluator) Config() EvaluatorConfig {
	return e.cfg
}

// Evaluate runs one pass: aggregate the window, then flag every qualifying
// user not yet monitored. Inserts are conflict-safe, so overlapping or
// concurrent runs never produce a second record for the same user. On error
// the partial result is returned alongside it; rows already inserted stay.
func (e *SuspicionEvaluator) Evaluate(ctx context.Context) (*EvaluationResult, error) {
	if e.cfg.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.QueryTimeout)
		defer cancel()
	}

	now := e.now().UTC()
	res := &EvaluationResult{
		EvaluatedAt: now,
		Boundary:    now.Add(-e.cfg.Window),
		Suspects:    []Suspect{},
		Flagged:     []string{},
	}

	suspects, err := e.findSuspects(ctx, res.Boundary)
	if err != nil {
		return res, err
	}
	res.Suspects = suspects

	for _, s := range suspects {
		inserted, err := e.registry.UpsertIfAbsent(ctx, s.UserID, e.cfg.Reason)
		if err != nil {
			return res, err
		}
		if inserted {
			res.Flagged = append(res.Flagged, s.UserID)
			logger.WithFields(logrus.Fields{
				"user_id":         s.UserID,
				"operation_count": s.OperationCount,
				"last_operation":  s.LastOperation,
				"window":          e.cfg.Window.String(),
			}).Warn("user flagged for suspicious activity")
		}
	}
	return res, nil
}

// findSuspects groups log rows newer than boundary by user and keeps groups at
// or above the threshold, skipping users already in the registry.
func (e *SuspicionEvaluator) findSuspects(ctx context.Context, boundary time.Time) ([]Suspect, error) {
	db := e.db.WithContext(ctx)
	monitored := db.Model(&models.MonitoredUser{}).Select("user_id")

	var suspects []Suspect
	err := db.Model(&models.OperationLog{}).
		Select("user_id, COUNT(*) AS operation_count").
		Where("created_at > ?", boundary).
		Where("user_id NOT IN (?)", monitored).
		Group("user_id").
		Having("COUNT(*) >= ?", e.cfg.Threshold).
		Order("operation_count DESC").
		Scan(&suspects).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate operation logs: %w", err)
	}

	for i := range suspects {
		last, err := e.lastOperation(ctx, suspects[i].UserID, boundary)
		if err != nil {
			logger.WithFields(logrus.Fields{"user_id": suspects[i].UserID}).WithError(err).Debug("could not read last operation time")
			continue
		}
		suspects[i].LastOperation = last
	}
	return suspects, nil
}

func (e *SuspicionEvaluator) lastOperation(ctx context.Context, userID string, boundary time.Time) (time.Time, error) {
	var times []time.Time
	err := e.db.WithContext(ctx).Model(&models.OperationLog{}).
		Where("user_id = ? AND created_at > ?", userID, boundary).
		Order("created_at DESC").
		Limit(1).
		Pluck("created_at", &times).Error
	if err != nil {
		return time.Time{}, err
	}
	if len(times) == 0 {
		return time.Time{}, nil
	}
	return times[0].UTC(), nil
}
