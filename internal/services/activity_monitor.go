package services

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/equipstore/backend/internal/logger"
	"github.com/equipstore/backend/internal/metrics"
)

// Evaluator runs one suspicious-activity evaluation.
type Evaluator interface {
	Evaluate(ctx context.Context) (*EvaluationResult, error)
}

// MonitorOptions controls the evaluation schedule.
type MonitorOptions struct {
	Interval   time.Duration
	RunOnStart bool
}

// ActivityMonitor owns the periodic evaluation schedule. Start and Stop may be
// called repeatedly; a second Start while running is a no-op.
type ActivityMonitor struct {
	evaluator Evaluator
	opts      MonitorOptions

	mu  sync.Mutex
	run *monitorRun

	lastMu     sync.RWMutex
	lastResult *EvaluationResult
	lastErr    error
}

type monitorRun struct {
	cron   *cron.Cron
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewActivityMonitor(evaluator Evaluator, opts MonitorOptions) *ActivityMonitor {
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Minute
	}
	return &ActivityMonitor{evaluator: evaluator, opts: opts}
}

// Start schedules evaluations every Interval and, when RunOnStart is set, runs
// one immediately. It returns false if the monitor is already running.
func (m *ActivityMonitor) Start() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.run != nil {
		logger.Log().Info("Monitoring service is already running")
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	cronLogger := cron.PrintfLogger(logger.Log())
	run := &monitorRun{
		cron:   cron.New(cron.WithLogger(cronLogger)),
		cancel: cancel,
	}

	// Recover keeps a panicking evaluation from killing the schedule;
	// SkipIfStillRunning drops a tick while the previous one is in flight.
	job := cron.NewChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)).
		Then(cron.FuncJob(func() { m.tick(ctx) }))
	run.cron.Schedule(cron.Every(m.opts.Interval), job)
	run.cron.Start()

	if m.opts.RunOnStart {
		run.wg.Add(1)
		go func() {
			defer run.wg.Done()
			job.Run()
		}()
	}

	m.run = run
	logger.WithFields(logrus.Fields{"interval": m.opts.Interval.String()}).Info("Starting monitoring service")
	return true
}

// Stop cancels in-flight evaluations, stops the schedule and waits for running
// jobs to return or for ctx to expire. Stopping an idle monitor is a no-op.
func (m *ActivityMonitor) Stop(ctx context.Context) error {
	m.mu.Lock()
	run := m.run
	m.run = nil
	m.mu.Unlock()

	if run == nil {
		return nil
	}

	run.cancel()
	cronDone := run.cron.Stop()

	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		run.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Log().Info("Monitoring service stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Running reports whether the schedule is active.
func (m *ActivityMonitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.run != nil
}

// RunOnce evaluates immediately, outside the schedule, and records metrics.
func (m *ActivityMonitor) RunOnce(ctx context.Context) (*EvaluationResult, error) {
	start := time.Now()
	res, err := m.evaluator.Evaluate(ctx)
	if err != nil {
		metrics.ObserveEvaluation("error", time.Since(start))
	} else {
		metrics.ObserveEvaluation("success", time.Since(start))
		metrics.AddFlaggedUsers(len(res.Flagged))
	}

	m.lastMu.Lock()
	m.lastResult, m.lastErr = res, err
	m.lastMu.Unlock()
	return res, err
}

// LastResult returns the outcome of the most recent evaluation, if any.
func (m *ActivityMonitor) LastResult() (*EvaluationResult, error) {
	m.lastMu.RLock()
	defer m.lastMu.RUnlock()
	return m.lastResult, m.lastErr
}

// tick is one scheduled run. Failures are logged and the schedule continues.
func (m *ActivityMonitor) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	logger.Log().Debug("Running monitoring check")

	res, err := m.RunOnce(ctx)
	if err != nil {
		logger.Log().WithError(err).Error("Error in monitoring service")
		return
	}
	if len(res.Flagged) > 0 {
		logger.WithFields(logrus.Fields{"flagged": res.Flagged, "suspects": len(res.Suspects)}).Warn("Found suspicious users")
		return
	}
	logger.Log().Debug("No suspicious users found in this check")
}
