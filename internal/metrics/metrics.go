package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "store"

var (
	operationLogsWritten = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operation_logs_written_total",
		Help:      "Total number of operation log entries persisted, by action",
	}, []string{"action"})
	operationLogWriteFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operation_log_write_failures_total",
		Help:      "Total number of operation log entries that could not be persisted",
	})
	monitorEvaluations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "monitor_evaluations_total",
		Help:      "Total number of suspicious activity evaluations, by result",
	}, []string{"result"})
	monitorFlaggedUsers = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "monitor_flagged_users_total",
		Help:      "Total number of users newly added to the monitored list",
	})
	monitorEvaluationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "monitor_evaluation_duration_seconds",
		Help:      "Duration of suspicious activity evaluations",
		Buckets:   prometheus.DefBuckets,
	})
)

// Register registers Prometheus collectors. Call once per registry at startup.
func Register(registry *prometheus.Registry) {
	registry.MustRegister(
		operationLogsWritten,
		operationLogWriteFailures,
		monitorEvaluations,
		monitorFlaggedUsers,
		monitorEvaluationDuration,
	)
}

// IncOperationLogged increments the persisted operation log counter.
func IncOperationLogged(action string) { operationLogsWritten.WithLabelValues(action).Inc() }

// IncOperationLogFailure increments the failed operation log write counter.
func IncOperationLogFailure() { operationLogWriteFailures.Inc() }

// ObserveEvaluation records one evaluation run with result "success" or "error".
func ObserveEvaluation(result string, took time.Duration) {
	monitorEvaluations.WithLabelValues(result).Inc()
	monitorEvaluationDuration.Observe(took.Seconds())
}

// AddFlaggedUsers adds n newly monitored users.
func AddFlaggedUsers(n int) {
	if n > 0 {
		monitorFlaggedUsers.Add(float64(n))
	}
}
