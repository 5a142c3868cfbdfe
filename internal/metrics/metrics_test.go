package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_AllCollectors(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	Register(reg)

	IncOperationLogged("CREATE")
	IncOperationLogFailure()
	ObserveEvaluation("success", 10*time.Millisecond)
	AddFlaggedUsers(1)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(mfs))
	for _, mf := range mfs {
		names = append(names, mf.GetName())
	}
	joined := strings.Join(names, ",")
	for _, want := range []string{
		"store_operation_logs_written_total",
		"store_operation_log_write_failures_total",
		"store_monitor_evaluations_total",
		"store_monitor_flagged_users_total",
		"store_monitor_evaluation_duration_seconds",
	} {
		assert.Contains(t, joined, want)
	}
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(operationLogsWritten.WithLabelValues("DELETE"))
	IncOperationLogged("DELETE")
	assert.Equal(t, before+1, testutil.ToFloat64(operationLogsWritten.WithLabelValues("DELETE")))

	failures := testutil.ToFloat64(operationLogWriteFailures)
	IncOperationLogFailure()
	assert.Equal(t, failures+1, testutil.ToFloat64(operationLogWriteFailures))

	errs := testutil.ToFloat64(monitorEvaluations.WithLabelValues("error"))
	ObserveEvaluation("error", time.Second)
	assert.Equal(t, errs+1, testutil.ToFloat64(monitorEvaluations.WithLabelValues("error")))
}

func TestAddFlaggedUsers_IgnoresZero(t *testing.T) {
	before := testutil.ToFloat64(monitorFlaggedUsers)
	AddFlaggedUsers(0)
	assert.Equal(t, before, testutil.ToFloat64(monitorFlaggedUsers))
	AddFlaggedUsers(3)
	assert.Equal(t, before+3, testutil.ToFloat64(monitorFlaggedUsers))
}
