package monitoring

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/snovvcrash/aes256m-cracker/crackcfg"
	"github.com/stretchr/testify/require"
)

// TestCounters checks that the helpers feed the registered collectors.
func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(blocksRecovered)
	AddRecoveredBlocks(3)
	require.Equal(t, before+3, testutil.ToFloat64(blocksRecovered))

	ObserveRun(time.Second)
	require.Positive(t, testutil.CollectAndCount(runSeconds))

	err := ExportPrometheusMetrics(crackcfg.DefaultPrometheus())
	require.Error(t, err)
}
