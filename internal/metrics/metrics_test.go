package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRun(t *testing.T) {
	m := New("itpcron")

	m.RecordRun("execute", 150*time.Millisecond, nil)
	m.RecordRun("execute", 20*time.Millisecond, errors.New("boom"))
	m.RecordRun("create", time.Second, nil)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.runsTotal.WithLabelValues("execute", StatusSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.runsTotal.WithLabelValues("execute", StatusError)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.runsTotal.WithLabelValues("create", StatusSuccess)))
	assert.Greater(t, testutil.ToFloat64(m.lastRun.WithLabelValues("create")), float64(0))
}

func TestObserveHandler(t *testing.T) {
	m := New("itpcron")

	m.ObserveHandler("onCronUpdate", "journal", time.Millisecond, nil)
	m.ObserveHandler("onCronUpdate", "exec", time.Millisecond, errors.New("exit status 1"))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.handlerCalls.WithLabelValues("onCronUpdate", "journal", StatusSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.handlerCalls.WithLabelValues("onCronUpdate", "exec", StatusError)))
	assert.Equal(t, 2, testutil.CollectAndCount(m.handlerDuration))
}

func TestWriteTextfile(t *testing.T) {
	m := New("itpcron")
	m.RecordRun("update", time.Second, nil)

	path := filepath.Join(t.TempDir(), "itpcron.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `itpcron_runs_total{mode="update",status="success"} 1`)
}

func TestWriteTextfile_BadPath(t *testing.T) {
	m := New("itpcron")
	err := m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "itpcron.prom"))
	assert.Error(t, err)
}
