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

func TestRegistry_Counters(t *testing.T) {
	r := New()

	r.ObserveApply("fast", "ok")
	r.ObserveKey("option", "applied")
	r.ObserveKey("option", "applied")
	r.ObserveKey("option", "failed")
	r.ObservePurge(errors.New("boom"))
	r.ObserveValidate("fast", "WARN", map[string]int{"OK": 3, "WARN": 1})
	r.ObserveCall("option", 20*time.Millisecond, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.ApplyRuns.WithLabelValues("fast", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.ApplyKeys.WithLabelValues("option", "applied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ApplyKeys.WithLabelValues("option", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.CachePurges.WithLabelValues("error")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.ValidateEntries.WithLabelValues("OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.CollaboratorCalls.WithLabelValues("option", "ok")))
}

func TestRegistry_NilIsNoop(t *testing.T) {
	var r *Registry
	assert.NotPanics(t, func() {
		r.ObserveApply("p", "ok")
		r.ObserveKey("directive", "applied")
		r.ObservePurge(nil)
		r.ObserveEdit("updated")
		r.ObserveValidate("p", "OK", nil)
		r.ObserveCall("plugin", time.Second, nil)
		r.MarkRun("apply", time.Now())
	})
	assert.NoError(t, r.WriteTextfile("/nonexistent/x.prom"))
}

func TestRegistry_WriteTextfile(t *testing.T) {
	r := New()
	r.ObserveApply("fast", "ok")
	r.MarkRun("apply", time.Unix(1700000000, 0))

	path := filepath.Join(t.TempDir(), "collector", "presetctl.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `presetctl_apply_runs_total{preset="fast",result="ok"} 1`)
	assert.Contains(t, string(data), `presetctl_last_run_timestamp_seconds{command="apply"}`)
}
