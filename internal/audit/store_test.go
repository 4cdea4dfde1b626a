package audit

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/presetctl/internal/clock"
)

func newStore(t *testing.T, clk clock.Clock) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "state", "history.db"), 30, clk)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_RecordAndHistory(t *testing.T) {
	start := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	s := newStore(t, clock.NewTicking(start, time.Minute))

	first, err := s.Record(Run{Command: "apply", Target: "a.com", Preset: "fast", Result: "ok", Applied: 5})
	require.NoError(t, err)
	_, err = uuid.Parse(first.ID)
	assert.NoError(t, err)

	_, err = s.Record(Run{Command: "validate", Target: "b.com", Preset: "fast", Result: "WARN",
		Details: map[string]any{"WARN": 1}})
	require.NoError(t, err)
	_, err = s.Record(Run{Command: "apply", Target: "a.com", Preset: "slow", Result: "partial", Applied: 3, Failed: 2})
	require.NoError(t, err)

	all, err := s.History("", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "slow", all[0].Preset)
	assert.Equal(t, first.ID, all[2].ID)
	assert.Equal(t, start, all[2].Timestamp)

	mine, err := s.History("a.com", 1)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, 2, mine[0].Failed)

	other, err := s.History("b.com", 0)
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, float64(1), other[0].Details["WARN"])

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestStore_Prune(t *testing.T) {
	clk := clock.NewMock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	s := newStore(t, clk)

	_, err := s.Record(Run{Command: "apply", Target: "old.com", Result: "ok"})
	require.NoError(t, err)

	clk.Advance(45 * 24 * time.Hour)
	_, err = s.Record(Run{Command: "apply", Target: "new.com", Result: "ok"})
	require.NoError(t, err)

	removed, err := s.Prune()
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	runs, err := s.History("", 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "new.com", runs[0].Target)
}
