package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	history := History{
		Times: []float64{0, 0.1, 0.2},
		Series: map[string][]float64{
			"pendulum.theta": {0.5, 0.49, 0.47},
			"lag.value":      {0, 0.05, 0.1},
		},
	}
	meta := RunMetadata{
		Scenario: "feedback",
		Scheme:   "explicit",
		Dt:       0.1,
		Duration: 0.2,
		Problems: []string{"pendulum", "lag"},
		Stats:    map[string]int{"steps": 2},
	}

	runID, err := st.Save(meta, history)
	require.NoError(t, err)

	parsed, err := uuid.Parse(runID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())

	loaded, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, "feedback", loaded.Scenario)
	assert.Equal(t, []string{"pendulum", "lag"}, loaded.Problems)
	assert.Equal(t, 2, loaded.Stats["steps"])

	got, err := st.LoadHistory(runID)
	require.NoError(t, err)
	assert.Equal(t, history.Times, got.Times)
	assert.Equal(t, history.Series, got.Series)
	assert.Equal(t, []string{"lag.value", "pendulum.theta"}, got.Columns())
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	require.NoError(t, st.Init())

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	_, err = st.Save(RunMetadata{Scenario: "a"}, History{Times: []float64{0}})
	require.NoError(t, err)
	_, err = st.Save(RunMetadata{Scenario: "b"}, History{Times: []float64{0}})
	require.NoError(t, err)

	// stray files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	runs, err = st.List()
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "missing"))
	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestCheckpointsRoundTrip(t *testing.T) {
	ctx := context.Background()
	cps, err := OpenCheckpoints(":memory:")
	require.NoError(t, err)
	defer cps.Close()

	cp := Checkpoint{
		Problem: "pendulum",
		Label:   3,
		Time:    1.5,
		Steps:   15,
		State:   []float64{0.25, -0.5},
		Inputs:  map[string]float64{"torque": 0.1},
	}
	require.NoError(t, cps.Put(ctx, cp))

	got, err := cps.Get(ctx, "pendulum", 3)
	require.NoError(t, err)
	assert.Equal(t, cp, *got)

	cp.Time = 2.0
	require.NoError(t, cps.Put(ctx, cp))
	got, err = cps.Get(ctx, "pendulum", 3)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.Time)

	require.NoError(t, cps.Put(ctx, Checkpoint{Problem: "pendulum", Label: 1, State: []float64{0}}))
	labels, err := cps.Labels(ctx, "pendulum")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, labels)

	require.NoError(t, cps.Delete(ctx, "pendulum", 3))
	_, err = cps.Get(ctx, "pendulum", 3)
	assert.ErrorIs(t, err, ErrCheckpointNotFound)
	assert.ErrorIs(t, cps.Delete(ctx, "pendulum", 3), ErrCheckpointNotFound)
}

func TestCheckpointsNormalizeNames(t *testing.T) {
	ctx := context.Background()
	cps, err := OpenCheckpoints(":memory:")
	require.NoError(t, err)
	defer cps.Close()

	// "é" precomposed vs e + combining acute accent
	require.NoError(t, cps.Put(ctx, Checkpoint{Problem: "caf\u00e9", Label: 1, State: []float64{1}}))
	got, err := cps.Get(ctx, "cafe\u0301", 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, got.State)
}
