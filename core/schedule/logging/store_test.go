package logging

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/railfleet/core/model"
	"github.com/kilianp07/railfleet/core/schedule"
)

func sampleRecord(runID string, ts time.Time, recs ...model.Recommendation) LogRecord {
	res := schedule.Result{Recommendations: recs}
	res.Summary = schedule.Summarize(recs, len(recs), ts)
	return NewLogRecord(runID, ts, ts.AddDate(0, 0, 1), res)
}

func exerciseStore(t *testing.T, store LogStore) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 22, 0, 0, 0, time.UTC)
	require.NoError(t, store.Append(ctx, sampleRecord("run-1", base,
		model.Recommendation{TrainsetID: "ts-01", RecommendedStatus: model.StatusReady, ConfidenceScore: 0.9},
		model.Recommendation{TrainsetID: "ts-02", RecommendedStatus: model.StatusCritical, ConfidenceScore: 0.98},
	)))
	require.NoError(t, store.Append(ctx, sampleRecord("run-2", base.Add(24*time.Hour),
		model.Recommendation{TrainsetID: "ts-01", RecommendedStatus: model.StatusStandby, ConfidenceScore: 0.85},
	)))

	all, err := store.Query(ctx, LogQuery{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "run-1", all[0].RunID)
	assert.Equal(t, 2, all[0].Summary.TotalTrainsets)

	byTrainset, err := store.Query(ctx, LogQuery{TrainsetID: "ts-02"})
	require.NoError(t, err)
	require.Len(t, byTrainset, 1)
	assert.Equal(t, "run-1", byTrainset[0].RunID)

	byStatus, err := store.Query(ctx, LogQuery{TrainsetID: "ts-01", Status: model.StatusStandby})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "run-2", byStatus[0].RunID)

	windowed, err := store.Query(ctx, LogQuery{Start: base.Add(time.Hour)})
	require.NoError(t, err)
	require.Len(t, windowed, 1)
	assert.Equal(t, "run-2", windowed[0].RunID)

	none, err := store.Query(ctx, LogQuery{End: base.Add(-time.Hour)})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestJSONLStore(t *testing.T) {
	store, err := NewJSONLStore(filepath.Join(t.TempDir(), "runs.jsonl"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	exerciseStore(t, store)
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore("file:schedule_runs_test?mode=memory&cache=shared")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	exerciseStore(t, store)
}

func TestRotatingJSONLStore(t *testing.T) {
	store, err := NewRotatingJSONLStore(filepath.Join(t.TempDir(), "runs.jsonl"), 1, 2, 1)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	exerciseStore(t, store)
}

func TestRotatingJSONLStore_QueriesBackups(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "runs.jsonl")
	store, err := NewRotatingJSONLStore(path, 1, 5, 1)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	base := time.Date(2025, 6, 1, 22, 0, 0, 0, time.UTC)
	reasoning := make([]string, 0, 64)
	for i := 0; i < 64; i++ {
		reasoning = append(reasoning, strings.Repeat("x", 1024))
	}
	// each record is ~64KiB so 20 of them overflow a 1MB file once
	for i := 0; i < 20; i++ {
		rec := sampleRecord("run", base.Add(time.Duration(i)*time.Minute),
			model.Recommendation{TrainsetID: "ts-01", RecommendedStatus: model.StatusReady, Reasoning: reasoning})
		require.NoError(t, store.Append(ctx, rec))
	}
	backups, err := filepath.Glob(filepath.Join(dir, "runs-*.jsonl"))
	require.NoError(t, err)
	require.NotEmpty(t, backups)

	out, err := store.Query(ctx, LogQuery{})
	require.NoError(t, err)
	require.Len(t, out, 20)
	assert.True(t, out[0].Timestamp.Equal(base))
	assert.True(t, out[19].Timestamp.Equal(base.Add(19*time.Minute)))
}
