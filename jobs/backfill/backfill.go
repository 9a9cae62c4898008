// Package backfill replays recorded scheduling runs into metrics sinks, e.g.
// after a time series backend was added to an existing deployment.
package backfill

import (
	"context"
	"fmt"

	coremetrics "github.com/kilianp07/railfleet/core/metrics"
	schedlog "github.com/kilianp07/railfleet/core/schedule/logging"
)

// Runs records every logged run matching q into sink and returns the number
// of runs replayed. Run durations are not logged and are replayed as zero.
func Runs(ctx context.Context, store schedlog.LogStore, q schedlog.LogQuery, sink coremetrics.MetricsSink) (int, error) {
	history, err := store.Query(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("query runs: %w", err)
	}
	recRecorder, _ := sink.(coremetrics.RecommendationRecorder)
	runRecorder, _ := sink.(coremetrics.ScheduleRunRecorder)
	for i, h := range history {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if recRecorder != nil {
			evs := make([]coremetrics.RecommendationEvent, 0, len(h.Recommendations))
			for _, r := range h.Recommendations {
				evs = append(evs, coremetrics.RecommendationEvent{RunID: h.RunID, Recommendation: r, Time: h.Timestamp})
			}
			if err := recRecorder.RecordRecommendations(evs); err != nil {
				return i, fmt.Errorf("run %s: %w", h.RunID, err)
			}
		}
		if runRecorder != nil {
			if err := runRecorder.RecordScheduleRun(coremetrics.ScheduleRunEvent{
				RunID:             h.RunID,
				Trainsets:         h.Summary.TotalTrainsets,
				Skipped:           len(h.Errors),
				HighRisk:          h.Summary.HighRiskCount,
				AverageConfidence: h.Summary.AverageConfidence,
				Time:              h.Timestamp,
			}); err != nil {
				return i, fmt.Errorf("run %s: %w", h.RunID, err)
			}
		}
	}
	return len(history), nil
}
