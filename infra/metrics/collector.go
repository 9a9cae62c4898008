package metrics

import (
	"context"

	"github.com/kilianp07/railfleet/core/events"
	coremetrics "github.com/kilianp07/railfleet/core/metrics"
	"github.com/kilianp07/railfleet/infra/logger"
	"github.com/kilianp07/railfleet/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for events.
// It stops when the context is canceled or the bus is closed. The returned
// channel is closed once the collector has exited.
func StartEventCollector(ctx context.Context, bus *eventbus.Bus[events.Event], sink coremetrics.MetricsSink, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := record(sink, ev); err != nil {
					log.Warnf("record %T: %v", ev, err)
				}
			}
		}
	}()
	return done
}

func record(sink coremetrics.MetricsSink, ev events.Event) error {
	switch e := ev.(type) {
	case events.StatusChangedEvent:
		if r, ok := sink.(coremetrics.StatusChangeRecorder); ok {
			if err := r.RecordStatusChange(coremetrics.StatusChangeEvent{
				TrainsetID: e.TrainsetID,
				From:       e.From,
				To:         e.To,
				Time:       e.Time,
			}); err != nil {
				return err
			}
		}
		return sink.RecordFleetMetrics(e.Metrics)
	case events.ScheduleEvent:
		if r, ok := sink.(coremetrics.RecommendationRecorder); ok {
			evs := make([]coremetrics.RecommendationEvent, 0, len(e.Result.Recommendations))
			for _, rec := range e.Result.Recommendations {
				evs = append(evs, coremetrics.RecommendationEvent{RunID: e.RunID, Recommendation: rec, Time: e.Time})
			}
			if err := r.RecordRecommendations(evs); err != nil {
				return err
			}
		}
		if r, ok := sink.(coremetrics.ScheduleRunRecorder); ok {
			if err := r.RecordScheduleRun(coremetrics.ScheduleRunEvent{
				RunID:             e.RunID,
				Trainsets:         e.Result.Summary.TotalTrainsets,
				Skipped:           len(e.Result.Errors),
				HighRisk:          e.Result.Summary.HighRiskCount,
				AverageConfidence: e.Result.Summary.AverageConfidence,
				Duration:          e.Duration,
				Time:              e.Time,
			}); err != nil {
				return err
			}
		}
		return sink.RecordFleetMetrics(e.Metrics)
	}
	return nil
}
