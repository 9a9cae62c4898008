package metrics

import (
	"time"

	"github.com/kilianp07/railfleet/core/model"
)

// MetricsSink records fleet metrics snapshots. Sinks opt into the other
// event kinds by implementing the matching Recorder interface.
type MetricsSink interface {
	RecordFleetMetrics(m model.FleetMetrics) error
}

// RecommendationEvent is one recommendation produced by a scheduling run.
type RecommendationEvent struct {
	RunID          string
	Recommendation model.Recommendation
	Time           time.Time
}

// RecommendationRecorder records recommendations.
type RecommendationRecorder interface {
	RecordRecommendations(evs []RecommendationEvent) error
}

// ScheduleRunEvent summarizes a scheduling run.
type ScheduleRunEvent struct {
	RunID             string
	Trainsets         int
	Skipped           int
	HighRisk          int
	AverageConfidence float64
	Duration          time.Duration
	Time              time.Time
}

// ScheduleRunRecorder records scheduling runs.
type ScheduleRunRecorder interface {
	RecordScheduleRun(ev ScheduleRunEvent) error
}

// StatusChangeEvent records an operator status change.
type StatusChangeEvent struct {
	TrainsetID string
	From       model.Status
	To         model.Status
	Time       time.Time
}

// StatusChangeRecorder records status changes.
type StatusChangeRecorder interface {
	RecordStatusChange(ev StatusChangeEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordFleetMetrics(model.FleetMetrics) error       { return nil }
func (NopSink) RecordRecommendations([]RecommendationEvent) error { return nil }
func (NopSink) RecordScheduleRun(ScheduleRunEvent) error          { return nil }
func (NopSink) RecordStatusChange(StatusChangeEvent) error        { return nil }
