package metrics

import (
	"errors"

	"github.com/kilianp07/railfleet/core/model"
)

// MultiSink fans events out to multiple sinks. Every sink receives the event
// even when an earlier one fails; the errors are joined.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

func (m *MultiSink) RecordFleetMetrics(fm model.FleetMetrics) error {
	var errs []error
	for _, s := range m.Sinks {
		errs = append(errs, s.RecordFleetMetrics(fm))
	}
	return errors.Join(errs...)
}

// RecordRecommendations forwards to sinks implementing RecommendationRecorder.
func (m *MultiSink) RecordRecommendations(evs []RecommendationEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(RecommendationRecorder); ok {
			errs = append(errs, r.RecordRecommendations(evs))
		}
	}
	return errors.Join(errs...)
}

// RecordScheduleRun forwards to sinks implementing ScheduleRunRecorder.
func (m *MultiSink) RecordScheduleRun(ev ScheduleRunEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(ScheduleRunRecorder); ok {
			errs = append(errs, r.RecordScheduleRun(ev))
		}
	}
	return errors.Join(errs...)
}

// RecordStatusChange forwards to sinks implementing StatusChangeRecorder.
func (m *MultiSink) RecordStatusChange(ev StatusChangeEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(StatusChangeRecorder); ok {
			errs = append(errs, r.RecordStatusChange(ev))
		}
	}
	return errors.Join(errs...)
}
