package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/railfleet/core/metrics"
	"github.com/kilianp07/railfleet/core/model"
)

// PromSink exposes fleet metrics and scheduling activity as Prometheus
// collectors.
type PromSink struct {
	fleet           *prometheus.GaugeVec
	serviceability  prometheus.Gauge
	availability    prometheus.Gauge
	aiConfidence    prometheus.Gauge
	recommendations *prometheus.CounterVec
	confidence      prometheus.Histogram
	runs            prometheus.Counter
	skipped         prometheus.Counter
	runDuration     prometheus.Histogram
	statusChanges   *prometheus.CounterVec
}

// NewPromSink registers fleet metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// register adds c to reg, reusing an already registered collector of the
// same description.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	if s.fleet, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fleet_trainsets",
		Help: "Number of trainsets per operational status",
	}, []string{"status"})); err != nil {
		return nil, err
	}
	if s.serviceability, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fleet_serviceability_percent",
		Help: "Share of the fleet in ready or standby status",
	})); err != nil {
		return nil, err
	}
	if s.availability, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fleet_avg_availability_percent",
		Help: "Mean availability percentage across the fleet",
	})); err != nil {
		return nil, err
	}
	if s.aiConfidence, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fleet_avg_recommendation_confidence",
		Help: "Running mean of the average confidence over scheduling runs",
	})); err != nil {
		return nil, err
	}
	if s.recommendations, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recommendations_total",
		Help: "Total number of recommendations per recommended status",
	}, []string{"status"})); err != nil {
		return nil, err
	}
	if s.confidence, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "recommendation_confidence",
		Help:    "Confidence score of produced recommendations",
		Buckets: []float64{0.5, 0.6, 0.7, 0.8, 0.85, 0.9, 0.95, 1},
	})); err != nil {
		return nil, err
	}
	if s.runs, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_runs_total",
		Help: "Total number of scheduling runs",
	})); err != nil {
		return nil, err
	}
	if s.skipped, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_skipped_trainsets_total",
		Help: "Trainsets skipped by scheduling runs because of invalid records",
	})); err != nil {
		return nil, err
	}
	if s.runDuration, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schedule_run_duration_seconds",
		Help:    "Duration of scheduling runs",
		Buckets: prometheus.DefBuckets,
	})); err != nil {
		return nil, err
	}
	if s.statusChanges, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trainset_status_changes_total",
		Help: "Operator status changes per target status",
	}, []string{"from", "to"})); err != nil {
		return nil, err
	}
	return s, nil
}

// RecordFleetMetrics sets the fleet gauges from the rollup.
func (s *PromSink) RecordFleetMetrics(m model.FleetMetrics) error {
	for _, st := range model.AllStatuses() {
		s.fleet.WithLabelValues(st.String()).Set(float64(m.Count(st)))
	}
	s.serviceability.Set(float64(m.Serviceability))
	s.availability.Set(float64(m.AvgAvailability))
	s.aiConfidence.Set(m.AvgAIConfidence)
	return nil
}

// RecordRecommendations counts recommendations and observes their confidence.
func (s *PromSink) RecordRecommendations(evs []coremetrics.RecommendationEvent) error {
	for _, ev := range evs {
		s.recommendations.WithLabelValues(ev.Recommendation.RecommendedStatus.String()).Inc()
		s.confidence.Observe(ev.Recommendation.ConfidenceScore)
	}
	return nil
}

// RecordScheduleRun counts the run and its skipped trainsets.
func (s *PromSink) RecordScheduleRun(ev coremetrics.ScheduleRunEvent) error {
	s.runs.Inc()
	s.skipped.Add(float64(ev.Skipped))
	s.runDuration.Observe(ev.Duration.Seconds())
	return nil
}

// RecordStatusChange counts an operator status change.
func (s *PromSink) RecordStatusChange(ev coremetrics.StatusChangeEvent) error {
	s.statusChanges.WithLabelValues(ev.From.String(), ev.To.String()).Inc()
	return nil
}
