package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/railfleet/core/metrics"
	"github.com/kilianp07/railfleet/core/model"
	"github.com/kilianp07/railfleet/infra/logger"
)

// InfluxSink writes fleet events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the client.
func (s *InfluxSink) Close() { s.client.Close() }

// RecordFleetMetrics writes the rollup as one fleet_metrics point.
func (s *InfluxSink) RecordFleetMetrics(m model.FleetMetrics) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ts := m.UpdatedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	p := write.NewPointWithMeasurement("fleet_metrics").
		AddTag("component", "fleet_status").
		AddField("total_fleet", m.TotalFleet).
		AddField("ready", m.Ready).
		AddField("standby", m.Standby).
		AddField("maintenance", m.Maintenance).
		AddField("critical", m.Critical).
		AddField("serviceability", m.Serviceability).
		AddField("avg_availability", m.AvgAvailability).
		AddField("schedules_generated", m.SchedulesGenerated).
		AddField("avg_ai_confidence", round3(m.AvgAIConfidence)).
		SetTime(ts)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordRecommendations writes one recommendation point per trainset.
func (s *InfluxSink) RecordRecommendations(evs []coremetrics.RecommendationEvent) error {
	if len(evs) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	points := make([]*write.Point, 0, len(evs))
	for _, ev := range evs {
		r := ev.Recommendation
		points = append(points, write.NewPointWithMeasurement("recommendation").
			AddTag("trainset_id", r.TrainsetID).
			AddTag("recommended_status", r.RecommendedStatus.String()).
			AddTag("run_id", ev.RunID).
			AddTag("high_risk", strconv.FormatBool(r.HighRisk())).
			AddField("confidence", round3(r.ConfidenceScore)).
			AddField("priority", r.PriorityScore).
			AddField("risk_factors", len(r.RiskFactors)).
			SetTime(ev.Time))
	}
	return s.writeAPI.WritePoint(ctx, points...)
}

// RecordScheduleRun writes the run summary.
func (s *InfluxSink) RecordScheduleRun(ev coremetrics.ScheduleRunEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("schedule_run").
		AddTag("run_id", ev.RunID).
		AddTag("component", "batch_scheduler").
		AddField("trainsets", ev.Trainsets).
		AddField("skipped", ev.Skipped).
		AddField("high_risk", ev.HighRisk).
		AddField("avg_confidence", round3(ev.AverageConfidence)).
		AddField("duration_ms", round3(ev.Duration.Seconds()*1000)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordStatusChange writes an operator status change.
func (s *InfluxSink) RecordStatusChange(ev coremetrics.StatusChangeEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("status_change").
		AddTag("trainset_id", ev.TrainsetID).
		AddTag("from", ev.From.String()).
		AddTag("to", ev.To.String()).
		AddField("changed", 1).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
