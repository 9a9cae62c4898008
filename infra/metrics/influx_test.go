package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/railfleet/core/metrics"
	"github.com/kilianp07/railfleet/core/model"
)

type capture struct {
	mu     sync.Mutex
	bodies []string
}

func (c *capture) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		c.mu.Lock()
		c.bodies = append(c.bodies, strings.TrimSpace(string(data)))
		c.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestInfluxSink_RecordFleetMetrics(t *testing.T) {
	c := &capture{}
	srv := c.server(t)
	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()

	now := time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC)
	m := model.FleetMetrics{TotalFleet: 6, Ready: 2, Standby: 1, Maintenance: 2, Critical: 1,
		Serviceability: 50, AvgAvailability: 78, SchedulesGenerated: 3, AvgAIConfidence: 0.86, UpdatedAt: now}
	if err := sink.RecordFleetMetrics(m); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("fleet_metrics").
		AddTag("component", "fleet_status").
		AddField("total_fleet", 6).
		AddField("ready", 2).
		AddField("standby", 1).
		AddField("maintenance", 2).
		AddField("critical", 1).
		AddField("serviceability", 50).
		AddField("avg_availability", 78).
		AddField("schedules_generated", 3).
		AddField("avg_ai_confidence", 0.86).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if len(c.bodies) != 1 || c.bodies[0] != expected {
		t.Errorf("unexpected body: %v", c.bodies)
	}
}

func TestInfluxSink_RecordRecommendations(t *testing.T) {
	c := &capture{}
	srv := c.server(t)
	sink := NewInfluxSink(srv.URL+"/api/v2/write", "token", "org", "bucket")
	defer sink.Close()

	now := time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC)
	rec := model.Recommendation{TrainsetID: "ts-04", RecommendedStatus: model.StatusCritical,
		ConfidenceScore: 0.98, PriorityScore: 10, RiskFactors: []string{"Mechanical failure risk"}}
	if err := sink.RecordRecommendations([]coremetrics.RecommendationEvent{{RunID: "run-1", Recommendation: rec, Time: now}}); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("recommendation").
		AddTag("trainset_id", "ts-04").
		AddTag("recommended_status", "critical").
		AddTag("run_id", "run-1").
		AddTag("high_risk", "true").
		AddField("confidence", 0.98).
		AddField("priority", 10).
		AddField("risk_factors", 1).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if len(c.bodies) != 1 || c.bodies[0] != expected {
		t.Errorf("unexpected body: %v", c.bodies)
	}

	if err := sink.RecordRecommendations(nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}
	if len(c.bodies) != 1 {
		t.Errorf("empty batch should not write")
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket")
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
