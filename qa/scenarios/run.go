package scenarios

import (
	"context"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/railfleet/app"
	"github.com/kilianp07/railfleet/core/fleetstatus"
	"github.com/kilianp07/railfleet/core/model"
	coremon "github.com/kilianp07/railfleet/core/monitoring"
	"github.com/kilianp07/railfleet/core/recommend"
	"github.com/kilianp07/railfleet/core/schedule"
	schedlog "github.com/kilianp07/railfleet/core/schedule/logging"
	"github.com/kilianp07/railfleet/infra/logger"
	"github.com/kilianp07/railfleet/infra/metrics"
	"github.com/kilianp07/railfleet/infra/snapshot"
)

// RunScenario scores the scenario fleet, checks every expectation, then
// replays it through the fleet service: valid trainsets are stored, a
// schedule is generated and, when Apply is set, its recommendations applied.
func RunScenario(t *testing.T, sc *Scenario) {
	engine := recommend.NewDefaultEngine()
	mon := &coremon.RecordingMonitor{}
	sched, err := schedule.NewScheduler(engine, logger.NopLogger{}, mon)
	if err != nil {
		t.Fatalf("scheduler: %v", err)
	}
	res := sched.ScheduleAll(sc.Trainsets, sc.Date)
	checkResult(t, sc, res)
	if len(mon.Errors) != len(sc.Expected.Skipped) {
		t.Errorf("scenario %s expected %d reported errors, got %d", sc.Name, len(sc.Expected.Skipped), len(mon.Errors))
	}

	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}
	runs, err := schedlog.NewJSONLStore(filepath.Join(t.TempDir(), "runs.jsonl"))
	if err != nil {
		t.Fatalf("run log: %v", err)
	}
	store := fleetstatus.NewMemoryStore()
	ctx := context.Background()
	stored, _ := snapshot.Seed(ctx, store, sc.Trainsets)
	svc, err := app.NewService(app.Options{Store: store, Engine: engine, Runs: runs, Sink: sink})
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	wait := svc.StartConsumers(ctx)

	rec, err := svc.GenerateSchedule(ctx, sc.Date)
	if err != nil {
		t.Fatalf("generate schedule: %v", err)
	}
	if len(rec.Recommendations) != stored {
		t.Errorf("scenario %s expected %d stored recommendations, got %d", sc.Name, stored, len(rec.Recommendations))
	}
	applied := 0
	if sc.Apply {
		if applied, err = svc.ApplyRecommendations(ctx, rec); err != nil {
			t.Fatalf("apply: %v", err)
		}
	}
	m, err := svc.Metrics(ctx)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	if want := sc.Expected.Metrics; want != nil {
		got := MetricsDef{Ready: m.Ready, Standby: m.Standby, Maintenance: m.Maintenance, Critical: m.Critical, Serviceability: m.Serviceability}
		if got != *want {
			t.Errorf("scenario %s expected metrics %+v, got %+v", sc.Name, *want, got)
		}
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	wait()

	if got := counterSum(t, reg, "schedule_runs_total"); got != 1 {
		t.Errorf("scenario %s expected 1 scheduling run, got %v", sc.Name, got)
	}
	if got := counterSum(t, reg, "recommendations_total"); int(got) != stored {
		t.Errorf("scenario %s expected %d recommendations recorded, got %v", sc.Name, stored, got)
	}
	if got := counterSum(t, reg, "trainset_status_changes_total"); int(got) != applied {
		t.Errorf("scenario %s expected %d status changes recorded, got %v", sc.Name, applied, got)
	}
}

func checkResult(t *testing.T, sc *Scenario, res schedule.Result) {
	t.Helper()
	byID := make(map[string]model.Recommendation, len(res.Recommendations))
	for _, r := range res.Recommendations {
		byID[r.TrainsetID] = r
	}
	exp := sc.Expected
	for id, want := range exp.Statuses {
		if got := byID[id].RecommendedStatus; got != want {
			t.Errorf("scenario %s: %s expected %s, got %s", sc.Name, id, want, got)
		}
	}
	for id, want := range exp.Priorities {
		if got := byID[id].PriorityScore; got != want {
			t.Errorf("scenario %s: %s expected priority %d, got %d", sc.Name, id, want, got)
		}
	}
	for id, want := range exp.Confidences {
		if got := byID[id].ConfidenceScore; got != want {
			t.Errorf("scenario %s: %s expected confidence %v, got %v", sc.Name, id, want, got)
		}
	}
	for id, want := range exp.Reasoning {
		if !anyContains(byID[id].Reasoning, want) {
			t.Errorf("scenario %s: %s reasoning %q lacks %q", sc.Name, id, byID[id].Reasoning, want)
		}
	}
	for id, want := range exp.RiskFactors {
		if !anyContains(byID[id].RiskFactors, want) {
			t.Errorf("scenario %s: %s risk factors %q lack %q", sc.Name, id, byID[id].RiskFactors, want)
		}
	}
	if exp.Summary != nil && !reflect.DeepEqual(exp.Summary, res.Summary.Recommendations) {
		t.Errorf("scenario %s expected summary %v, got %v", sc.Name, exp.Summary, res.Summary.Recommendations)
	}
	if res.Summary.TotalTrainsets != len(sc.Trainsets) {
		t.Errorf("scenario %s expected total %d, got %d", sc.Name, len(sc.Trainsets), res.Summary.TotalTrainsets)
	}
	skipped := make([]string, 0, len(res.Errors))
	for _, e := range res.Errors {
		skipped = append(skipped, e.TrainsetID)
	}
	if len(exp.Skipped) > 0 || len(skipped) > 0 {
		if !reflect.DeepEqual(exp.Skipped, skipped) {
			t.Errorf("scenario %s expected skipped %v, got %v", sc.Name, exp.Skipped, skipped)
		}
	}
	if exp.InductionOrder != nil && !reflect.DeepEqual(exp.InductionOrder, res.InductionOrder) {
		t.Errorf("scenario %s expected induction order %v, got %v", sc.Name, exp.InductionOrder, res.InductionOrder)
	}
}

func anyContains(items []string, sub string) bool {
	for _, s := range items {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// counterSum adds up every series of the named counter.
func counterSum(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var sum float64
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			sum += m.GetCounter().GetValue()
		}
	}
	return sum
}
