package trainsets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/railfleet/core/fleetstatus"
	"github.com/kilianp07/railfleet/core/model"
	"github.com/kilianp07/railfleet/core/schedule"
	"github.com/kilianp07/railfleet/core/schedule/logging"
)

type fakeService struct {
	store     *fleetstatus.MemoryStore
	lastAt    time.Time
	recommend func(id string) (model.Recommendation, error)
}

func (f *fakeService) Trainsets(ctx context.Context) ([]model.Trainset, error) {
	return f.store.Snapshot(ctx)
}

func (f *fakeService) Recommend(ctx context.Context, id string, at time.Time) (model.Recommendation, error) {
	f.lastAt = at
	if f.recommend != nil {
		return f.recommend(id)
	}
	if _, err := f.store.Get(ctx, id); err != nil {
		return model.Recommendation{}, err
	}
	return model.Recommendation{TrainsetID: id, RecommendedStatus: model.StatusReady, ConfidenceScore: 0.95, PriorityScore: 9}, nil
}

func (f *fakeService) UpdateStatus(ctx context.Context, id string, status model.Status) (model.Trainset, model.FleetMetrics, error) {
	u, err := f.store.UpdateStatus(ctx, id, status)
	return u.Trainset, u.Metrics, err
}

func (f *fakeService) GenerateSchedule(ctx context.Context, at time.Time) (logging.LogRecord, error) {
	f.lastAt = at
	return logging.LogRecord{RunID: "run-1", TargetDate: at, Summary: schedule.Summary{TotalTrainsets: 2}}, nil
}

func (f *fakeService) Metrics(ctx context.Context) (model.FleetMetrics, error) {
	return f.store.LatestMetrics(ctx)
}

func newServer(t *testing.T) (*fakeService, http.Handler) {
	t.Helper()
	store := fleetstatus.NewMemoryStore()
	now := time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC)
	for i, st := range []model.Status{model.StatusReady, model.StatusStandby} {
		_, err := store.Upsert(context.Background(), model.Trainset{
			ID:                     fmt.Sprintf("ts-0%d", i+1),
			Number:                 fmt.Sprintf("KMRL-00%d", i+1),
			Status:                 st,
			LastCleaning:           now,
			BrandingPriority:       5,
			AvailabilityPercentage: 90,
		})
		require.NoError(t, err)
	}
	svc := &fakeService{store: store}
	return svc, NewRouter(svc, nil, "", nil)
}

func do(t *testing.T, h http.Handler, method, url, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, url, nil)
	} else {
		req = httptest.NewRequest(method, url, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestListTrainsets(t *testing.T) {
	_, h := newServer(t)
	rr := do(t, h, http.MethodGet, "/api/trainsets", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var out []model.Trainset
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "ts-01", out[0].ID)
}

func TestRecommendation(t *testing.T) {
	svc, h := newServer(t)
	rr := do(t, h, http.MethodGet, "/api/trainsets/ts-02/recommendation?date=2025-06-02", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var rec model.Recommendation
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))
	assert.Equal(t, "ts-02", rec.TrainsetID)
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), svc.lastAt)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/trainsets/nope/recommendation", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/trainsets/ts-01/recommendation?date=02/06/2025", "").Code)
}

func TestRecommendation_InvalidRecord(t *testing.T) {
	svc, h := newServer(t)
	svc.recommend = func(id string) (model.Recommendation, error) {
		return model.Recommendation{}, &model.InvalidTrainsetError{TrainsetID: id, Field: "mileage", Reason: "must not be negative"}
	}
	rr := do(t, h, http.MethodGet, "/api/trainsets/ts-01/recommendation", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "mileage")
}

func TestUpdateStatus(t *testing.T) {
	_, h := newServer(t)
	rr := do(t, h, http.MethodPatch, "/api/trainsets/ts-02/status", `{"status":"Maintenance"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var out statusResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, model.StatusMaintenance, out.Trainset.Status)
	assert.Equal(t, 1, out.Metrics.Maintenance)
	assert.Equal(t, 50, out.Metrics.Serviceability)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPatch, "/api/trainsets/ts-02/status", `{"status":"retired"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPatch, "/api/trainsets/ts-02/status", `{`).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPatch, "/api/trainsets/ts-99/status", `{"status":"ready"}`).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodPost, "/api/trainsets/ts-02/status", `{"status":"ready"}`).Code)
}

func TestScheduleAndMetrics(t *testing.T) {
	svc, h := newServer(t)
	rr := do(t, h, http.MethodPost, "/api/schedule?date=2025-06-02", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var rec logging.LogRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))
	assert.Equal(t, "run-1", rec.RunID)
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), svc.lastAt)

	rr = do(t, h, http.MethodGet, "/api/fleet/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var m model.FleetMetrics
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &m))
	assert.Equal(t, 2, m.TotalFleet)
	assert.Equal(t, 100, m.Serviceability)
}

func TestHealthz(t *testing.T) {
	_, h := newServer(t)
	rr := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}
