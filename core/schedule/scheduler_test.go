package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/railfleet/core/model"
	"github.com/kilianp07/railfleet/core/monitoring"
	"github.com/kilianp07/railfleet/core/recommend"
)

var now = time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC)

func unit(id string, mileage, avail float64, branding int) model.Trainset {
	return model.Trainset{
		ID:                     id,
		Number:                 "TS-" + id,
		Status:                 model.StatusStandby,
		Mileage:                mileage,
		AvailabilityPercentage: avail,
		BrandingPriority:       branding,
		LastCleaning:           now.AddDate(0, 0, -1),
	}
}

func sixUnitFleet() []model.Trainset {
	return []model.Trainset{
		unit("01", 27000, 100, 9),
		unit("02", 46000, 95, 5),
		unit("03", 42000, 88, 5),
		unit("04", 70000, 90, 5),
		unit("05", 20000, 91, 5),
		unit("06", 30000, 70, 5),
	}
}

func newScheduler(t *testing.T, mon monitoring.Monitor) *Scheduler {
	t.Helper()
	s, err := NewScheduler(recommend.NewDefaultEngine(), nil, mon)
	require.NoError(t, err)
	return s
}

func TestScheduleAll_Summary(t *testing.T) {
	res := newScheduler(t, nil).ScheduleAll(sixUnitFleet(), now)

	require.Len(t, res.Recommendations, 6)
	assert.Empty(t, res.Errors)
	assert.Equal(t, 6, res.Summary.TotalTrainsets)
	assert.Equal(t, map[model.Status]int{
		model.StatusReady:       2,
		model.StatusStandby:     1,
		model.StatusMaintenance: 2,
		model.StatusCritical:    1,
	}, res.Summary.Recommendations)
	assert.Equal(t, 0.86, res.Summary.AverageConfidence)
	assert.Equal(t, 1, res.Summary.HighRiskCount)
	assert.Equal(t, "2025-06-01T06:00:00.000Z", res.Summary.OptimizationTimestamp)
}

func TestScheduleAll_PreservesInputOrder(t *testing.T) {
	fleet := sixUnitFleet()
	res := newScheduler(t, nil).ScheduleAll(fleet, now)
	for i, rec := range res.Recommendations {
		assert.Equal(t, fleet[i].ID, rec.TrainsetID)
	}
	assert.Equal(t, []string{"01", "05", "03"}, res.InductionOrder)
}

func TestScheduleAll_SkipsInvalidTrainset(t *testing.T) {
	fleet := sixUnitFleet()
	bad := unit("07", 1000, 90, 5)
	bad.Status = "scrapped"
	fleet = append(fleet[:2], append([]model.Trainset{bad}, fleet[2:]...)...)

	mon := &monitoring.RecordingMonitor{}
	res := newScheduler(t, mon).ScheduleAll(fleet, now)

	assert.Len(t, res.Recommendations, 6)
	assert.Equal(t, 7, res.Summary.TotalTrainsets)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 2, res.Errors[0].Index)
	assert.Equal(t, "07", res.Errors[0].TrainsetID)
	assert.True(t, errors.Is(res.Errors[0].Err, model.ErrInvalidTrainset))
	require.Len(t, mon.Errors, 1)
	assert.Equal(t, "07", mon.Tags[0]["trainset_id"])
	for _, rec := range res.Recommendations {
		assert.NotEqual(t, "07", rec.TrainsetID)
	}
}

func TestScheduleAll_EmptyFleet(t *testing.T) {
	res := newScheduler(t, nil).ScheduleAll(nil, now)
	assert.Empty(t, res.Recommendations)
	assert.NotNil(t, res.Recommendations)
	assert.Equal(t, 0, res.Summary.TotalTrainsets)
	assert.Empty(t, res.Summary.Recommendations)
	assert.Equal(t, 0.0, res.Summary.AverageConfidence)
	assert.Empty(t, res.InductionOrder)
}

func TestNewScheduler_NilEngine(t *testing.T) {
	_, err := NewScheduler(nil, nil, nil)
	assert.Error(t, err)
}

type fixedRecommender map[string]model.Recommendation

func (f fixedRecommender) Recommend(t model.Trainset, _ time.Time) (model.Recommendation, error) {
	return f[t.ID], nil
}

func TestInductionOrder_DeterministicTieBreak(t *testing.T) {
	recs := fixedRecommender{
		"c": {TrainsetID: "c", RecommendedStatus: model.StatusReady, PriorityScore: 8, ConfidenceScore: 0.9},
		"a": {TrainsetID: "a", RecommendedStatus: model.StatusReady, PriorityScore: 8, ConfidenceScore: 0.9},
		"b": {TrainsetID: "b", RecommendedStatus: model.StatusStandby, PriorityScore: 10, ConfidenceScore: 0.99},
		"d": {TrainsetID: "d", RecommendedStatus: model.StatusReady, PriorityScore: 8, ConfidenceScore: 0.95},
		"e": {TrainsetID: "e", RecommendedStatus: model.StatusCritical, PriorityScore: 10, ConfidenceScore: 0.98},
	}
	s, err := NewScheduler(recs, nil, nil)
	require.NoError(t, err)
	fleet := []model.Trainset{{ID: "c"}, {ID: "a"}, {ID: "b"}, {ID: "d"}, {ID: "e"}}
	for i := 0; i < 5; i++ {
		res := s.ScheduleAll(fleet, now)
		assert.Equal(t, []string{"d", "a", "c", "b"}, res.InductionOrder)
	}
}
