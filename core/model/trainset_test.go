package model

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTrainset() Trainset {
	return Trainset{
		ID:                     "ts-01",
		Number:                 "TS-01",
		Status:                 StatusReady,
		BayPosition:            1,
		Mileage:                12000,
		LastCleaning:           time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		BrandingPriority:       5,
		AvailabilityPercentage: 92,
	}
}

func TestTrainsetValidate(t *testing.T) {
	cases := []struct {
		name  string
		mut   func(*Trainset)
		field string
	}{
		{"ok", func(*Trainset) {}, ""},
		{"missing id", func(ts *Trainset) { ts.ID = "" }, "id"},
		{"bad status", func(ts *Trainset) { ts.Status = "retired" }, "status"},
		{"negative mileage", func(ts *Trainset) { ts.Mileage = -1 }, "mileage"},
		{"nan mileage", func(ts *Trainset) { ts.Mileage = math.NaN() }, "mileage"},
		{"infinite mileage", func(ts *Trainset) { ts.Mileage = math.Inf(1) }, "mileage"},
		{"nan availability", func(ts *Trainset) { ts.AvailabilityPercentage = math.NaN() }, "availability_percentage"},
		{"infinite availability", func(ts *Trainset) { ts.AvailabilityPercentage = math.Inf(-1) }, "availability_percentage"},
		{"availability high", func(ts *Trainset) { ts.AvailabilityPercentage = 100.5 }, "availability_percentage"},
		{"availability low", func(ts *Trainset) { ts.AvailabilityPercentage = -0.1 }, "availability_percentage"},
		{"branding zero", func(ts *Trainset) { ts.BrandingPriority = 0 }, "branding_priority"},
		{"branding eleven", func(ts *Trainset) { ts.BrandingPriority = 11 }, "branding_priority"},
		{"no cleaning", func(ts *Trainset) { ts.LastCleaning = time.Time{} }, "last_cleaning"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ts := validTrainset()
			c.mut(&ts)
			err := ts.Validate()
			if c.field == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTrainset))
			var ite *InvalidTrainsetError
			require.True(t, errors.As(err, &ite))
			assert.Equal(t, c.field, ite.Field)
		})
	}
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus(" Ready ")
	require.NoError(t, err)
	assert.Equal(t, StatusReady, st)

	_, err = ParseStatus("parked")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestCertificateExpiredAtBoundary(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	assert.True(t, FitnessCertificate{ExpiryDate: now}.Expired(now))
	assert.False(t, FitnessCertificate{ExpiryDate: now.Add(time.Second)}.Expired(now))
}

func TestTrainsetCloneIsDeep(t *testing.T) {
	ts := validTrainset()
	ts.JobCards = []JobCard{{ID: "jc1", Status: JobCardOpen, Priority: 2}}
	cp := ts.Clone()
	cp.JobCards[0].Priority = 5
	assert.Equal(t, 2, ts.JobCards[0].Priority)
	assert.Nil(t, cp.FitnessCertificates)
	assert.True(t, cp.CertificateAware())
}

func TestFleetMetricsCount(t *testing.T) {
	m := FleetMetrics{Ready: 3, Standby: 2, Maintenance: 1, Critical: 4}
	total := 0
	for _, s := range AllStatuses() {
		total += m.Count(s)
	}
	assert.Equal(t, 10, total)
	assert.Equal(t, 0, m.Count("unknown"))
}

func TestTrainsetJSONKeepsCertificateAwareness(t *testing.T) {
	simple := validTrainset()
	aware := validTrainset()
	aware.JobCards = []JobCard{}
	for _, in := range []Trainset{simple, aware} {
		b, err := json.Marshal(in)
		require.NoError(t, err)
		var out Trainset
		require.NoError(t, json.Unmarshal(b, &out))
		assert.Equal(t, in.CertificateAware(), out.CertificateAware(), string(b))
	}
}
