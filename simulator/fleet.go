package main

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/kilianp07/railfleet/core/model"
)

var certificateTypes = []string{"rolling_stock", "signalling", "telecom"}

// GenerateFleet creates cfg.Size trainsets with ids ts-001..ts-NNN. The
// current status follows the generated availability so that the fleet looks
// like one an operator has been running.
func GenerateFleet(cfg Config, rng *rand.Rand) []model.Trainset {
	if cfg.Size <= 0 {
		return nil
	}
	day := cfg.Date.Truncate(24 * time.Hour)
	ts := make([]model.Trainset, cfg.Size)
	for i := range ts {
		avail := 85 + rng.Float64()*15
		if rng.Float64() < cfg.DegradedPct {
			avail = 40 + rng.Float64()*45
		}
		t := model.Trainset{
			ID:                     fmt.Sprintf("ts-%03d", i+1),
			Number:                 fmt.Sprintf("%s-%03d", cfg.Prefix, i+1),
			BayPosition:            i + 1,
			Mileage:                math.Round(5000 + rng.Float64()*65000),
			LastCleaning:           day.Add(-time.Duration(rng.Intn(20*24)) * time.Hour),
			BrandingPriority:       1 + rng.Intn(10),
			AvailabilityPercentage: math.Round(avail*10) / 10,
		}
		t.Status = currentStatus(t.AvailabilityPercentage)
		if rng.Float64() < cfg.CertifiedPct {
			t.FitnessCertificates, t.JobCards = paperwork(t.ID, day, rng)
		}
		ts[i] = t
	}
	return ts
}

func currentStatus(avail float64) model.Status {
	switch {
	case avail >= 95:
		return model.StatusReady
	case avail >= 85:
		return model.StatusStandby
	case avail >= 60:
		return model.StatusMaintenance
	}
	return model.StatusCritical
}

// paperwork returns one or two certificates expiring between ten days ago
// and four months ahead, and up to three job cards.
func paperwork(id string, day time.Time, rng *rand.Rand) ([]model.FitnessCertificate, []model.JobCard) {
	certs := make([]model.FitnessCertificate, 1+rng.Intn(2))
	for i := range certs {
		certs[i] = model.FitnessCertificate{
			ID:         fmt.Sprintf("%s-fc%d", id, i+1),
			Type:       certificateTypes[rng.Intn(len(certificateTypes))],
			ExpiryDate: day.AddDate(0, 0, rng.Intn(130)-10),
		}
	}
	jobs := make([]model.JobCard, rng.Intn(4))
	for i := range jobs {
		st := model.JobCardOpen
		if rng.Intn(2) == 0 {
			st = model.JobCardClosed
		}
		jobs[i] = model.JobCard{ID: fmt.Sprintf("%s-jc%d", id, i+1), Status: st, Priority: 1 + rng.Intn(5)}
	}
	return certs, jobs
}
