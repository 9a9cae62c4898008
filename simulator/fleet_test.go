package main

import (
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/kilianp07/railfleet/core/model"
	"github.com/kilianp07/railfleet/infra/snapshot"
)

var day = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func TestGenerateFleetCount(t *testing.T) {
	ts := GenerateFleet(Config{Size: 5, Date: day, Prefix: "KMRL"}, rand.New(rand.NewSource(1)))
	if len(ts) != 5 {
		t.Fatalf("expected 5 trainsets, got %d", len(ts))
	}
	if ts[0].ID != "ts-001" || ts[4].Number != "KMRL-005" {
		t.Fatalf("unexpected ids %s %s", ts[0].ID, ts[4].Number)
	}
	if GenerateFleet(Config{}, rand.New(rand.NewSource(1))) != nil {
		t.Fatal("expected no trainsets for size 0")
	}
}

func TestGenerateFleetValid(t *testing.T) {
	cfg := Config{Size: 200, Date: day, CertifiedPct: 0.5, DegradedPct: 0.3, Prefix: "KMRL"}
	for _, tr := range GenerateFleet(cfg, rand.New(rand.NewSource(7))) {
		if err := tr.Validate(); err != nil {
			t.Fatalf("generated invalid trainset: %v", err)
		}
		if tr.LastCleaning.After(day) {
			t.Fatalf("%s cleaned in the future", tr.ID)
		}
	}
}

func TestGenerateFleetDeterministic(t *testing.T) {
	cfg := Config{Size: 20, Date: day, CertifiedPct: 0.5, Prefix: "KMRL"}
	a := GenerateFleet(cfg, rand.New(rand.NewSource(42)))
	b := GenerateFleet(cfg, rand.New(rand.NewSource(42)))
	for i := range a {
		if a[i].Mileage != b[i].Mileage || a[i].Status != b[i].Status || len(a[i].JobCards) != len(b[i].JobCards) {
			t.Fatalf("trainset %d differs between runs with the same seed", i)
		}
	}
}

func TestDistribution(t *testing.T) {
	cfg := Config{Size: 100, Date: day, CertifiedPct: 1, DegradedPct: 0.6, Prefix: "KMRL"}
	degraded := 0
	for _, tr := range GenerateFleet(cfg, rand.New(rand.NewSource(1))) {
		if !tr.CertificateAware() || len(tr.FitnessCertificates) == 0 {
			t.Fatalf("%s lacks certificates", tr.ID)
		}
		if tr.AvailabilityPercentage < 85 {
			degraded++
		}
	}
	if degraded < 40 || degraded > 80 {
		t.Fatalf("degraded ratio unexpected: %d", degraded)
	}
}

func TestCurrentStatus(t *testing.T) {
	cases := map[float64]model.Status{99: model.StatusReady, 90: model.StatusStandby, 70: model.StatusMaintenance, 41: model.StatusCritical}
	for avail, want := range cases {
		if got := currentStatus(avail); got != want {
			t.Errorf("availability %v: expected %s, got %s", avail, want, got)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	bad := []Config{{Size: 0}, {Size: 1, CertifiedPct: 2}, {Size: 1, DegradedPct: -1}}
	for _, c := range bad {
		if err := c.Validate(); err == nil {
			t.Fatalf("expected error for %+v", c)
		}
	}
	ok := Config{Size: 1}
	if err := ok.Validate(); err != nil || ok.Prefix != "KMRL" {
		t.Fatalf("unexpected %v %q", err, ok.Prefix)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	cfg := Config{Size: 4, Date: day, CertifiedPct: 1, Prefix: "KMRL"}
	fleet := GenerateFleet(cfg, rand.New(rand.NewSource(3)))
	for _, name := range []string{"fleet.yaml", "fleet.json"} {
		path := filepath.Join(t.TempDir(), name)
		cfg.Out = path
		format, err := outputFormat(cfg)
		if err != nil {
			t.Fatalf("format: %v", err)
		}
		if err := write(path, fleet, format); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		got, err := snapshot.Load(path)
		if err != nil {
			t.Fatalf("load %s: %v", name, err)
		}
		if len(got) != len(fleet) {
			t.Fatalf("%s: expected %d trainsets, got %d", name, len(fleet), len(got))
		}
		for i := range got {
			if got[i].ID != fleet[i].ID || got[i].CertificateAware() != fleet[i].CertificateAware() {
				t.Fatalf("%s: trainset %d changed on round trip", name, i)
			}
		}
	}
}
