package main

import (
	"flag"
	"io"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/kilianp07/railfleet/core/model"
	"github.com/kilianp07/railfleet/infra/snapshot"
)

func main() {
	cfg := parseFlags()
	if err := (&cfg).Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	format, err := outputFormat(cfg)
	if err != nil {
		log.Fatalf("format: %v", err)
	}
	fleet := GenerateFleet(cfg, rand.New(rand.NewSource(cfg.Seed)))
	if err := write(cfg.Out, fleet, format); err != nil {
		log.Fatalf("write fleet: %v", err)
	}
}

func write(path string, fleet []model.Trainset, format snapshot.Format) (err error) {
	var w io.Writer = os.Stdout
	if path != "" {
		f, ferr := os.Create(path)
		if ferr != nil {
			return ferr
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}
	return snapshot.Encode(w, fleet, format)
}

func outputFormat(cfg Config) (snapshot.Format, error) {
	if cfg.Format != "" {
		return snapshot.Format(cfg.Format), nil
	}
	if cfg.Out != "" {
		return snapshot.FormatFromPath(cfg.Out)
	}
	return snapshot.FormatYAML, nil
}

func parseFlags() Config {
	var (
		cfg  Config
		date string
	)
	flag.IntVar(&cfg.Size, "size", 25, "number of trainsets")
	flag.Int64Var(&cfg.Seed, "seed", time.Now().UnixNano(), "random seed")
	flag.StringVar(&date, "date", "", "evaluation day (YYYY-MM-DD), defaults to today")
	flag.Float64Var(&cfg.CertifiedPct, "certified-pct", 0.5, "share of trainsets with certificate and job card data")
	flag.Float64Var(&cfg.DegradedPct, "degraded-pct", 0.2, "share of trainsets with poor availability")
	flag.StringVar(&cfg.Prefix, "prefix", "KMRL", "trainset number prefix")
	flag.StringVar(&cfg.Out, "out", "", "output file, stdout when empty")
	flag.StringVar(&cfg.Format, "format", "", "yaml or json, from the output extension when empty")
	flag.Parse()
	cfg.Date = time.Now().UTC()
	if date != "" {
		d, err := time.Parse("2006-01-02", date)
		if err != nil {
			log.Fatalf("invalid date: %v", err)
		}
		cfg.Date = d
	}
	return cfg
}
