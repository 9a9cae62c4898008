package main

import (
	"fmt"
	"time"
)

// Config holds parameters for the fleet generator.
type Config struct {
	Size int
	Seed int64
	// Date is the evaluation day cleaning dates and certificate expiries are
	// generated around.
	Date time.Time
	// CertifiedPct is the share of trainsets carrying certificate and job
	// card data.
	CertifiedPct float64
	// DegradedPct is the share of trainsets generated with poor availability.
	DegradedPct float64
	Prefix      string
	Out         string
	Format      string
}

func (c *Config) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("size must be positive")
	}
	if c.CertifiedPct < 0 || c.CertifiedPct > 1 {
		return fmt.Errorf("certified-pct must be within [0,1]")
	}
	if c.DegradedPct < 0 || c.DegradedPct > 1 {
		return fmt.Errorf("degraded-pct must be within [0,1]")
	}
	if c.Prefix == "" {
		c.Prefix = "KMRL"
	}
	return nil
}
