package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/railfleet/config"
	"github.com/kilianp07/railfleet/core/model"
	"github.com/kilianp07/railfleet/infra/fleetdb"
	"github.com/kilianp07/railfleet/infra/snapshot"
)

const dateLayout = "2006-01-02"

// loadFleet reads the trainsets from the snapshot file at path, falling back
// to the configured snapshot and then to the sqlite store.
func loadFleet(ctx context.Context, cfg *config.Config, path string) ([]model.Trainset, error) {
	if path == "" {
		path = cfg.Fleet.SnapshotPath
	}
	if path != "" {
		return snapshot.Load(path)
	}
	if cfg.Fleet.Store != "sqlite" {
		return nil, fmt.Errorf("no fleet: pass --fleet or set fleet.snapshot_path")
	}
	store, err := fleetdb.NewSQLiteStore(cfg.Fleet.DatabasePath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()
	return store.Snapshot(ctx)
}

// parseDate parses the --date flag. An empty value means now.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	d, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}
