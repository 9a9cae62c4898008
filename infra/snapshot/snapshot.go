// Package snapshot reads fleet snapshot files and seeds a fleet store from
// them.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/railfleet/core/fleetstatus"
	"github.com/kilianp07/railfleet/core/model"
)

// File is the on-disk layout of a fleet snapshot.
type File struct {
	Trainsets []model.Trainset `json:"trainsets" yaml:"trainsets"`
}

// Format identifies a snapshot encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported snapshot format: %s", filepath.Ext(path))
}

// Decode reads trainsets from r. Records are returned as found; validation
// happens when they are scheduled or stored.
func Decode(r io.Reader, format Format) ([]model.Trainset, error) {
	var f File
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode yaml snapshot: %w", err)
		}
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&f); err != nil {
			return nil, fmt.Errorf("decode json snapshot: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported snapshot format: %s", format)
	}
	return f.Trainsets, nil
}

// Encode writes trainsets to w as a snapshot file.
func Encode(w io.Writer, trainsets []model.Trainset, format Format) error {
	f := File{Trainsets: trainsets}
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return fmt.Errorf("encode yaml snapshot: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(f)
	}
	return fmt.Errorf("unsupported snapshot format: %s", format)
}

// Load reads the snapshot file at path.
func Load(path string) ([]model.Trainset, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return Decode(f, format)
}

// Seed upserts every trainset into store. Invalid records are skipped and
// reported in the joined error; valid ones are stored regardless.
func Seed(ctx context.Context, store fleetstatus.Store, trainsets []model.Trainset) (int, error) {
	var (
		errs   []error
		stored int
	)
	for _, t := range trainsets {
		if _, err := store.Upsert(ctx, t); err != nil {
			errs = append(errs, fmt.Errorf("seed %s: %w", t.ID, err))
			continue
		}
		stored++
	}
	return stored, errors.Join(errs...)
}
