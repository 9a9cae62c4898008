package plugins

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/railfleet/config"
	schedlog "github.com/kilianp07/railfleet/core/schedule/logging"
)

func TestLogStoreNames(t *testing.T) {
	assert.Equal(t, []string{"jsonl", "rotating", "sqlite"}, LogStoreNames())
}

func TestNewLogStore(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		cfg  config.LoggingConfig
		want any
	}{
		{config.LoggingConfig{Backend: "jsonl", Path: filepath.Join(dir, "a.jsonl")}, &schedlog.JSONLStore{}},
		{config.LoggingConfig{Backend: "rotating", Path: filepath.Join(dir, "b.jsonl"), MaxSizeMB: 1}, &schedlog.RotatingJSONLStore{}},
		{config.LoggingConfig{Backend: "sqlite", Path: filepath.Join(dir, "c.db")}, &schedlog.SQLiteStore{}},
	}
	for _, c := range cases {
		store, err := NewLogStore(c.cfg)
		require.NoError(t, err, c.cfg.Backend)
		assert.IsType(t, c.want, store)
		require.NoError(t, store.Close())
	}
}

func TestNewLogStoreUnknown(t *testing.T) {
	_, err := NewLogStore(config.LoggingConfig{Backend: "kafka", Path: "x"})
	require.Error(t, err)
}
