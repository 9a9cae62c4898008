package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/railfleet/app/plugins"
	coremetrics "github.com/kilianp07/railfleet/core/metrics"
	schedlog "github.com/kilianp07/railfleet/core/schedule/logging"
	"github.com/kilianp07/railfleet/infra/metrics"
	"github.com/kilianp07/railfleet/jobs/backfill"
)

var backfillFlags struct {
	start string
	end   string
}

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Replay logged scheduling runs into the configured metrics sinks",
	RunE:  runBackfill,
}

func init() {
	backfillCmd.Flags().StringVar(&backfillFlags.start, "start", "", "only runs at or after this RFC3339 time")
	backfillCmd.Flags().StringVar(&backfillFlags.end, "end", "", "only runs at or before this RFC3339 time")
	rootCmd.AddCommand(backfillCmd)
}

func runBackfill(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	var q schedlog.LogQuery
	if q.Start, err = parseRFC3339(backfillFlags.start); err != nil {
		return err
	}
	if q.End, err = parseRFC3339(backfillFlags.end); err != nil {
		return err
	}
	store, err := plugins.NewLogStore(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return fmt.Errorf("metrics sink: %w", err)
	}
	if s, ok := sink.(*metrics.InfluxSink); ok {
		defer s.Close()
	}
	n, err := backfill.Runs(cmd.Context(), store, q, sink)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "replayed %d scheduling runs\n", n)
	return err
}

// parseRFC3339 parses an optional time flag. An empty value is the zero time.
func parseRFC3339(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return t, nil
}
