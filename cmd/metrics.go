package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/kilianp07/railfleet/core/fleetmetrics"
	"github.com/kilianp07/railfleet/core/model"
)

var metricsFlags struct {
	fleet string
	json  bool
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Print the fleet metrics rollup",
	RunE:  runMetrics,
}

func init() {
	metricsCmd.Flags().StringVar(&metricsFlags.fleet, "fleet", "", "fleet snapshot file (yaml or json)")
	metricsCmd.Flags().BoolVar(&metricsFlags.json, "json", false, "print JSON instead of a table")
	rootCmd.AddCommand(metricsCmd)
}

func runMetrics(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	fleet, err := loadFleet(cmd.Context(), cfg, metricsFlags.fleet)
	if err != nil {
		return err
	}
	m := fleetmetrics.Recompute(fleet)
	w := cmd.OutOrStdout()
	if metricsFlags.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	}
	table := uitable.New()
	table.AddRow("TOTAL", m.TotalFleet)
	for _, st := range model.AllStatuses() {
		table.AddRow(st, m.Count(st))
	}
	table.AddRow("SERVICEABILITY", fmt.Sprintf("%d%%", m.Serviceability))
	table.AddRow("AVG AVAILABILITY", fmt.Sprintf("%d%%", m.AvgAvailability))
	_, err = fmt.Fprintln(w, table)
	return err
}
