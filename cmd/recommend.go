package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/kilianp07/railfleet/core/model"
	coremon "github.com/kilianp07/railfleet/core/monitoring"
	"github.com/kilianp07/railfleet/core/recommend"
	"github.com/kilianp07/railfleet/core/schedule"
	"github.com/kilianp07/railfleet/infra/logger"
	"github.com/kilianp07/railfleet/pkg/export"
)

var recommendFlags struct {
	date   string
	fleet  string
	format string
	output string
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend a status for every trainset of a fleet",
	Long: "Scores every trainset of a fleet snapshot and prints the induction plan. " +
		"Nothing is persisted; use the API to record scheduling runs.",
	RunE: runRecommend,
}

func init() {
	f := recommendCmd.Flags()
	f.StringVar(&recommendFlags.date, "date", "", "evaluation date (YYYY-MM-DD), defaults to now")
	f.StringVar(&recommendFlags.fleet, "fleet", "", "fleet snapshot file (yaml or json)")
	f.StringVarP(&recommendFlags.format, "format", "f", "table", "output format: table, json, csv or html")
	f.StringVarP(&recommendFlags.output, "output", "o", "", "write to this file instead of stdout")
	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	at, err := parseDate(recommendFlags.date)
	if err != nil {
		return err
	}
	fleet, err := loadFleet(cmd.Context(), cfg, recommendFlags.fleet)
	if err != nil {
		return err
	}
	// skipped trainsets are printed from res.Errors below
	sched, err := schedule.NewScheduler(recommend.NewEngine(cfg.Engine), logger.NopLogger{}, coremon.NopMonitor{})
	if err != nil {
		return err
	}
	res := sched.ScheduleAll(fleet, at)

	w := cmd.OutOrStdout()
	if recommendFlags.output != "" {
		f, err := os.Create(recommendFlags.output)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		w = f
	}
	if err := writeResult(w, recommendFlags.format, res); err != nil {
		return err
	}
	for _, e := range res.Errors {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s: %s\n", e.TrainsetID, e.Message)
	}
	return nil
}

func writeResult(w io.Writer, format string, res schedule.Result) error {
	switch strings.ToLower(format) {
	case "table":
		return writeTable(w, res)
	case "json":
		return export.WriteJSON(w, res)
	case "csv":
		return export.WriteCSV(w, res.Recommendations)
	case "html":
		return export.WriteHTMLChart(w, res)
	}
	return fmt.Errorf("unknown format %q", format)
}

func writeTable(w io.Writer, res schedule.Result) error {
	table := uitable.New()
	table.MaxColWidth = 60
	table.Wrap = true
	table.AddRow("TRAINSET", "STATUS", "CONFIDENCE", "PRIORITY", "RISK FACTORS")
	for _, r := range res.Recommendations {
		id := r.TrainsetID
		if r.TrainsetNumber != "" {
			id = r.TrainsetNumber
		}
		table.AddRow(id, r.RecommendedStatus, fmt.Sprintf("%.2f", r.ConfidenceScore), r.PriorityScore, strings.Join(r.RiskFactors, ", "))
	}
	if _, err := fmt.Fprintln(w, table); err != nil {
		return err
	}
	s := res.Summary
	_, err := fmt.Fprintf(w, "\n%d trainsets, %s, average confidence %.2f, %d high risk\ninduction order: %s\n",
		s.TotalTrainsets, countsLine(s.Recommendations), s.AverageConfidence, s.HighRiskCount,
		strings.Join(res.InductionOrder, " "))
	return err
}

func countsLine(counts map[model.Status]int) string {
	parts := make([]string, 0, len(counts))
	for _, st := range model.AllStatuses() {
		if n, ok := counts[st]; ok {
			parts = append(parts, fmt.Sprintf("%d %s", n, st))
		}
	}
	return strings.Join(parts, ", ")
}
