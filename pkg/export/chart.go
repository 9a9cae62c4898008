package export

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/railfleet/core/schedule"
)

// WriteHTMLChart renders the scheduling run as a standalone HTML page: the
// number of trainsets per recommended status next to their mean confidence.
func WriteHTMLChart(w io.Writer, res schedule.Result) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Induction plan",
			Subtitle: fmt.Sprintf("%s, average confidence %.2f", res.Summary.OptimizationTimestamp, res.Summary.AverageConfidence),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Recommended status"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Trainsets"}),
	)

	groups := groupByStatus(res)
	xAxis := make([]string, 0, len(groups))
	counts := make([]opts.BarData, 0, len(groups))
	confidence := make([]opts.BarData, 0, len(groups))
	for _, g := range groups {
		xAxis = append(xAxis, g.status.String())
		counts = append(counts, opts.BarData{Value: g.count})
		confidence = append(confidence, opts.BarData{Value: g.meanConfidence()})
	}
	bar.SetXAxis(xAxis).
		AddSeries("Trainsets", counts).
		AddSeries("Mean confidence", confidence)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
