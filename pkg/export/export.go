package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/kilianp07/railfleet/core/model"
	"github.com/kilianp07/railfleet/core/schedule"
)

// WriteJSON writes the scheduling result to w in indented JSON format.
func WriteJSON(w io.Writer, res schedule.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// CSVHeader lists the columns written by WriteCSV.
var CSVHeader = []string{"trainset_id", "recommended_status", "confidence", "priority", "reasoning", "risk_factors"}

// WriteCSV writes one row per recommendation. Reasoning and risk factors are
// joined with ";".
func WriteCSV(w io.Writer, recs []model.Recommendation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, r := range recs {
		rec := []string{
			r.TrainsetID,
			r.RecommendedStatus.String(),
			strconv.FormatFloat(r.ConfidenceScore, 'f', 2, 64),
			strconv.Itoa(r.PriorityScore),
			strings.Join(r.Reasoning, ";"),
			strings.Join(r.RiskFactors, ";"),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
