package export

import (
	"math"

	"github.com/kilianp07/railfleet/core/model"
	"github.com/kilianp07/railfleet/core/schedule"
)

type statusGroup struct {
	status     model.Status
	count      int
	confidence float64
}

func (g statusGroup) meanConfidence() float64 {
	if g.count == 0 {
		return 0
	}
	return math.Round(g.confidence/float64(g.count)*100) / 100
}

// groupByStatus buckets recommendations by status in display order, keeping
// statuses with no recommendation so every chart shares the same axis.
func groupByStatus(res schedule.Result) []statusGroup {
	all := model.AllStatuses()
	groups := make([]statusGroup, len(all))
	idx := make(map[model.Status]int, len(all))
	for i, s := range all {
		groups[i].status = s
		idx[s] = i
	}
	for _, r := range res.Recommendations {
		i, ok := idx[r.RecommendedStatus]
		if !ok {
			continue
		}
		groups[i].count++
		groups[i].confidence += r.ConfidenceScore
	}
	return groups
}
