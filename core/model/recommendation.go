package model

// Recommendation is the suggested next-day status for one trainset.
type Recommendation struct {
	TrainsetID        string   `json:"trainset_id"`
	TrainsetNumber    string   `json:"trainset_number,omitempty"`
	RecommendedStatus Status   `json:"recommended_status"`
	ConfidenceScore   float64  `json:"confidence_score"`
	PriorityScore     int      `json:"priority_score"`
	DecisionRule      string   `json:"decision_rule,omitempty"`
	Reasoning         []string `json:"reasoning"`
	RiskFactors       []string `json:"risk_factors"`
}

// HighRisk reports whether any risk factor was raised.
func (r Recommendation) HighRisk() bool { return len(r.RiskFactors) > 0 }
