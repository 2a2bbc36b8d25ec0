package models

import "time"

// ControlFinding is one control-level entry extracted from a structured
// chain-of-thought response.
type ControlFinding struct {
	ControlID      string           `json:"control_id"`
	ControlTitle   string           `json:"control_title"`
	Requirement    string           `json:"requirement"`
	Evidence       string           `json:"evidence"`
	Status         ComplianceStatus `json:"status"`
	GapDescription string           `json:"gap_description"`
	Severity       SeverityLevel    `json:"severity"`
	Recommendation string           `json:"recommendation"`
}

// Report is a document-level compliance report assembled from a structured
// model response.
type Report struct {
	Framework               Framework         `json:"framework"`
	DocumentName            string            `json:"document_name"`
	AnalysisDate            time.Time         `json:"analysis_date"`
	Findings                []ControlFinding  `json:"findings"`
	ComplianceScore         float64           `json:"compliance_score"`
	ReasoningTrace          string            `json:"reasoning_trace"`
	StrategyUsed            ReasoningStrategy `json:"strategy_used"`
	TotalControlsEvaluated  int               `json:"total_controls_evaluated"`
	CompliantCount          int               `json:"compliant_count"`
	PartialCount            int               `json:"partial_count"`
	NonCompliantCount       int               `json:"non_compliant_count"`
	CriticalGaps            []string          `json:"critical_gaps,omitempty"`
	PriorityRecommendations []string          `json:"priority_recommendations,omitempty"`
}
