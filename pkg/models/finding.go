// Package models contains the domain types shared across the audit pipeline.
package models

import "time"

// ComplianceStatus is the verdict for a single requirement.
type ComplianceStatus string

const (
	StatusCompliant            ComplianceStatus = "compliant"
	StatusPartial              ComplianceStatus = "partial"
	StatusNonCompliant         ComplianceStatus = "non_compliant"
	StatusInsufficientEvidence ComplianceStatus = "insufficient_evidence"
)

// SeverityLevel indicates how serious a compliance gap is.
type SeverityLevel string

const (
	SeverityCritical SeverityLevel = "critical"
	SeverityHigh     SeverityLevel = "high"
	SeverityMedium   SeverityLevel = "medium"
	SeverityLow      SeverityLevel = "low"
)

// ConfidenceLevel represents how trustworthy a finding is, derived from
// retrieval quality rather than the model's own stated certainty.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "HIGH"
	ConfidenceMedium ConfidenceLevel = "MEDIUM"
	ConfidenceLow    ConfidenceLevel = "LOW"
)

// SeverityForStatus maps a compliance status to its severity.
// Severity is always derived from status, never set independently.
func SeverityForStatus(status ComplianceStatus) SeverityLevel {
	switch status {
	case StatusNonCompliant:
		return SeverityHigh
	case StatusPartial:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Finding is one requirement's compliance verdict with rationale and evidence.
// Immutable after creation.
type Finding struct {
	Requirement   string           `json:"requirement"`
	Status        ComplianceStatus `json:"status"`
	Analysis      string           `json:"analysis"`
	Severity      SeverityLevel    `json:"severity"`
	Sources       []string         `json:"sources,omitempty"`
	Confidence    ConfidenceLevel  `json:"confidence"`
	RetrievalNote string           `json:"retrieval_note,omitempty"`
}

// Summary aggregates all findings for one (document, framework, strategy) run.
type Summary struct {
	DocumentName    string            `json:"document_name"`
	Framework       Framework         `json:"framework"`
	Strategy        ReasoningStrategy `json:"strategy"`
	AnalyzedAt      time.Time         `json:"analyzed_at"`
	TotalFindings   int               `json:"total_findings"`
	Compliant       int               `json:"compliant"`
	Partial         int               `json:"partial"`
	NonCompliant    int               `json:"non_compliant"`
	Insufficient    int               `json:"insufficient_evidence"`
	ComplianceScore float64           `json:"compliance_score"`
	Findings        []Finding         `json:"findings"`
}
