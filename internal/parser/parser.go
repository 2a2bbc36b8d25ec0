// Package parser turns free-text model responses into structured findings.
// Everything here is best-effort keyword heuristics with conservative
// defaults: ambiguity is reflected in the result, never raised as an error.
package parser

import (
	"strconv"
	"strings"
	"time"

	"github.com/kamilpajak/verity/pkg/models"
)

// InferVerdict maps a free-text response to a single compliance status.
// Keyword priority matters: insufficiency trumps everything, and a text
// mentioning both "partial" and "compliant" is PARTIAL. A text matching
// nothing is treated as INSUFFICIENT_EVIDENCE rather than assumed compliant.
func InferVerdict(text string) models.ComplianceStatus {
	lower := strings.ToLower(text)

	switch {
	case strings.Contains(lower, "insufficient") || strings.Contains(lower, "not enough evidence"):
		return models.StatusInsufficientEvidence
	case strings.Contains(lower, "non-compliant") || strings.Contains(lower, "non compliant") || strings.Contains(lower, "not compliant"):
		return models.StatusNonCompliant
	case strings.Contains(lower, "partial"):
		return models.StatusPartial
	case strings.Contains(lower, "compliant"):
		return models.StatusCompliant
	default:
		return models.StatusInsufficientEvidence
	}
}

// ExtractScore scans for a "compliance score" / "overall score" /
// "final score" line and returns the first numeric token, clamped to
// [0, 100]. Values above 100 are divided by 100 to handle "85/100"-style
// artifacts. No matching line yields 0.
func ExtractScore(text string) float64 {
	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		if !strings.Contains(lower, "compliance score") &&
			!strings.Contains(lower, "overall score") &&
			!strings.Contains(lower, "final score") {
			continue
		}

		score, ok := firstNumber(line)
		if !ok {
			continue
		}
		if score > 100 {
			score = score / 100
		}
		if score > 100 {
			score = 100
		}
		if score < 0 {
			score = 0
		}
		return score
	}
	return 0
}

// firstNumber returns the first numeric token in a line.
func firstNumber(line string) (float64, bool) {
	start := -1
	for i, r := range line {
		isDigit := r >= '0' && r <= '9'
		inNumber := start >= 0
		if isDigit && !inNumber {
			start = i
			continue
		}
		if inNumber && !isDigit && r != '.' {
			if n, err := strconv.ParseFloat(strings.TrimSuffix(line[start:i], "."), 64); err == nil {
				return n, true
			}
			start = -1
		}
	}
	if start >= 0 {
		if n, err := strconv.ParseFloat(strings.TrimSuffix(line[start:], "."), 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// ParseReport extracts a document-level compliance report from a structured
// (chain-of-thought style) model response.
func ParseReport(responseText string, framework models.Framework, documentName string, strategy models.ReasoningStrategy) models.Report {
	findings := extractFindings(responseText)

	report := models.Report{
		Framework:              framework,
		DocumentName:           documentName,
		AnalysisDate:           time.Now().UTC(),
		Findings:               findings,
		ComplianceScore:        ExtractScore(responseText),
		ReasoningTrace:         responseText,
		StrategyUsed:           strategy,
		TotalControlsEvaluated: len(findings),
	}

	for _, f := range findings {
		switch f.Status {
		case models.StatusCompliant:
			report.CompliantCount++
		case models.StatusPartial:
			report.PartialCount++
		case models.StatusNonCompliant:
			report.NonCompliantCount++
		}

		if f.Severity == models.SeverityCritical && f.Status == models.StatusNonCompliant {
			report.CriticalGaps = append(report.CriticalGaps, f.ControlID+": "+f.GapDescription)
		}
		if (f.Severity == models.SeverityCritical || f.Severity == models.SeverityHigh) &&
			(f.Status == models.StatusNonCompliant || f.Status == models.StatusPartial) &&
			f.Recommendation != "" {
			report.PriorityRecommendations = append(report.PriorityRecommendations, f.Recommendation)
		}
	}

	return report
}

func extractFindings(text string) []models.ControlFinding {
	var findings []models.ControlFinding
	for _, section := range splitSections(text) {
		if f, ok := parseSection(section); ok {
			findings = append(findings, f)
		}
	}
	return findings
}

// splitSections cuts the response at lines that look like finding headers.
func splitSections(text string) []string {
	var sections []string
	var current []string

	for _, line := range strings.Split(text, "\n") {
		if isFindingHeader(line) {
			if len(current) > 0 {
				sections = append(sections, strings.Join(current, "\n"))
			}
			current = []string{line}
			continue
		}
		if len(current) > 0 {
			current = append(current, line)
		}
	}
	if len(current) > 0 {
		sections = append(sections, strings.Join(current, "\n"))
	}

	return sections
}

func isFindingHeader(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.Contains(strings.ToLower(line), "control id") ||
		strings.HasPrefix(trimmed, "###") ||
		strings.HasPrefix(trimmed, "##")
}

// parseSection extracts one control finding. Sections without a control
// identifier are discarded.
func parseSection(section string) (models.ControlFinding, bool) {
	controlID := extractField(section, []string{"control id", "control:"})
	if controlID == "" {
		return models.ControlFinding{}, false
	}

	title := extractField(section, []string{"title", "control title"})
	if title == "" {
		title = "Unknown"
	}

	return models.ControlFinding{
		ControlID:      controlID,
		ControlTitle:   title,
		Requirement:    extractField(section, []string{"requirement", "requirements"}),
		Evidence:       extractField(section, []string{"evidence", "document evidence"}),
		Status:         sectionStatus(section),
		GapDescription: extractField(section, []string{"gap", "gap description"}),
		Severity:       sectionSeverity(section),
		Recommendation: extractField(section, []string{"recommendation", "action"}),
	}, true
}

// extractField scans lines for "alias:" prefixes, trying aliases in order.
func extractField(text string, aliases []string) string {
	for _, alias := range aliases {
		pattern := alias + ":"
		for _, line := range strings.Split(text, "\n") {
			if !strings.Contains(strings.ToLower(line), pattern) {
				continue
			}
			parts := strings.SplitN(line, ":", 2)
			if len(parts) != 2 {
				continue
			}
			if value := strings.TrimSpace(parts[1]); value != "" {
				return value
			}
		}
	}
	return ""
}

// sectionStatus infers a status from a section's full text. The default is
// NON_COMPLIANT: an unreadable verdict is flagged, not hidden.
func sectionStatus(text string) models.ComplianceStatus {
	lower := strings.ToLower(text)

	switch {
	case strings.Contains(lower, "non-compliant") || strings.Contains(lower, "non compliant"):
		return models.StatusNonCompliant
	case strings.Contains(lower, "partial"):
		return models.StatusPartial
	case strings.Contains(lower, "compliant"):
		return models.StatusCompliant
	case strings.Contains(lower, "not applicable") || strings.Contains(lower, "n/a"):
		return models.StatusInsufficientEvidence
	default:
		return models.StatusNonCompliant
	}
}

func sectionSeverity(text string) models.SeverityLevel {
	lower := strings.ToLower(text)

	switch {
	case strings.Contains(lower, "critical"):
		return models.SeverityCritical
	case strings.Contains(lower, "high"):
		return models.SeverityHigh
	case strings.Contains(lower, "medium"):
		return models.SeverityMedium
	case strings.Contains(lower, "low"):
		return models.SeverityLow
	default:
		return models.SeverityMedium
	}
}
