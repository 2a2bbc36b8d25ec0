package audit

import (
	"github.com/kamilpajak/verity/internal/config"
	"github.com/kamilpajak/verity/pkg/models"
)

// ComputeScore derives the 0-100 compliance score from findings. Each
// non-compliant finding costs cfg.NonCompliantPenalty points and each
// partial finding cfg.PartialPenalty; insufficient-evidence findings are
// unscored. An empty audit scores 100.
func ComputeScore(findings []models.Finding, cfg config.AuditConfig) float64 {
	score := 100.0
	for _, f := range findings {
		switch f.Status {
		case models.StatusNonCompliant:
			score -= cfg.NonCompliantPenalty
		case models.StatusPartial:
			score -= cfg.PartialPenalty
		}
	}
	if score < 0 {
		return 0
	}
	return score
}
