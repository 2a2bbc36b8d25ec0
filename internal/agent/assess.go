package agent

import (
	"fmt"
	"strings"

	"github.com/kamilpajak/verity/internal/config"
	"github.com/kamilpajak/verity/pkg/models"
)

// Assessment is the retrieval quality verdict for one requirement.
type Assessment struct {
	Confidence models.ConfidenceLevel
	Note       string
	Sufficient bool
}

// AssessRetrievalQuality inspects retrieved chunks and decides whether the
// evidence is strong enough to support a grounded model judgment. The check
// order is significant: emptiness dominates score spread. scores may be nil
// when the backing index does not report them.
func AssessRetrievalQuality(texts []string, scores []float64, cfg config.RetrievalConfig) Assessment {
	if len(texts) == 0 {
		return Assessment{
			Confidence: models.ConfidenceLow,
			Note:       "No chunks retrieved",
			Sufficient: false,
		}
	}

	nonEmpty := 0
	for _, text := range texts {
		if strings.TrimSpace(text) != "" {
			nonEmpty++
		}
	}

	if nonEmpty < cfg.MinSufficientChunks {
		return Assessment{
			Confidence: models.ConfidenceLow,
			Note:       fmt.Sprintf("Too few non-empty chunks (%d of %d retrieved)", nonEmpty, len(texts)),
			Sufficient: false,
		}
	}

	if len(scores) == 0 {
		return Assessment{
			Confidence: models.ConfidenceMedium,
			Note:       "Similarity scores unavailable; cannot assess separation",
			Sufficient: true,
		}
	}

	minScore, maxScore := scores[0], scores[0]
	for _, s := range scores[1:] {
		if s < minScore {
			minScore = s
		}
		if s > maxScore {
			maxScore = s
		}
	}
	spread := maxScore - minScore

	if nonEmpty >= cfg.HighConfidenceChunks && spread > cfg.SpreadThreshold {
		return Assessment{
			Confidence: models.ConfidenceHigh,
			Note:       fmt.Sprintf("%d non-empty chunks with score spread %.2f", nonEmpty, spread),
			Sufficient: true,
		}
	}

	return Assessment{
		Confidence: models.ConfidenceMedium,
		Note:       fmt.Sprintf("%d non-empty chunks with score spread %.2f", nonEmpty, spread),
		Sufficient: true,
	}
}
