package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kamilpajak/verity/internal/config"
	"github.com/kamilpajak/verity/pkg/models"
)

func retrievalConfig() config.RetrievalConfig {
	return config.Default().Retrieval
}

func TestAssessRetrievalQuality_Empty(t *testing.T) {
	a := AssessRetrievalQuality(nil, nil, retrievalConfig())

	assert.Equal(t, models.ConfidenceLow, a.Confidence)
	assert.False(t, a.Sufficient)
	assert.Contains(t, a.Note, "No chunks")
}

func TestAssessRetrievalQuality_Good(t *testing.T) {
	texts := []string{"Relevant text.", "More text.", "Even more."}
	scores := []float64{0.9, 0.7, 0.4}

	a := AssessRetrievalQuality(texts, scores, retrievalConfig())

	assert.True(t, a.Sufficient)
	assert.Equal(t, models.ConfidenceHigh, a.Confidence)
}

func TestAssessRetrievalQuality_ThreeDocsSpreadAboveThreshold(t *testing.T) {
	texts := []string{"a", "b", "c"}
	scores := []float64{0.8, 0.7, 0.6}

	a := AssessRetrievalQuality(texts, scores, retrievalConfig())

	assert.True(t, a.Sufficient)
	assert.Equal(t, models.ConfidenceHigh, a.Confidence)
}

func TestAssessRetrievalQuality_SingleDocInsufficientRegardlessOfSpread(t *testing.T) {
	a := AssessRetrievalQuality([]string{"only one"}, []float64{0.99}, retrievalConfig())

	assert.False(t, a.Sufficient)
	assert.Equal(t, models.ConfidenceLow, a.Confidence)
	assert.Contains(t, a.Note, "Too few non-empty chunks")
}

func TestAssessRetrievalQuality_EmptinessDominatesSpread(t *testing.T) {
	// Four chunks retrieved but only one has content; the wide spread must
	// not rescue it.
	texts := []string{"real content", "", "   ", "\n"}
	scores := []float64{0.9, 0.5, 0.3, 0.1}

	a := AssessRetrievalQuality(texts, scores, retrievalConfig())

	assert.False(t, a.Sufficient)
	assert.Equal(t, models.ConfidenceLow, a.Confidence)
}

func TestAssessRetrievalQuality_NoScores(t *testing.T) {
	a := AssessRetrievalQuality([]string{"one", "two"}, nil, retrievalConfig())

	assert.True(t, a.Sufficient)
	assert.Equal(t, models.ConfidenceMedium, a.Confidence)
	assert.Contains(t, a.Note, "unavailable")
}

func TestAssessRetrievalQuality_NarrowSpreadIsMedium(t *testing.T) {
	texts := []string{"a", "b", "c"}
	scores := []float64{0.71, 0.70, 0.69}

	a := AssessRetrievalQuality(texts, scores, retrievalConfig())

	assert.True(t, a.Sufficient)
	assert.Equal(t, models.ConfidenceMedium, a.Confidence)
}

func TestAssessRetrievalQuality_TwoChunksIsMedium(t *testing.T) {
	// High confidence needs three chunks even with a wide spread.
	texts := []string{"a", "b"}
	scores := []float64{0.9, 0.2}

	a := AssessRetrievalQuality(texts, scores, retrievalConfig())

	assert.True(t, a.Sufficient)
	assert.Equal(t, models.ConfidenceMedium, a.Confidence)
}

func TestAssessRetrievalQuality_ConfigurableThresholds(t *testing.T) {
	cfg := retrievalConfig()
	cfg.SpreadThreshold = 0.5

	texts := []string{"a", "b", "c"}
	scores := []float64{0.8, 0.7, 0.6}

	a := AssessRetrievalQuality(texts, scores, cfg)
	assert.Equal(t, models.ConfidenceMedium, a.Confidence)
}
