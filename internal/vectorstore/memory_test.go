package vectorstore

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wordEmbedder produces deterministic bag-of-words vectors over a fixed
// vocabulary, so similarity ordering in tests is predictable.
type wordEmbedder struct {
	vocab []string
	err   error
}

func newWordEmbedder(vocab ...string) *wordEmbedder {
	return &wordEmbedder{vocab: vocab}
}

func (e *wordEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, len(e.vocab)+1)
		lower := strings.ToLower(text)
		for j, word := range e.vocab {
			vec[j] = float32(strings.Count(lower, word))
		}
		// Bias term keeps zero-overlap texts from producing zero vectors.
		vec[len(e.vocab)] = 0.1
		vectors[i] = vec
	}
	return vectors, nil
}

func TestMemory_SearchOrdering(t *testing.T) {
	embedder := newWordEmbedder("access", "encryption", "incident")
	texts := []string{
		"access control and access reviews",
		"encryption of data at rest",
		"incident response procedures",
	}

	m, err := NewMemoryFromTexts(context.Background(), embedder, texts, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Len())

	results, err := m.SearchWithScores(context.Background(), "access management", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, texts[0], results[0].Text)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestMemory_KLargerThanIndex(t *testing.T) {
	embedder := newWordEmbedder("policy")
	m, err := NewMemoryFromTexts(context.Background(), embedder, []string{"policy text"}, nil)
	require.NoError(t, err)

	results, err := m.SearchWithScores(context.Background(), "policy", 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestMemory_EmptyIndex(t *testing.T) {
	embedder := newWordEmbedder("policy")
	m, err := NewMemoryFromTexts(context.Background(), embedder, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())

	results, err := m.SearchWithScores(context.Background(), "anything", 4)
	require.NoError(t, err)
	assert.Nil(t, results)
}

func TestMemory_DefaultSources(t *testing.T) {
	embedder := newWordEmbedder("a")
	m, err := NewMemoryFromTexts(context.Background(), embedder, []string{"a", "b"}, nil)
	require.NoError(t, err)

	results, err := m.SearchWithScores(context.Background(), "a", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Contains(t, r.Source, "chunk-")
	}
}

func TestMemory_ExplicitSources(t *testing.T) {
	embedder := newWordEmbedder("a")
	m, err := NewMemoryFromTexts(context.Background(), embedder, []string{"a"}, []string{"iso27001.txt"})
	require.NoError(t, err)

	results, err := m.SearchWithScores(context.Background(), "a", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "iso27001.txt", results[0].Source)
}

func TestMemory_SourceLengthMismatch(t *testing.T) {
	embedder := newWordEmbedder("a")
	_, err := NewMemoryFromTexts(context.Background(), embedder, []string{"a", "b"}, []string{"one"})
	assert.Error(t, err)
}

func TestMemory_EmbedderError(t *testing.T) {
	embedder := &wordEmbedder{err: errors.New("embedding backend down")}
	_, err := NewMemoryFromTexts(context.Background(), embedder, []string{"a"}, nil)
	assert.Error(t, err)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Equal(t, 0.0, cosineSimilarity([]float32{1}, []float32{1, 2}))
	assert.Equal(t, 0.0, cosineSimilarity(nil, nil))
}
