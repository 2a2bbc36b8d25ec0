package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
)

// Memory is an in-memory cosine-similarity index. The audit engine builds one
// per submitted policy document; it is never persisted.
type Memory struct {
	texts      []string
	sources    []string
	embeddings [][]float32
	embedder   Embedder
}

// NewMemoryFromTexts builds an in-memory index over the given chunks.
// sources may be nil, in which case positional identifiers are assigned.
func NewMemoryFromTexts(ctx context.Context, embedder Embedder, texts, sources []string) (*Memory, error) {
	if sources != nil && len(sources) != len(texts) {
		return nil, fmt.Errorf("sources length %d does not match texts length %d", len(sources), len(texts))
	}
	if sources == nil {
		sources = make([]string, len(texts))
		for i := range sources {
			sources[i] = fmt.Sprintf("chunk-%d", i)
		}
	}

	m := &Memory{texts: texts, sources: sources, embedder: embedder}
	if len(texts) == 0 {
		return m, nil
	}

	embeddings, err := embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(embeddings), len(texts))
	}
	m.embeddings = embeddings

	return m, nil
}

// Len returns the number of indexed chunks.
func (m *Memory) Len() int {
	return len(m.texts)
}

// SearchWithScores returns the top-k chunks by cosine similarity to the query.
func (m *Memory) SearchWithScores(ctx context.Context, query string, k int) ([]SearchResult, error) {
	if len(m.texts) == 0 || k < 1 {
		return nil, nil
	}

	vecs, err := m.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for query", len(vecs))
	}
	queryVec := vecs[0]

	results := make([]SearchResult, len(m.texts))
	for i := range m.texts {
		results[i] = SearchResult{
			Text:   m.texts[i],
			Source: m.sources[i],
			Score:  cosineSimilarity(queryVec, m.embeddings[i]),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
