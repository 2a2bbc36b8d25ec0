// Package vectorstore provides the vector indexes behind evidence retrieval:
// a Postgres/pgvector store for the regulatory corpus and an in-memory index
// for transient per-document search.
package vectorstore

import "context"

// SearchResult is one retrieved chunk with its similarity score.
// Scores are cosine similarity: higher is closer.
type SearchResult struct {
	Text   string
	Source string
	Score  float64
}

// Index is the retrieval contract consumed by the agent and the audit engine.
// Implementations must not mutate their contents during search.
type Index interface {
	SearchWithScores(ctx context.Context, query string, k int) ([]SearchResult, error)
}

// Embedder converts texts into embedding vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// SplitText splits text into fixed-size chunks with the given character
// overlap. Whitespace-only chunks are dropped.
func SplitText(text string, size, overlap int) []string {
	if size <= 0 || overlap < 0 || overlap >= size {
		return nil
	}

	runes := []rune(text)
	step := size - overlap
	var chunks []string

	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunk := string(runes[start:end])
		if !isBlank(chunk) {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
	}

	return chunks
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
