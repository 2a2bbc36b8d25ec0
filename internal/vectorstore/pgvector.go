package vectorstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// Store is the Postgres/pgvector-backed regulatory evidence index.
type Store struct {
	pool     *pgxpool.Pool
	embedder Embedder
}

// NewStore creates a Store over an existing connection pool. The pool must
// have pgvector types registered (see database.New).
func NewStore(pool *pgxpool.Pool, embedder Embedder) *Store {
	return &Store{pool: pool, embedder: embedder}
}

// Add embeds and inserts chunks into the regulatory corpus. texts and sources
// must have equal length.
func (s *Store) Add(ctx context.Context, texts, sources []string) error {
	if len(texts) != len(sources) {
		return fmt.Errorf("texts length %d does not match sources length %d", len(texts), len(sources))
	}
	if len(texts) == 0 {
		return nil
	}

	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(vectors) != len(texts) {
		return fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(texts))
	}

	rows := make([][]any, len(texts))
	for i := range texts {
		rows[i] = []any{texts[i], sources[i], pgvector.NewVector(vectors[i])}
	}

	_, err = s.pool.CopyFrom(
		ctx,
		pgx.Identifier{"regulatory_chunks"},
		[]string{"text", "source", "embedding"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to insert chunks: %w", err)
	}
	return nil
}

// Count returns the number of indexed chunks.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM regulatory_chunks`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return count, nil
}

// SearchWithScores returns the top-k chunks by cosine similarity to the query.
// Transport and query errors propagate unchanged; the caller decides how a
// failed retrieval degrades the finding.
func (s *Store) SearchWithScores(ctx context.Context, query string, k int) ([]SearchResult, error) {
	if k < 1 {
		return nil, nil
	}

	vecs, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for query", len(vecs))
	}
	queryVec := pgvector.NewVector(vecs[0])

	rows, err := s.pool.Query(ctx, `
		SELECT text, source, 1 - (embedding <=> $1) AS score
		FROM regulatory_chunks
		ORDER BY embedding <=> $1
		LIMIT $2`, queryVec, k)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Text, &r.Source, &r.Score); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	return results, nil
}
