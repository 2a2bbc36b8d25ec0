// Package ingest loads a regulatory corpus from disk into the vector store.
package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/kamilpajak/verity/internal/extract"
	"github.com/kamilpajak/verity/internal/vectorstore"
)

// Target receives embedded chunks. Satisfied by vectorstore.Store.
type Target interface {
	Add(ctx context.Context, texts, sources []string) error
}

// Result summarizes one ingestion run.
type Result struct {
	FilesRead    int
	FilesSkipped int
	Chunks       int
}

// Ingester walks a corpus directory and loads supported documents.
type Ingester struct {
	extractor    *extract.Extractor
	target       Target
	chunkSize    int
	chunkOverlap int
}

// New creates an ingester writing into target with the given chunking
// parameters.
func New(target Target, chunkSize, chunkOverlap int) *Ingester {
	return &Ingester{
		extractor:    extract.New(),
		target:       target,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Run ingests every supported file directly under dir, in name order.
// Unsupported and empty files are skipped, not failed. Each chunk is stored
// with its originating filename as the source.
func (i *Ingester) Run(ctx context.Context, dir string) (Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Result{}, fmt.Errorf("reading corpus directory: %w", err)
	}
	sort.Slice(entries, func(a, b int) bool { return entries[a].Name() < entries[b].Name() })

	var result Result
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		chunks, err := i.ingestFile(ctx, dir, entry)
		if err != nil {
			return result, err
		}
		if chunks == 0 {
			result.FilesSkipped++
			continue
		}
		result.FilesRead++
		result.Chunks += chunks
	}
	return result, nil
}

func (i *Ingester) ingestFile(ctx context.Context, dir string, entry fs.DirEntry) (int, error) {
	path := filepath.Join(dir, entry.Name())
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", entry.Name(), err)
	}

	text, _, status := i.extractor.Extract(data, entry.Name())
	if status != extract.StatusOK {
		return 0, nil
	}

	chunks := vectorstore.SplitText(text, i.chunkSize, i.chunkOverlap)
	if len(chunks) == 0 {
		return 0, nil
	}

	sources := make([]string, len(chunks))
	for j := range sources {
		sources[j] = entry.Name()
	}
	if err := i.target.Add(ctx, chunks, sources); err != nil {
		return 0, fmt.Errorf("storing %s: %w", entry.Name(), err)
	}
	return len(chunks), nil
}
