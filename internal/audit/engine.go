// Package audit runs a full compliance audit: one agent analysis per
// catalog requirement, aggregated into a scored summary.
package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kamilpajak/verity/internal/agent"
	"github.com/kamilpajak/verity/internal/catalog"
	"github.com/kamilpajak/verity/internal/config"
	"github.com/kamilpajak/verity/internal/vectorstore"
	"github.com/kamilpajak/verity/pkg/models"
)

// ProgressFunc is invoked after each requirement completes. done counts
// finished requirements out of total. It may be called from multiple
// goroutines when the engine runs concurrently.
type ProgressFunc func(done, total int, requirement string)

// Engine orchestrates the per-requirement audit loop.
type Engine struct {
	agent    *agent.Agent
	embedder vectorstore.Embedder
	cfg      config.AuditConfig
}

// NewEngine creates an audit engine. The agent carries the regulatory
// evidence index; the embedder builds the transient index over the policy
// document being audited.
func NewEngine(a *agent.Agent, embedder vectorstore.Embedder, cfg config.AuditConfig) *Engine {
	return &Engine{agent: a, embedder: embedder, cfg: cfg}
}

// RunRequest identifies one audit run.
type RunRequest struct {
	DocumentName string
	PolicyText   string
	Framework    models.Framework
	Strategy     models.ReasoningStrategy
}

// Run audits the policy document against every requirement in the
// framework's catalog. Findings keep catalog order regardless of
// concurrency. A single requirement's failure degrades that finding to
// INSUFFICIENT_EVIDENCE without aborting the run; Run itself fails only on
// setup errors or context cancellation.
func (e *Engine) Run(ctx context.Context, req RunRequest, progress ProgressFunc) (models.Summary, error) {
	requirements := catalog.Get(req.Framework)

	summary := models.Summary{
		DocumentName: req.DocumentName,
		Framework:    req.Framework,
		Strategy:     req.Strategy,
		AnalyzedAt:   time.Now().UTC(),
	}

	if len(requirements) == 0 {
		summary.ComplianceScore = ComputeScore(nil, e.cfg)
		return summary, nil
	}

	policyIndex, err := e.buildPolicyIndex(ctx, req.PolicyText)
	if err != nil {
		return models.Summary{}, fmt.Errorf("indexing policy document: %w", err)
	}

	findings := make([]models.Finding, len(requirements))
	if err := e.analyzeAll(ctx, req, requirements, policyIndex, findings, progress); err != nil {
		return models.Summary{}, err
	}

	summary.Findings = findings
	summary.TotalFindings = len(findings)
	for _, f := range findings {
		switch f.Status {
		case models.StatusCompliant:
			summary.Compliant++
		case models.StatusPartial:
			summary.Partial++
		case models.StatusNonCompliant:
			summary.NonCompliant++
		case models.StatusInsufficientEvidence:
			summary.Insufficient++
		}
	}
	summary.ComplianceScore = ComputeScore(findings, e.cfg)

	return summary, nil
}

// buildPolicyIndex chunks the policy text into a transient in-memory index
// used to pick the most relevant excerpt per requirement. A policy with no
// usable chunks yields a nil index and empty excerpts.
func (e *Engine) buildPolicyIndex(ctx context.Context, policyText string) (*vectorstore.Memory, error) {
	chunks := vectorstore.SplitText(policyText, e.cfg.ChunkSize, e.cfg.ChunkOverlap)
	if len(chunks) == 0 {
		return nil, nil
	}
	return vectorstore.NewMemoryFromTexts(ctx, e.embedder, chunks, nil)
}

func (e *Engine) analyzeAll(ctx context.Context, req RunRequest, requirements []string, policyIndex *vectorstore.Memory, findings []models.Finding, progress ProgressFunc) error {
	concurrency := e.cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > len(requirements) {
		concurrency = len(requirements)
	}

	jobs := make(chan int)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		done int
	)

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				findings[i] = e.analyzeOne(ctx, req, requirements[i], policyIndex)

				mu.Lock()
				done++
				completed := done
				mu.Unlock()
				if progress != nil {
					progress(completed, len(requirements), requirements[i])
				}

				if e.cfg.RequestDelay > 0 {
					select {
					case <-ctx.Done():
					case <-time.After(e.cfg.RequestDelay):
					}
				}
			}
		}()
	}

	var runErr error
dispatch:
	for i := range requirements {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	return runErr
}

// analyzeOne runs the agent for a single requirement, degrading any error
// into an INSUFFICIENT_EVIDENCE finding so one requirement cannot sink the
// whole audit.
func (e *Engine) analyzeOne(ctx context.Context, req RunRequest, requirement string, policyIndex *vectorstore.Memory) models.Finding {
	finding, err := e.agent.Analyze(ctx, agent.Request{
		Requirement:   requirement,
		PolicyExcerpt: e.bestExcerpt(ctx, policyIndex, requirement),
		Framework:     req.Framework,
		Strategy:      req.Strategy,
	})
	if err != nil {
		return models.Finding{
			Requirement:   requirement,
			Status:        models.StatusInsufficientEvidence,
			Analysis:      "Insufficient evidence: analysis failed: " + err.Error(),
			Severity:      models.SeverityForStatus(models.StatusInsufficientEvidence),
			Confidence:    models.ConfidenceLow,
			RetrievalNote: "Analysis failed: " + err.Error(),
		}
	}
	return finding
}

// bestExcerpt returns the policy chunk most similar to the requirement, or
// an empty string when the policy produced no chunks or the lookup fails.
func (e *Engine) bestExcerpt(ctx context.Context, policyIndex *vectorstore.Memory, requirement string) string {
	if policyIndex == nil {
		return ""
	}
	results, err := policyIndex.SearchWithScores(ctx, requirement, 1)
	if err != nil || len(results) == 0 {
		return ""
	}
	return results[0].Text
}
