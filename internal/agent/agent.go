// Package agent implements the confidence-gated compliance agent: for one
// requirement it retrieves evidence, decides whether that evidence can
// support a grounded judgment, and only then consults the language model.
package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kamilpajak/verity/internal/config"
	"github.com/kamilpajak/verity/internal/llm"
	"github.com/kamilpajak/verity/internal/parser"
	"github.com/kamilpajak/verity/internal/prompt"
	"github.com/kamilpajak/verity/internal/vectorstore"
	"github.com/kamilpajak/verity/pkg/models"
)

// Agent analyzes a single requirement against a policy excerpt.
type Agent struct {
	llm          llm.Client
	index        vectorstore.Index
	orchestrator *prompt.Orchestrator
	retrieval    config.RetrievalConfig
}

// New creates a compliance agent over the given model client and evidence
// index.
func New(client llm.Client, index vectorstore.Index, retrieval config.RetrievalConfig) *Agent {
	return &Agent{
		llm:          client,
		index:        index,
		orchestrator: prompt.NewOrchestrator(),
		retrieval:    retrieval,
	}
}

// Request identifies one requirement to analyze.
type Request struct {
	Requirement   string
	PolicyExcerpt string
	Framework     models.Framework
	Strategy      models.ReasoningStrategy
}

// Analyze runs the full per-requirement pipeline and always produces a
// finding. Runtime failures (retrieval, model) degrade the finding to
// INSUFFICIENT_EVIDENCE; only caller programming errors (an unknown strategy,
// a malformed prompt context) return an error.
func (a *Agent) Analyze(ctx context.Context, req Request) (models.Finding, error) {
	results, err := a.index.SearchWithScores(ctx, req.Requirement, a.retrieval.TopK)
	if err != nil {
		return a.insufficientFinding(req, models.ConfidenceLow,
			fmt.Sprintf("Retrieval failed: %v", err), nil), nil
	}

	texts := make([]string, len(results))
	scores := make([]float64, len(results))
	for i, r := range results {
		texts[i] = r.Text
		scores[i] = r.Score
	}

	assessment := AssessRetrievalQuality(texts, scores, a.retrieval)
	if !assessment.Sufficient {
		return a.insufficientFinding(req, assessment.Confidence, assessment.Note, results), nil
	}

	analysisStrategy := req.Strategy
	if analysisStrategy == models.StrategySelfCorrection {
		// Self-correction reviews an initial chain-of-thought pass.
		analysisStrategy = models.StrategyChainOfThought
	}

	systemPrompt, analysisPrompt, err := a.orchestrator.BuildCompletePrompt(prompt.Context{
		DocumentText: buildDocumentContext(results, req),
		Framework:    req.Framework,
		Strategy:     analysisStrategy,
	})
	if err != nil {
		return models.Finding{}, err
	}

	analysis, err := a.llm.Complete(ctx, systemPrompt, analysisPrompt)
	if err != nil {
		return a.insufficientFinding(req, models.ConfidenceLow,
			fmt.Sprintf("Model unavailable: %v", err), results), nil
	}

	note := assessment.Note
	if req.Strategy == models.StrategySelfCorrection {
		refined, refineErr := a.refine(ctx, req.Framework, analysis)
		if refineErr != nil {
			note = note + "; refinement skipped: " + refineErr.Error()
		} else {
			analysis = refined
		}
	}

	status := parser.InferVerdict(analysis)

	return models.Finding{
		Requirement:   req.Requirement,
		Status:        status,
		Analysis:      analysis,
		Severity:      models.SeverityForStatus(status),
		Sources:       distinctSources(results),
		Confidence:    assessment.Confidence,
		RetrievalNote: note,
	}, nil
}

// refine issues the single self-correction pass over an initial analysis.
func (a *Agent) refine(ctx context.Context, framework models.Framework, initial string) (string, error) {
	systemPrompt, correctionPrompt, err := a.orchestrator.BuildCompletePrompt(prompt.Context{
		Framework:        framework,
		Strategy:         models.StrategySelfCorrection,
		PreviousAnalysis: initial,
	})
	if err != nil {
		return "", err
	}
	return a.llm.Complete(ctx, systemPrompt, correctionPrompt)
}

func (a *Agent) insufficientFinding(req Request, confidence models.ConfidenceLevel, note string, results []vectorstore.SearchResult) models.Finding {
	return models.Finding{
		Requirement:   req.Requirement,
		Status:        models.StatusInsufficientEvidence,
		Analysis:      "Insufficient evidence: " + note,
		Severity:      models.SeverityForStatus(models.StatusInsufficientEvidence),
		Sources:       distinctSources(results),
		Confidence:    confidence,
		RetrievalNote: note,
	}
}

// buildDocumentContext assembles the retrieved evidence and the policy
// excerpt into the prompt's document text.
func buildDocumentContext(results []vectorstore.SearchResult, req Request) string {
	var sb strings.Builder

	sb.WriteString("REGULATORY CONTEXT:\n")
	for i, r := range results {
		fmt.Fprintf(&sb, "[%d] (%s) %s\n\n", i+1, r.Source, r.Text)
	}

	sb.WriteString("POLICY EXCERPT UNDER REVIEW:\n")
	sb.WriteString(req.PolicyExcerpt)
	sb.WriteString("\n\nREQUIREMENT:\n")
	sb.WriteString(req.Requirement)
	sb.WriteString("\n\nCite the regulatory passages you rely on by their bracketed numbers.")

	return sb.String()
}

// distinctSources returns the de-duplicated, sorted source identifiers.
func distinctSources(results []vectorstore.SearchResult) []string {
	if len(results) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(results))
	var sources []string
	for _, r := range results {
		if r.Source == "" {
			continue
		}
		if _, ok := seen[r.Source]; ok {
			continue
		}
		seen[r.Source] = struct{}{}
		sources = append(sources, r.Source)
	}
	sort.Strings(sources)
	return sources
}
