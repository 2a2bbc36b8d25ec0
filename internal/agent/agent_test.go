package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamilpajak/verity/internal/vectorstore"
	"github.com/kamilpajak/verity/pkg/models"
)

type scriptedClient struct {
	responses []string
	errs      []error
	calls     []string
}

func (c *scriptedClient) Complete(_ context.Context, _ string, userPrompt string) (string, error) {
	i := len(c.calls)
	c.calls = append(c.calls, userPrompt)
	if i < len(c.errs) && c.errs[i] != nil {
		return "", c.errs[i]
	}
	if i < len(c.responses) {
		return c.responses[i], nil
	}
	return "", errors.New("no scripted response")
}

type fakeIndex struct {
	results []vectorstore.SearchResult
	err     error
}

func (f *fakeIndex) SearchWithScores(_ context.Context, _ string, _ int) ([]vectorstore.SearchResult, error) {
	return f.results, f.err
}

func goodResults() []vectorstore.SearchResult {
	return []vectorstore.SearchResult{
		{Text: "Access must be reviewed quarterly.", Source: "iso-a9.txt", Score: 0.91},
		{Text: "Privileged accounts require approval.", Source: "iso-a9.txt", Score: 0.74},
		{Text: "Access rights are revoked on termination.", Source: "iso-a8.txt", Score: 0.52},
	}
}

func testRequest() Request {
	return Request{
		Requirement:   "A.9.2 User access management",
		PolicyExcerpt: "Accounts are reviewed every quarter by the security team.",
		Framework:     models.FrameworkISO27001,
		Strategy:      models.StrategyChainOfThought,
	}
}

func TestAnalyze_Compliant(t *testing.T) {
	client := &scriptedClient{responses: []string{"The policy is compliant with the requirement."}}
	a := New(client, &fakeIndex{results: goodResults()}, retrievalConfig())

	finding, err := a.Analyze(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, models.StatusCompliant, finding.Status)
	assert.Equal(t, models.SeverityLow, finding.Severity)
	assert.Equal(t, models.ConfidenceHigh, finding.Confidence)
	assert.Equal(t, []string{"iso-a8.txt", "iso-a9.txt"}, finding.Sources)
	assert.Len(t, client.calls, 1)
}

func TestAnalyze_PromptCarriesEvidenceAndExcerpt(t *testing.T) {
	client := &scriptedClient{responses: []string{"Compliant."}}
	a := New(client, &fakeIndex{results: goodResults()}, retrievalConfig())

	_, err := a.Analyze(context.Background(), testRequest())
	require.NoError(t, err)

	require.Len(t, client.calls, 1)
	sent := client.calls[0]
	assert.Contains(t, sent, "Access must be reviewed quarterly.")
	assert.Contains(t, sent, "Accounts are reviewed every quarter")
	assert.Contains(t, sent, "A.9.2 User access management")
}

func TestAnalyze_InsufficientEvidenceSkipsModel(t *testing.T) {
	client := &scriptedClient{}
	a := New(client, &fakeIndex{}, retrievalConfig())

	finding, err := a.Analyze(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, models.StatusInsufficientEvidence, finding.Status)
	assert.Equal(t, models.SeverityLow, finding.Severity)
	assert.Equal(t, models.ConfidenceLow, finding.Confidence)
	assert.Contains(t, finding.Analysis, "Insufficient evidence")
	assert.Empty(t, client.calls)
}

func TestAnalyze_RetrievalErrorDegrades(t *testing.T) {
	client := &scriptedClient{}
	a := New(client, &fakeIndex{err: errors.New("connection refused")}, retrievalConfig())

	finding, err := a.Analyze(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, models.StatusInsufficientEvidence, finding.Status)
	assert.Contains(t, finding.RetrievalNote, "Retrieval failed")
	assert.Empty(t, client.calls)
}

func TestAnalyze_ModelErrorDegrades(t *testing.T) {
	client := &scriptedClient{errs: []error{errors.New("model overloaded")}}
	a := New(client, &fakeIndex{results: goodResults()}, retrievalConfig())

	finding, err := a.Analyze(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, models.StatusInsufficientEvidence, finding.Status)
	assert.Contains(t, finding.RetrievalNote, "Model unavailable")
}

func TestAnalyze_SelfCorrectionIssuesTwoCalls(t *testing.T) {
	client := &scriptedClient{responses: []string{
		"Initial read: the policy appears compliant.",
		"On review the policy is only partially compliant.",
	}}
	a := New(client, &fakeIndex{results: goodResults()}, retrievalConfig())

	req := testRequest()
	req.Strategy = models.StrategySelfCorrection

	finding, err := a.Analyze(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, client.calls, 2)
	assert.Contains(t, client.calls[1], "Initial read: the policy appears compliant.")
	assert.Equal(t, models.StatusPartial, finding.Status)
	assert.Equal(t, models.SeverityMedium, finding.Severity)
}

func TestAnalyze_SelfCorrectionKeepsInitialOnRefinementFailure(t *testing.T) {
	client := &scriptedClient{
		responses: []string{"The policy is compliant.", ""},
		errs:      []error{nil, errors.New("rate limited")},
	}
	a := New(client, &fakeIndex{results: goodResults()}, retrievalConfig())

	req := testRequest()
	req.Strategy = models.StrategySelfCorrection

	finding, err := a.Analyze(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, models.StatusCompliant, finding.Status)
	assert.Equal(t, "The policy is compliant.", finding.Analysis)
	assert.Contains(t, finding.RetrievalNote, "refinement skipped")
}

func TestAnalyze_UnknownStrategyIsAnError(t *testing.T) {
	client := &scriptedClient{responses: []string{"unused"}}
	a := New(client, &fakeIndex{results: goodResults()}, retrievalConfig())

	req := testRequest()
	req.Strategy = models.ReasoningStrategy("mind_map")

	_, err := a.Analyze(context.Background(), req)
	assert.Error(t, err)
}

func TestAnalyze_Deterministic(t *testing.T) {
	run := func() models.Finding {
		client := &scriptedClient{responses: []string{"The policy is non-compliant."}}
		a := New(client, &fakeIndex{results: goodResults()}, retrievalConfig())
		finding, err := a.Analyze(context.Background(), testRequest())
		require.NoError(t, err)
		return finding
	}

	assert.Equal(t, run(), run())
}
