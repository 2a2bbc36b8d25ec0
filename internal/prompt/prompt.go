// Package prompt builds the system and analysis prompts for each reasoning
// strategy.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kamilpajak/verity/pkg/models"
)

// ErrMissingPreviousAnalysis is returned when a self-correction prompt is
// requested without the analysis it should review. This is a caller bug,
// not a runtime condition.
var ErrMissingPreviousAnalysis = errors.New("self-correction requires a previous analysis")

// Context carries everything a prompt builder needs.
type Context struct {
	DocumentText     string
	Framework        models.Framework
	Strategy         models.ReasoningStrategy
	PreviousAnalysis string
}

// Orchestrator builds (system prompt, analysis prompt) pairs.
type Orchestrator struct{}

// NewOrchestrator creates a prompt orchestrator.
func NewOrchestrator() *Orchestrator {
	return &Orchestrator{}
}

// frameworkExpertise names the domains of expertise the system prompt claims
// for each framework.
func frameworkExpertise(framework models.Framework) string {
	switch framework {
	case models.FrameworkISO27001:
		return "information security management systems, security controls, and risk treatment"
	case models.FrameworkGDPR:
		return "data protection law, lawful processing bases, and data subject rights"
	case models.FrameworkSOC2:
		return "trust services criteria, service organization controls, and operational security"
	case models.FrameworkHIPAA:
		return "healthcare privacy, the Security Rule, and protected health information safeguards"
	default:
		return "regulatory compliance and security governance"
	}
}

// BuildSystemPrompt returns the role-and-grounding system prompt.
func (o *Orchestrator) BuildSystemPrompt(framework models.Framework) string {
	return fmt.Sprintf(
		"You are an expert compliance analyst specializing in %s, with deep knowledge of %s. "+
			"Base all conclusions strictly on the provided context. "+
			"If the context is insufficient to decide, state 'Insufficient Evidence' explicitly.",
		framework.DisplayName(), frameworkExpertise(framework),
	)
}

// BuildAnalysisPrompt builds the strategy-specific analysis prompt.
func (o *Orchestrator) BuildAnalysisPrompt(ctx Context) (string, error) {
	switch ctx.Strategy {
	case models.StrategyChainOfThought:
		return o.chainOfThoughtPrompt(ctx), nil
	case models.StrategyReAct:
		return o.reactPrompt(ctx), nil
	case models.StrategySelfCorrection:
		return o.selfCorrectionPrompt(ctx)
	case models.StrategyTreeOfThoughts:
		return o.treeOfThoughtsPrompt(ctx), nil
	default:
		return "", fmt.Errorf("unknown reasoning strategy: %q", ctx.Strategy)
	}
}

// BuildCompletePrompt returns the full (system, analysis) pair. It never
// returns a partially constructed pair.
func (o *Orchestrator) BuildCompletePrompt(ctx Context) (string, string, error) {
	analysisPrompt, err := o.BuildAnalysisPrompt(ctx)
	if err != nil {
		return "", "", err
	}
	return o.BuildSystemPrompt(ctx.Framework), analysisPrompt, nil
}

func (o *Orchestrator) chainOfThoughtPrompt(ctx Context) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Analyze the following content for compliance with %s. Think step by step:\n\n",
		ctx.Framework.DisplayName())
	sb.WriteString("1. Identify the relevant policy sections\n")
	sb.WriteString("2. Map each section to the applicable controls\n")
	sb.WriteString("3. Compare the policy statements against each control's requirement\n")
	sb.WriteString("4. Determine the compliance status for each control\n")
	sb.WriteString("5. Identify gaps between the policy and the requirements\n")
	sb.WriteString("6. Recommend concrete remediation actions\n\n")

	sb.WriteString("CONTENT:\n")
	sb.WriteString(ctx.DocumentText)
	sb.WriteString("\n\n")

	sb.WriteString("For each control evaluated, report:\n")
	sb.WriteString("Control ID: <identifier>\n")
	sb.WriteString("Title: <control title>\n")
	sb.WriteString("Requirement: <what the framework requires>\n")
	sb.WriteString("Evidence: <quote from the provided content>\n")
	sb.WriteString("Status: compliant / partial / non-compliant\n")
	sb.WriteString("Gap: <what is missing, if anything>\n")
	sb.WriteString("Severity: critical / high / medium / low\n")
	sb.WriteString("Recommendation: <specific action>\n\n")
	sb.WriteString("Finish with an overall compliance score from 0 to 100, on a line starting with 'Compliance Score:'.")

	return sb.String()
}

func (o *Orchestrator) reactPrompt(ctx Context) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Assess compliance of the following content with %s using a Thought/Action/Observation loop.\n\n",
		ctx.Framework.DisplayName())
	sb.WriteString("Available actions:\n")
	sb.WriteString("- SEARCH_DOCUMENT: locate a topic in the content\n")
	sb.WriteString("- EXTRACT_POLICY: pull out the exact policy statement\n")
	sb.WriteString("- CHECK_REQUIREMENT: compare the statement against the framework requirement\n")
	sb.WriteString("- ASSESS_GAP: describe what the policy is missing\n")
	sb.WriteString("- RATE_SEVERITY: rate the impact of the gap\n\n")

	sb.WriteString("For each step write:\n")
	sb.WriteString("Thought: <what you need to find out next>\n")
	sb.WriteString("Action: <one of the actions above>\n")
	sb.WriteString("Observation: <what the content shows>\n")
	sb.WriteString("Analysis: <what that means for compliance>\n\n")

	sb.WriteString("CONTENT:\n")
	sb.WriteString(ctx.DocumentText)
	sb.WriteString("\n\nConclude with the overall compliance status and a line starting with 'Compliance Score:'.")

	return sb.String()
}

func (o *Orchestrator) selfCorrectionPrompt(ctx Context) (string, error) {
	if strings.TrimSpace(ctx.PreviousAnalysis) == "" {
		return "", ErrMissingPreviousAnalysis
	}

	var sb strings.Builder

	sb.WriteString("Review the following compliance analysis and produce a corrected version.\n\n")
	sb.WriteString("PREVIOUS ANALYSIS:\n---\n")
	sb.WriteString(ctx.PreviousAnalysis)
	sb.WriteString("\n---\n\n")

	sb.WriteString("Review criteria:\n")
	sb.WriteString("1. Control coverage: were any applicable controls missed?\n")
	sb.WriteString("2. Evidence fidelity: is every claim supported by a quote from the content?\n")
	sb.WriteString("3. Severity justification: do the severity ratings match the gaps?\n")
	sb.WriteString("4. Recommendation actionability: is each recommendation specific enough to act on?\n")
	sb.WriteString("5. Score correctness: does the score follow from the findings?\n")
	sb.WriteString("6. Logical consistency: do the conclusions follow from the observations?\n\n")
	sb.WriteString("Correct any unsupported claims or logical errors and produce the final, improved analysis.")

	return sb.String(), nil
}

func (o *Orchestrator) treeOfThoughtsPrompt(ctx Context) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Assess compliance of the following content with %s by exploring multiple interpretations.\n\n",
		ctx.Framework.DisplayName())
	sb.WriteString("For each ambiguous clause:\n")
	sb.WriteString("1. Propose at least two plausible interpretations\n")
	sb.WriteString("2. Evaluate each interpretation for consistency with the rest of the policy, ")
	sb.WriteString("alignment with the framework's intent, implementation feasibility, and residual risk\n")
	sb.WriteString("3. Select the strongest interpretation and record the assumptions it rests on\n\n")

	sb.WriteString("CONTENT:\n")
	sb.WriteString(ctx.DocumentText)
	sb.WriteString("\n\nConclude with the overall compliance status, the assumptions made, and a line starting with 'Compliance Score:'.")

	return sb.String()
}
