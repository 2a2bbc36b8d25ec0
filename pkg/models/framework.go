package models

// Framework identifies a regulatory framework.
type Framework string

const (
	FrameworkISO27001 Framework = "iso27001"
	FrameworkGDPR     Framework = "gdpr"
	FrameworkSOC2     Framework = "soc2"
	FrameworkHIPAA    Framework = "hipaa"
)

// DisplayName returns the human-readable framework name used in prompts
// and reports.
func (f Framework) DisplayName() string {
	switch f {
	case FrameworkISO27001:
		return "ISO 27001"
	case FrameworkGDPR:
		return "GDPR"
	case FrameworkSOC2:
		return "SOC 2"
	case FrameworkHIPAA:
		return "HIPAA"
	default:
		return string(f)
	}
}

// ParseFramework maps a user-supplied name to a Framework. The boolean is
// false for unrecognized names.
func ParseFramework(s string) (Framework, bool) {
	switch Framework(s) {
	case FrameworkISO27001, FrameworkGDPR, FrameworkSOC2, FrameworkHIPAA:
		return Framework(s), true
	}
	return "", false
}

// ReasoningStrategy selects the prompt structure the agent uses.
type ReasoningStrategy string

const (
	StrategyChainOfThought ReasoningStrategy = "chain_of_thought"
	StrategyReAct          ReasoningStrategy = "react"
	StrategySelfCorrection ReasoningStrategy = "self_correction"
	StrategyTreeOfThoughts ReasoningStrategy = "tree_of_thoughts"
)

// ParseStrategy maps a user-supplied name to a ReasoningStrategy.
func ParseStrategy(s string) (ReasoningStrategy, bool) {
	switch ReasoningStrategy(s) {
	case StrategyChainOfThought, StrategyReAct, StrategySelfCorrection, StrategyTreeOfThoughts:
		return ReasoningStrategy(s), true
	}
	return "", false
}
