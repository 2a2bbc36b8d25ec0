package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverityForStatus_NonCompliant(t *testing.T) {
	assert.Equal(t, SeverityHigh, SeverityForStatus(StatusNonCompliant))
}

func TestSeverityForStatus_Partial(t *testing.T) {
	assert.Equal(t, SeverityMedium, SeverityForStatus(StatusPartial))
}

func TestSeverityForStatus_Compliant(t *testing.T) {
	assert.Equal(t, SeverityLow, SeverityForStatus(StatusCompliant))
}

func TestSeverityForStatus_Insufficient(t *testing.T) {
	assert.Equal(t, SeverityLow, SeverityForStatus(StatusInsufficientEvidence))
}

func TestParseFramework(t *testing.T) {
	fw, ok := ParseFramework("gdpr")
	assert.True(t, ok)
	assert.Equal(t, FrameworkGDPR, fw)

	_, ok = ParseFramework("pci-dss")
	assert.False(t, ok)
}

func TestFrameworkDisplayName(t *testing.T) {
	assert.Equal(t, "ISO 27001", FrameworkISO27001.DisplayName())
	assert.Equal(t, "SOC 2", FrameworkSOC2.DisplayName())
}

func TestParseStrategy(t *testing.T) {
	s, ok := ParseStrategy("tree_of_thoughts")
	assert.True(t, ok)
	assert.Equal(t, StrategyTreeOfThoughts, s)

	_, ok = ParseStrategy("zero_shot")
	assert.False(t, ok)
}
