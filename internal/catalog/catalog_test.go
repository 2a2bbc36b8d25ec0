package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kamilpajak/verity/pkg/models"
)

func TestGet_KnownFrameworks(t *testing.T) {
	for _, fw := range []models.Framework{
		models.FrameworkISO27001,
		models.FrameworkGDPR,
		models.FrameworkSOC2,
		models.FrameworkHIPAA,
	} {
		reqs := Get(fw)
		assert.NotEmpty(t, reqs, "framework %s should have requirements", fw)
	}
}

func TestGet_UnknownFramework(t *testing.T) {
	assert.Nil(t, Get(models.Framework("pci-dss")))
}

func TestGet_StableOrder(t *testing.T) {
	first := Get(models.FrameworkISO27001)
	second := Get(models.FrameworkISO27001)
	assert.Equal(t, first, second)
	assert.Equal(t, "Information security policies must be formally documented and approved", first[0])
}
