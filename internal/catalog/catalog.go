// Package catalog provides the static per-framework requirement lists the
// audit engine iterates over.
package catalog

import "github.com/kamilpajak/verity/pkg/models"

var iso27001Requirements = []string{
	"Information security policies must be formally documented and approved",
	"Access to systems and data must follow the principle of least privilege",
	"User access rights must be reviewed periodically",
	"Security incidents must be detected, logged, and reported",
	"Personal data must be protected against unauthorized access and disclosure",
}

var gdprRequirements = []string{
	"Personal data processing must be lawful, fair, and transparent",
	"Data must be collected for explicit and legitimate purposes",
	"Personal data must be protected by appropriate technical measures",
	"Data breaches must be detected and reported without undue delay",
}

var soc2Requirements = []string{
	"Logical access to systems must be restricted to authorized users",
	"System changes must be authorized, tested, and documented before deployment",
	"System availability must be monitored and incidents resolved in a timely manner",
	"Confidential information must be protected during collection, use, and retention",
}

var hipaaRequirements = []string{
	"Access to electronic protected health information must be limited to authorized workforce members",
	"Audit controls must record and examine activity in systems containing health information",
	"Protected health information must be encrypted in transit over open networks",
	"Security incidents affecting health information must be identified, documented, and mitigated",
}

// Get returns the ordered requirement list for a framework. Unknown
// frameworks return nil: an audit over them produces zero findings rather
// than an error.
func Get(framework models.Framework) []string {
	switch framework {
	case models.FrameworkISO27001:
		return iso27001Requirements
	case models.FrameworkGDPR:
		return gdprRequirements
	case models.FrameworkSOC2:
		return soc2Requirements
	case models.FrameworkHIPAA:
		return hipaaRequirements
	default:
		return nil
	}
}
