package model

import (
	"time"

	"github.com/trm-lab/argus/pkg/domain/types"
)

// Vendor is the root aggregate of the registry. Workflows, issues and
// monitoring signals are all scoped to a vendor and an organization.
type Vendor struct {
	ID                  int64
	Name                string
	LegalName           string
	Category            string
	VendorType          string
	Tier                types.VendorTier
	Status              types.VendorStatus
	InherentRiskScore   int
	ResidualRiskScore   int
	SensitiveDataTypes  []string
	UsesSubcontractors  bool
	ContractValue       float64
	GeographicFootprint []string
	NextReviewDate      time.Time
	LastCheckedAt       *time.Time
	OnboardedAt         *time.Time
	TerminatedAt        *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// CalculateInherentRiskScore computes the pre-control risk score from the
// vendor's tier, the number of sensitive data types it touches, and
// whether it relies on subcontractors. The result is clamped to 0-100.
func CalculateInherentRiskScore(tier types.VendorTier, sensitiveDataTypes int, usesSubcontractors bool) int {
	var score int
	switch tier {
	case types.TierCritical:
		score = 50
	case types.TierHigh:
		score = 35
	case types.TierMedium:
		score = 20
	default:
		score = 10
	}

	dataScore := sensitiveDataTypes * 8
	if dataScore > 40 {
		dataScore = 40
	}
	score += dataScore

	if usesSubcontractors {
		score += 10
	}

	if score > 100 {
		score = 100
	}
	return score
}

// NextReviewDate derives the upcoming periodic review date from the tier
func NextReviewDate(tier types.VendorTier, from time.Time) time.Time {
	return from.Add(tier.ReviewInterval())
}
