package model

import "github.com/trm-lab/argus/pkg/domain/types"

// ConcentrationReport is the full portfolio concentration analysis over
// the operational (ACTIVE/APPROVED) vendor snapshot. It is a pure
// computation result with no persisted state.
type ConcentrationReport struct {
	SpendConcentration    SpendConcentration
	Geographic            GeographicConcentration
	Category              CategoryConcentration
	SinglePointsOfFailure []SinglePointOfFailure
	OverallScore          int
	OverallRiskRating     types.RiskLevel
	VendorCount           int
}

// SpendConcentration captures how much of total spend sits with the
// largest vendors.
type SpendConcentration struct {
	TotalSpend    float64
	Top1Percent   float64
	Top3Percent   float64
	Top5Percent   float64
	Top10Percent  float64
	LargestVendor string
}

// GeographicConcentration tallies vendor presence per country
type GeographicConcentration struct {
	CountryCounts     map[string]int
	DistinctCountries int
	DominantCountry   string
	DominantShare     float64
	RiskLevel         types.RiskLevel
}

// CategoryConcentration groups vendors by category and flags the highest
// risk category (more than five CRITICAL-tier vendors).
type CategoryConcentration struct {
	CategoryCounts      map[string]int
	CriticalByCategory  map[string]int
	HighestRiskCategory string
}

// SinglePointOfFailure is a critical vendor with no documented backup.
// HasBackup is always false today: no backup-vendor mapping exists yet.
type SinglePointOfFailure struct {
	VendorID   int64
	VendorName string
	Category   string
	Tier       types.VendorTier
	HasBackup  bool
}
