package usecase

import (
	"context"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/trm-lab/argus/pkg/domain/interfaces"
	"github.com/trm-lab/argus/pkg/domain/model"
	"github.com/trm-lab/argus/pkg/domain/types"
)

// AnalyticsUseCase computes portfolio-level risk analytics. It is pure
// computation over a vendor snapshot and persists nothing.
type AnalyticsUseCase struct {
	repo interfaces.Repository
}

// ConcentrationRisk analyzes the operational vendor portfolio for spend,
// geographic and category concentration plus single points of failure,
// and folds them into one additive risk score:
//
//	spend 0-3 + geographic 0-3 + SPOF 0-3; >=7 Critical, >=5 High,
//	>=3 Medium, else Low.
func (uc *AnalyticsUseCase) ConcentrationRisk(ctx context.Context, orgID string) (*model.ConcentrationReport, error) {
	vendors, err := uc.repo.Vendor().List(ctx, orgID,
		interfaces.WithStatuses(types.VendorStatusApproved, types.VendorStatusActive))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list vendors")
	}

	report := &model.ConcentrationReport{
		SpendConcentration:    spendConcentration(vendors),
		Geographic:            geographicConcentration(vendors),
		Category:              categoryConcentration(vendors),
		SinglePointsOfFailure: singlePointsOfFailure(vendors),
		VendorCount:           len(vendors),
	}

	score := spendScore(report.SpendConcentration) +
		geographicScore(report.Geographic.RiskLevel) +
		spofScore(len(report.SinglePointsOfFailure))

	report.OverallScore = score
	switch {
	case score >= 7:
		report.OverallRiskRating = types.RiskLevelCritical
	case score >= 5:
		report.OverallRiskRating = types.RiskLevelHigh
	case score >= 3:
		report.OverallRiskRating = types.RiskLevelMedium
	default:
		report.OverallRiskRating = types.RiskLevelLow
	}

	return report, nil
}

func spendConcentration(vendors []*model.Vendor) model.SpendConcentration {
	sorted := make([]*model.Vendor, len(vendors))
	copy(sorted, vendors)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ContractValue > sorted[j].ContractValue
	})

	var total float64
	for _, v := range sorted {
		total += v.ContractValue
	}

	result := model.SpendConcentration{TotalSpend: total}
	if total == 0 || len(sorted) == 0 {
		return result
	}

	result.LargestVendor = sorted[0].Name
	topN := func(n int) float64 {
		if n > len(sorted) {
			n = len(sorted)
		}
		var sum float64
		for _, v := range sorted[:n] {
			sum += v.ContractValue
		}
		return sum / total * 100
	}

	result.Top1Percent = topN(1)
	result.Top3Percent = topN(3)
	result.Top5Percent = topN(5)
	result.Top10Percent = topN(10)
	return result
}

func geographicConcentration(vendors []*model.Vendor) model.GeographicConcentration {
	counts := make(map[string]int)
	for _, v := range vendors {
		for _, country := range v.GeographicFootprint {
			counts[country]++
		}
	}

	result := model.GeographicConcentration{
		CountryCounts:     counts,
		DistinctCountries: len(counts),
		RiskLevel:         types.RiskLevelLow,
	}
	if len(vendors) == 0 {
		return result
	}

	for country, count := range counts {
		share := float64(count) / float64(len(vendors)) * 100
		if share > result.DominantShare {
			result.DominantShare = share
			result.DominantCountry = country
		}
	}

	switch {
	case result.DominantShare > 70:
		result.RiskLevel = types.RiskLevelCritical
	case result.DominantShare > 50:
		result.RiskLevel = types.RiskLevelHigh
	case result.DistinctCountries < 3:
		result.RiskLevel = types.RiskLevelMedium
	}
	return result
}

func categoryConcentration(vendors []*model.Vendor) model.CategoryConcentration {
	result := model.CategoryConcentration{
		CategoryCounts:     make(map[string]int),
		CriticalByCategory: make(map[string]int),
	}

	for _, v := range vendors {
		result.CategoryCounts[v.Category]++
		if v.Tier == types.TierCritical {
			result.CriticalByCategory[v.Category]++
		}
	}

	highest := 0
	for category, criticals := range result.CriticalByCategory {
		if criticals > 5 && criticals > highest {
			highest = criticals
			result.HighestRiskCategory = category
		}
	}
	return result
}

func singlePointsOfFailure(vendors []*model.Vendor) []model.SinglePointOfFailure {
	spofs := make([]model.SinglePointOfFailure, 0)
	for _, v := range vendors {
		if v.Tier != types.TierCritical {
			continue
		}
		// No backup-vendor mapping exists yet, so HasBackup stays false.
		spofs = append(spofs, model.SinglePointOfFailure{
			VendorID:   v.ID,
			VendorName: v.Name,
			Category:   v.Category,
			Tier:       v.Tier,
			HasBackup:  false,
		})
	}
	return spofs
}

func spendScore(s model.SpendConcentration) int {
	switch {
	case s.Top1Percent > 60:
		return 3
	case s.Top1Percent > 40:
		return 2
	case s.Top1Percent > 25:
		return 1
	default:
		return 0
	}
}

func geographicScore(level types.RiskLevel) int {
	switch level {
	case types.RiskLevelCritical:
		return 3
	case types.RiskLevelHigh:
		return 2
	case types.RiskLevelMedium:
		return 1
	default:
		return 0
	}
}

func spofScore(count int) int {
	switch {
	case count > 10:
		return 3
	case count > 5:
		return 2
	case count > 0:
		return 1
	default:
		return 0
	}
}
