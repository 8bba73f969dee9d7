package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/trm-lab/argus/pkg/domain/model"
	"github.com/trm-lab/argus/pkg/domain/types"
)

func TestAnalyticsUseCase_ConcentrationRisk(t *testing.T) {
	t.Run("empty portfolio is low risk", func(t *testing.T) {
		uc, _ := newTestUseCases()

		report, err := uc.Analytics.ConcentrationRisk(context.Background(), testOrgID)
		gt.NoError(t, err).Required()
		gt.Number(t, report.VendorCount).Equal(0)
		gt.Number(t, report.OverallScore).Equal(0)
		gt.Value(t, report.OverallRiskRating).Equal(types.RiskLevelLow)
	})

	t.Run("spend shares over a mixed portfolio", func(t *testing.T) {
		uc, repo := newTestUseCases()
		ctx := context.Background()

		spends := []float64{100, 50, 30, 10, 5, 5}
		for i, spend := range spends {
			_, err := seedVendor(ctx, repo, func(v *model.Vendor) {
				v.Name = string(rune('A' + i))
				v.Tier = types.TierMedium
				v.ContractValue = spend
				v.GeographicFootprint = []string{"US", "DE"}
			})
			gt.NoError(t, err).Required()
		}

		report, err := uc.Analytics.ConcentrationRisk(ctx, testOrgID)
		gt.NoError(t, err).Required()

		gt.Number(t, report.VendorCount).Equal(6)
		gt.Value(t, report.SpendConcentration.TotalSpend).Equal(200.0)
		gt.Value(t, report.SpendConcentration.LargestVendor).Equal("A")
		gt.Value(t, report.SpendConcentration.Top1Percent).Equal(50.0)
		gt.Value(t, report.SpendConcentration.Top3Percent).Equal(90.0)
		gt.Value(t, report.SpendConcentration.Top5Percent).Equal(97.5)
		gt.Value(t, report.SpendConcentration.Top10Percent).Equal(100.0)
	})

	t.Run("dominant country drives geographic risk", func(t *testing.T) {
		uc, repo := newTestUseCases()
		ctx := context.Background()

		countries := [][]string{{"US"}, {"US"}, {"US"}, {"DE"}}
		for i, footprint := range countries {
			_, err := seedVendor(ctx, repo, func(v *model.Vendor) {
				v.Name = string(rune('A' + i))
				v.Tier = types.TierMedium
				v.GeographicFootprint = footprint
			})
			gt.NoError(t, err).Required()
		}

		report, err := uc.Analytics.ConcentrationRisk(ctx, testOrgID)
		gt.NoError(t, err).Required()

		gt.Value(t, report.Geographic.DominantCountry).Equal("US")
		gt.Value(t, report.Geographic.DominantShare).Equal(75.0)
		gt.Value(t, report.Geographic.RiskLevel).Equal(types.RiskLevelCritical)
		gt.Number(t, report.Geographic.DistinctCountries).Equal(2)
	})

	t.Run("critical tier vendors are single points of failure", func(t *testing.T) {
		uc, repo := newTestUseCases()
		ctx := context.Background()

		_, err := seedVendor(ctx, repo, func(v *model.Vendor) {
			v.Name = "Core DB"
			v.Tier = types.TierCritical
		})
		gt.NoError(t, err).Required()
		_, err = seedVendor(ctx, repo, func(v *model.Vendor) {
			v.Name = "Swag Shop"
			v.Tier = types.TierLow
		})
		gt.NoError(t, err).Required()

		report, err := uc.Analytics.ConcentrationRisk(ctx, testOrgID)
		gt.NoError(t, err).Required()

		gt.Array(t, report.SinglePointsOfFailure).Length(1)
		gt.Value(t, report.SinglePointsOfFailure[0].VendorName).Equal("Core DB")
		gt.Bool(t, report.SinglePointsOfFailure[0].HasBackup).False()
	})

	t.Run("scores stack into the overall rating", func(t *testing.T) {
		uc, repo := newTestUseCases()
		ctx := context.Background()

		// One dominant vendor: 70% of spend (score 3), single country
		// (score 3), critical tier (score 1). Total 7 -> Critical.
		_, err := seedVendor(ctx, repo, func(v *model.Vendor) {
			v.Name = "Monolith"
			v.Tier = types.TierCritical
			v.ContractValue = 70
			v.GeographicFootprint = []string{"US"}
		})
		gt.NoError(t, err).Required()
		_, err = seedVendor(ctx, repo, func(v *model.Vendor) {
			v.Name = "Sidecar"
			v.Tier = types.TierLow
			v.ContractValue = 30
			v.GeographicFootprint = []string{"US"}
		})
		gt.NoError(t, err).Required()

		report, err := uc.Analytics.ConcentrationRisk(ctx, testOrgID)
		gt.NoError(t, err).Required()

		gt.Number(t, report.OverallScore).Equal(7)
		gt.Value(t, report.OverallRiskRating).Equal(types.RiskLevelCritical)
	})

	t.Run("terminated vendors are excluded", func(t *testing.T) {
		uc, repo := newTestUseCases()
		ctx := context.Background()

		_, err := seedVendor(ctx, repo, func(v *model.Vendor) {
			v.Status = types.VendorStatusTerminated
			v.Tier = types.TierCritical
			v.ContractValue = 1000
		})
		gt.NoError(t, err).Required()

		report, err := uc.Analytics.ConcentrationRisk(ctx, testOrgID)
		gt.NoError(t, err).Required()
		gt.Number(t, report.VendorCount).Equal(0)
	})
}

// Category counts feed dashboards even when no category crosses the
// critical threshold.
func TestCategoryConcentration(t *testing.T) {
	uc, repo := newTestUseCases()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := seedVendor(ctx, repo, func(v *model.Vendor) {
			v.Name = string(rune('A' + i))
			v.Category = "cloud"
			v.Tier = types.TierCritical
		})
		gt.NoError(t, err).Required()
	}
	_, err := seedVendor(ctx, repo, func(v *model.Vendor) {
		v.Name = "P"
		v.Category = "payments"
		v.Tier = types.TierLow
	})
	gt.NoError(t, err).Required()

	report, err := uc.Analytics.ConcentrationRisk(ctx, testOrgID)
	gt.NoError(t, err).Required()

	gt.Number(t, report.Category.CategoryCounts["cloud"]).Equal(3)
	gt.Number(t, report.Category.CategoryCounts["payments"]).Equal(1)
	gt.Number(t, report.Category.CriticalByCategory["cloud"]).Equal(3)
	// Three criticals in one category is below the flag threshold
	gt.Value(t, report.Category.HighestRiskCategory).Equal("")
}
