package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/trm-lab/argus/pkg/domain/model"
	"github.com/trm-lab/argus/pkg/domain/model/auth"
	"github.com/trm-lab/argus/pkg/domain/model/config"
	"github.com/trm-lab/argus/pkg/domain/types"
	"github.com/trm-lab/argus/pkg/repository/memory"
	"github.com/trm-lab/argus/pkg/usecase"
)

// newAppetiteUseCases builds a fixture whose organization carries a
// configured tolerance for the cloud category.
func newAppetiteUseCases(tolerance, earlyWarning float64) (*usecase.UseCases, *memory.Memory) {
	registry := model.NewOrgRegistry()
	registry.Register(&model.OrgEntry{
		Organization: model.Organization{ID: testOrgID, Name: "Test Org"},
		Chains:       map[string][]config.ChainStep{},
		Appetites: []config.AppetiteDefinition{
			{Category: "cloud", RiskTolerance: tolerance, EarlyWarningThreshold: earlyWarning},
		},
	})

	repo := memory.New()
	uc := usecase.New(repo, registry, usecase.WithClock(func() time.Time { return testNow }))
	return uc, repo
}

func TestAppetiteUseCase_Evaluate(t *testing.T) {
	t.Run("within appetite", func(t *testing.T) {
		uc, repo := newAppetiteUseCases(50, 40)
		ctx := context.Background()

		_, err := seedVendor(ctx, repo, func(v *model.Vendor) { v.ResidualRiskScore = 35 })
		gt.NoError(t, err).Required()

		results, err := uc.Appetite.Evaluate(ctx, testOrgID)
		gt.NoError(t, err).Required()
		gt.Array(t, results).Length(1)
		gt.Value(t, results[0].Category).Equal("cloud")
		gt.Value(t, results[0].CurrentRiskLevel).Equal(35.0)
		gt.Value(t, results[0].BreachStatus).Equal(types.BreachStatusWithinAppetite)
		gt.Value(t, results[0].EvaluatedAt).Equal(testNow)
	})

	t.Run("risk level is tier-weighted", func(t *testing.T) {
		uc, repo := newAppetiteUseCases(60, 40)
		ctx := context.Background()

		// high tier weight 3 at 60, low tier weight 1 at 20:
		// (60*3 + 20*1) / 4 = 50 -> above early warning, below tolerance
		_, err := seedVendor(ctx, repo, func(v *model.Vendor) {
			v.Name = "Heavy"
			v.Tier = types.TierHigh
			v.ResidualRiskScore = 60
		})
		gt.NoError(t, err).Required()
		_, err = seedVendor(ctx, repo, func(v *model.Vendor) {
			v.Name = "Light"
			v.Tier = types.TierLow
			v.ResidualRiskScore = 20
		})
		gt.NoError(t, err).Required()

		results, err := uc.Appetite.Evaluate(ctx, testOrgID)
		gt.NoError(t, err).Required()
		gt.Value(t, results[0].CurrentRiskLevel).Equal(50.0)
		gt.Value(t, results[0].BreachStatus).Equal(types.BreachStatusApproachingLimit)
	})

	t.Run("transition into breach records exactly one breach", func(t *testing.T) {
		uc, repo := newAppetiteUseCases(50, 40)
		ctx := context.Background()

		offender, err := seedVendor(ctx, repo, func(v *model.Vendor) { v.ResidualRiskScore = 55 })
		gt.NoError(t, err).Required()

		results, err := uc.Appetite.Evaluate(ctx, testOrgID)
		gt.NoError(t, err).Required()
		gt.Value(t, results[0].BreachStatus).Equal(types.BreachStatusBreached)

		breaches, err := uc.Appetite.ListBreaches(ctx, testOrgID)
		gt.NoError(t, err).Required()
		gt.Array(t, breaches).Length(1)
		gt.Value(t, breaches[0].Category).Equal("cloud")
		gt.Value(t, breaches[0].ActualLevel).Equal(55.0)
		gt.Value(t, breaches[0].ExcessAmount).Equal(5.0)
		gt.Bool(t, breaches[0].EscalatedToBoard).False()
		gt.Array(t, breaches[0].ContributingFactors).Length(1)
		gt.Value(t, breaches[0].ContributingFactors[0]).Equal(offender.Name)

		// Staying breached does not stack records
		_, err = uc.Appetite.Evaluate(ctx, testOrgID)
		gt.NoError(t, err).Required()

		breaches, err = uc.Appetite.ListBreaches(ctx, testOrgID)
		gt.NoError(t, err).Required()
		gt.Array(t, breaches).Length(1)

		// Recovering and breaching again records a second one
		_, err = uc.Vendor.CompleteAssessment(ctx, testOrgID, offender.ID, 70)
		gt.NoError(t, err).Required()
		_, err = uc.Appetite.Evaluate(ctx, testOrgID)
		gt.NoError(t, err).Required()

		_, err = uc.Vendor.CompleteAssessment(ctx, testOrgID, offender.ID, 40)
		gt.NoError(t, err).Required()
		_, err = uc.Appetite.Evaluate(ctx, testOrgID)
		gt.NoError(t, err).Required()

		breaches, err = uc.Appetite.ListBreaches(ctx, testOrgID)
		gt.NoError(t, err).Required()
		gt.Array(t, breaches).Length(2)
	})

	t.Run("severe excess escalates to the board", func(t *testing.T) {
		uc, repo := newAppetiteUseCases(50, 40)
		ctx := context.Background()

		_, err := seedVendor(ctx, repo, func(v *model.Vendor) { v.ResidualRiskScore = 70 })
		gt.NoError(t, err).Required()

		_, err = uc.Appetite.Evaluate(ctx, testOrgID)
		gt.NoError(t, err).Required()

		breaches, err := uc.Appetite.ListBreaches(ctx, testOrgID)
		gt.NoError(t, err).Required()
		gt.Array(t, breaches).Length(1)
		gt.Value(t, breaches[0].ExcessAmount).Equal(20.0)
		gt.Bool(t, breaches[0].EscalatedToBoard).True()
		gt.Bool(t, breaches[0].BoardActionRequired).True()
	})

	t.Run("category with no vendors evaluates to zero", func(t *testing.T) {
		uc, _ := newAppetiteUseCases(50, 40)

		results, err := uc.Appetite.Evaluate(context.Background(), testOrgID)
		gt.NoError(t, err).Required()
		gt.Value(t, results[0].CurrentRiskLevel).Equal(0.0)
		gt.Value(t, results[0].BreachStatus).Equal(types.BreachStatusWithinAppetite)
	})

	t.Run("evaluation requires the capability", func(t *testing.T) {
		uc, _ := newAppetiteUseCases(50, 40)
		ctx := auth.ContextWithIdentity(context.Background(), &auth.Identity{
			UserID: "u-bob", Role: types.RoleBusinessOwner, OrgID: testOrgID,
		})

		_, err := uc.Appetite.Evaluate(ctx, testOrgID)
		gt.Bool(t, errors.Is(err, usecase.ErrPermissionDenied)).True()
	})

	t.Run("unknown organization", func(t *testing.T) {
		uc, _ := newAppetiteUseCases(50, 40)
		_, err := uc.Appetite.Evaluate(context.Background(), "org-unknown")
		gt.Error(t, err)
	})
}
