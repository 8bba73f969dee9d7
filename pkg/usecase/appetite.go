package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/trm-lab/argus/pkg/domain/interfaces"
	"github.com/trm-lab/argus/pkg/domain/model"
	"github.com/trm-lab/argus/pkg/domain/types"
	"github.com/trm-lab/argus/pkg/service/notify"
	"github.com/trm-lab/argus/pkg/utils/async"
)

// severeBreachExcess is the excess over tolerance above which a breach
// is escalated to the board.
const severeBreachExcess = 10.0

// AppetiteUseCase evaluates the aggregate risk level per category
// against the board-approved tolerance and records breaches on the
// transition into BREACHED.
type AppetiteUseCase struct {
	repo     interfaces.Repository
	registry *model.OrgRegistry
	notifier notify.Notifier
	now      func() time.Time
}

// List returns the current appetite positions for the organization
func (uc *AppetiteUseCase) List(ctx context.Context, orgID string) ([]*model.RiskAppetite, error) {
	appetites, err := uc.repo.Appetite().List(ctx, orgID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risk appetites")
	}
	return appetites, nil
}

// ListBreaches returns recorded breaches, newest first
func (uc *AppetiteUseCase) ListBreaches(ctx context.Context, orgID string) ([]*model.RiskAppetiteBreach, error) {
	breaches, err := uc.repo.Appetite().ListBreaches(ctx, orgID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list breaches")
	}
	return breaches, nil
}

// Evaluate recomputes every configured category: the current risk level
// is the tier-weighted average of residual risk scores over operational
// vendors in that category. A transition into BREACHED records exactly
// one breach; staying breached does not stack records.
func (uc *AppetiteUseCase) Evaluate(ctx context.Context, orgID string) ([]*model.RiskAppetite, error) {
	if err := requirePermission(ctx, types.PermEvaluateAppetite); err != nil {
		return nil, err
	}

	entry, err := uc.registry.Get(orgID)
	if err != nil {
		return nil, goerr.Wrap(err, "unknown organization")
	}

	vendors, err := uc.repo.Vendor().List(ctx, orgID,
		interfaces.WithStatuses(types.VendorStatusApproved, types.VendorStatusActive))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list vendors")
	}

	now := uc.now()
	results := make([]*model.RiskAppetite, 0, len(entry.Appetites))
	var toNotify []*model.RiskAppetiteBreach

	err = uc.repo.InTx(ctx, func(ctx context.Context) error {
		for _, def := range entry.Appetites {
			level, factors := weightedRiskLevel(vendors, def.Category, def.RiskTolerance)

			status := types.BreachStatusWithinAppetite
			switch {
			case level > def.RiskTolerance:
				status = types.BreachStatusBreached
			case level > def.EarlyWarningThreshold:
				status = types.BreachStatusApproachingLimit
			}

			previous := types.BreachStatusWithinAppetite
			if existing, err := uc.repo.Appetite().Get(ctx, orgID, def.Category); err == nil {
				previous = existing.BreachStatus
			} else if !isNotFound(err) {
				return goerr.Wrap(err, "failed to get appetite", goerr.V("category", def.Category))
			}

			appetite, err := uc.repo.Appetite().Upsert(ctx, orgID, &model.RiskAppetite{
				Category:              def.Category,
				RiskTolerance:         def.RiskTolerance,
				EarlyWarningThreshold: def.EarlyWarningThreshold,
				CurrentRiskLevel:      level,
				BreachStatus:          status,
				EvaluatedAt:           now,
			})
			if err != nil {
				return goerr.Wrap(err, "failed to upsert appetite", goerr.V("category", def.Category))
			}
			results = append(results, appetite)

			if status == types.BreachStatusBreached && previous != types.BreachStatusBreached {
				breach, err := uc.recordBreach(ctx, orgID, def.Category, def.RiskTolerance, level, factors, now)
				if err != nil {
					return err
				}
				toNotify = append(toNotify, breach)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, breach := range toNotify {
		async.Dispatch(ctx, func(ctx context.Context) error {
			return uc.notifier.AppetiteBreached(ctx, orgID, breach)
		})
	}
	return results, nil
}

// recordBreach persists the point-in-time breach record. An excess over
// the severe threshold escalates to the board.
func (uc *AppetiteUseCase) recordBreach(ctx context.Context, orgID, category string, tolerance, actual float64, factors []string, now time.Time) (*model.RiskAppetiteBreach, error) {
	excess := actual - tolerance
	severe := excess > severeBreachExcess

	breach, err := uc.repo.Appetite().CreateBreach(ctx, orgID, &model.RiskAppetiteBreach{
		Category:            category,
		ThresholdExceeded:   tolerance,
		ActualLevel:         actual,
		ExcessAmount:        excess,
		ContributingFactors: factors,
		EscalatedToBoard:    severe,
		BoardActionRequired: severe,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to record breach", goerr.V("category", category))
	}

	if err := appendAudit(ctx, uc.repo, orgID, model.AuditBreachRecorded, "appetite", category,
		map[string]string{"excess": fmt.Sprintf("%.1f", excess)}, now); err != nil {
		return nil, err
	}
	return breach, nil
}

// weightedRiskLevel averages residual risk scores over the category's
// vendors, weighted by tier, and collects the vendors whose residual
// score alone exceeds the tolerance as contributing factors.
func weightedRiskLevel(vendors []*model.Vendor, category string, tolerance float64) (float64, []string) {
	var weightedSum, totalWeight float64
	var factors []string

	for _, v := range vendors {
		if v.Category != category {
			continue
		}
		weight := v.Tier.AppetiteWeight()
		weightedSum += float64(v.ResidualRiskScore) * weight
		totalWeight += weight

		if float64(v.ResidualRiskScore) > tolerance {
			factors = append(factors, v.Name)
		}
	}

	if totalWeight == 0 {
		return 0, nil
	}
	return weightedSum / totalWeight, factors
}
