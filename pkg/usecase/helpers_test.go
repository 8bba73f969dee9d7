package usecase_test

import (
	"context"
	"time"

	"github.com/trm-lab/argus/pkg/domain/model"
	"github.com/trm-lab/argus/pkg/domain/model/config"
	"github.com/trm-lab/argus/pkg/domain/types"
	"github.com/trm-lab/argus/pkg/repository/memory"
	"github.com/trm-lab/argus/pkg/usecase"
)

const testOrgID = "org-test"

var testNow = time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

func newTestRegistry() *model.OrgRegistry {
	registry := model.NewOrgRegistry()
	registry.Register(&model.OrgEntry{
		Organization: model.Organization{ID: testOrgID, Name: "Test Org"},
		Chains:       map[string][]config.ChainStep{},
		Appetites:    []config.AppetiteDefinition{},
	})
	return registry
}

func newTestUseCases(opts ...usecase.Option) (*usecase.UseCases, *memory.Memory) {
	repo := memory.New()
	opts = append([]usecase.Option{usecase.WithClock(func() time.Time { return testNow })}, opts...)
	return usecase.New(repo, newTestRegistry(), opts...), repo
}

func seedVendor(ctx context.Context, repo *memory.Memory, mutate func(*model.Vendor)) (*model.Vendor, error) {
	vendor := &model.Vendor{
		Name:              "Acme Cloud",
		Category:          "cloud",
		Tier:              types.TierHigh,
		Status:            types.VendorStatusActive,
		InherentRiskScore: 35,
		ResidualRiskScore: 35,
		NextReviewDate:    testNow.Add(180 * 24 * time.Hour),
	}
	if mutate != nil {
		mutate(vendor)
	}
	return repo.Vendor().Create(ctx, testOrgID, vendor)
}

func twoStepChain() []config.ChainStep {
	return []config.ChainStep{
		{ApproverRole: types.RoleRiskManager.String(), ApproverUserID: "u-risk", ApproverName: "Riley Risk"},
		{ApproverRole: types.RoleCISO.String(), ApproverUserID: "u-ciso", ApproverName: "Casey CISO"},
	}
}
