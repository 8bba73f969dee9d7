package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/trm-lab/argus/pkg/domain/interfaces"
	"github.com/trm-lab/argus/pkg/domain/model"
	"github.com/trm-lab/argus/pkg/domain/types"
)

// VendorUseCase manages the vendor registry: profiles, tiering, risk
// scores and lifecycle status outside approval workflows.
type VendorUseCase struct {
	repo interfaces.Repository
	now  func() time.Time
}

// CreateVendorInput carries the vendor profile at registration time
type CreateVendorInput struct {
	Name                string
	LegalName           string
	Category            string
	VendorType          string
	Tier                types.VendorTier
	SensitiveDataTypes  []string
	UsesSubcontractors  bool
	ContractValue       float64
	GeographicFootprint []string
}

// UpdateVendorInput carries mutable profile fields. Nil pointers leave
// the field untouched.
type UpdateVendorInput struct {
	Name                *string
	LegalName           *string
	Category            *string
	VendorType          *string
	Tier                *types.VendorTier
	SensitiveDataTypes  []string
	UsesSubcontractors  *bool
	ContractValue       *float64
	GeographicFootprint []string
}

func isNotFound(err error) bool {
	return errors.Is(err, interfaces.ErrNotFound)
}

func (uc *VendorUseCase) CreateVendor(ctx context.Context, orgID string, input CreateVendorInput) (*model.Vendor, error) {
	if err := requirePermission(ctx, types.PermManageVendors); err != nil {
		return nil, err
	}
	if input.Name == "" {
		return nil, goerr.Wrap(ErrInvalidInput, "vendor name is required")
	}
	if !input.Tier.IsValid() {
		return nil, goerr.Wrap(ErrInvalidInput, "invalid vendor tier", goerr.V("tier", input.Tier))
	}

	now := uc.now()
	inherent := model.CalculateInherentRiskScore(input.Tier, len(input.SensitiveDataTypes), input.UsesSubcontractors)

	vendor := &model.Vendor{
		Name:                input.Name,
		LegalName:           input.LegalName,
		Category:            input.Category,
		VendorType:          input.VendorType,
		Tier:                input.Tier,
		Status:              types.VendorStatusProposed,
		InherentRiskScore:   inherent,
		ResidualRiskScore:   inherent,
		SensitiveDataTypes:  input.SensitiveDataTypes,
		UsesSubcontractors:  input.UsesSubcontractors,
		ContractValue:       input.ContractValue,
		GeographicFootprint: input.GeographicFootprint,
		NextReviewDate:      model.NextReviewDate(input.Tier, now),
	}

	var created *model.Vendor
	err := uc.repo.InTx(ctx, func(ctx context.Context) error {
		var err error
		created, err = uc.repo.Vendor().Create(ctx, orgID, vendor)
		if err != nil {
			return goerr.Wrap(err, "failed to create vendor")
		}
		return appendAudit(ctx, uc.repo, orgID, model.AuditVendorCreated, "vendor",
			fmt.Sprintf("%d", created.ID), map[string]string{"name": created.Name}, now)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (uc *VendorUseCase) GetVendor(ctx context.Context, orgID string, id int64) (*model.Vendor, error) {
	vendor, err := uc.repo.Vendor().Get(ctx, orgID, id)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrVendorNotFound, "vendor not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get vendor")
	}
	return vendor, nil
}

func (uc *VendorUseCase) ListVendors(ctx context.Context, orgID string, opts ...interfaces.ListVendorOption) ([]*model.Vendor, error) {
	vendors, err := uc.repo.Vendor().List(ctx, orgID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list vendors")
	}
	return vendors, nil
}

func (uc *VendorUseCase) UpdateVendor(ctx context.Context, orgID string, id int64, input UpdateVendorInput) (*model.Vendor, error) {
	if err := requirePermission(ctx, types.PermManageVendors); err != nil {
		return nil, err
	}
	if input.Tier != nil && !input.Tier.IsValid() {
		return nil, goerr.Wrap(ErrInvalidInput, "invalid vendor tier", goerr.V("tier", *input.Tier))
	}

	now := uc.now()
	var updated *model.Vendor
	err := uc.repo.InTx(ctx, func(ctx context.Context) error {
		vendor, err := uc.getInTx(ctx, orgID, id)
		if err != nil {
			return err
		}

		if input.Name != nil {
			vendor.Name = *input.Name
		}
		if input.LegalName != nil {
			vendor.LegalName = *input.LegalName
		}
		if input.Category != nil {
			vendor.Category = *input.Category
		}
		if input.VendorType != nil {
			vendor.VendorType = *input.VendorType
		}
		if input.Tier != nil && *input.Tier != vendor.Tier {
			vendor.Tier = *input.Tier
			vendor.NextReviewDate = model.NextReviewDate(vendor.Tier, now)
		}
		if input.SensitiveDataTypes != nil {
			vendor.SensitiveDataTypes = input.SensitiveDataTypes
		}
		if input.UsesSubcontractors != nil {
			vendor.UsesSubcontractors = *input.UsesSubcontractors
		}
		if input.ContractValue != nil {
			vendor.ContractValue = *input.ContractValue
		}
		if input.GeographicFootprint != nil {
			vendor.GeographicFootprint = input.GeographicFootprint
		}

		// Inherent risk tracks the profile; residual risk is only moved
		// by assessments and reassessment workflows.
		vendor.InherentRiskScore = model.CalculateInherentRiskScore(
			vendor.Tier, len(vendor.SensitiveDataTypes), vendor.UsesSubcontractors)

		updated, err = uc.repo.Vendor().Update(ctx, orgID, vendor)
		if err != nil {
			return goerr.Wrap(err, "failed to update vendor")
		}
		return appendAudit(ctx, uc.repo, orgID, model.AuditVendorUpdated, "vendor",
			fmt.Sprintf("%d", id), nil, now)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ChangeStatus applies the administrative lifecycle transitions that do
// not require an approval workflow: APPROVED→ACTIVE on activation and
// ACTIVE↔SUSPENDED. PROPOSED→APPROVED and →TERMINATED only happen
// through workflows.
func (uc *VendorUseCase) ChangeStatus(ctx context.Context, orgID string, id int64, next types.VendorStatus) (*model.Vendor, error) {
	if err := requirePermission(ctx, types.PermManageVendors); err != nil {
		return nil, err
	}
	if !next.IsValid() {
		return nil, goerr.Wrap(ErrInvalidInput, "invalid vendor status", goerr.V("status", next))
	}

	now := uc.now()
	var updated *model.Vendor
	err := uc.repo.InTx(ctx, func(ctx context.Context) error {
		vendor, err := uc.getInTx(ctx, orgID, id)
		if err != nil {
			return err
		}

		if !allowedStatusChange(vendor.Status, next) {
			return goerr.Wrap(ErrInvalidStatusChange, "vendor status transition not allowed",
				goerr.V("from", vendor.Status), goerr.V("to", next))
		}

		vendor.Status = next
		updated, err = uc.repo.Vendor().Update(ctx, orgID, vendor)
		if err != nil {
			return goerr.Wrap(err, "failed to update vendor status")
		}
		return appendAudit(ctx, uc.repo, orgID, model.AuditVendorUpdated, "vendor",
			fmt.Sprintf("%d", id), map[string]string{"status": next.String()}, now)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func allowedStatusChange(from, to types.VendorStatus) bool {
	switch {
	case from == types.VendorStatusApproved && to == types.VendorStatusActive:
		return true
	case from == types.VendorStatusActive && to == types.VendorStatusSuspended:
		return true
	case from == types.VendorStatusSuspended && to == types.VendorStatusActive:
		return true
	default:
		return false
	}
}

// CompleteAssessment records the outcome of a periodic vendor
// assessment. The residual risk score is derived as 100 minus the
// overall assessment score, and the next review date advances by the
// tier cadence. These are the only residual-score mutation paths besides
// monitoring-triggered reassessment.
func (uc *VendorUseCase) CompleteAssessment(ctx context.Context, orgID string, id int64, overallScore int) (*model.Vendor, error) {
	if overallScore < 0 || overallScore > 100 {
		return nil, goerr.Wrap(ErrInvalidInput, "assessment score must be 0-100", goerr.V("score", overallScore))
	}

	now := uc.now()
	var updated *model.Vendor
	err := uc.repo.InTx(ctx, func(ctx context.Context) error {
		vendor, err := uc.getInTx(ctx, orgID, id)
		if err != nil {
			return err
		}

		vendor.ResidualRiskScore = 100 - overallScore
		vendor.NextReviewDate = model.NextReviewDate(vendor.Tier, now)

		updated, err = uc.repo.Vendor().Update(ctx, orgID, vendor)
		if err != nil {
			return goerr.Wrap(err, "failed to update vendor after assessment")
		}
		return appendAudit(ctx, uc.repo, orgID, model.AuditVendorAssessed, "vendor",
			fmt.Sprintf("%d", id), map[string]string{"score": fmt.Sprintf("%d", overallScore)}, now)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (uc *VendorUseCase) getInTx(ctx context.Context, orgID string, id int64) (*model.Vendor, error) {
	vendor, err := uc.repo.Vendor().Get(ctx, orgID, id)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrVendorNotFound, "vendor not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get vendor")
	}
	return vendor, nil
}
