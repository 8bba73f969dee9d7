package gormdb

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/trm-lab/argus/pkg/domain/interfaces"
	"github.com/trm-lab/argus/pkg/domain/model"
	"github.com/trm-lab/argus/pkg/domain/types"
	"gorm.io/gorm"
)

type issueRepository struct {
	db *gorm.DB
}

var _ interfaces.IssueRepository = &issueRepository{}

func (r *issueRepository) Create(ctx context.Context, orgID string, issue *model.VendorIssue) (*model.VendorIssue, error) {
	rec := toIssueRecord(orgID, issue)
	rec.ID = 0
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	if err := conn(ctx, r.db).Create(rec).Error; err != nil {
		return nil, normalize(err, "failed to create issue", goerr.V("vendorID", issue.VendorID))
	}
	return rec.toModel(), nil
}

func (r *issueRepository) Get(ctx context.Context, orgID string, id int64) (*model.VendorIssue, error) {
	var rec issueRecord
	err := conn(ctx, r.db).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&rec).Error
	if err != nil {
		return nil, normalize(err, "failed to get issue", goerr.V("id", id))
	}
	return rec.toModel(), nil
}

func (r *issueRepository) Update(ctx context.Context, orgID string, issue *model.VendorIssue) (*model.VendorIssue, error) {
	var existing issueRecord
	err := conn(ctx, r.db).
		Where("org_id = ? AND id = ?", orgID, issue.ID).
		First(&existing).Error
	if err != nil {
		return nil, normalize(err, "failed to get issue for update", goerr.V("id", issue.ID))
	}

	rec := toIssueRecord(orgID, issue)
	rec.CreatedAt = existing.CreatedAt
	rec.UpdatedAt = time.Now().UTC()

	if err := conn(ctx, r.db).Save(rec).Error; err != nil {
		return nil, normalize(err, "failed to update issue", goerr.V("id", issue.ID))
	}
	return rec.toModel(), nil
}

func (r *issueRepository) ListByVendor(ctx context.Context, orgID string, vendorID int64) ([]*model.VendorIssue, error) {
	var recs []issueRecord
	err := conn(ctx, r.db).
		Where("org_id = ? AND vendor_id = ?", orgID, vendorID).
		Order("created_at DESC").
		Find(&recs).Error
	if err != nil {
		return nil, normalize(err, "failed to list issues", goerr.V("vendorID", vendorID))
	}

	issues := make([]*model.VendorIssue, 0, len(recs))
	for i := range recs {
		issues = append(issues, recs[i].toModel())
	}
	return issues, nil
}

func (r *issueRepository) ListByStatus(ctx context.Context, orgID string, statuses ...types.IssueStatus) ([]*model.VendorIssue, error) {
	values := make([]string, 0, len(statuses))
	for _, s := range statuses {
		values = append(values, s.String())
	}

	var recs []issueRecord
	err := conn(ctx, r.db).
		Where("org_id = ? AND status IN ?", orgID, values).
		Order("created_at DESC").
		Find(&recs).Error
	if err != nil {
		return nil, normalize(err, "failed to list issues by status")
	}

	issues := make([]*model.VendorIssue, 0, len(recs))
	for i := range recs {
		issues = append(issues, recs[i].toModel())
	}
	return issues, nil
}

func (r *issueRepository) ListOverdue(ctx context.Context, orgID string, now time.Time) ([]*model.VendorIssue, error) {
	remediable := []string{
		types.IssueStatusOpen.String(),
		types.IssueStatusInProgress.String(),
	}

	var recs []issueRecord
	err := conn(ctx, r.db).
		Where("org_id = ? AND status IN ? AND target_remediation_date IS NOT NULL AND target_remediation_date < ?",
			orgID, remediable, now).
		Order("target_remediation_date ASC").
		Find(&recs).Error
	if err != nil {
		return nil, normalize(err, "failed to list overdue issues")
	}

	issues := make([]*model.VendorIssue, 0, len(recs))
	for i := range recs {
		issues = append(issues, recs[i].toModel())
	}
	return issues, nil
}
