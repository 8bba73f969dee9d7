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

type workflowRepository struct {
	db *gorm.DB
}

var _ interfaces.WorkflowRepository = &workflowRepository{}

var activeStatuses = []string{
	types.WorkflowStatusPending.String(),
	types.WorkflowStatusInProgress.String(),
}

func (r *workflowRepository) Create(ctx context.Context, orgID string, w *model.ApprovalWorkflow) (*model.ApprovalWorkflow, error) {
	db := conn(ctx, r.db)
	now := time.Now().UTC()

	rec := toWorkflowRecord(orgID, w)
	rec.ID = 0
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if err := db.Create(rec).Error; err != nil {
		return nil, normalize(err, "failed to create workflow", goerr.V("vendorID", w.VendorID))
	}

	stepRecs := make([]*stepRecord, 0, len(w.Steps))
	for _, s := range w.Steps {
		sr := toStepRecord(orgID, s)
		sr.ID = 0
		sr.WorkflowID = rec.ID
		sr.CreatedAt = now
		sr.UpdatedAt = now
		stepRecs = append(stepRecs, sr)
	}
	if len(stepRecs) > 0 {
		if err := db.Create(&stepRecs).Error; err != nil {
			return nil, normalize(err, "failed to create workflow steps", goerr.V("workflowID", rec.ID))
		}
	}

	created := rec.toModel()
	created.Steps = make([]*model.ApprovalStep, 0, len(stepRecs))
	for _, sr := range stepRecs {
		created.Steps = append(created.Steps, sr.toModel())
	}
	return created, nil
}

func (r *workflowRepository) Get(ctx context.Context, orgID string, id int64) (*model.ApprovalWorkflow, error) {
	db := conn(ctx, r.db)

	var rec workflowRecord
	err := db.Where("org_id = ? AND id = ?", orgID, id).First(&rec).Error
	if err != nil {
		return nil, normalize(err, "failed to get workflow", goerr.V("id", id))
	}

	w := rec.toModel()
	steps, err := r.stepsOf(db, orgID, id)
	if err != nil {
		return nil, err
	}
	w.Steps = steps
	return w, nil
}

func (r *workflowRepository) stepsOf(db *gorm.DB, orgID string, workflowID int64) ([]*model.ApprovalStep, error) {
	var recs []stepRecord
	err := db.
		Where("org_id = ? AND workflow_id = ?", orgID, workflowID).
		Order("step_order ASC").
		Find(&recs).Error
	if err != nil {
		return nil, normalize(err, "failed to list workflow steps", goerr.V("workflowID", workflowID))
	}
	steps := make([]*model.ApprovalStep, 0, len(recs))
	for i := range recs {
		steps = append(steps, recs[i].toModel())
	}
	return steps, nil
}

func (r *workflowRepository) Update(ctx context.Context, orgID string, w *model.ApprovalWorkflow) (*model.ApprovalWorkflow, error) {
	db := conn(ctx, r.db)

	var existing workflowRecord
	err := db.Where("org_id = ? AND id = ?", orgID, w.ID).First(&existing).Error
	if err != nil {
		return nil, normalize(err, "failed to get workflow for update", goerr.V("id", w.ID))
	}

	rec := toWorkflowRecord(orgID, w)
	rec.CreatedAt = existing.CreatedAt
	rec.UpdatedAt = time.Now().UTC()
	if err := db.Save(rec).Error; err != nil {
		return nil, normalize(err, "failed to update workflow", goerr.V("id", w.ID))
	}

	updated := rec.toModel()
	steps, err := r.stepsOf(db, orgID, w.ID)
	if err != nil {
		return nil, err
	}
	updated.Steps = steps
	return updated, nil
}

func (r *workflowRepository) UpdateStep(ctx context.Context, orgID string, step *model.ApprovalStep) (*model.ApprovalStep, error) {
	db := conn(ctx, r.db)

	var existing stepRecord
	err := db.Where("org_id = ? AND id = ?", orgID, step.ID).First(&existing).Error
	if err != nil {
		return nil, normalize(err, "failed to get step for update", goerr.V("stepID", step.ID))
	}

	rec := toStepRecord(orgID, step)
	rec.CreatedAt = existing.CreatedAt
	rec.UpdatedAt = time.Now().UTC()
	if err := db.Save(rec).Error; err != nil {
		return nil, normalize(err, "failed to update step", goerr.V("stepID", step.ID))
	}
	return rec.toModel(), nil
}

func (r *workflowRepository) ListByVendor(ctx context.Context, orgID string, vendorID int64, activeOnly bool) ([]*model.ApprovalWorkflow, error) {
	db := conn(ctx, r.db)

	q := db.Where("org_id = ? AND vendor_id = ?", orgID, vendorID)
	if activeOnly {
		q = q.Where("status IN ?", activeStatuses)
	}

	var recs []workflowRecord
	if err := q.Order("initiated_at DESC").Find(&recs).Error; err != nil {
		return nil, normalize(err, "failed to list workflows", goerr.V("vendorID", vendorID))
	}

	workflows := make([]*model.ApprovalWorkflow, 0, len(recs))
	for i := range recs {
		w := recs[i].toModel()
		steps, err := r.stepsOf(db, orgID, w.ID)
		if err != nil {
			return nil, err
		}
		w.Steps = steps
		workflows = append(workflows, w)
	}
	return workflows, nil
}

func (r *workflowRepository) ListByPeriod(ctx context.Context, orgID string, start, end *time.Time) ([]*model.ApprovalWorkflow, error) {
	db := conn(ctx, r.db)

	q := db.Where("org_id = ?", orgID)
	if start != nil {
		q = q.Where("initiated_at >= ?", *start)
	}
	if end != nil {
		q = q.Where("initiated_at < ?", *end)
	}

	var recs []workflowRecord
	if err := q.Order("initiated_at DESC").Find(&recs).Error; err != nil {
		return nil, normalize(err, "failed to list workflows by period")
	}

	workflows := make([]*model.ApprovalWorkflow, 0, len(recs))
	for i := range recs {
		w := recs[i].toModel()
		steps, err := r.stepsOf(db, orgID, w.ID)
		if err != nil {
			return nil, err
		}
		w.Steps = steps
		workflows = append(workflows, w)
	}
	return workflows, nil
}

func (r *workflowRepository) ListPendingSteps(ctx context.Context, orgID string, userID string) ([]*model.PendingApproval, error) {
	db := conn(ctx, r.db)

	var recs []stepRecord
	err := db.
		Where("org_id = ? AND approver_user_id = ? AND decision IS NULL", orgID, userID).
		Order("required_at ASC").
		Find(&recs).Error
	if err != nil {
		return nil, normalize(err, "failed to list pending steps", goerr.V("userID", userID))
	}

	result := make([]*model.PendingApproval, 0, len(recs))
	for i := range recs {
		var wrec workflowRecord
		err := db.
			Where("org_id = ? AND id = ? AND status IN ?", orgID, recs[i].WorkflowID, activeStatuses).
			First(&wrec).Error
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, normalize(err, "failed to get workflow for pending step", goerr.V("workflowID", recs[i].WorkflowID))
		}
		result = append(result, &model.PendingApproval{
			Workflow: wrec.toModel(),
			Step:     recs[i].toModel(),
		})
	}
	return result, nil
}

func (r *workflowRepository) CountActiveByVendorAndType(ctx context.Context, orgID string, vendorID int64, wt types.WorkflowType) (int, error) {
	var count int64
	err := conn(ctx, r.db).
		Model(&workflowRecord{}).
		Where("org_id = ? AND vendor_id = ? AND workflow_type = ? AND status IN ?",
			orgID, vendorID, wt.String(), activeStatuses).
		Count(&count).Error
	if err != nil {
		return 0, normalize(err, "failed to count active workflows", goerr.V("vendorID", vendorID))
	}
	return int(count), nil
}
