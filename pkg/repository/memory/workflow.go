package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/trm-lab/argus/pkg/domain/interfaces"
	"github.com/trm-lab/argus/pkg/domain/model"
	"github.com/trm-lab/argus/pkg/domain/types"
)

type workflowRepository struct {
	mu         sync.RWMutex
	workflows  map[string]map[int64]*model.ApprovalWorkflow
	nextID     map[string]int64
	nextStepID map[string]int64
}

func newWorkflowRepository() *workflowRepository {
	return &workflowRepository{
		workflows:  make(map[string]map[int64]*model.ApprovalWorkflow),
		nextID:     make(map[string]int64),
		nextStepID: make(map[string]int64),
	}
}

func (r *workflowRepository) ensureOrg(orgID string) {
	if _, exists := r.workflows[orgID]; !exists {
		r.workflows[orgID] = make(map[int64]*model.ApprovalWorkflow)
	}
	if _, exists := r.nextID[orgID]; !exists {
		r.nextID[orgID] = 1
	}
	if _, exists := r.nextStepID[orgID]; !exists {
		r.nextStepID[orgID] = 1
	}
}

func copyStep(s *model.ApprovalStep) *model.ApprovalStep {
	copied := *s
	copied.Conditions = append([]string(nil), s.Conditions...)
	copied.DecidedAt = copyTime(s.DecidedAt)
	if s.Decision != nil {
		d := *s.Decision
		copied.Decision = &d
	}
	return &copied
}

func copyWorkflow(w *model.ApprovalWorkflow) *model.ApprovalWorkflow {
	copied := *w
	copied.CompletedAt = copyTime(w.CompletedAt)
	copied.Steps = make([]*model.ApprovalStep, len(w.Steps))
	for i, s := range w.Steps {
		copied.Steps[i] = copyStep(s)
	}
	return &copied
}

func (r *workflowRepository) Create(ctx context.Context, orgID string, w *model.ApprovalWorkflow) (*model.ApprovalWorkflow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ensureOrg(orgID)

	now := time.Now().UTC()
	created := copyWorkflow(w)
	created.ID = r.nextID[orgID]
	created.CreatedAt = now
	created.UpdatedAt = now
	r.nextID[orgID]++

	for _, step := range created.Steps {
		step.ID = r.nextStepID[orgID]
		step.WorkflowID = created.ID
		step.CreatedAt = now
		step.UpdatedAt = now
		r.nextStepID[orgID]++
	}
	sortSteps(created.Steps)

	r.workflows[orgID][created.ID] = created
	return copyWorkflow(created), nil
}

func sortSteps(steps []*model.ApprovalStep) {
	sort.Slice(steps, func(i, j int) bool {
		return steps[i].StepOrder < steps[j].StepOrder
	})
}

func (r *workflowRepository) Get(ctx context.Context, orgID string, id int64) (*model.ApprovalWorkflow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, err := r.get(orgID, id)
	if err != nil {
		return nil, err
	}
	return copyWorkflow(w), nil
}

func (r *workflowRepository) get(orgID string, id int64) (*model.ApprovalWorkflow, error) {
	org, exists := r.workflows[orgID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "workflow not found", goerr.V("id", id))
	}

	w, exists := org[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "workflow not found", goerr.V("id", id))
	}
	return w, nil
}

func (r *workflowRepository) Update(ctx context.Context, orgID string, w *model.ApprovalWorkflow) (*model.ApprovalWorkflow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.get(orgID, w.ID)
	if err != nil {
		return nil, err
	}

	existing.Status = w.Status
	existing.CurrentStep = w.CurrentStep
	existing.CompletedAt = copyTime(w.CompletedAt)
	existing.CancelledBy = w.CancelledBy
	existing.CancelReason = w.CancelReason
	existing.UpdatedAt = time.Now().UTC()

	return copyWorkflow(existing), nil
}

func (r *workflowRepository) UpdateStep(ctx context.Context, orgID string, step *model.ApprovalStep) (*model.ApprovalStep, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, err := r.get(orgID, step.WorkflowID)
	if err != nil {
		return nil, err
	}

	for i, s := range w.Steps {
		if s.StepOrder == step.StepOrder {
			updated := copyStep(step)
			updated.ID = s.ID
			updated.CreatedAt = s.CreatedAt
			updated.UpdatedAt = time.Now().UTC()
			w.Steps[i] = updated
			return copyStep(updated), nil
		}
	}

	return nil, goerr.Wrap(ErrNotFound, "step not found",
		goerr.V("workflow_id", step.WorkflowID),
		goerr.V("step_order", step.StepOrder))
}

func (r *workflowRepository) ListByVendor(ctx context.Context, orgID string, vendorID int64, activeOnly bool) ([]*model.ApprovalWorkflow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	org, exists := r.workflows[orgID]
	if !exists {
		return []*model.ApprovalWorkflow{}, nil
	}

	result := make([]*model.ApprovalWorkflow, 0)
	for _, w := range org {
		if w.VendorID != vendorID {
			continue
		}
		if activeOnly && !w.Status.IsActive() {
			continue
		}
		result = append(result, copyWorkflow(w))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result, nil
}

func (r *workflowRepository) ListByPeriod(ctx context.Context, orgID string, start, end *time.Time) ([]*model.ApprovalWorkflow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	org, exists := r.workflows[orgID]
	if !exists {
		return []*model.ApprovalWorkflow{}, nil
	}

	result := make([]*model.ApprovalWorkflow, 0)
	for _, w := range org {
		if start != nil && w.InitiatedAt.Before(*start) {
			continue
		}
		if end != nil && w.InitiatedAt.After(*end) {
			continue
		}
		result = append(result, copyWorkflow(w))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result, nil
}

func (r *workflowRepository) ListPendingSteps(ctx context.Context, orgID string, userID string) ([]*model.PendingApproval, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	org, exists := r.workflows[orgID]
	if !exists {
		return []*model.PendingApproval{}, nil
	}

	result := make([]*model.PendingApproval, 0)
	for _, w := range org {
		if !w.Status.IsActive() {
			continue
		}
		for _, s := range w.Steps {
			if s.ApproverUserID != userID || s.IsDecided() {
				continue
			}
			result = append(result, &model.PendingApproval{
				Workflow: copyWorkflow(w),
				Step:     copyStep(s),
			})
		}
	}

	// Inbox ordering contract: oldest deadline first
	sort.Slice(result, func(i, j int) bool {
		return result[i].Step.RequiredAt.Before(result[j].Step.RequiredAt)
	})

	return result, nil
}

func (r *workflowRepository) CountActiveByVendorAndType(ctx context.Context, orgID string, vendorID int64, wt types.WorkflowType) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	org, exists := r.workflows[orgID]
	if !exists {
		return 0, nil
	}

	count := 0
	for _, w := range org {
		if w.VendorID == vendorID && w.WorkflowType == wt && w.Status.IsActive() {
			count++
		}
	}
	return count, nil
}

var _ interfaces.WorkflowRepository = &workflowRepository{}
