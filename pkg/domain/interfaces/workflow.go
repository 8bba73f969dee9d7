package interfaces

import (
	"context"
	"time"

	"github.com/trm-lab/argus/pkg/domain/model"
	"github.com/trm-lab/argus/pkg/domain/types"
)

// WorkflowRepository defines organization-scoped approval workflow data
// access. Create persists the workflow and its full step chain; steps
// are immutable afterwards except for their decision fields.
type WorkflowRepository interface {
	// Create creates a workflow together with its ordered steps
	Create(ctx context.Context, orgID string, w *model.ApprovalWorkflow) (*model.ApprovalWorkflow, error)

	// Get retrieves a workflow with steps ordered by step order
	Get(ctx context.Context, orgID string, id int64) (*model.ApprovalWorkflow, error)

	// Update persists workflow header mutations (status, current step,
	// completion, cancellation fields). Steps are not touched.
	Update(ctx context.Context, orgID string, w *model.ApprovalWorkflow) (*model.ApprovalWorkflow, error)

	// UpdateStep persists the decision fields of a single step
	UpdateStep(ctx context.Context, orgID string, step *model.ApprovalStep) (*model.ApprovalStep, error)

	// ListByVendor retrieves workflows for one vendor, optionally only
	// those in an active (PENDING/IN_PROGRESS) status
	ListByVendor(ctx context.Context, orgID string, vendorID int64, activeOnly bool) ([]*model.ApprovalWorkflow, error)

	// ListByPeriod retrieves workflows initiated inside the given window.
	// Nil bounds are open.
	ListByPeriod(ctx context.Context, orgID string, start, end *time.Time) ([]*model.ApprovalWorkflow, error)

	// ListPendingSteps returns the approver's inbox: undecided steps
	// assigned to the user on active workflows, ordered by RequiredAt
	// ascending (oldest first).
	ListPendingSteps(ctx context.Context, orgID string, userID string) ([]*model.PendingApproval, error)

	// CountActiveByVendorAndType counts active workflows for a
	// vendor+type combination (the one-active-workflow convention check)
	CountActiveByVendorAndType(ctx context.Context, orgID string, vendorID int64, wt types.WorkflowType) (int, error)
}
