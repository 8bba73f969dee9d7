package notify

import (
	"context"

	"github.com/trm-lab/argus/pkg/domain/model"
)

// Notifier delivers human-facing notifications for workflow and risk
// events. Delivery is best effort: callers must never fail a transaction
// because a notification could not be sent.
type Notifier interface {
	// ApprovalRequested tells the assigned approver that a step is
	// waiting for their decision.
	ApprovalRequested(ctx context.Context, orgID string, workflow *model.ApprovalWorkflow, step *model.ApprovalStep) error

	// WorkflowCompleted announces a terminal workflow outcome
	WorkflowCompleted(ctx context.Context, orgID string, workflow *model.ApprovalWorkflow) error

	// AppetiteBreached escalates a risk appetite breach
	AppetiteBreached(ctx context.Context, orgID string, breach *model.RiskAppetiteBreach) error
}

// Noop is a Notifier that silently discards everything. Used when no
// Slack token is configured and in tests.
type Noop struct{}

var _ Notifier = &Noop{}

func NewNoop() *Noop { return &Noop{} }

func (n *Noop) ApprovalRequested(ctx context.Context, orgID string, workflow *model.ApprovalWorkflow, step *model.ApprovalStep) error {
	return nil
}

func (n *Noop) WorkflowCompleted(ctx context.Context, orgID string, workflow *model.ApprovalWorkflow) error {
	return nil
}

func (n *Noop) AppetiteBreached(ctx context.Context, orgID string, breach *model.RiskAppetiteBreach) error {
	return nil
}
