package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/trm-lab/argus/pkg/domain/interfaces"
	"github.com/trm-lab/argus/pkg/domain/model"
	"github.com/trm-lab/argus/pkg/domain/model/config"
	"github.com/trm-lab/argus/pkg/domain/types"
	"github.com/trm-lab/argus/pkg/service/notify"
	"github.com/trm-lab/argus/pkg/utils/async"
)

// stepLeadTime spaces the expected decision date of consecutive steps
const stepLeadTime = 72 * time.Hour

// ApprovalUseCase is the approval workflow engine: it orchestrates
// multi-step approval chains over vendor actions and applies the
// terminal side effects to the vendor registry.
type ApprovalUseCase struct {
	repo     interfaces.Repository
	notifier notify.Notifier
	issues   *IssueUseCase
	now      func() time.Time
}

// CreateWorkflowInput describes a new approval chain over one vendor
type CreateWorkflowInput struct {
	VendorID              int64
	WorkflowType          types.WorkflowType
	InitiatedBy           string
	BusinessJustification string
	RiskAssessmentSummary string
	Chain                 []config.ChainStep
}

// DecisionInput carries one approver's decision on a step
type DecisionInput struct {
	Decision         types.Decision
	DecidedBy        string
	Comments         string
	Conditions       []string
	DigitalSignature string
	IPAddress        string
	UserAgent        string
}

// CreateWorkflow creates a workflow in PENDING state with its full step
// chain in one transaction. An active workflow of the same type for the
// same vendor is rejected, and a TERMINATION workflow cannot start while
// the vendor still has unresolved issues.
func (uc *ApprovalUseCase) CreateWorkflow(ctx context.Context, orgID string, input CreateWorkflowInput) (*model.ApprovalWorkflow, error) {
	if !input.WorkflowType.IsValid() {
		return nil, goerr.Wrap(ErrInvalidInput, "invalid workflow type", goerr.V("type", input.WorkflowType))
	}
	if len(input.Chain) == 0 {
		return nil, goerr.Wrap(ErrEmptyApprovalChain, "approval chain is empty")
	}
	for i, s := range input.Chain {
		if _, err := types.ParseRole(s.ApproverRole); err != nil {
			return nil, goerr.Wrap(ErrInvalidInput, "invalid approver role",
				goerr.V("step", i+1), goerr.V("role", s.ApproverRole))
		}
	}

	now := uc.now()
	var created *model.ApprovalWorkflow
	err := uc.repo.InTx(ctx, func(ctx context.Context) error {
		if _, err := uc.repo.Vendor().Get(ctx, orgID, input.VendorID); err != nil {
			if isNotFound(err) {
				return goerr.Wrap(ErrVendorNotFound, "vendor not found", goerr.V("vendorID", input.VendorID))
			}
			return goerr.Wrap(err, "failed to get vendor")
		}

		active, err := uc.repo.Workflow().CountActiveByVendorAndType(ctx, orgID, input.VendorID, input.WorkflowType)
		if err != nil {
			return goerr.Wrap(err, "failed to count active workflows")
		}
		if active > 0 {
			return goerr.Wrap(ErrWorkflowAlreadyActive, "active workflow exists",
				goerr.V("vendorID", input.VendorID), goerr.V("type", input.WorkflowType))
		}

		if input.WorkflowType == types.WorkflowTermination {
			open, err := uc.issues.countUnresolved(ctx, orgID, input.VendorID)
			if err != nil {
				return err
			}
			if open > 0 {
				return goerr.Wrap(ErrOpenIssuesRemain, "vendor has unresolved issues",
					goerr.V("vendorID", input.VendorID), goerr.V("count", open))
			}
		}

		workflow := &model.ApprovalWorkflow{
			VendorID:              input.VendorID,
			WorkflowType:          input.WorkflowType,
			Status:                types.WorkflowStatusPending,
			CurrentStep:           1,
			InitiatedBy:           input.InitiatedBy,
			BusinessJustification: input.BusinessJustification,
			RiskAssessmentSummary: input.RiskAssessmentSummary,
			InitiatedAt:           now,
		}
		for i, s := range input.Chain {
			workflow.Steps = append(workflow.Steps, &model.ApprovalStep{
				StepOrder:      i + 1,
				ApproverRole:   types.Role(s.ApproverRole),
				ApproverUserID: s.ApproverUserID,
				ApproverName:   s.ApproverName,
				RequiredAt:     now.Add(time.Duration(i+1) * stepLeadTime),
			})
		}

		created, err = uc.repo.Workflow().Create(ctx, orgID, workflow)
		if err != nil {
			return goerr.Wrap(err, "failed to create workflow")
		}
		return appendAudit(ctx, uc.repo, orgID, model.AuditWorkflowCreated, "workflow",
			fmt.Sprintf("%d", created.ID),
			map[string]string{"type": created.WorkflowType.String(), "vendor": fmt.Sprintf("%d", created.VendorID)},
			now)
	})
	if err != nil {
		return nil, err
	}

	if first := created.StepByOrder(1); first != nil {
		async.Dispatch(ctx, func(ctx context.Context) error {
			return uc.notifier.ApprovalRequested(ctx, orgID, created, first)
		})
	}
	return created, nil
}

func (uc *ApprovalUseCase) GetWorkflow(ctx context.Context, orgID string, id int64) (*model.ApprovalWorkflow, error) {
	workflow, err := uc.repo.Workflow().Get(ctx, orgID, id)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrWorkflowNotFound, "workflow not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get workflow")
	}
	return workflow, nil
}

// SubmitDecision applies one approver decision. The read, the validation
// and every resulting write (step decision, workflow transition, vendor
// mutation on terminal approval, audit entry) form a single transaction,
// so two concurrent decisions on one workflow can never both apply.
//
// Transition table:
//
//	REJECTED                  -> workflow REJECTED (terminal), pointer unchanged
//	ESCALATED                 -> workflow ESCALATED, pointer unchanged
//	APPROVED/COND., last step -> workflow APPROVED (terminal)
//	APPROVED/COND., earlier   -> workflow IN_PROGRESS, pointer advances
//	DEFERRED                  -> decision recorded, workflow untouched
func (uc *ApprovalUseCase) SubmitDecision(ctx context.Context, orgID string, workflowID int64, stepOrder int, input DecisionInput) (*model.ApprovalWorkflow, error) {
	if !input.Decision.IsValid() {
		return nil, goerr.Wrap(ErrInvalidInput, "invalid decision", goerr.V("decision", input.Decision))
	}

	now := uc.now()
	var updated *model.ApprovalWorkflow
	err := uc.repo.InTx(ctx, func(ctx context.Context) error {
		workflow, err := uc.repo.Workflow().Get(ctx, orgID, workflowID)
		if err != nil {
			if isNotFound(err) {
				return goerr.Wrap(ErrWorkflowNotFound, "workflow not found", goerr.V("id", workflowID))
			}
			return goerr.Wrap(err, "failed to get workflow")
		}

		if workflow.Status.IsTerminal() || workflow.Status == types.WorkflowStatusCancelled {
			return goerr.Wrap(ErrWorkflowCompleted, "workflow no longer accepts decisions",
				goerr.V("id", workflowID), goerr.V("status", workflow.Status))
		}

		step := workflow.StepByOrder(stepOrder)
		if step == nil {
			return goerr.Wrap(ErrStepNotFound, "step not found",
				goerr.V("workflowID", workflowID), goerr.V("stepOrder", stepOrder))
		}
		if step.IsDecided() {
			return goerr.Wrap(ErrStepAlreadyDecided, "step already decided",
				goerr.V("workflowID", workflowID), goerr.V("stepOrder", stepOrder))
		}
		if stepOrder != workflow.CurrentStep {
			return goerr.Wrap(ErrOutOfOrderDecision, "decisions must follow step order",
				goerr.V("stepOrder", stepOrder), goerr.V("currentStep", workflow.CurrentStep))
		}

		decision := input.Decision
		step.Decision = &decision
		step.DecidedBy = input.DecidedBy
		step.DecidedAt = &now
		step.Comments = input.Comments
		step.Conditions = input.Conditions
		step.DigitalSignature = input.DigitalSignature
		step.IPAddress = input.IPAddress
		step.UserAgent = input.UserAgent

		if _, err := uc.repo.Workflow().UpdateStep(ctx, orgID, step); err != nil {
			return goerr.Wrap(err, "failed to persist step decision")
		}

		switch {
		case decision == types.DecisionRejected:
			workflow.Status = types.WorkflowStatusRejected
			workflow.CompletedAt = &now
		case decision == types.DecisionEscalated:
			workflow.Status = types.WorkflowStatusEscalated
		case decision.Advances() && stepOrder == workflow.LastStepOrder():
			workflow.Status = types.WorkflowStatusApproved
			workflow.CompletedAt = &now
			if err := uc.handleApprovedWorkflow(ctx, orgID, workflow, now); err != nil {
				return err
			}
		case decision.Advances():
			workflow.Status = types.WorkflowStatusInProgress
			workflow.CurrentStep = stepOrder + 1
		}

		updated, err = uc.repo.Workflow().Update(ctx, orgID, workflow)
		if err != nil {
			return goerr.Wrap(err, "failed to update workflow")
		}
		return appendAudit(ctx, uc.repo, orgID, model.AuditDecisionSubmitted, "workflow",
			fmt.Sprintf("%d", workflowID),
			map[string]string{
				"step":     fmt.Sprintf("%d", stepOrder),
				"decision": decision.String(),
				"status":   updated.Status.String(),
			}, now)
	})
	if err != nil {
		return nil, err
	}

	uc.notifyAfterDecision(ctx, orgID, updated)
	return updated, nil
}

// handleApprovedWorkflow applies the terminal side effect of an approved
// workflow to the vendor, inside the decision transaction. Renewal and
// tier-change approvals are recorded without direct vendor mutation.
func (uc *ApprovalUseCase) handleApprovedWorkflow(ctx context.Context, orgID string, workflow *model.ApprovalWorkflow, now time.Time) error {
	switch workflow.WorkflowType {
	case types.WorkflowOnboarding, types.WorkflowTermination:
	default:
		return nil
	}

	vendor, err := uc.repo.Vendor().Get(ctx, orgID, workflow.VendorID)
	if err != nil {
		if isNotFound(err) {
			return goerr.Wrap(ErrVendorNotFound, "vendor not found", goerr.V("vendorID", workflow.VendorID))
		}
		return goerr.Wrap(err, "failed to get vendor")
	}

	switch workflow.WorkflowType {
	case types.WorkflowOnboarding:
		vendor.Status = types.VendorStatusApproved
		vendor.OnboardedAt = &now
	case types.WorkflowTermination:
		vendor.Status = types.VendorStatusTerminated
		vendor.TerminatedAt = &now
	}

	if _, err := uc.repo.Vendor().Update(ctx, orgID, vendor); err != nil {
		return goerr.Wrap(err, "failed to apply workflow outcome to vendor")
	}
	return nil
}

func (uc *ApprovalUseCase) notifyAfterDecision(ctx context.Context, orgID string, workflow *model.ApprovalWorkflow) {
	switch {
	case workflow.Status.IsTerminal():
		async.Dispatch(ctx, func(ctx context.Context) error {
			return uc.notifier.WorkflowCompleted(ctx, orgID, workflow)
		})
	case workflow.Status == types.WorkflowStatusInProgress:
		if next := workflow.StepByOrder(workflow.CurrentStep); next != nil {
			async.Dispatch(ctx, func(ctx context.Context) error {
				return uc.notifier.ApprovalRequested(ctx, orgID, workflow, next)
			})
		}
	}
}

// CancelWorkflow abandons a non-completed workflow. Restricted to roles
// holding the workflow:cancel capability.
func (uc *ApprovalUseCase) CancelWorkflow(ctx context.Context, orgID string, workflowID int64, cancelledBy, reason string) (*model.ApprovalWorkflow, error) {
	if err := requirePermission(ctx, types.PermCancelWorkflow); err != nil {
		return nil, err
	}

	now := uc.now()
	var updated *model.ApprovalWorkflow
	err := uc.repo.InTx(ctx, func(ctx context.Context) error {
		workflow, err := uc.repo.Workflow().Get(ctx, orgID, workflowID)
		if err != nil {
			if isNotFound(err) {
				return goerr.Wrap(ErrWorkflowNotFound, "workflow not found", goerr.V("id", workflowID))
			}
			return goerr.Wrap(err, "failed to get workflow")
		}

		if workflow.Status.IsTerminal() {
			return goerr.Wrap(ErrCannotCancelCompleted, "workflow already completed",
				goerr.V("id", workflowID), goerr.V("status", workflow.Status))
		}

		workflow.Status = types.WorkflowStatusCancelled
		workflow.CancelledBy = cancelledBy
		workflow.CancelReason = reason
		workflow.CompletedAt = &now

		updated, err = uc.repo.Workflow().Update(ctx, orgID, workflow)
		if err != nil {
			return goerr.Wrap(err, "failed to cancel workflow")
		}
		return appendAudit(ctx, uc.repo, orgID, model.AuditWorkflowCancelled, "workflow",
			fmt.Sprintf("%d", workflowID), map[string]string{"reason": reason}, now)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ListPendingApprovals returns the caller's approval inbox, oldest
// expected decision first.
func (uc *ApprovalUseCase) ListPendingApprovals(ctx context.Context, orgID, userID string) ([]*model.PendingApproval, error) {
	pending, err := uc.repo.Workflow().ListPendingSteps(ctx, orgID, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list pending approvals")
	}
	return pending, nil
}

// Statistics aggregates workflow outcomes over an optional period
func (uc *ApprovalUseCase) Statistics(ctx context.Context, orgID string, start, end *time.Time) (*model.WorkflowStatistics, error) {
	workflows, err := uc.repo.Workflow().ListByPeriod(ctx, orgID, start, end)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list workflows")
	}

	stats := &model.WorkflowStatistics{
		Total:    len(workflows),
		ByStatus: make(map[types.WorkflowStatus]int),
	}

	var completed int
	var totalDuration time.Duration
	for _, w := range workflows {
		stats.ByStatus[w.Status]++
		if w.CompletedAt != nil {
			completed++
			totalDuration += w.CompletedAt.Sub(w.InitiatedAt)
		}
	}

	if stats.Total > 0 {
		stats.ApprovalRate = float64(stats.ByStatus[types.WorkflowStatusApproved]) / float64(stats.Total) * 100
		stats.RejectionRate = float64(stats.ByStatus[types.WorkflowStatusRejected]) / float64(stats.Total) * 100
	}
	if completed > 0 {
		stats.AverageApprovalTimeDays = totalDuration.Hours() / 24 / float64(completed)
	}

	return stats, nil
}
