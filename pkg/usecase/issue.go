package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/trm-lab/argus/pkg/domain/interfaces"
	"github.com/trm-lab/argus/pkg/domain/model"
	"github.com/trm-lab/argus/pkg/domain/types"
)

// IssueUseCase drives vendor issues through the remediation lifecycle:
// OPEN -> IN_PROGRESS -> PENDING_VALIDATION -> RESOLVED -> CLOSED, with
// RISK_ACCEPTED and ESCALATED as side exits.
type IssueUseCase struct {
	repo interfaces.Repository
	now  func() time.Time
}

// OpenIssueInput describes a newly discovered vendor issue
type OpenIssueInput struct {
	VendorID       int64
	Title          string
	Description    string
	IssueType      types.IssueType
	Severity       types.IssueSeverity
	Priority       types.IssuePriority
	SourceSignalID string
	ReportedBy     string
}

func (uc *IssueUseCase) OpenIssue(ctx context.Context, orgID string, input OpenIssueInput) (*model.VendorIssue, error) {
	if input.Title == "" {
		return nil, goerr.Wrap(ErrInvalidInput, "issue title is required")
	}
	if !input.Severity.IsValid() {
		return nil, goerr.Wrap(ErrInvalidInput, "invalid severity", goerr.V("severity", input.Severity))
	}
	if input.Priority == "" {
		input.Priority = defaultPriority(input.Severity)
	}

	now := uc.now()
	var created *model.VendorIssue
	err := uc.repo.InTx(ctx, func(ctx context.Context) error {
		if _, err := uc.repo.Vendor().Get(ctx, orgID, input.VendorID); err != nil {
			if isNotFound(err) {
				return goerr.Wrap(ErrVendorNotFound, "vendor not found", goerr.V("vendorID", input.VendorID))
			}
			return goerr.Wrap(err, "failed to get vendor")
		}

		issue := &model.VendorIssue{
			VendorID:       input.VendorID,
			Title:          input.Title,
			Description:    input.Description,
			IssueType:      input.IssueType,
			Severity:       input.Severity,
			Status:         types.IssueStatusOpen,
			Priority:       input.Priority,
			SourceSignalID: input.SourceSignalID,
			ReportedBy:     input.ReportedBy,
		}

		var err error
		created, err = uc.repo.Issue().Create(ctx, orgID, issue)
		if err != nil {
			return goerr.Wrap(err, "failed to create issue")
		}
		return appendAudit(ctx, uc.repo, orgID, model.AuditIssueOpened, "issue",
			fmt.Sprintf("%d", created.ID),
			map[string]string{"vendor": fmt.Sprintf("%d", created.VendorID), "severity": created.Severity.String()},
			now)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func defaultPriority(severity types.IssueSeverity) types.IssuePriority {
	switch severity {
	case types.SeverityCritical:
		return types.PriorityUrgent
	case types.SeverityHigh:
		return types.PriorityHigh
	case types.SeverityMedium:
		return types.PriorityMedium
	default:
		return types.PriorityLow
	}
}

func (uc *IssueUseCase) GetIssue(ctx context.Context, orgID string, id int64) (*model.VendorIssue, error) {
	issue, err := uc.repo.Issue().Get(ctx, orgID, id)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrIssueNotFound, "issue not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get issue")
	}
	return issue, nil
}

func (uc *IssueUseCase) ListByVendor(ctx context.Context, orgID string, vendorID int64) ([]*model.VendorIssue, error) {
	issues, err := uc.repo.Issue().ListByVendor(ctx, orgID, vendorID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list issues")
	}
	return issues, nil
}

// UpdateCorrectiveActionPlan records (or replaces) the CAP and forces the
// issue to IN_PROGRESS regardless of its previous state. Last write wins;
// re-submitting a plan is a supported re-entry path.
func (uc *IssueUseCase) UpdateCorrectiveActionPlan(ctx context.Context, orgID string, issueID int64, plan string, targetDate time.Time) (*model.VendorIssue, error) {
	if plan == "" {
		return nil, goerr.Wrap(ErrInvalidInput, "corrective action plan is required")
	}

	return uc.mutate(ctx, orgID, issueID, model.AuditIssueUpdated, func(issue *model.VendorIssue) error {
		issue.CorrectiveActionPlan = plan
		issue.TargetRemediationDate = &targetDate
		issue.Status = types.IssueStatusInProgress
		return nil
	})
}

// SubmitRemediation records remediation evidence and moves the issue to
// PENDING_VALIDATION.
func (uc *IssueUseCase) SubmitRemediation(ctx context.Context, orgID string, issueID int64, evidenceURL string, remediatedAt time.Time) (*model.VendorIssue, error) {
	return uc.mutate(ctx, orgID, issueID, model.AuditIssueUpdated, func(issue *model.VendorIssue) error {
		if issue.Status.IsTerminal() {
			return goerr.Wrap(ErrIssueCompleted, "issue no longer accepts remediation",
				goerr.V("id", issueID), goerr.V("status", issue.Status))
		}
		issue.RemediationEvidenceURL = evidenceURL
		issue.ActualRemediationDate = &remediatedAt
		issue.Status = types.IssueStatusPendingValidation
		return nil
	})
}

// ValidateRemediation resolves the issue when approved; a rejected
// validation sends it back to IN_PROGRESS, not OPEN, since the plan exists.
func (uc *IssueUseCase) ValidateRemediation(ctx context.Context, orgID string, issueID int64, approved bool, validatedBy string) (*model.VendorIssue, error) {
	if err := requirePermission(ctx, types.PermValidateIssues); err != nil {
		return nil, err
	}

	now := uc.now()
	return uc.mutate(ctx, orgID, issueID, model.AuditIssueUpdated, func(issue *model.VendorIssue) error {
		if issue.Status != types.IssueStatusPendingValidation {
			return goerr.Wrap(ErrValidationNotRequested, "issue is not awaiting validation",
				goerr.V("id", issueID), goerr.V("status", issue.Status))
		}
		issue.ValidatedBy = validatedBy
		issue.ValidatedAt = &now
		if approved {
			issue.Status = types.IssueStatusResolved
		} else {
			issue.Status = types.IssueStatusInProgress
		}
		return nil
	})
}

// AcceptRisk closes the issue by accepting the residual risk, bypassing
// remediation. Terminal.
func (uc *IssueUseCase) AcceptRisk(ctx context.Context, orgID string, issueID int64, rationale string) (*model.VendorIssue, error) {
	if err := requirePermission(ctx, types.PermAcceptRisk); err != nil {
		return nil, err
	}

	return uc.mutate(ctx, orgID, issueID, model.AuditIssueUpdated, func(issue *model.VendorIssue) error {
		if issue.Status.IsTerminal() {
			return goerr.Wrap(ErrIssueCompleted, "issue already completed",
				goerr.V("id", issueID), goerr.V("status", issue.Status))
		}
		issue.Status = types.IssueStatusRiskAccepted
		issue.ClosureNotes = rationale
		return nil
	})
}

// CloseIssue is the explicit terminal close, independent of how the
// issue was resolved.
func (uc *IssueUseCase) CloseIssue(ctx context.Context, orgID string, issueID int64, notes string) (*model.VendorIssue, error) {
	return uc.mutate(ctx, orgID, issueID, model.AuditIssueUpdated, func(issue *model.VendorIssue) error {
		if issue.Status.IsTerminal() {
			return goerr.Wrap(ErrIssueCompleted, "issue already completed",
				goerr.V("id", issueID), goerr.V("status", issue.Status))
		}
		issue.Status = types.IssueStatusClosed
		issue.ClosureNotes = notes
		return nil
	})
}

// EscalateIssue bumps the priority to URGENT and flags the issue as
// ESCALATED. No status floor is applied beyond that.
func (uc *IssueUseCase) EscalateIssue(ctx context.Context, orgID string, issueID int64, escalatedBy string) (*model.VendorIssue, error) {
	return uc.mutate(ctx, orgID, issueID, model.AuditIssueUpdated, func(issue *model.VendorIssue) error {
		if issue.Status.IsTerminal() {
			return goerr.Wrap(ErrIssueCompleted, "issue already completed",
				goerr.V("id", issueID), goerr.V("status", issue.Status))
		}
		issue.Status = types.IssueStatusEscalated
		issue.Priority = types.PriorityUrgent
		issue.EscalatedBy = escalatedBy
		return nil
	})
}

// ListOverdue returns remediable issues past their target remediation date
func (uc *IssueUseCase) ListOverdue(ctx context.Context, orgID string) ([]*model.VendorIssue, error) {
	issues, err := uc.repo.Issue().ListOverdue(ctx, orgID, uc.now())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list overdue issues")
	}
	return issues, nil
}

// mutate runs one read-validate-write cycle on an issue inside a
// transaction and appends the audit entry.
func (uc *IssueUseCase) mutate(ctx context.Context, orgID string, issueID int64, action string, fn func(*model.VendorIssue) error) (*model.VendorIssue, error) {
	now := uc.now()
	var updated *model.VendorIssue
	err := uc.repo.InTx(ctx, func(ctx context.Context) error {
		issue, err := uc.repo.Issue().Get(ctx, orgID, issueID)
		if err != nil {
			if isNotFound(err) {
				return goerr.Wrap(ErrIssueNotFound, "issue not found", goerr.V("id", issueID))
			}
			return goerr.Wrap(err, "failed to get issue")
		}

		if err := fn(issue); err != nil {
			return err
		}

		updated, err = uc.repo.Issue().Update(ctx, orgID, issue)
		if err != nil {
			return goerr.Wrap(err, "failed to update issue")
		}
		return appendAudit(ctx, uc.repo, orgID, action, "issue",
			fmt.Sprintf("%d", issueID), map[string]string{"status": updated.Status.String()}, now)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// countUnresolved counts issues that block vendor offboarding
func (uc *IssueUseCase) countUnresolved(ctx context.Context, orgID string, vendorID int64) (int, error) {
	issues, err := uc.repo.Issue().ListByVendor(ctx, orgID, vendorID)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to list issues")
	}

	var open int
	for _, issue := range issues {
		switch issue.Status {
		case types.IssueStatusOpen,
			types.IssueStatusInProgress,
			types.IssueStatusPendingValidation,
			types.IssueStatusEscalated:
			open++
		}
	}
	return open, nil
}
