package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/trm-lab/argus/pkg/domain/model"
	"github.com/trm-lab/argus/pkg/domain/model/auth"
	"github.com/trm-lab/argus/pkg/domain/types"
	"github.com/trm-lab/argus/pkg/usecase"
)

func TestIssueUseCase_OpenIssue(t *testing.T) {
	t.Run("priority defaults from severity", func(t *testing.T) {
		cases := []struct {
			severity types.IssueSeverity
			priority types.IssuePriority
		}{
			{types.SeverityCritical, types.PriorityUrgent},
			{types.SeverityHigh, types.PriorityHigh},
			{types.SeverityMedium, types.PriorityMedium},
			{types.SeverityLow, types.PriorityLow},
		}

		uc, repo := newTestUseCases()
		ctx := context.Background()

		vendor, err := seedVendor(ctx, repo, nil)
		gt.NoError(t, err).Required()

		for _, tc := range cases {
			issue, err := uc.Issue.OpenIssue(ctx, testOrgID, usecase.OpenIssueInput{
				VendorID: vendor.ID,
				Title:    "finding",
				Severity: tc.severity,
			})
			gt.NoError(t, err).Required()
			gt.Value(t, issue.Status).Equal(types.IssueStatusOpen)
			gt.Value(t, issue.Priority).Equal(tc.priority)
		}
	})

	t.Run("explicit priority wins", func(t *testing.T) {
		uc, repo := newTestUseCases()
		ctx := context.Background()

		vendor, err := seedVendor(ctx, repo, nil)
		gt.NoError(t, err).Required()

		issue, err := uc.Issue.OpenIssue(ctx, testOrgID, usecase.OpenIssueInput{
			VendorID: vendor.ID,
			Title:    "finding",
			Severity: types.SeverityLow,
			Priority: types.PriorityUrgent,
		})
		gt.NoError(t, err).Required()
		gt.Value(t, issue.Priority).Equal(types.PriorityUrgent)
	})

	t.Run("title and severity are required", func(t *testing.T) {
		uc, repo := newTestUseCases()
		ctx := context.Background()

		vendor, err := seedVendor(ctx, repo, nil)
		gt.NoError(t, err).Required()

		_, err = uc.Issue.OpenIssue(ctx, testOrgID, usecase.OpenIssueInput{
			VendorID: vendor.ID, Severity: types.SeverityLow,
		})
		gt.Bool(t, errors.Is(err, usecase.ErrInvalidInput)).True()

		_, err = uc.Issue.OpenIssue(ctx, testOrgID, usecase.OpenIssueInput{
			VendorID: vendor.ID, Title: "finding", Severity: "WORRYING",
		})
		gt.Bool(t, errors.Is(err, usecase.ErrInvalidInput)).True()
	})

	t.Run("unknown vendor", func(t *testing.T) {
		uc, _ := newTestUseCases()
		_, err := uc.Issue.OpenIssue(context.Background(), testOrgID, usecase.OpenIssueInput{
			VendorID: 999, Title: "finding", Severity: types.SeverityLow,
		})
		gt.Bool(t, errors.Is(err, usecase.ErrVendorNotFound)).True()
	})
}

func TestIssueUseCase_RemediationLifecycle(t *testing.T) {
	open := func(t *testing.T) (*usecase.UseCases, *model.VendorIssue) {
		t.Helper()
		uc, repo := newTestUseCases()
		ctx := context.Background()

		vendor, err := seedVendor(ctx, repo, nil)
		gt.NoError(t, err).Required()

		issue, err := uc.Issue.OpenIssue(ctx, testOrgID, usecase.OpenIssueInput{
			VendorID: vendor.ID,
			Title:    "Expired SOC 2 report",
			Severity: types.SeverityHigh,
		})
		gt.NoError(t, err).Required()
		return uc, issue
	}

	t.Run("corrective action plan forces in-progress", func(t *testing.T) {
		uc, issue := open(t)
		ctx := context.Background()
		target := testNow.Add(30 * 24 * time.Hour)

		updated, err := uc.Issue.UpdateCorrectiveActionPlan(ctx, testOrgID, issue.ID, "renew audit", target)
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Status).Equal(types.IssueStatusInProgress)
		gt.Value(t, *updated.TargetRemediationDate).Equal(target)

		// Re-submitting replaces the plan, last write wins
		updated, err = uc.Issue.UpdateCorrectiveActionPlan(ctx, testOrgID, issue.ID, "switch auditor", target)
		gt.NoError(t, err).Required()
		gt.Value(t, updated.CorrectiveActionPlan).Equal("switch auditor")

		_, err = uc.Issue.UpdateCorrectiveActionPlan(ctx, testOrgID, issue.ID, "", target)
		gt.Bool(t, errors.Is(err, usecase.ErrInvalidInput)).True()
	})

	t.Run("remediation evidence moves to pending validation", func(t *testing.T) {
		uc, issue := open(t)
		ctx := context.Background()

		updated, err := uc.Issue.SubmitRemediation(ctx, testOrgID, issue.ID, "https://evidence.example/1", testNow)
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Status).Equal(types.IssueStatusPendingValidation)
		gt.Value(t, updated.RemediationEvidenceURL).Equal("https://evidence.example/1")
	})

	t.Run("approved validation resolves", func(t *testing.T) {
		uc, issue := open(t)
		ctx := context.Background()

		_, err := uc.Issue.SubmitRemediation(ctx, testOrgID, issue.ID, "https://evidence.example/1", testNow)
		gt.NoError(t, err).Required()

		updated, err := uc.Issue.ValidateRemediation(ctx, testOrgID, issue.ID, true, "u-risk")
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Status).Equal(types.IssueStatusResolved)
		gt.Value(t, updated.ValidatedBy).Equal("u-risk")
		gt.Value(t, *updated.ValidatedAt).Equal(testNow)
	})

	t.Run("rejected validation goes back to in-progress", func(t *testing.T) {
		uc, issue := open(t)
		ctx := context.Background()

		_, err := uc.Issue.SubmitRemediation(ctx, testOrgID, issue.ID, "https://evidence.example/1", testNow)
		gt.NoError(t, err).Required()

		updated, err := uc.Issue.ValidateRemediation(ctx, testOrgID, issue.ID, false, "u-risk")
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Status).Equal(types.IssueStatusInProgress)
	})

	t.Run("validation requires a pending request", func(t *testing.T) {
		uc, issue := open(t)

		_, err := uc.Issue.ValidateRemediation(context.Background(), testOrgID, issue.ID, true, "u-risk")
		gt.Bool(t, errors.Is(err, usecase.ErrValidationNotRequested)).True()
	})

	t.Run("risk acceptance is terminal", func(t *testing.T) {
		uc, issue := open(t)
		ctx := context.Background()

		updated, err := uc.Issue.AcceptRisk(ctx, testOrgID, issue.ID, "compensating control in place")
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Status).Equal(types.IssueStatusRiskAccepted)

		_, err = uc.Issue.SubmitRemediation(ctx, testOrgID, issue.ID, "https://evidence.example/2", testNow)
		gt.Bool(t, errors.Is(err, usecase.ErrIssueCompleted)).True()
		_, err = uc.Issue.CloseIssue(ctx, testOrgID, issue.ID, "")
		gt.Bool(t, errors.Is(err, usecase.ErrIssueCompleted)).True()
	})

	t.Run("risk acceptance requires the capability", func(t *testing.T) {
		uc, issue := open(t)
		ctx := auth.ContextWithIdentity(context.Background(), &auth.Identity{
			UserID: "u-bob", Role: types.RoleBusinessOwner, OrgID: testOrgID,
		})

		_, err := uc.Issue.AcceptRisk(ctx, testOrgID, issue.ID, "nope")
		gt.Bool(t, errors.Is(err, usecase.ErrPermissionDenied)).True()
	})

	t.Run("close records notes", func(t *testing.T) {
		uc, issue := open(t)

		updated, err := uc.Issue.CloseIssue(context.Background(), testOrgID, issue.ID, "duplicate of another finding")
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Status).Equal(types.IssueStatusClosed)
		gt.Value(t, updated.ClosureNotes).Equal("duplicate of another finding")
	})

	t.Run("escalation bumps priority to urgent", func(t *testing.T) {
		uc, issue := open(t)

		updated, err := uc.Issue.EscalateIssue(context.Background(), testOrgID, issue.ID, "u-risk")
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Status).Equal(types.IssueStatusEscalated)
		gt.Value(t, updated.Priority).Equal(types.PriorityUrgent)
		gt.Value(t, updated.EscalatedBy).Equal("u-risk")
	})
}

func TestIssueUseCase_ListOverdue(t *testing.T) {
	uc, repo := newTestUseCases()
	ctx := context.Background()

	vendor, err := seedVendor(ctx, repo, nil)
	gt.NoError(t, err).Required()

	openWithTarget := func(title string, target time.Time) *model.VendorIssue {
		t.Helper()
		issue, err := uc.Issue.OpenIssue(ctx, testOrgID, usecase.OpenIssueInput{
			VendorID: vendor.ID, Title: title, Severity: types.SeverityMedium,
		})
		gt.NoError(t, err).Required()
		_, err = uc.Issue.UpdateCorrectiveActionPlan(ctx, testOrgID, issue.ID, "plan", target)
		gt.NoError(t, err).Required()
		return issue
	}

	overdue := openWithTarget("late", testNow.Add(-24*time.Hour))
	openWithTarget("on track", testNow.Add(24*time.Hour))

	// A late issue already awaiting validation is no longer counted
	parked := openWithTarget("late but submitted", testNow.Add(-24*time.Hour))
	_, err = uc.Issue.SubmitRemediation(ctx, testOrgID, parked.ID, "https://evidence.example/3", testNow)
	gt.NoError(t, err).Required()

	late, err := uc.Issue.ListOverdue(ctx, testOrgID)
	gt.NoError(t, err).Required()
	gt.Array(t, late).Length(1)
	gt.Value(t, late[0].ID).Equal(overdue.ID)
}
