package gormdb_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/trm-lab/argus/pkg/domain/interfaces"
	"github.com/trm-lab/argus/pkg/domain/model"
	"github.com/trm-lab/argus/pkg/domain/types"
	"github.com/trm-lab/argus/pkg/repository/gormdb"
)

const testOrgID = "org-test"

func newTestDB(t *testing.T) *gormdb.DB {
	t.Helper()

	db, err := gormdb.Open(":memory:")
	gt.NoError(t, err).Required()
	t.Cleanup(func() { _ = db.Close() })

	gt.NoError(t, db.Migrate(context.Background())).Required()
	return db
}

func newVendor(mutate func(*model.Vendor)) *model.Vendor {
	v := &model.Vendor{
		Name:               "Acme Cloud",
		LegalName:          "Acme Cloud GmbH",
		Category:           "cloud",
		Tier:               types.TierHigh,
		Status:             types.VendorStatusActive,
		InherentRiskScore:  45,
		ResidualRiskScore:  35,
		SensitiveDataTypes: []string{"PII"},
		UsesSubcontractors: true,
		ContractValue:      125000,
		GeographicFootprint: []string{
			"DE", "US",
		},
		NextReviewDate: time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
	}
	if mutate != nil {
		mutate(v)
	}
	return v
}

func TestVendorRepository(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		db := newTestDB(t)
		ctx := context.Background()

		created, err := db.Vendor().Create(ctx, testOrgID, newVendor(nil))
		gt.NoError(t, err).Required()
		gt.Number(t, created.ID).NotEqual(0)

		got, err := db.Vendor().Get(ctx, testOrgID, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Name).Equal("Acme Cloud")
		gt.Value(t, got.Tier).Equal(types.TierHigh)
		gt.Array(t, got.SensitiveDataTypes).Length(1)
		gt.Array(t, got.GeographicFootprint).Length(2)
		gt.Value(t, got.ContractValue).Equal(125000.0)
		gt.Value(t, got.NextReviewDate.UTC()).Equal(created.NextReviewDate.UTC())
	})

	t.Run("tenant isolation", func(t *testing.T) {
		db := newTestDB(t)
		ctx := context.Background()

		created, err := db.Vendor().Create(ctx, testOrgID, newVendor(nil))
		gt.NoError(t, err).Required()

		_, err = db.Vendor().Get(ctx, "org-other", created.ID)
		gt.Bool(t, errors.Is(err, gormdb.ErrNotFound)).True()

		// Callers outside the repository layer match the backend-neutral
		// sentinel instead of importing this package
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()
	})

	t.Run("update persists pointer fields", func(t *testing.T) {
		db := newTestDB(t)
		ctx := context.Background()

		created, err := db.Vendor().Create(ctx, testOrgID, newVendor(nil))
		gt.NoError(t, err).Required()

		checked := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
		created.Status = types.VendorStatusSuspended
		created.LastCheckedAt = &checked

		updated, err := db.Vendor().Update(ctx, testOrgID, created)
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Status).Equal(types.VendorStatusSuspended)

		got, err := db.Vendor().Get(ctx, testOrgID, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.LastCheckedAt.UTC()).Equal(checked)
	})

	t.Run("list filters", func(t *testing.T) {
		db := newTestDB(t)
		ctx := context.Background()

		_, err := db.Vendor().Create(ctx, testOrgID, newVendor(nil))
		gt.NoError(t, err).Required()
		_, err = db.Vendor().Create(ctx, testOrgID, newVendor(func(v *model.Vendor) {
			v.Name = "PayFast"
			v.Category = "payments"
			v.Status = types.VendorStatusTerminated
		}))
		gt.NoError(t, err).Required()

		all, err := db.Vendor().List(ctx, testOrgID)
		gt.NoError(t, err).Required()
		gt.Array(t, all).Length(2)

		cloud, err := db.Vendor().List(ctx, testOrgID, interfaces.WithCategory("cloud"))
		gt.NoError(t, err).Required()
		gt.Array(t, cloud).Length(1)

		active, err := db.Vendor().List(ctx, testOrgID,
			interfaces.WithStatuses(types.VendorStatusActive, types.VendorStatusApproved))
		gt.NoError(t, err).Required()
		gt.Array(t, active).Length(1)
		gt.Value(t, active[0].Name).Equal("Acme Cloud")
	})
}

func TestWorkflowRepository(t *testing.T) {
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

	newWorkflow := func(vendorID int64) *model.ApprovalWorkflow {
		return &model.ApprovalWorkflow{
			VendorID:     vendorID,
			WorkflowType: types.WorkflowOnboarding,
			Status:       types.WorkflowStatusPending,
			CurrentStep:  1,
			InitiatedBy:  "u-proc",
			InitiatedAt:  now,
			Steps: []*model.ApprovalStep{
				{StepOrder: 1, ApproverRole: types.RoleRiskManager, ApproverUserID: "u-risk", RequiredAt: now.Add(72 * time.Hour)},
				{StepOrder: 2, ApproverRole: types.RoleCISO, ApproverUserID: "u-ciso", RequiredAt: now.Add(144 * time.Hour)},
			},
		}
	}

	t.Run("workflow and steps round trip", func(t *testing.T) {
		db := newTestDB(t)
		ctx := context.Background()

		created, err := db.Workflow().Create(ctx, testOrgID, newWorkflow(1))
		gt.NoError(t, err).Required()
		gt.Array(t, created.Steps).Length(2)
		gt.Number(t, created.Steps[0].ID).NotEqual(0)
		gt.Value(t, created.Steps[0].WorkflowID).Equal(created.ID)

		got, err := db.Workflow().Get(ctx, testOrgID, created.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, got.Steps).Length(2)
		gt.Value(t, got.Steps[0].ApproverRole).Equal(types.RoleRiskManager)
		gt.Value(t, got.Steps[1].StepOrder).Equal(2)
	})

	t.Run("step decision round trip", func(t *testing.T) {
		db := newTestDB(t)
		ctx := context.Background()

		created, err := db.Workflow().Create(ctx, testOrgID, newWorkflow(1))
		gt.NoError(t, err).Required()

		step := created.Steps[0]
		decision := types.DecisionConditionallyApproved
		step.Decision = &decision
		step.DecidedBy = "u-risk"
		step.DecidedAt = &now
		step.Conditions = []string{"quarterly report"}

		_, err = db.Workflow().UpdateStep(ctx, testOrgID, step)
		gt.NoError(t, err).Required()

		got, err := db.Workflow().Get(ctx, testOrgID, created.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, got.Steps[0].IsDecided()).True()
		gt.Value(t, *got.Steps[0].Decision).Equal(types.DecisionConditionallyApproved)
		gt.Array(t, got.Steps[0].Conditions).Length(1)
	})

	t.Run("pending steps inbox", func(t *testing.T) {
		db := newTestDB(t)
		ctx := context.Background()

		created, err := db.Workflow().Create(ctx, testOrgID, newWorkflow(1))
		gt.NoError(t, err).Required()

		pending, err := db.Workflow().ListPendingSteps(ctx, testOrgID, "u-risk")
		gt.NoError(t, err).Required()
		gt.Array(t, pending).Length(1)
		gt.Value(t, pending[0].Workflow.ID).Equal(created.ID)
		gt.Value(t, pending[0].Step.ApproverUserID).Equal("u-risk")

		// A decided step leaves the inbox
		step := created.Steps[0]
		decision := types.DecisionApproved
		step.Decision = &decision
		_, err = db.Workflow().UpdateStep(ctx, testOrgID, step)
		gt.NoError(t, err).Required()

		pending, err = db.Workflow().ListPendingSteps(ctx, testOrgID, "u-risk")
		gt.NoError(t, err).Required()
		gt.Array(t, pending).Length(0)
	})

	t.Run("count active by vendor and type", func(t *testing.T) {
		db := newTestDB(t)
		ctx := context.Background()

		created, err := db.Workflow().Create(ctx, testOrgID, newWorkflow(7))
		gt.NoError(t, err).Required()

		count, err := db.Workflow().CountActiveByVendorAndType(ctx, testOrgID, 7, types.WorkflowOnboarding)
		gt.NoError(t, err).Required()
		gt.Number(t, count).Equal(1)

		created.Status = types.WorkflowStatusRejected
		completed := now
		created.CompletedAt = &completed
		_, err = db.Workflow().Update(ctx, testOrgID, created)
		gt.NoError(t, err).Required()

		count, err = db.Workflow().CountActiveByVendorAndType(ctx, testOrgID, 7, types.WorkflowOnboarding)
		gt.NoError(t, err).Required()
		gt.Number(t, count).Equal(0)
	})

	t.Run("list by period", func(t *testing.T) {
		db := newTestDB(t)
		ctx := context.Background()

		_, err := db.Workflow().Create(ctx, testOrgID, newWorkflow(1))
		gt.NoError(t, err).Required()

		later := newWorkflow(2)
		later.InitiatedAt = now.Add(48 * time.Hour)
		_, err = db.Workflow().Create(ctx, testOrgID, later)
		gt.NoError(t, err).Required()

		cutoff := now.Add(24 * time.Hour)
		recent, err := db.Workflow().ListByPeriod(ctx, testOrgID, &cutoff, nil)
		gt.NoError(t, err).Required()
		gt.Array(t, recent).Length(1)
		gt.Value(t, recent[0].VendorID).Equal(int64(2))
	})
}

func TestIssueRepository(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

	past := now.Add(-24 * time.Hour)
	overdue, err := db.Issue().Create(ctx, testOrgID, &model.VendorIssue{
		VendorID:              1,
		Title:                 "Expired SOC 2 report",
		Severity:              types.SeverityHigh,
		Status:                types.IssueStatusInProgress,
		Priority:              types.PriorityHigh,
		TargetRemediationDate: &past,
	})
	gt.NoError(t, err).Required()

	_, err = db.Issue().Create(ctx, testOrgID, &model.VendorIssue{
		VendorID: 1,
		Title:    "Closed finding",
		Severity: types.SeverityLow,
		Status:   types.IssueStatusClosed,
		Priority: types.PriorityLow,
	})
	gt.NoError(t, err).Required()

	byVendor, err := db.Issue().ListByVendor(ctx, testOrgID, 1)
	gt.NoError(t, err).Required()
	gt.Array(t, byVendor).Length(2)

	late, err := db.Issue().ListOverdue(ctx, testOrgID, now)
	gt.NoError(t, err).Required()
	gt.Array(t, late).Length(1)
	gt.Value(t, late[0].ID).Equal(overdue.ID)
}

func TestMonitoringRepository(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	created, err := db.Monitoring().Create(ctx, testOrgID, &model.MonitoringSignal{
		ID:             "sig-1",
		VendorID:       1,
		MonitoringType: types.MonitoringSecurityRating,
		RiskLevel:      types.RiskLevelHigh,
		RiskIndicator:  "rating slide",
		CurrentValue:   "60",
		PreviousValue:  "75",
		ChangeDetected: true,
		RequiresAction: true,
	})
	gt.NoError(t, err).Required()

	acked := time.Date(2025, 7, 2, 9, 0, 0, 0, time.UTC)
	created.AcknowledgedBy = "u-risk"
	created.AcknowledgedAt = &acked
	_, err = db.Monitoring().Update(ctx, testOrgID, created)
	gt.NoError(t, err).Required()

	got, err := db.Monitoring().Get(ctx, testOrgID, "sig-1")
	gt.NoError(t, err).Required()
	gt.Value(t, got.AcknowledgedBy).Equal("u-risk")
	gt.Bool(t, got.RequiresAction).True()

	signals, err := db.Monitoring().ListByVendor(ctx, testOrgID, 1)
	gt.NoError(t, err).Required()
	gt.Array(t, signals).Length(1)

	_, err = db.Monitoring().Get(ctx, testOrgID, "sig-missing")
	gt.Bool(t, errors.Is(err, gormdb.ErrNotFound)).True()
}

func TestAppetiteRepository(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

	first, err := db.Appetite().Upsert(ctx, testOrgID, &model.RiskAppetite{
		Category:              "cloud",
		RiskTolerance:         50,
		EarlyWarningThreshold: 40,
		CurrentRiskLevel:      35,
		BreachStatus:          types.BreachStatusWithinAppetite,
		EvaluatedAt:           now,
	})
	gt.NoError(t, err).Required()
	gt.Number(t, first.ID).NotEqual(0)

	// Upsert on the same category keeps the row
	second, err := db.Appetite().Upsert(ctx, testOrgID, &model.RiskAppetite{
		Category:              "cloud",
		RiskTolerance:         50,
		EarlyWarningThreshold: 40,
		CurrentRiskLevel:      55,
		BreachStatus:          types.BreachStatusBreached,
		EvaluatedAt:           now.Add(time.Hour),
	})
	gt.NoError(t, err).Required()
	gt.Value(t, second.ID).Equal(first.ID)
	gt.Value(t, second.CurrentRiskLevel).Equal(55.0)

	all, err := db.Appetite().List(ctx, testOrgID)
	gt.NoError(t, err).Required()
	gt.Array(t, all).Length(1)

	breach, err := db.Appetite().CreateBreach(ctx, testOrgID, &model.RiskAppetiteBreach{
		Category:            "cloud",
		ThresholdExceeded:   50,
		ActualLevel:         55,
		ExcessAmount:        5,
		ContributingFactors: []string{"Acme Cloud"},
	})
	gt.NoError(t, err).Required()
	gt.Number(t, breach.ID).NotEqual(0)

	breaches, err := db.Appetite().ListBreaches(ctx, testOrgID)
	gt.NoError(t, err).Required()
	gt.Array(t, breaches).Length(1)
	gt.Array(t, breaches[0].ContributingFactors).Length(1)
}

func TestAuditRepository(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

	entries := []*model.AuditEntry{
		{ID: "a-1", Actor: "u-risk", Action: "vendor.created", EntityType: "vendor", EntityID: "1", CreatedAt: now},
		{ID: "a-2", Actor: "system", Action: "signal.recorded", EntityType: "signal", EntityID: "sig-1", CreatedAt: now.Add(time.Minute)},
		{ID: "a-3", Actor: "u-risk", Action: "vendor.updated", EntityType: "vendor", EntityID: "1", CreatedAt: now.Add(2 * time.Minute)},
	}
	for _, e := range entries {
		gt.NoError(t, db.Audit().Append(ctx, testOrgID, e)).Required()
	}

	vendorTrail, err := db.Audit().List(ctx, testOrgID, model.AuditFilter{EntityType: "vendor", EntityID: "1"})
	gt.NoError(t, err).Required()
	gt.Array(t, vendorTrail).Length(2)
	// Newest first
	gt.Value(t, vendorTrail[0].ID).Equal("a-3")

	byActor, err := db.Audit().List(ctx, testOrgID, model.AuditFilter{Actor: "system"})
	gt.NoError(t, err).Required()
	gt.Array(t, byActor).Length(1)

	limited, err := db.Audit().List(ctx, testOrgID, model.AuditFilter{Limit: 2})
	gt.NoError(t, err).Required()
	gt.Array(t, limited).Length(2)
}

func TestInTxRollback(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := db.InTx(ctx, func(ctx context.Context) error {
		if _, err := db.Vendor().Create(ctx, testOrgID, newVendor(nil)); err != nil {
			return err
		}
		return boom
	})
	gt.Bool(t, errors.Is(err, boom)).True()

	vendors, err := db.Vendor().List(ctx, testOrgID)
	gt.NoError(t, err).Required()
	gt.Array(t, vendors).Length(0)

	err = db.InTx(ctx, func(ctx context.Context) error {
		_, err := db.Vendor().Create(ctx, testOrgID, newVendor(nil))
		return err
	})
	gt.NoError(t, err).Required()

	vendors, err = db.Vendor().List(ctx, testOrgID)
	gt.NoError(t, err).Required()
	gt.Array(t, vendors).Length(1)
}
