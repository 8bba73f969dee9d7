package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/trm-lab/argus/pkg/domain/model"
	"github.com/trm-lab/argus/pkg/domain/types"
	"github.com/trm-lab/argus/pkg/repository/memory"
	"github.com/trm-lab/argus/pkg/usecase"
)

func TestMonitoringUseCase_Classifiers(t *testing.T) {
	setup := func(t *testing.T) (*usecase.UseCases, *memory.Memory, int64) {
		t.Helper()
		uc, repo := newTestUseCases()
		vendor, err := seedVendor(context.Background(), repo, nil)
		gt.NoError(t, err).Required()
		return uc, repo, vendor.ID
	}

	t.Run("security rating drop thresholds", func(t *testing.T) {
		cases := []struct {
			name     string
			current  int
			previous int
			level    types.RiskLevel
		}{
			{"drop of 20 is critical", 60, 80, types.RiskLevelCritical},
			{"drop of 10 is high", 70, 80, types.RiskLevelHigh},
			{"drop of 5 is medium", 75, 80, types.RiskLevelMedium},
			{"drop of 4 is low", 76, 80, types.RiskLevelLow},
			{"improvement is low", 85, 80, types.RiskLevelLow},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				uc, _, vendorID := setup(t)
				signal, err := uc.Monitoring.MonitorSecurityRating(context.Background(), testOrgID, vendorID, tc.current, tc.previous)
				gt.NoError(t, err).Required()
				gt.Value(t, signal.RiskLevel).Equal(tc.level)
				gt.Value(t, signal.MonitoringType).Equal(types.MonitoringSecurityRating)
			})
		}
	})

	t.Run("breaches of regulated data are critical", func(t *testing.T) {
		uc, _, vendorID := setup(t)
		ctx := context.Background()

		signal, err := uc.Monitoring.MonitorDataBreach(ctx, testOrgID, vendorID, "credential stuffing", []string{"usernames", "pii"})
		gt.NoError(t, err).Required()
		gt.Value(t, signal.RiskLevel).Equal(types.RiskLevelCritical)

		uc2, _, vendorID2 := setup(t)
		signal, err = uc2.Monitoring.MonitorDataBreach(ctx, testOrgID, vendorID2, "marketing list exposure", []string{"emails"})
		gt.NoError(t, err).Required()
		gt.Value(t, signal.RiskLevel).Equal(types.RiskLevelHigh)
	})

	t.Run("certificate expiry proximity", func(t *testing.T) {
		cases := []struct {
			name  string
			in    time.Duration
			level types.RiskLevel
		}{
			{"5 days out is critical", 5 * 24 * time.Hour, types.RiskLevelCritical},
			{"20 days out is high", 20 * 24 * time.Hour, types.RiskLevelHigh},
			{"45 days out is medium", 45 * 24 * time.Hour, types.RiskLevelMedium},
			{"90 days out is low", 90 * 24 * time.Hour, types.RiskLevelLow},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				uc, _, vendorID := setup(t)
				signal, err := uc.Monitoring.MonitorCertificateExpiry(context.Background(), testOrgID, vendorID, "api.acme.example", testNow.Add(tc.in))
				gt.NoError(t, err).Required()
				gt.Value(t, signal.RiskLevel).Equal(tc.level)
			})
		}
	})

	t.Run("news sentiment and legal keywords", func(t *testing.T) {
		uc, _, vendorID := setup(t)
		ctx := context.Background()

		signal, err := uc.Monitoring.MonitorNewsMention(ctx, testOrgID, vendorID, "Acme faces regulatory investigation", "negative")
		gt.NoError(t, err).Required()
		gt.Value(t, signal.RiskLevel).Equal(types.RiskLevelHigh)

		signal, err = uc.Monitoring.MonitorNewsMention(ctx, testOrgID, vendorID, "Acme misses quarterly targets", "negative")
		gt.NoError(t, err).Required()
		gt.Value(t, signal.RiskLevel).Equal(types.RiskLevelMedium)

		signal, err = uc.Monitoring.MonitorNewsMention(ctx, testOrgID, vendorID, "Acme ships new product", "positive")
		gt.NoError(t, err).Required()
		gt.Value(t, signal.RiskLevel).Equal(types.RiskLevelLow)
	})

	t.Run("financial distress", func(t *testing.T) {
		uc, _, vendorID := setup(t)
		ctx := context.Background()

		signal, err := uc.Monitoring.MonitorFinancialHealth(ctx, testOrgID, vendorID, "CCC", "B", false)
		gt.NoError(t, err).Required()
		gt.Value(t, signal.RiskLevel).Equal(types.RiskLevelCritical)

		uc2, _, vendorID2 := setup(t)
		signal, err = uc2.Monitoring.MonitorFinancialHealth(ctx, testOrgID, vendorID2, "BB", "AA", false)
		gt.NoError(t, err).Required()
		gt.Value(t, signal.RiskLevel).Equal(types.RiskLevelHigh)

		signal, err = uc2.Monitoring.MonitorFinancialHealth(ctx, testOrgID, vendorID2, "A", "AA", false)
		gt.NoError(t, err).Required()
		gt.Value(t, signal.RiskLevel).Equal(types.RiskLevelMedium)
	})

	t.Run("undisclosed acquirer is high", func(t *testing.T) {
		uc, _, vendorID := setup(t)
		ctx := context.Background()

		signal, err := uc.Monitoring.MonitorMergerAcquisition(ctx, testOrgID, vendorID, "")
		gt.NoError(t, err).Required()
		gt.Value(t, signal.RiskLevel).Equal(types.RiskLevelHigh)

		signal, err = uc.Monitoring.MonitorMergerAcquisition(ctx, testOrgID, vendorID, "MegaCorp")
		gt.NoError(t, err).Required()
		gt.Value(t, signal.RiskLevel).Equal(types.RiskLevelMedium)
	})
}

func TestMonitoringUseCase_RecordSignal(t *testing.T) {
	t.Run("signal stamps the vendor check time", func(t *testing.T) {
		uc, repo := newTestUseCases()
		ctx := context.Background()

		vendor, err := seedVendor(ctx, repo, nil)
		gt.NoError(t, err).Required()

		signal, err := uc.Monitoring.RecordSignal(ctx, testOrgID, usecase.SignalInput{
			VendorID:       vendor.ID,
			MonitoringType: types.MonitoringNewsMention,
			RiskLevel:      types.RiskLevelLow,
			RiskIndicator:  "routine coverage",
		})
		gt.NoError(t, err).Required()
		gt.Bool(t, signal.RequiresAction).False()

		checked, err := uc.Vendor.GetVendor(ctx, testOrgID, vendor.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, *checked.LastCheckedAt).Equal(testNow)

		// Low severity never opens an issue
		issues, err := uc.Issue.ListByVendor(ctx, testOrgID, vendor.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, issues).Length(0)
	})

	t.Run("actionable signal opens an issue", func(t *testing.T) {
		uc, repo := newTestUseCases()
		ctx := context.Background()

		vendor, err := seedVendor(ctx, repo, nil)
		gt.NoError(t, err).Required()

		signal, err := uc.Monitoring.RecordSignal(ctx, testOrgID, usecase.SignalInput{
			VendorID:       vendor.ID,
			MonitoringType: types.MonitoringSecurityRating,
			RiskLevel:      types.RiskLevelHigh,
			RiskIndicator:  "rating slide",
		})
		gt.NoError(t, err).Required()
		gt.Bool(t, signal.RequiresAction).True()

		issues, err := uc.Issue.ListByVendor(ctx, testOrgID, vendor.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, issues).Length(1)
		gt.Value(t, issues[0].SourceSignalID).Equal(signal.ID)
		gt.Value(t, issues[0].Severity).Equal(types.SeverityHigh)
		gt.Value(t, issues[0].IssueType).Equal(types.IssueTypeSecurity)
	})

	t.Run("critical signal spawns a reassessment workflow", func(t *testing.T) {
		uc, repo := newTestUseCases()
		ctx := context.Background()

		vendor, err := seedVendor(ctx, repo, nil)
		gt.NoError(t, err).Required()

		signal, err := uc.Monitoring.RecordSignal(ctx, testOrgID, usecase.SignalInput{
			VendorID:       vendor.ID,
			MonitoringType: types.MonitoringDataBreach,
			RiskLevel:      types.RiskLevelCritical,
			RiskIndicator:  "PII exfiltration",
		})
		gt.NoError(t, err).Required()

		active, err := repo.Workflow().ListByVendor(ctx, testOrgID, vendor.ID, true)
		gt.NoError(t, err).Required()
		gt.Array(t, active).Length(1)
		gt.Value(t, active[0].WorkflowType).Equal(types.WorkflowReassessment)
		gt.Value(t, active[0].InitiatedBy).Equal("monitoring")
		// Registry has no template, so the fallback chain applies
		gt.Array(t, active[0].Steps).Length(2)
		gt.Value(t, active[0].Steps[0].ApproverRole).Equal(types.RoleRiskManager)
		gt.Value(t, active[0].Steps[1].ApproverRole).Equal(types.RoleCISO)

		// A second critical signal reuses the in-flight reassessment
		_, err = uc.Monitoring.RecordSignal(ctx, testOrgID, usecase.SignalInput{
			VendorID:       vendor.ID,
			MonitoringType: types.MonitoringDataBreach,
			RiskLevel:      types.RiskLevelCritical,
			RiskIndicator:  "second incident",
		})
		gt.NoError(t, err).Required()

		active, err = repo.Workflow().ListByVendor(ctx, testOrgID, vendor.ID, true)
		gt.NoError(t, err).Required()
		gt.Array(t, active).Length(1)
		_ = signal
	})

	t.Run("invalid input", func(t *testing.T) {
		uc, repo := newTestUseCases()
		ctx := context.Background()

		vendor, err := seedVendor(ctx, repo, nil)
		gt.NoError(t, err).Required()

		_, err = uc.Monitoring.RecordSignal(ctx, testOrgID, usecase.SignalInput{
			VendorID: vendor.ID, MonitoringType: "WEATHER", RiskLevel: types.RiskLevelLow,
		})
		gt.Bool(t, errors.Is(err, usecase.ErrInvalidInput)).True()

		_, err = uc.Monitoring.RecordSignal(ctx, testOrgID, usecase.SignalInput{
			VendorID: vendor.ID, MonitoringType: types.MonitoringNewsMention, RiskLevel: "Panic",
		})
		gt.Bool(t, errors.Is(err, usecase.ErrInvalidInput)).True()

		_, err = uc.Monitoring.RecordSignal(ctx, testOrgID, usecase.SignalInput{
			VendorID: 999, MonitoringType: types.MonitoringNewsMention, RiskLevel: types.RiskLevelLow,
		})
		gt.Bool(t, errors.Is(err, usecase.ErrVendorNotFound)).True()
	})
}

func TestMonitoringUseCase_AcknowledgeAndResolve(t *testing.T) {
	uc, repo := newTestUseCases()
	ctx := context.Background()

	vendor, err := seedVendor(ctx, repo, nil)
	gt.NoError(t, err).Required()

	signal, err := uc.Monitoring.RecordSignal(ctx, testOrgID, usecase.SignalInput{
		VendorID:       vendor.ID,
		MonitoringType: types.MonitoringNewsMention,
		RiskLevel:      types.RiskLevelMedium,
		RiskIndicator:  "negative coverage",
	})
	gt.NoError(t, err).Required()

	acked, err := uc.Monitoring.AcknowledgeSignal(ctx, testOrgID, signal.ID, "u-risk", "reviewed coverage")
	gt.NoError(t, err).Required()
	gt.Value(t, acked.AcknowledgedBy).Equal("u-risk")
	gt.Value(t, *acked.AcknowledgedAt).Equal(testNow)
	gt.Value(t, acked.ActionTaken).Equal("reviewed coverage")

	resolved, err := uc.Monitoring.ResolveSignal(ctx, testOrgID, signal.ID, "u-risk")
	gt.NoError(t, err).Required()
	gt.Value(t, resolved.ResolvedBy).Equal("u-risk")
	gt.Value(t, *resolved.ResolvedAt).Equal(testNow)

	_, err = uc.Monitoring.AcknowledgeSignal(ctx, testOrgID, "no-such-signal", "u-risk", "")
	gt.Bool(t, errors.Is(err, usecase.ErrSignalNotFound)).True()
}

func TestMonitoringUseCase_Schedule(t *testing.T) {
	uc, repo := newTestUseCases()
	ctx := context.Background()

	// Never checked: due immediately
	fresh, err := seedVendor(ctx, repo, func(v *model.Vendor) {
		v.Name = "Fresh"
		v.Tier = types.TierCritical
	})
	gt.NoError(t, err).Required()

	// Checked recently against a weekly cadence: not due
	recent := testNow.Add(-24 * time.Hour)
	_, err = seedVendor(ctx, repo, func(v *model.Vendor) {
		v.Name = "Recent"
		v.Tier = types.TierHigh
		v.LastCheckedAt = &recent
	})
	gt.NoError(t, err).Required()

	// Checked past the cadence: due
	stale := testNow.Add(-10 * 24 * time.Hour)
	overdue, err := seedVendor(ctx, repo, func(v *model.Vendor) {
		v.Name = "Stale"
		v.Tier = types.TierHigh
		v.LastCheckedAt = &stale
	})
	gt.NoError(t, err).Required()

	// Non-operational vendors are not scheduled
	_, err = seedVendor(ctx, repo, func(v *model.Vendor) {
		v.Name = "Gone"
		v.Status = types.VendorStatusTerminated
	})
	gt.NoError(t, err).Required()

	entries, err := uc.Monitoring.Schedule(ctx, testOrgID)
	gt.NoError(t, err).Required()
	gt.Array(t, entries).Length(3)

	byID := make(map[int64]*model.ScheduleEntry)
	for _, e := range entries {
		byID[e.VendorID] = e
	}

	gt.Bool(t, byID[fresh.ID].Due).True()
	gt.Value(t, byID[fresh.ID].NextCheckAt).Equal(testNow)

	gt.Bool(t, byID[overdue.ID].Due).True()
	gt.Value(t, byID[overdue.ID].NextCheckAt).Equal(stale.Add(7 * 24 * time.Hour))

	for _, e := range entries {
		if e.VendorID != fresh.ID && e.VendorID != overdue.ID {
			gt.Bool(t, e.Due).False()
		}
	}

	err = uc.Monitoring.MarkChecked(ctx, testOrgID, fresh.ID)
	gt.NoError(t, err).Required()

	entries, err = uc.Monitoring.Schedule(ctx, testOrgID)
	gt.NoError(t, err).Required()
	gt.Bool(t, byEntryID(entries, fresh.ID).Due).False()
}

func byEntryID(entries []*model.ScheduleEntry, vendorID int64) *model.ScheduleEntry {
	for _, e := range entries {
		if e.VendorID == vendorID {
			return e
		}
	}
	return nil
}
