package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/trm-lab/argus/pkg/domain/interfaces"
	"github.com/trm-lab/argus/pkg/domain/model"
	"github.com/trm-lab/argus/pkg/domain/model/config"
	"github.com/trm-lab/argus/pkg/domain/types"
	"github.com/trm-lab/argus/pkg/utils/errutil"
	"github.com/trm-lab/argus/pkg/utils/logging"
)

// MonitoringUseCase ingests external risk signals, classifies them and
// applies the downstream effects: issue auto-creation for actionable
// signals and reassessment workflows for critical ones.
type MonitoringUseCase struct {
	repo      interfaces.Repository
	registry  *model.OrgRegistry
	approvals *ApprovalUseCase
	now       func() time.Time
}

// SignalInput is a classified monitoring observation ready to record
type SignalInput struct {
	VendorID       int64
	MonitoringType types.MonitoringType
	RiskLevel      types.RiskLevel
	RiskIndicator  string
	CurrentValue   string
	PreviousValue  string
}

// MonitorSecurityRating classifies a security rating movement. Drops of
// 20+ points are Critical, 10+ High, 5+ Medium, anything else Low.
func (uc *MonitoringUseCase) MonitorSecurityRating(ctx context.Context, orgID string, vendorID int64, current, previous int) (*model.MonitoringSignal, error) {
	drop := previous - current

	var level types.RiskLevel
	switch {
	case drop >= 20:
		level = types.RiskLevelCritical
	case drop >= 10:
		level = types.RiskLevelHigh
	case drop >= 5:
		level = types.RiskLevelMedium
	default:
		level = types.RiskLevelLow
	}

	return uc.RecordSignal(ctx, orgID, SignalInput{
		VendorID:       vendorID,
		MonitoringType: types.MonitoringSecurityRating,
		RiskLevel:      level,
		RiskIndicator:  fmt.Sprintf("security rating dropped %d points", drop),
		CurrentValue:   fmt.Sprintf("%d", current),
		PreviousValue:  fmt.Sprintf("%d", previous),
	})
}

// MonitorDataBreach classifies a reported breach. Breaches touching
// regulated data (PII/PHI/PCI) are Critical, anything else High.
func (uc *MonitoringUseCase) MonitorDataBreach(ctx context.Context, orgID string, vendorID int64, description string, dataTypes []string) (*model.MonitoringSignal, error) {
	level := types.RiskLevelHigh
	for _, dt := range dataTypes {
		switch strings.ToUpper(dt) {
		case "PII", "PHI", "PCI":
			level = types.RiskLevelCritical
		}
	}

	return uc.RecordSignal(ctx, orgID, SignalInput{
		VendorID:       vendorID,
		MonitoringType: types.MonitoringDataBreach,
		RiskLevel:      level,
		RiskIndicator:  description,
		CurrentValue:   strings.Join(dataTypes, ","),
	})
}

// MonitorCertificateExpiry classifies certificate expiry proximity:
// within 7 days Critical, 30 High, 60 Medium, otherwise Low.
func (uc *MonitoringUseCase) MonitorCertificateExpiry(ctx context.Context, orgID string, vendorID int64, domain string, expiresAt time.Time) (*model.MonitoringSignal, error) {
	days := int(expiresAt.Sub(uc.now()).Hours() / 24)

	var level types.RiskLevel
	switch {
	case days <= 7:
		level = types.RiskLevelCritical
	case days <= 30:
		level = types.RiskLevelHigh
	case days <= 60:
		level = types.RiskLevelMedium
	default:
		level = types.RiskLevelLow
	}

	return uc.RecordSignal(ctx, orgID, SignalInput{
		VendorID:       vendorID,
		MonitoringType: types.MonitoringCertificateExpiry,
		RiskLevel:      level,
		RiskIndicator:  fmt.Sprintf("certificate for %s expires in %d days", domain, days),
		CurrentValue:   expiresAt.Format(time.RFC3339),
	})
}

// MonitorNewsMention classifies press coverage. Negative coverage with
// legal or regulatory keywords is High, plain negative Medium, else Low.
func (uc *MonitoringUseCase) MonitorNewsMention(ctx context.Context, orgID string, vendorID int64, headline, sentiment string) (*model.MonitoringSignal, error) {
	level := types.RiskLevelLow
	if strings.EqualFold(sentiment, "negative") {
		level = types.RiskLevelMedium
		lower := strings.ToLower(headline)
		for _, kw := range []string{"lawsuit", "legal", "regulator", "regulatory", "fine", "sanction", "investigation"} {
			if strings.Contains(lower, kw) {
				level = types.RiskLevelHigh
				break
			}
		}
	}

	return uc.RecordSignal(ctx, orgID, SignalInput{
		VendorID:       vendorID,
		MonitoringType: types.MonitoringNewsMention,
		RiskLevel:      level,
		RiskIndicator:  headline,
		CurrentValue:   sentiment,
	})
}

// creditRatings orders the rating scale from strongest to weakest
var creditRatings = []string{"AAA", "AA", "A", "BBB", "BB", "B", "CCC", "CC", "C", "D"}

func ratingIndex(rating string) int {
	rating = strings.ToUpper(rating)
	for i, r := range creditRatings {
		if r == rating {
			return i
		}
	}
	return -1
}

// MonitorFinancialHealth classifies financial distress: a rating at or
// below CCC or a bankruptcy flag is Critical, a downgrade of two or more
// notches High, anything else Medium.
func (uc *MonitoringUseCase) MonitorFinancialHealth(ctx context.Context, orgID string, vendorID int64, rating, previousRating string, bankruptcy bool) (*model.MonitoringSignal, error) {
	level := types.RiskLevelMedium
	cur, prev := ratingIndex(rating), ratingIndex(previousRating)
	switch {
	case bankruptcy || (cur >= 0 && cur >= ratingIndex("CCC")):
		level = types.RiskLevelCritical
	case cur >= 0 && prev >= 0 && cur-prev >= 2:
		level = types.RiskLevelHigh
	}

	indicator := fmt.Sprintf("credit rating %s", rating)
	if bankruptcy {
		indicator = "bankruptcy filing reported"
	}

	return uc.RecordSignal(ctx, orgID, SignalInput{
		VendorID:       vendorID,
		MonitoringType: types.MonitoringFinancialHealth,
		RiskLevel:      level,
		RiskIndicator:  indicator,
		CurrentValue:   rating,
		PreviousValue:  previousRating,
	})
}

// MonitorMergerAcquisition classifies M&A activity: High when the
// acquirer is undisclosed, else Medium.
func (uc *MonitoringUseCase) MonitorMergerAcquisition(ctx context.Context, orgID string, vendorID int64, acquirer string) (*model.MonitoringSignal, error) {
	level := types.RiskLevelMedium
	indicator := fmt.Sprintf("acquisition by %s announced", acquirer)
	if acquirer == "" {
		level = types.RiskLevelHigh
		indicator = "acquisition by undisclosed party announced"
	}

	return uc.RecordSignal(ctx, orgID, SignalInput{
		VendorID:       vendorID,
		MonitoringType: types.MonitoringMergerAcquisition,
		RiskLevel:      level,
		RiskIndicator:  indicator,
		CurrentValue:   acquirer,
	})
}

// RecordSignal persists a classified signal and applies its effects.
// Signal, auto-created issue and audit entries commit atomically; a
// Critical signal additionally spawns a reassessment workflow after the
// commit (spawning is best effort and never rolls back the signal).
func (uc *MonitoringUseCase) RecordSignal(ctx context.Context, orgID string, input SignalInput) (*model.MonitoringSignal, error) {
	if err := requirePermission(ctx, types.PermRecordSignals); err != nil {
		return nil, err
	}
	if !input.MonitoringType.IsValid() {
		return nil, goerr.Wrap(ErrInvalidInput, "invalid monitoring type", goerr.V("type", input.MonitoringType))
	}
	if !input.RiskLevel.IsValid() {
		return nil, goerr.Wrap(ErrInvalidInput, "invalid risk level", goerr.V("level", input.RiskLevel))
	}

	now := uc.now()
	signal := &model.MonitoringSignal{
		ID:             uuid.NewString(),
		VendorID:       input.VendorID,
		MonitoringType: input.MonitoringType,
		RiskLevel:      input.RiskLevel,
		RiskIndicator:  input.RiskIndicator,
		CurrentValue:   input.CurrentValue,
		PreviousValue:  input.PreviousValue,
		ChangeDetected: input.CurrentValue != input.PreviousValue,
		RequiresAction: input.RiskLevel.RequiresAction(),
	}

	var created *model.MonitoringSignal
	err := uc.repo.InTx(ctx, func(ctx context.Context) error {
		vendor, err := uc.repo.Vendor().Get(ctx, orgID, input.VendorID)
		if err != nil {
			if isNotFound(err) {
				return goerr.Wrap(ErrVendorNotFound, "vendor not found", goerr.V("vendorID", input.VendorID))
			}
			return goerr.Wrap(err, "failed to get vendor")
		}

		created, err = uc.repo.Monitoring().Create(ctx, orgID, signal)
		if err != nil {
			return goerr.Wrap(err, "failed to create signal")
		}

		vendor.LastCheckedAt = &now
		if _, err := uc.repo.Vendor().Update(ctx, orgID, vendor); err != nil {
			return goerr.Wrap(err, "failed to update vendor check time")
		}

		if signal.RequiresAction {
			if err := uc.createIssueFromSignal(ctx, orgID, created, now); err != nil {
				return err
			}
		}
		return appendAudit(ctx, uc.repo, orgID, model.AuditSignalRecorded, "signal", created.ID,
			map[string]string{
				"vendor": fmt.Sprintf("%d", created.VendorID),
				"type":   created.MonitoringType.String(),
				"level":  created.RiskLevel.String(),
			}, now)
	})
	if err != nil {
		return nil, err
	}

	if created.RiskLevel == types.RiskLevelCritical {
		uc.triggerReassessment(ctx, orgID, created)
	}
	return created, nil
}

// createIssueFromSignal opens a vendor issue for an actionable signal,
// inside the signal's transaction.
func (uc *MonitoringUseCase) createIssueFromSignal(ctx context.Context, orgID string, signal *model.MonitoringSignal, now time.Time) error {
	issue := &model.VendorIssue{
		VendorID:       signal.VendorID,
		Title:          fmt.Sprintf("[%s] %s", signal.MonitoringType, signal.RiskIndicator),
		Description:    fmt.Sprintf("Auto-created from monitoring signal %s", signal.ID),
		IssueType:      signal.MonitoringType.IssueType(),
		Severity:       signal.RiskLevel.Severity(),
		Status:         types.IssueStatusOpen,
		Priority:       defaultPriority(signal.RiskLevel.Severity()),
		SourceSignalID: signal.ID,
		ReportedBy:     "monitoring",
	}

	created, err := uc.repo.Issue().Create(ctx, orgID, issue)
	if err != nil {
		return goerr.Wrap(err, "failed to create issue from signal")
	}
	return appendAudit(ctx, uc.repo, orgID, model.AuditIssueOpened, "issue",
		fmt.Sprintf("%d", created.ID), map[string]string{"signal": signal.ID}, now)
}

// defaultReassessmentChain is used when the organization configures no
// template for reassessment approvals.
var defaultReassessmentChain = []config.ChainStep{
	{ApproverRole: types.RoleRiskManager.String()},
	{ApproverRole: types.RoleCISO.String()},
}

// triggerReassessment spawns a REASSESSMENT_APPROVAL workflow for the
// vendor, using the organization's chain template. An already active
// reassessment is left alone.
func (uc *MonitoringUseCase) triggerReassessment(ctx context.Context, orgID string, signal *model.MonitoringSignal) {
	chain := uc.registry.ChainTemplate(orgID, types.WorkflowReassessment.String())
	if len(chain) == 0 {
		chain = defaultReassessmentChain
	}

	_, err := uc.approvals.CreateWorkflow(ctx, orgID, CreateWorkflowInput{
		VendorID:              signal.VendorID,
		WorkflowType:          types.WorkflowReassessment,
		InitiatedBy:           "monitoring",
		BusinessJustification: fmt.Sprintf("Critical monitoring signal %s: %s", signal.ID, signal.RiskIndicator),
		Chain:                 chain,
	})
	if err != nil {
		if errors.Is(err, ErrWorkflowAlreadyActive) {
			logging.From(ctx).Info("reassessment already in flight",
				"vendorID", signal.VendorID, "signalID", signal.ID)
			return
		}
		errutil.Handle(ctx, err, "failed to trigger reassessment")
	}
}

// AcknowledgeSignal records that someone looked at the signal
func (uc *MonitoringUseCase) AcknowledgeSignal(ctx context.Context, orgID, signalID, acknowledgedBy, actionTaken string) (*model.MonitoringSignal, error) {
	now := uc.now()
	return uc.mutateSignal(ctx, orgID, signalID, func(signal *model.MonitoringSignal) {
		signal.AcknowledgedBy = acknowledgedBy
		signal.AcknowledgedAt = &now
		if actionTaken != "" {
			signal.ActionTaken = actionTaken
		}
	})
}

// ResolveSignal marks the signal handled. Vendor risk scores are not
// touched; score movement happens through assessments only.
func (uc *MonitoringUseCase) ResolveSignal(ctx context.Context, orgID, signalID, resolvedBy string) (*model.MonitoringSignal, error) {
	now := uc.now()
	return uc.mutateSignal(ctx, orgID, signalID, func(signal *model.MonitoringSignal) {
		signal.ResolvedBy = resolvedBy
		signal.ResolvedAt = &now
	})
}

func (uc *MonitoringUseCase) mutateSignal(ctx context.Context, orgID, signalID string, fn func(*model.MonitoringSignal)) (*model.MonitoringSignal, error) {
	var updated *model.MonitoringSignal
	err := uc.repo.InTx(ctx, func(ctx context.Context) error {
		signal, err := uc.repo.Monitoring().Get(ctx, orgID, signalID)
		if err != nil {
			if isNotFound(err) {
				return goerr.Wrap(ErrSignalNotFound, "signal not found", goerr.V("id", signalID))
			}
			return goerr.Wrap(err, "failed to get signal")
		}

		fn(signal)

		updated, err = uc.repo.Monitoring().Update(ctx, orgID, signal)
		if err != nil {
			return goerr.Wrap(err, "failed to update signal")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (uc *MonitoringUseCase) ListByVendor(ctx context.Context, orgID string, vendorID int64) ([]*model.MonitoringSignal, error) {
	signals, err := uc.repo.Monitoring().ListByVendor(ctx, orgID, vendorID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list signals")
	}
	return signals, nil
}

// Schedule builds the monitoring scheduling table for the organization:
// for each operational vendor, when the next check is due based on its
// tier cadence. The caller is responsible for invoking checks.
func (uc *MonitoringUseCase) Schedule(ctx context.Context, orgID string) ([]*model.ScheduleEntry, error) {
	vendors, err := uc.repo.Vendor().List(ctx, orgID,
		interfaces.WithStatuses(types.VendorStatusApproved, types.VendorStatusActive))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list vendors")
	}

	now := uc.now()
	entries := make([]*model.ScheduleEntry, 0, len(vendors))
	for _, v := range vendors {
		interval := v.Tier.CheckInterval()
		next := now
		if v.LastCheckedAt != nil {
			next = v.LastCheckedAt.Add(interval)
		}
		entries = append(entries, &model.ScheduleEntry{
			VendorID:      v.ID,
			VendorName:    v.Name,
			Tier:          v.Tier,
			CheckInterval: interval,
			LastCheckedAt: v.LastCheckedAt,
			NextCheckAt:   next,
			Due:           !next.After(now),
		})
	}
	return entries, nil
}

// MarkChecked stamps the vendor's last check time; used by the sweep
// worker after it has dispatched a due check.
func (uc *MonitoringUseCase) MarkChecked(ctx context.Context, orgID string, vendorID int64) error {
	now := uc.now()
	return uc.repo.InTx(ctx, func(ctx context.Context) error {
		vendor, err := uc.repo.Vendor().Get(ctx, orgID, vendorID)
		if err != nil {
			if isNotFound(err) {
				return goerr.Wrap(ErrVendorNotFound, "vendor not found", goerr.V("vendorID", vendorID))
			}
			return goerr.Wrap(err, "failed to get vendor")
		}
		vendor.LastCheckedAt = &now
		if _, err := uc.repo.Vendor().Update(ctx, orgID, vendor); err != nil {
			return goerr.Wrap(err, "failed to update vendor check time")
		}
		return nil
	})
}
