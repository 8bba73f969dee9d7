package gormdb

import (
	"encoding/json"
	"time"

	"github.com/trm-lab/argus/pkg/domain/model"
	"github.com/trm-lab/argus/pkg/domain/types"
)

// Records are the storage shapes; domain models never carry gorm tags.
// Slice and map fields are stored as JSON text columns.

type vendorRecord struct {
	ID                  int64  `gorm:"column:id;primaryKey;autoIncrement"`
	OrgID               string `gorm:"column:org_id;index;not null"`
	Name                string `gorm:"column:name;not null"`
	LegalName           string `gorm:"column:legal_name"`
	Category            string `gorm:"column:category;index"`
	VendorType          string `gorm:"column:vendor_type"`
	Tier                string `gorm:"column:tier;index;not null"`
	Status              string `gorm:"column:status;index;not null"`
	InherentRiskScore   int    `gorm:"column:inherent_risk_score;not null"`
	ResidualRiskScore   int    `gorm:"column:residual_risk_score;not null"`
	SensitiveDataTypes  string `gorm:"column:sensitive_data_types;type:text"`
	UsesSubcontractors  bool   `gorm:"column:uses_subcontractors;not null"`
	ContractValue       float64
	GeographicFootprint string `gorm:"column:geographic_footprint;type:text"`
	NextReviewDate      time.Time
	LastCheckedAt       *time.Time
	OnboardedAt         *time.Time
	TerminatedAt        *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (vendorRecord) TableName() string { return "vendors" }

type workflowRecord struct {
	ID                    int64  `gorm:"column:id;primaryKey;autoIncrement"`
	OrgID                 string `gorm:"column:org_id;index;not null"`
	VendorID              int64  `gorm:"column:vendor_id;index;not null"`
	WorkflowType          string `gorm:"column:workflow_type;index;not null"`
	Status                string `gorm:"column:status;index;not null"`
	CurrentStep           int    `gorm:"column:current_step;not null"`
	InitiatedBy           string `gorm:"column:initiated_by;not null"`
	BusinessJustification string `gorm:"column:business_justification;type:text"`
	RiskAssessmentSummary string `gorm:"column:risk_assessment_summary;type:text"`
	CancelledBy           string `gorm:"column:cancelled_by"`
	CancelReason          string `gorm:"column:cancel_reason;type:text"`
	InitiatedAt           time.Time
	CompletedAt           *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (workflowRecord) TableName() string { return "approval_workflows" }

type stepRecord struct {
	ID               int64   `gorm:"column:id;primaryKey;autoIncrement"`
	OrgID            string  `gorm:"column:org_id;index;not null"`
	WorkflowID       int64   `gorm:"column:workflow_id;index;not null"`
	StepOrder        int     `gorm:"column:step_order;not null"`
	ApproverRole     string  `gorm:"column:approver_role;not null"`
	ApproverUserID   string  `gorm:"column:approver_user_id;index"`
	ApproverName     string  `gorm:"column:approver_name"`
	Decision         *string `gorm:"column:decision"`
	DecidedBy        string  `gorm:"column:decided_by"`
	DecidedAt        *time.Time
	Comments         string `gorm:"column:comments;type:text"`
	Conditions       string `gorm:"column:conditions;type:text"`
	DigitalSignature string `gorm:"column:digital_signature;type:text"`
	IPAddress        string `gorm:"column:ip_address"`
	UserAgent        string `gorm:"column:user_agent"`
	RequiredAt       time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (stepRecord) TableName() string { return "approval_steps" }

type issueRecord struct {
	ID                     int64  `gorm:"column:id;primaryKey;autoIncrement"`
	OrgID                  string `gorm:"column:org_id;index;not null"`
	VendorID               int64  `gorm:"column:vendor_id;index;not null"`
	Title                  string `gorm:"column:title;not null"`
	Description            string `gorm:"column:description;type:text"`
	IssueType              string `gorm:"column:issue_type"`
	Severity               string `gorm:"column:severity;index;not null"`
	Status                 string `gorm:"column:status;index;not null"`
	Priority               string `gorm:"column:priority"`
	CorrectiveActionPlan   string `gorm:"column:corrective_action_plan;type:text"`
	TargetRemediationDate  *time.Time
	ActualRemediationDate  *time.Time
	RemediationEvidenceURL string `gorm:"column:remediation_evidence_url"`
	ValidatedBy            string `gorm:"column:validated_by"`
	ValidatedAt            *time.Time
	ClosureNotes           string `gorm:"column:closure_notes;type:text"`
	EscalatedBy            string `gorm:"column:escalated_by"`
	SourceSignalID         string `gorm:"column:source_signal_id;index"`
	ReportedBy             string `gorm:"column:reported_by"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func (issueRecord) TableName() string { return "vendor_issues" }

type signalRecord struct {
	ID             string `gorm:"column:id;primaryKey"`
	OrgID          string `gorm:"column:org_id;index;not null"`
	VendorID       int64  `gorm:"column:vendor_id;index;not null"`
	MonitoringType string `gorm:"column:monitoring_type;not null"`
	RiskLevel      string `gorm:"column:risk_level;not null"`
	RiskIndicator  string `gorm:"column:risk_indicator"`
	CurrentValue   string `gorm:"column:current_value"`
	PreviousValue  string `gorm:"column:previous_value"`
	ChangeDetected bool   `gorm:"column:change_detected;not null"`
	RequiresAction bool   `gorm:"column:requires_action;not null"`
	ActionTaken    string `gorm:"column:action_taken;type:text"`
	AcknowledgedBy string `gorm:"column:acknowledged_by"`
	AcknowledgedAt *time.Time
	ResolvedBy     string `gorm:"column:resolved_by"`
	ResolvedAt     *time.Time
	CreatedAt      time.Time
}

func (signalRecord) TableName() string { return "monitoring_signals" }

type appetiteRecord struct {
	ID                    int64  `gorm:"column:id;primaryKey;autoIncrement"`
	OrgID                 string `gorm:"column:org_id;index:idx_appetite_org_category,unique;not null"`
	Category              string `gorm:"column:category;index:idx_appetite_org_category,unique;not null"`
	RiskTolerance         float64
	EarlyWarningThreshold float64
	CurrentRiskLevel      float64
	BreachStatus          string `gorm:"column:breach_status;not null"`
	EvaluatedAt           time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (appetiteRecord) TableName() string { return "risk_appetites" }

type breachRecord struct {
	ID                  int64  `gorm:"column:id;primaryKey;autoIncrement"`
	OrgID               string `gorm:"column:org_id;index;not null"`
	Category            string `gorm:"column:category;index;not null"`
	ThresholdExceeded   float64
	ActualLevel         float64
	ExcessAmount        float64
	ContributingFactors string `gorm:"column:contributing_factors;type:text"`
	EscalatedToBoard    bool   `gorm:"column:escalated_to_board;not null"`
	BoardActionRequired bool   `gorm:"column:board_action_required;not null"`
	ResolvedAt          *time.Time
	ResolutionNotes     string `gorm:"column:resolution_notes;type:text"`
	CreatedAt           time.Time
}

func (breachRecord) TableName() string { return "risk_appetite_breaches" }

type auditRecord struct {
	ID         string `gorm:"column:id;primaryKey"`
	OrgID      string `gorm:"column:org_id;index;not null"`
	Actor      string `gorm:"column:actor;index"`
	Action     string `gorm:"column:action;not null"`
	EntityType string `gorm:"column:entity_type;index"`
	EntityID   string `gorm:"column:entity_id;index"`
	Detail     string `gorm:"column:detail;type:text"`
	CreatedAt  time.Time
}

func (auditRecord) TableName() string { return "audit_entries" }

func encodeStrings(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func decodeStrings(data string) []string {
	if data == "" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil
	}
	return values
}

func encodeDetail(detail map[string]string) string {
	if len(detail) == 0 {
		return "{}"
	}
	data, err := json.Marshal(detail)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func decodeDetail(data string) map[string]string {
	if data == "" {
		return nil
	}
	var detail map[string]string
	if err := json.Unmarshal([]byte(data), &detail); err != nil {
		return nil
	}
	return detail
}

func toVendorRecord(orgID string, v *model.Vendor) *vendorRecord {
	return &vendorRecord{
		ID:                  v.ID,
		OrgID:               orgID,
		Name:                v.Name,
		LegalName:           v.LegalName,
		Category:            v.Category,
		VendorType:          v.VendorType,
		Tier:                v.Tier.String(),
		Status:              v.Status.String(),
		InherentRiskScore:   v.InherentRiskScore,
		ResidualRiskScore:   v.ResidualRiskScore,
		SensitiveDataTypes:  encodeStrings(v.SensitiveDataTypes),
		UsesSubcontractors:  v.UsesSubcontractors,
		ContractValue:       v.ContractValue,
		GeographicFootprint: encodeStrings(v.GeographicFootprint),
		NextReviewDate:      v.NextReviewDate,
		LastCheckedAt:       v.LastCheckedAt,
		OnboardedAt:         v.OnboardedAt,
		TerminatedAt:        v.TerminatedAt,
		CreatedAt:           v.CreatedAt,
		UpdatedAt:           v.UpdatedAt,
	}
}

func (r *vendorRecord) toModel() *model.Vendor {
	return &model.Vendor{
		ID:                  r.ID,
		Name:                r.Name,
		LegalName:           r.LegalName,
		Category:            r.Category,
		VendorType:          r.VendorType,
		Tier:                types.VendorTier(r.Tier),
		Status:              types.VendorStatus(r.Status),
		InherentRiskScore:   r.InherentRiskScore,
		ResidualRiskScore:   r.ResidualRiskScore,
		SensitiveDataTypes:  decodeStrings(r.SensitiveDataTypes),
		UsesSubcontractors:  r.UsesSubcontractors,
		ContractValue:       r.ContractValue,
		GeographicFootprint: decodeStrings(r.GeographicFootprint),
		NextReviewDate:      r.NextReviewDate,
		LastCheckedAt:       r.LastCheckedAt,
		OnboardedAt:         r.OnboardedAt,
		TerminatedAt:        r.TerminatedAt,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

func toWorkflowRecord(orgID string, w *model.ApprovalWorkflow) *workflowRecord {
	return &workflowRecord{
		ID:                    w.ID,
		OrgID:                 orgID,
		VendorID:              w.VendorID,
		WorkflowType:          w.WorkflowType.String(),
		Status:                w.Status.String(),
		CurrentStep:           w.CurrentStep,
		InitiatedBy:           w.InitiatedBy,
		BusinessJustification: w.BusinessJustification,
		RiskAssessmentSummary: w.RiskAssessmentSummary,
		CancelledBy:           w.CancelledBy,
		CancelReason:          w.CancelReason,
		InitiatedAt:           w.InitiatedAt,
		CompletedAt:           w.CompletedAt,
		CreatedAt:             w.CreatedAt,
		UpdatedAt:             w.UpdatedAt,
	}
}

func (r *workflowRecord) toModel() *model.ApprovalWorkflow {
	return &model.ApprovalWorkflow{
		ID:                    r.ID,
		VendorID:              r.VendorID,
		WorkflowType:          types.WorkflowType(r.WorkflowType),
		Status:                types.WorkflowStatus(r.Status),
		CurrentStep:           r.CurrentStep,
		InitiatedBy:           r.InitiatedBy,
		BusinessJustification: r.BusinessJustification,
		RiskAssessmentSummary: r.RiskAssessmentSummary,
		CancelledBy:           r.CancelledBy,
		CancelReason:          r.CancelReason,
		InitiatedAt:           r.InitiatedAt,
		CompletedAt:           r.CompletedAt,
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             r.UpdatedAt,
	}
}

func toStepRecord(orgID string, s *model.ApprovalStep) *stepRecord {
	rec := &stepRecord{
		ID:               s.ID,
		OrgID:            orgID,
		WorkflowID:       s.WorkflowID,
		StepOrder:        s.StepOrder,
		ApproverRole:     s.ApproverRole.String(),
		ApproverUserID:   s.ApproverUserID,
		ApproverName:     s.ApproverName,
		DecidedBy:        s.DecidedBy,
		DecidedAt:        s.DecidedAt,
		Comments:         s.Comments,
		Conditions:       encodeStrings(s.Conditions),
		DigitalSignature: s.DigitalSignature,
		IPAddress:        s.IPAddress,
		UserAgent:        s.UserAgent,
		RequiredAt:       s.RequiredAt,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
	if s.Decision != nil {
		d := s.Decision.String()
		rec.Decision = &d
	}
	return rec
}

func (r *stepRecord) toModel() *model.ApprovalStep {
	step := &model.ApprovalStep{
		ID:               r.ID,
		WorkflowID:       r.WorkflowID,
		StepOrder:        r.StepOrder,
		ApproverRole:     types.Role(r.ApproverRole),
		ApproverUserID:   r.ApproverUserID,
		ApproverName:     r.ApproverName,
		DecidedBy:        r.DecidedBy,
		DecidedAt:        r.DecidedAt,
		Comments:         r.Comments,
		Conditions:       decodeStrings(r.Conditions),
		DigitalSignature: r.DigitalSignature,
		IPAddress:        r.IPAddress,
		UserAgent:        r.UserAgent,
		RequiredAt:       r.RequiredAt,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
	if r.Decision != nil {
		d := types.Decision(*r.Decision)
		step.Decision = &d
	}
	return step
}

func toIssueRecord(orgID string, i *model.VendorIssue) *issueRecord {
	return &issueRecord{
		ID:                     i.ID,
		OrgID:                  orgID,
		VendorID:               i.VendorID,
		Title:                  i.Title,
		Description:            i.Description,
		IssueType:              i.IssueType.String(),
		Severity:               i.Severity.String(),
		Status:                 i.Status.String(),
		Priority:               i.Priority.String(),
		CorrectiveActionPlan:   i.CorrectiveActionPlan,
		TargetRemediationDate:  i.TargetRemediationDate,
		ActualRemediationDate:  i.ActualRemediationDate,
		RemediationEvidenceURL: i.RemediationEvidenceURL,
		ValidatedBy:            i.ValidatedBy,
		ValidatedAt:            i.ValidatedAt,
		ClosureNotes:           i.ClosureNotes,
		EscalatedBy:            i.EscalatedBy,
		SourceSignalID:         i.SourceSignalID,
		ReportedBy:             i.ReportedBy,
		CreatedAt:              i.CreatedAt,
		UpdatedAt:              i.UpdatedAt,
	}
}

func (r *issueRecord) toModel() *model.VendorIssue {
	return &model.VendorIssue{
		ID:                     r.ID,
		VendorID:               r.VendorID,
		Title:                  r.Title,
		Description:            r.Description,
		IssueType:              types.IssueType(r.IssueType),
		Severity:               types.IssueSeverity(r.Severity),
		Status:                 types.IssueStatus(r.Status),
		Priority:               types.IssuePriority(r.Priority),
		CorrectiveActionPlan:   r.CorrectiveActionPlan,
		TargetRemediationDate:  r.TargetRemediationDate,
		ActualRemediationDate:  r.ActualRemediationDate,
		RemediationEvidenceURL: r.RemediationEvidenceURL,
		ValidatedBy:            r.ValidatedBy,
		ValidatedAt:            r.ValidatedAt,
		ClosureNotes:           r.ClosureNotes,
		EscalatedBy:            r.EscalatedBy,
		SourceSignalID:         r.SourceSignalID,
		ReportedBy:             r.ReportedBy,
		CreatedAt:              r.CreatedAt,
		UpdatedAt:              r.UpdatedAt,
	}
}

func toSignalRecord(orgID string, s *model.MonitoringSignal) *signalRecord {
	return &signalRecord{
		ID:             s.ID,
		OrgID:          orgID,
		VendorID:       s.VendorID,
		MonitoringType: s.MonitoringType.String(),
		RiskLevel:      s.RiskLevel.String(),
		RiskIndicator:  s.RiskIndicator,
		CurrentValue:   s.CurrentValue,
		PreviousValue:  s.PreviousValue,
		ChangeDetected: s.ChangeDetected,
		RequiresAction: s.RequiresAction,
		ActionTaken:    s.ActionTaken,
		AcknowledgedBy: s.AcknowledgedBy,
		AcknowledgedAt: s.AcknowledgedAt,
		ResolvedBy:     s.ResolvedBy,
		ResolvedAt:     s.ResolvedAt,
		CreatedAt:      s.CreatedAt,
	}
}

func (r *signalRecord) toModel() *model.MonitoringSignal {
	return &model.MonitoringSignal{
		ID:             r.ID,
		VendorID:       r.VendorID,
		MonitoringType: types.MonitoringType(r.MonitoringType),
		RiskLevel:      types.RiskLevel(r.RiskLevel),
		RiskIndicator:  r.RiskIndicator,
		CurrentValue:   r.CurrentValue,
		PreviousValue:  r.PreviousValue,
		ChangeDetected: r.ChangeDetected,
		RequiresAction: r.RequiresAction,
		ActionTaken:    r.ActionTaken,
		AcknowledgedBy: r.AcknowledgedBy,
		AcknowledgedAt: r.AcknowledgedAt,
		ResolvedBy:     r.ResolvedBy,
		ResolvedAt:     r.ResolvedAt,
		CreatedAt:      r.CreatedAt,
	}
}

func toAppetiteRecord(orgID string, a *model.RiskAppetite) *appetiteRecord {
	return &appetiteRecord{
		ID:                    a.ID,
		OrgID:                 orgID,
		Category:              a.Category,
		RiskTolerance:         a.RiskTolerance,
		EarlyWarningThreshold: a.EarlyWarningThreshold,
		CurrentRiskLevel:      a.CurrentRiskLevel,
		BreachStatus:          a.BreachStatus.String(),
		EvaluatedAt:           a.EvaluatedAt,
		CreatedAt:             a.CreatedAt,
		UpdatedAt:             a.UpdatedAt,
	}
}

func (r *appetiteRecord) toModel() *model.RiskAppetite {
	return &model.RiskAppetite{
		ID:                    r.ID,
		Category:              r.Category,
		RiskTolerance:         r.RiskTolerance,
		EarlyWarningThreshold: r.EarlyWarningThreshold,
		CurrentRiskLevel:      r.CurrentRiskLevel,
		BreachStatus:          types.BreachStatus(r.BreachStatus),
		EvaluatedAt:           r.EvaluatedAt,
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             r.UpdatedAt,
	}
}

func toBreachRecord(orgID string, b *model.RiskAppetiteBreach) *breachRecord {
	return &breachRecord{
		ID:                  b.ID,
		OrgID:               orgID,
		Category:            b.Category,
		ThresholdExceeded:   b.ThresholdExceeded,
		ActualLevel:         b.ActualLevel,
		ExcessAmount:        b.ExcessAmount,
		ContributingFactors: encodeStrings(b.ContributingFactors),
		EscalatedToBoard:    b.EscalatedToBoard,
		BoardActionRequired: b.BoardActionRequired,
		ResolvedAt:          b.ResolvedAt,
		ResolutionNotes:     b.ResolutionNotes,
		CreatedAt:           b.CreatedAt,
	}
}

func (r *breachRecord) toModel() *model.RiskAppetiteBreach {
	return &model.RiskAppetiteBreach{
		ID:                  r.ID,
		Category:            r.Category,
		ThresholdExceeded:   r.ThresholdExceeded,
		ActualLevel:         r.ActualLevel,
		ExcessAmount:        r.ExcessAmount,
		ContributingFactors: decodeStrings(r.ContributingFactors),
		EscalatedToBoard:    r.EscalatedToBoard,
		BoardActionRequired: r.BoardActionRequired,
		ResolvedAt:          r.ResolvedAt,
		ResolutionNotes:     r.ResolutionNotes,
		CreatedAt:           r.CreatedAt,
	}
}

func toAuditRecord(orgID string, e *model.AuditEntry) *auditRecord {
	return &auditRecord{
		ID:         e.ID,
		OrgID:      orgID,
		Actor:      e.Actor,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Detail:     encodeDetail(e.Detail),
		CreatedAt:  e.CreatedAt,
	}
}

func (r *auditRecord) toModel() *model.AuditEntry {
	return &model.AuditEntry{
		ID:         r.ID,
		Actor:      r.Actor,
		Action:     r.Action,
		EntityType: r.EntityType,
		EntityID:   r.EntityID,
		Detail:     decodeDetail(r.Detail),
		CreatedAt:  r.CreatedAt,
	}
}
