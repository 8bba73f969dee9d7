package http

import (
	"time"

	"github.com/trm-lab/argus/pkg/domain/model"
)

// Wire shapes for the REST surface. Domain models stay free of JSON
// concerns; the conversion lives here.

type vendorResponse struct {
	ID                  int64      `json:"id"`
	Name                string     `json:"name"`
	LegalName           string     `json:"legalName,omitempty"`
	Category            string     `json:"category,omitempty"`
	VendorType          string     `json:"vendorType,omitempty"`
	Tier                string     `json:"tier"`
	Status              string     `json:"status"`
	InherentRiskScore   int        `json:"inherentRiskScore"`
	ResidualRiskScore   int        `json:"residualRiskScore"`
	SensitiveDataTypes  []string   `json:"sensitiveDataTypes,omitempty"`
	UsesSubcontractors  bool       `json:"usesSubcontractors"`
	ContractValue       float64    `json:"contractValue"`
	GeographicFootprint []string   `json:"geographicFootprint,omitempty"`
	NextReviewDate      time.Time  `json:"nextReviewDate"`
	LastCheckedAt       *time.Time `json:"lastCheckedAt,omitempty"`
	OnboardedAt         *time.Time `json:"onboardedAt,omitempty"`
	TerminatedAt        *time.Time `json:"terminatedAt,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

func toVendorResponse(v *model.Vendor) vendorResponse {
	return vendorResponse{
		ID:                  v.ID,
		Name:                v.Name,
		LegalName:           v.LegalName,
		Category:            v.Category,
		VendorType:          v.VendorType,
		Tier:                v.Tier.String(),
		Status:              v.Status.String(),
		InherentRiskScore:   v.InherentRiskScore,
		ResidualRiskScore:   v.ResidualRiskScore,
		SensitiveDataTypes:  v.SensitiveDataTypes,
		UsesSubcontractors:  v.UsesSubcontractors,
		ContractValue:       v.ContractValue,
		GeographicFootprint: v.GeographicFootprint,
		NextReviewDate:      v.NextReviewDate,
		LastCheckedAt:       v.LastCheckedAt,
		OnboardedAt:         v.OnboardedAt,
		TerminatedAt:        v.TerminatedAt,
		CreatedAt:           v.CreatedAt,
		UpdatedAt:           v.UpdatedAt,
	}
}

func toVendorResponses(vendors []*model.Vendor) []vendorResponse {
	out := make([]vendorResponse, 0, len(vendors))
	for _, v := range vendors {
		out = append(out, toVendorResponse(v))
	}
	return out
}

type stepResponse struct {
	ID               int64      `json:"id"`
	StepOrder        int        `json:"stepOrder"`
	ApproverRole     string     `json:"approverRole"`
	ApproverUserID   string     `json:"approverUserId,omitempty"`
	ApproverName     string     `json:"approverName,omitempty"`
	Decision         *string    `json:"decision"`
	DecidedBy        string     `json:"decidedBy,omitempty"`
	DecidedAt        *time.Time `json:"decidedAt,omitempty"`
	Comments         string     `json:"comments,omitempty"`
	Conditions       []string   `json:"conditions,omitempty"`
	DigitalSignature string     `json:"digitalSignature,omitempty"`
	RequiredAt       time.Time  `json:"requiredAt"`
}

func toStepResponse(s *model.ApprovalStep) stepResponse {
	resp := stepResponse{
		ID:               s.ID,
		StepOrder:        s.StepOrder,
		ApproverRole:     s.ApproverRole.String(),
		ApproverUserID:   s.ApproverUserID,
		ApproverName:     s.ApproverName,
		DecidedBy:        s.DecidedBy,
		DecidedAt:        s.DecidedAt,
		Comments:         s.Comments,
		Conditions:       s.Conditions,
		DigitalSignature: s.DigitalSignature,
		RequiredAt:       s.RequiredAt,
	}
	if s.Decision != nil {
		d := s.Decision.String()
		resp.Decision = &d
	}
	return resp
}

type workflowResponse struct {
	ID                    int64          `json:"id"`
	VendorID              int64          `json:"vendorId"`
	WorkflowType          string         `json:"workflowType"`
	Status                string         `json:"status"`
	CurrentStep           int            `json:"currentStep"`
	InitiatedBy           string         `json:"initiatedBy"`
	BusinessJustification string         `json:"businessJustification,omitempty"`
	RiskAssessmentSummary string         `json:"riskAssessmentSummary,omitempty"`
	CancelledBy           string         `json:"cancelledBy,omitempty"`
	CancelReason          string         `json:"cancelReason,omitempty"`
	InitiatedAt           time.Time      `json:"initiatedAt"`
	CompletedAt           *time.Time     `json:"completedAt,omitempty"`
	Steps                 []stepResponse `json:"steps"`
}

func toWorkflowResponse(w *model.ApprovalWorkflow) workflowResponse {
	steps := make([]stepResponse, 0, len(w.Steps))
	for _, s := range w.Steps {
		steps = append(steps, toStepResponse(s))
	}
	return workflowResponse{
		ID:                    w.ID,
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
		Steps:                 steps,
	}
}

type pendingApprovalResponse struct {
	Workflow workflowResponse `json:"workflow"`
	Step     stepResponse     `json:"step"`
}

type issueResponse struct {
	ID                     int64      `json:"id"`
	VendorID               int64      `json:"vendorId"`
	Title                  string     `json:"title"`
	Description            string     `json:"description,omitempty"`
	IssueType              string     `json:"issueType,omitempty"`
	Severity               string     `json:"severity"`
	Status                 string     `json:"status"`
	Priority               string     `json:"priority"`
	CorrectiveActionPlan   string     `json:"correctiveActionPlan,omitempty"`
	TargetRemediationDate  *time.Time `json:"targetRemediationDate,omitempty"`
	ActualRemediationDate  *time.Time `json:"actualRemediationDate,omitempty"`
	RemediationEvidenceURL string     `json:"remediationEvidenceUrl,omitempty"`
	ValidatedBy            string     `json:"validatedBy,omitempty"`
	ValidatedAt            *time.Time `json:"validatedAt,omitempty"`
	ClosureNotes           string     `json:"closureNotes,omitempty"`
	EscalatedBy            string     `json:"escalatedBy,omitempty"`
	SourceSignalID         string     `json:"sourceSignalId,omitempty"`
	ReportedBy             string     `json:"reportedBy,omitempty"`
	CreatedAt              time.Time  `json:"createdAt"`
	UpdatedAt              time.Time  `json:"updatedAt"`
}

func toIssueResponse(i *model.VendorIssue) issueResponse {
	return issueResponse{
		ID:                     i.ID,
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

func toIssueResponses(issues []*model.VendorIssue) []issueResponse {
	out := make([]issueResponse, 0, len(issues))
	for _, i := range issues {
		out = append(out, toIssueResponse(i))
	}
	return out
}

type signalResponse struct {
	ID             string     `json:"id"`
	VendorID       int64      `json:"vendorId"`
	MonitoringType string     `json:"monitoringType"`
	RiskLevel      string     `json:"riskLevel"`
	RiskIndicator  string     `json:"riskIndicator,omitempty"`
	CurrentValue   string     `json:"currentValue,omitempty"`
	PreviousValue  string     `json:"previousValue,omitempty"`
	ChangeDetected bool       `json:"changeDetected"`
	RequiresAction bool       `json:"requiresAction"`
	ActionTaken    string     `json:"actionTaken,omitempty"`
	AcknowledgedBy string     `json:"acknowledgedBy,omitempty"`
	AcknowledgedAt *time.Time `json:"acknowledgedAt,omitempty"`
	ResolvedBy     string     `json:"resolvedBy,omitempty"`
	ResolvedAt     *time.Time `json:"resolvedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

func toSignalResponse(s *model.MonitoringSignal) signalResponse {
	return signalResponse{
		ID:             s.ID,
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

type scheduleEntryResponse struct {
	VendorID      int64      `json:"vendorId"`
	VendorName    string     `json:"vendorName"`
	Tier          string     `json:"tier"`
	CheckInterval string     `json:"checkInterval"`
	LastCheckedAt *time.Time `json:"lastCheckedAt,omitempty"`
	NextCheckAt   time.Time  `json:"nextCheckAt"`
	Due           bool       `json:"due"`
}

type appetiteResponse struct {
	Category              string    `json:"category"`
	RiskTolerance         float64   `json:"riskTolerance"`
	EarlyWarningThreshold float64   `json:"earlyWarningThreshold"`
	CurrentRiskLevel      float64   `json:"currentRiskLevel"`
	BreachStatus          string    `json:"breachStatus"`
	EvaluatedAt           time.Time `json:"evaluatedAt"`
}

func toAppetiteResponses(appetites []*model.RiskAppetite) []appetiteResponse {
	out := make([]appetiteResponse, 0, len(appetites))
	for _, a := range appetites {
		out = append(out, appetiteResponse{
			Category:              a.Category,
			RiskTolerance:         a.RiskTolerance,
			EarlyWarningThreshold: a.EarlyWarningThreshold,
			CurrentRiskLevel:      a.CurrentRiskLevel,
			BreachStatus:          a.BreachStatus.String(),
			EvaluatedAt:           a.EvaluatedAt,
		})
	}
	return out
}

type auditEntryResponse struct {
	ID         string            `json:"id"`
	Actor      string            `json:"actor"`
	Action     string            `json:"action"`
	EntityType string            `json:"entityType,omitempty"`
	EntityID   string            `json:"entityId,omitempty"`
	Detail     map[string]string `json:"detail,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
}
