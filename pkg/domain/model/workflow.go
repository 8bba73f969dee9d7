package model

import (
	"time"

	"github.com/trm-lab/argus/pkg/domain/types"
)

// ApprovalWorkflow is a multi-step approval chain over a vendor action.
// Steps are ordered 1..N and immutable once created; CurrentStep points
// at the next step expected to decide.
type ApprovalWorkflow struct {
	ID                    int64
	VendorID              int64
	WorkflowType          types.WorkflowType
	Status                types.WorkflowStatus
	CurrentStep           int
	InitiatedBy           string
	BusinessJustification string
	RiskAssessmentSummary string
	CancelledBy           string
	CancelReason          string
	InitiatedAt           time.Time
	CompletedAt           *time.Time
	Steps                 []*ApprovalStep
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// StepByOrder returns the step with the given order, or nil
func (w *ApprovalWorkflow) StepByOrder(order int) *ApprovalStep {
	for _, s := range w.Steps {
		if s.StepOrder == order {
			return s
		}
	}
	return nil
}

// LastStepOrder returns the order of the final step in the chain
func (w *ApprovalWorkflow) LastStepOrder() int {
	last := 0
	for _, s := range w.Steps {
		if s.StepOrder > last {
			last = s.StepOrder
		}
	}
	return last
}

// ApprovalStep is a single approver slot in a workflow chain. Decision is
// write-once: once non-nil it can never be resubmitted.
type ApprovalStep struct {
	ID               int64
	WorkflowID       int64
	StepOrder        int
	ApproverRole     types.Role
	ApproverUserID   string
	ApproverName     string
	Decision         *types.Decision
	DecidedBy        string
	DecidedAt        *time.Time
	Comments         string
	Conditions       []string
	DigitalSignature string
	IPAddress        string
	UserAgent        string
	RequiredAt       time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsDecided reports whether the step already carries a decision
func (s *ApprovalStep) IsDecided() bool {
	return s.Decision != nil
}

// PendingApproval is an inbox entry: an undecided step of an active
// workflow assigned to a specific user.
type PendingApproval struct {
	Workflow *ApprovalWorkflow
	Step     *ApprovalStep
}

// WorkflowStatistics aggregates workflow outcomes for reporting
type WorkflowStatistics struct {
	Total                   int
	ByStatus                map[types.WorkflowStatus]int
	ApprovalRate            float64
	RejectionRate           float64
	AverageApprovalTimeDays float64
}
