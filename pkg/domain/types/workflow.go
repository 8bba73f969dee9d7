package types

import "fmt"

// WorkflowType represents the vendor action an approval workflow governs
type WorkflowType string

const (
	WorkflowOnboarding          WorkflowType = "ONBOARDING"
	WorkflowContractRenewal     WorkflowType = "CONTRACT_RENEWAL"
	WorkflowTierChange          WorkflowType = "TIER_CHANGE"
	WorkflowReassessment        WorkflowType = "REASSESSMENT_APPROVAL"
	WorkflowRiskAcceptance      WorkflowType = "RISK_ACCEPTANCE"
	WorkflowTermination         WorkflowType = "TERMINATION"
	WorkflowFourthPartyApproval WorkflowType = "FOURTH_PARTY_APPROVAL"
)

// AllWorkflowTypes returns all valid workflow types
func AllWorkflowTypes() []WorkflowType {
	return []WorkflowType{
		WorkflowOnboarding,
		WorkflowContractRenewal,
		WorkflowTierChange,
		WorkflowReassessment,
		WorkflowRiskAcceptance,
		WorkflowTermination,
		WorkflowFourthPartyApproval,
	}
}

// IsValid checks if the workflow type is valid
func (t WorkflowType) IsValid() bool {
	switch t {
	case WorkflowOnboarding,
		WorkflowContractRenewal,
		WorkflowTierChange,
		WorkflowReassessment,
		WorkflowRiskAcceptance,
		WorkflowTermination,
		WorkflowFourthPartyApproval:
		return true
	default:
		return false
	}
}

// String returns the string representation of the workflow type
func (t WorkflowType) String() string {
	return string(t)
}

// ParseWorkflowType parses a string into a WorkflowType
func ParseWorkflowType(s string) (WorkflowType, error) {
	wt := WorkflowType(s)
	if !wt.IsValid() {
		return "", fmt.Errorf("invalid workflow type: %s", s)
	}
	return wt, nil
}

// WorkflowStatus represents the state of an approval workflow
type WorkflowStatus string

const (
	WorkflowStatusPending    WorkflowStatus = "PENDING"
	WorkflowStatusInProgress WorkflowStatus = "IN_PROGRESS"
	WorkflowStatusApproved   WorkflowStatus = "APPROVED"
	WorkflowStatusRejected   WorkflowStatus = "REJECTED"
	WorkflowStatusEscalated  WorkflowStatus = "ESCALATED"
	WorkflowStatusCancelled  WorkflowStatus = "CANCELLED"
)

// AllWorkflowStatuses returns all valid workflow statuses
func AllWorkflowStatuses() []WorkflowStatus {
	return []WorkflowStatus{
		WorkflowStatusPending,
		WorkflowStatusInProgress,
		WorkflowStatusApproved,
		WorkflowStatusRejected,
		WorkflowStatusEscalated,
		WorkflowStatusCancelled,
	}
}

// IsValid checks if the workflow status is valid
func (s WorkflowStatus) IsValid() bool {
	switch s {
	case WorkflowStatusPending,
		WorkflowStatusInProgress,
		WorkflowStatusApproved,
		WorkflowStatusRejected,
		WorkflowStatusEscalated,
		WorkflowStatusCancelled:
		return true
	default:
		return false
	}
}

// String returns the string representation of the workflow status
func (s WorkflowStatus) String() string {
	return string(s)
}

// ParseWorkflowStatus parses a string into a WorkflowStatus
func ParseWorkflowStatus(s string) (WorkflowStatus, error) {
	status := WorkflowStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid workflow status: %s", s)
	}
	return status, nil
}

// IsTerminal reports whether the workflow has reached a completed state.
// Terminal workflows reject any further decision or cancellation.
func (s WorkflowStatus) IsTerminal() bool {
	return s == WorkflowStatusApproved || s == WorkflowStatusRejected
}

// IsActive reports whether the workflow still expects approver decisions.
// Active workflows appear in approver inboxes.
func (s WorkflowStatus) IsActive() bool {
	return s == WorkflowStatusPending || s == WorkflowStatusInProgress
}
