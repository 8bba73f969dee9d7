package types

import "fmt"

// IssueSeverity represents the severity of a vendor issue
type IssueSeverity string

const (
	SeverityCritical IssueSeverity = "CRITICAL"
	SeverityHigh     IssueSeverity = "HIGH"
	SeverityMedium   IssueSeverity = "MEDIUM"
	SeverityLow      IssueSeverity = "LOW"
)

// AllIssueSeverities returns all valid issue severities
func AllIssueSeverities() []IssueSeverity {
	return []IssueSeverity{
		SeverityCritical,
		SeverityHigh,
		SeverityMedium,
		SeverityLow,
	}
}

// IsValid checks if the issue severity is valid
func (s IssueSeverity) IsValid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	default:
		return false
	}
}

// String returns the string representation of the issue severity
func (s IssueSeverity) String() string {
	return string(s)
}

// ParseIssueSeverity parses a string into an IssueSeverity
func ParseIssueSeverity(s string) (IssueSeverity, error) {
	sev := IssueSeverity(s)
	if !sev.IsValid() {
		return "", fmt.Errorf("invalid issue severity: %s", s)
	}
	return sev, nil
}

// IssueStatus represents the remediation lifecycle state of a vendor issue
type IssueStatus string

const (
	IssueStatusOpen              IssueStatus = "OPEN"
	IssueStatusInProgress        IssueStatus = "IN_PROGRESS"
	IssueStatusPendingValidation IssueStatus = "PENDING_VALIDATION"
	IssueStatusResolved          IssueStatus = "RESOLVED"
	IssueStatusClosed            IssueStatus = "CLOSED"
	IssueStatusRiskAccepted      IssueStatus = "RISK_ACCEPTED"
	IssueStatusEscalated         IssueStatus = "ESCALATED"
)

// AllIssueStatuses returns all valid issue statuses
func AllIssueStatuses() []IssueStatus {
	return []IssueStatus{
		IssueStatusOpen,
		IssueStatusInProgress,
		IssueStatusPendingValidation,
		IssueStatusResolved,
		IssueStatusClosed,
		IssueStatusRiskAccepted,
		IssueStatusEscalated,
	}
}

// IsValid checks if the issue status is valid
func (s IssueStatus) IsValid() bool {
	switch s {
	case IssueStatusOpen,
		IssueStatusInProgress,
		IssueStatusPendingValidation,
		IssueStatusResolved,
		IssueStatusClosed,
		IssueStatusRiskAccepted,
		IssueStatusEscalated:
		return true
	default:
		return false
	}
}

// String returns the string representation of the issue status
func (s IssueStatus) String() string {
	return string(s)
}

// ParseIssueStatus parses a string into an IssueStatus
func ParseIssueStatus(s string) (IssueStatus, error) {
	status := IssueStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid issue status: %s", s)
	}
	return status, nil
}

// IsTerminal reports whether the issue can no longer be mutated
func (s IssueStatus) IsTerminal() bool {
	return s == IssueStatusClosed || s == IssueStatusRiskAccepted
}

// IsRemediable reports whether the issue counts toward overdue detection
func (s IssueStatus) IsRemediable() bool {
	return s == IssueStatusOpen || s == IssueStatusInProgress
}

// IssuePriority represents the handling priority of a vendor issue
type IssuePriority string

const (
	PriorityLow    IssuePriority = "LOW"
	PriorityMedium IssuePriority = "MEDIUM"
	PriorityHigh   IssuePriority = "HIGH"
	PriorityUrgent IssuePriority = "URGENT"
)

// IsValid checks if the issue priority is valid
func (p IssuePriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

// String returns the string representation of the issue priority
func (p IssuePriority) String() string {
	return string(p)
}

// IssueType categorizes the origin domain of a vendor issue
type IssueType string

const (
	IssueTypeSecurity     IssueType = "SECURITY"
	IssueTypeCompliance   IssueType = "COMPLIANCE"
	IssueTypeOperational  IssueType = "OPERATIONAL"
	IssueTypeFinancial    IssueType = "FINANCIAL"
	IssueTypeReputational IssueType = "REPUTATIONAL"
	IssueTypeContractual  IssueType = "CONTRACTUAL"
)

// IsValid checks if the issue type is valid
func (t IssueType) IsValid() bool {
	switch t {
	case IssueTypeSecurity,
		IssueTypeCompliance,
		IssueTypeOperational,
		IssueTypeFinancial,
		IssueTypeReputational,
		IssueTypeContractual:
		return true
	default:
		return false
	}
}

// String returns the string representation of the issue type
func (t IssueType) String() string {
	return string(t)
}
