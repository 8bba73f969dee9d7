package model

import (
	"time"

	"github.com/trm-lab/argus/pkg/domain/types"
)

// VendorIssue tracks a discovered vendor problem through the remediation
// lifecycle. The lifecycle is strictly forward except that a rejected
// validation sends the issue back to IN_PROGRESS.
type VendorIssue struct {
	ID                     int64
	VendorID               int64
	Title                  string
	Description            string
	IssueType              types.IssueType
	Severity               types.IssueSeverity
	Status                 types.IssueStatus
	Priority               types.IssuePriority
	CorrectiveActionPlan   string
	TargetRemediationDate  *time.Time
	ActualRemediationDate  *time.Time
	RemediationEvidenceURL string
	ValidatedBy            string
	ValidatedAt            *time.Time
	ClosureNotes           string
	EscalatedBy            string
	SourceSignalID         string
	ReportedBy             string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// IsOverdue reports whether the issue missed its remediation target while
// still in a remediable state.
func (i *VendorIssue) IsOverdue(now time.Time) bool {
	if !i.Status.IsRemediable() {
		return false
	}
	if i.TargetRemediationDate == nil {
		return false
	}
	return i.TargetRemediationDate.Before(now)
}
