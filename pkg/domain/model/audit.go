package model

import "time"

// AuditEntry is one append-only record of a mutating operation. Entries
// are written inside the same transaction as the mutation they describe.
type AuditEntry struct {
	ID         string
	Actor      string
	Action     string
	EntityType string
	EntityID   string
	Detail     map[string]string
	CreatedAt  time.Time
}

// Audit actions recorded by the platform
const (
	AuditWorkflowCreated   = "workflow.created"
	AuditDecisionSubmitted = "workflow.decision"
	AuditWorkflowCancelled = "workflow.cancelled"
	AuditVendorCreated     = "vendor.created"
	AuditVendorUpdated     = "vendor.updated"
	AuditVendorAssessed    = "vendor.assessed"
	AuditIssueOpened       = "issue.opened"
	AuditIssueUpdated      = "issue.updated"
	AuditSignalRecorded    = "monitoring.signal"
	AuditBreachRecorded    = "appetite.breach"
)

// AuditFilter narrows audit listing
type AuditFilter struct {
	EntityType string
	EntityID   string
	Actor      string
	Limit      int
}
