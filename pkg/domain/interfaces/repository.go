package interfaces

import "context"

// Repository is the root aggregate of all persistence access. Every
// method on the sub-repositories is organization-scoped: cross-tenant
// reads or writes are a correctness bug, not just an access-control
// concern.
type Repository interface {
	Vendor() VendorRepository
	Workflow() WorkflowRepository
	Issue() IssueRepository
	Monitoring() MonitoringRepository
	Appetite() AppetiteRepository
	Audit() AuditRepository

	// InTx runs fn inside one all-or-nothing transaction boundary.
	// Returning an error rolls back; returning nil commits. Repository
	// calls made with the ctx passed to fn join the transaction.
	InTx(ctx context.Context, fn func(ctx context.Context) error) error

	Close() error
}
