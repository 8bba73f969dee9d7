package interfaces

import (
	"context"

	"github.com/trm-lab/argus/pkg/domain/model"
)

// AuditRepository defines the organization-scoped append-only audit trail
type AuditRepository interface {
	// Append records one audit entry
	Append(ctx context.Context, orgID string, entry *model.AuditEntry) error

	// List retrieves audit entries matching the filter, newest first
	List(ctx context.Context, orgID string, filter model.AuditFilter) ([]*model.AuditEntry, error)
}
