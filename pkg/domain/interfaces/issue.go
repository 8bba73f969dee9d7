package interfaces

import (
	"context"
	"time"

	"github.com/trm-lab/argus/pkg/domain/model"
	"github.com/trm-lab/argus/pkg/domain/types"
)

// IssueRepository defines organization-scoped vendor issue data access
type IssueRepository interface {
	// Create creates a new issue with auto-generated ID
	Create(ctx context.Context, orgID string, issue *model.VendorIssue) (*model.VendorIssue, error)

	// Get retrieves an issue by ID
	Get(ctx context.Context, orgID string, id int64) (*model.VendorIssue, error)

	// Update updates an existing issue
	Update(ctx context.Context, orgID string, issue *model.VendorIssue) (*model.VendorIssue, error)

	// ListByVendor retrieves all issues for a vendor
	ListByVendor(ctx context.Context, orgID string, vendorID int64) ([]*model.VendorIssue, error)

	// ListByStatus retrieves issues in any of the given statuses
	ListByStatus(ctx context.Context, orgID string, statuses ...types.IssueStatus) ([]*model.VendorIssue, error)

	// ListOverdue retrieves remediable issues whose target remediation
	// date lies before the given time
	ListOverdue(ctx context.Context, orgID string, now time.Time) ([]*model.VendorIssue, error)
}
