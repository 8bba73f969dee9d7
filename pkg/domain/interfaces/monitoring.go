package interfaces

import (
	"context"

	"github.com/trm-lab/argus/pkg/domain/model"
)

// MonitoringRepository defines organization-scoped monitoring signal
// data access
type MonitoringRepository interface {
	// Create persists a new signal (ID assigned by the caller)
	Create(ctx context.Context, orgID string, signal *model.MonitoringSignal) (*model.MonitoringSignal, error)

	// Get retrieves a signal by ID
	Get(ctx context.Context, orgID string, id string) (*model.MonitoringSignal, error)

	// Update persists annotation fields (acknowledgement, resolution)
	Update(ctx context.Context, orgID string, signal *model.MonitoringSignal) (*model.MonitoringSignal, error)

	// ListByVendor retrieves signals for one vendor, newest first
	ListByVendor(ctx context.Context, orgID string, vendorID int64) ([]*model.MonitoringSignal, error)
}
