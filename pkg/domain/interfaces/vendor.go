package interfaces

import (
	"context"

	"github.com/trm-lab/argus/pkg/domain/model"
	"github.com/trm-lab/argus/pkg/domain/types"
)

// ListVendorOption narrows vendor listing
type ListVendorOption func(*ListVendorFilter)

// ListVendorFilter is the materialized option set
type ListVendorFilter struct {
	Statuses []types.VendorStatus
	Category string
}

// WithStatuses restricts the listing to the given lifecycle statuses
func WithStatuses(statuses ...types.VendorStatus) ListVendorOption {
	return func(f *ListVendorFilter) {
		f.Statuses = statuses
	}
}

// WithCategory restricts the listing to one vendor category
func WithCategory(category string) ListVendorOption {
	return func(f *ListVendorFilter) {
		f.Category = category
	}
}

// VendorRepository defines organization-scoped vendor data access
type VendorRepository interface {
	// Create creates a new vendor with auto-generated ID
	Create(ctx context.Context, orgID string, v *model.Vendor) (*model.Vendor, error)

	// Get retrieves a vendor by ID
	Get(ctx context.Context, orgID string, id int64) (*model.Vendor, error)

	// List retrieves vendors with optional filtering
	List(ctx context.Context, orgID string, opts ...ListVendorOption) ([]*model.Vendor, error)

	// Update updates an existing vendor
	Update(ctx context.Context, orgID string, v *model.Vendor) (*model.Vendor, error)

	// Delete deletes a vendor by ID
	Delete(ctx context.Context, orgID string, id int64) error
}
