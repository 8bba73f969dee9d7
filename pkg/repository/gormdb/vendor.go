package gormdb

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/trm-lab/argus/pkg/domain/interfaces"
	"github.com/trm-lab/argus/pkg/domain/model"
	"gorm.io/gorm"
)

type vendorRepository struct {
	db *gorm.DB
}

var _ interfaces.VendorRepository = &vendorRepository{}

func (r *vendorRepository) Create(ctx context.Context, orgID string, v *model.Vendor) (*model.Vendor, error) {
	rec := toVendorRecord(orgID, v)
	rec.ID = 0
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	if err := conn(ctx, r.db).Create(rec).Error; err != nil {
		return nil, normalize(err, "failed to create vendor", goerr.V("name", v.Name))
	}
	return rec.toModel(), nil
}

func (r *vendorRepository) Get(ctx context.Context, orgID string, id int64) (*model.Vendor, error) {
	var rec vendorRecord
	err := conn(ctx, r.db).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&rec).Error
	if err != nil {
		return nil, normalize(err, "failed to get vendor", goerr.V("id", id))
	}
	return rec.toModel(), nil
}

func (r *vendorRepository) List(ctx context.Context, orgID string, opts ...interfaces.ListVendorOption) ([]*model.Vendor, error) {
	var filter interfaces.ListVendorFilter
	for _, opt := range opts {
		opt(&filter)
	}

	q := conn(ctx, r.db).Where("org_id = ?", orgID)
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, s.String())
		}
		q = q.Where("status IN ?", statuses)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}

	var recs []vendorRecord
	if err := q.Order("id ASC").Find(&recs).Error; err != nil {
		return nil, normalize(err, "failed to list vendors")
	}

	vendors := make([]*model.Vendor, 0, len(recs))
	for i := range recs {
		vendors = append(vendors, recs[i].toModel())
	}
	return vendors, nil
}

func (r *vendorRepository) Update(ctx context.Context, orgID string, v *model.Vendor) (*model.Vendor, error) {
	var existing vendorRecord
	err := conn(ctx, r.db).
		Where("org_id = ? AND id = ?", orgID, v.ID).
		First(&existing).Error
	if err != nil {
		return nil, normalize(err, "failed to get vendor for update", goerr.V("id", v.ID))
	}

	rec := toVendorRecord(orgID, v)
	rec.CreatedAt = existing.CreatedAt
	rec.UpdatedAt = time.Now().UTC()

	if err := conn(ctx, r.db).Save(rec).Error; err != nil {
		return nil, normalize(err, "failed to update vendor", goerr.V("id", v.ID))
	}
	return rec.toModel(), nil
}

func (r *vendorRepository) Delete(ctx context.Context, orgID string, id int64) error {
	result := conn(ctx, r.db).
		Where("org_id = ? AND id = ?", orgID, id).
		Delete(&vendorRecord{})
	if result.Error != nil {
		return normalize(result.Error, "failed to delete vendor", goerr.V("id", id))
	}
	if result.RowsAffected == 0 {
		return goerr.Wrap(ErrNotFound, "vendor not found", goerr.V("id", id))
	}
	return nil
}
