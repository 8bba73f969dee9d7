package gormdb

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/trm-lab/argus/pkg/domain/interfaces"
	"github.com/trm-lab/argus/pkg/domain/model"
	"gorm.io/gorm"
)

type monitoringRepository struct {
	db *gorm.DB
}

var _ interfaces.MonitoringRepository = &monitoringRepository{}

func (r *monitoringRepository) Create(ctx context.Context, orgID string, signal *model.MonitoringSignal) (*model.MonitoringSignal, error) {
	rec := toSignalRecord(orgID, signal)
	rec.CreatedAt = time.Now().UTC()

	if err := conn(ctx, r.db).Create(rec).Error; err != nil {
		return nil, normalize(err, "failed to create signal", goerr.V("id", signal.ID))
	}
	return rec.toModel(), nil
}

func (r *monitoringRepository) Get(ctx context.Context, orgID string, id string) (*model.MonitoringSignal, error) {
	var rec signalRecord
	err := conn(ctx, r.db).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&rec).Error
	if err != nil {
		return nil, normalize(err, "failed to get signal", goerr.V("id", id))
	}
	return rec.toModel(), nil
}

func (r *monitoringRepository) Update(ctx context.Context, orgID string, signal *model.MonitoringSignal) (*model.MonitoringSignal, error) {
	var existing signalRecord
	err := conn(ctx, r.db).
		Where("org_id = ? AND id = ?", orgID, signal.ID).
		First(&existing).Error
	if err != nil {
		return nil, normalize(err, "failed to get signal for update", goerr.V("id", signal.ID))
	}

	rec := toSignalRecord(orgID, signal)
	rec.CreatedAt = existing.CreatedAt

	if err := conn(ctx, r.db).Save(rec).Error; err != nil {
		return nil, normalize(err, "failed to update signal", goerr.V("id", signal.ID))
	}
	return rec.toModel(), nil
}

func (r *monitoringRepository) ListByVendor(ctx context.Context, orgID string, vendorID int64) ([]*model.MonitoringSignal, error) {
	var recs []signalRecord
	err := conn(ctx, r.db).
		Where("org_id = ? AND vendor_id = ?", orgID, vendorID).
		Order("created_at DESC").
		Find(&recs).Error
	if err != nil {
		return nil, normalize(err, "failed to list signals", goerr.V("vendorID", vendorID))
	}

	signals := make([]*model.MonitoringSignal, 0, len(recs))
	for i := range recs {
		signals = append(signals, recs[i].toModel())
	}
	return signals, nil
}
