package gormdb

import (
	"context"
	"time"

	"github.com/trm-lab/argus/pkg/domain/interfaces"
	"github.com/trm-lab/argus/pkg/domain/model"
	"gorm.io/gorm"
)

type auditRepository struct {
	db *gorm.DB
}

var _ interfaces.AuditRepository = &auditRepository{}

func (r *auditRepository) Append(ctx context.Context, orgID string, entry *model.AuditEntry) error {
	rec := toAuditRecord(orgID, entry)
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	if err := conn(ctx, r.db).Create(rec).Error; err != nil {
		return normalize(err, "failed to append audit entry")
	}
	return nil
}

func (r *auditRepository) List(ctx context.Context, orgID string, filter model.AuditFilter) ([]*model.AuditEntry, error) {
	q := conn(ctx, r.db).Where("org_id = ?", orgID)
	if filter.EntityType != "" {
		q = q.Where("entity_type = ?", filter.EntityType)
	}
	if filter.EntityID != "" {
		q = q.Where("entity_id = ?", filter.EntityID)
	}
	if filter.Actor != "" {
		q = q.Where("actor = ?", filter.Actor)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var recs []auditRecord
	if err := q.Order("created_at DESC").Find(&recs).Error; err != nil {
		return nil, normalize(err, "failed to list audit entries")
	}

	entries := make([]*model.AuditEntry, 0, len(recs))
	for i := range recs {
		entries = append(entries, recs[i].toModel())
	}
	return entries, nil
}
