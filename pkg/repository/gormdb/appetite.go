package gormdb

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/trm-lab/argus/pkg/domain/interfaces"
	"github.com/trm-lab/argus/pkg/domain/model"
	"gorm.io/gorm"
)

type appetiteRepository struct {
	db *gorm.DB
}

var _ interfaces.AppetiteRepository = &appetiteRepository{}

func (r *appetiteRepository) Upsert(ctx context.Context, orgID string, appetite *model.RiskAppetite) (*model.RiskAppetite, error) {
	db := conn(ctx, r.db)
	now := time.Now().UTC()

	var existing appetiteRecord
	err := db.Where("org_id = ? AND category = ?", orgID, appetite.Category).First(&existing).Error
	if err != nil && !isNotFound(err) {
		return nil, normalize(err, "failed to look up risk appetite", goerr.V("category", appetite.Category))
	}

	rec := toAppetiteRecord(orgID, appetite)
	if isNotFound(err) {
		rec.ID = 0
		rec.CreatedAt = now
	} else {
		rec.ID = existing.ID
		rec.CreatedAt = existing.CreatedAt
	}
	rec.UpdatedAt = now

	if err := db.Save(rec).Error; err != nil {
		return nil, normalize(err, "failed to upsert risk appetite", goerr.V("category", appetite.Category))
	}
	return rec.toModel(), nil
}

func (r *appetiteRepository) Get(ctx context.Context, orgID string, category string) (*model.RiskAppetite, error) {
	var rec appetiteRecord
	err := conn(ctx, r.db).
		Where("org_id = ? AND category = ?", orgID, category).
		First(&rec).Error
	if err != nil {
		return nil, normalize(err, "failed to get risk appetite", goerr.V("category", category))
	}
	return rec.toModel(), nil
}

func (r *appetiteRepository) List(ctx context.Context, orgID string) ([]*model.RiskAppetite, error) {
	var recs []appetiteRecord
	err := conn(ctx, r.db).
		Where("org_id = ?", orgID).
		Order("category ASC").
		Find(&recs).Error
	if err != nil {
		return nil, normalize(err, "failed to list risk appetites")
	}

	appetites := make([]*model.RiskAppetite, 0, len(recs))
	for i := range recs {
		appetites = append(appetites, recs[i].toModel())
	}
	return appetites, nil
}

func (r *appetiteRepository) CreateBreach(ctx context.Context, orgID string, breach *model.RiskAppetiteBreach) (*model.RiskAppetiteBreach, error) {
	rec := toBreachRecord(orgID, breach)
	rec.ID = 0
	rec.CreatedAt = time.Now().UTC()

	if err := conn(ctx, r.db).Create(rec).Error; err != nil {
		return nil, normalize(err, "failed to create breach record", goerr.V("category", breach.Category))
	}
	return rec.toModel(), nil
}

func (r *appetiteRepository) ListBreaches(ctx context.Context, orgID string) ([]*model.RiskAppetiteBreach, error) {
	var recs []breachRecord
	err := conn(ctx, r.db).
		Where("org_id = ?", orgID).
		Order("created_at DESC").
		Find(&recs).Error
	if err != nil {
		return nil, normalize(err, "failed to list breach records")
	}

	breaches := make([]*model.RiskAppetiteBreach, 0, len(recs))
	for i := range recs {
		breaches = append(breaches, recs[i].toModel())
	}
	return breaches, nil
}
