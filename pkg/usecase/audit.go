package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/trm-lab/argus/pkg/domain/interfaces"
	"github.com/trm-lab/argus/pkg/domain/model"
	"github.com/trm-lab/argus/pkg/domain/types"
)

// AuditUseCase exposes the append-only audit trail for review
type AuditUseCase struct {
	repo interfaces.Repository
}

func (uc *AuditUseCase) List(ctx context.Context, orgID string, filter model.AuditFilter) ([]*model.AuditEntry, error) {
	if err := requirePermission(ctx, types.PermViewAuditTrail); err != nil {
		return nil, err
	}

	entries, err := uc.repo.Audit().List(ctx, orgID, filter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list audit entries")
	}
	return entries, nil
}
