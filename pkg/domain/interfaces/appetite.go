package interfaces

import (
	"context"

	"github.com/trm-lab/argus/pkg/domain/model"
)

// AppetiteRepository defines organization-scoped risk appetite state and
// breach records
type AppetiteRepository interface {
	// Upsert creates or replaces the evaluated appetite row for a
	// category
	Upsert(ctx context.Context, orgID string, appetite *model.RiskAppetite) (*model.RiskAppetite, error)

	// Get retrieves the appetite row for a category
	Get(ctx context.Context, orgID string, category string) (*model.RiskAppetite, error)

	// List retrieves all appetite rows
	List(ctx context.Context, orgID string) ([]*model.RiskAppetite, error)

	// CreateBreach persists a point-in-time breach record
	CreateBreach(ctx context.Context, orgID string, breach *model.RiskAppetiteBreach) (*model.RiskAppetiteBreach, error)

	// ListBreaches retrieves breach records, newest first
	ListBreaches(ctx context.Context, orgID string) ([]*model.RiskAppetiteBreach, error)
}
