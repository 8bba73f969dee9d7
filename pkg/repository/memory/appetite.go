package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/trm-lab/argus/pkg/domain/interfaces"
	"github.com/trm-lab/argus/pkg/domain/model"
)

type appetiteRepository struct {
	mu           sync.RWMutex
	appetites    map[string]map[string]*model.RiskAppetite
	breaches     map[string][]*model.RiskAppetiteBreach
	nextID       map[string]int64
	nextBreachID map[string]int64
}

func newAppetiteRepository() *appetiteRepository {
	return &appetiteRepository{
		appetites:    make(map[string]map[string]*model.RiskAppetite),
		breaches:     make(map[string][]*model.RiskAppetiteBreach),
		nextID:       make(map[string]int64),
		nextBreachID: make(map[string]int64),
	}
}

func copyAppetite(a *model.RiskAppetite) *model.RiskAppetite {
	copied := *a
	return &copied
}

func copyBreach(b *model.RiskAppetiteBreach) *model.RiskAppetiteBreach {
	copied := *b
	copied.ContributingFactors = append([]string(nil), b.ContributingFactors...)
	copied.ResolvedAt = copyTime(b.ResolvedAt)
	return &copied
}

func (r *appetiteRepository) Upsert(ctx context.Context, orgID string, appetite *model.RiskAppetite) (*model.RiskAppetite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.appetites[orgID]; !exists {
		r.appetites[orgID] = make(map[string]*model.RiskAppetite)
		r.nextID[orgID] = 1
	}

	now := time.Now().UTC()
	stored := copyAppetite(appetite)

	if existing, exists := r.appetites[orgID][appetite.Category]; exists {
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.ID = r.nextID[orgID]
		stored.CreatedAt = now
		r.nextID[orgID]++
	}
	stored.UpdatedAt = now

	r.appetites[orgID][appetite.Category] = stored
	return copyAppetite(stored), nil
}

func (r *appetiteRepository) Get(ctx context.Context, orgID string, category string) (*model.RiskAppetite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	org, exists := r.appetites[orgID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "risk appetite not found", goerr.V("category", category))
	}

	a, exists := org[category]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "risk appetite not found", goerr.V("category", category))
	}

	return copyAppetite(a), nil
}

func (r *appetiteRepository) List(ctx context.Context, orgID string) ([]*model.RiskAppetite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	org, exists := r.appetites[orgID]
	if !exists {
		return []*model.RiskAppetite{}, nil
	}

	result := make([]*model.RiskAppetite, 0, len(org))
	for _, a := range org {
		result = append(result, copyAppetite(a))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Category < result[j].Category
	})

	return result, nil
}

func (r *appetiteRepository) CreateBreach(ctx context.Context, orgID string, breach *model.RiskAppetiteBreach) (*model.RiskAppetiteBreach, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.nextBreachID[orgID]; !exists {
		r.nextBreachID[orgID] = 1
	}

	created := copyBreach(breach)
	created.ID = r.nextBreachID[orgID]
	created.CreatedAt = time.Now().UTC()
	r.nextBreachID[orgID]++

	r.breaches[orgID] = append(r.breaches[orgID], created)
	return copyBreach(created), nil
}

func (r *appetiteRepository) ListBreaches(ctx context.Context, orgID string) ([]*model.RiskAppetiteBreach, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	breaches := r.breaches[orgID]
	result := make([]*model.RiskAppetiteBreach, 0, len(breaches))
	for _, b := range breaches {
		result = append(result, copyBreach(b))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

var _ interfaces.AppetiteRepository = &appetiteRepository{}
