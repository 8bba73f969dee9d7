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

type vendorRepository struct {
	mu      sync.RWMutex
	vendors map[string]map[int64]*model.Vendor
	nextID  map[string]int64
}

func newVendorRepository() *vendorRepository {
	return &vendorRepository{
		vendors: make(map[string]map[int64]*model.Vendor),
		nextID:  make(map[string]int64),
	}
}

func (r *vendorRepository) ensureOrg(orgID string) {
	if _, exists := r.vendors[orgID]; !exists {
		r.vendors[orgID] = make(map[int64]*model.Vendor)
	}
	if _, exists := r.nextID[orgID]; !exists {
		r.nextID[orgID] = 1
	}
}

func copyVendor(v *model.Vendor) *model.Vendor {
	copied := *v
	copied.SensitiveDataTypes = append([]string(nil), v.SensitiveDataTypes...)
	copied.GeographicFootprint = append([]string(nil), v.GeographicFootprint...)
	copied.LastCheckedAt = copyTime(v.LastCheckedAt)
	copied.OnboardedAt = copyTime(v.OnboardedAt)
	copied.TerminatedAt = copyTime(v.TerminatedAt)
	return &copied
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func (r *vendorRepository) Create(ctx context.Context, orgID string, v *model.Vendor) (*model.Vendor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ensureOrg(orgID)

	now := time.Now().UTC()
	created := copyVendor(v)
	created.ID = r.nextID[orgID]
	created.CreatedAt = now
	created.UpdatedAt = now
	r.nextID[orgID]++

	r.vendors[orgID][created.ID] = created
	return copyVendor(created), nil
}

func (r *vendorRepository) Get(ctx context.Context, orgID string, id int64) (*model.Vendor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	org, exists := r.vendors[orgID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "vendor not found", goerr.V("id", id))
	}

	v, exists := org[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "vendor not found", goerr.V("id", id))
	}

	return copyVendor(v), nil
}

func (r *vendorRepository) List(ctx context.Context, orgID string, opts ...interfaces.ListVendorOption) ([]*model.Vendor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var filter interfaces.ListVendorFilter
	for _, opt := range opts {
		opt(&filter)
	}

	org, exists := r.vendors[orgID]
	if !exists {
		return []*model.Vendor{}, nil
	}

	result := make([]*model.Vendor, 0, len(org))
	for _, v := range org {
		if !matchVendor(v, &filter) {
			continue
		}
		result = append(result, copyVendor(v))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result, nil
}

func matchVendor(v *model.Vendor, filter *interfaces.ListVendorFilter) bool {
	if filter.Category != "" && v.Category != filter.Category {
		return false
	}
	if len(filter.Statuses) == 0 {
		return true
	}
	for _, s := range filter.Statuses {
		if v.Status == s {
			return true
		}
	}
	return false
}

func (r *vendorRepository) Update(ctx context.Context, orgID string, v *model.Vendor) (*model.Vendor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	org, exists := r.vendors[orgID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "vendor not found", goerr.V("id", v.ID))
	}

	existing, exists := org[v.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "vendor not found", goerr.V("id", v.ID))
	}

	updated := copyVendor(v)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	org[v.ID] = updated

	return copyVendor(updated), nil
}

func (r *vendorRepository) Delete(ctx context.Context, orgID string, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	org, exists := r.vendors[orgID]
	if !exists {
		return goerr.Wrap(ErrNotFound, "vendor not found", goerr.V("id", id))
	}

	if _, exists := org[id]; !exists {
		return goerr.Wrap(ErrNotFound, "vendor not found", goerr.V("id", id))
	}

	delete(org, id)
	return nil
}

var _ interfaces.VendorRepository = &vendorRepository{}
