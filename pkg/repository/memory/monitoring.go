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

type monitoringRepository struct {
	mu      sync.RWMutex
	signals map[string]map[string]*model.MonitoringSignal
}

func newMonitoringRepository() *monitoringRepository {
	return &monitoringRepository{
		signals: make(map[string]map[string]*model.MonitoringSignal),
	}
}

func copySignal(s *model.MonitoringSignal) *model.MonitoringSignal {
	copied := *s
	copied.AcknowledgedAt = copyTime(s.AcknowledgedAt)
	copied.ResolvedAt = copyTime(s.ResolvedAt)
	return &copied
}

func (r *monitoringRepository) Create(ctx context.Context, orgID string, signal *model.MonitoringSignal) (*model.MonitoringSignal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.signals[orgID]; !exists {
		r.signals[orgID] = make(map[string]*model.MonitoringSignal)
	}

	created := copySignal(signal)
	created.CreatedAt = time.Now().UTC()

	r.signals[orgID][created.ID] = created
	return copySignal(created), nil
}

func (r *monitoringRepository) Get(ctx context.Context, orgID string, id string) (*model.MonitoringSignal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	org, exists := r.signals[orgID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "signal not found", goerr.V("id", id))
	}

	s, exists := org[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "signal not found", goerr.V("id", id))
	}

	return copySignal(s), nil
}

func (r *monitoringRepository) Update(ctx context.Context, orgID string, signal *model.MonitoringSignal) (*model.MonitoringSignal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	org, exists := r.signals[orgID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "signal not found", goerr.V("id", signal.ID))
	}

	existing, exists := org[signal.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "signal not found", goerr.V("id", signal.ID))
	}

	updated := copySignal(signal)
	updated.CreatedAt = existing.CreatedAt
	org[signal.ID] = updated

	return copySignal(updated), nil
}

func (r *monitoringRepository) ListByVendor(ctx context.Context, orgID string, vendorID int64) ([]*model.MonitoringSignal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	org, exists := r.signals[orgID]
	if !exists {
		return []*model.MonitoringSignal{}, nil
	}

	result := make([]*model.MonitoringSignal, 0)
	for _, s := range org {
		if s.VendorID == vendorID {
			result = append(result, copySignal(s))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

var _ interfaces.MonitoringRepository = &monitoringRepository{}
