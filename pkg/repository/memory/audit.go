package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/trm-lab/argus/pkg/domain/interfaces"
	"github.com/trm-lab/argus/pkg/domain/model"
)

type auditRepository struct {
	mu      sync.RWMutex
	entries map[string][]*model.AuditEntry
}

func newAuditRepository() *auditRepository {
	return &auditRepository{
		entries: make(map[string][]*model.AuditEntry),
	}
}

func copyAuditEntry(e *model.AuditEntry) *model.AuditEntry {
	copied := *e
	if e.Detail != nil {
		copied.Detail = make(map[string]string, len(e.Detail))
		for k, v := range e.Detail {
			copied.Detail[k] = v
		}
	}
	return &copied
}

func (r *auditRepository) Append(ctx context.Context, orgID string, entry *model.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := copyAuditEntry(entry)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	r.entries[orgID] = append(r.entries[orgID], stored)
	return nil
}

func (r *auditRepository) List(ctx context.Context, orgID string, filter model.AuditFilter) ([]*model.AuditEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.AuditEntry, 0)
	for _, e := range r.entries[orgID] {
		if filter.EntityType != "" && e.EntityType != filter.EntityType {
			continue
		}
		if filter.EntityID != "" && e.EntityID != filter.EntityID {
			continue
		}
		if filter.Actor != "" && e.Actor != filter.Actor {
			continue
		}
		result = append(result, copyAuditEntry(e))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}

	return result, nil
}

var _ interfaces.AuditRepository = &auditRepository{}
