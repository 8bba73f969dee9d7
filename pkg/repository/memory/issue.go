package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/trm-lab/argus/pkg/domain/interfaces"
	"github.com/trm-lab/argus/pkg/domain/model"
	"github.com/trm-lab/argus/pkg/domain/types"
)

type issueRepository struct {
	mu     sync.RWMutex
	issues map[string]map[int64]*model.VendorIssue
	nextID map[string]int64
}

func newIssueRepository() *issueRepository {
	return &issueRepository{
		issues: make(map[string]map[int64]*model.VendorIssue),
		nextID: make(map[string]int64),
	}
}

func (r *issueRepository) ensureOrg(orgID string) {
	if _, exists := r.issues[orgID]; !exists {
		r.issues[orgID] = make(map[int64]*model.VendorIssue)
	}
	if _, exists := r.nextID[orgID]; !exists {
		r.nextID[orgID] = 1
	}
}

func copyIssue(i *model.VendorIssue) *model.VendorIssue {
	copied := *i
	copied.TargetRemediationDate = copyTime(i.TargetRemediationDate)
	copied.ActualRemediationDate = copyTime(i.ActualRemediationDate)
	copied.ValidatedAt = copyTime(i.ValidatedAt)
	return &copied
}

func (r *issueRepository) Create(ctx context.Context, orgID string, issue *model.VendorIssue) (*model.VendorIssue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ensureOrg(orgID)

	now := time.Now().UTC()
	created := copyIssue(issue)
	created.ID = r.nextID[orgID]
	created.CreatedAt = now
	created.UpdatedAt = now
	r.nextID[orgID]++

	r.issues[orgID][created.ID] = created
	return copyIssue(created), nil
}

func (r *issueRepository) Get(ctx context.Context, orgID string, id int64) (*model.VendorIssue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	org, exists := r.issues[orgID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "issue not found", goerr.V("id", id))
	}

	issue, exists := org[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "issue not found", goerr.V("id", id))
	}

	return copyIssue(issue), nil
}

func (r *issueRepository) Update(ctx context.Context, orgID string, issue *model.VendorIssue) (*model.VendorIssue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	org, exists := r.issues[orgID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "issue not found", goerr.V("id", issue.ID))
	}

	existing, exists := org[issue.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "issue not found", goerr.V("id", issue.ID))
	}

	updated := copyIssue(issue)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	org[issue.ID] = updated

	return copyIssue(updated), nil
}

func (r *issueRepository) ListByVendor(ctx context.Context, orgID string, vendorID int64) ([]*model.VendorIssue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.list(orgID, func(i *model.VendorIssue) bool {
		return i.VendorID == vendorID
	}), nil
}

func (r *issueRepository) ListByStatus(ctx context.Context, orgID string, statuses ...types.IssueStatus) ([]*model.VendorIssue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.list(orgID, func(i *model.VendorIssue) bool {
		for _, s := range statuses {
			if i.Status == s {
				return true
			}
		}
		return false
	}), nil
}

func (r *issueRepository) ListOverdue(ctx context.Context, orgID string, now time.Time) ([]*model.VendorIssue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.list(orgID, func(i *model.VendorIssue) bool {
		return i.IsOverdue(now)
	}), nil
}

func (r *issueRepository) list(orgID string, match func(*model.VendorIssue) bool) []*model.VendorIssue {
	org, exists := r.issues[orgID]
	if !exists {
		return []*model.VendorIssue{}
	}

	result := make([]*model.VendorIssue, 0)
	for _, i := range org {
		if match(i) {
			result = append(result, copyIssue(i))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

var _ interfaces.IssueRepository = &issueRepository{}
