package memory

import (
	"context"
	"sync"

	"github.com/trm-lab/argus/pkg/domain/interfaces"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = interfaces.ErrNotFound

// Memory is the in-memory repository backend, intended for development
// and tests. Data does not survive process restart.
type Memory struct {
	txMu       sync.Mutex
	vendor     *vendorRepository
	workflow   *workflowRepository
	issue      *issueRepository
	monitoring *monitoringRepository
	appetite   *appetiteRepository
	audit      *auditRepository
}

var _ interfaces.Repository = &Memory{}

// New creates an empty in-memory repository
func New() *Memory {
	return &Memory{
		vendor:     newVendorRepository(),
		workflow:   newWorkflowRepository(),
		issue:      newIssueRepository(),
		monitoring: newMonitoringRepository(),
		appetite:   newAppetiteRepository(),
		audit:      newAuditRepository(),
	}
}

func (m *Memory) Vendor() interfaces.VendorRepository {
	return m.vendor
}

func (m *Memory) Workflow() interfaces.WorkflowRepository {
	return m.workflow
}

func (m *Memory) Issue() interfaces.IssueRepository {
	return m.issue
}

func (m *Memory) Monitoring() interfaces.MonitoringRepository {
	return m.monitoring
}

func (m *Memory) Appetite() interfaces.AppetiteRepository {
	return m.appetite
}

func (m *Memory) Audit() interfaces.AuditRepository {
	return m.audit
}

// InTx serializes concurrent transaction bodies through a store-wide
// mutex. The memory backend cannot roll back partial writes; callers
// validate all preconditions before the first write, which keeps the
// backend adequate for development and tests.
func (m *Memory) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(ctx)
}

func (m *Memory) Close() error {
	return nil
}
