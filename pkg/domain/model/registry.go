package model

import (
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/trm-lab/argus/pkg/domain/model/config"
)

// Organization identifies one tenant
type Organization struct {
	ID   string
	Name string
}

// OrgEntry bundles an organization with its configured approval chain
// templates and risk appetite definitions.
type OrgEntry struct {
	Organization Organization
	Chains       map[string][]config.ChainStep
	Appetites    []config.AppetiteDefinition
}

// OrgRegistry is the in-process registry of configured organizations,
// constructed once at startup from the TOML configuration and shared by
// reference. It replaces any module-level mutable state.
type OrgRegistry struct {
	mu      sync.RWMutex
	entries map[string]*OrgEntry
}

// NewOrgRegistry creates an empty registry
func NewOrgRegistry() *OrgRegistry {
	return &OrgRegistry{
		entries: make(map[string]*OrgEntry),
	}
}

// Register adds or replaces an organization entry
func (r *OrgRegistry) Register(entry *OrgEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.Organization.ID] = entry
}

// Get returns the entry for an organization ID
func (r *OrgRegistry) Get(orgID string) (*OrgEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[orgID]
	if !ok {
		return nil, goerr.New("organization not registered", goerr.V("org_id", orgID))
	}
	return entry, nil
}

// Organizations returns all registered organizations sorted by ID
func (r *OrgRegistry) Organizations() []Organization {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orgs := make([]Organization, 0, len(r.entries))
	for _, e := range r.entries {
		orgs = append(orgs, e.Organization)
	}
	sort.Slice(orgs, func(i, j int) bool { return orgs[i].ID < orgs[j].ID })
	return orgs
}

// ChainTemplate returns the configured approval chain for a workflow
// type, or nil when the organization has no template for it.
func (r *OrgRegistry) ChainTemplate(orgID, workflowType string) []config.ChainStep {
	entry, err := r.Get(orgID)
	if err != nil {
		return nil
	}
	return entry.Chains[workflowType]
}
