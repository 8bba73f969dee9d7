package types

import "fmt"

// Role represents an organizational role used both for approver
// assignment and for capability checks.
type Role string

const (
	RoleAdmin             Role = "ADMIN"
	RoleRiskManager       Role = "RISK_MANAGER"
	RoleCISO              Role = "CISO"
	RoleProcurement       Role = "PROCUREMENT"
	RoleLegal             Role = "LEGAL"
	RoleComplianceOfficer Role = "COMPLIANCE_OFFICER"
	RoleBusinessOwner     Role = "BUSINESS_OWNER"
)

// AllRoles returns all valid roles
func AllRoles() []Role {
	return []Role{
		RoleAdmin,
		RoleRiskManager,
		RoleCISO,
		RoleProcurement,
		RoleLegal,
		RoleComplianceOfficer,
		RoleBusinessOwner,
	}
}

// IsValid checks if the role is valid
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin,
		RoleRiskManager,
		RoleCISO,
		RoleProcurement,
		RoleLegal,
		RoleComplianceOfficer,
		RoleBusinessOwner:
		return true
	default:
		return false
	}
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// ParseRole parses a string into a Role
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !role.IsValid() {
		return "", fmt.Errorf("invalid role: %s", s)
	}
	return role, nil
}

// Permission represents a capability a role may hold
type Permission string

const (
	PermCancelWorkflow   Permission = "workflow:cancel"
	PermManageVendors    Permission = "vendor:manage"
	PermValidateIssues   Permission = "issue:validate"
	PermAcceptRisk       Permission = "issue:accept-risk"
	PermRecordSignals    Permission = "monitoring:record"
	PermViewAuditTrail   Permission = "audit:view"
	PermEvaluateAppetite Permission = "appetite:evaluate"
)

// rolePermissions is the closed role→capability table, constructed once
// at package initialization.
var rolePermissions = map[Role]map[Permission]struct{}{
	RoleAdmin: permSet(
		PermCancelWorkflow, PermManageVendors, PermValidateIssues,
		PermAcceptRisk, PermRecordSignals, PermViewAuditTrail, PermEvaluateAppetite,
	),
	RoleRiskManager: permSet(
		PermCancelWorkflow, PermManageVendors, PermValidateIssues,
		PermAcceptRisk, PermRecordSignals, PermViewAuditTrail, PermEvaluateAppetite,
	),
	RoleCISO: permSet(
		PermValidateIssues, PermAcceptRisk, PermViewAuditTrail, PermEvaluateAppetite,
	),
	RoleProcurement: permSet(
		PermManageVendors,
	),
	RoleLegal: permSet(
		PermViewAuditTrail,
	),
	RoleComplianceOfficer: permSet(
		PermValidateIssues, PermViewAuditTrail, PermRecordSignals,
	),
	RoleBusinessOwner: permSet(),
}

func permSet(perms ...Permission) map[Permission]struct{} {
	set := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// HasPermission reports whether the role holds the capability
func (r Role) HasPermission(p Permission) bool {
	perms, ok := rolePermissions[r]
	if !ok {
		return false
	}
	_, ok = perms[p]
	return ok
}
