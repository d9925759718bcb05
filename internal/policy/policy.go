// Package policy decides, per request, what a principal may see and do.
// Visibility is partitioned by a tenant key derived from the principal's
// email domain and matched as a substring against organization names.
package policy

import "strings"

// Role is the closed set of account roles. Role ids are stored as integers;
// anything outside the known ids decodes to RoleStandard.
type Role int

const (
	RoleStandard   Role = 0
	RoleManagement Role = 1
	RoleSysAdmin   Role = 3
)

// RoleFromID decodes a stored role id.
func RoleFromID(id int) Role {
	switch id {
	case int(RoleManagement):
		return RoleManagement
	case int(RoleSysAdmin):
		return RoleSysAdmin
	default:
		return RoleStandard
	}
}

// ID returns the stored integer form of the role.
func (r Role) ID() int { return int(r) }

func (r Role) String() string {
	switch r {
	case RoleManagement:
		return "Management"
	case RoleSysAdmin:
		return "SysAdmin"
	default:
		return "Standard"
	}
}

// FullRead reports whether the role sees the whole vault regardless of tenant.
// Management shares unrestricted read with SysAdmin but is not an admin.
func (r Role) FullRead() bool {
	return r == RoleSysAdmin || r == RoleManagement
}

// Admin reports whether the role may perform administrative operations.
// Strictly SysAdmin; Management is excluded despite its read scope.
func (r Role) Admin() bool {
	return r == RoleSysAdmin
}

// Principal is the verified identity acting in a request. It is rebuilt from
// the credential on every request and never stored.
type Principal struct {
	ID    int64
	Role  Role
	Name  string
	Email string
}

// Operation identifies a permission-checked action.
type Operation int

const (
	OpVaultRead Operation = iota
	OpVaultSearch
	OpFolderCreate
	OpFolderDelete
	OpUpload
	OpDocumentDelete
	OpAdminUsers
	OpAuditView
)

// Authorize reports whether the principal may perform the operation at all.
// Row-level visibility is a separate concern, see ScopeFor.
func Authorize(p Principal, op Operation) bool {
	switch op {
	case OpAdminUsers, OpAuditView:
		return p.Role.Admin()
	default:
		return true
	}
}

// Scope is the row-level restriction applied to catalog queries.
type Scope struct {
	Unrestricted bool
	Tenant       string
}

// ScopeFor computes the read scope for the principal.
func ScopeFor(p Principal) Scope {
	if p.Role.FullRead() {
		return Scope{Unrestricted: true}
	}
	return Scope{Tenant: TenantKey(p.Email)}
}

// WriteScopeFor computes the scope for catalog mutations. Management reads
// the whole vault but creates and uploads only within its own tenant; the
// unrestricted write scope belongs to admins alone.
func WriteScopeFor(p Principal) Scope {
	if p.Role.Admin() {
		return Scope{Unrestricted: true}
	}
	return Scope{Tenant: TenantKey(p.Email)}
}

// TenantKey derives the tenant grouping key from an email: the portion of
// the domain before its first dot, lowercased. Total: malformed input yields
// the empty string, never a panic.
func TenantKey(email string) string {
	at := strings.IndexByte(email, '@')
	if at < 0 {
		return ""
	}
	domain := email[at+1:]
	if dot := strings.IndexByte(domain, '.'); dot >= 0 {
		domain = domain[:dot]
	}
	return strings.ToLower(strings.TrimSpace(domain))
}
