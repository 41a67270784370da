package domain

// Roles recognized by the dashboard. The source SPA hardcoded a Super Admin
// session; here the session is an explicit value passed into every read.
const (
	RoleSuperAdmin = "Super Admin"
	RoleManager    = "Manager"
	RoleCashier    = "Cashier"
)

// SessionContext identifies the caller for scoping purposes. Non-admin
// sessions are pinned to their own branch regardless of the requested scope.
type SessionContext struct {
	EmployeeID string
	BranchID   string
	Role       string
}

// IsAdmin reports whether the session may read across all branches.
func (s SessionContext) IsAdmin() bool {
	return s.Role == RoleSuperAdmin
}

// Restrict resolves the effective scope for this session. Admins keep the
// requested scope; everyone else is forced onto their own branch.
func (s SessionContext) Restrict(scope Scope) Scope {
	if s.IsAdmin() {
		return scope
	}
	return Scope{BranchID: s.BranchID}
}
