package model

// Permission vocabulary. Every permission gates one action class; the set is
// fixed and permissions outside it are rejected at the API boundary.
const (
	PermViewAssets      = "view_assets"
	PermCreateAssets    = "create_assets"
	PermEditAssets      = "edit_assets"
	PermDeleteAssets    = "delete_assets"
	PermViewEmployees   = "view_employees"
	PermCreateEmployees = "create_employees"
	PermEditEmployees   = "edit_employees"
	PermDeleteEmployees = "delete_employees"
	PermViewReports     = "view_reports"
	PermManageUsers     = "manage_users"
	PermSystemSettings  = "system_settings"
)

// AllPermissions lists the full vocabulary.
var AllPermissions = []string{
	PermViewAssets,
	PermCreateAssets,
	PermEditAssets,
	PermDeleteAssets,
	PermViewEmployees,
	PermCreateEmployees,
	PermEditEmployees,
	PermDeleteEmployees,
	PermViewReports,
	PermManageUsers,
	PermSystemSettings,
}

// rolePermissions is the fixed role -> default permission table.
var rolePermissions = map[string][]string{
	RoleAdmin: AllPermissions,
	RoleManager: {
		PermViewAssets,
		PermCreateAssets,
		PermEditAssets,
		PermViewEmployees,
		PermCreateEmployees,
		PermEditEmployees,
		PermViewReports,
	},
	RoleEmployee: {
		PermViewAssets,
		PermViewEmployees,
	},
}

// DefaultPermissions returns a copy of the default permission set for role.
// Unknown roles get an empty set.
func DefaultPermissions(role string) []string {
	defaults := rolePermissions[role]
	out := make([]string, len(defaults))
	copy(out, defaults)
	return out
}

// ValidPermission reports whether perm belongs to the fixed vocabulary.
func ValidPermission(perm string) bool {
	for _, p := range AllPermissions {
		if p == perm {
			return true
		}
	}
	return false
}

// HasPermission is the single authorization predicate: admins hold every
// permission implicitly, everyone else needs it in their stored set.
func (u *User) HasPermission(perm string) bool {
	if u.Role == RoleAdmin {
		return true
	}
	for _, p := range u.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}
