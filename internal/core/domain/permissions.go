package domain

// Permission strings granted to roles.
const (
	PermUserCreate    = "user:create"
	PermUserUpdate    = "user:update"
	PermUserGet       = "user:get"
	PermUserTerminate = "user:terminate"
)

// rolePermissions is the static role → permission table. USER will grow in
// the future.
var rolePermissions = map[string][]string{
	RoleAdmin: {PermUserCreate, PermUserUpdate, PermUserGet, PermUserTerminate},
	RoleUser:  {},
}

// PermissionsForRole returns the permissions granted to role. An unknown
// role is an authorization failure, not an empty grant.
func PermissionsForRole(role string) ([]string, error) {
	perms, ok := rolePermissions[role]
	if !ok {
		return nil, Unauthorized("unknown role")
	}
	return perms, nil
}

// RoleHasPermission reports whether role grants perm.
func RoleHasPermission(role, perm string) (bool, error) {
	perms, err := PermissionsForRole(role)
	if err != nil {
		return false, err
	}
	for _, p := range perms {
		if p == perm {
			return true, nil
		}
	}
	return false, nil
}
