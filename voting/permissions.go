package voting

import "github.com/alex-pricope/online-voting-system/storage"

// Caller is the authenticated identity an operation runs for. A zero Caller is
// anonymous.
type Caller struct {
	UserID string
	Role   storage.Role
}

func (c Caller) Authenticated() bool {
	return c.UserID != ""
}

func IsAdmin(role storage.Role) bool {
	return role == storage.RoleAdmin || role == storage.RoleSuperAdmin
}

func CanCreatePoll(c Caller) bool {
	return c.Authenticated() && IsAdmin(c.Role)
}

// CanManagePoll covers update, close and delete: the poll's creator or any admin.
func CanManagePoll(c Caller, poll *storage.Poll) bool {
	if !c.Authenticated() || poll == nil {
		return false
	}
	return IsAdmin(c.Role) || poll.CreatorID == c.UserID
}

func CanAssignRoles(c Caller) bool {
	return c.Authenticated() && c.Role == storage.RoleSuperAdmin
}

func ValidRole(role storage.Role) bool {
	switch role {
	case storage.RoleNormal, storage.RoleExpert, storage.RoleAdmin, storage.RoleSuperAdmin:
		return true
	}
	return false
}
