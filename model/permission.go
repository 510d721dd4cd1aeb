package model

// Access levels, lowest to highest. A user may run a command when their level is at
// least the command's level.
const (
	PermissionUser      = 0
	PermissionModerator = 1
	PermissionAdmin     = 2
	PermissionOwner     = 3
)

// ManagerPermission is one row of the managers table.
type ManagerPermission struct {
	UserID      int64 `json:"user_id"`
	AccessLevel int   `json:"access_level"`
}
