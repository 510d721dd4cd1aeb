package model

// Telemetry receives operational events. Implementations must not block the caller,
// and callers never depend on delivery.
type Telemetry interface {
	LogEvent(message string)
	LogError(err error)
}

// PermissionSetter is the authorization cache the permission table is loaded into.
type PermissionSetter interface {
	SetPermission(userID int64, level int)
}
