package utils

import (
	"run-tracker/model"
	"testing"
)

func TestPermissionCache(t *testing.T) {
	cache := NewPermissionCache()
	cache.SetPermission(100, model.PermissionAdmin)
	cache.SetPermission(200, model.PermissionModerator)
	cache.SetPermission(200, model.PermissionOwner)

	tests := []struct {
		user     int64
		required int
		allowed  bool
	}{
		{100, model.PermissionModerator, true},
		{100, model.PermissionAdmin, true},
		{100, model.PermissionOwner, false},
		{200, model.PermissionOwner, true},
		{300, model.PermissionUser, true},
		{300, model.PermissionModerator, false},
	}
	for _, tt := range tests {
		if got := cache.Allowed(tt.user, tt.required); got != tt.allowed {
			t.Errorf("Allowed(%d, %d) = %v, want %v", tt.user, tt.required, got, tt.allowed)
		}
	}
	if cache.Len() != 2 {
		t.Errorf("Len() = %d, want 2", cache.Len())
	}
	if cache.Level(300) != model.PermissionUser {
		t.Errorf("unknown users should have the user level")
	}
}
