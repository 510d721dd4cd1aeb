package utils

import (
	"run-tracker/model"
	"sync"
)

var _ model.PermissionSetter = (*PermissionCache)(nil)

// PermissionCache holds the access level of every manager in memory. Users that were
// never set have model.PermissionUser.
type PermissionCache struct {
	mu     sync.RWMutex
	levels map[int64]int
}

func NewPermissionCache() *PermissionCache {
	return &PermissionCache{levels: make(map[int64]int)}
}

// SetPermission records the access level for a user, replacing any previous level.
func (c *PermissionCache) SetPermission(userID int64, level int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.levels[userID] = level
}

// Level returns the access level for a user.
func (c *PermissionCache) Level(userID int64) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if level, ok := c.levels[userID]; ok {
		return level
	}
	return model.PermissionUser
}

// Allowed checks if a user has at least the required access level.
func (c *PermissionCache) Allowed(userID int64, required int) bool {
	return c.Level(userID) >= required
}

// Len returns the number of users with an explicit level.
func (c *PermissionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.levels)
}
