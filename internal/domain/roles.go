// Package domain defines shared domain constants and persistent model types.
package domain

import "fmt"

// Role is the ordinal access level assigned to a profile. Command access is
// gated by comparing the caller's role against a required threshold.
type Role int

const (
	// RoleBanned blocks all access to the bot.
	RoleBanned Role = 0
	// RoleSingle grants access to the caller's own data only.
	RoleSingle Role = 1
	// RoleMultiplayer additionally grants read access to group members.
	RoleMultiplayer Role = 2
	// RoleModerator additionally grants editing of group-scoped data.
	RoleModerator Role = 3
	// RoleAdmin grants full access to every command.
	RoleAdmin Role = 4
)

// String returns the lowercase role name used in user-facing messages.
func (r Role) String() string {
	switch r {
	case RoleBanned:
		return "banned"
	case RoleSingle:
		return "single"
	case RoleMultiplayer:
		return "multiplayer"
	case RoleModerator:
		return "moderator"
	case RoleAdmin:
		return "admin"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// AtLeast reports whether the role meets the required threshold.
func (r Role) AtLeast(required Role) bool {
	return r >= required
}
