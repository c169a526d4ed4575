package domain

import "time"

// Membership asserts that a profile belongs to a group. The composite primary
// key doubles as the uniqueness constraint: at most one row per
// (profile, group) pair. Both sides are keyed by Telegram IDs.
type Membership struct {
	ProfileID   int64     `gorm:"primaryKey;autoIncrement:false" json:"profile_id"`
	GroupID     int64     `gorm:"primaryKey;autoIncrement:false" json:"group_id"`
	IsOwner     bool      `json:"is_owner"`
	IsModerator bool      `json:"is_moderator"`
	JoinedAt    time.Time `json:"joined_at"`
}
