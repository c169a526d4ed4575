package domain

import "time"

// Profile represents one Telegram account known to the bot. The Telegram ID
// is unique and never reassigned; records are created lazily on first contact
// and are not hard-deleted.
type Profile struct {
	ID              int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	TelegramID      int64      `gorm:"uniqueIndex;not null" json:"telegram_id"`
	Username        string     `gorm:"size:32" json:"username"`
	FirstName       string     `gorm:"size:255;not null" json:"first_name"`
	LastName        string     `gorm:"size:255" json:"last_name"`
	LanguageCode    string     `gorm:"size:10" json:"language_code"`
	IsPremium       bool       `json:"is_premium"`
	FullDisplayName string     `gorm:"size:255" json:"full_display_name"`
	Email           string     `gorm:"size:255" json:"email"`
	Phone           string     `gorm:"size:20" json:"phone"`
	Birthday        *time.Time `json:"birthday"`
	Role            Role       `gorm:"default:1" json:"role"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// DisplayName returns the best human-readable name for the profile.
func (p Profile) DisplayName() string {
	if p.FullDisplayName != "" {
		return p.FullDisplayName
	}
	if p.LastName != "" {
		return p.FirstName + " " + p.LastName
	}
	return p.FirstName
}
