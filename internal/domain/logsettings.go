package domain

import "time"

// LogSettingsID is the fixed primary key of the single log settings row.
const LogSettingsID int64 = 1

// LogSettings holds the destination chat for mirrored log events and the
// minimum severity to forward. One row per deployment, read on every
// loggable event.
type LogSettings struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	ChatID    int64     `gorm:"not null" json:"chat_id"`
	Level     Level     `gorm:"size:8;default:ERROR" json:"level"`
	UpdatedAt time.Time `json:"updated_at"`
}
