package domain

import (
	"time"

	"github.com/go-telegram/bot/models"
)

// ChatKind is the closed set of chat kinds a Group record can hold.
type ChatKind string

const (
	KindPrivate    ChatKind = "private"
	KindPublic     ChatKind = "public"
	KindSupergroup ChatKind = "supergroup"
	KindChannel    ChatKind = "channel"
)

// KindFromChatType maps a Telegram chat type onto a ChatKind. Plain groups
// have no dedicated kind and are recorded as public.
func KindFromChatType(chatType models.ChatType) ChatKind {
	switch chatType {
	case models.ChatTypePrivate:
		return KindPrivate
	case models.ChatTypeSupergroup:
		return KindSupergroup
	case models.ChatTypeChannel:
		return KindChannel
	default:
		return KindPublic
	}
}

// Group represents a Telegram chat where the bot participates. Records are
// created lazily on first group interaction; the creator becomes the implicit
// owner.
type Group struct {
	ID                int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TelegramID        int64     `gorm:"uniqueIndex;not null" json:"telegram_id"`
	Title             string    `gorm:"size:255;not null" json:"title"`
	Kind              ChatKind  `gorm:"size:16;default:private" json:"kind"`
	OwnerID           int64     `json:"owner_id"`
	Description       string    `gorm:"size:500" json:"description"`
	ParticipantsCount int       `gorm:"default:0" json:"participants_count"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
