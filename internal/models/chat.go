package models

import (
	"time"

	"gorm.io/gorm"
)

// ChatStatus represents whether a chat accepts new messages.
type ChatStatus string

const (
	// ChatActive indicates a chat that accepts new messages.
	ChatActive ChatStatus = "active"
	// ChatInactive indicates a chat disabled by one of its participants.
	ChatInactive ChatStatus = "inactive"
)

// Chat represents a one-to-one conversation between two users.
// DisabledByID records which participant disabled the chat; only that
// participant may re-enable it.
type Chat struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	CreatorID    uint       `gorm:"not null;uniqueIndex:idx_chat_pair" json:"creator_id"`
	PartnerID    uint       `gorm:"not null;uniqueIndex:idx_chat_pair" json:"partner_id"`
	Status       ChatStatus `gorm:"type:varchar(20);default:'active'" json:"status"`
	DisabledByID *uint      `json:"disabled_by_id,omitempty"`

	// Relationships
	Creator  User      `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Partner  User      `gorm:"foreignKey:PartnerID" json:"partner,omitempty"`
	Messages []Message `gorm:"foreignKey:ChatID" json:"messages,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Message represents a single message within a chat.
type Message struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	ChatID      uint   `gorm:"not null;index" json:"chat_id"`
	SenderID    uint   `gorm:"not null" json:"sender_id"`
	RecipientID uint   `gorm:"not null;index" json:"recipient_id"`
	Text        string `gorm:"type:text;not null" json:"text"`
	// Unread is cleared when the recipient opens the chat.
	Unread    bool      `gorm:"default:true" json:"unread"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	Sender User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}
