package models

import "time"

// UserBlock represents a block placed by one user on another. A single row
// records both sides of the relationship: the blocker's "users blocked" set and
// the blocked user's "blocked by" set are two reads of the same edge, so the
// symmetric-complement invariant holds by construction.
type UserBlock struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BlockerID uint      `gorm:"not null;uniqueIndex:idx_block_pair" json:"blocker_id"`
	BlockedID uint      `gorm:"not null;uniqueIndex:idx_block_pair;index" json:"blocked_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	Blocker User `gorm:"foreignKey:BlockerID" json:"blocker,omitempty"`
	Blocked User `gorm:"foreignKey:BlockedID" json:"blocked,omitempty"`
}

// TableName specifies the table name for GORM
func (UserBlock) TableName() string {
	return "user_blocks"
}
