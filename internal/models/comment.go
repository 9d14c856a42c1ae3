package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment represents a comment on a post.
//
// PostOwnerID is copied from the post when the comment is created so that
// authorization checks (post owner may delete any comment on their post) do not
// require loading the post. Post ownership never changes in this domain, so the
// copy cannot go stale.
type Comment struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Text        string `gorm:"type:text;not null" json:"text"`
	PostID      uint   `gorm:"not null;index" json:"post_id"`
	PostOwnerID uint   `gorm:"not null" json:"post_owner_id"`
	AuthorID    uint   `gorm:"not null" json:"author_id"`

	// Relationships
	Author User `gorm:"foreignKey:AuthorID" json:"author"`
	Post   Post `gorm:"foreignKey:PostID" json:"post,omitempty"`
	// EditHistory is append-only: every edit pushes the prior text and its
	// timestamp before the new text is applied. It is never truncated.
	EditHistory []CommentEdit `gorm:"foreignKey:CommentID" json:"edit_history,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// CommentEdit is one entry of a comment's edit history: the text the comment
// held before an edit and the timestamp that text carried.
type CommentEdit struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CommentID uint      `gorm:"not null;index" json:"comment_id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	EditedAt  time.Time `json:"edited_at"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (CommentEdit) TableName() string {
	return "comment_edits"
}
