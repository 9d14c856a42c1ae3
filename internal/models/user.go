// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// UserRole represents the privilege level of a user account.
type UserRole string

const (
	// RoleUser is the default role for regular accounts.
	RoleUser UserRole = "user"
	// RoleAdmin grants moderation privileges over all content.
	RoleAdmin UserRole = "admin"
)

// UserStatus represents the lifecycle state of a user account.
type UserStatus string

const (
	// UserStatusActive indicates a normal, usable account.
	UserStatusActive UserStatus = "active"
	// UserStatusInactive indicates a deactivated account. Inactive users are
	// still listed in follower/following views but without a usable profile.
	UserStatusInactive UserStatus = "inactive"
	// UserStatusDeleted indicates an account removed by its owner or an admin.
	UserStatusDeleted UserStatus = "deleted"
)

// User represents a user account in the Ripple application.
type User struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	Name                string     `gorm:"not null" json:"name"`
	Username            string     `gorm:"unique;not null" json:"username"`
	Email               string     `gorm:"unique;not null" json:"email"`
	Password            string     `gorm:"not null" json:"-"`
	Avatar              string     `json:"avatar"`
	Role                UserRole   `gorm:"type:varchar(20);default:'user'" json:"role"`
	IsVerified          bool       `json:"is_verified"`
	VerificationCode    string     `json:"-"`
	ResetToken          string     `json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`
	// NewMessagePopup controls whether the client shows a popup on incoming messages.
	NewMessagePopup    bool           `gorm:"default:true" json:"new_message_popup"`
	UnreadMessage      bool           `json:"unread_message"`
	UnreadNotification bool           `json:"unread_notification"`
	Status             UserStatus     `gorm:"type:varchar(20);default:'active';index" json:"status"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserSummary is the embedded author/relation view of a user: enough for the
// client to render a name, avatar and (when the account is active) a profile link.
type UserSummary struct {
	ID       uint       `json:"id"`
	Name     string     `json:"name"`
	Username string     `json:"username"`
	Avatar   string     `json:"avatar"`
	Status   UserStatus `json:"status"`
}

// Summary returns the reduced view of the user used in embedded responses.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:       u.ID,
		Name:     u.Name,
		Username: u.Username,
		Avatar:   u.Avatar,
		Status:   u.Status,
	}
}
