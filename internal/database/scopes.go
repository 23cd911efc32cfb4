package database

import (
	"time"

	"gorm.io/gorm"
)

// ActiveInvites keeps invites that can still be redeemed at now.
func ActiveInvites(now time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("expires_at > ?", now)
	}
}

// ExpiredInvites is the complement of ActiveInvites.
func ExpiredInvites(now time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("expires_at <= ?", now)
	}
}

// Membership narrows a workspace_members query to one composite key.
func Membership(workspaceID, userID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("workspace_id = ? AND user_id = ?", workspaceID, userID)
	}
}
