package models

import "time"

type WorkspaceInvite struct {
	ID          string    `gorm:"type:varchar(36);primarykey" json:"id"`
	WorkspaceID string    `gorm:"type:varchar(36);not null;index" json:"workspace_id"`
	Token       string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"token"`
	ExpiresAt   time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedByID string    `gorm:"type:varchar(36);not null" json:"created_by_id"`
	CreatedAt   time.Time `json:"created_at"`

	// Relations
	Workspace Workspace `gorm:"foreignKey:WorkspaceID" json:"-"`
	CreatedBy User      `gorm:"foreignKey:CreatedByID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsExpired reports whether the invite can no longer be redeemed at now.
func (i *WorkspaceInvite) IsExpired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}
