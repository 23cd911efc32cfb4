package models

import "time"

type Workspace struct {
	ID        string    `gorm:"type:varchar(36);primarykey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Slug      string    `gorm:"type:varchar(320);uniqueIndex;not null" json:"slug"`
	OwnerID   string    `gorm:"type:varchar(36);not null;index" json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Members []WorkspaceMember `gorm:"foreignKey:WorkspaceID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
	Invites []WorkspaceInvite `gorm:"foreignKey:WorkspaceID;constraint:OnDelete:CASCADE" json:"-"`
}
