package models

import (
	"fmt"
	"time"
)

// WorkspaceRole is a closed set; switch over it exhaustively.
type WorkspaceRole string

const (
	RoleOwner  WorkspaceRole = "owner"
	RoleMember WorkspaceRole = "member"
)

// ParseWorkspaceRole rejects anything outside the two known roles.
func ParseWorkspaceRole(s string) (WorkspaceRole, error) {
	switch WorkspaceRole(s) {
	case RoleOwner:
		return RoleOwner, nil
	case RoleMember:
		return RoleMember, nil
	default:
		return "", fmt.Errorf("unknown workspace role %q", s)
	}
}

// CanManage reports whether the role may rename or delete the workspace,
// manage invites and remove members.
func (r WorkspaceRole) CanManage() bool {
	switch r {
	case RoleOwner:
		return true
	case RoleMember:
		return false
	default:
		return false
	}
}

// CanLeave reports whether a holder of the role may drop their own membership.
// Owners must delete the workspace instead.
func (r WorkspaceRole) CanLeave() bool {
	switch r {
	case RoleOwner:
		return false
	case RoleMember:
		return true
	default:
		return false
	}
}

type WorkspaceMember struct {
	WorkspaceID    string        `gorm:"type:varchar(36);primarykey" json:"workspace_id"`
	UserID         string        `gorm:"type:varchar(36);primarykey;index" json:"user_id"`
	Role           WorkspaceRole `gorm:"type:varchar(20);not null" json:"role"`
	LastAccessedAt time.Time     `gorm:"not null" json:"last_accessed_at"`
	JoinedAt       time.Time     `gorm:"not null" json:"joined_at"`

	// Relations
	Workspace Workspace `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
