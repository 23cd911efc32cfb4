package dto

import (
	"time"

	"github.com/yukikurage/workspace-api/internal/models"
)

// WorkspaceDTO represents a workspace in API responses
type WorkspaceDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WorkspaceWithRoleDTO represents a workspace with the caller's role
type WorkspaceWithRoleDTO struct {
	WorkspaceDTO
	Role           models.WorkspaceRole `json:"role"`
	LastAccessedAt time.Time            `json:"last_accessed_at"`
}

// WorkspaceMemberDTO represents a member in a workspace
type WorkspaceMemberDTO struct {
	User     UserDTO              `json:"user"`
	Role     models.WorkspaceRole `json:"role"`
	JoinedAt time.Time            `json:"joined_at"`
}

// InviteDTO represents an active invite. The token is only returned to
// members who can already see the workspace.
type InviteDTO struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	Token       string    `json:"token"`
	URL         string    `json:"url,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedByID string    `json:"created_by_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// InvitePreviewDTO is what a token holder sees before accepting.
type InvitePreviewDTO struct {
	WorkspaceID   string    `json:"workspace_id"`
	WorkspaceName string    `json:"workspace_name"`
	ExpiresAt     time.Time `json:"expires_at"`
	Expired       bool      `json:"expired"`
	AlreadyMember bool      `json:"already_member"`
}

func ToWorkspaceDTO(ws models.Workspace) WorkspaceDTO {
	return WorkspaceDTO{
		ID:        ws.ID,
		Name:      ws.Name,
		Slug:      ws.Slug,
		OwnerID:   ws.OwnerID,
		CreatedAt: ws.CreatedAt,
		UpdatedAt: ws.UpdatedAt,
	}
}

// ToWorkspaceWithRoleDTO converts a membership with its preloaded workspace
func ToWorkspaceWithRoleDTO(member models.WorkspaceMember) WorkspaceWithRoleDTO {
	return WorkspaceWithRoleDTO{
		WorkspaceDTO:   ToWorkspaceDTO(member.Workspace),
		Role:           member.Role,
		LastAccessedAt: member.LastAccessedAt,
	}
}

func ToWorkspaceMemberDTO(member models.WorkspaceMember) WorkspaceMemberDTO {
	return WorkspaceMemberDTO{
		User:     ToUserDTO(member.User),
		Role:     member.Role,
		JoinedAt: member.JoinedAt,
	}
}

// ToInviteDTO converts an invite; inviteURL may be nil to omit the link.
func ToInviteDTO(invite models.WorkspaceInvite, inviteURL func(string) string) InviteDTO {
	dto := InviteDTO{
		ID:          invite.ID,
		WorkspaceID: invite.WorkspaceID,
		Token:       invite.Token,
		ExpiresAt:   invite.ExpiresAt,
		CreatedByID: invite.CreatedByID,
		CreatedAt:   invite.CreatedAt,
	}
	if inviteURL != nil {
		dto.URL = inviteURL(invite.Token)
	}
	return dto
}
