package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/workspace-api/internal/dto"
	apierrors "github.com/yukikurage/workspace-api/internal/errors"
	"github.com/yukikurage/workspace-api/internal/middleware"
	"github.com/yukikurage/workspace-api/internal/services"
)

// InviteHandler serves invite link management and redemption.
type InviteHandler struct {
	workspaces   *services.WorkspaceService
	inviteURL    func(token string) string
	workspaceURL func(workspaceID string) string
}

// NewInviteHandler builds the handler. workspaceURL is where an invite link
// redirects once it has been redeemed.
func NewInviteHandler(workspaces *services.WorkspaceService, inviteURL, workspaceURL func(string) string) *InviteHandler {
	return &InviteHandler{
		workspaces:   workspaces,
		inviteURL:    inviteURL,
		workspaceURL: workspaceURL,
	}
}

func (h *InviteHandler) GenerateInvite(c *gin.Context) {
	link, err := h.workspaces.GenerateInviteLink(c.Request.Context(), middleware.GetCaller(c), c.Param("id"))
	if err != nil {
		apierrors.RespondServiceError(c, err)
		return
	}

	invite := dto.ToInviteDTO(*link.Invite, nil)
	invite.URL = link.URL
	c.JSON(http.StatusCreated, invite)
}

func (h *InviteHandler) ListInvites(c *gin.Context) {
	invites, err := h.workspaces.ListActiveInvites(c.Request.Context(), middleware.GetCaller(c), c.Param("id"))
	if err != nil {
		apierrors.RespondServiceError(c, err)
		return
	}

	result := make([]dto.InviteDTO, len(invites))
	for i, invite := range invites {
		result[i] = dto.ToInviteDTO(invite, h.inviteURL)
	}

	c.JSON(http.StatusOK, gin.H{
		"invites": result,
	})
}

func (h *InviteHandler) RevokeInvite(c *gin.Context) {
	if err := h.workspaces.RevokeInvite(c.Request.Context(), middleware.GetCaller(c), c.Param("id")); err != nil {
		apierrors.RespondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AcceptInvite redeems the token from an invite link. The token arrives in
// the :id segment, which it shares with the revoke route.
func (h *InviteHandler) AcceptInvite(c *gin.Context) {
	workspaceID, err := h.workspaces.AcceptInvite(c.Request.Context(), middleware.GetCaller(c), c.Param("id"))
	if err != nil {
		apierrors.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"workspace_id": workspaceID,
	})
}

// PreviewInvite describes the invite behind a token without redeeming it.
func (h *InviteHandler) PreviewInvite(c *gin.Context) {
	preview, err := h.workspaces.PreviewInvite(c.Request.Context(), middleware.GetCaller(c), c.Param("id"))
	if err != nil {
		apierrors.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.InvitePreviewDTO{
		WorkspaceID:   preview.WorkspaceID,
		WorkspaceName: preview.WorkspaceName,
		ExpiresAt:     preview.ExpiresAt,
		Expired:       preview.Expired,
		AlreadyMember: preview.AlreadyMember,
	})
}

// FollowInviteLink handles the shared <base>/invite/<token> link: the token is
// redeemed and the browser is sent on to the workspace.
func (h *InviteHandler) FollowInviteLink(c *gin.Context) {
	workspaceID, err := h.workspaces.AcceptInvite(c.Request.Context(), middleware.GetCaller(c), c.Param("token"))
	if err != nil {
		apierrors.RespondServiceError(c, err)
		return
	}

	c.Redirect(http.StatusFound, h.workspaceURL(workspaceID))
}
