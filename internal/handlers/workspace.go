package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/workspace-api/internal/dto"
	apierrors "github.com/yukikurage/workspace-api/internal/errors"
	"github.com/yukikurage/workspace-api/internal/middleware"
	"github.com/yukikurage/workspace-api/internal/services"
)

type WorkspaceHandler struct {
	workspaces *services.WorkspaceService
}

func NewWorkspaceHandler(workspaces *services.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{workspaces: workspaces}
}

type workspaceNameRequest struct {
	Name string `json:"name" binding:"required"`
}

// ListWorkspaces returns the caller's workspaces, most recently used first
func (h *WorkspaceHandler) ListWorkspaces(c *gin.Context) {
	memberships, err := h.workspaces.ListWorkspaces(c.Request.Context(), middleware.GetCaller(c))
	if err != nil {
		apierrors.RespondServiceError(c, err)
		return
	}

	result := make([]dto.WorkspaceWithRoleDTO, len(memberships))
	for i, m := range memberships {
		result[i] = dto.ToWorkspaceWithRoleDTO(m)
	}

	c.JSON(http.StatusOK, gin.H{
		"workspaces": result,
	})
}

func (h *WorkspaceHandler) CreateWorkspace(c *gin.Context) {
	var req workspaceNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.workspaces.CreateWorkspace(c.Request.Context(), middleware.GetCaller(c), req.Name)
	if err != nil {
		apierrors.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToWorkspaceWithRoleDTO(*member))
}

func (h *WorkspaceHandler) GetWorkspace(c *gin.Context) {
	member, err := h.workspaces.GetWorkspace(c.Request.Context(), middleware.GetCaller(c), c.Param("id"))
	if err != nil {
		apierrors.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkspaceWithRoleDTO(*member))
}

func (h *WorkspaceHandler) UpdateWorkspace(c *gin.Context) {
	var req workspaceNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	ws, err := h.workspaces.UpdateWorkspace(c.Request.Context(), middleware.GetCaller(c), c.Param("id"), req.Name)
	if err != nil {
		apierrors.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkspaceDTO(*ws))
}

func (h *WorkspaceHandler) DeleteWorkspace(c *gin.Context) {
	if err := h.workspaces.DeleteWorkspace(c.Request.Context(), middleware.GetCaller(c), c.Param("id")); err != nil {
		apierrors.RespondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *WorkspaceHandler) LeaveWorkspace(c *gin.Context) {
	if err := h.workspaces.LeaveWorkspace(c.Request.Context(), middleware.GetCaller(c), c.Param("id")); err != nil {
		apierrors.RespondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// TouchAccess records that the caller opened the workspace
func (h *WorkspaceHandler) TouchAccess(c *gin.Context) {
	if err := h.workspaces.TouchWorkspaceAccess(c.Request.Context(), middleware.GetCaller(c), c.Param("id")); err != nil {
		apierrors.RespondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *WorkspaceHandler) ListMembers(c *gin.Context) {
	members, err := h.workspaces.ListMembers(c.Request.Context(), middleware.GetCaller(c), c.Param("id"))
	if err != nil {
		apierrors.RespondServiceError(c, err)
		return
	}

	result := make([]dto.WorkspaceMemberDTO, len(members))
	for i, m := range members {
		result[i] = dto.ToWorkspaceMemberDTO(m)
	}

	c.JSON(http.StatusOK, gin.H{
		"members": result,
	})
}

func (h *WorkspaceHandler) RemoveMember(c *gin.Context) {
	err := h.workspaces.RemoveMember(c.Request.Context(), middleware.GetCaller(c), c.Param("id"), c.Param("user_id"))
	if err != nil {
		apierrors.RespondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
