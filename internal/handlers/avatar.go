package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/workspace-api/internal/constants"
	apierrors "github.com/yukikurage/workspace-api/internal/errors"
	"github.com/yukikurage/workspace-api/internal/services"
)

type AvatarHandler struct {
	avatars *services.AvatarService
}

func NewAvatarHandler(avatars *services.AvatarService) *AvatarHandler {
	return &AvatarHandler{avatars: avatars}
}

// GetAvatar relays a user's profile image from its allow-listed host.
func (h *AvatarHandler) GetAvatar(c *gin.Context) {
	avatar, err := h.avatars.Fetch(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAvatarNotFound):
			apierrors.NotFound(c, err.Error())
		case errors.Is(err, services.ErrAvatarHostNotAllowed):
			apierrors.Forbidden(c, err.Error())
		case errors.Is(err, services.ErrAvatarUpstream):
			apierrors.BadGateway(c, err.Error())
		default:
			apierrors.InternalError(c, "")
		}
		return
	}

	c.Header("Cache-Control", constants.AvatarCacheControl)
	c.Data(http.StatusOK, avatar.ContentType, avatar.Body)
}
