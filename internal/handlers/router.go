package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yukikurage/workspace-api/internal/constants"
	"github.com/yukikurage/workspace-api/internal/middleware"
	"github.com/yukikurage/workspace-api/internal/services"
	"go.uber.org/zap"
)

// RouterConfig carries everything the HTTP layer is built from.
type RouterConfig struct {
	Auth       *services.AuthService
	Workspaces *services.WorkspaceService
	Avatars    *services.AvatarService

	SessionStore  sessions.Store
	Gatherer      prometheus.Gatherer
	Logger        *zap.Logger
	InviteURL     func(token string) string
	WorkspaceURL  func(workspaceID string) string
	SecureCookies bool
	AfterLogin    string
}

// NewRouter registers every route on a fresh gin engine.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Logger != nil {
		r.Use(middleware.RequestLogger(cfg.Logger))
	}
	r.Use(sessions.Sessions(constants.SessionCookieName, cfg.SessionStore))

	authHandler := NewAuthHandler(cfg.Auth, cfg.SecureCookies, cfg.AfterLogin)
	workspaceHandler := NewWorkspaceHandler(cfg.Workspaces)
	workspaceURL := cfg.WorkspaceURL
	if workspaceURL == nil {
		workspaceURL = func(workspaceID string) string {
			return constants.WorkspaceURLPathBase + workspaceID
		}
	}
	inviteHandler := NewInviteHandler(cfg.Workspaces, cfg.InviteURL, workspaceURL)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Workspace API is running",
		})
	})
	if cfg.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	auth := r.Group("/auth")
	{
		auth.GET("/login", authHandler.Login)
		auth.GET("/callback", authHandler.Callback)
		auth.POST("/logout", authHandler.Logout)
	}

	r.GET(constants.InviteURLPathBase+":token", middleware.RequireAuthOrLogin(), inviteHandler.FollowInviteLink)

	api := r.Group("/api")
	{
		if cfg.Avatars != nil {
			api.GET("/users/:id/avatar", NewAvatarHandler(cfg.Avatars).GetAvatar)
		}

		protected := api.Group("")
		protected.Use(middleware.RequireAuth())
		{
			protected.GET("/me", authHandler.GetCurrentUser)
			protected.DELETE("/me", authHandler.DeleteAccount)

			protected.GET("/workspaces", workspaceHandler.ListWorkspaces)
			protected.POST("/workspaces", workspaceHandler.CreateWorkspace)
			protected.GET("/workspaces/:id", workspaceHandler.GetWorkspace)
			protected.PATCH("/workspaces/:id", workspaceHandler.UpdateWorkspace)
			protected.DELETE("/workspaces/:id", workspaceHandler.DeleteWorkspace)
			protected.POST("/workspaces/:id/leave", workspaceHandler.LeaveWorkspace)
			protected.POST("/workspaces/:id/access", workspaceHandler.TouchAccess)
			protected.GET("/workspaces/:id/members", workspaceHandler.ListMembers)
			protected.DELETE("/workspaces/:id/members/:user_id", workspaceHandler.RemoveMember)
			protected.GET("/workspaces/:id/invites", inviteHandler.ListInvites)
			protected.POST("/workspaces/:id/invites", inviteHandler.GenerateInvite)

			protected.GET("/invites/:id", inviteHandler.PreviewInvite)
			protected.DELETE("/invites/:id", inviteHandler.RevokeInvite)
			protected.POST("/invites/:id/accept", inviteHandler.AcceptInvite)
		}
	}

	return r
}
