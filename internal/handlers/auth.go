package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/workspace-api/internal/constants"
	"github.com/yukikurage/workspace-api/internal/dto"
	apierrors "github.com/yukikurage/workspace-api/internal/errors"
	"github.com/yukikurage/workspace-api/internal/middleware"
	"github.com/yukikurage/workspace-api/internal/services"
	"github.com/yukikurage/workspace-api/internal/utils"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService   *services.AuthService
	secureCookies bool
	afterLogin    string
}

// NewAuthHandler creates a new AuthHandler. afterLogin is where the browser
// lands once the callback has established a session.
func NewAuthHandler(authService *services.AuthService, secureCookies bool, afterLogin string) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		secureCookies: secureCookies,
		afterLogin:    afterLogin,
	}
}

// Login redirects to the identity provider with fresh state and nonce cookies.
// A relative return_to path is remembered for the callback.
func (h *AuthHandler) Login(c *gin.Context) {
	state, err := utils.RandomToken(32)
	if err != nil {
		apierrors.InternalError(c, "Failed to start login")
		return
	}
	nonce, err := utils.RandomToken(32)
	if err != nil {
		apierrors.InternalError(c, "Failed to start login")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(constants.OAuthStateCookieName, state, constants.OAuthCookieMaxAge, "/", "", h.secureCookies, true)
	c.SetCookie(constants.OAuthNonceCookieName, nonce, constants.OAuthCookieMaxAge, "/", "", h.secureCookies, true)
	if returnTo, ok := utils.SafeReturnPath(c.Query(constants.ReturnToQueryParam)); ok {
		c.SetCookie(constants.OAuthReturnCookieName, returnTo, constants.OAuthCookieMaxAge, "/", "", h.secureCookies, true)
	} else {
		c.SetCookie(constants.OAuthReturnCookieName, "", -1, "/", "", h.secureCookies, true)
	}

	c.Redirect(http.StatusFound, h.authService.LoginURL(state, nonce))
}

// Callback completes the provider round trip, initializes the session and
// sends the browser back to the remembered path or to afterLogin.
func (h *AuthHandler) Callback(c *gin.Context) {
	state, err := c.Cookie(constants.OAuthStateCookieName)
	if err != nil || state == "" || c.Query("state") != state {
		apierrors.BadRequest(c, "Invalid OAuth state")
		return
	}
	nonce, err := c.Cookie(constants.OAuthNonceCookieName)
	if err != nil || nonce == "" {
		apierrors.BadRequest(c, "Missing OAuth nonce")
		return
	}

	code := c.Query("code")
	if code == "" {
		apierrors.BadRequest(c, "Missing authorization code")
		return
	}

	c.SetCookie(constants.OAuthStateCookieName, "", -1, "/", "", h.secureCookies, true)
	c.SetCookie(constants.OAuthNonceCookieName, "", -1, "/", "", h.secureCookies, true)

	destination := h.afterLogin
	if raw, err := c.Cookie(constants.OAuthReturnCookieName); err == nil {
		c.SetCookie(constants.OAuthReturnCookieName, "", -1, "/", "", h.secureCookies, true)
		if returnTo, ok := utils.SafeReturnPath(raw); ok {
			destination = returnTo
		}
	}

	user, err := h.authService.Authenticate(c.Request.Context(), code, nonce)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(constants.ContextKeyUserID, user.ID)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.Redirect(http.StatusFound, destination)
}

// Logout removes the authentication session.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// DeleteAccount deletes the caller together with the workspaces they own.
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	if err := h.authService.DeleteAccount(c.Request.Context(), middleware.GetCaller(c)); err != nil {
		apierrors.RespondServiceError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to clear session")
		return
	}

	c.Status(http.StatusNoContent)
}

func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrSignInFailed),
		errors.Is(err, services.ErrMissingSubject):
		apierrors.Unauthorized(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrFailedToCreateUser):
		apierrors.InternalError(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
