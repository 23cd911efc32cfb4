package middleware

import (
	"net/http"
	"net/url"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/workspace-api/internal/constants"
	apierrors "github.com/yukikurage/workspace-api/internal/errors"
	"github.com/yukikurage/workspace-api/internal/services"
)

func sessionUserID(c *gin.Context) (string, bool) {
	userID, ok := sessions.Default(c).Get(constants.ContextKeyUserID).(string)
	return userID, ok && userID != ""
}

// RequireAuth checks if the user is authenticated via session
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := sessionUserID(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

// RequireAuthOrLogin is RequireAuth for browser routes: an anonymous request
// is sent to the login page and comes back to the same path afterwards.
func RequireAuthOrLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := sessionUserID(c)
		if !ok {
			target := constants.LoginPath + "?" + url.Values{
				constants.ReturnToQueryParam: {c.Request.URL.RequestURI()},
			}.Encode()
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return "", false
	}

	id, ok := userID.(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// GetCaller returns the explicit caller for service calls. An anonymous
// request yields the zero Caller, which services reject.
func GetCaller(c *gin.Context) services.Caller {
	userID, _ := GetUserID(c)
	return services.Caller{UserID: userID}
}
