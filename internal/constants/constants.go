package constants

import "time"

// Session and context keys
const (
	SessionCookieName = "workspace_session"
	ContextKeyUserID  = "user_id"

	OAuthStateCookieName  = "oauth_state"
	OAuthNonceCookieName  = "oauth_nonce"
	OAuthReturnCookieName = "oauth_return_to"
	OAuthCookieMaxAge     = 600

	LoginPath          = "/auth/login"
	ReturnToQueryParam = "return_to"
)

// Workspace constraints
const (
	MaxWorkspaceNameLength = 255
	DefaultWorkspaceSlug   = "workspace"
	// MaxSlugAttempts bounds the numeric-suffix search before falling back to an id suffix.
	MaxSlugAttempts = 20
)

// Invite lifecycle
const (
	InviteTTL         = 7 * 24 * time.Hour
	InviteTokenBytes  = 32
	InviteURLPathBase = "/invite/"

	WorkspaceURLPathBase = "/api/workspaces/"
)

// Avatar relay
const (
	AvatarMaxBytes     = 5 << 20
	AvatarFetchTimeout = 10 * time.Second
	AvatarMaxRedirects = 5
	AvatarCacheControl = "public, max-age=86400, stale-while-revalidate=604800"
)
