package repository

import (
	"context"
	"time"

	"github.com/yukikurage/workspace-api/internal/models"
)

// WorkspaceRepository defines data access for workspaces and their memberships.
type WorkspaceRepository interface {
	// CreateWithOwner inserts the workspace and its owner membership atomically.
	CreateWithOwner(ctx context.Context, ws *models.Workspace, owner *models.WorkspaceMember) error

	// FindByID finds a workspace by ID
	FindByID(ctx context.Context, id string) (*models.Workspace, error)

	// SlugExists reports whether a workspace already uses slug
	SlugExists(ctx context.Context, slug string) (bool, error)

	// UpdateName renames a workspace and bumps its updated timestamp
	UpdateName(ctx context.Context, id, name string, updatedAt time.Time) error

	// Delete removes a workspace together with its invites and memberships
	Delete(ctx context.Context, id string) error

	// FindMember finds one membership with its workspace preloaded
	FindMember(ctx context.Context, workspaceID, userID string) (*models.WorkspaceMember, error)

	// ListMembershipsByUser lists a user's memberships, most recently accessed first
	ListMembershipsByUser(ctx context.Context, userID string) ([]models.WorkspaceMember, error)

	// ListMembers lists all members of a workspace with their user profile, owner first
	ListMembers(ctx context.Context, workspaceID string) ([]models.WorkspaceMember, error)

	// RemoveMember deletes a membership
	RemoveMember(ctx context.Context, workspaceID, userID string) error

	// TouchMember sets a membership's last accessed time
	TouchMember(ctx context.Context, workspaceID, userID string, at time.Time) error
}

// InviteRepository defines data access for workspace invites.
type InviteRepository interface {
	// Create stores a new invite
	Create(ctx context.Context, invite *models.WorkspaceInvite) error

	// FindByID finds an invite by ID
	FindByID(ctx context.Context, id string) (*models.WorkspaceInvite, error)

	// FindByToken finds an invite by its bearer token
	FindByToken(ctx context.Context, token string) (*models.WorkspaceInvite, error)

	// ListActive lists a workspace's invites that have not expired at now
	ListActive(ctx context.Context, workspaceID string, now time.Time) ([]models.WorkspaceInvite, error)

	// Delete removes an invite
	Delete(ctx context.Context, id string) error

	// Redeem inserts the membership and consumes the invite in one transaction.
	// ErrMemberExists is returned when the membership is already present and
	// ErrInviteConsumed when the invite was deleted by a concurrent redeem.
	Redeem(ctx context.Context, invite *models.WorkspaceInvite, member *models.WorkspaceMember) error

	// DeleteExpired removes every invite that has expired at now
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// FindByID finds a user by ID
	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindBySubject finds a user by identity provider subject
	FindBySubject(ctx context.Context, subject string) (*models.User, error)

	// CreateWithDefaultWorkspace creates a user, their default workspace,
	// and the owner membership within a single transaction.
	CreateWithDefaultWorkspace(ctx context.Context, user *models.User, ws *models.Workspace, member *models.WorkspaceMember) error

	// UpdateProfile refreshes name, email and avatar
	UpdateProfile(ctx context.Context, user *models.User) error

	// Delete removes the user, the workspaces they own, and all of their memberships
	Delete(ctx context.Context, id string) error
}
