package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/yukikurage/workspace-api/internal/identity"
	"github.com/yukikurage/workspace-api/internal/models"
	"github.com/yukikurage/workspace-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrSignInFailed       = errors.New("sign-in with identity provider failed")
	ErrMissingSubject     = errors.New("identity provider returned no subject")
	ErrFailedToCreateUser = errors.New("failed to create user")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo   repository.UserRepository
	provider   identity.Provider
	workspaces *WorkspaceService
	logger     *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, provider identity.Provider, workspaces *WorkspaceService, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		userRepo:   userRepo,
		provider:   provider,
		workspaces: workspaces,
		logger:     logger,
	}
}

// LoginURL returns the identity provider consent URL.
func (s *AuthService) LoginURL(state, nonce string) string {
	return s.provider.AuthCodeURL(state, nonce)
}

// Authenticate exchanges the callback code and signs the user in.
func (s *AuthService) Authenticate(ctx context.Context, code, nonce string) (*models.User, error) {
	claims, err := s.provider.Exchange(ctx, code, nonce)
	if err != nil {
		s.logger.Warn("identity exchange failed", zap.Error(err))
		return nil, ErrSignInFailed
	}

	user, _, err := s.SignIn(ctx, claims)
	return user, err
}

// SignIn upserts the user identified by the claims' subject. On first sign-in
// the user's default workspace is created in the same transaction.
func (s *AuthService) SignIn(ctx context.Context, claims *identity.Claims) (*models.User, bool, error) {
	if claims == nil || claims.Subject == "" {
		return nil, false, ErrMissingSubject
	}

	user, err := s.userRepo.FindBySubject(ctx, claims.Subject)
	switch {
	case err == nil:
		if user.Name != claims.Name || user.Email != claims.Email || user.AvatarURL != claims.Picture {
			user.Name = claims.Name
			user.Email = claims.Email
			user.AvatarURL = claims.Picture
			if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
				// Stale profile data is not fatal for sign-in.
				s.logger.Warn("failed to refresh user profile", zap.String("user_id", user.ID), zap.Error(err))
			}
		}
		return user, false, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, false, fmt.Errorf("failed to find user: %w", err)
	}

	user = &models.User{
		ID:        uuid.NewString(),
		Subject:   claims.Subject,
		Name:      claims.Name,
		Email:     claims.Email,
		AvatarURL: claims.Picture,
	}

	if _, err := s.workspaces.ProvisionDefaultWorkspace(ctx, user); err != nil {
		return nil, false, ErrFailedToCreateUser
	}

	s.logger.Info("user signed up", zap.String("user_id", user.ID))
	return user, true, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// DeleteAccount removes the caller's user record, every workspace they own
// and all of their memberships.
func (s *AuthService) DeleteAccount(ctx context.Context, caller Caller) error {
	if !caller.IsAuthenticated() {
		return ErrUnauthenticated
	}

	if err := s.userRepo.Delete(ctx, caller.UserID); err != nil {
		s.logger.Error("failed to delete account", zap.String("caller", caller.UserID), zap.Error(err))
		return ErrOperationFailed
	}
	return nil
}
