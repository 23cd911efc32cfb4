package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/workspace-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

var (
	// ErrCreateUser is returned when creating a user fails inside the sign-up transaction.
	ErrCreateUser = errors.New("user repository: create user failed")
)

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindBySubject finds a user by identity provider subject
func (r *GormUserRepository) FindBySubject(ctx context.Context, subject string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("subject = ?", subject).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateWithDefaultWorkspace creates a user, their default workspace, and the owner membership atomically.
func (r *GormUserRepository) CreateWithDefaultWorkspace(ctx context.Context, user *models.User, ws *models.Workspace, member *models.WorkspaceMember) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateUser, err)
		}

		ws.OwnerID = user.ID
		member.UserID = user.ID

		return createWorkspaceWithOwner(tx, ws, member)
	})
}

// UpdateProfile refreshes the identity-provider owned fields
func (r *GormUserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"name":       user.Name,
			"email":      user.Email,
			"avatar_url": user.AvatarURL,
		}).Error
}

// Delete removes the user in a transaction. Workspaces the user owns are
// deleted with their dependents so no workspace is left without an owner.
func (r *GormUserRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owned []string
		if err := tx.Model(&models.Workspace{}).Where("owner_id = ?", id).Pluck("id", &owned).Error; err != nil {
			return err
		}

		for _, wsID := range owned {
			if err := deleteWorkspaceCascade(tx, wsID); err != nil {
				return err
			}
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.WorkspaceMember{}).Error; err != nil {
			return err
		}

		if err := tx.Where("created_by_id = ?", id).Delete(&models.WorkspaceInvite{}).Error; err != nil {
			return err
		}

		return tx.Where("id = ?", id).Delete(&models.User{}).Error
	})
}
