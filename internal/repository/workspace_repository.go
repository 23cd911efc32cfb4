package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/workspace-api/internal/database"
	"github.com/yukikurage/workspace-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrCreateWorkspace is returned when inserting the workspace row fails.
	ErrCreateWorkspace = errors.New("workspace repository: create workspace failed")
	// ErrCreateMembership is returned when inserting a membership row fails.
	ErrCreateMembership = errors.New("workspace repository: create membership failed")
	// ErrMemberExists is returned when the membership composite key is already taken.
	ErrMemberExists = errors.New("workspace repository: membership already exists")
	// ErrInviteConsumed is returned when the invite was redeemed or revoked mid-transaction.
	ErrInviteConsumed = errors.New("invite repository: invite already consumed")
)

// GormWorkspaceRepository is a GORM implementation of WorkspaceRepository
type GormWorkspaceRepository struct {
	db *gorm.DB
}

// NewWorkspaceRepository creates a new WorkspaceRepository
func NewWorkspaceRepository(db *gorm.DB) WorkspaceRepository {
	return &GormWorkspaceRepository{db: db}
}

func (r *GormWorkspaceRepository) CreateWithOwner(ctx context.Context, ws *models.Workspace, owner *models.WorkspaceMember) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return createWorkspaceWithOwner(tx, ws, owner)
	})
}

// createWorkspaceWithOwner runs inside a caller-provided transaction.
func createWorkspaceWithOwner(tx *gorm.DB, ws *models.Workspace, owner *models.WorkspaceMember) error {
	if err := tx.Omit(clause.Associations).Create(ws).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrCreateWorkspace, err)
	}

	owner.WorkspaceID = ws.ID
	owner.Role = models.RoleOwner

	if err := tx.Omit(clause.Associations).Create(owner).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrCreateMembership, err)
	}
	return nil
}

func (r *GormWorkspaceRepository) FindByID(ctx context.Context, id string) (*models.Workspace, error) {
	var ws models.Workspace
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&ws).Error; err != nil {
		return nil, err
	}
	return &ws, nil
}

func (r *GormWorkspaceRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Workspace{}).
		Where("slug = ?", slug).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormWorkspaceRepository) UpdateName(ctx context.Context, id, name string, updatedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Workspace{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"name":       name,
			"updated_at": updatedAt,
		}).Error
}

func (r *GormWorkspaceRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteWorkspaceCascade(tx, id)
	})
}

// deleteWorkspaceCascade removes dependents before the parent row.
func deleteWorkspaceCascade(tx *gorm.DB, id string) error {
	if err := tx.Where("workspace_id = ?", id).Delete(&models.WorkspaceInvite{}).Error; err != nil {
		return err
	}

	if err := tx.Where("workspace_id = ?", id).Delete(&models.WorkspaceMember{}).Error; err != nil {
		return err
	}

	return tx.Where("id = ?", id).Delete(&models.Workspace{}).Error
}

func (r *GormWorkspaceRepository) FindMember(ctx context.Context, workspaceID, userID string) (*models.WorkspaceMember, error) {
	var member models.WorkspaceMember
	if err := r.db.WithContext(ctx).
		Preload("Workspace").
		Scopes(database.Membership(workspaceID, userID)).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *GormWorkspaceRepository) ListMembershipsByUser(ctx context.Context, userID string) ([]models.WorkspaceMember, error) {
	var memberships []models.WorkspaceMember
	if err := r.db.WithContext(ctx).
		Preload("Workspace").
		Where("user_id = ?", userID).
		Order("last_accessed_at DESC").
		Order("joined_at ASC").
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

func (r *GormWorkspaceRepository) ListMembers(ctx context.Context, workspaceID string) ([]models.WorkspaceMember, error) {
	var members []models.WorkspaceMember
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("workspace_id = ?", workspaceID).
		Order("CASE WHEN role = 'owner' THEN 0 ELSE 1 END").
		Order("joined_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *GormWorkspaceRepository) RemoveMember(ctx context.Context, workspaceID, userID string) error {
	return r.db.WithContext(ctx).
		Scopes(database.Membership(workspaceID, userID)).
		Delete(&models.WorkspaceMember{}).Error
}

func (r *GormWorkspaceRepository) TouchMember(ctx context.Context, workspaceID, userID string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.WorkspaceMember{}).
		Scopes(database.Membership(workspaceID, userID)).
		Update("last_accessed_at", at).Error
}
