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

// GormInviteRepository is a GORM implementation of InviteRepository
type GormInviteRepository struct {
	db *gorm.DB
}

// NewInviteRepository creates a new InviteRepository
func NewInviteRepository(db *gorm.DB) InviteRepository {
	return &GormInviteRepository{db: db}
}

func (r *GormInviteRepository) Create(ctx context.Context, invite *models.WorkspaceInvite) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(invite).Error
}

func (r *GormInviteRepository) FindByID(ctx context.Context, id string) (*models.WorkspaceInvite, error) {
	var invite models.WorkspaceInvite
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&invite).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *GormInviteRepository) FindByToken(ctx context.Context, token string) (*models.WorkspaceInvite, error) {
	var invite models.WorkspaceInvite
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&invite).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *GormInviteRepository) ListActive(ctx context.Context, workspaceID string, now time.Time) ([]models.WorkspaceInvite, error) {
	var invites []models.WorkspaceInvite
	if err := r.db.WithContext(ctx).
		Scopes(database.ActiveInvites(now)).
		Where("workspace_id = ?", workspaceID).
		Order("created_at DESC").
		Find(&invites).Error; err != nil {
		return nil, err
	}
	return invites, nil
}

func (r *GormInviteRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.WorkspaceInvite{}).Error
}

func (r *GormInviteRepository) Redeem(ctx context.Context, invite *models.WorkspaceInvite, member *models.WorkspaceMember) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.WorkspaceMember{}).
			Scopes(database.Membership(invite.WorkspaceID, member.UserID)).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrMemberExists
		}

		member.WorkspaceID = invite.WorkspaceID
		member.Role = models.RoleMember

		if err := tx.Omit(clause.Associations).Create(member).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrMemberExists
			}
			return fmt.Errorf("%w: %v", ErrCreateMembership, err)
		}

		result := tx.Where("token = ?", invite.Token).Delete(&models.WorkspaceInvite{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrInviteConsumed
		}
		return nil
	})
}

func (r *GormInviteRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Scopes(database.ExpiredInvites(now)).
		Delete(&models.WorkspaceInvite{})
	return result.RowsAffected, result.Error
}
