package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/yukikurage/workspace-api/internal/constants"
	"github.com/yukikurage/workspace-api/internal/metrics"
	"github.com/yukikurage/workspace-api/internal/models"
	"github.com/yukikurage/workspace-api/internal/repository"
	"github.com/yukikurage/workspace-api/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Invite acceptance results recorded in metrics.
const (
	acceptJoined        = "joined"
	acceptAlreadyMember = "already_member"
	acceptInvalid       = "invalid"
	acceptExpired       = "expired"
)

// WorkspaceService provides business logic for workspaces, memberships and invites.
type WorkspaceService struct {
	workspaces repository.WorkspaceRepository
	invites    repository.InviteRepository
	users      repository.UserRepository
	inviteURL  func(token string) string
	logger     *zap.Logger
	metrics    *metrics.WorkspaceMetrics
	now        func() time.Time
}

// NewWorkspaceService creates a new WorkspaceService. inviteURL turns a token
// into the link handed to invitees.
func NewWorkspaceService(
	workspaces repository.WorkspaceRepository,
	invites repository.InviteRepository,
	users repository.UserRepository,
	inviteURL func(token string) string,
	logger *zap.Logger,
	m *metrics.WorkspaceMetrics,
) *WorkspaceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkspaceService{
		workspaces: workspaces,
		invites:    invites,
		users:      users,
		inviteURL:  inviteURL,
		logger:     logger,
		metrics:    m,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the wall clock, mainly for tests.
func (s *WorkspaceService) WithClock(now func() time.Time) *WorkspaceService {
	s.now = now
	return s
}

// InviteLink is a freshly generated invite together with its redemption URL.
type InviteLink struct {
	Invite *models.WorkspaceInvite
	URL    string
}

func (s *WorkspaceService) observe(operation string, err *error) {
	s.metrics.ObserveOperation(operation, outcomeFor(*err))
}

// operationFailed logs the store error and hides it behind ErrOperationFailed.
func (s *WorkspaceService) operationFailed(operation string, caller Caller, err error) error {
	s.logger.Error("workspace operation failed",
		zap.String("operation", operation),
		zap.String("caller", caller.UserID),
		zap.Error(err),
	)
	return ErrOperationFailed
}

// membership resolves the caller's membership. A missing workspace and a
// non-member caller are indistinguishable.
func (s *WorkspaceService) membership(ctx context.Context, operation string, caller Caller, workspaceID string) (*models.WorkspaceMember, error) {
	if !caller.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}

	member, err := s.workspaces.FindMember(ctx, workspaceID, caller.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotAuthorized
		}
		return nil, s.operationFailed(operation, caller, err)
	}
	return member, nil
}

func (s *WorkspaceService) requireManager(ctx context.Context, operation string, caller Caller, workspaceID string) (*models.WorkspaceMember, error) {
	member, err := s.membership(ctx, operation, caller, workspaceID)
	if err != nil {
		return nil, err
	}
	if !member.Role.CanManage() {
		return nil, ErrNotAuthorized
	}
	return member, nil
}

func validateWorkspaceName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > constants.MaxWorkspaceNameLength {
		return "", ErrInvalidWorkspaceName
	}
	return name, nil
}

// ListWorkspaces returns the caller's memberships with workspaces preloaded,
// most recently accessed first.
func (s *WorkspaceService) ListWorkspaces(ctx context.Context, caller Caller) (_ []models.WorkspaceMember, err error) {
	const op = "list_workspaces"
	defer s.observe(op, &err)

	if !caller.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}

	memberships, err := s.workspaces.ListMembershipsByUser(ctx, caller.UserID)
	if err != nil {
		return nil, s.operationFailed(op, caller, err)
	}
	return memberships, nil
}

// GetWorkspace returns the caller's membership with its workspace.
func (s *WorkspaceService) GetWorkspace(ctx context.Context, caller Caller, workspaceID string) (_ *models.WorkspaceMember, err error) {
	const op = "get_workspace"
	defer s.observe(op, &err)

	return s.membership(ctx, op, caller, workspaceID)
}

func (s *WorkspaceService) ListMembers(ctx context.Context, caller Caller, workspaceID string) (_ []models.WorkspaceMember, err error) {
	const op = "list_members"
	defer s.observe(op, &err)

	if _, err := s.membership(ctx, op, caller, workspaceID); err != nil {
		return nil, err
	}

	members, err := s.workspaces.ListMembers(ctx, workspaceID)
	if err != nil {
		return nil, s.operationFailed(op, caller, err)
	}
	return members, nil
}

// CreateWorkspace creates a workspace owned by the caller.
func (s *WorkspaceService) CreateWorkspace(ctx context.Context, caller Caller, name string) (_ *models.WorkspaceMember, err error) {
	const op = "create_workspace"
	defer s.observe(op, &err)

	if !caller.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}

	name, err = validateWorkspaceName(name)
	if err != nil {
		return nil, err
	}

	ws, owner, err := s.newWorkspace(ctx, caller.UserID, name)
	if err != nil {
		return nil, s.operationFailed(op, caller, err)
	}

	if err := s.workspaces.CreateWithOwner(ctx, ws, owner); err != nil {
		return nil, s.operationFailed(op, caller, err)
	}

	owner.Workspace = *ws
	return owner, nil
}

// newWorkspace builds the workspace row and its owner membership.
func (s *WorkspaceService) newWorkspace(ctx context.Context, ownerID, name string) (*models.Workspace, *models.WorkspaceMember, error) {
	id := uuid.NewString()
	slug, err := s.ensureSlug(ctx, name, id)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	ws := &models.Workspace{
		ID:        id,
		Name:      name,
		Slug:      slug,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	owner := &models.WorkspaceMember{
		UserID:         ownerID,
		Role:           models.RoleOwner,
		JoinedAt:       now,
		LastAccessedAt: now,
	}
	return ws, owner, nil
}

// ensureSlug picks the first free slug among base, base-1 ... base-N and
// falls back to a suffix derived from the workspace id.
func (s *WorkspaceService) ensureSlug(ctx context.Context, name, workspaceID string) (string, error) {
	base, err := utils.Slugify(name, constants.DefaultWorkspaceSlug)
	if err != nil {
		return "", err
	}

	for i := 0; i <= constants.MaxSlugAttempts; i++ {
		candidate := base
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d", base, i)
		}

		exists, err := s.workspaces.SlugExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}

	return base + "-" + strings.ReplaceAll(workspaceID, "-", ""), nil
}

// UpdateWorkspace renames a workspace. Owner only.
func (s *WorkspaceService) UpdateWorkspace(ctx context.Context, caller Caller, workspaceID, name string) (_ *models.Workspace, err error) {
	const op = "update_workspace"
	defer s.observe(op, &err)

	member, err := s.requireManager(ctx, op, caller, workspaceID)
	if err != nil {
		return nil, err
	}

	name, err = validateWorkspaceName(name)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.workspaces.UpdateName(ctx, workspaceID, name, now); err != nil {
		return nil, s.operationFailed(op, caller, err)
	}

	ws := member.Workspace
	ws.Name = name
	ws.UpdatedAt = now
	return &ws, nil
}

// DeleteWorkspace removes the workspace with its memberships and invites. Owner only.
func (s *WorkspaceService) DeleteWorkspace(ctx context.Context, caller Caller, workspaceID string) (err error) {
	const op = "delete_workspace"
	defer s.observe(op, &err)

	if _, err := s.requireManager(ctx, op, caller, workspaceID); err != nil {
		return err
	}

	if err := s.workspaces.Delete(ctx, workspaceID); err != nil {
		return s.operationFailed(op, caller, err)
	}
	return nil
}

// LeaveWorkspace drops the caller's own membership. Owners cannot leave.
func (s *WorkspaceService) LeaveWorkspace(ctx context.Context, caller Caller, workspaceID string) (err error) {
	const op = "leave_workspace"
	defer s.observe(op, &err)

	member, err := s.membership(ctx, op, caller, workspaceID)
	if err != nil {
		return err
	}
	if !member.Role.CanLeave() {
		return ErrNotAuthorized
	}

	if err := s.workspaces.RemoveMember(ctx, workspaceID, caller.UserID); err != nil {
		return s.operationFailed(op, caller, err)
	}
	return nil
}

// GenerateInviteLink creates a new invite valid for seven days. Owner only.
func (s *WorkspaceService) GenerateInviteLink(ctx context.Context, caller Caller, workspaceID string) (_ *InviteLink, err error) {
	const op = "generate_invite_link"
	defer s.observe(op, &err)

	if _, err := s.requireManager(ctx, op, caller, workspaceID); err != nil {
		return nil, err
	}

	token, err := utils.GenerateInviteToken()
	if err != nil {
		return nil, s.operationFailed(op, caller, err)
	}

	now := s.now()
	invite := &models.WorkspaceInvite{
		ID:          uuid.NewString(),
		WorkspaceID: workspaceID,
		Token:       token,
		ExpiresAt:   now.Add(constants.InviteTTL),
		CreatedByID: caller.UserID,
		CreatedAt:   now,
	}

	if err := s.invites.Create(ctx, invite); err != nil {
		return nil, s.operationFailed(op, caller, err)
	}

	return &InviteLink{Invite: invite, URL: s.inviteURL(token)}, nil
}

// ListActiveInvites returns unexpired invites, newest first. Any member may list.
func (s *WorkspaceService) ListActiveInvites(ctx context.Context, caller Caller, workspaceID string) (_ []models.WorkspaceInvite, err error) {
	const op = "list_active_invites"
	defer s.observe(op, &err)

	if _, err := s.membership(ctx, op, caller, workspaceID); err != nil {
		return nil, err
	}

	invites, err := s.invites.ListActive(ctx, workspaceID, s.now())
	if err != nil {
		return nil, s.operationFailed(op, caller, err)
	}
	return invites, nil
}

// RevokeInvite deletes an invite. Only the owner of its workspace may revoke.
func (s *WorkspaceService) RevokeInvite(ctx context.Context, caller Caller, inviteID string) (err error) {
	const op = "revoke_invite"
	defer s.observe(op, &err)

	if !caller.IsAuthenticated() {
		return ErrUnauthenticated
	}

	invite, err := s.invites.FindByID(ctx, inviteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return s.operationFailed(op, caller, err)
	}

	if _, err := s.requireManager(ctx, op, caller, invite.WorkspaceID); err != nil {
		return err
	}

	if err := s.invites.Delete(ctx, invite.ID); err != nil {
		return s.operationFailed(op, caller, err)
	}
	return nil
}

// InvitePreview describes an invite as seen by someone holding its token.
type InvitePreview struct {
	WorkspaceID   string
	WorkspaceName string
	ExpiresAt     time.Time
	Expired       bool
	AlreadyMember bool
}

// PreviewInvite resolves a token to its workspace without redeeming it.
// Expired invites are still described so the caller can tell them apart
// from unknown tokens.
func (s *WorkspaceService) PreviewInvite(ctx context.Context, caller Caller, token string) (_ *InvitePreview, err error) {
	const op = "preview_invite"
	defer s.observe(op, &err)

	if !caller.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}

	invite, err := s.invites.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, s.operationFailed(op, caller, err)
	}

	ws, err := s.workspaces.FindByID(ctx, invite.WorkspaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, s.operationFailed(op, caller, err)
	}

	preview := &InvitePreview{
		WorkspaceID:   ws.ID,
		WorkspaceName: ws.Name,
		ExpiresAt:     invite.ExpiresAt,
		Expired:       invite.IsExpired(s.now()),
	}

	_, err = s.workspaces.FindMember(ctx, ws.ID, caller.UserID)
	switch {
	case err == nil:
		preview.AlreadyMember = true
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, s.operationFailed(op, caller, err)
	}
	return preview, nil
}

// AcceptInvite redeems a bearer token and returns the workspace id. A caller
// who is already a member only has their access time refreshed and the
// invite stays usable.
func (s *WorkspaceService) AcceptInvite(ctx context.Context, caller Caller, token string) (_ string, err error) {
	const op = "accept_invite"
	defer s.observe(op, &err)

	if !caller.IsAuthenticated() {
		return "", ErrUnauthenticated
	}

	invite, err := s.invites.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.metrics.ObserveInviteAccepted(acceptInvalid)
			return "", ErrInvalidToken
		}
		return "", s.operationFailed(op, caller, err)
	}

	now := s.now()
	if invite.IsExpired(now) {
		s.metrics.ObserveInviteAccepted(acceptExpired)
		return "", ErrInviteExpired
	}

	_, err = s.workspaces.FindMember(ctx, invite.WorkspaceID, caller.UserID)
	switch {
	case err == nil:
		return s.refreshExistingMember(ctx, op, caller, invite.WorkspaceID, now)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return "", s.operationFailed(op, caller, err)
	}

	member := &models.WorkspaceMember{
		UserID:         caller.UserID,
		JoinedAt:       now,
		LastAccessedAt: now,
	}
	if err := s.invites.Redeem(ctx, invite, member); err != nil {
		// Lost a race with a concurrent accept by the same caller.
		if errors.Is(err, repository.ErrMemberExists) || errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.refreshExistingMember(ctx, op, caller, invite.WorkspaceID, now)
		}
		if errors.Is(err, repository.ErrInviteConsumed) {
			s.metrics.ObserveInviteAccepted(acceptInvalid)
			return "", ErrInvalidToken
		}
		return "", s.operationFailed(op, caller, err)
	}

	s.metrics.ObserveInviteAccepted(acceptJoined)
	s.logger.Info("invite accepted",
		zap.String("workspace_id", invite.WorkspaceID),
		zap.String("user_id", caller.UserID),
	)
	return invite.WorkspaceID, nil
}

func (s *WorkspaceService) refreshExistingMember(ctx context.Context, op string, caller Caller, workspaceID string, now time.Time) (string, error) {
	if err := s.workspaces.TouchMember(ctx, workspaceID, caller.UserID, now); err != nil {
		return "", s.operationFailed(op, caller, err)
	}
	s.metrics.ObserveInviteAccepted(acceptAlreadyMember)
	return workspaceID, nil
}

// TouchWorkspaceAccess records that the caller opened the workspace.
func (s *WorkspaceService) TouchWorkspaceAccess(ctx context.Context, caller Caller, workspaceID string) (err error) {
	const op = "touch_workspace_access"
	defer s.observe(op, &err)

	if _, err := s.membership(ctx, op, caller, workspaceID); err != nil {
		return err
	}

	if err := s.workspaces.TouchMember(ctx, workspaceID, caller.UserID, s.now()); err != nil {
		return s.operationFailed(op, caller, err)
	}
	return nil
}

// RemoveMember removes another user from the workspace. Owner only; owners
// cannot remove themselves. Removing a non-member succeeds.
func (s *WorkspaceService) RemoveMember(ctx context.Context, caller Caller, workspaceID, targetUserID string) (err error) {
	const op = "remove_member"
	defer s.observe(op, &err)

	if _, err := s.requireManager(ctx, op, caller, workspaceID); err != nil {
		return err
	}
	if targetUserID == caller.UserID {
		return ErrNotAuthorized
	}

	if err := s.workspaces.RemoveMember(ctx, workspaceID, targetUserID); err != nil {
		return s.operationFailed(op, caller, err)
	}
	return nil
}

// ProvisionDefaultWorkspace stores a newly signed-up user together with their
// personal workspace in one transaction.
func (s *WorkspaceService) ProvisionDefaultWorkspace(ctx context.Context, user *models.User) (_ *models.Workspace, err error) {
	const op = "provision_default_workspace"
	defer s.observe(op, &err)

	caller := Caller{UserID: user.ID}

	ws, owner, err := s.newWorkspace(ctx, user.ID, defaultWorkspaceName(user.Name))
	if err != nil {
		return nil, s.operationFailed(op, caller, err)
	}

	if err := s.users.CreateWithDefaultWorkspace(ctx, user, ws, owner); err != nil {
		return nil, s.operationFailed(op, caller, err)
	}
	return ws, nil
}

func defaultWorkspaceName(userName string) string {
	userName = strings.TrimSpace(userName)
	if userName == "" {
		return "My Workspace"
	}

	name := userName + "'s Workspace"
	if utf8.RuneCountInString(name) > constants.MaxWorkspaceNameLength {
		runes := []rune(name)
		name = string(runes[:constants.MaxWorkspaceNameLength])
	}
	return name
}

// SweepExpiredInvites deletes every invite whose expiry has passed.
func (s *WorkspaceService) SweepExpiredInvites(ctx context.Context) (_ int64, err error) {
	const op = "sweep_expired_invites"
	defer s.observe(op, &err)

	removed, err := s.invites.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, s.operationFailed(op, Caller{}, err)
	}

	s.metrics.ObserveSwept(removed)
	s.logger.Info("expired invites swept", zap.Int64("removed", removed))
	return removed, nil
}
