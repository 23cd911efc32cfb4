package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/workspace-api/internal/dto"
	apierrors "github.com/yukikurage/workspace-api/internal/errors"
	"github.com/yukikurage/workspace-api/internal/models"
	"github.com/yukikurage/workspace-api/internal/services"
)

func TestInviteHandler_GenerateListAccept(t *testing.T) {
	env := setupTestEnv(t)
	handler := NewInviteHandler(env.workspaces, testInviteURL, testWorkspaceURL)
	owner := createTestUser(t, env.db, "owner")
	bob := createTestUser(t, env.db, "bob")

	ws, err := env.workspaces.CreateWorkspace(context.Background(), services.Caller{UserID: owner.ID}, "Team")
	require.NoError(t, err)
	idParam := gin.Param{Key: "id", Value: ws.WorkspaceID}

	c, w := testContext(http.MethodPost, "/api/workspaces/"+ws.WorkspaceID+"/invites", nil, owner.ID, idParam)
	handler.GenerateInvite(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var invite dto.InviteDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &invite))
	assert.Equal(t, "https://app.test/invite/"+invite.Token, invite.URL)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), invite.ExpiresAt, time.Minute)

	c, w = testContext(http.MethodGet, "/api/workspaces/"+ws.WorkspaceID+"/invites", nil, owner.ID, idParam)
	handler.ListInvites(c)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Invites []dto.InviteDTO `json:"invites"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Invites, 1)
	assert.Equal(t, invite.URL, list.Invites[0].URL)

	tokenParam := gin.Param{Key: "id", Value: invite.Token}
	c, w = testContext(http.MethodPost, "/api/invites/"+invite.Token+"/accept", nil, bob.ID, tokenParam)
	handler.AcceptInvite(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), ws.WorkspaceID)

	c, w = testContext(http.MethodPost, "/api/invites/"+invite.Token+"/accept", nil, bob.ID, tokenParam)
	handler.AcceptInvite(c)
	require.Equal(t, http.StatusNotFound, w.Code)
	var body apierrors.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apierrors.ErrCodeInvalidToken, body.Code)
}

func TestInviteHandler_ExpiredInvite(t *testing.T) {
	env := setupTestEnv(t)
	handler := NewInviteHandler(env.workspaces, testInviteURL, testWorkspaceURL)
	owner := createTestUser(t, env.db, "owner")
	bob := createTestUser(t, env.db, "bob")

	ws, err := env.workspaces.CreateWorkspace(context.Background(), services.Caller{UserID: owner.ID}, "Team")
	require.NoError(t, err)

	expired := &models.WorkspaceInvite{
		ID:          "expired",
		WorkspaceID: ws.WorkspaceID,
		Token:       "expired-token",
		ExpiresAt:   time.Now().UTC().Add(-time.Minute),
		CreatedByID: owner.ID,
	}
	require.NoError(t, env.db.Create(expired).Error)

	c, w := testContext(http.MethodPost, "/api/invites/expired-token/accept", nil, bob.ID, gin.Param{Key: "id", Value: "expired-token"})
	handler.AcceptInvite(c)
	assert.Equal(t, http.StatusGone, w.Code)
}

func TestInviteHandler_RevokeRequiresOwner(t *testing.T) {
	env := setupTestEnv(t)
	handler := NewInviteHandler(env.workspaces, testInviteURL, testWorkspaceURL)
	owner := createTestUser(t, env.db, "owner")
	outsider := createTestUser(t, env.db, "outsider")

	ws, err := env.workspaces.CreateWorkspace(context.Background(), services.Caller{UserID: owner.ID}, "Team")
	require.NoError(t, err)
	link, err := env.workspaces.GenerateInviteLink(context.Background(), services.Caller{UserID: owner.ID}, ws.WorkspaceID)
	require.NoError(t, err)
	idParam := gin.Param{Key: "id", Value: link.Invite.ID}

	c, w := testContext(http.MethodDelete, "/api/invites/"+link.Invite.ID, nil, outsider.ID, idParam)
	handler.RevokeInvite(c)
	assert.Equal(t, http.StatusForbidden, w.Code)

	c, w = testContext(http.MethodDelete, "/api/invites/missing", nil, owner.ID, gin.Param{Key: "id", Value: "missing"})
	handler.RevokeInvite(c)
	assert.Equal(t, http.StatusNotFound, w.Code)

	c, w = testContext(http.MethodDelete, "/api/invites/"+link.Invite.ID, nil, owner.ID, idParam)
	handler.RevokeInvite(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestInviteHandler_PreviewAndFollowLink(t *testing.T) {
	env := setupTestEnv(t)
	handler := NewInviteHandler(env.workspaces, testInviteURL, testWorkspaceURL)
	owner := createTestUser(t, env.db, "owner")
	bob := createTestUser(t, env.db, "bob")

	ws, err := env.workspaces.CreateWorkspace(context.Background(), services.Caller{UserID: owner.ID}, "Team")
	require.NoError(t, err)
	link, err := env.workspaces.GenerateInviteLink(context.Background(), services.Caller{UserID: owner.ID}, ws.WorkspaceID)
	require.NoError(t, err)

	c, w := testContext(http.MethodGet, "/api/invites/"+link.Invite.Token, nil, bob.ID, gin.Param{Key: "id", Value: link.Invite.Token})
	handler.PreviewInvite(c)
	require.Equal(t, http.StatusOK, w.Code)
	var preview dto.InvitePreviewDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &preview))
	assert.Equal(t, "Team", preview.WorkspaceName)
	assert.False(t, preview.AlreadyMember)

	c, w = testContext(http.MethodGet, "/invite/"+link.Invite.Token, nil, bob.ID, gin.Param{Key: "token", Value: link.Invite.Token})
	handler.FollowInviteLink(c)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, testWorkspaceURL(ws.WorkspaceID), w.Header().Get("Location"))

	c, w = testContext(http.MethodGet, "/api/invites/unknown", nil, bob.ID, gin.Param{Key: "id", Value: "unknown"})
	handler.PreviewInvite(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
