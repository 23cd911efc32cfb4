package handlers

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/workspace-api/internal/constants"
	"github.com/yukikurage/workspace-api/internal/database"
	"github.com/yukikurage/workspace-api/internal/identity"
	"github.com/yukikurage/workspace-api/internal/models"
	"github.com/yukikurage/workspace-api/internal/repository"
	"github.com/yukikurage/workspace-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	db         *gorm.DB
	workspaces *services.WorkspaceService
	auth       *services.AuthService
	provider   *stubProvider
}

type stubProvider struct {
	claims *identity.Claims
}

func (p *stubProvider) AuthCodeURL(state, nonce string) string {
	return "https://idp.test/authorize?state=" + state + "&nonce=" + nonce
}

func (p *stubProvider) Exchange(context.Context, string, string) (*identity.Claims, error) {
	return p.claims, nil
}

func testInviteURL(token string) string {
	return "https://app.test/invite/" + token
}

func testWorkspaceURL(workspaceID string) string {
	return "https://app.test/api/workspaces/" + workspaceID
}

func setupTestEnv(t *testing.T) testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.Migrate(db))

	users := repository.NewUserRepository(db)
	workspaces := services.NewWorkspaceService(
		repository.NewWorkspaceRepository(db),
		repository.NewInviteRepository(db),
		users,
		testInviteURL,
		nil,
		nil,
	)
	provider := &stubProvider{}

	return testEnv{
		db:         db,
		workspaces: workspaces,
		auth:       services.NewAuthService(users, provider, workspaces, nil),
		provider:   provider,
	}
}

func createTestUser(t *testing.T, db *gorm.DB, id string) *models.User {
	t.Helper()
	user := &models.User{ID: id, Subject: "sub-" + id, Name: id}
	require.NoError(t, db.Create(user).Error)
	return user
}

func testContext(method, url string, body []byte, userID string, params ...gin.Param) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = params
	if userID != "" {
		c.Set(constants.ContextKeyUserID, userID)
	}

	return c, w
}
