package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/workspace-api/internal/services"
)

func TestRespondServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err    error
		status int
		code   string
	}{
		{services.ErrUnauthenticated, http.StatusUnauthorized, ErrCodeUnauthenticated},
		{services.ErrNotAuthorized, http.StatusForbidden, ErrCodeNotAuthorized},
		{services.ErrNotFound, http.StatusNotFound, ErrCodeNotFound},
		{services.ErrInvalidToken, http.StatusNotFound, ErrCodeInvalidToken},
		{services.ErrInviteExpired, http.StatusGone, ErrCodeExpired},
		{services.ErrInvalidWorkspaceName, http.StatusBadRequest, ErrCodeInvalidInput},
		{services.ErrOperationFailed, http.StatusInternalServerError, ErrCodeOperationFailed},
		{fmt.Errorf("dial tcp: connection refused"), http.StatusInternalServerError, ErrCodeOperationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			RespondServiceError(c, tt.err)

			require.Equal(t, tt.status, w.Code)
			var body APIError
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
			assert.NotContains(t, body.Message, "connection refused")
		})
	}
}
