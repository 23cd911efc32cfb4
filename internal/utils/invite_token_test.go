package utils

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/workspace-api/internal/constants"
)

func TestGenerateInviteToken(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		token, err := GenerateInviteToken()
		require.NoError(t, err)

		raw, err := base64.RawURLEncoding.DecodeString(token)
		require.NoError(t, err)
		require.Len(t, raw, constants.InviteTokenBytes)

		_, dup := seen[token]
		require.False(t, dup, "token generated twice")
		seen[token] = struct{}{}
	}
}
