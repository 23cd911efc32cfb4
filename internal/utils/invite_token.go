package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/yukikurage/workspace-api/internal/constants"
)

// GenerateInviteToken returns an unguessable URL-safe bearer token.
func GenerateInviteToken() (string, error) {
	return RandomToken(constants.InviteTokenBytes)
}

// RandomToken returns size random bytes encoded as unpadded base64url.
func RandomToken(size int) (string, error) {
	bytes := make([]byte, size)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
