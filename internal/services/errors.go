package services

import (
	"errors"

	"github.com/yukikurage/workspace-api/internal/metrics"
)

var (
	ErrUnauthenticated      = errors.New("not authenticated")
	ErrNotAuthorized        = errors.New("not authorized")
	ErrNotFound             = errors.New("not found")
	ErrInvalidToken         = errors.New("invalid invite link")
	ErrInviteExpired        = errors.New("invite link has expired")
	ErrOperationFailed      = errors.New("operation failed")
	ErrInvalidWorkspaceName = errors.New("workspace name must be 1-255 characters")
)

// Caller identifies the authenticated user on whose behalf an operation runs.
type Caller struct {
	UserID string
}

func (c Caller) IsAuthenticated() bool {
	return c.UserID != ""
}

func outcomeFor(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, ErrUnauthenticated):
		return metrics.OutcomeUnauthenticated
	case errors.Is(err, ErrNotAuthorized):
		return metrics.OutcomeNotAuthorized
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidToken):
		return metrics.OutcomeNotFound
	case errors.Is(err, ErrInvalidWorkspaceName), errors.Is(err, ErrInviteExpired):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeFailed
	}
}
