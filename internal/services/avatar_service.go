package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/yukikurage/workspace-api/internal/constants"
	"github.com/yukikurage/workspace-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrAvatarNotFound       = errors.New("avatar not found")
	ErrAvatarHostNotAllowed = errors.New("avatar host not allowed")
	ErrAvatarUpstream       = errors.New("avatar upstream failed")
)

// Avatar is a relayed profile image.
type Avatar struct {
	ContentType string
	Body        []byte
}

// AvatarServiceConfig configures which upstream hosts may be fetched.
type AvatarServiceConfig struct {
	// AllowedHosts match exactly or as a parent domain.
	AllowedHosts []string
	// InsecureHosts may additionally be fetched over plain http.
	InsecureHosts []string
	Client        *http.Client
}

// AvatarService relays user avatars from an allow-listed set of image hosts.
type AvatarService struct {
	users         repository.UserRepository
	client        *http.Client
	allowedHosts  []string
	insecureHosts []string
	logger        *zap.Logger
}

func NewAvatarService(users repository.UserRepository, cfg AvatarServiceConfig, logger *zap.Logger) *AvatarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AvatarService{
		users:         users,
		allowedHosts:  cfg.AllowedHosts,
		insecureHosts: cfg.InsecureHosts,
		logger:        logger,
	}

	client := &http.Client{Timeout: constants.AvatarFetchTimeout}
	if cfg.Client != nil {
		copied := *cfg.Client
		client = &copied
	}
	client.CheckRedirect = s.checkRedirect
	s.client = client
	return s
}

// checkRedirect applies the host allow-list to every redirect hop.
func (s *AvatarService) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= constants.AvatarMaxRedirects {
		return ErrAvatarUpstream
	}
	if _, err := s.validate(req.URL.String()); err != nil {
		s.logger.Warn("avatar redirect rejected", zap.String("host", req.URL.Host))
		return err
	}
	return nil
}

// Fetch loads the avatar of userID from its upstream host.
func (s *AvatarService) Fetch(ctx context.Context, userID string) (*Avatar, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAvatarNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user.AvatarURL == "" {
		return nil, ErrAvatarNotFound
	}

	target, err := s.validate(user.AvatarURL)
	if err != nil {
		s.logger.Warn("avatar url rejected", zap.String("user_id", userID), zap.String("url", user.AvatarURL))
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, ErrAvatarUpstream
	}
	req.Header.Set("Accept", "image/*")

	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(err, ErrAvatarHostNotAllowed) {
			return nil, ErrAvatarHostNotAllowed
		}
		s.logger.Warn("avatar fetch failed", zap.String("host", target.Host), zap.Error(err))
		return nil, ErrAvatarUpstream
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrAvatarUpstream
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return nil, ErrAvatarUpstream
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, constants.AvatarMaxBytes+1))
	if err != nil || len(body) > constants.AvatarMaxBytes {
		return nil, ErrAvatarUpstream
	}

	return &Avatar{ContentType: contentType, Body: body}, nil
}

func (s *AvatarService) validate(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, ErrAvatarHostNotAllowed
	}

	host := strings.ToLower(u.Hostname())
	switch u.Scheme {
	case "https":
	case "http":
		if !slices.Contains(s.insecureHosts, host) {
			return nil, ErrAvatarHostNotAllowed
		}
	default:
		return nil, ErrAvatarHostNotAllowed
	}

	if !hostAllowed(s.allowedHosts, host) {
		return nil, ErrAvatarHostNotAllowed
	}
	return u, nil
}

// hostAllowed matches host against each allowed domain or any of its subdomains.
func hostAllowed(allowed []string, host string) bool {
	for _, domain := range allowed {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}
