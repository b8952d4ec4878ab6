package infra

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tnqbao/gau-media-gateway/config"
)

// AuthorizationService is the boundary to the external session system.
type AuthorizationService struct {
	AuthorizationServiceURL string
	PrivateKey              string
	client                  *http.Client
}

// InitAuthorizationService returns nil when no authorization service is configured;
// tokens are then verified locally only.
func InitAuthorizationService(cfg *config.EnvConfig) *AuthorizationService {
	if cfg.ExternalService.AuthorizationServiceURL == "" {
		return nil
	}

	return &AuthorizationService{
		AuthorizationServiceURL: cfg.ExternalService.AuthorizationServiceURL,
		PrivateKey:              cfg.PrivateKey,
		client:                  &http.Client{Timeout: 5 * time.Second},
	}
}

func (s *AuthorizationService) CheckAccessToken(ctx context.Context, token string) error {
	endpoint := fmt.Sprintf("%s/api/v2/authorization/token/validate?token=%s",
		s.AuthorizationServiceURL, url.QueryEscape(token))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Private-Key", s.PrivateKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("invalid token: %s", string(raw))
	}

	return nil
}
