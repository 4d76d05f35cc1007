// Package supabase validates affiliate bearer tokens against the Supabase auth API.
package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/feliciofc-debug/amz-ofertas-site/internal/domain"
	"github.com/feliciofc-debug/amz-ofertas-site/internal/metrics"
)

const defaultTimeout = 10 * time.Second

// AuthClient implements domain.TokenVerifier using the Supabase GoTrue user endpoint.
type AuthClient struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
}

// NewAuthClient creates an AuthClient for the given Supabase project.
func NewAuthClient(baseURL, anonKey string) *AuthClient {
	return &AuthClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// VerifyToken resolves a bearer token to the affiliate identity it belongs to.
// Any 4xx from the auth backend means the token is invalid; other failures are
// reported as errors so the caller can distinguish outage from rejection.
func (c *AuthClient) VerifyToken(ctx context.Context, bearerToken string) (*domain.User, error) {
	if bearerToken == "" {
		metrics.TokenVerificationsTotal.WithLabelValues("invalid").Inc()
		return nil, domain.ErrInvalidToken
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create user request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+bearerToken)
	req.Header.Set("apikey", c.anonKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.TokenVerificationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to execute user request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		metrics.TokenVerificationsTotal.WithLabelValues("invalid").Inc()
		return nil, domain.ErrInvalidToken
	}
	if resp.StatusCode != http.StatusOK {
		metrics.TokenVerificationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("supabase auth returned status %d", resp.StatusCode)
	}

	var userResp struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&userResp); err != nil {
		metrics.TokenVerificationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to decode user response: %w", err)
	}

	userID, err := uuid.Parse(userResp.ID)
	if err != nil {
		metrics.TokenVerificationsTotal.WithLabelValues("invalid").Inc()
		return nil, domain.ErrInvalidToken
	}

	metrics.TokenVerificationsTotal.WithLabelValues("ok").Inc()
	return &domain.User{ID: userID, Email: userResp.Email}, nil
}
