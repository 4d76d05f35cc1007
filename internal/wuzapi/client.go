package wuzapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/feliciofc-debug/amz-ofertas-site/internal/domain"
	"github.com/feliciofc-debug/amz-ofertas-site/internal/metrics"
)

const httpCallTimeout = 15 * time.Second

// StatusError carries the upstream HTTP status and response body of a failed
// gateway call, so handlers can report what the bridge actually said.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("wuzapi returned status %d: %s", e.StatusCode, e.Body)
}

// Client implements domain.GatewayClient against the Wuzapi session API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

// NewClient creates a gateway client for the given Wuzapi base URL.
func NewClient(baseURL string) *Client {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "wuzapi",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerStateChanges.WithLabelValues(name, to.String()).Inc()
		},
	})

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: httpCallTimeout},
		breaker:    breaker,
	}
}

// Status reports whether the instance's WhatsApp session is paired and connected.
func (c *Client) Status(ctx context.Context, token string) (*domain.SessionStatus, error) {
	body, err := c.get(ctx, "status", "/session/status", token)
	if err != nil {
		return nil, fmt.Errorf("failed to check session status: %w", err)
	}

	var statusResp struct {
		Connected bool    `json:"connected"`
		Phone     *string `json:"phone"`
	}
	if err := json.Unmarshal(body, &statusResp); err != nil {
		return nil, fmt.Errorf("failed to decode status response: %w", err)
	}

	return &domain.SessionStatus{
		Connected: statusResp.Connected,
		Phone:     statusResp.Phone,
	}, nil
}

// Logout force-closes the instance's WhatsApp session. The response body has
// no required shape, so only the status code matters.
func (c *Client) Logout(ctx context.Context, token string) error {
	if _, err := c.get(ctx, "logout", "/session/logout", token); err != nil {
		return fmt.Errorf("failed to logout session: %w", err)
	}
	return nil
}

// QRImage fetches the raw pairing QR image bytes for the instance.
func (c *Client) QRImage(ctx context.Context, token string) ([]byte, error) {
	body, err := c.get(ctx, "qr_image", "/session/qr/image", token)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch QR image: %w", err)
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, operation, path, token string) ([]byte, error) {
	start := time.Now()
	result, err := c.breaker.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Token", token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
		}

		return body, nil
	})
	metrics.GatewayOpDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.GatewayOpsTotal.WithLabelValues(operation, "error").Inc()
		return nil, err
	}

	metrics.GatewayOpsTotal.WithLabelValues(operation, "success").Inc()
	return result.([]byte), nil
}
