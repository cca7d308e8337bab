package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/feishukit/feishukit/internal/logging"
	"github.com/feishukit/feishukit/internal/metrics"
	"github.com/feishukit/feishukit/pkg/protocol"
	"github.com/feishukit/feishukit/pkg/retry"
)

const (
	// tokenRefreshMargin refreshes the tenant token this long before it expires.
	tokenRefreshMargin = 60 * time.Second
	defaultTokenTTL    = 7200 * time.Second
)

// TenantToken is a cached tenant_access_token.
type TenantToken struct {
	Token     string
	ExpiresAt time.Time
}

// IsExpired returns true if the token has expired (with optional margin).
func (t *TenantToken) IsExpired(now time.Time, margin time.Duration) bool {
	return now.Add(margin).After(t.ExpiresAt)
}

// TenantToken returns a valid tenant access token, fetching a new one when
// none is cached or the cached one is about to expire.
func (c *Client) TenantToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != nil && !c.token.IsExpired(c.now(), tokenRefreshMargin) {
		return c.token.Token, nil
	}

	tok, err := retry.DoWithResult(ctx, c.retryConfig, func() (*TenantToken, error) {
		return c.fetchTenantToken(ctx)
	})
	metrics.RecordTokenRefresh(err == nil)
	if err != nil {
		return "", err
	}
	c.token = tok
	return tok.Token, nil
}

// Verify checks that the app credentials are accepted.
func (c *Client) Verify(ctx context.Context) error {
	_, err := c.TenantToken(ctx)
	return err
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.token = nil
	c.mu.Unlock()
}

func (c *Client) fetchTenantToken(ctx context.Context) (*TenantToken, error) {
	const op = "tenant token"
	if c.appID == "" || c.appSecret == "" {
		return nil, &APIError{Op: op, Msg: "app id and app secret are required"}
	}

	body, err := json.Marshal(protocol.TenantTokenRequest{AppID: c.appID, AppSecret: c.appSecret})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/auth/v3/tenant_access_token/internal", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordAPIRequest(op, 0, time.Since(start))
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, retry.Retryable(fmt.Errorf("token request failed: %w", err))
	}
	defer resp.Body.Close()
	metrics.RecordAPIRequest(op, resp.StatusCode, time.Since(start))

	var result protocol.TenantTokenResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode >= 400 || decodeErr != nil || result.Code != 0 || result.TenantAccessToken == "" {
		apiErr := &APIError{Op: op, Status: resp.StatusCode, Code: result.Code, Msg: result.Msg}
		if apiErr.Msg == "" {
			apiErr.Msg = "no token in response"
		}
		if resp.StatusCode >= 500 {
			return nil, retry.Retryable(apiErr)
		}
		return nil, apiErr
	}

	ttl := time.Duration(result.Expire) * time.Second
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	logging.Debug("tenant token refreshed", logging.Duration("ttl", ttl))
	return &TenantToken{Token: result.TenantAccessToken, ExpiresAt: c.now().Add(ttl)}, nil
}
