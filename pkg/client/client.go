// Package client provides the HTTP client for the Feishu open API: tenant
// token handling, the JSON response envelope, and the Drive and Wiki endpoints.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"

	"github.com/feishukit/feishukit/internal/logging"
	"github.com/feishukit/feishukit/internal/metrics"
	"github.com/feishukit/feishukit/pkg/protocol"
	"github.com/feishukit/feishukit/pkg/retry"
)

// DefaultBaseURL is the open API root for feishu.cn tenants.
const DefaultBaseURL = "https://open.feishu.cn/open-apis"

// Client talks to the Feishu open API on behalf of one application.
type Client struct {
	baseURL     string
	domain      string
	appID       string
	appSecret   string
	httpClient  *http.Client
	retryConfig retry.Config

	mu    sync.Mutex
	token *TenantToken
	now   func() time.Time
}

// Config holds client configuration.
type Config struct {
	BaseURL     string
	AppID       string
	AppSecret   string
	Domain      string // tenant sub-domain ("n3kyhtp7sz") or full host, used for web links
	Timeout     time.Duration
	RetryConfig retry.Config
}

// New creates a new client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.RetryConfig.MaxAttempts == 0 {
		cfg.RetryConfig = retry.DefaultConfig()
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		domain:    cfg.Domain,
		appID:     cfg.AppID,
		appSecret: cfg.AppSecret,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		retryConfig: cfg.RetryConfig,
		now:         time.Now,
	}
}

// Domain returns the configured tenant domain.
func (c *Client) Domain() string {
	return c.domain
}

// ErrNoDomain is returned when a web link is requested but no tenant domain is configured.
var ErrNoDomain = errors.New("tenant domain is not configured (set FEISHU_DOMAIN)")

// APIError is a failed open API call. Status is the HTTP status; Code and
// Msg come from the response envelope when one could be read.
type APIError struct {
	Op        string
	Status    int
	Code      int
	Msg       string
	RequestID string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s failed (status=%d code=%d): %s", e.Op, e.Status, e.Code, e.Msg)
}

// AsAPIError checks if an error is an APIError and returns it.
func AsAPIError(err error) (*APIError, bool) {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// Codes the open API uses for an invalid or expired tenant token.
var tokenInvalidCodes = map[int]bool{
	99991661: true,
	99991663: true,
	99991664: true,
}

// call performs one API operation. GET requests are retried on transport
// failure and 5xx; anything that changes remote state is sent exactly once.
func (c *Client) call(ctx context.Context, op, method, path string, query url.Values, body, out interface{}) error {
	cfg := retry.Once()
	if method == http.MethodGet {
		cfg = c.retryConfig
	}
	return retry.Do(ctx, cfg, func() error {
		return c.callOnce(ctx, op, method, path, query, body, out)
	})
}

func (c *Client) callOnce(ctx context.Context, op, method, path string, query url.Values, body, out interface{}) error {
	token, err := c.TenantToken(ctx)
	if err != nil {
		return err
	}

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		payload = bytes.NewReader(data)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, payload)
	if err != nil {
		return err
	}
	requestID := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("X-Request-Id", requestID)

	log := logging.WithContext(ctx)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordAPIRequest(op, 0, time.Since(start))
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return retry.Retryable(fmt.Errorf("%s: %w", op, err))
	}
	defer resp.Body.Close()
	metrics.RecordAPIRequest(op, resp.StatusCode, time.Since(start))

	reader, err := responseReader(resp)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer reader.Close()

	var env protocol.Envelope
	decodeErr := json.NewDecoder(reader).Decode(&env)

	log.Debug("api call",
		logging.String("op", op),
		logging.String("method", method),
		logging.String("path", path),
		logging.Int("status", resp.StatusCode),
		logging.Int("code", env.Code),
		logging.String("request_id", requestID),
		logging.Duration("duration", time.Since(start)))

	if resp.StatusCode >= 400 || decodeErr != nil || env.Code != 0 {
		apiErr := &APIError{
			Op:        op,
			Status:    resp.StatusCode,
			Code:      env.Code,
			Msg:       env.Msg,
			RequestID: requestID,
		}
		if decodeErr != nil && apiErr.Msg == "" {
			apiErr.Msg = "unreadable response: " + decodeErr.Error()
		}
		if tokenInvalidCodes[env.Code] {
			c.invalidateToken()
			return retry.Retryable(apiErr)
		}
		if resp.StatusCode >= 500 {
			return retry.Retryable(apiErr)
		}
		return apiErr
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%s: decode data: %w", op, err)
		}
	}
	return nil
}

// responseReader returns the body, transparently gunzipping it.
func responseReader(resp *http.Response) (io.ReadCloser, error) {
	if resp.Header.Get("Content-Encoding") != "gzip" {
		return io.NopCloser(resp.Body), nil
	}
	gr, err := gzip.NewReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gzip response: %w", err)
	}
	return gr, nil
}

// webHost returns the web host for links, e.g. "n3kyhtp7sz.feishu.cn".
func (c *Client) webHost() (string, error) {
	if c.domain == "" {
		return "", ErrNoDomain
	}
	if strings.Contains(c.domain, ".") {
		return c.domain, nil
	}
	return c.domain + ".feishu.cn", nil
}
