package artsy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/artsearch/backend/internal/config"
	"github.com/artsearch/backend/pkg/logger"
)

// Client talks to the Artsy catalog API. It memoizes a single XAPP
// token with no expiry tracking: the token is reused until a catalog
// call answers 401/403, which invalidates it and triggers exactly one
// re-fetch before the failure is surfaced. Concurrent refreshes may
// race; both converge on a valid token, so the fetch itself is not
// serialized.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client

	mu    sync.Mutex
	token string
}

// UpstreamError reports a catalog call that failed after the single
// token-refresh retry.
type UpstreamError struct {
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("artsy upstream error: status %d", e.StatusCode)
}

func NewClient(cfg config.ArtsyConfig) *Client {
	return &Client{
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *Client) cachedToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Client) storeToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// invalidateToken drops the cached token only if it is still the one
// the failed call used, so a concurrent refresh is not discarded.
func (c *Client) invalidateToken(stale string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == stale {
		c.token = ""
	}
}

func (c *Client) authToken(ctx context.Context) (string, error) {
	if token := c.cachedToken(); token != "" {
		return token, nil
	}
	return c.fetchToken(ctx)
}

func (c *Client) fetchToken(ctx context.Context) (string, error) {
	endpoint := fmt.Sprintf("%s/api/tokens/xapp_token?%s", c.baseURL, url.Values{
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching xapp token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Error("artsy_token_fetch_failed", nil, map[string]interface{}{
			"status": resp.StatusCode,
		})
		return "", &UpstreamError{StatusCode: resp.StatusCode}
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decoding xapp token response: %w", err)
	}
	if payload.Token == "" {
		return "", fmt.Errorf("xapp token response contained no token")
	}

	c.storeToken(payload.Token)
	logger.Info("artsy_token_refreshed", nil)
	return payload.Token, nil
}

// get performs one authenticated catalog call, retrying exactly once
// with a fresh token when the upstream rejects the cached one.
func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	token, err := c.authToken(ctx)
	if err != nil {
		return err
	}

	resp, err := c.doGet(ctx, path, query, token)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		resp.Body.Close()
		c.invalidateToken(token)

		token, err = c.authToken(ctx)
		if err != nil {
			return err
		}

		resp, err = c.doGet(ctx, path, query, token)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warn("artsy_request_failed", map[string]interface{}{
			"path":   path,
			"status": resp.StatusCode,
		})
		return &UpstreamError{StatusCode: resp.StatusCode}
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) doGet(ctx context.Context, path string, query url.Values, token string) (*http.Response, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Xapp-Token", token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling artsy %s: %w", path, err)
	}
	return resp, nil
}
