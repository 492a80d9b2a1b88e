package authz

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

type authRequest struct {
	User     authUser        `json:"user"`
	Requests []policyRequest `json:"requests"`
}

type authUser struct {
	Token string `json:"token"`
}

type policyRequest struct {
	Resource string       `json:"resource"`
	Action   policyAction `json:"action"`
}

type policyAction struct {
	Service string `json:"service"`
	Method  string `json:"method"`
}

type authResponse struct {
	Auth bool `json:"auth"`
}

// Client calls POST {baseURL}/auth/request. Positive decisions are cached
// per (token, method, resource) when a cache TTL is configured.
type Client struct {
	baseURL    string
	httpClient *http.Client
	decisions  *cache.Cache
}

func NewClient(baseURL string, timeout, cacheTTL time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	if cacheTTL > 0 {
		c.decisions = cache.New(cacheTTL, 2*cacheTTL)
	}
	return c
}

func (c *Client) Authorize(ctx context.Context, token, method, resource string) error {
	key := method + "\x00" + resource + "\x00" + token
	if c.decisions != nil {
		if _, ok := c.decisions.Get(key); ok {
			return nil
		}
	}

	allowed, err := c.request(ctx, token, method, resource)
	if err != nil {
		slog.Error("[Authz] Error while talking to policy service", "error", err)
		return fmt.Errorf("%w: %v", ErrPolicyUnavailable, err)
	}
	if !allowed {
		slog.Warn("[Authz] Permission denied",
			"service", Service,
			"method", method,
			"resource", resource)
		return ErrForbidden
	}

	if c.decisions != nil {
		c.decisions.SetDefault(key, struct{}{})
	}
	return nil
}

func (c *Client) request(ctx context.Context, token, method, resource string) (bool, error) {
	body, err := json.Marshal(authRequest{
		User: authUser{Token: token},
		Requests: []policyRequest{{
			Resource: resource,
			Action:   policyAction{Service: Service, Method: method},
		}},
	})
	if err != nil {
		return false, fmt.Errorf("failed to marshal auth request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/request", bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("failed to build auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var decision authResponse
	if err := json.NewDecoder(resp.Body).Decode(&decision); err != nil {
		return false, fmt.Errorf("failed to decode auth response: %w", err)
	}
	return decision.Auth, nil
}
