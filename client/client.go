// Package apiclient is the single chokepoint for all Shule backend calls.
// It owns tenant/auth header injection, read-response caching and the retry
// policy; every failure surfaces as a classified *Error.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

const (
	apiPrefix       = "/api/v1"
	tenantHeader    = "X-Tenant-ID"
	requestIDHeader = "X-Request-ID"

	noTenantKey = "-" // cache key sentinel when no tenant resolves
)

// authExemptPaths never trigger session-expired handling on a 401.
var authExemptPaths = []string{"/auth/login", "/auth/refresh", "/auth/me"}

type (
	Options struct {
		BaseURL string
		Token   string
		Tenant  string
		// Cookies participate in tenant resolution (tn_tenantId / tenantId).
		Cookies []*http.Cookie

		HTTPClient *http.Client
		Logger     core.Logger

		CacheTTL       time.Duration
		RequestTimeout time.Duration
		RetryBaseDelay time.Duration
		RetryMaxDelay  time.Duration
		MaxRetries     int

		// OnSessionExpired is invoked once per expiry with the tenant-scoped
		// session-expired route.
		OnSessionExpired func(route string)

		// Clock is injected into the cache for deterministic tests.
		Clock func() time.Time
	}

	Client struct {
		base             *url.URL
		http             *http.Client
		logger           core.Logger
		cache            *cache
		retry            retryPolicy
		onSessionExpired func(string)

		mu             sync.RWMutex
		token          string
		tenant         string
		sessionExpired bool
	}
)

// FromConfig builds client options from the application config.
func FromConfig(conf *core.Config) *Options {
	return &Options{
		BaseURL:        conf.API.BaseURL,
		Token:          conf.API.Token,
		Tenant:         conf.API.Tenant,
		CacheTTL:       conf.API.CacheTTL,
		RequestTimeout: conf.API.RequestTimeout,
		RetryBaseDelay: conf.API.RetryBaseDelay,
		RetryMaxDelay:  conf.API.RetryMaxDelay,
		MaxRetries:     conf.API.MaxRetries,
	}
}

func NewClient(opts *Options) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parsing base URL")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = nopLogger{}
	}

	ttl := opts.CacheTTL
	if ttl == 0 {
		ttl = 10 * time.Second
	}
	timeout := opts.RequestTimeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	baseDelay := opts.RetryBaseDelay
	if baseDelay == 0 {
		baseDelay = 500 * time.Millisecond
	}
	maxDelay := opts.RetryMaxDelay
	if maxDelay == 0 {
		maxDelay = 8 * time.Second
	}
	maxRetries := opts.MaxRetries
	if maxRetries == 0 {
		maxRetries = 2
	}

	c := &Client{
		base:   base,
		http:   httpClient,
		logger: logger,
		cache:  newCache(ttl, opts.Clock),
		retry: retryPolicy{
			baseDelay:  baseDelay,
			maxDelay:   maxDelay,
			maxRetries: maxRetries,
			timeout:    timeout,
			maxTimeout: 4 * timeout,
		},
		onSessionExpired: opts.OnSessionExpired,
		token:            opts.Token,
		tenant:           resolveTenant(opts.Tenant, opts.Cookies, base),
	}
	return c, nil
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken stores a fresh bearer token and rearms session-expired handling.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.sessionExpired = false
	c.mu.Unlock()
}

func (c *Client) Tenant() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tenant
}

// SetTenant switches the tenant context; cached responses from the previous
// tenant are dropped.
func (c *Client) SetTenant(tenant string) {
	c.mu.Lock()
	c.tenant = tenant
	c.mu.Unlock()
	c.cache.clear()
}

func (c *Client) SessionExpired() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionExpired
}

// get runs the cached, retried read pipeline.
func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	key := c.cacheKey(path)
	if data, ok := c.cache.get(key); ok {
		return unmarshalInto(data, out)
	}

	var data []byte
	var err error
	for attempt := 0; ; attempt++ {
		data, err = c.send(ctx, http.MethodGet, path, nil, attempt)
		if err == nil {
			break
		}
		if !isTransient(err) || attempt >= c.retry.maxRetries {
			return err
		}
		delay := c.retry.backoff(attempt + 1)
		c.logger.Warn("transient error on GET "+path+", retrying", err, delay)
		if serr := sleep(ctx, delay); serr != nil {
			return networkError(serr)
		}
	}

	c.cache.set(key, data)
	return unmarshalInto(data, out)
}

func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	return c.write(ctx, http.MethodPost, path, payload, out)
}

func (c *Client) put(ctx context.Context, path string, payload, out interface{}) error {
	return c.write(ctx, http.MethodPut, path, payload, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.write(ctx, http.MethodDelete, path, nil, nil)
}

// write sends a mutating call; a success clears the entire cache. Writes are
// never retried by this layer.
func (c *Client) write(ctx context.Context, method, path string, payload, out interface{}) error {
	data, err := c.send(ctx, method, path, payload, 0)
	if err != nil {
		return err
	}
	c.cache.clear()
	return unmarshalInto(data, out)
}

func (c *Client) send(ctx context.Context, method, path string, payload interface{}, attempt int) ([]byte, error) {
	actx, cancel := context.WithTimeout(ctx, c.retry.attemptTimeout(attempt))
	defer cancel()

	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrap(err, "marshaling request body")
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(actx, method, c.endpoint(path), body)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, uuid.New().String())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.mu.RLock()
	token, tenant := c.token, c.tenant
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if tenant != "" {
		req.Header.Set(tenantHeader, tenant)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, networkError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, networkError(err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := classifyResponse(resp.StatusCode, data)
		if apiErr.Kind == KindAuthentication && token != "" {
			c.handleSessionExpired(path)
		}
		return nil, apiErr
	}
	return data, nil
}

// handleSessionExpired flags the session and notifies the caller once,
// guarded against loops: auth endpoints are exempt and repeated 401s while
// already flagged are ignored.
func (c *Client) handleSessionExpired(path string) {
	for _, exempt := range authExemptPaths {
		if strings.HasPrefix(path, exempt) {
			return
		}
	}

	c.mu.Lock()
	if c.sessionExpired {
		c.mu.Unlock()
		return
	}
	c.sessionExpired = true
	tenant := c.tenant
	c.mu.Unlock()

	route := "/session-expired"
	if tenant != "" {
		route = "/" + tenant + route
	}
	c.logger.Warn("session expired", route)
	if c.onSessionExpired != nil {
		c.onSessionExpired(route)
	}
}

func (c *Client) endpoint(path string) string {
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + apiPrefix + path
	return u.String()
}

func (c *Client) cacheKey(path string) string {
	c.mu.RLock()
	tenant := c.tenant
	c.mu.RUnlock()
	if tenant == "" {
		tenant = noTenantKey
	}
	return path + "|" + tenant
}

func unmarshalInto(data []byte, out interface{}) error {
	if out == nil || len(data) == 0 {
		return nil
	}
	return errors.Wrap(json.Unmarshal(data, out), "decoding response")
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}
