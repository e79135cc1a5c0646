// Package sanity is the client for the Sanity headless CMS query API.
package sanity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"mycogenesis/internal/cache"
	"mycogenesis/internal/config"
	"mycogenesis/internal/logger"
)

// ErrNotFound is returned when a query for a single document yields null.
var ErrNotFound = errors.New("sanity: document not found")

// APIError is a non-2xx response from the query API.
type APIError struct {
	StatusCode  int
	Description string
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("sanity: query failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("sanity: query failed with status %d: %s", e.StatusCode, e.Description)
}

// Retryable reports whether repeating the request may help. Client errors
// other than rate limiting will fail the same way again.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Params are GROQ query parameters. Values are JSON-encoded into $name arguments.
type Params map[string]any

// Client issues GROQ queries and caches results by (query, params).
type Client struct {
	http     *http.Client
	baseURL  string
	token    string
	store    cache.Store
	ttl      time.Duration
	limiter  *rate.Limiter
	log      logger.Logger
	keys     sync.Map // cache keys written by this client
	images   ImageBuilder
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API host. Used in tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates a client for the configured project and dataset. store may be
// nil to disable caching.
func New(cfg config.SanityConfig, store cache.Store, log logger.Logger, opts ...Option) (*Client, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("sanity: project id is required")
	}
	if cfg.Dataset == "" {
		cfg.Dataset = "production"
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2024-01-01"
	}

	host := "api.sanity.io"
	// The CDN serves cached, public data only; authenticated queries go to the live API.
	if cfg.UseCDN && cfg.Token == "" {
		host = "apicdn.sanity.io"
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		http:     &http.Client{Timeout: timeout},
		baseURL:  fmt.Sprintf("https://%s.%s", cfg.ProjectID, host),
		token:    cfg.Token,
		store:    store,
		ttl:      cfg.CacheTTL,
		log:      log,
		images:   NewImageBuilder(cfg.ProjectID, cfg.Dataset),
	}
	c.baseURL += "/v" + strings.TrimPrefix(cfg.APIVersion, "v") + "/data/query/" + cfg.Dataset
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Images returns the image URL builder for this project.
func (c *Client) Images() ImageBuilder {
	return c.images
}

// Fetch runs query with params and decodes the result into dest.
func (c *Client) Fetch(ctx context.Context, query string, params Params, dest any) error {
	raw, err := c.FetchRaw(ctx, query, params)
	if err != nil {
		return err
	}
	if string(raw) == "null" {
		return ErrNotFound
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("sanity: decode result: %w", err)
	}
	return nil
}

// FetchRaw returns the undecoded "result" member of the response, serving
// it from the cache when a fresh copy exists.
func (c *Client) FetchRaw(ctx context.Context, query string, params Params) (json.RawMessage, error) {
	key, err := CacheKey(query, params)
	if err != nil {
		return nil, err
	}

	if c.store != nil {
		if cached, err := c.store.Get(ctx, key); err == nil {
			return cached, nil
		} else if !errors.Is(err, cache.ErrMiss) {
			c.log.Error(err, "sanity cache read failed")
		}
	}

	raw, err := c.do(ctx, query, params)
	if err != nil {
		return nil, err
	}

	if c.store != nil {
		if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
			c.log.Error(err, "sanity cache write failed")
		} else {
			c.keys.Store(key, struct{}{})
		}
	}
	return raw, nil
}

// ClearCache drops every cached query result written by this client.
func (c *Client) ClearCache(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	var errs []error
	c.keys.Range(func(k, _ any) bool {
		if err := c.store.Delete(ctx, k.(string)); err != nil {
			errs = append(errs, err)
		}
		c.keys.Delete(k)
		return true
	})
	return errors.Join(errs...)
}

type queryResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Description string `json:"description"`
		Type        string `json:"type"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, query string, params Params) (json.RawMessage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("sanity: rate limiter: %w", err)
		}
	}

	values := url.Values{}
	values.Set("query", query)
	for name, v := range params {
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("sanity: encode param %s: %w", name, err)
		}
		values.Set("$"+name, string(encoded))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("sanity: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sanity: fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("sanity: read response: %w", err)
	}

	var parsed queryResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if resp.StatusCode >= 300 {
			return nil, &APIError{StatusCode: resp.StatusCode}
		}
		return nil, fmt.Errorf("sanity: decode response: %w", err)
	}
	if resp.StatusCode >= 300 || parsed.Error != nil {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if parsed.Error != nil {
			apiErr.Description = parsed.Error.Description
		}
		return nil, apiErr
	}
	if len(parsed.Result) == 0 {
		return json.RawMessage("null"), nil
	}
	return parsed.Result, nil
}

// CacheKey derives the cache key of a query. Parameter names are sorted so
// equal parameter sets always produce the same key.
func CacheKey(query string, params Params) (string, error) {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	h := sha256.New()
	h.Write([]byte(query))
	for _, name := range names {
		encoded, err := json.Marshal(params[name])
		if err != nil {
			return "", fmt.Errorf("sanity: encode param %s: %w", name, err)
		}
		h.Write([]byte{0})
		h.Write([]byte(name))
		h.Write([]byte{'='})
		h.Write(encoded)
	}
	return "sanity:" + hex.EncodeToString(h.Sum(nil)), nil
}

// Ping runs a trivial uncached query to verify the API is reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, `count(*[_type == "category"])`, nil)
	return err
}
