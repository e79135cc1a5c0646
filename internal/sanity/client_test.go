package sanity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mycogenesis/internal/cache"
	"mycogenesis/internal/config"
	"mycogenesis/internal/data"
	"mycogenesis/internal/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	cfg := config.SanityConfig{ProjectID: "proj", Dataset: "production", APIVersion: "2024-01-01", CacheTTL: 5 * time.Minute}
	c, err := New(cfg, cache.NewMemory(0), logger.Nop(), WithBaseURL(srv.URL))
	require.NoError(t, err)
	return c, &hits
}

func TestNew_RequiresProject(t *testing.T) {
	_, err := New(config.SanityConfig{}, nil, logger.Nop())
	assert.Error(t, err)
}

func TestNew_BuildsQueryURL(t *testing.T) {
	c, err := New(config.SanityConfig{ProjectID: "abc", Dataset: "staging", APIVersion: "2023-05-03", UseCDN: true}, nil, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, "https://abc.apicdn.sanity.io/v2023-05-03/data/query/staging", c.baseURL)

	c, err = New(config.SanityConfig{ProjectID: "abc", UseCDN: true, Token: "secret"}, nil, logger.Nop())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(c.baseURL, "https://abc.api.sanity.io/"), "token queries must bypass the CDN")
}

func TestFetch_EncodesParamsAndDecodes(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("query"), `_type == "product"`)
		assert.Equal(t, "3", r.URL.Query().Get("$limit"))
		w.Write([]byte(`{"ms":3,"result":[{"_id":"p1","name":"Lion's Mane","slug":"lions-mane","price":24.5,"availability":"in-stock"}]}`))
	})

	products, err := c.FeaturedProducts(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "lions-mane", products[0].Slug)
	assert.Equal(t, data.InStock, products[0].Availability)
}

func TestFetch_CachesByQueryAndParams(t *testing.T) {
	c, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":{"_id":"b1","title":"Wholesale","slug":"wholesale"}}`))
	})
	ctx := context.Background()

	_, err := c.BusinessPage(ctx, "wholesale")
	require.NoError(t, err)
	_, err = c.BusinessPage(ctx, "wholesale")
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load(), "identical query should be served from cache")

	_, err = c.BusinessPage(ctx, "about")
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load(), "different params must miss the cache")

	require.NoError(t, c.ClearCache(ctx))
	_, err = c.BusinessPage(ctx, "wholesale")
	require.NoError(t, err)
	assert.Equal(t, int32(3), hits.Load())
}

func TestFetch_NullResultIsNotFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":null}`))
	})
	_, err := c.PostBySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetch_APIErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		retryable bool
	}{
		{"bad query", http.StatusBadRequest, `{"error":{"description":"expected '}'","type":"queryParseError"}}`, false},
		{"rate limited", http.StatusTooManyRequests, `{}`, true},
		{"server error", http.StatusBadGateway, `<html>bad gateway</html>`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, err := c.Categories(context.Background())
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr), "expected APIError, got %v", err)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.retryable, apiErr.Retryable())
			assert.Contains(t, err.Error(), "sanity")
		})
	}
}

func TestSearch_AddsPrefixWildcards(t *testing.T) {
	c, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, `"lion* mane*"`, r.URL.Query().Get("$term"))
		w.Write([]byte(`{"result":{"products":[],"posts":[{"_id":"x","title":"Lion's mane"}]}}`))
	})

	res, err := c.Search(context.Background(), "lion mane", 5)
	require.NoError(t, err)
	assert.Len(t, res.Posts, 1)

	empty, err := c.Search(context.Background(), "   ", 5)
	require.NoError(t, err)
	assert.Empty(t, empty.Posts)
	assert.Equal(t, int32(1), hits.Load(), "blank search must not hit the API")
}

func TestCacheKey_Deterministic(t *testing.T) {
	a, err := CacheKey("q", Params{"a": 1, "b": "x"})
	require.NoError(t, err)
	b, err := CacheKey("q", Params{"b": "x", "a": 1})
	require.NoError(t, err)
	c, err := CacheKey("q", Params{"a": 2, "b": "x"})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
