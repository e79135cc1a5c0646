// Package content assembles the data for a page by running its named fetch
// operations concurrently, retrying and substituting fallbacks as needed.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"mycogenesis/internal/resilience"
)

// ErrUnknownPageType is returned for a page type with no registered operations.
var ErrUnknownPageType = errors.New("unknown page type")

// Options parameterize a page load (slug, search term...). They are part of
// the cache key.
type Options map[string]string

// Operation is one named fetch of a page.
type Operation struct {
	Name     string
	Required bool
	Policy   string
	Timeout  time.Duration

	fetch    func(context.Context, Options) (any, error)
	fallback any
	encode   func(any) ([]byte, error)
	decode   func([]byte) (any, error)
}

// NewOperation builds an operation returning T. fallback is substituted when
// every attempt fails and no last-known-good value exists.
func NewOperation[T any](name string, required bool, fallback T, fetch func(context.Context, Options) (T, error)) Operation {
	return Operation{
		Name:     name,
		Required: required,
		Policy:   resilience.PolicyDefault,
		fetch: func(ctx context.Context, opts Options) (any, error) {
			return fetch(ctx, opts)
		},
		fallback: fallback,
		encode:   func(v any) ([]byte, error) { return json.Marshal(v) },
		decode: func(raw []byte) (any, error) {
			var v T
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, err
			}
			return v, nil
		},
	}
}

// WithPolicy returns a copy of op using the named retry policy.
func (op Operation) WithPolicy(name string) Operation {
	op.Policy = name
	return op
}

// WithTimeout returns a copy of op with a per-attempt timeout.
func (op Operation) WithTimeout(d time.Duration) Operation {
	op.Timeout = d
	return op
}

// Fallback is the static value used when the operation fails.
func (op Operation) Fallback() any {
	return op.fallback
}

// Registry maps a page type to its operations.
type Registry map[string][]Operation

// Result is the outcome of one operation: either a value or an error.
type Result struct {
	Value any
	Err   error
}

// OK reports whether the operation succeeded.
func (r Result) OK() bool { return r.Err == nil }

// OperationError describes a failed operation in the envelope.
type OperationError struct {
	Operation string `json:"operation"`
	Required  bool   `json:"required"`
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	Attempts  int    `json:"attempts"`
	Stale     bool   `json:"stale"`
	Err       error  `json:"-"`
}

// Performance summarizes how a page load went.
type Performance struct {
	LoadTime         time.Duration `json:"loadTime"`
	Operations       int           `json:"operations"`
	Succeeded        int           `json:"succeeded"`
	Failed           int           `json:"failed"`
	CriticalFailures int           `json:"criticalFailures"`
	CacheHit         bool          `json:"cacheHit"`
	GeneratedAt      time.Time     `json:"generatedAt"`
}

// PageContent is the merged envelope returned by LoadPageContent.
type PageContent struct {
	PageType    string              `json:"pageType"`
	Success     bool                `json:"success"`
	Data        map[string]any      `json:"data"`
	Errors      []OperationError    `json:"errors"`
	Notices     []resilience.Notice `json:"notices,omitempty"`
	Performance Performance         `json:"performance"`
}

// RequiredError returns the error of the first failed required operation.
func (p *PageContent) RequiredError() error {
	for _, e := range p.Errors {
		if e.Required {
			return e.Err
		}
	}
	return nil
}

// Get returns the value stored under name converted to T, or the zero value.
func Get[T any](p *PageContent, name string) T {
	v, _ := p.Data[name].(T)
	return v
}

// CacheKey is "<pageType>-<json(options)>". Map keys are marshalled in
// sorted order, so equal options give equal keys.
func CacheKey(pageType string, opts Options) string {
	if opts == nil {
		opts = Options{}
	}
	// A map[string]string always marshals.
	encoded, _ := json.Marshal(opts)
	return pageType + "-" + string(encoded)
}
