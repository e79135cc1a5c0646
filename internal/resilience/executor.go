package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"mycogenesis/internal/logger"
)

// Call describes one resilient execution.
type Call struct {
	// Operation names the fetch in log lines.
	Operation string
	// FallbackKey keys the last known good value. Calls whose result depends
	// on their arguments must set it; empty means Operation.
	FallbackKey string
	// Policy selects a named policy; unknown names use PolicyDefault.
	Policy string
	// Timeout bounds each attempt. Zero means no per-attempt bound.
	Timeout time.Duration
	// Encode and Decode convert values for the fallback store. When nil the
	// value is neither remembered nor recoverable.
	Encode func(any) ([]byte, error)
	Decode func([]byte) (any, error)
}

func (c Call) storeKey() string {
	if c.FallbackKey != "" {
		return c.FallbackKey
	}
	return c.Operation
}

// Notice is a message for the visitor, shown as a toast banner.
type Notice struct {
	Level   string `json:"level"` // "info", "warning" or "error"
	Message string `json:"message"`
}

// Recovery is what an error handler salvaged from a failed call.
type Recovery struct {
	Value  any
	Found  bool
	Notice *Notice
}

// Handler turns a classified failure into a Recovery.
type Handler func(ctx context.Context, call Call, err error, fallbacks *FallbackStore) Recovery

// Outcome is the result of ExecuteWithFallback.
type Outcome struct {
	Value        any
	Err          error
	Kind         Kind
	Attempts     int
	FromFallback bool
	Notice       *Notice
}

// Executor runs operations with retry and dispatches final failures to handlers.
type Executor struct {
	log       logger.Logger
	fallbacks *FallbackStore
	noRetry   bool

	mu       sync.RWMutex
	policies map[string]Policy
	handlers map[Kind]Handler
}

// Option configures an Executor.
type Option func(*Executor)

// WithPolicies replaces or adds named policies.
func WithPolicies(policies ...Policy) Option {
	return func(e *Executor) {
		for _, p := range policies {
			e.policies[p.Name] = p
		}
	}
}

// WithoutRetries makes every call a single attempt.
func WithoutRetries() Option {
	return func(e *Executor) { e.noRetry = true }
}

// NewExecutor creates an executor with the default policies and handlers.
// fallbacks may be nil, in which case nothing is remembered.
func NewExecutor(log logger.Logger, fallbacks *FallbackStore, opts ...Option) *Executor {
	e := &Executor{
		log:       log,
		fallbacks: fallbacks,
		policies:  DefaultPolicies(),
		handlers:  defaultHandlers(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RegisterHandler replaces the handler for kind.
func (e *Executor) RegisterHandler(kind Kind, h Handler) {
	e.mu.Lock()
	e.handlers[kind] = h
	e.mu.Unlock()
}

// Policy returns the named policy, falling back to PolicyDefault.
func (e *Executor) Policy(name string) Policy {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if p, ok := e.policies[name]; ok {
		return p
	}
	return e.policies[PolicyDefault]
}

// Execute runs fn until it succeeds, returns a permanent error, the policy
// gives up or ctx is done. It reports the number of attempts made.
func (e *Executor) Execute(ctx context.Context, call Call, fn func(context.Context) (any, error)) (any, int, error) {
	policy := e.Policy(call.Policy)
	backoff := policy.Backoff()
	if e.noRetry {
		backoff = retry.WithMaxRetries(0, backoff)
	}

	var (
		value    any
		attempts int
	)
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		attemptCtx := ctx
		if call.Timeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, call.Timeout)
			defer cancel()
		}

		v, err := fn(attemptCtx)
		if err != nil {
			if IsPermanent(err) || ctx.Err() != nil {
				return err
			}
			e.log.With(map[string]interface{}{
				"operation": call.Operation,
				"attempt":   attempts,
				"policy":    policy.Name,
			}).Debug("operation attempt failed: " + err.Error())
			return retry.RetryableError(err)
		}
		value = v
		return nil
	})
	return value, attempts, err
}

// ExecuteWithFallback runs Execute. On success the value is remembered in the
// fallback store; on failure the error is classified and handed to the
// registered handler.
func (e *Executor) ExecuteWithFallback(ctx context.Context, call Call, fn func(context.Context) (any, error)) Outcome {
	value, attempts, err := e.Execute(ctx, call, fn)
	if err == nil {
		e.remember(ctx, call, value)
		return Outcome{Value: value, Attempts: attempts}
	}

	kind := Classify(err)
	e.log.With(map[string]interface{}{
		"operation": call.Operation,
		"attempts":  attempts,
		"kind":      kind.String(),
	}).Error(err, "operation failed")

	e.mu.RLock()
	handler, ok := e.handlers[kind]
	e.mu.RUnlock()
	if !ok {
		handler = notifyHandler("error", genericMessage)
	}

	rec := handler(ctx, call, err, e.fallbacks)
	out := Outcome{Err: err, Kind: kind, Attempts: attempts, Notice: rec.Notice}
	if rec.Found {
		out.Value = rec.Value
		out.FromFallback = true
	}
	return out
}

func (e *Executor) remember(ctx context.Context, call Call, value any) {
	if e.fallbacks == nil || call.Encode == nil {
		return
	}
	raw, err := call.Encode(value)
	if err != nil {
		e.log.Error(err, "failed to encode fallback for "+call.Operation)
		return
	}
	if err := e.fallbacks.Save(ctx, call.storeKey(), raw); err != nil {
		e.log.Error(err, "failed to save fallback")
	}
}
