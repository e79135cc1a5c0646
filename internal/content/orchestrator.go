package content

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"mycogenesis/internal/cache"
	"mycogenesis/internal/logger"
	"mycogenesis/internal/resilience"
)

// DefaultCacheTTL is how long a merged page stays cached.
const DefaultCacheTTL = 5 * time.Minute

// Orchestrator loads, merges and caches page content.
type Orchestrator struct {
	registry Registry
	executor *resilience.Executor
	log      logger.Logger
	timeout  time.Duration
	ttl      time.Duration

	cache    *cache.TTLMap[*PageContent]
	inflight singleflight.Group
	now      func() time.Time
}

// Config tunes an Orchestrator.
type Config struct {
	CacheTTL time.Duration
	// OperationTimeout bounds each attempt of operations that do not set their own.
	OperationTimeout time.Duration
}

// NewOrchestrator creates an orchestrator over registry.
func NewOrchestrator(registry Registry, executor *resilience.Executor, log logger.Logger, cfg Config) *Orchestrator {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Orchestrator{
		registry: registry,
		executor: executor,
		log:      log,
		timeout:  cfg.OperationTimeout,
		ttl:      ttl,
		cache:    cache.NewTTLMap[*PageContent](ttl),
		now:      time.Now,
	}
}

// LoadPageContent returns the merged content of pageType. A cached envelope
// younger than the TTL is returned without running any operation, and
// concurrent identical requests share one execution. It returns ctx's error
// when ctx is done before the shared execution finishes.
func (o *Orchestrator) LoadPageContent(ctx context.Context, pageType string, opts Options) (*PageContent, error) {
	ops, ok := o.registry[pageType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPageType, pageType)
	}

	key := CacheKey(pageType, opts)
	if cached, ok := o.cache.Get(key); ok {
		hit := *cached
		hit.Performance.CacheHit = true
		return &hit, nil
	}

	// The shared execution must not die with whichever caller arrived first,
	// but a caller that goes away stops waiting for it.
	shared := context.WithoutCancel(ctx)
	ch := o.inflight.DoChan(key, func() (any, error) {
		pc := o.execute(shared, key, pageType, ops, opts)
		if pc.Success {
			o.cache.Set(key, pc)
		}
		return pc, nil
	})
	select {
	case res := <-ch:
		return res.Val.(*PageContent), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ClearCache drops every cached envelope.
func (o *Orchestrator) ClearCache() {
	o.cache.Clear()
	o.log.Info("Page content cache cleared.")
}

// CacheStats describes the page cache.
type CacheStats struct {
	Entries int           `json:"entries"`
	TTL     time.Duration `json:"ttl"`
}

// CacheStats reports the number of cached envelopes.
func (o *Orchestrator) CacheStats() CacheStats {
	return CacheStats{Entries: o.cache.Len(), TTL: o.ttl}
}

// PageTypes lists the registered page types.
func (o *Orchestrator) PageTypes() []string {
	types := make([]string, 0, len(o.registry))
	for t := range o.registry {
		types = append(types, t)
	}
	return types
}

// execute runs ops concurrently. Last known good values are kept per
// operation and cache key, so a document is never served for another slug.
func (o *Orchestrator) execute(ctx context.Context, key, pageType string, ops []Operation, opts Options) *PageContent {
	start := o.now()
	outcomes := make([]resilience.Outcome, len(ops))

	var g errgroup.Group
	for i, op := range ops {
		g.Go(func() error {
			timeout := op.Timeout
			if timeout == 0 {
				timeout = o.timeout
			}
			call := resilience.Call{
				Operation:   pageType + "." + op.Name,
				FallbackKey: key + "." + op.Name,
				Policy:      op.Policy,
				Timeout:     timeout,
				Encode:      op.encode,
				Decode:      op.decode,
			}
			outcomes[i] = o.executor.ExecuteWithFallback(ctx, call, func(ctx context.Context) (any, error) {
				return op.fetch(ctx, opts)
			})
			return nil
		})
	}
	_ = g.Wait()

	pc := merge(pageType, ops, outcomes)
	pc.Performance.LoadTime = o.now().Sub(start)
	pc.Performance.GeneratedAt = start

	o.log.With(map[string]interface{}{
		"page":      pageType,
		"succeeded": pc.Performance.Succeeded,
		"failed":    pc.Performance.Failed,
		"critical":  pc.Performance.CriticalFailures,
		"load_ms":   pc.Performance.LoadTime.Milliseconds(),
	}).Debug("page content loaded")
	return pc
}

// merge builds the envelope positionally: outcomes[i] belongs to ops[i].
func merge(pageType string, ops []Operation, outcomes []resilience.Outcome) *PageContent {
	pc := &PageContent{
		PageType: pageType,
		Data:     make(map[string]any, len(ops)),
		Errors:   []OperationError{},
	}
	pc.Performance.Operations = len(ops)

	seen := make(map[string]bool)
	for i, op := range ops {
		out := outcomes[i]
		result := Result{Value: out.Value, Err: out.Err}
		if result.OK() {
			pc.Data[op.Name] = result.Value
			pc.Performance.Succeeded++
			continue
		}

		pc.Performance.Failed++
		if op.Required {
			pc.Performance.CriticalFailures++
		}
		value := op.Fallback()
		if out.FromFallback {
			value = out.Value
		}
		pc.Data[op.Name] = value
		pc.Errors = append(pc.Errors, OperationError{
			Operation: op.Name,
			Required:  op.Required,
			Kind:      out.Kind.String(),
			Message:   result.Err.Error(),
			Attempts:  out.Attempts,
			Stale:     out.FromFallback,
			Err:       result.Err,
		})
		if n := out.Notice; n != nil && !seen[n.Message] {
			seen[n.Message] = true
			pc.Notices = append(pc.Notices, *n)
		}
	}
	pc.Success = pc.Performance.CriticalFailures == 0
	return pc
}

func (o *Orchestrator) setClock(now func() time.Time) {
	o.now = now
	o.cache.SetClock(now)
}
