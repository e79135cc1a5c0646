// Package coordinator reports the health of the services the site depends on.
package coordinator

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"mycogenesis/internal/logger"
)

// DefaultCheckTimeout bounds each health check.
const DefaultCheckTimeout = 3 * time.Second

// Pinger is a dependency that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping calls f.
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Status is the result of one check.
type Status struct {
	Name    string        `json:"name"`
	OK      bool          `json:"ok"`
	Error   string        `json:"error,omitempty"`
	Latency time.Duration `json:"latency"`
}

// Report is the health of every registered service.
type Report struct {
	Healthy  bool      `json:"healthy"`
	Services []Status  `json:"services"`
	Checked  time.Time `json:"checked"`
}

// Coordinator runs health checks against registered services.
type Coordinator struct {
	log     logger.Logger
	timeout time.Duration

	mu       sync.RWMutex
	services map[string]Pinger
}

// New creates a Coordinator. A zero timeout uses DefaultCheckTimeout.
func New(log logger.Logger, timeout time.Duration) *Coordinator {
	if timeout <= 0 {
		timeout = DefaultCheckTimeout
	}
	return &Coordinator{log: log, timeout: timeout, services: make(map[string]Pinger)}
}

// Register adds a service under name, replacing any previous one.
func (c *Coordinator) Register(name string, p Pinger) {
	c.mu.Lock()
	c.services[name] = p
	c.mu.Unlock()
}

// Check pings every service concurrently. The report is healthy only when
// every service answered.
func (c *Coordinator) Check(ctx context.Context) Report {
	c.mu.RLock()
	names := make([]string, 0, len(c.services))
	for name := range c.services {
		names = append(names, name)
	}
	services := make(map[string]Pinger, len(c.services))
	for k, v := range c.services {
		services[k] = v
	}
	c.mu.RUnlock()
	sort.Strings(names)

	statuses := make([]Status, len(names))
	var g errgroup.Group
	for i, name := range names {
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()
			start := time.Now()
			err := services[name].Ping(pctx)
			statuses[i] = Status{Name: name, OK: err == nil, Latency: time.Since(start)}
			if err != nil {
				statuses[i].Error = err.Error()
				c.log.With(map[string]interface{}{"service": name}).Warn("health check failed: " + err.Error())
			}
			return nil
		})
	}
	_ = g.Wait()

	report := Report{Healthy: true, Services: statuses, Checked: time.Now().UTC()}
	for _, s := range statuses {
		if !s.OK {
			report.Healthy = false
		}
	}
	return report
}
