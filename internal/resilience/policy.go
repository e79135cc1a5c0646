// Package resilience runs fetch operations with retry and backoff, classifies
// their failures and turns them into fallback values or visitor notices.
package resilience

import (
	"math"
	"time"

	"github.com/sethvargo/go-retry"
)

// Policy describes how often and how patiently an operation is retried.
type Policy struct {
	Name       string
	MaxRetries uint64
	BaseDelay  time.Duration
	Factor     float64
	MaxDelay   time.Duration
	Jitter     bool
}

// Named policies.
const (
	PolicyDefault  = "default"
	PolicyCritical = "critical"
	PolicyNetwork  = "network"
	PolicyQuick    = "quick"
)

// jitterPercent is the +/- spread applied to delays when Policy.Jitter is set.
const jitterPercent = 25

// DefaultPolicies returns the built-in policy set.
func DefaultPolicies() map[string]Policy {
	return map[string]Policy{
		PolicyDefault:  {Name: PolicyDefault, MaxRetries: 3, BaseDelay: 500 * time.Millisecond, Factor: 2, MaxDelay: 5 * time.Second, Jitter: true},
		PolicyCritical: {Name: PolicyCritical, MaxRetries: 5, BaseDelay: time.Second, Factor: 2, MaxDelay: 10 * time.Second, Jitter: true},
		PolicyNetwork:  {Name: PolicyNetwork, MaxRetries: 4, BaseDelay: time.Second, Factor: 1.5, MaxDelay: 8 * time.Second, Jitter: true},
		PolicyQuick:    {Name: PolicyQuick, MaxRetries: 2, BaseDelay: 200 * time.Millisecond, Factor: 2, MaxDelay: time.Second},
	}
}

// Delay returns the un-jittered wait before retry number attempt (0-based):
// min(base * factor^attempt, max).
func (p Policy) Delay(attempt int) time.Duration {
	factor := p.Factor
	if factor <= 0 {
		factor = 1
	}
	d := float64(p.BaseDelay) * math.Pow(factor, float64(attempt))
	if p.MaxDelay > 0 && d > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	return time.Duration(d)
}

// Backoff builds a fresh go-retry backoff for one execution.
func (p Policy) Backoff() retry.Backoff {
	attempt := 0
	var b retry.Backoff = retry.BackoffFunc(func() (time.Duration, bool) {
		d := p.Delay(attempt)
		attempt++
		return d, false
	})
	if p.Jitter && p.BaseDelay > 0 {
		b = retry.WithJitterPercent(jitterPercent, b)
	}
	return retry.WithMaxRetries(p.MaxRetries, b)
}
