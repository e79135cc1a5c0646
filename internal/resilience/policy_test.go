package resilience

import (
	"testing"
	"time"
)

func TestPolicyDelay(t *testing.T) {
	p := Policy{BaseDelay: 100 * time.Millisecond, Factor: 2, MaxDelay: time.Second}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{2, 400 * time.Millisecond},
		{3, 800 * time.Millisecond},
		{4, time.Second},
		{10, time.Second},
	}
	for _, tt := range tests {
		if got := p.Delay(tt.attempt); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestPolicyDelay_FractionalFactor(t *testing.T) {
	p := DefaultPolicies()[PolicyNetwork]
	if got := p.Delay(1); got != 1500*time.Millisecond {
		t.Errorf("expected 1.5s, got %v", got)
	}
}

func TestPolicyBackoff_StopsAfterMaxRetries(t *testing.T) {
	p := Policy{MaxRetries: 3, BaseDelay: 10 * time.Millisecond, Factor: 2, MaxDelay: time.Second}
	b := p.Backoff()

	want := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 40 * time.Millisecond}
	for i, w := range want {
		d, stop := b.Next()
		if stop {
			t.Fatalf("backoff stopped early at retry %d", i)
		}
		if d != w {
			t.Errorf("retry %d: got %v, want %v", i, d, w)
		}
	}
	if _, stop := b.Next(); !stop {
		t.Error("expected backoff to stop after MaxRetries")
	}
}

func TestPolicyBackoff_JitterWithinBounds(t *testing.T) {
	p := Policy{MaxRetries: 50, BaseDelay: 100 * time.Millisecond, Factor: 1, MaxDelay: time.Second, Jitter: true}
	b := p.Backoff()
	for i := 0; i < 50; i++ {
		d, _ := b.Next()
		if d < 75*time.Millisecond || d > 125*time.Millisecond {
			t.Fatalf("jittered delay %v outside +/-25%% of 100ms", d)
		}
	}
}
