package resilience

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindUnknown},
		{"cms", errors.New("sanity: query failed with status 500"), KindCMS},
		{"cms timeout stays cms", errors.New("sanity: request timeout"), KindCMS},
		{"auth", errors.New("auth/id-token-expired"), KindAuth},
		{"firestore", fmt.Errorf("firestore/posts: %w", errors.New("boom")), KindDatabase},
		{"grpc unavailable", errors.New("rpc error: code = Unavailable desc = down"), KindDatabase},
		{"fetch", errors.New("TypeError: Failed to fetch"), KindNetwork},
		{"refused", errors.New("dial tcp 127.0.0.1:443: connection refused"), KindNetwork},
		{"deadline", fmt.Errorf("load: %w", context.DeadlineExceeded), KindNetwork},
		{"other", errors.New("something odd"), KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestPermanent(t *testing.T) {
	base := errors.New("not found")
	err := fmt.Errorf("wrapped: %w", Permanent(base))
	if !IsPermanent(err) {
		t.Error("expected wrapped permanent error to be detected")
	}
	if !errors.Is(err, base) {
		t.Error("expected permanent error to unwrap to base")
	}
	if IsPermanent(base) {
		t.Error("plain error must not be permanent")
	}
	if Permanent(nil) != nil {
		t.Error("Permanent(nil) should be nil")
	}
}
