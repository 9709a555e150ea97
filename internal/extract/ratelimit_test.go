package extract

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRateLimiter_NilNeverBlocks(t *testing.T) {
	var r *RateLimiter
	if err := r.Wait(context.Background()); err != nil {
		t.Fatalf("expected nil limiter to pass, got %v", err)
	}
	if NewRateLimiter(0) != nil {
		t.Fatal("expected nil limiter for zero rate")
	}
}

func TestRateLimiter_BurstThenBlocks(t *testing.T) {
	r := NewRateLimiter(2)
	for i := range 2 {
		if err := r.Wait(context.Background()); err != nil {
			t.Fatalf("token %d: %v", i, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := r.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected wait to block until deadline, got %v", err)
	}

	st := r.Status()
	if st.TotalConsumed != 2 || st.TokensLimit != 2 {
		t.Errorf("unexpected status %+v", st)
	}
}
