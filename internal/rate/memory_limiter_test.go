package rate

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	l := NewMemoryLimiter(2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := l.Allow(ctx, "ip1")
		if err != nil {
			t.Fatal(err)
		}
		if !res.Allowed {
			t.Fatalf("hit %d should be allowed", i+1)
		}
	}

	res, err := l.Allow(ctx, "ip1")
	if err != nil {
		t.Fatal(err)
	}
	if res.Allowed {
		t.Fatal("third hit should be rejected")
	}
	if res.RetryAfter <= 0 {
		t.Fatal("expected positive RetryAfter")
	}

	// otra key no comparte ventana
	if res, _ := l.Allow(ctx, "ip2"); !res.Allowed {
		t.Fatal("different key should be allowed")
	}
}

func TestNoop_AlwaysAllows(t *testing.T) {
	var l Noop
	for i := 0; i < 100; i++ {
		res, err := l.Allow(context.Background(), "x")
		if err != nil || !res.Allowed {
			t.Fatal("noop must always allow")
		}
	}
}
