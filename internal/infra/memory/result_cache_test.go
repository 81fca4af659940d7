package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"company-quiz-service/internal/app"
)

func TestResultCacheExpiry(t *testing.T) {
	now := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	c := NewResultCacheWithClock(func() time.Time { return now })
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got, err := c.Get(ctx, "k"); err != nil || got != "v" {
		t.Fatalf("expected v, got %q %v", got, err)
	}

	now = now.Add(time.Hour)
	if _, err := c.Get(ctx, "k"); !errors.Is(err, app.ErrCacheMiss) {
		t.Fatalf("expected cache miss after ttl, got %v", err)
	}
}

func TestResultCacheListAppendRefreshesTTL(t *testing.T) {
	now := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	c := NewResultCacheWithClock(func() time.Time { return now })
	ctx := context.Background()

	_ = c.ListAppend(ctx, "l", "a", time.Hour)
	now = now.Add(50 * time.Minute)
	_ = c.ListAppend(ctx, "l", "b", time.Hour)
	now = now.Add(50 * time.Minute)

	got, err := c.ListRange(ctx, "l")
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("expected [a b], got %v", got)
	}
}

func TestResultCacheSetAndKinds(t *testing.T) {
	c := NewResultCache()
	ctx := context.Background()

	for _, m := range []string{"5", "3", "5"} {
		if err := c.SetAdd(ctx, "s", m, time.Hour); err != nil {
			t.Fatalf("sadd: %v", err)
		}
	}
	members, err := c.SetMembers(ctx, "s")
	if err != nil {
		t.Fatalf("smembers: %v", err)
	}
	if len(members) != 2 || members[0] != "3" || members[1] != "5" {
		t.Fatalf("expected [3 5], got %v", members)
	}

	if _, err := c.Get(ctx, "s"); err == nil || errors.Is(err, app.ErrCacheMiss) {
		t.Fatalf("expected wrong-kind error, got %v", err)
	}
	if got, err := c.ListRange(ctx, "missing"); err != nil || len(got) != 0 {
		t.Fatalf("expected empty range, got %v %v", got, err)
	}
}
