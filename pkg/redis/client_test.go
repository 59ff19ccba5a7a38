package redis_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	pkgredis "github.com/emporium-dev/emporium/pkg/redis"
	"github.com/emporium-dev/emporium/pkg/redis/redistest"
)

func TestFixedWindowAllow(t *testing.T) {
	ctx := context.Background()
	client, mem := redistest.NewClient()

	allowed, count, err := client.FixedWindowAllow(ctx, "login|ip", 2, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed || count != 1 {
		t.Fatalf("expected first request allowed, got allowed=%v count=%d", allowed, count)
	}
	if ttl := mem.TTL(client.RateLimitKey("login|ip")); ttl != time.Minute {
		t.Fatalf("expected window ttl on first increment, got %v", ttl)
	}

	allowed, count, err = client.FixedWindowAllow(ctx, "login|ip", 2, time.Minute)
	if err != nil || !allowed || count != 2 {
		t.Fatalf("unexpected second call state allowed=%v count=%d err=%v", allowed, count, err)
	}

	allowed, _, err = client.FixedWindowAllow(ctx, "login|ip", 2, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Fatalf("expected limit reached")
	}
}

func TestCartBindingLifecycle(t *testing.T) {
	ctx := context.Background()
	client, mem := redistest.NewClient()
	key := client.CartSessionKey("sid-1")

	if err := client.Set(ctx, key, "42", time.Hour); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, err := client.Get(ctx, key)
	if err != nil || got != "42" {
		t.Fatalf("expected bound cart 42, got %q err=%v", got, err)
	}
	if err := client.Expire(ctx, key, 2*time.Hour); err != nil {
		t.Fatalf("expire failed: %v", err)
	}
	if mem.TTL(key) != 2*time.Hour {
		t.Fatalf("expected refreshed ttl")
	}
	if err := client.Del(ctx, key); err != nil {
		t.Fatalf("del failed: %v", err)
	}
	if _, err := client.Get(ctx, key); !errors.Is(err, redis.Nil) {
		t.Fatalf("expected redis.Nil after delete, got %v", err)
	}
}

func TestKeyBuilders(t *testing.T) {
	client := pkgredis.NewFromCmdable(nil)
	if got := client.IdempotencyKey("scope", "id"); got != "emp:idempotency:scope:id" {
		t.Fatalf("unexpected idempotency key %s", got)
	}
	if got := client.RateLimitKey("scope"); got != "emp:rate_limit:scope" {
		t.Fatalf("unexpected rate limit key %s", got)
	}
	if got := client.AccessSessionKey("jti"); got != "emp:session:access:jti" {
		t.Fatalf("unexpected access session key %s", got)
	}
	if got := client.CartSessionKey("sid"); got != "emp:cart:sid" {
		t.Fatalf("unexpected cart key %s", got)
	}
}

func TestUninitializedClientErrors(t *testing.T) {
	client := pkgredis.NewFromCmdable(nil)
	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected error from uninitialized client")
	}
}
