package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	redisad "review_dashboard/internal/adapters/redis"
	"review_dashboard/internal/domain"
)

func newCache(t *testing.T) (*redisad.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redisad.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test:")
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestCache_SetGetDel(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	var v domain.DashboardView
	if ok, err := c.Get(ctx, "k", &v); ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	mean := 4.25
	in := domain.DashboardView{DatasetVersion: "v1", Metrics: domain.Metrics{Count: 4, MeanRating: &mean}}
	if err := c.Set(ctx, "k", in, 60); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !mr.Exists("test:k") {
		t.Fatalf("expected prefixed key in redis")
	}
	if ttl := mr.TTL("test:k"); ttl != 60*time.Second {
		t.Fatalf("unexpected ttl %v", ttl)
	}

	ok, err := c.Get(ctx, "k", &v)
	if !ok || err != nil {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if v.DatasetVersion != "v1" || v.Metrics.MeanRating == nil || *v.Metrics.MeanRating != 4.25 {
		t.Fatalf("unexpected value: %+v", v)
	}

	if err := c.Del(ctx, "k"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if ok, _ := c.Get(ctx, "k", &v); ok {
		t.Fatalf("expected miss after Del")
	}
}

func TestCache_ExpiresAndCorruptEntry(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "short", domain.Metrics{Count: 1}, 1); err != nil {
		t.Fatalf("Set: %v", err)
	}
	mr.FastForward(2 * time.Second)
	var m domain.Metrics
	if ok, _ := c.Get(ctx, "short", &m); ok {
		t.Fatalf("expected entry to expire")
	}

	if err := mr.Set("test:bad", "{not json"); err != nil {
		t.Fatal(err)
	}
	if ok, err := c.Get(ctx, "bad", &m); ok || err == nil {
		t.Fatalf("expected decode error, got ok=%v err=%v", ok, err)
	}
}
