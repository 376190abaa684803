//go:build !integration

package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"job-insight-chat/internal/config"
	"job-insight-chat/internal/domain"
	"job-insight-chat/internal/domain/model"
)

func newTestClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := Connect(context.Background(), &config.RedisConfig{URL: mr.Addr()})
	if err != nil {
		t.Fatalf("connect miniredis: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRateLimiter_Allow(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestClient(t)
	rl := NewRateLimiter(c)
	key := SubmitKey("user-1")

	t.Run("should allow up to the limit within a window", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			ok, err := rl.Allow(ctx, key, 3, time.Minute)
			if err != nil || !ok {
				t.Fatalf("hit %d: expected allowed, got ok=%v err=%v", i+1, ok, err)
			}
		}
		ok, err := rl.Allow(ctx, key, 3, time.Minute)
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			t.Fatal("expected 4th hit to be rejected")
		}
	})

	t.Run("should reset after the window expires", func(t *testing.T) {
		mr.FastForward(time.Minute + time.Second)
		ok, err := rl.Allow(ctx, key, 3, time.Minute)
		if err != nil || !ok {
			t.Fatalf("expected allowed after window, got ok=%v err=%v", ok, err)
		}
	})
}

func TestRedisLocker(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestClient(t)
	l := NewLocker(c)
	l.backoff = time.Millisecond
	key := "lock:generation:msg-1"

	token, err := l.TryLock(ctx, key, time.Minute)
	if err != nil {
		t.Fatalf("first lock: %v", err)
	}

	t.Run("should refuse a second holder", func(t *testing.T) {
		if _, err := l.TryLock(ctx, key, time.Minute); !errors.Is(err, domain.ErrTaskInProgress) {
			t.Fatalf("expected ErrTaskInProgress, got %v", err)
		}
	})

	t.Run("should ignore unlock with a foreign token", func(t *testing.T) {
		if err := l.Unlock(ctx, key, "someone-else"); err != nil {
			t.Fatal(err)
		}
		if !mr.Exists(key) {
			t.Fatal("lock must survive a foreign unlock")
		}
	})

	t.Run("should release with the owning token", func(t *testing.T) {
		if err := l.Unlock(ctx, key, token); err != nil {
			t.Fatal(err)
		}
		if mr.Exists(key) {
			t.Fatal("expected key to be deleted")
		}
		if _, err := l.TryLock(ctx, key, time.Minute); err != nil {
			t.Fatalf("expected relock to succeed, got %v", err)
		}
	})
}

func TestConnect_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	if _, err := Connect(context.Background(), &config.RedisConfig{URL: addr}); err == nil {
		t.Fatal("expected an error for a closed server")
	}
}

func TestJobCache(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestClient(t)
	cache := NewJobCache(c, time.Minute)
	job := &model.Job{ID: "job-1", UserID: "owner", Title: "Backend Engineer", ProcessedDescription: "Go"}

	t.Run("should miss on an empty cache", func(t *testing.T) {
		got, ok, err := cache.Get(ctx, "job-1")
		if err != nil || ok || got != nil {
			t.Fatalf("expected a clean miss, got %v %v %v", got, ok, err)
		}
	})

	t.Run("should round trip under job:<id> with the ttl", func(t *testing.T) {
		if err := cache.Put(ctx, job); err != nil {
			t.Fatal(err)
		}
		if ttl := mr.TTL("job:job-1"); ttl != time.Minute {
			t.Errorf("expected 1m ttl, got %s", ttl)
		}
		got, ok, err := cache.Get(ctx, "job-1")
		if err != nil || !ok {
			t.Fatalf("expected a hit, got %v %v", ok, err)
		}
		if got.Title != "Backend Engineer" || got.UserID != "owner" {
			t.Errorf("unexpected job %+v", got)
		}
	})

	t.Run("should drop an undecodable entry", func(t *testing.T) {
		if err := mr.Set("job:bad", "{"); err != nil {
			t.Fatal(err)
		}
		if _, ok, err := cache.Get(ctx, "bad"); ok || err != nil {
			t.Fatalf("expected a miss, got %v %v", ok, err)
		}
		if mr.Exists("job:bad") {
			t.Error("expected the corrupt entry to be deleted")
		}
	})

	t.Run("should expire with the window", func(t *testing.T) {
		mr.FastForward(time.Minute + time.Second)
		if _, ok, _ := cache.Get(ctx, "job-1"); ok {
			t.Error("expected the entry to expire")
		}
	})

	t.Run("should invalidate", func(t *testing.T) {
		_ = cache.Put(ctx, job)
		if err := cache.Invalidate(ctx, "job-1"); err != nil {
			t.Fatal(err)
		}
		if mr.Exists("job:job-1") {
			t.Error("expected the key to be gone")
		}
	})
}
