package cache

import (
	"context"
	"testing"
	"time"

	"clearfeed/types"

	"github.com/alicebob/miniredis/v2"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	r, err := NewRedis(RedisConfig{Addr: mr.Addr(), Prefix: "cf:", TTL: time.Minute})
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r, mr
}

func TestRedisGetSet(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()

	if _, ok, err := r.Get(ctx, AllFeedsKey); ok || err != nil {
		t.Fatalf("empty store: ok=%v err=%v", ok, err)
	}

	want := []*types.Article{{ID: "technology-Hacker News-0", Title: "One", KeyPoints: []string{"a"}}}
	if err := r.Set(ctx, AllFeedsKey, want); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !mr.Exists("cf:" + AllFeedsKey) {
		t.Errorf("expected prefixed key, have %v", mr.Keys())
	}
	if ttl := mr.TTL("cf:" + AllFeedsKey); ttl != time.Minute {
		t.Errorf("TTL = %v, want 1m", ttl)
	}

	got, ok, err := r.Get(ctx, AllFeedsKey)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if len(got) != 1 || got[0].ID != want[0].ID || got[0].KeyPoints[0] != "a" {
		t.Errorf("got %+v", got)
	}
}

func TestRedisEmptyListIsAHit(t *testing.T) {
	r, _ := newTestRedis(t)
	ctx := context.Background()

	if err := r.Set(ctx, CategoryKey("world"), nil); err != nil {
		t.Fatal(err)
	}
	got, ok, err := r.Get(ctx, CategoryKey("world"))
	if err != nil || !ok || got == nil || len(got) != 0 {
		t.Errorf("got %v ok=%v err=%v, want empty hit", got, ok, err)
	}
}

func TestRedisExpiry(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()

	if err := r.Set(ctx, AllFeedsKey, []*types.Article{{ID: "x"}}); err != nil {
		t.Fatal(err)
	}
	mr.FastForward(59 * time.Second)
	if _, ok, _ := r.Get(ctx, AllFeedsKey); !ok {
		t.Error("entry expired early")
	}
	mr.FastForward(2 * time.Second)
	if _, ok, err := r.Get(ctx, AllFeedsKey); ok || err != nil {
		t.Errorf("expired entry: ok=%v err=%v", ok, err)
	}
}

func TestRedisCorruptEntry(t *testing.T) {
	r, mr := newTestRedis(t)
	mr.Set("cf:"+AllFeedsKey, "not json")

	if _, ok, err := r.Get(context.Background(), AllFeedsKey); ok || err == nil {
		t.Errorf("corrupt entry: ok=%v err=%v", ok, err)
	}
}

func TestRedisFlushAllKeepsForeignKeys(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()

	mr.Set("other:session", "keep me")
	for _, k := range []string{AllFeedsKey, CategoryKey("technology"), CategoryKey("world")} {
		if err := r.Set(ctx, k, []*types.Article{{ID: k}}); err != nil {
			t.Fatal(err)
		}
	}

	if err := r.FlushAll(ctx); err != nil {
		t.Fatalf("FlushAll: %v", err)
	}
	for _, k := range []string{AllFeedsKey, CategoryKey("technology"), CategoryKey("world")} {
		if _, ok, _ := r.Get(ctx, k); ok {
			t.Errorf("%s survived FlushAll", k)
		}
	}
	if v, err := mr.Get("other:session"); err != nil || v != "keep me" {
		t.Errorf("foreign key removed: %q %v", v, err)
	}
}

func TestNewRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	if _, err := NewRedis(RedisConfig{Addr: addr}); err == nil {
		t.Error("expected error for unreachable redis")
	}
}
