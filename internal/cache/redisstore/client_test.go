package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cli, err := New(context.Background(), mr.Addr())
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	t.Cleanup(func() { _ = cli.Close() })
	return cli, mr
}

func TestNew_RequiresAddr(t *testing.T) {
	if _, err := New(context.Background(), ""); err == nil {
		t.Fatal("empty address must be rejected")
	}
}

func TestGetSet(t *testing.T) {
	cli, mr := newTestClient(t)
	ctx := context.Background()

	if _, ok, err := cli.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}

	if err := cli.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	val, ok, err := cli.Get(ctx, "k")
	if err != nil || !ok || string(val) != "v" {
		t.Fatalf("get: %q ok=%v err=%v", val, ok, err)
	}
	if ttl := mr.TTL("k"); ttl != time.Minute {
		t.Fatalf("ttl=%v want 1m", ttl)
	}
}

func TestDel(t *testing.T) {
	cli, _ := newTestClient(t)
	ctx := context.Background()

	if err := cli.Del(ctx); err != nil {
		t.Fatalf("empty del must be a no-op: %v", err)
	}

	_ = cli.Set(ctx, "a", []byte("1"), 0)
	_ = cli.Set(ctx, "b", []byte("2"), 0)
	if err := cli.Del(ctx, "a", "b"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if _, ok, _ := cli.Get(ctx, "a"); ok {
		t.Fatal("a must be gone")
	}
}

func TestSAddSMembers(t *testing.T) {
	cli, mr := newTestClient(t)
	ctx := context.Background()

	if err := cli.SAdd(ctx, "s", time.Minute); err != nil {
		t.Fatalf("empty sadd must be a no-op: %v", err)
	}

	if err := cli.SAdd(ctx, "s", time.Minute, "m1", "m2"); err != nil {
		t.Fatalf("sadd: %v", err)
	}
	members, err := cli.SMembers(ctx, "s")
	if err != nil {
		t.Fatalf("smembers: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("members=%v", members)
	}
	// SAdd refreshes the set TTL
	if ttl := mr.TTL("s"); ttl != time.Minute {
		t.Fatalf("ttl=%v want 1m", ttl)
	}
}
