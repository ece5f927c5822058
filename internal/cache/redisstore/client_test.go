package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newMini(t *testing.T) (*miniredis.Miniredis, *Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	c, err := New(context.Background(), mr.Addr())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return mr, c
}

func TestNew_RequiresAddr(t *testing.T) {
	if _, err := New(context.Background(), ""); err == nil {
		t.Fatal("want error for empty address")
	}
}

func TestSetMGet(t *testing.T) {
	_, c := newMini(t)
	ctx := context.Background()

	if err := c.Set(ctx, "a", []byte("1"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Set(ctx, "b", []byte("2"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := c.MGet(ctx, []string{"a", "missing", "b"})
	if err != nil {
		t.Fatalf("MGet: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("MGet returned %d entries, want 2: %v", len(got), got)
	}
	if string(got["a"]) != "1" || string(got["b"]) != "2" {
		t.Fatalf("unexpected values: %v", got)
	}
	if _, ok := got["missing"]; ok {
		t.Fatal("missing key must be absent from result")
	}
}

func TestMGet_Empty(t *testing.T) {
	_, c := newMini(t)

	got, err := c.MGet(context.Background(), nil)
	if err != nil {
		t.Fatalf("MGet: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("want empty map, got %v", got)
	}
}

func TestSet_TTL(t *testing.T) {
	mr, c := newMini(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), 30*time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if ttl := mr.TTL("k"); ttl != 30*time.Second {
		t.Fatalf("TTL = %v, want 30s", ttl)
	}

	mr.FastForward(time.Minute)
	got, err := c.MGet(ctx, []string{"k"})
	if err != nil {
		t.Fatalf("MGet: %v", err)
	}
	if _, ok := got["k"]; ok {
		t.Fatal("key must expire after TTL")
	}
}

func TestDel(t *testing.T) {
	_, c := newMini(t)
	ctx := context.Background()

	if err := c.Set(ctx, "x", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Del(ctx, "x", "never-existed"); err != nil {
		t.Fatalf("Del: %v", err)
	}

	got, err := c.MGet(ctx, []string{"x"})
	if err != nil {
		t.Fatalf("MGet: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("key survived Del: %v", got)
	}
}

func TestSAddSMembers(t *testing.T) {
	_, c := newMini(t)
	ctx := context.Background()

	if err := c.SAdd(ctx, "idx", "k1", "k2"); err != nil {
		t.Fatalf("SAdd: %v", err)
	}
	if err := c.SAdd(ctx, "idx", "k2", "k3"); err != nil {
		t.Fatalf("SAdd: %v", err)
	}

	members, err := c.SMembers(ctx, "idx")
	if err != nil {
		t.Fatalf("SMembers: %v", err)
	}
	if len(members) != 3 {
		t.Fatalf("got %d members, want 3: %v", len(members), members)
	}
	seen := map[string]bool{}
	for _, m := range members {
		seen[m] = true
	}
	for _, want := range []string{"k1", "k2", "k3"} {
		if !seen[want] {
			t.Fatalf("member %q missing from %v", want, members)
		}
	}
}

func TestSMembers_EmptySet(t *testing.T) {
	_, c := newMini(t)

	members, err := c.SMembers(context.Background(), "nothing")
	if err != nil {
		t.Fatalf("SMembers: %v", err)
	}
	if len(members) != 0 {
		t.Fatalf("want no members, got %v", members)
	}
}

func TestPing_AfterBackendDown(t *testing.T) {
	mr, c := newMini(t)

	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	mr.Close()
	if err := c.Ping(context.Background()); err == nil {
		t.Fatal("want error after backend shutdown")
	}
}
