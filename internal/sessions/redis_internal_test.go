package sessions

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

func TestNewRedisStore_ClosesClientWhenPingFails(t *testing.T) {
	var built *goredis.Client
	orig := newRedisClient
	newRedisClient = func(o *goredis.Options) *goredis.Client {
		built = orig(o)
		return built
	}
	t.Cleanup(func() { newRedisClient = orig })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// Port 1 is never a Redis server.
	if _, err := NewRedisStore(ctx, "redis://127.0.0.1:1/0"); err == nil {
		t.Fatal("NewRedisStore() error = nil, want ping failure")
	}
	if built == nil {
		t.Fatal("no client was built")
	}
	if err := built.Ping(context.Background()).Err(); !errors.Is(err, goredis.ErrClosed) {
		t.Errorf("Ping after failed construction = %v, want ErrClosed", err)
	}
}

func TestNewRedisStore_LeavesCallerClientOpen(t *testing.T) {
	client := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond})
	t.Cleanup(func() { client.Close() })

	if _, err := NewRedisStore(context.Background(), "", WithClient(client)); err == nil {
		t.Fatal("NewRedisStore() error = nil, want ping failure")
	}
	if err := client.Ping(context.Background()).Err(); errors.Is(err, goredis.ErrClosed) {
		t.Error("caller-provided client was closed")
	}
}
