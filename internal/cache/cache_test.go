package cache

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/lexcase/caseflow/internal/config"
)

func TestKey(t *testing.T) {
	if got := key("u1"); got != "notifications:unread:u1" {
		t.Errorf("key() = %q", got)
	}
}

func TestNoop(t *testing.T) {
	var c UnreadCounter = Noop{}
	ctx := context.Background()

	if err := c.Set(ctx, "u1", 4); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, ok, err := c.Get(ctx, "u1"); ok || err != nil {
		t.Errorf("Get() ok = %v, err = %v, want miss", ok, err)
	}
	if err := c.Invalidate(ctx, "u1"); err != nil {
		t.Errorf("Invalidate() error = %v", err)
	}
}

func TestRedisUnreadCounterUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	c := NewRedisUnreadCounter(client, time.Minute, zap.NewNop())
	if _, _, err := c.Get(context.Background(), "u1"); err == nil {
		t.Error("expected error from unreachable redis")
	}
}

func TestNewFallsBackToNoop(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	tests := []struct {
		name string
		cfg  config.RedisConfig
	}{
		{"disabled", config.RedisConfig{Enabled: false, URL: "127.0.0.1:6379"}},
		{"unreachable", config.RedisConfig{Enabled: true, URL: "127.0.0.1:1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, closeFn := New(ctx, tt.cfg, zap.NewNop())
			if _, ok := c.(Noop); !ok {
				t.Errorf("New() = %T, want Noop", c)
			}
			if err := closeFn(); err != nil {
				t.Errorf("close error = %v", err)
			}
		})
	}
}
