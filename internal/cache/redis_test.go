package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"pennywise/internal/currency"
)

var _ currency.CodeCache = (*Cache)(nil)

func TestConnect_EmptyAddressDisablesCache(t *testing.T) {
	c, err := Connect(context.Background(), "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Enabled() {
		t.Error("expected disabled cache")
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close on disabled cache: %v", err)
	}
}

func TestDisabledCache(t *testing.T) {
	ctx := context.Background()
	var nilCache *Cache

	for name, c := range map[string]*Cache{"zero": New(nil), "nil_pointer": nilCache} {
		t.Run(name, func(t *testing.T) {
			if err := c.SetCodes(ctx, "USD", []string{"EUR"}, time.Minute); err != nil {
				t.Errorf("SetCodes: %v", err)
			}
			codes, ok, err := c.GetCodes(ctx, "USD")
			if err != nil || ok || codes != nil {
				t.Errorf("expected miss, got %v %v %v", codes, ok, err)
			}
			if err := c.Delete(ctx, "currencies:USD"); err != nil {
				t.Errorf("Delete: %v", err)
			}
		})
	}
}

func TestConnect_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if _, err := Connect(ctx, "127.0.0.1:1", ""); err == nil {
		t.Error("expected error connecting to closed port")
	}
}

func TestUnreachableClientSurfacesErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	c := New(client)
	defer func() { _ = c.Close() }()

	ctx := context.Background()
	if _, _, err := c.GetCodes(ctx, "USD"); err == nil {
		t.Error("expected GetCodes error")
	}
	if err := c.SetCodes(ctx, "USD", []string{"EUR"}, time.Minute); err == nil {
		t.Error("expected SetCodes error")
	}
}
