package stores

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/swifthaul/access"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	srv := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: srv.Addr()})
}

func TestRedisPortalPrefRoundtrip(t *testing.T) {
	ctx := context.Background()
	store := NewRedisPortalPrefStore(newTestRedis(t))

	// Unset preference reads back empty, not an error.
	portal, err := store.LastPortal(ctx, "u1")
	if err != nil {
		t.Fatalf("last portal: %v", err)
	}
	if portal != "" {
		t.Fatalf("expected empty preference, got %q", portal)
	}

	if err := store.SetLastPortal(ctx, "u1", access.PortalDriver); err != nil {
		t.Fatalf("set: %v", err)
	}
	portal, err = store.LastPortal(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if portal != access.PortalDriver {
		t.Fatalf("got %q want driver", portal)
	}

	if err := store.ClearLastPortal(ctx, "u1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	portal, _ = store.LastPortal(ctx, "u1")
	if portal != "" {
		t.Fatalf("expected cleared preference, got %q", portal)
	}
}

func TestRedisPortalPrefFeedsResolver(t *testing.T) {
	ctx := context.Background()
	store := NewRedisPortalPrefStore(newTestRedis(t))

	if err := store.SetLastPortal(ctx, "u1", access.PortalDriver); err != nil {
		t.Fatalf("set: %v", err)
	}
	last, err := store.LastPortal(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	p := access.NewPrincipal("u1", []access.Role{access.RoleStaff, access.RoleDriver}).WithLastPortal(last)
	if got := access.DefaultPortal(p); got != access.PortalDriver {
		t.Fatalf("preference should win over tie-break, got %s", got)
	}
}
