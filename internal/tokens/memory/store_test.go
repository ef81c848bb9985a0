package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopkit/fisrv-gateway/internal/checkout/ports"
	"github.com/shopkit/fisrv-gateway/internal/tokens/memory"
)

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("consume redeems an issued token", func(t *testing.T) {
		store := memory.NewStore()
		if err := store.Issue(ctx, "tok-1", "order-1"); err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if err := store.Consume(ctx, "tok-1", "order-1"); err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
	})

	t.Run("token cannot be replayed", func(t *testing.T) {
		store := memory.NewStore()
		if err := store.Issue(ctx, "tok-1", "order-1"); err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if err := store.Consume(ctx, "tok-1", "order-1"); err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if err := store.Consume(ctx, "tok-1", "order-1"); !errors.Is(err, ports.ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken on replay, got %v", err)
		}
	})

	t.Run("token bound to another order is rejected", func(t *testing.T) {
		store := memory.NewStore()
		if err := store.Issue(ctx, "tok-1", "order-1"); err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if err := store.Consume(ctx, "tok-1", "order-2"); !errors.Is(err, ports.ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("unknown token is rejected", func(t *testing.T) {
		store := memory.NewStore()
		if err := store.Consume(ctx, "never-issued", "order-1"); !errors.Is(err, ports.ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})
}
