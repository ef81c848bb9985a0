package memory

import (
	"context"
	"sync"

	"github.com/shopkit/fisrv-gateway/internal/checkout/ports"
)

// Store keeps anti-forgery tokens in memory. Useful for local development
// and tests.
type Store struct {
	mu     sync.Mutex
	tokens map[string]string
}

// NewStore creates a new in-memory token store.
func NewStore() *Store {
	return &Store{tokens: make(map[string]string)}
}

// Issue registers a token for an order.
func (s *Store) Issue(_ context.Context, token, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = orderID
	return nil
}

// Consume redeems a token, removing it so it cannot be replayed. The token
// must be bound to the given order.
func (s *Store) Consume(_ context.Context, token, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	boundOrder, ok := s.tokens[token]
	if !ok || boundOrder != orderID {
		return ports.ErrInvalidToken
	}

	delete(s.tokens, token)
	return nil
}
