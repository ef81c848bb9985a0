package ports

import (
	"context"
	"errors"
)

// TokenStore issues and redeems the anti-forgery tokens that bind
// redirect-back navigations to the checkout creation that produced them.
// Tokens are single-use: Consume removes the token on success.
type TokenStore interface {
	Issue(ctx context.Context, token, orderID string) error
	Consume(ctx context.Context, token, orderID string) error
}

var (
	// ErrInvalidToken is returned when a token is missing, unknown, already
	// used, or bound to a different order. Handlers fail closed on it.
	ErrInvalidToken = errors.New("invalid or expired token")
)
