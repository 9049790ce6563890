package cart

import (
	"context"
	"errors"

	"github.com/mjsport/photostore/internal/domain"
)

// CartRepository defines the interface for cart data operations.
// Consumers define this interface, not the MongoDB implementation.
type CartRepository interface {
	GetCart(ctx context.Context, sessionID string) (*domain.Cart, error)
	AddItem(ctx context.Context, sessionID string, item domain.CartItem) error
	RemoveItem(ctx context.Context, sessionID string, photoID string) error
	DeleteCart(ctx context.Context, sessionID string) error
}

var (
	ErrCartNotFound = errors.New("cart not found")
	ErrItemNotFound = errors.New("item not found in cart")
)
