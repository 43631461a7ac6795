package ports

import (
	"context"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
)

// ItemRepository defines persistence operations for catalog items.
// Missing items are reported as domain.ErrItemNotFound.
type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) (*domain.Item, error)
	// FindAll returns every item in insertion order.
	FindAll(ctx context.Context) ([]*domain.Item, error)
	FindByID(ctx context.Context, id string) (*domain.Item, error)
	// Update merges the set fields of patch onto the stored item.
	Update(ctx context.Context, id string, patch domain.ItemPatch) (*domain.Item, error)
	Delete(ctx context.Context, id string) (bool, error)
	// AdjustQuantity adds delta to the item's stock in one atomic step. It
	// returns domain.ErrInsufficientStock, leaving the item untouched, when
	// the result would be negative.
	AdjustQuantity(ctx context.Context, id string, delta int) (*domain.Item, error)
}
