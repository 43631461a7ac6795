package ports

import (
	"context"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
)

// CreateItemInput carries the fields of a new catalog item.
type CreateItemInput struct {
	Name     string
	Category string
	Price    float64
	Quantity int
}

// StockChangeInput is the DTO for purchase and restock.
type StockChangeInput struct {
	ItemID   string
	Quantity int
	// IdempotencyKey is optional. A repeated key for the same item and
	// action replays the first result instead of changing stock again.
	IdempotencyKey string
}

// InventoryService defines the catalog and stock use cases.
type InventoryService interface {
	CreateItem(ctx context.Context, input CreateItemInput) (*domain.Item, error)
	ListItems(ctx context.Context) ([]*domain.Item, error)
	GetItem(ctx context.Context, id string) (*domain.Item, bool, error)
	UpdateItem(ctx context.Context, id string, patch domain.ItemPatch) (*domain.Item, bool, error)
	DeleteItem(ctx context.Context, id string) (bool, error)
	Search(ctx context.Context, filter domain.SearchFilter) ([]*domain.Item, error)
	// Purchase and Restock report replayed=true when the result was served
	// from an earlier request with the same idempotency key.
	Purchase(ctx context.Context, input StockChangeInput) (item *domain.Item, replayed bool, err error)
	Restock(ctx context.Context, input StockChangeInput) (item *domain.Item, replayed bool, err error)
}
