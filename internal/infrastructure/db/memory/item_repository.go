package memory

import (
	"context"
	"math"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
)

// ItemRepository implements ports.ItemRepository on a Collection.
type ItemRepository struct {
	items *Collection[domain.Item]
}

// NewItemRepository returns an empty repository issuing sequential ids.
func NewItemRepository() *ItemRepository {
	return &ItemRepository{items: NewCollection(
		func(i *domain.Item) string { return i.ID },
		func(i *domain.Item, id string) { i.ID = id },
		SequentialIDs(),
	)}
}

func (r *ItemRepository) Create(_ context.Context, item *domain.Item) (*domain.Item, error) {
	stored := r.items.Create(*item)
	return &stored, nil
}

func (r *ItemRepository) FindAll(_ context.Context) ([]*domain.Item, error) {
	rows := r.items.FindAll()
	out := make([]*domain.Item, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out, nil
}

func (r *ItemRepository) FindByID(_ context.Context, id string) (*domain.Item, error) {
	item, ok := r.items.FindByID(id)
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	return &item, nil
}

func (r *ItemRepository) Update(_ context.Context, id string, patch domain.ItemPatch) (*domain.Item, error) {
	item, ok, _ := r.items.Update(id, func(it *domain.Item) error {
		patch.Apply(it)
		return nil
	})
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	return &item, nil
}

func (r *ItemRepository) Delete(_ context.Context, id string) (bool, error) {
	return r.items.Delete(id), nil
}

func (r *ItemRepository) AdjustQuantity(_ context.Context, id string, delta int) (*domain.Item, error) {
	item, ok, err := r.items.Update(id, func(it *domain.Item) error {
		if delta > 0 && it.Quantity > math.MaxInt-delta {
			return domain.ErrStockOverflow
		}
		if it.Quantity+delta < 0 {
			return domain.ErrInsufficientStock
		}
		it.Quantity += delta
		return nil
	})
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}
