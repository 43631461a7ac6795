package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
	"github.com/sweetshop/sweetshop-api/internal/core/ports"
)

// Stock actions, also used as replay cache namespaces.
const (
	ActionPurchase = "purchase"
	ActionRestock  = "restock"
)

// ReplayCache abstracts the idempotency store (Redis) for stock changes.
//
// Reserve claims a key atomically for one in-flight request; it returns false
// when the key is already held or already carries a result. Lookup reports a
// hit only once Remember stored the result, never while a key is merely
// reserved. Release drops a reservation whose change failed.
type ReplayCache interface {
	Reserve(ctx context.Context, action, itemID, key string) (bool, error)
	Lookup(ctx context.Context, action, itemID, key string) (*domain.Item, bool, error)
	Remember(ctx context.Context, action, itemID, key string, item *domain.Item) error
	Release(ctx context.Context, action, itemID, key string) error
}

type noopReplayCache struct{}

func (noopReplayCache) Reserve(context.Context, string, string, string) (bool, error) {
	return true, nil
}

func (noopReplayCache) Lookup(context.Context, string, string, string) (*domain.Item, bool, error) {
	return nil, false, nil
}

func (noopReplayCache) Remember(context.Context, string, string, string, *domain.Item) error {
	return nil
}

func (noopReplayCache) Release(context.Context, string, string, string) error {
	return nil
}

// InventoryService implements the catalog and stock use cases.
type InventoryService struct {
	repo   ports.ItemRepository
	replay ReplayCache
	log    zerolog.Logger
}

// NewInventoryService returns an InventoryService. A nil cache disables
// idempotent replay.
func NewInventoryService(repo ports.ItemRepository, cache ReplayCache, log zerolog.Logger) *InventoryService {
	if cache == nil {
		cache = noopReplayCache{}
	}
	return &InventoryService{repo: repo, replay: cache, log: log}
}

func (s *InventoryService) CreateItem(ctx context.Context, in ports.CreateItemInput) (*domain.Item, error) {
	if in.Price < 0 || in.Quantity < 0 {
		return nil, domain.ErrNegativeValues
	}

	item, err := s.repo.Create(ctx, &domain.Item{
		Name:     in.Name,
		Category: in.Category,
		Price:    in.Price,
		Quantity: in.Quantity,
	})
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	s.log.Info().Str("item_id", item.ID).Str("name", item.Name).Msg("sweet created")
	return item, nil
}

func (s *InventoryService) ListItems(ctx context.Context) ([]*domain.Item, error) {
	items, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// GetItem returns found=false, not an error, for an unknown id.
func (s *InventoryService) GetItem(ctx context.Context, id string) (*domain.Item, bool, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get item: %w", err)
	}
	return item, true, nil
}

// UpdateItem rejects negative price or quantity before touching the store and
// returns found=false for an unknown id.
func (s *InventoryService) UpdateItem(ctx context.Context, id string, patch domain.ItemPatch) (*domain.Item, bool, error) {
	if patch.HasNegative() {
		return nil, false, domain.ErrNegativeValues
	}

	item, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("update item: %w", err)
	}

	s.log.Info().Str("item_id", id).Msg("sweet updated")
	return item, true, nil
}

func (s *InventoryService) DeleteItem(ctx context.Context, id string) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}
	if deleted {
		s.log.Info().Str("item_id", id).Msg("sweet deleted")
	}
	return deleted, nil
}

// Search applies each supplied filter in turn; the result keeps store order.
func (s *InventoryService) Search(ctx context.Context, f domain.SearchFilter) ([]*domain.Item, error) {
	items, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}

	if f.Name != "" {
		needle := strings.ToLower(f.Name)
		items = filterItems(items, func(it *domain.Item) bool {
			return strings.Contains(strings.ToLower(it.Name), needle)
		})
	}
	if f.Category != "" {
		items = filterItems(items, func(it *domain.Item) bool {
			return strings.EqualFold(it.Category, f.Category)
		})
	}
	if f.MinPrice != nil {
		items = filterItems(items, func(it *domain.Item) bool { return it.Price >= *f.MinPrice })
	}
	if f.MaxPrice != nil {
		items = filterItems(items, func(it *domain.Item) bool { return it.Price <= *f.MaxPrice })
	}

	return items, nil
}

func filterItems(items []*domain.Item, keep func(*domain.Item) bool) []*domain.Item {
	out := make([]*domain.Item, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// Purchase takes in.Quantity units out of stock. replayed is true when the
// item comes from an earlier request with the same idempotency key and no
// stock moved.
func (s *InventoryService) Purchase(ctx context.Context, in ports.StockChangeInput) (*domain.Item, bool, error) {
	return s.changeStock(ctx, ActionPurchase, in)
}

// Restock puts in.Quantity units back into stock. See Purchase for replayed.
func (s *InventoryService) Restock(ctx context.Context, in ports.StockChangeInput) (*domain.Item, bool, error) {
	return s.changeStock(ctx, ActionRestock, in)
}

func (s *InventoryService) changeStock(ctx context.Context, action string, in ports.StockChangeInput) (*domain.Item, bool, error) {
	// 1. Existence comes first so an unknown id is always NotFound.
	item, err := s.repo.FindByID(ctx, in.ItemID)
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			return nil, false, err
		}
		return nil, false, fmt.Errorf("%s: %w", action, err)
	}

	// 2. Quantity must be positive.
	if in.Quantity <= 0 {
		if action == ActionPurchase {
			return nil, false, domain.ErrNonPositivePurchase
		}
		return nil, false, domain.ErrNonPositiveRestock
	}

	// 3. Claim the idempotency key before touching stock. A key held by
	// another request either replays its stored result or is still in flight.
	reserved := false
	if in.IdempotencyKey != "" {
		ok, err := s.replay.Reserve(ctx, action, in.ItemID, in.IdempotencyKey)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Str("item_id", in.ItemID).Msg("idempotency reserve failed, processing anyway")
		case ok:
			reserved = true
		default:
			prev, hit, err := s.replay.Lookup(ctx, action, in.ItemID, in.IdempotencyKey)
			if err != nil {
				return nil, false, fmt.Errorf("%s: replay lookup: %w", action, err)
			}
			if !hit {
				return nil, false, domain.ErrRequestInProgress
			}
			s.log.Debug().Str("item_id", in.ItemID).Str("action", action).Msg("idempotent replay")
			return prev, true, nil
		}
	}

	updated, err := s.applyStock(ctx, action, item, in.Quantity)
	if err != nil {
		if reserved {
			if relErr := s.replay.Release(ctx, action, in.ItemID, in.IdempotencyKey); relErr != nil {
				s.log.Warn().Err(relErr).Str("item_id", in.ItemID).Msg("failed to release idempotency key")
			}
		}
		return nil, false, err
	}

	if reserved {
		if err := s.replay.Remember(ctx, action, in.ItemID, in.IdempotencyKey, updated); err != nil {
			s.log.Warn().Err(err).Str("item_id", in.ItemID).Msg("failed to remember idempotency key")
		}
	}

	s.log.Info().
		Str("item_id", in.ItemID).
		Str("action", action).
		Int("quantity", in.Quantity).
		Int("stock", updated.Quantity).
		Msg("stock changed")

	return updated, false, nil
}

// applyStock checks the bounds, then runs the atomic adjustment which
// re-checks them in the store.
func (s *InventoryService) applyStock(ctx context.Context, action string, item *domain.Item, qty int) (*domain.Item, error) {
	delta := qty
	if action == ActionPurchase {
		if qty > item.Quantity {
			return nil, domain.ErrInsufficientStock
		}
		delta = -qty
	} else if qty > math.MaxInt-item.Quantity {
		return nil, domain.ErrStockOverflow
	}

	updated, err := s.repo.AdjustQuantity(ctx, item.ID, delta)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) ||
			errors.Is(err, domain.ErrItemNotFound) ||
			errors.Is(err, domain.ErrInvalidArgument) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	return updated, nil
}
