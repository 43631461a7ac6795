package handler

import (
	"github.com/sweetshop/sweetshop-api/internal/core/domain"
	"github.com/sweetshop/sweetshop-api/internal/core/ports"
)

// --- Request → Service input ---

func toCreateInput(req createSweetRequest) ports.CreateItemInput {
	return ports.CreateItemInput{
		Name:     req.Name,
		Category: req.Category,
		Price:    *req.Price,
		Quantity: *req.Quantity,
	}
}

func toItemPatch(req updateSweetRequest) domain.ItemPatch {
	return domain.ItemPatch{
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
		Quantity: req.Quantity,
	}
}

func toStockInput(id string, req stockRequest, idempotencyKey string) ports.StockChangeInput {
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	return ports.StockChangeInput{
		ItemID:         id,
		Quantity:       qty,
		IdempotencyKey: idempotencyKey,
	}
}

// --- Domain → Response ---

func toUserResponse(u *domain.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Role: u.Role}
}

// nonNil keeps empty listings encoded as [] rather than null.
func nonNil(items []*domain.Item) []*domain.Item {
	if items == nil {
		return []*domain.Item{}
	}
	return items
}
