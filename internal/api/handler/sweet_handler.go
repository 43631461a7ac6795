package handler

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sweetshop/sweetshop-api/internal/api/metrics"
	"github.com/sweetshop/sweetshop-api/internal/core/domain"
	"github.com/sweetshop/sweetshop-api/internal/core/ports"
)

// HeaderIdempotencyKey lets clients retry purchase and restock safely.
const HeaderIdempotencyKey = "Idempotency-Key"

// HeaderIdempotentReplayed marks a response served from an earlier request.
const HeaderIdempotentReplayed = "Idempotent-Replayed"

// SweetHandler handles HTTP requests for the sweets catalog and stock.
type SweetHandler struct {
	service ports.InventoryService
	log     zerolog.Logger
}

func NewSweetHandler(service ports.InventoryService, log zerolog.Logger) *SweetHandler {
	return &SweetHandler{service: service, log: log}
}

// List handles GET /api/sweets.
//
// @Summary      List all sweets
// @Tags         sweets
// @Produce      json
// @Success      200  {array}   domain.Item
// @Failure      500  {object}  errorResponse
// @Router       /api/sweets [get]
func (h *SweetHandler) List(c echo.Context) error {
	items, err := h.service.ListItems(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(items))
}

// Search handles GET /api/sweets/search.
//
// @Summary      Search sweets
// @Description  All supplied filters must match. Name is a case-insensitive substring, category a case-insensitive exact match, price bounds are inclusive.
// @Tags         sweets
// @Produce      json
// @Param        name      query     string  false  "Name contains"
// @Param        category  query     string  false  "Category equals"
// @Param        minPrice  query     number  false  "Minimum price"
// @Param        maxPrice  query     number  false  "Maximum price"
// @Success      200       {array}   domain.Item
// @Failure      400       {object}  errorResponse
// @Failure      500       {object}  errorResponse
// @Router       /api/sweets/search [get]
func (h *SweetHandler) Search(c echo.Context) error {
	minPrice, err := queryFloat(c, "minPrice")
	if err != nil {
		return err
	}
	maxPrice, err := queryFloat(c, "maxPrice")
	if err != nil {
		return err
	}

	items, err := h.service.Search(c.Request().Context(), domain.SearchFilter{
		Name:     c.QueryParam("name"),
		Category: c.QueryParam("category"),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(items))
}

// Get handles GET /api/sweets/:id.
//
// @Summary      Get a sweet by id
// @Tags         sweets
// @Produce      json
// @Param        id   path      string  true  "Sweet id"
// @Success      200  {object}  domain.Item
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/sweets/{id} [get]
func (h *SweetHandler) Get(c echo.Context) error {
	item, found, err := h.service.GetItem(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrItemNotFound
	}
	return c.JSON(http.StatusOK, item)
}

// Create handles POST /api/sweets.
//
// @Summary      Add a sweet
// @Tags         sweets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createSweetRequest  true  "New sweet"
// @Success      201   {object}  domain.Item
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/sweets [post]
func (h *SweetHandler) Create(c echo.Context) error {
	var req createSweetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload").SetInternal(err)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	item, err := h.service.CreateItem(c.Request().Context(), toCreateInput(req))
	if err != nil {
		return err
	}

	metrics.CatalogChangesTotal.WithLabelValues("create").Inc()
	return c.JSON(http.StatusCreated, item)
}

// Update handles PUT /api/sweets/:id.
//
// @Summary      Update a sweet
// @Description  Partial update: only the supplied fields change.
// @Tags         sweets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Sweet id"
// @Param        body  body      updateSweetRequest  true  "Fields to change"
// @Success      200   {object}  domain.Item
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/sweets/{id} [put]
func (h *SweetHandler) Update(c echo.Context) error {
	var req updateSweetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload").SetInternal(err)
	}

	item, found, err := h.service.UpdateItem(c.Request().Context(), c.Param("id"), toItemPatch(req))
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrItemNotFound
	}

	metrics.CatalogChangesTotal.WithLabelValues("update").Inc()
	return c.JSON(http.StatusOK, item)
}

// Delete handles DELETE /api/sweets/:id. Unknown ids report success=false.
//
// @Summary      Delete a sweet
// @Tags         sweets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Sweet id"
// @Success      200  {object}  deleteResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/sweets/{id} [delete]
func (h *SweetHandler) Delete(c echo.Context) error {
	deleted, err := h.service.DeleteItem(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if deleted {
		metrics.CatalogChangesTotal.WithLabelValues("delete").Inc()
	}
	return c.JSON(http.StatusOK, deleteResponse{Success: deleted})
}

// Purchase handles POST /api/sweets/:id/purchase.
//
// @Summary      Purchase a sweet
// @Tags         sweets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id               path      string        true   "Sweet id"
// @Param        Idempotency-Key  header    string        false  "Replays the first result for a repeated key"
// @Param        body             body      stockRequest  false  "Quantity, default 1"
// @Success      200              {object}  domain.Item
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      404              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Failure      500              {object}  errorResponse
// @Router       /api/sweets/{id}/purchase [post]
func (h *SweetHandler) Purchase(c echo.Context) error {
	return h.changeStock(c, "purchase", h.service.Purchase)
}

// Restock handles POST /api/sweets/:id/restock.
//
// @Summary      Restock a sweet
// @Tags         sweets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id               path      string        true   "Sweet id"
// @Param        Idempotency-Key  header    string        false  "Replays the first result for a repeated key"
// @Param        body             body      stockRequest  false  "Quantity, default 1"
// @Success      200              {object}  domain.Item
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      403              {object}  errorResponse
// @Failure      404              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Failure      500              {object}  errorResponse
// @Router       /api/sweets/{id}/restock [post]
func (h *SweetHandler) Restock(c echo.Context) error {
	return h.changeStock(c, "restock", h.service.Restock)
}

type stockFunc func(ctx context.Context, in ports.StockChangeInput) (*domain.Item, bool, error)

func (h *SweetHandler) changeStock(c echo.Context, action string, apply stockFunc) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	// An empty body is allowed and means a quantity of 1.
	var req stockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload").SetInternal(err)
	}

	in := toStockInput(c.Param("id"), req, strings.TrimSpace(c.Request().Header.Get(HeaderIdempotencyKey)))
	item, replayed, err := apply(c.Request().Context(), in)
	if err != nil {
		metrics.StockChangesTotal.WithLabelValues(action, stockResult(err)).Inc()
		return err
	}

	if replayed {
		metrics.StockChangesTotal.WithLabelValues(action, "replayed").Inc()
		c.Response().Header().Set(HeaderIdempotentReplayed, "true")
		return c.JSON(http.StatusOK, item)
	}
	metrics.StockChangesTotal.WithLabelValues(action, "ok").Inc()

	h.log.Debug().
		Str("action", action).
		Str("item_id", in.ItemID).
		Str("username", claims.Username).
		Msg("stock request served")

	metrics.StockUnitsTotal.WithLabelValues(action).Add(float64(in.Quantity))
	return c.JSON(http.StatusOK, item)
}

func stockResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrItemNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrRequestInProgress):
		return "in_progress"
	case errors.Is(err, domain.ErrInvalidArgument):
		return "invalid"
	default:
		return "error"
	}
}

// queryFloat parses an optional numeric query parameter.
func queryFloat(c echo.Context, name string) (*float64, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err == nil && (math.IsNaN(v) || math.IsInf(v, 0)) {
		err = strconv.ErrSyntax
	}
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, name+" must be a number").SetInternal(err)
	}
	return &v, nil
}
