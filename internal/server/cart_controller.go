package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nguyentranbao-ct/smart-cart/internal/models"
	pkgmdw "github.com/nguyentranbao-ct/smart-cart/internal/server/middleware"
)

func (h *controller) CreateCart(c echo.Context, _ EmptyRequest) (*pkgmdw.Response, error) {
	cart, err := h.carts.Create(c.Request().Context())
	if err != nil {
		return nil, err
	}
	return &pkgmdw.Response{Status: http.StatusCreated, Success: true, Data: cart}, nil
}

func (h *controller) GetCart(c echo.Context, req CartRequest) (*models.Cart, error) {
	return h.carts.Get(c.Request().Context(), req.CartID)
}

func (h *controller) DeleteCart(c echo.Context, req CartRequest) error {
	return h.carts.Delete(c.Request().Context(), req.CartID)
}

func (h *controller) AddItem(c echo.Context, req AddItemRequest) (*models.Cart, error) {
	if req.Product.Name == "" || req.Product.SourceID == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "product name and source_id are required")
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	return h.carts.AddItem(c.Request().Context(), req.CartID, req.Product, quantity, req.Source)
}

func (h *controller) UpdateItem(c echo.Context, req UpdateItemRequest) (*models.Cart, error) {
	return h.carts.UpdateQuantity(c.Request().Context(), req.CartID, req.Index, req.Quantity)
}

func (h *controller) RemoveItem(c echo.Context, req ItemRequest) (*models.Cart, error) {
	return h.carts.RemoveItem(c.Request().Context(), req.CartID, req.Index)
}

func (h *controller) ClearCart(c echo.Context, req CartRequest) (*models.Cart, error) {
	return h.carts.Clear(c.Request().Context(), req.CartID)
}

func (h *controller) OptimizeCart(c echo.Context, req OptimizeRequest) (*models.CartOptimization, error) {
	return h.carts.Optimize(c.Request().Context(), req.CartID, models.OptimizationMode(req.Mode), req.PreferFast)
}

func (h *controller) CartSummary(c echo.Context, req CartRequest) (*models.CartSummary, error) {
	return h.carts.Summary(c.Request().Context(), req.CartID)
}
