package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/greenloop/progress-engine/internal/core/ports"
)

// CartHandler exposes the per-user cart.
type CartHandler struct {
	service ports.CartService
}

func NewCartHandler(service ports.CartService) *CartHandler {
	return &CartHandler{service: service}
}

type addCartItemRequest struct {
	ProductID string  `json:"product_id" validate:"required"`
	Name      string  `json:"name" validate:"required"`
	Price     float64 `json:"price" validate:"gte=0"`
	Image     string  `json:"image" validate:"omitempty,url"`
}

type setQuantityRequest struct {
	Quantity int64 `json:"quantity"`
}

// Get handles GET /v1/cart.
//
// @Summary      Get the caller's cart
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Cart
// @Failure      401  {object}  map[string]string
// @Router       /v1/cart [get]
func (h *CartHandler) Get(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	cart, err := h.service.Get(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cart)
}

// AddItem handles POST /v1/cart/items. Adding a product already in the cart
// bumps its quantity instead of creating a second line.
//
// @Summary      Add a product to the cart
// @Tags         cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      addCartItemRequest  true  "Product snapshot"
// @Success      200   {object}  domain.Cart
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/cart/items [post]
func (h *CartHandler) AddItem(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req addCartItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	cart, err := h.service.Add(c.Request().Context(), userID, ports.AddCartItemInput{
		ProductID: req.ProductID,
		Name:      req.Name,
		Price:     req.Price,
		Image:     req.Image,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, cart)
}

// SetQuantity handles PUT /v1/cart/items/:product_id. A quantity of zero or
// less removes the line.
//
// @Summary      Set a cart line's quantity
// @Tags         cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        product_id  path      string              true  "Product id"
// @Param        body        body      setQuantityRequest  true  "New quantity"
// @Success      200         {object}  domain.Cart
// @Failure      401         {object}  map[string]string
// @Router       /v1/cart/items/{product_id} [put]
func (h *CartHandler) SetQuantity(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req setQuantityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	cart, err := h.service.SetQuantity(c.Request().Context(), userID, c.Param("product_id"), req.Quantity)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, cart)
}

// RemoveItem handles DELETE /v1/cart/items/:product_id.
//
// @Summary      Remove a product from the cart
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Param        product_id  path      string  true  "Product id"
// @Success      200         {object}  domain.Cart
// @Failure      401         {object}  map[string]string
// @Router       /v1/cart/items/{product_id} [delete]
func (h *CartHandler) RemoveItem(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	cart, err := h.service.Remove(c.Request().Context(), userID, c.Param("product_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cart)
}

// Clear handles DELETE /v1/cart.
//
// @Summary      Empty the cart
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Cart
// @Failure      401  {object}  map[string]string
// @Router       /v1/cart [delete]
func (h *CartHandler) Clear(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	cart, err := h.service.Clear(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cart)
}
