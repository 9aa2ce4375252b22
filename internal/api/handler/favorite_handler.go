package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/greenloop/progress-engine/internal/core/ports"
)

// FavoriteHandler exposes the favorite toggle surface.
type FavoriteHandler struct {
	service ports.FavoriteService
}

func NewFavoriteHandler(service ports.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{service: service}
}

type favoriteRequest struct {
	Name  string  `json:"name" validate:"required"`
	Price float64 `json:"price" validate:"gte=0"`
	Image string  `json:"image" validate:"omitempty,url"`
}

// List handles GET /v1/favorites.
//
// @Summary      List the caller's favorites
// @Tags         favorites
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Favorite
// @Failure      401  {object}  map[string]string
// @Router       /v1/favorites [get]
func (h *FavoriteHandler) List(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	favorites, err := h.service.List(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, favorites)
}

// Put handles PUT /v1/favorites/:product_id. Idempotent: favoriting an
// already-favorited product succeeds without awarding points again.
//
// @Summary      Favorite a product
// @Tags         favorites
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        product_id  path      string           true  "Product id"
// @Param        body        body      favoriteRequest  true  "Product snapshot"
// @Success      200         {object}  domain.Favorite
// @Failure      401         {object}  map[string]string
// @Failure      422         {object}  map[string]string
// @Router       /v1/favorites/{product_id} [put]
func (h *FavoriteHandler) Put(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req favoriteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	fav, err := h.service.Favorite(c.Request().Context(), userID, ports.FavoriteInput{
		ProductID: c.Param("product_id"),
		Name:      req.Name,
		Price:     req.Price,
		Image:     req.Image,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fav)
}

// Delete handles DELETE /v1/favorites/:product_id. Removing a favorite never
// deducts the points it earned.
//
// @Summary      Unfavorite a product
// @Tags         favorites
// @Security     BearerAuth
// @Param        product_id  path  string  true  "Product id"
// @Success      204
// @Failure      401  {object}  map[string]string
// @Router       /v1/favorites/{product_id} [delete]
func (h *FavoriteHandler) Delete(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	if err := h.service.Unfavorite(c.Request().Context(), userID, c.Param("product_id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
