package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/greenloop/progress-engine/internal/core/domain"
	"github.com/greenloop/progress-engine/internal/core/ports"
)

// LedgerHandler exposes the progress ledger, the reward catalog and the
// achievement view.
type LedgerHandler struct {
	service ports.LedgerService
}

func NewLedgerHandler(service ports.LedgerService) *LedgerHandler {
	return &LedgerHandler{service: service}
}

// Get handles GET /v1/me/ledger.
//
// @Summary      Get the caller's progress ledger
// @Tags         ledger
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.LedgerSnapshot
// @Failure      401  {object}  map[string]string
// @Router       /v1/me/ledger [get]
func (h *LedgerHandler) Get(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	snapshot, err := h.service.GetLedger(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snapshot)
}

// Achievements handles GET /v1/me/achievements.
//
// @Summary      Evaluate all achievements for the caller
// @Tags         ledger
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   ports.AchievementStatus
// @Failure      401  {object}  map[string]string
// @Router       /v1/me/achievements [get]
func (h *LedgerHandler) Achievements(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	statuses, err := h.service.Achievements(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statuses)
}

// Rewards handles GET /v1/rewards, the static catalog.
//
// @Summary      List the reward catalog
// @Tags         ledger
// @Produce      json
// @Success      200  {array}  domain.RewardDefinition
// @Router       /v1/rewards [get]
func (h *LedgerHandler) Rewards(c echo.Context) error {
	return c.JSON(http.StatusOK, domain.Rewards)
}

// Redeem handles POST /v1/me/rewards/:reward_id/redeem.
//
// @Summary      Redeem a reward for points
// @Tags         ledger
// @Produce      json
// @Security     BearerAuth
// @Param        reward_id  path      string  true  "Reward id"
// @Success      200        {object}  ports.RedeemResult
// @Failure      401        {object}  map[string]string
// @Failure      404        {object}  map[string]string
// @Failure      409        {object}  map[string]string
// @Failure      422        {object}  map[string]string
// @Router       /v1/me/rewards/{reward_id}/redeem [post]
func (h *LedgerHandler) Redeem(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	result, err := h.service.Redeem(c.Request().Context(), userID, c.Param("reward_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}
