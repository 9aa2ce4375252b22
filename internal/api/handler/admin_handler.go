package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/greenloop/progress-engine/internal/core/ports"
)

// AdminHandler exposes operator-only maintenance endpoints.
type AdminHandler struct {
	ledgers ports.LedgerService
	log     zerolog.Logger
}

func NewAdminHandler(ledgers ports.LedgerService, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{ledgers: ledgers, log: log}
}

// ResetLedger handles POST /v1/admin/users/:user_id/ledger/reset. This is the
// only way counters go down; regular operations never decrement anything
// except a redeem's point deduction.
//
// @Summary      Reset a user's progress ledger to zero
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        user_id  path      string  true  "User id"
// @Success      200      {object}  ports.LedgerSnapshot
// @Failure      401      {object}  map[string]string
// @Failure      403      {object}  map[string]string
// @Router       /v1/admin/users/{user_id}/ledger/reset [post]
func (h *AdminHandler) ResetLedger(c echo.Context) error {
	adminID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	targetID := c.Param("user_id")
	if targetID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	if err := h.ledgers.ResetLedger(c.Request().Context(), targetID); err != nil {
		return err
	}
	snapshot, err := h.ledgers.GetLedger(c.Request().Context(), targetID)
	if err != nil {
		return err
	}

	h.log.Info().
		Str("admin_id", adminID).
		Str("user_id", targetID).
		Msg("ledger reset by operator")

	return c.JSON(http.StatusOK, snapshot)
}
