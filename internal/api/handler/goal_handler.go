package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/greenloop/progress-engine/internal/core/ports"
)

// GoalHandler exposes the personal goal CRUD surface.
type GoalHandler struct {
	service ports.GoalService
}

func NewGoalHandler(service ports.GoalService) *GoalHandler {
	return &GoalHandler{service: service}
}

type createGoalRequest struct {
	Title       string    `json:"title" validate:"required,min=1,max=120"`
	Description string    `json:"description" validate:"max=1000"`
	Category    string    `json:"category" validate:"required,oneof=energy carbon water waste transport food"`
	Priority    string    `json:"priority" validate:"required,oneof=low medium high"`
	Target      float64   `json:"target" validate:"required,gt=0"`
	Deadline    time.Time `json:"deadline" validate:"required"`
	Tags        []string  `json:"tags" validate:"max=10,dive,min=1,max=40"`
}

type updateProgressRequest struct {
	Current float64 `json:"current"`
}

// Create handles POST /v1/goals.
//
// @Summary      Create a goal
// @Tags         goals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createGoalRequest  true  "Goal details"
// @Success      201   {object}  domain.Goal
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/goals [post]
func (h *GoalHandler) Create(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req createGoalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	goal, err := h.service.Create(c.Request().Context(), userID, ports.CreateGoalInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
		Target:      req.Target,
		Deadline:    req.Deadline,
		Tags:        req.Tags,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, goal)
}

// List handles GET /v1/goals with optional filter and sort query params.
//
// @Summary      List the caller's goals
// @Tags         goals
// @Produce      json
// @Security     BearerAuth
// @Param        category  query     string  false  "Filter by category"
// @Param        priority  query     string  false  "Filter by priority"
// @Param        search    query     string  false  "Substring search over title, description and tags"
// @Param        sort      query     string  false  "deadline | progress | priority | created"
// @Success      200       {array}   domain.Goal
// @Failure      401       {object}  map[string]string
// @Router       /v1/goals [get]
func (h *GoalHandler) List(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	filter := ports.GoalFilter{
		Category: c.QueryParam("category"),
		Priority: c.QueryParam("priority"),
		Search:   c.QueryParam("search"),
	}
	sort := ports.GoalSort(c.QueryParam("sort"))
	if sort == "" {
		sort = ports.SortByCreated
	}

	goals, err := h.service.List(c.Request().Context(), userID, filter, sort)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, goals)
}

// UpdateProgress handles PATCH /v1/goals/:id/progress.
//
// @Summary      Update a goal's current progress
// @Tags         goals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Goal id"
// @Param        body  body      updateProgressRequest  true  "New current value"
// @Success      200   {object}  domain.Goal
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/goals/{id}/progress [patch]
func (h *GoalHandler) UpdateProgress(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req updateProgressRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	goal, err := h.service.UpdateProgress(c.Request().Context(), userID, c.Param("id"), req.Current)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, goal)
}

// Delete handles DELETE /v1/goals/:id.
//
// @Summary      Delete a goal
// @Tags         goals
// @Security     BearerAuth
// @Param        id  path  string  true  "Goal id"
// @Success      204
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/goals/{id} [delete]
func (h *GoalHandler) Delete(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), userID, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
