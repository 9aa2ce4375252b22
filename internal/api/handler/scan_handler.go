package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/greenloop/progress-engine/internal/core/domain"
)

// ScanDispatcher is the interface the handler uses to enqueue scan events.
type ScanDispatcher interface {
	Enqueue(event domain.ScanEvent)
	EnqueueBatch(events []domain.ScanEvent)
}

// ScanHandler handles product scan ingestion.
type ScanHandler struct {
	dispatcher ScanDispatcher
}

// NewScanHandler creates a ScanHandler backed by the given dispatcher.
func NewScanHandler(dispatcher ScanDispatcher) *ScanHandler {
	return &ScanHandler{dispatcher: dispatcher}
}

type scanRequest struct {
	Barcode     string    `json:"barcode"      validate:"required"`
	ProductName string    `json:"product_name" validate:"required"`
	CO2SavedKg  float64   `json:"co2_saved_kg" validate:"gte=0"`
	Source      string    `json:"source"       validate:"required,oneof=mobile web kiosk"`
	Timestamp   time.Time `json:"timestamp"    validate:"required"`
}

type acceptedResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

// Receive handles POST /v1/scans. It enqueues a single scan and returns 202.
// Points and achievement unlocks land asynchronously; clients observe them
// through the sync stream rather than this response.
//
// @Summary      Ingest a single product scan
// @Tags         scans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      scanRequest  true  "Product scan"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/scans [post]
func (h *ScanHandler) Receive(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req scanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	h.dispatcher.Enqueue(toScanEvent(userID, req))
	return c.JSON(http.StatusAccepted, acceptedResponse{Message: "scan accepted"})
}

// ReceiveBatch handles POST /v1/scans/batch. It enqueues a batch of scans
// and returns 202. All scans in the batch belong to the caller.
//
// @Summary      Ingest a batch of product scans
// @Tags         scans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      []scanRequest  true  "Array of product scans"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/scans/batch [post]
func (h *ScanHandler) ReceiveBatch(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var reqs []scanRequest
	if err := c.Bind(&reqs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if len(reqs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "batch cannot be empty")
	}

	events := make([]domain.ScanEvent, 0, len(reqs))
	for i, req := range reqs {
		if err := c.Validate(&req); err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity,
				fmt.Sprintf("scan[%d]: %s", i, err.Error()))
		}
		events = append(events, toScanEvent(userID, req))
	}

	h.dispatcher.EnqueueBatch(events)
	return c.JSON(http.StatusAccepted, acceptedResponse{
		Message: "scans accepted",
		Count:   len(events),
	})
}

// toScanEvent maps the HTTP request to the domain event. The user id comes
// from the token, never from the payload.
func toScanEvent(userID string, r scanRequest) domain.ScanEvent {
	return domain.ScanEvent{
		UserID:      userID,
		Barcode:     r.Barcode,
		ProductName: r.ProductName,
		CO2SavedKg:  r.CO2SavedKg,
		Source:      r.Source,
		Timestamp:   r.Timestamp,
	}
}
