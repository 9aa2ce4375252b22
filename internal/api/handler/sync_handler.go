package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/greenloop/progress-engine/internal/core/domain"
	"github.com/greenloop/progress-engine/internal/core/ports"
	"github.com/greenloop/progress-engine/internal/core/service"
)

const (
	syncReadDeadline = 90 * time.Second
	syncReadLimit    = 4 * 1024
)

var syncUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// Origin policy is enforced at the HTTP layer.
		return true
	},
}

// SyncHandler streams per-user state snapshots over WebSocket. Each
// connection owns one subscription session covering every tracked path.
type SyncHandler struct {
	watcher ports.Watcher
	log     zerolog.Logger
}

func NewSyncHandler(watcher ports.Watcher, log zerolog.Logger) *SyncHandler {
	return &SyncHandler{watcher: watcher, log: log}
}

// syncMessage is the wire form of a sync event. A message carries either a
// snapshot payload or an error, never both.
type syncMessage struct {
	Path      ports.SyncPath        `json:"path"`
	Ledger    *ports.LedgerSnapshot `json:"ledger,omitempty"`
	Goals     []*domain.Goal        `json:"goals,omitempty"`
	Cart      *domain.Cart          `json:"cart,omitempty"`
	Favorites []*domain.Favorite    `json:"favorites,omitempty"`
	Error     string                `json:"error,omitempty"`
}

// Stream handles GET /v1/sync. The client authenticates with the usual
// bearer token or, for browsers, a token query parameter; the first message
// per path is the current snapshot, followed by one message per change.
//
// @Summary      Subscribe to live state snapshots
// @Tags         sync
// @Security     BearerAuth
// @Success      101
// @Failure      401  {object}  map[string]string
// @Router       /v1/sync [get]
func (h *SyncHandler) Stream(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	conn, err := syncUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the failure response.
		return nil
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	manager := service.NewSyncManager(h.watcher, h.log)
	defer manager.Close()

	events, err := manager.Subscribe(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("sync subscribe failed")
		_ = conn.WriteJSON(syncMessage{Error: "subscription failed"})
		return nil
	}

	// Reader loop in its own goroutine: the client sends nothing meaningful,
	// but reading is what detects disconnects and answers pings.
	go func() {
		defer cancel()
		conn.SetReadLimit(syncReadLimit)
		_ = conn.SetReadDeadline(time.Now().Add(syncReadDeadline))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(syncReadDeadline))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
			_ = conn.SetReadDeadline(time.Now().Add(syncReadDeadline))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := conn.WriteJSON(toSyncMessage(ev)); err != nil {
				h.log.Debug().Err(err).Str("user_id", userID).Msg("sync write failed, closing session")
				return nil
			}
		}
	}
}

func toSyncMessage(ev ports.SyncEvent) syncMessage {
	msg := syncMessage{Path: ev.Path}
	if ev.Err != nil {
		msg.Error = ev.Err.Error()
		return msg
	}
	switch ev.Path {
	case ports.PathLedger:
		msg.Ledger = ev.Ledger
	case ports.PathGoals:
		msg.Goals = ev.Goals
	case ports.PathCart:
		msg.Cart = ev.Cart
	case ports.PathFavorites:
		msg.Favorites = ev.Favorites
	}
	return msg
}
