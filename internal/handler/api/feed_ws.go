package api

import (
	"net/http"

	"LovePulse/internal/service/feed"
	xlogger "LovePulse/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var feedUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// FeedHandler upgrades clients onto the live insider feed.
type FeedHandler struct {
	logger *xlogger.Logger
	hub    *feed.Hub
}

// NewFeedHandler creates the handler.
func NewFeedHandler(logger *xlogger.Logger, hub *feed.Hub) *FeedHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &FeedHandler{logger: logger, hub: hub}
}

// RegisterRoutes registers the live feed route.
func (h *FeedHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/feed/live", h.Live)
}

// Live upgrades the connection and hands it to the hub.
func (h *FeedHandler) Live(c echo.Context) error {
	conn, err := feedUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("feed upgrade failed", xlogger.Error(err))
		return nil
	}
	h.hub.Register(conn)
	return nil
}
