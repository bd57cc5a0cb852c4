package handlers

import (
	"net/http"

	"github.com/arafatr/linkup/backend/internal/middleware"
	"github.com/arafatr/linkup/backend/internal/ws"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WSHandler upgrades authenticated connections onto the hub
type WSHandler struct {
	hub *ws.Hub
}

// NewWSHandler creates a new WSHandler
func NewWSHandler(hub *ws.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// RegisterWSRoutes registers the WebSocket endpoint
func (h *WSHandler) RegisterWSRoutes(g *echo.Group) {
	g.GET("/ws", h.Connect)
}

// Connect upgrades the request and starts the client pumps. Authentication
// happened in the middleware via the token query parameter.
func (h *WSHandler) Connect(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "WebSocket upgrade failed")
	}

	client := ws.NewClient(h.hub, conn, middleware.UserID(c).Hex())
	client.Start()
	return nil
}
