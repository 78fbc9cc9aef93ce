package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/matchcenter/server/scoreboard"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The bus carries no credentials and only public match state, so any
		// origin may connect. Tighten here if that ever changes.
		return true
	},
}

type WebSocketHandler struct {
	hub    *scoreboard.Hub
	logger *slog.Logger
}

func NewWebSocketHandler(hub *scoreboard.Hub, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, logger: logger}
}

// ServeWS upgrades the connection and registers the client on the fan-out
// bus. There is no per-match subscribe handshake: every client receives
// every message and filters by match ID itself.
func (h *WebSocketHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error to the client.
		h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := scoreboard.NewClient(h.hub, conn)
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
