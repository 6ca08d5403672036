package handlers

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/Dosada05/hackathon-ops/broadcast"
	"github.com/Dosada05/hackathon-ops/models"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var liveRooms = []string{models.RoomTeams, models.RoomArrivals}

type WebSocketHandler struct {
	hub      *broadcast.Hub
	upgrader websocket.Upgrader
}

// NewWebSocketHandler accepts upgrades from allowedOrigins; "*" or an empty list allows any origin.
func NewWebSocketHandler(hub *broadcast.Hub, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*") {
					return true
				}
				return slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// ServeWs подписывает клиента на комнату /ws/{room}.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	room := chi.URLParam(r, "room")
	if !slices.Contains(liveRooms, room) {
		notFoundResponse(w, r, "unknown live room")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже отправил HTTP-ошибку клиенту.
		slog.Warn("websocket upgrade failed", slog.String("room", room), slog.Any("error", err))
		return
	}

	client := broadcast.NewClient(h.hub, conn, room)
	if !h.hub.Attach(client) {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
	}
}
