package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/lowcard/uno-tracker/live"
	"github.com/lowcard/uno-tracker/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO(routes): restrict to the frontend origin before exposing this
		// outside the local network.
		return true
	},
}

type WebSocketHandler struct {
	hub         *live.Hub
	gameService services.GameService
}

func NewWebSocketHandler(hub *live.Hub, gameService services.GameService) *WebSocketHandler {
	return &WebSocketHandler{
		hub:         hub,
		gameService: gameService,
	}
}

// ServeWs upgrades the connection and subscribes the client to the game's
// room. Clients connect to /ws/games/{gameID}.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	gameID, err := getUUIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	// Refuse rooms for games that do not exist.
	if _, err := h.gameService.GetGameDetails(r.Context(), gameID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		slog.Warn("failed to upgrade websocket connection", slog.String("game_id", gameID), slog.Any("error", err))
		return
	}

	client := &live.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: live.GameRoom(gameID),
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
