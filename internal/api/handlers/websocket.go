package handlers

import (
	"net/http"

	"github.com/dom/account-service/internal/api/middleware"
	"github.com/dom/account-service/internal/api/response"
	"github.com/dom/account-service/internal/auth"
	"github.com/dom/account-service/internal/domain"
	"github.com/dom/account-service/internal/logging"
	"github.com/dom/account-service/internal/websocket"
	ws "github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub      *websocket.Hub
	verifier *auth.TokenVerifier
	upgrader ws.Upgrader
	log      logging.Logger
}

// NewWebSocketHandler accepts connections from any origin unless
// allowedOrigin names one.
func NewWebSocketHandler(hub *websocket.Hub, verifier *auth.TokenVerifier, allowedOrigin string, log logging.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:      hub,
		verifier: verifier,
		upgrader: ws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" || allowedOrigin == "*" {
					return true
				}
				origin := r.Header.Get("Origin")
				return origin == "" || origin == allowedOrigin
			},
		},
		log: log,
	}
}

// Handle upgrades to the session events stream. Browsers cannot set headers
// on a websocket handshake, so the token may also come from ?token=.
func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = middleware.AccessToken(r)
	}
	if token == "" {
		response.Error(w, r, h.log, domain.UnauthorizedError("Unauthorized request"))
		return
	}

	claims, err := h.verifier.VerifyAccessToken(token)
	if err != nil {
		response.Error(w, r, h.log, domain.UnauthorizedError("Invalid Access Token").Wrap(err))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	client := websocket.NewClient(h.hub, conn, claims.UserUUID())
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
