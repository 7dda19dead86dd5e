package handler

import (
	"log"
	"net/http"
	"strings"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"ragestate/internal/infrastructure/firebase"
	ws "ragestate/internal/infrastructure/websocket"
	"ragestate/internal/usecase"
	"ragestate/pkg/errors"
)

type WebSocketHandler struct {
	wsManager   *ws.Manager
	authClient  *firebase.AuthClient
	chatUseCase *usecase.ChatUseCase
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: restrict to the web app origin once it is final
	},
}

func NewWebSocketHandler(wsManager *ws.Manager, authClient *firebase.AuthClient, chatUseCase *usecase.ChatUseCase) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:   wsManager,
		authClient:  authClient,
		chatUseCase: chatUseCase,
	}
}

// HandleWebSocket upgrades the connection after verifying the Firebase ID
// token. Browsers cannot set headers on WebSocket requests, so the token is
// also accepted as a query parameter.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	idToken := c.QueryParam("token")
	if idToken == "" {
		authHeader := c.Request().Header.Get("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			idToken = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}
	if idToken == "" {
		return errors.Unauthorized("Authentication required", nil)
	}

	userID, err := h.authClient.VerifyToken(c.Request().Context(), idToken)
	if err != nil {
		return err
	}

	// An open conversation subscribes to its room for live messages.
	chatID := c.QueryParam("chat_id")
	if chatID != "" {
		if err := h.chatUseCase.JoinChatRoom(c.Request().Context(), userID, chatID); err != nil {
			return err
		}
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return errors.Internal("Failed to upgrade connection", err)
	}

	client := &ws.Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
	}

	h.wsManager.Register <- client
	log.Printf("WebSocket connected: %s", userID)

	go client.WritePump()

	// ReadPump blocks until the peer disconnects, keeping the handler
	// goroutine alive for the lifetime of the connection.
	client.ReadPump(h.wsManager)

	if chatID != "" {
		h.chatUseCase.LeaveChatRoom(userID, chatID)
	}

	return nil
}
