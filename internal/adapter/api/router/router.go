package router

import (
	"github.com/labstack/echo/v4"

	"ragestate/internal/adapter/api/handler"
	"ragestate/internal/adapter/api/middleware"
)

type Handlers struct {
	Chat      *handler.ChatHandler
	Feed      *handler.FeedHandler
	Checkout  *handler.CheckoutHandler
	Catalog   *handler.CatalogHandler
	Health    *handler.HealthHandler
	WebSocket *handler.WebSocketHandler
}

func Setup(e *echo.Echo, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	SetupChatRouter(e, h.Chat, authMiddleware)
	SetupFeedRouter(e, h.Feed, authMiddleware)
	SetupCheckoutRouter(e, h.Checkout, authMiddleware)
	SetupCatalogRouter(e, h.Catalog)
	SetupHealthRouter(e, h.Health)
	SetupWebSocketRouter(e, h.WebSocket)
}
