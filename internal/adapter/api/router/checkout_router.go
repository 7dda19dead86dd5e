package router

import (
	"github.com/labstack/echo/v4"

	"ragestate/internal/adapter/api/handler"
	"ragestate/internal/adapter/api/middleware"
)

// SetupCheckoutRouter sets up checkout routes. They use optional auth so
// guests can buy; an authenticated uid, when present, attributes the order.
func SetupCheckoutRouter(e *echo.Echo, checkoutHandler *handler.CheckoutHandler, authMiddleware *middleware.AuthMiddleware) {
	paymentGroup := e.Group("/v1/payments")
	paymentGroup.Use(authMiddleware.OptionalAuthenticate)

	paymentGroup.POST("/create-intent", checkoutHandler.CreatePaymentIntent)
	paymentGroup.POST("/finalize-order", checkoutHandler.FinalizeOrder)

	orderGroup := e.Group("/v1/orders")
	orderGroup.Use(authMiddleware.Authenticate)
	orderGroup.GET("/:intentId", checkoutHandler.GetOrder)
}
