package router

import (
	"github.com/labstack/echo/v4"

	"ragestate/internal/adapter/api/handler"
)

func SetupCatalogRouter(e *echo.Echo, catalogHandler *handler.CatalogHandler) {
	catalogGroup := e.Group("/v1/catalog")
	catalogGroup.GET("/products", catalogHandler.ListProducts)
	catalogGroup.GET("/products/:slug", catalogHandler.GetProductBySlug)
}
