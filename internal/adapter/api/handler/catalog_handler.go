package handler

import (
	"github.com/labstack/echo/v4"

	"ragestate/internal/usecase"
	"ragestate/pkg/response"
)

type CatalogHandler struct {
	catalogUseCase *usecase.CatalogUseCase
}

func NewCatalogHandler(catalogUseCase *usecase.CatalogUseCase) *CatalogHandler {
	return &CatalogHandler{
		catalogUseCase: catalogUseCase,
	}
}

// ListProducts returns the storefront catalog. An unreachable upstream
// yields an empty list, not an error.
func (h *CatalogHandler) ListProducts(c echo.Context) error {
	products, err := h.catalogUseCase.ListProducts(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, products)
}

func (h *CatalogHandler) GetProductBySlug(c echo.Context) error {
	product, err := h.catalogUseCase.GetProductBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, product)
}
