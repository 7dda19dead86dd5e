package usecase

import (
	"context"

	"ragestate/internal/domain/entity"
	"ragestate/internal/domain/service"
	"ragestate/pkg/errors"
)

type CatalogUseCase struct {
	catalog *service.ShopifyCatalogService
}

func NewCatalogUseCase(catalog *service.ShopifyCatalogService) *CatalogUseCase {
	return &CatalogUseCase{
		catalog: catalog,
	}
}

func (uc *CatalogUseCase) ListProducts(ctx context.Context) ([]*entity.Product, error) {
	return uc.catalog.FetchProducts(ctx)
}

func (uc *CatalogUseCase) GetProductBySlug(ctx context.Context, slug string) (*entity.Product, error) {
	product, err := uc.catalog.FetchProductBySlug(ctx, slug)
	if err != nil {
		return nil, errors.NotFound("Product", err)
	}
	return product, nil
}
