package repository

import (
	"context"

	"ragestate/internal/domain/entity"
)

type PromoRepository interface {
	GetByCode(ctx context.Context, code string) (*entity.PromoCode, error)
	IncrementUsage(ctx context.Context, code string) error
}
