package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"ragestate/internal/domain/entity"
	"ragestate/internal/domain/repository"
	"ragestate/pkg/errors"
)

type firestorePromoRepository struct {
	client *firestore.Client
}

func NewFirestorePromoRepository(client *firestore.Client) repository.PromoRepository {
	return &firestorePromoRepository{
		client: client,
	}
}

func (r *firestorePromoRepository) GetByCode(ctx context.Context, code string) (*entity.PromoCode, error) {
	doc, err := r.client.Collection("promoterCodes").Doc(code).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Promo code", err)
		}
		return nil, errors.Internal("Failed to get promo code", err)
	}

	var promo entity.PromoCode
	if err := doc.DataTo(&promo); err != nil {
		return nil, errors.Internal("Failed to parse promo code data", err)
	}

	return &promo, nil
}

func (r *firestorePromoRepository) IncrementUsage(ctx context.Context, code string) error {
	_, err := r.client.Collection("promoterCodes").Doc(code).Update(ctx, []firestore.Update{
		{Path: "usageCount", Value: firestore.Increment(1)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Promo code", err)
		}
		return errors.Internal("Failed to increment promo usage", err)
	}

	return nil
}
