package repository

import (
	"context"

	"ragestate/internal/domain/entity"
)

type OrderRepository interface {
	// Finalize creates the purchase document keyed by its payment intent id
	// inside a transaction. If a purchase for that intent already exists it
	// is returned unchanged and created is false: at most one purchase per
	// payment intent, no matter how many times finalize is called.
	Finalize(ctx context.Context, purchase *entity.Purchase) (*entity.Purchase, bool, error)

	GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*entity.Purchase, error)

	// MirrorToCustomer copies the purchase under customers/{uid}/purchases
	// so account pages read their own subtree. Best-effort from the caller's
	// point of view.
	MirrorToCustomer(ctx context.Context, customerID string, purchase *entity.Purchase) error
}
