package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"ragestate/internal/domain/entity"
	"ragestate/internal/domain/repository"
	"ragestate/pkg/errors"
)

type firestoreOrderRepository struct {
	client *firestore.Client
}

func NewFirestoreOrderRepository(client *firestore.Client) repository.OrderRepository {
	return &firestoreOrderRepository{
		client: client,
	}
}

// Finalize creates the purchase document keyed by the payment intent id
// inside a transaction: the read and the conditional write happen
// atomically, so two concurrent finalize calls for the same intent agree on
// a single purchase document.
func (r *firestoreOrderRepository) Finalize(ctx context.Context, purchase *entity.Purchase) (*entity.Purchase, bool, error) {
	ref := r.client.Collection("purchases").Doc(purchase.PaymentIntentID)

	var existing *entity.Purchase
	created := false

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err == nil {
			var stored entity.Purchase
			if err := doc.DataTo(&stored); err != nil {
				return err
			}
			existing = &stored
			return nil
		}
		if status.Code(err) != codes.NotFound {
			return err
		}

		purchase.CreatedAt = time.Now()
		created = true
		return tx.Set(ref, purchase)
	})
	if err != nil {
		return nil, false, errors.Internal("Failed to finalize purchase", err)
	}

	if existing != nil {
		return existing, false, nil
	}
	return purchase, created, nil
}

func (r *firestoreOrderRepository) GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*entity.Purchase, error) {
	doc, err := r.client.Collection("purchases").Doc(paymentIntentID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Purchase", err)
		}
		return nil, errors.Internal("Failed to get purchase", err)
	}

	var purchase entity.Purchase
	if err := doc.DataTo(&purchase); err != nil {
		return nil, errors.Internal("Failed to parse purchase data", err)
	}

	return &purchase, nil
}

func (r *firestoreOrderRepository) MirrorToCustomer(ctx context.Context, customerID string, purchase *entity.Purchase) error {
	_, err := r.client.Collection("customers").Doc(customerID).Collection("purchases").Doc(purchase.PaymentIntentID).Set(ctx, purchase)
	if err != nil {
		return errors.Internal("Failed to mirror purchase to customer", err)
	}

	return nil
}
