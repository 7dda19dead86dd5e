package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"ragestate/internal/domain/entity"
	"ragestate/internal/domain/repository"
	"ragestate/internal/domain/service"
	"ragestate/pkg/errors"
	"ragestate/pkg/logger"
)

const orderSaveMaxRetries = 3

type CheckoutUseCase struct {
	orderRepo      repository.OrderRepository
	promoRepo      repository.PromoRepository
	userRepo       repository.UserRepository
	paymentGateway service.PaymentGatewayService

	taxRate      float64
	shippingFlat float64
	minAmount    float64 // gateway-enforced minimum charge, USD
}

func NewCheckoutUseCase(
	orderRepo repository.OrderRepository,
	promoRepo repository.PromoRepository,
	userRepo repository.UserRepository,
	paymentGateway service.PaymentGatewayService,
	taxRate, shippingFlat, minAmount float64,
) *CheckoutUseCase {
	return &CheckoutUseCase{
		orderRepo:      orderRepo,
		promoRepo:      promoRepo,
		userRepo:       userRepo,
		paymentGateway: paymentGateway,
		taxRate:        taxRate,
		shippingFlat:   shippingFlat,
		minAmount:      minAmount,
	}
}

type CreateIntentRequest struct {
	CartItems []entity.CartItem
	Email     string
	PromoCode string
}

type CreateIntentResponse struct {
	ClientSecret string            `json:"client_secret"`
	IntentID     string            `json:"intent_id"`
	Totals       entity.CartTotals `json:"totals"`
}

// CreatePaymentIntent prices the cart and opens a payment intent. Totals
// below the gateway minimum are rejected up front without touching the
// gateway at all.
func (uc *CheckoutUseCase) CreatePaymentIntent(ctx context.Context, req CreateIntentRequest) (*CreateIntentResponse, error) {
	if len(req.CartItems) == 0 {
		return nil, errors.BadRequest("Cart is empty", nil)
	}

	promo := uc.resolvePromo(ctx, req.PromoCode)
	totals := entity.ApplyPromoDiscount(
		entity.ComputeCartTotals(req.CartItems, uc.taxRate, uc.shippingFlat), uc.taxRate, promo)

	if totals.Total < uc.minAmount {
		return nil, errors.BadRequest(
			fmt.Sprintf("Order total $%.2f is below the $%.2f card minimum", totals.Total, uc.minAmount), nil)
	}

	intent, err := uc.paymentGateway.CreatePaymentIntent(ctx, service.CreateIntentInput{
		AmountCents:  int64(math.Round(totals.Total * 100)),
		Currency:     "usd",
		ReceiptEmail: req.Email,
		Description:  "RAGESTATE order",
	})
	if err != nil {
		return nil, mapGatewayError(err, "")
	}

	return &CreateIntentResponse{
		ClientSecret: intent.ClientSecret,
		IntentID:     intent.ID,
		Totals:       totals,
	}, nil
}

type FinalizeOrderInput struct {
	PaymentIntentID  string
	FirebaseID       string
	UserEmail        string
	UserName         string
	CartItems        []entity.CartItem
	Address          *entity.Address
	AppliedPromoCode string
	IsGuest          bool
	GuestEmail       string
}

type FinalizeOrderResponse struct {
	OrderNumber      string `json:"order_number"`
	AlreadyFinalized bool   `json:"already_finalized"`
}

// FinalizeOrder turns a confirmed payment into exactly one purchase record.
// It may be called any number of times for the same payment intent; only
// the first call creates a document, every later call returns the stored
// order number.
func (uc *CheckoutUseCase) FinalizeOrder(ctx context.Context, input FinalizeOrderInput) (*FinalizeOrderResponse, error) {
	if input.PaymentIntentID == "" {
		return nil, errors.BadRequest("paymentIntentId is required", nil)
	}

	ref := truncateRef(input.PaymentIntentID)

	if err := validateIdentity(input); err != nil {
		// The charge already went through; this is a partial failure, not
		// a total one, and the user gets the support reference.
		return nil, errors.New("IDENTITY_MISSING",
			fmt.Sprintf("Payment succeeded but the order could not be attributed. Contact support with reference %s", ref),
			422, err)
	}

	intent, err := uc.paymentGateway.RetrievePaymentIntent(ctx, input.PaymentIntentID)
	if err != nil {
		return nil, mapGatewayError(err, ref)
	}
	if intent.Status != "succeeded" {
		return nil, errors.BadRequest(
			fmt.Sprintf("Payment is not complete (status: %s)", intent.Status), nil)
	}

	promo := uc.resolvePromo(ctx, input.AppliedPromoCode)
	totals := entity.ApplyPromoDiscount(
		entity.ComputeCartTotals(input.CartItems, uc.taxRate, uc.shippingFlat), uc.taxRate, promo)

	appliedCode := ""
	if promo != nil {
		appliedCode = promo.Code
	}

	purchase := &entity.Purchase{
		OrderNumber:      generateOrderNumber(),
		PaymentIntentID:  input.PaymentIntentID,
		CustomerID:       input.FirebaseID,
		GuestEmail:       input.GuestEmail,
		UserEmail:        input.UserEmail,
		UserName:         input.UserName,
		Items:            input.CartItems,
		Address:          input.Address,
		Subtotal:         totals.Subtotal,
		Discount:         totals.Discount,
		Tax:              totals.Tax,
		Shipping:         totals.Shipping,
		TotalAmount:      totals.Total,
		AppliedPromoCode: appliedCode,
		Status:           "confirmed",
	}

	stored, created, err := uc.finalizeWithRetry(ctx, purchase)
	if err != nil {
		logger.LogOrderError(input.PaymentIntentID, "finalize", err)
		return nil, errors.New("ORDER_SAVE_FAILED",
			fmt.Sprintf("Payment succeeded but the order could not be saved. Contact support with reference %s", ref),
			502, err)
	}

	if created {
		uc.applySideEffects(ctx, stored)
	} else {
		log.Printf("FinalizeOrder: purchase for intent %s already exists (order %s)", ref, stored.OrderNumber)
	}

	return &FinalizeOrderResponse{
		OrderNumber:      stored.OrderNumber,
		AlreadyFinalized: !created,
	}, nil
}

func (uc *CheckoutUseCase) finalizeWithRetry(ctx context.Context, purchase *entity.Purchase) (*entity.Purchase, bool, error) {
	var lastErr error
	for attempt := 1; attempt <= orderSaveMaxRetries; attempt++ {
		stored, created, err := uc.orderRepo.Finalize(ctx, purchase)
		if err == nil {
			return stored, created, nil
		}
		lastErr = err
		log.Printf("FinalizeOrder: save attempt %d/%d failed: %v", attempt, orderSaveMaxRetries, err)
	}
	return nil, false, lastErr
}

// applySideEffects runs the best-effort follow-ups to a freshly created
// purchase. None of them can fail the order: it is already durable.
func (uc *CheckoutUseCase) applySideEffects(ctx context.Context, purchase *entity.Purchase) {
	if purchase.CustomerID != "" {
		if err := uc.orderRepo.MirrorToCustomer(ctx, purchase.CustomerID, purchase); err != nil {
			logger.LogOrderError(purchase.PaymentIntentID, "mirror_to_customer", err)
		}
	}

	if purchase.AppliedPromoCode != "" {
		if err := uc.promoRepo.IncrementUsage(ctx, purchase.AppliedPromoCode); err != nil {
			// The order already recorded which code was used.
			logger.LogOrderError(purchase.PaymentIntentID, "promo_usage", err)
		}
	}
}

// resolvePromo looks up a client-supplied code. Unknown and deactivated
// codes never fail the operation, they are just not honored.
func (uc *CheckoutUseCase) resolvePromo(ctx context.Context, code string) *entity.PromoCode {
	if code == "" {
		return nil
	}

	promo, err := uc.promoRepo.GetByCode(ctx, code)
	if err != nil {
		log.Printf("Promo %q not honored: %v", code, err)
		return nil
	}
	if !promo.Active {
		log.Printf("Promo %q not honored: deactivated", code)
		return nil
	}
	return promo
}

func (uc *CheckoutUseCase) GetOrderByIntent(ctx context.Context, userID, paymentIntentID string) (*entity.Purchase, error) {
	purchase, err := uc.orderRepo.GetByPaymentIntentID(ctx, paymentIntentID)
	if err != nil {
		return nil, err
	}
	if purchase.CustomerID != userID {
		// Guest orders have no owner account and are not readable here.
		return nil, errors.Forbidden("Order belongs to a different account", nil)
	}
	return purchase, nil
}

// validateIdentity enforces guest/authenticated exclusivity: exactly one of
// {firebaseId set, isGuest=false} or {guestEmail set, isGuest=true}.
func validateIdentity(input FinalizeOrderInput) error {
	if input.IsGuest {
		if input.GuestEmail == "" {
			return fmt.Errorf("guest checkout requires guestEmail")
		}
		if input.FirebaseID != "" {
			return fmt.Errorf("guest checkout must not carry firebaseId")
		}
		return nil
	}

	if input.FirebaseID == "" {
		return fmt.Errorf("authenticated checkout requires firebaseId")
	}
	if input.GuestEmail != "" {
		return fmt.Errorf("authenticated checkout must not carry guestEmail")
	}
	return nil
}

func mapGatewayError(err error, ref string) error {
	var gw *service.GatewayError
	if !stderrors.As(err, &gw) {
		return errors.Internal("Payment gateway unavailable", err)
	}

	switch gw.Type {
	case service.GatewayErrCard:
		return errors.BadRequest(gw.Message, err)
	case service.GatewayErrValidation:
		return errors.BadRequest(gw.Message, err)
	case service.GatewayErrUnexpectedState:
		if ref != "" {
			return errors.PaymentFailed("Payment is in an unexpected state", ref, err)
		}
		return errors.BadRequest(gw.Message, err)
	default:
		return errors.Internal("Payment gateway error", err)
	}
}

func truncateRef(paymentIntentID string) string {
	if len(paymentIntentID) > 10 {
		return paymentIntentID[:10]
	}
	return paymentIntentID
}

func generateOrderNumber() string {
	suffix := ""
	b := make([]byte, 4)
	if _, err := rand.Read(b); err == nil {
		suffix = hex.EncodeToString(b)
	} else {
		suffix = strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	}
	return fmt.Sprintf("RS-%s-%s", time.Now().UTC().Format("20060102"), strings.ToUpper(suffix))
}
