package handler

import (
	"github.com/labstack/echo/v4"

	"ragestate/internal/domain/entity"
	"ragestate/internal/usecase"
	"ragestate/pkg/response"
)

type CheckoutHandler struct {
	checkoutUseCase *usecase.CheckoutUseCase
}

func NewCheckoutHandler(checkoutUseCase *usecase.CheckoutUseCase) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutUseCase: checkoutUseCase,
	}
}

type cartItemRequest struct {
	ProductID string  `json:"product_id" validate:"required"`
	Title     string  `json:"title"`
	Price     float64 `json:"price" validate:"required,gt=0"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
	Size      string  `json:"size,omitempty"`
	Color     string  `json:"color,omitempty"`
}

type createIntentRequest struct {
	CartItems []cartItemRequest `json:"cart_items" validate:"required,min=1,dive"`
	Email     string            `json:"email" validate:"omitempty,email"`
	PromoCode string            `json:"promo_code,omitempty"`
}

type addressRequest struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type finalizeOrderRequest struct {
	PaymentIntentID  string            `json:"payment_intent_id" validate:"required"`
	UserEmail        string            `json:"user_email" validate:"omitempty,email"`
	UserName         string            `json:"user_name"`
	CartItems        []cartItemRequest `json:"cart_items" validate:"required,min=1,dive"`
	Address          *addressRequest   `json:"address"`
	AppliedPromoCode string            `json:"applied_promo_code,omitempty"`
	IsGuest          bool              `json:"is_guest"`
	GuestEmail       string            `json:"guest_email" validate:"omitempty,email"`
}

func toCartItems(items []cartItemRequest) []entity.CartItem {
	out := make([]entity.CartItem, 0, len(items))
	for _, item := range items {
		out = append(out, entity.CartItem{
			ProductID:     item.ProductID,
			Title:         item.Title,
			Price:         item.Price,
			Quantity:      item.Quantity,
			SelectedSize:  item.Size,
			SelectedColor: item.Color,
		})
	}
	return out
}

// CreatePaymentIntent prices the cart server-side and opens a payment intent.
// Works for both authenticated and guest callers.
func (h *CheckoutHandler) CreatePaymentIntent(c echo.Context) error {
	var req createIntentRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	result, err := h.checkoutUseCase.CreatePaymentIntent(c.Request().Context(), usecase.CreateIntentRequest{
		CartItems: toCartItems(req.CartItems),
		Email:     req.Email,
		PromoCode: req.PromoCode,
	})

	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

// FinalizeOrder records the purchase after the gateway confirms payment.
// The authenticated uid, when present, wins over anything in the body.
func (h *CheckoutHandler) FinalizeOrder(c echo.Context) error {
	var req finalizeOrderRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	firebaseID := ""
	if uid, ok := c.Get("uid").(string); ok {
		firebaseID = uid
	}

	input := usecase.FinalizeOrderInput{
		PaymentIntentID:  req.PaymentIntentID,
		FirebaseID:       firebaseID,
		UserEmail:        req.UserEmail,
		UserName:         req.UserName,
		CartItems:        toCartItems(req.CartItems),
		AppliedPromoCode: req.AppliedPromoCode,
		IsGuest:          req.IsGuest,
		GuestEmail:       req.GuestEmail,
	}
	if firebaseID != "" {
		input.IsGuest = false
	}
	if req.Address != nil {
		input.Address = &entity.Address{
			Name:       req.Address.Name,
			Line1:      req.Address.Line1,
			Line2:      req.Address.Line2,
			City:       req.Address.City,
			State:      req.Address.State,
			PostalCode: req.Address.PostalCode,
			Country:    req.Address.Country,
		}
	}

	result, err := h.checkoutUseCase.FinalizeOrder(c.Request().Context(), input)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, result)
}

// GetOrder looks up one of the caller's finalized purchases by its payment
// intent id.
func (h *CheckoutHandler) GetOrder(c echo.Context) error {
	userID := c.Get("uid").(string)

	purchase, err := h.checkoutUseCase.GetOrderByIntent(c.Request().Context(), userID, c.Param("intentId"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, purchase)
}
