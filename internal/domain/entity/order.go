package entity

import (
	"math"
	"time"
)

type CartItem struct {
	ProductID     string  `json:"product_id" firestore:"productId"`
	Title         string  `json:"title" firestore:"title"`
	SelectedColor string  `json:"selected_color,omitempty" firestore:"selectedColor,omitempty"`
	SelectedSize  string  `json:"selected_size,omitempty" firestore:"selectedSize,omitempty"`
	Quantity      int     `json:"quantity" firestore:"quantity"`
	Price         float64 `json:"price" firestore:"price"`
}

type Address struct {
	Name       string `json:"name,omitempty" firestore:"name,omitempty"`
	Line1      string `json:"line1" firestore:"line1"`
	Line2      string `json:"line2,omitempty" firestore:"line2,omitempty"`
	City       string `json:"city" firestore:"city"`
	State      string `json:"state" firestore:"state"`
	PostalCode string `json:"postal_code" firestore:"postalCode"`
	Country    string `json:"country" firestore:"country"`
}

// Purchase is created exactly once per successful payment intent; the
// payment intent id is the idempotency boundary.
type Purchase struct {
	OrderNumber      string     `json:"order_number" firestore:"orderNumber"`
	PaymentIntentID  string     `json:"payment_intent_id" firestore:"paymentIntentId"`
	CustomerID       string     `json:"customer_id,omitempty" firestore:"customerId,omitempty"`
	GuestEmail       string     `json:"guest_email,omitempty" firestore:"guestEmail,omitempty"`
	UserEmail        string     `json:"user_email,omitempty" firestore:"userEmail,omitempty"`
	UserName         string     `json:"user_name,omitempty" firestore:"userName,omitempty"`
	Items            []CartItem `json:"items" firestore:"items"`
	Address          *Address   `json:"address,omitempty" firestore:"address,omitempty"`
	Subtotal         float64    `json:"subtotal" firestore:"subtotal"`
	Tax              float64    `json:"tax" firestore:"tax"`
	Discount         float64    `json:"discount,omitempty" firestore:"discount,omitempty"`
	Shipping         float64    `json:"shipping" firestore:"shipping"`
	TotalAmount      float64    `json:"total_amount" firestore:"totalAmount"`
	AppliedPromoCode string     `json:"applied_promo_code,omitempty" firestore:"appliedPromoCode,omitempty"`
	Status           string     `json:"status" firestore:"status"` // "confirmed"
	CreatedAt        time.Time  `json:"created_at" firestore:"createdAt"`
}

type PromoCode struct {
	Code            string    `json:"code" firestore:"code"`
	DiscountPercent float64   `json:"discount_percent" firestore:"discountPercent"`
	UsageCount      int64     `json:"usage_count" firestore:"usageCount"`
	Active          bool      `json:"active" firestore:"active"`
	CreatedAt       time.Time `json:"created_at" firestore:"createdAt"`
}

// CartTotals holds the derived money amounts for a cart.
type CartTotals struct {
	Subtotal float64
	Discount float64
	Tax      float64
	Shipping float64
	Total    float64
}

// ComputeCartTotals derives subtotal, tax and total for a cart. Tax is
// rounded to cents before it is added so the total matches what the user
// was shown line by line.
func ComputeCartTotals(items []CartItem, taxRate, shipping float64) CartTotals {
	var subtotal float64
	for _, item := range items {
		subtotal += item.Price * float64(item.Quantity)
	}

	subtotal = roundCents(subtotal)
	tax := roundCents(subtotal * taxRate)

	return CartTotals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    roundCents(subtotal + tax + shipping),
	}
}

// ApplyPromoDiscount reduces the subtotal by the promo percentage and
// re-derives tax and total. Tax is charged on the discounted amount. A nil
// promo returns the totals unchanged.
func ApplyPromoDiscount(t CartTotals, taxRate float64, promo *PromoCode) CartTotals {
	if promo == nil || promo.DiscountPercent <= 0 {
		return t
	}

	discount := roundCents(t.Subtotal * promo.DiscountPercent / 100)
	discounted := roundCents(t.Subtotal - discount)
	tax := roundCents(discounted * taxRate)

	return CartTotals{
		Subtotal: t.Subtotal,
		Discount: discount,
		Tax:      tax,
		Shipping: t.Shipping,
		Total:    roundCents(discounted + tax + t.Shipping),
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
