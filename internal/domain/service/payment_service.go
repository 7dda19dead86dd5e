package service

import "context"

// Gateway error categories that drive the finalizer's recovery branches.
const (
	GatewayErrCard            = "card_error"
	GatewayErrValidation      = "validation_error"
	GatewayErrUnexpectedState = "payment_intent_unexpected_state"
)

type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"` // "requires_payment_method", "requires_action", "processing", "succeeded", "canceled"
	Amount       int64  `json:"amount"` // smallest currency unit
	Currency     string `json:"currency"`
	ReceiptEmail string `json:"receipt_email,omitempty"`
}

type GatewayError struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func (e *GatewayError) Error() string {
	return e.Type + ": " + e.Message
}

type CreateIntentInput struct {
	AmountCents  int64
	Currency     string
	ReceiptEmail string
	Description  string
	Metadata     map[string]string
}

type PaymentGatewayService interface {
	CreatePaymentIntent(ctx context.Context, input CreateIntentInput) (*PaymentIntent, error)
	RetrievePaymentIntent(ctx context.Context, id string) (*PaymentIntent, error)
}
