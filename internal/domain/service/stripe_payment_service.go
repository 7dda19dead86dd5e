package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// StripePaymentService talks to the Stripe REST API directly. Requests are
// form-encoded with the secret key as a Bearer token, the way the API
// expects them.
type StripePaymentService struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

func NewStripePaymentService(secretKey string) *StripePaymentService {
	return &StripePaymentService{
		secretKey: secretKey,
		baseURL:   "https://api.stripe.com/v1",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type stripeErrorEnvelope struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *StripePaymentService) CreatePaymentIntent(ctx context.Context, input CreateIntentInput) (*PaymentIntent, error) {
	log.Printf("Creating payment intent: amount=%d %s", input.AmountCents, input.Currency)

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(input.AmountCents, 10))
	form.Set("currency", input.Currency)
	form.Set("automatic_payment_methods[enabled]", "true")
	if input.ReceiptEmail != "" {
		form.Set("receipt_email", input.ReceiptEmail)
	}
	if input.Description != "" {
		form.Set("description", input.Description)
	}
	for k, v := range input.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	return s.doIntentRequest(ctx, http.MethodPost, "/payment_intents", strings.NewReader(form.Encode()))
}

func (s *StripePaymentService) RetrievePaymentIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	return s.doIntentRequest(ctx, http.MethodGet, "/payment_intents/"+id, nil)
}

func (s *StripePaymentService) doIntentRequest(ctx context.Context, method, path string, body io.Reader) (*PaymentIntent, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		var envelope stripeErrorEnvelope
		if err := json.Unmarshal(respBody, &envelope); err == nil && envelope.Error.Message != "" {
			log.Printf("Stripe error on %s %s: %s (%s)", method, path, envelope.Error.Message, envelope.Error.Type)
			return nil, &GatewayError{
				Type:    envelope.Error.Type,
				Code:    envelope.Error.Code,
				Message: envelope.Error.Message,
			}
		}
		return nil, fmt.Errorf("stripe: unexpected status %d", resp.StatusCode)
	}

	var intent PaymentIntent
	if err := json.Unmarshal(respBody, &intent); err != nil {
		return nil, err
	}

	return &intent, nil
}
