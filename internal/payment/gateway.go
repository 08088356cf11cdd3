package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"velobook/internal/metrics"
)

// GatewayError is a decline or failure reported by the card processor. Code
// carries the processor's raw reason; mapping to client-facing codes happens
// in the service layer.
type GatewayError struct {
	Code   string
	Detail string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway error %s: %s", e.Code, e.Detail)
}

type GatewayPayment struct {
	ID     string
	Status string
}

type GatewayRefund struct {
	ID     string
	Status string
}

// Gateway is the external card processor. Calls carry a bounded timeout and a
// per-attempt idempotency key so a client retry of a timed-out request never
// charges twice.
type Gateway interface {
	CreatePayment(ctx context.Context, amountMinorUnits int64, currency, sourceToken, referenceID string) (*GatewayPayment, error)
	RefundPayment(ctx context.Context, amountMinorUnits int64, currency, gatewayPaymentID, reason string) (*GatewayRefund, error)
}

type squareGateway struct {
	client      *http.Client
	baseURL     string
	accessToken string
	locationID  string
}

func NewSquareGateway(baseURL, accessToken, locationID string, timeout time.Duration) Gateway {
	return &squareGateway{
		client:      &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		accessToken: accessToken,
		locationID:  locationID,
	}
}

type moneyPayload struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type createPaymentPayload struct {
	IdempotencyKey string       `json:"idempotency_key"`
	SourceID       string       `json:"source_id"`
	AmountMoney    moneyPayload `json:"amount_money"`
	LocationID     string       `json:"location_id,omitempty"`
	ReferenceID    string       `json:"reference_id,omitempty"`
}

type refundPayload struct {
	IdempotencyKey string       `json:"idempotency_key"`
	PaymentID      string       `json:"payment_id"`
	AmountMoney    moneyPayload `json:"amount_money"`
	Reason         string       `json:"reason,omitempty"`
}

type apiError struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

type apiResponse struct {
	Payment *struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"payment"`
	Refund *struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"refund"`
	Errors []apiError `json:"errors"`
}

func (g *squareGateway) CreatePayment(ctx context.Context, amountMinorUnits int64, currency, sourceToken, referenceID string) (*GatewayPayment, error) {
	start := time.Now()
	defer func() {
		metrics.GatewayRequestDuration.WithLabelValues("create_payment").Observe(time.Since(start).Seconds())
	}()

	payload := createPaymentPayload{
		IdempotencyKey: uuid.NewString(),
		SourceID:       sourceToken,
		AmountMoney:    moneyPayload{Amount: amountMinorUnits, Currency: currency},
		LocationID:     g.locationID,
		ReferenceID:    referenceID,
	}

	resp, err := g.post(ctx, "/v2/payments", payload)
	if err != nil {
		return nil, err
	}
	if resp.Payment == nil {
		return nil, &GatewayError{Code: "MISSING_PAYMENT", Detail: "gateway response contained no payment"}
	}

	return &GatewayPayment{ID: resp.Payment.ID, Status: resp.Payment.Status}, nil
}

func (g *squareGateway) RefundPayment(ctx context.Context, amountMinorUnits int64, currency, gatewayPaymentID, reason string) (*GatewayRefund, error) {
	start := time.Now()
	defer func() {
		metrics.GatewayRequestDuration.WithLabelValues("refund_payment").Observe(time.Since(start).Seconds())
	}()

	payload := refundPayload{
		IdempotencyKey: uuid.NewString(),
		PaymentID:      gatewayPaymentID,
		AmountMoney:    moneyPayload{Amount: amountMinorUnits, Currency: currency},
		Reason:         reason,
	}

	resp, err := g.post(ctx, "/v2/refunds", payload)
	if err != nil {
		return nil, err
	}
	if resp.Refund == nil {
		return nil, &GatewayError{Code: "MISSING_REFUND", Detail: "gateway response contained no refund"}
	}

	return &GatewayRefund{ID: resp.Refund.ID, Status: resp.Refund.Status}, nil
}

func (g *squareGateway) post(ctx context.Context, path string, payload interface{}) (*apiResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.accessToken)

	resp, err := g.client.Do(req)
	if err != nil {
		// Timeouts and transport failures are retryable, never success.
		return nil, &GatewayError{Code: "GATEWAY_UNAVAILABLE", Detail: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &GatewayError{Code: "GATEWAY_UNAVAILABLE", Detail: err.Error()}
	}

	var parsed apiResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, &GatewayError{Code: "BAD_RESPONSE", Detail: err.Error()}
	}

	if resp.StatusCode >= 400 || len(parsed.Errors) > 0 {
		if len(parsed.Errors) > 0 {
			return nil, &GatewayError{Code: parsed.Errors[0].Code, Detail: parsed.Errors[0].Detail}
		}
		return nil, &GatewayError{Code: "GATEWAY_ERROR", Detail: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}

	return &parsed, nil
}
