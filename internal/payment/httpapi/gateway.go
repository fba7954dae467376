// Package httpapi implements the payment gateway over an external provider's
// HTTP API, protected by a circuit breaker.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hivx/My-store/internal/domain"
	"github.com/hivx/My-store/internal/payment"
	"github.com/hivx/My-store/pkg/errors"
	"github.com/hivx/My-store/pkg/httpclient"
)

// Gateway submits charges over HTTP.
type Gateway struct {
	client  *httpclient.CircuitBreakerClient
	baseURL string
	apiKey  string
	logger  *slog.Logger
}

// NewGateway creates an HTTP payment gateway.
func NewGateway(client *httpclient.CircuitBreakerClient, baseURL, apiKey string, logger *slog.Logger) *Gateway {
	return &Gateway{
		client:  client,
		baseURL: baseURL,
		apiKey:  apiKey,
		logger:  logger,
	}
}

// Name returns the gateway name.
func (g *Gateway) Name() string {
	return "httpapi"
}

type chargeRequest struct {
	OrderID       string            `json:"order_id"`
	Amount        int64             `json:"amount"`
	Currency      string            `json:"currency"`
	Description   string            `json:"description,omitempty"`
	ReturnContext map[string]string `json:"return_context,omitempty"`
}

type chargeResponse struct {
	Data struct {
		TransactionID string    `json:"transaction_id"`
		OrderID       string    `json:"order_id"`
		Outcome       string    `json:"outcome"`
		Amount        int64     `json:"amount"`
		Currency      string    `json:"currency"`
		Message       string    `json:"message"`
		ProcessedAt   time.Time `json:"processed_at"`
	} `json:"data"`
}

// Charge submits the charge and waits for the settlement response. Transport
// failures, 5xx responses, and an open circuit surface as GatewayUnreachable:
// the settlement outcome is unknown and must not be guessed. A Failed or
// Cancelled outcome in a 2xx response is returned as a normal result.
func (g *Gateway) Charge(ctx context.Context, input *payment.ChargeInput) (*domain.PaymentResult, error) {
	payload, err := json.Marshal(chargeRequest{
		OrderID:       input.OrderID,
		Amount:        input.Amount,
		Currency:      input.Currency,
		Description:   input.Description,
		ReturnContext: input.ReturnContext,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal charge request: %w", err)
	}

	endpoint := g.baseURL + "/api/v1/charges"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create charge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(ctx, req)
	if err != nil {
		g.logger.WarnContext(ctx, "payment gateway call failed",
			slog.String("order_id", input.OrderID),
			slog.Any("error", err),
		)
		return nil, errors.GatewayUnreachable(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, errors.GatewayUnreachable(httpclient.ParseResponseError(resp, "payment"))
	}

	var body chargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.GatewayUnreachable(fmt.Errorf("decode charge response: %w", err))
	}

	if !domain.IsValidOutcome(body.Data.Outcome) {
		return nil, errors.GatewayUnreachable(fmt.Errorf("unknown settlement outcome %q", body.Data.Outcome))
	}

	return &domain.PaymentResult{
		TransactionID: body.Data.TransactionID,
		OrderID:       body.Data.OrderID,
		Outcome:       body.Data.Outcome,
		Amount:        body.Data.Amount,
		Currency:      body.Data.Currency,
		Message:       body.Data.Message,
		ProcessedAt:   body.Data.ProcessedAt,
	}, nil
}
