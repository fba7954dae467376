// Package httpapi implements the inventory gateway over the inventory
// system's HTTP API, protected by a circuit breaker.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/hivx/My-store/internal/inventory"
	"github.com/hivx/My-store/pkg/errors"
	"github.com/hivx/My-store/pkg/httpclient"
)

// Gateway queries stock levels over HTTP.
type Gateway struct {
	client  *httpclient.CircuitBreakerClient
	baseURL string
	logger  *slog.Logger
}

// NewGateway creates an HTTP inventory gateway.
func NewGateway(client *httpclient.CircuitBreakerClient, baseURL string, logger *slog.Logger) *Gateway {
	return &Gateway{
		client:  client,
		baseURL: baseURL,
		logger:  logger,
	}
}

type stockResponse struct {
	Data struct {
		ProductID    string `json:"product_id"`
		Available    int    `json:"available"`
		CurrentPrice int64  `json:"current_price"`
	} `json:"data"`
}

// GetStock fetches the current stock level and price for a product. Network
// failures, 5xx responses, and an open circuit all surface as
// InventoryUnreachable so the caller can abort reconciliation cleanly.
func (g *Gateway) GetStock(ctx context.Context, productID string) (*inventory.Stock, error) {
	endpoint := fmt.Sprintf("%s/api/v1/stock/%s", g.baseURL, url.PathEscape(productID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create stock request: %w", err)
	}

	resp, err := g.client.Do(ctx, req)
	if err != nil {
		g.logger.WarnContext(ctx, "inventory gateway call failed",
			slog.String("product_id", productID),
			slog.Any("error", err),
		)
		return nil, errors.InventoryUnreachable(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.NotFound("product", productID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.InventoryUnreachable(httpclient.ParseResponseError(resp, "inventory"))
	}

	var body stockResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.InventoryUnreachable(fmt.Errorf("decode stock response: %w", err))
	}

	return &inventory.Stock{
		ProductID:    body.Data.ProductID,
		Available:    body.Data.Available,
		CurrentPrice: body.Data.CurrentPrice,
	}, nil
}
