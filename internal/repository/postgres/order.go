// Package postgres implements the order and invoice repositories using
// PostgreSQL.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hivx/My-store/internal/domain"
	"github.com/hivx/My-store/pkg/database"
	apperrors "github.com/hivx/My-store/pkg/errors"
)

// OrderRepository implements repository.OrderRepository using PostgreSQL.
// Order lines and shipping info are stored as JSONB: an order is an
// immutable snapshot, so its lines never need relational access.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Save inserts a new order with its lines and shipping info.
func (r *OrderRepository) Save(ctx context.Context, o *domain.Order) error {
	linesJSON, err := json.Marshal(o.Lines)
	if err != nil {
		return fmt.Errorf("marshal order lines: %w", err)
	}

	var shippingJSON []byte
	if o.Shipping != nil {
		shippingJSON, err = json.Marshal(o.Shipping)
		if err != nil {
			return fmt.Errorf("marshal shipping info: %w", err)
		}
	}

	query := `
		INSERT INTO orders (id, cart_id, session_id, status, lines, subtotal_amount, vat_amount, amount, shipping_fees, currency, shipping, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err = r.pool.Exec(ctx, query,
		o.ID,
		o.CartID,
		o.SessionID,
		o.Status,
		linesJSON,
		o.SubtotalAmount,
		o.VATAmount,
		o.Amount,
		o.ShippingFees,
		o.Currency,
		shippingJSON,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		return apperrors.Storage("insert order", err)
	}

	return nil
}

// GetByID retrieves an order by its ID.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `
		SELECT id, cart_id, session_id, status, lines, subtotal_amount, vat_amount, amount, shipping_fees, currency, shipping, created_at, updated_at
		FROM orders
		WHERE id = $1`

	var (
		o            domain.Order
		linesJSON    []byte
		shippingJSON []byte
	)

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&o.ID,
		&o.CartID,
		&o.SessionID,
		&o.Status,
		&linesJSON,
		&o.SubtotalAmount,
		&o.VATAmount,
		&o.Amount,
		&o.ShippingFees,
		&o.Currency,
		&shippingJSON,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order", id)
		}
		return nil, apperrors.Storage("select order", err)
	}

	if len(linesJSON) > 0 && string(linesJSON) != "null" {
		if err := json.Unmarshal(linesJSON, &o.Lines); err != nil {
			return nil, fmt.Errorf("unmarshal order lines: %w", err)
		}
	} else {
		o.Lines = []domain.OrderLine{}
	}

	if len(shippingJSON) > 0 && string(shippingJSON) != "null" {
		var info domain.ShippingInfo
		if err := json.Unmarshal(shippingJSON, &info); err != nil {
			return nil, fmt.Errorf("unmarshal shipping info: %w", err)
		}
		o.Shipping = &info
	}

	return &o, nil
}

// UpdateStatus changes the status of an order.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	if !domain.IsValidStatus(status) {
		return apperrors.InvalidInput(fmt.Sprintf("invalid order status %q", status))
	}

	query := `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE id = $3`

	ct, err := r.pool.Exec(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return apperrors.Storage("update order status", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", id)
	}

	return nil
}
