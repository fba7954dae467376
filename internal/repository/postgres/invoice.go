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

// InvoiceRepository implements repository.InvoiceRepository using PostgreSQL.
type InvoiceRepository struct {
	pool database.DBTX
}

// NewInvoiceRepository creates a new PostgreSQL-backed invoice repository.
func NewInvoiceRepository(pool database.DBTX) *InvoiceRepository {
	return &InvoiceRepository{pool: pool}
}

// Save inserts a new invoice. A second invoice for the same order violates
// the unique constraint on order_id and surfaces as a conflict.
func (r *InvoiceRepository) Save(ctx context.Context, inv *domain.Invoice) error {
	query := `
		INSERT INTO invoices (id, order_id, description, subtotal_amount, vat_amount, shipping_amount, total_amount, currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		inv.ID,
		inv.OrderID,
		inv.Description,
		inv.SubtotalAmount,
		inv.VATAmount,
		inv.ShippingAmount,
		inv.TotalAmount,
		inv.Currency,
		inv.CreatedAt,
		inv.UpdatedAt,
	)
	if err != nil {
		return apperrors.Storage("insert invoice", err)
	}

	return nil
}

// GetByOrderID retrieves the invoice generated for an order.
func (r *InvoiceRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.Invoice, error) {
	query := `
		SELECT id, order_id, description, subtotal_amount, vat_amount, shipping_amount, total_amount, currency, payment, created_at, updated_at
		FROM invoices
		WHERE order_id = $1`

	var (
		inv         domain.Invoice
		paymentJSON []byte
	)

	err := r.pool.QueryRow(ctx, query, orderID).Scan(
		&inv.ID,
		&inv.OrderID,
		&inv.Description,
		&inv.SubtotalAmount,
		&inv.VATAmount,
		&inv.ShippingAmount,
		&inv.TotalAmount,
		&inv.Currency,
		&paymentJSON,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("invoice for order", orderID)
		}
		return nil, apperrors.Storage("select invoice", err)
	}

	if len(paymentJSON) > 0 && string(paymentJSON) != "null" {
		var result domain.PaymentResult
		if err := json.Unmarshal(paymentJSON, &result); err != nil {
			return nil, fmt.Errorf("unmarshal payment result: %w", err)
		}
		inv.Payment = &result
	}

	return &inv, nil
}

// AttachPaymentResult records the settlement result on an invoice.
func (r *InvoiceRepository) AttachPaymentResult(ctx context.Context, invoiceID string, result *domain.PaymentResult) error {
	paymentJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal payment result: %w", err)
	}

	query := `
		UPDATE invoices
		SET payment = $1, updated_at = $2
		WHERE id = $3`

	ct, err := r.pool.Exec(ctx, query, paymentJSON, time.Now().UTC(), invoiceID)
	if err != nil {
		return apperrors.Storage("attach payment result", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("invoice", invoiceID)
	}

	return nil
}
