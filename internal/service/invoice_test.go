package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hivx/My-store/internal/domain"
	apperrors "github.com/hivx/My-store/pkg/errors"
)

func invoiceTestOrder() *domain.Order {
	return &domain.Order{
		ID:     "order-1",
		Status: domain.OrderStatusCreated,
		Lines: []domain.OrderLine{
			{ProductID: "prod-a", Title: "Album A", UnitPrice: 100, Quantity: 2, LineTotal: 200},
		},
		SubtotalAmount: 200,
		VATAmount:      20,
		Amount:         220,
		ShippingFees:   20,
		Currency:       "VND",
	}
}

func TestInvoiceGenerator_Generate(t *testing.T) {
	gen := NewInvoiceGenerator()
	fixed := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	gen.now = func() time.Time { return fixed }

	invoice, err := gen.Generate(invoiceTestOrder())
	require.NoError(t, err)

	assert.NotEmpty(t, invoice.ID)
	assert.Equal(t, "order-1", invoice.OrderID)
	assert.Equal(t, "Invoice for order order-1", invoice.Description)
	assert.Equal(t, int64(200), invoice.SubtotalAmount)
	assert.Equal(t, int64(20), invoice.VATAmount)
	assert.Equal(t, int64(20), invoice.ShippingAmount)
	assert.Equal(t, int64(240), invoice.TotalAmount)
	assert.Equal(t, "VND", invoice.Currency)
	assert.Equal(t, fixed, invoice.CreatedAt)
	assert.Nil(t, invoice.Payment)
}

func TestInvoiceGenerator_Generate_Deterministic(t *testing.T) {
	gen := NewInvoiceGenerator()
	order := invoiceTestOrder()

	first, err := gen.Generate(order)
	require.NoError(t, err)
	second, err := gen.Generate(order)
	require.NoError(t, err)

	assert.Equal(t, first.TotalAmount, second.TotalAmount)
	assert.Equal(t, first.SubtotalAmount, second.SubtotalAmount)
	assert.Equal(t, first.VATAmount, second.VATAmount)
}

func TestInvoiceGenerator_Generate_NilOrder(t *testing.T) {
	gen := NewInvoiceGenerator()

	_, err := gen.Generate(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestInvoiceGenerator_Generate_NoLines(t *testing.T) {
	gen := NewInvoiceGenerator()
	order := invoiceTestOrder()
	order.Lines = nil

	_, err := gen.Generate(order)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
