package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hivx/My-store/internal/domain"
	"github.com/hivx/My-store/pkg/database"
	apperrors "github.com/hivx/My-store/pkg/errors"
)

// --- Test Helpers ---

func newTestOrderRepo(t *testing.T) (*OrderRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewOrderRepository(mock)
	return repo, mock
}

func sampleShipping() *domain.ShippingInfo {
	return &domain.ShippingInfo{
		Name:         "Nguyen Van A",
		Phone:        "+84901234567",
		Province:     "Hanoi",
		Address:      "12 Tran Hung Dao",
		Instructions: "Call before delivery",
	}
}

func sampleOrder() *domain.Order {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Order{
		ID:             "order-001",
		CartID:         "cart-001",
		SessionID:      "sess-001",
		Status:         domain.OrderStatusCreated,
		SubtotalAmount: 20000,
		VATAmount:      2000,
		Amount:         22000,
		ShippingFees:   2200,
		Currency:       "VND",
		Shipping:       sampleShipping(),
		CreatedAt:      now,
		UpdatedAt:      now,
		Lines: []domain.OrderLine{
			{ProductID: "prod-1", Title: "Blue Album CD", UnitPrice: 10000, Quantity: 2, LineTotal: 20000},
		},
	}
}

// --- Save Tests ---

func TestOrderRepository_Save_Success(t *testing.T) {
	repo, mock := newTestOrderRepo(t)
	defer mock.ExpectationsWereMet()

	o := sampleOrder()

	mock.ExpectExec("INSERT INTO orders").
		WithArgs(
			o.ID, o.CartID, o.SessionID, o.Status,
			pgxmock.AnyArg(), // lines JSON
			o.SubtotalAmount, o.VATAmount, o.Amount, o.ShippingFees,
			o.Currency,
			pgxmock.AnyArg(), // shipping JSON
			o.CreatedAt, o.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Save(context.Background(), o)
	require.NoError(t, err)
}

func TestOrderRepository_Save_DBError(t *testing.T) {
	repo, mock := newTestOrderRepo(t)
	defer mock.ExpectationsWereMet()

	o := sampleOrder()

	mock.ExpectExec("INSERT INTO orders").
		WithArgs(
			o.ID, o.CartID, o.SessionID, o.Status,
			pgxmock.AnyArg(),
			o.SubtotalAmount, o.VATAmount, o.Amount, o.ShippingFees,
			o.Currency,
			pgxmock.AnyArg(),
			o.CreatedAt, o.UpdatedAt,
		).
		WillReturnError(errors.New("connection refused"))

	err := repo.Save(context.Background(), o)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrStorage)
}

// --- GetByID Tests ---

func TestOrderRepository_GetByID_Success(t *testing.T) {
	repo, mock := newTestOrderRepo(t)
	defer mock.ExpectationsWereMet()

	o := sampleOrder()
	linesJSON, err := json.Marshal(o.Lines)
	require.NoError(t, err)
	shippingJSON, err := json.Marshal(o.Shipping)
	require.NoError(t, err)

	rows := pgxmock.NewRows([]string{
		"id", "cart_id", "session_id", "status", "lines",
		"subtotal_amount", "vat_amount", "amount", "shipping_fees",
		"currency", "shipping", "created_at", "updated_at",
	}).AddRow(
		o.ID, o.CartID, o.SessionID, o.Status, linesJSON,
		o.SubtotalAmount, o.VATAmount, o.Amount, o.ShippingFees,
		o.Currency, shippingJSON, o.CreatedAt, o.UpdatedAt,
	)

	mock.ExpectQuery("SELECT (.+) FROM orders").
		WithArgs(o.ID).
		WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
	assert.Equal(t, o.Status, got.Status)
	assert.Equal(t, o.Amount, got.Amount)
	assert.Equal(t, o.ShippingFees, got.ShippingFees)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "prod-1", got.Lines[0].ProductID)
	require.NotNil(t, got.Shipping)
	assert.Equal(t, "Hanoi", got.Shipping.Province)
}

func TestOrderRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newTestOrderRepo(t)
	defer mock.ExpectationsWereMet()

	mock.ExpectQuery("SELECT (.+) FROM orders").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByID(context.Background(), "missing")
	assert.Nil(t, got)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// --- UpdateStatus Tests ---

func TestOrderRepository_UpdateStatus_Success(t *testing.T) {
	repo, mock := newTestOrderRepo(t)
	defer mock.ExpectationsWereMet()

	mock.ExpectExec("UPDATE orders").
		WithArgs(domain.OrderStatusAwaitingPayment, pgxmock.AnyArg(), "order-001").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.UpdateStatus(context.Background(), "order-001", domain.OrderStatusAwaitingPayment)
	require.NoError(t, err)
}

func TestOrderRepository_UpdateStatus_NotFound(t *testing.T) {
	repo, mock := newTestOrderRepo(t)
	defer mock.ExpectationsWereMet()

	mock.ExpectExec("UPDATE orders").
		WithArgs(domain.OrderStatusPaid, pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdateStatus(context.Background(), "missing", domain.OrderStatusPaid)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestOrderRepository_UpdateStatus_InvalidStatus(t *testing.T) {
	repo, _ := newTestOrderRepo(t)

	err := repo.UpdateStatus(context.Background(), "order-001", "shipped")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
