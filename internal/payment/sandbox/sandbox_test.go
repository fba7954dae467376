package sandbox

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hivx/My-store/internal/domain"
	"github.com/hivx/My-store/internal/payment"
)

func TestCharge_Succeeds(t *testing.T) {
	g := NewGateway()

	res, err := g.Charge(context.Background(), &payment.ChargeInput{
		OrderID:  "order-1",
		Amount:   24000,
		Currency: "VND",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentOutcomeSucceeded, res.Outcome)
	assert.Equal(t, "order-1", res.OrderID)
	assert.Equal(t, int64(24000), res.Amount)
	assert.NotEmpty(t, res.TransactionID)
	assert.False(t, res.ProcessedAt.IsZero())
}

func TestCharge_AmountSuffix99Fails(t *testing.T) {
	g := NewGateway()

	res, err := g.Charge(context.Background(), &payment.ChargeInput{
		OrderID: "order-1",
		Amount:  10099,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentOutcomeFailed, res.Outcome)
	assert.NotEmpty(t, res.Message)
}

func TestCharge_AmountSuffix98Cancelled(t *testing.T) {
	g := NewGateway()

	res, err := g.Charge(context.Background(), &payment.ChargeInput{
		OrderID: "order-1",
		Amount:  10098,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentOutcomeCancelled, res.Outcome)
}

func TestCharge_UsesInjectedClock(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	g := &Gateway{now: func() time.Time { return fixed }}

	res, err := g.Charge(context.Background(), &payment.ChargeInput{Amount: 100})
	require.NoError(t, err)
	assert.Equal(t, fixed, res.ProcessedAt)
}
