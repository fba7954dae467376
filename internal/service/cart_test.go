package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hivx/My-store/internal/inventory/memory"
	apperrors "github.com/hivx/My-store/pkg/errors"
)

func newCartServiceFixture(t *testing.T) (*CartService, *fakeCartRepo, *memory.Gateway) {
	t.Helper()
	repo := newFakeCartRepo()
	stock := memory.NewGateway()
	svc := NewCartService(repo, stock, "VND", newTestLogger())
	return svc, repo, stock
}

func TestCartService_GetCart_CreatesEmptyCart(t *testing.T) {
	svc, _, _ := newCartServiceFixture(t)

	cart, err := svc.GetCart(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", cart.SessionID)
	assert.Empty(t, cart.Lines)
	assert.Equal(t, "VND", cart.Currency)
	assert.NotEmpty(t, cart.ID)
}

func TestCartService_GetCart_RequiresSession(t *testing.T) {
	svc, _, _ := newCartServiceFixture(t)

	_, err := svc.GetCart(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCartService_AddLine_CapturesCurrentPrice(t *testing.T) {
	svc, repo, stock := newCartServiceFixture(t)
	stock.SetStock("prod-a", 5, 150)

	cart, err := svc.AddLine(context.Background(), "sess-1", &AddLineInput{
		ProductID: "prod-a",
		Title:     "Album A",
		Quantity:  2,
	})
	require.NoError(t, err)

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, int64(150), cart.Lines[0].UnitPrice)
	assert.True(t, cart.Lines[0].Selected)
	assert.True(t, cart.Lines[0].Available)
	assert.Equal(t, 1, cart.Version)

	saved, err := repo.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Len(t, saved.Lines, 1)
}

func TestCartService_AddLine_MergesDuplicateProduct(t *testing.T) {
	svc, _, stock := newCartServiceFixture(t)
	stock.SetStock("prod-a", 10, 100)

	_, err := svc.AddLine(context.Background(), "sess-1", &AddLineInput{ProductID: "prod-a", Title: "Album A", Quantity: 2})
	require.NoError(t, err)
	cart, err := svc.AddLine(context.Background(), "sess-1", &AddLineInput{ProductID: "prod-a", Title: "Album A", Quantity: 3})
	require.NoError(t, err)

	// Product IDs are unique within a cart: quantities merge.
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 5, cart.Lines[0].Quantity)
}

func TestCartService_AddLine_OutOfStock(t *testing.T) {
	svc, _, stock := newCartServiceFixture(t)
	stock.SetStock("prod-a", 0, 100)

	_, err := svc.AddLine(context.Background(), "sess-1", &AddLineInput{ProductID: "prod-a", Title: "Album A", Quantity: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
}

func TestCartService_AddLine_UnknownProduct(t *testing.T) {
	svc, _, _ := newCartServiceFixture(t)

	_, err := svc.AddLine(context.Background(), "sess-1", &AddLineInput{ProductID: "prod-x", Title: "X", Quantity: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCartService_AddLine_InvalidQuantity(t *testing.T) {
	svc, _, _ := newCartServiceFixture(t)

	_, err := svc.AddLine(context.Background(), "sess-1", &AddLineInput{ProductID: "prod-a", Title: "A", Quantity: 0})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCartService_UpdateQuantity(t *testing.T) {
	svc, _, stock := newCartServiceFixture(t)
	stock.SetStock("prod-a", 10, 100)

	_, err := svc.AddLine(context.Background(), "sess-1", &AddLineInput{ProductID: "prod-a", Title: "A", Quantity: 2})
	require.NoError(t, err)

	cart, err := svc.UpdateQuantity(context.Background(), "sess-1", "prod-a", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, cart.Lines[0].Quantity)
	assert.False(t, cart.Lines[0].PartiallyReduced)
}

func TestCartService_UpdateQuantity_ResetsReducedFlag(t *testing.T) {
	svc, repo, stock := newCartServiceFixture(t)
	stock.SetStock("prod-a", 10, 100)

	_, err := svc.AddLine(context.Background(), "sess-1", &AddLineInput{ProductID: "prod-a", Title: "A", Quantity: 2})
	require.NoError(t, err)

	cart, err := repo.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	cart.Lines[0].PartiallyReduced = true
	require.NoError(t, repo.Save(context.Background(), cart))

	updated, err := svc.UpdateQuantity(context.Background(), "sess-1", "prod-a", 1)
	require.NoError(t, err)
	assert.False(t, updated.Lines[0].PartiallyReduced)
}

func TestCartService_SetSelected_RejectsUnavailableLine(t *testing.T) {
	svc, repo, stock := newCartServiceFixture(t)
	stock.SetStock("prod-a", 10, 100)

	_, err := svc.AddLine(context.Background(), "sess-1", &AddLineInput{ProductID: "prod-a", Title: "A", Quantity: 1})
	require.NoError(t, err)

	cart, err := repo.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	cart.Lines[0].Available = false
	cart.Lines[0].Selected = false
	require.NoError(t, repo.Save(context.Background(), cart))

	_, err = svc.SetSelected(context.Background(), "sess-1", "prod-a", true)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)

	// Deselecting an unavailable line is always allowed.
	updated, err := svc.SetSelected(context.Background(), "sess-1", "prod-a", false)
	require.NoError(t, err)
	assert.False(t, updated.Lines[0].Selected)
}

func TestCartService_RemoveLine(t *testing.T) {
	svc, _, stock := newCartServiceFixture(t)
	stock.SetStock("prod-a", 10, 100)
	stock.SetStock("prod-b", 10, 50)

	_, err := svc.AddLine(context.Background(), "sess-1", &AddLineInput{ProductID: "prod-a", Title: "A", Quantity: 1})
	require.NoError(t, err)
	_, err = svc.AddLine(context.Background(), "sess-1", &AddLineInput{ProductID: "prod-b", Title: "B", Quantity: 1})
	require.NoError(t, err)

	cart, err := svc.RemoveLine(context.Background(), "sess-1", "prod-a")
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, "prod-b", cart.Lines[0].ProductID)
}

func TestCartService_RemoveLine_NotFound(t *testing.T) {
	svc, _, stock := newCartServiceFixture(t)
	stock.SetStock("prod-a", 10, 100)

	_, err := svc.AddLine(context.Background(), "sess-1", &AddLineInput{ProductID: "prod-a", Title: "A", Quantity: 1})
	require.NoError(t, err)

	_, err = svc.RemoveLine(context.Background(), "sess-1", "prod-x")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
