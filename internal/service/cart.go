// Package service implements the business logic of the order workflow: cart
// editing, order building, invoice generation, and the workflow orchestrator.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hivx/My-store/internal/domain"
	"github.com/hivx/My-store/internal/inventory"
	"github.com/hivx/My-store/internal/repository"
	apperrors "github.com/hivx/My-store/pkg/errors"
)

// cartExpiryDuration is how long an idle cart survives in Redis.
const cartExpiryDuration = 24 * time.Hour

// CartService implements cart editing operations. Prices are captured from
// inventory at add-to-cart time and frozen on the line.
type CartService struct {
	repo      repository.CartRepository
	inventory inventory.Gateway
	currency  string
	logger    *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(repo repository.CartRepository, inv inventory.Gateway, currency string, logger *slog.Logger) *CartService {
	return &CartService{
		repo:      repo,
		inventory: inv,
		currency:  currency,
		logger:    logger,
	}
}

// GetCart returns the cart for a session, creating an empty one if none
// exists.
func (s *CartService) GetCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	cart, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return s.newCart(sessionID), nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	return cart, nil
}

// AddLineInput holds the parameters for adding a product to the cart.
type AddLineInput struct {
	ProductID string `json:"product_id" validate:"required"`
	Title     string `json:"title" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// AddLine adds a product to the cart, capturing the current inventory price.
// Adding a product already in the cart increases its quantity instead;
// product IDs stay unique within a cart.
func (s *CartService) AddLine(ctx context.Context, sessionID string, input *AddLineInput) (*domain.Cart, error) {
	if input == nil {
		return nil, apperrors.InvalidInput("add line input is required")
	}
	if input.ProductID == "" {
		return nil, apperrors.InvalidInput("product_id is required")
	}
	if input.Quantity <= 0 {
		return nil, apperrors.InvalidInput("quantity must be greater than 0")
	}

	stock, err := s.inventory.GetStock(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", input.ProductID)
		}
		return nil, fmt.Errorf("query stock for add to cart: %w", err)
	}
	if stock.Available == 0 {
		return nil, apperrors.Unavailable(fmt.Sprintf("product %s is out of stock", input.ProductID))
	}

	cart, err := s.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	if idx := cart.FindLineIndex(input.ProductID); idx >= 0 {
		cart.Lines[idx].Quantity += input.Quantity
	} else {
		cart.Lines = append(cart.Lines, domain.CartLine{
			ProductID: input.ProductID,
			Title:     input.Title,
			UnitPrice: stock.CurrentPrice,
			Quantity:  input.Quantity,
			Selected:  true,
			Available: true,
		})
	}

	cart.Version++
	cart.UpdatedAt = now
	cart.ExpiresAt = now.Add(cartExpiryDuration)

	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	s.logger.InfoContext(ctx, "cart line added",
		slog.String("session_id", sessionID),
		slog.String("product_id", input.ProductID),
		slog.Int("quantity", input.Quantity),
	)

	return cart, nil
}

// UpdateQuantity changes the quantity of a cart line. Quantity must stay
// positive; removing a line is a separate operation.
func (s *CartService) UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return nil, apperrors.InvalidInput("quantity must be greater than 0")
	}

	cart, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get cart for quantity update: %w", err)
	}

	idx := cart.FindLineIndex(productID)
	if idx < 0 {
		return nil, apperrors.NotFound("cart line", productID)
	}

	cart.Lines[idx].Quantity = quantity
	// A quantity edit invalidates the previous reconciliation result.
	cart.Lines[idx].PartiallyReduced = false
	cart.Version++
	cart.UpdatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	return cart, nil
}

// SetSelected marks a cart line as selected or deselected for checkout.
// A line flagged unavailable by reconciliation cannot be re-selected.
func (s *CartService) SetSelected(ctx context.Context, sessionID, productID string, selected bool) (*domain.Cart, error) {
	cart, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get cart for selection update: %w", err)
	}

	idx := cart.FindLineIndex(productID)
	if idx < 0 {
		return nil, apperrors.NotFound("cart line", productID)
	}

	if selected && !cart.Lines[idx].Available {
		return nil, apperrors.Unavailable(fmt.Sprintf("product %s is unavailable and cannot be selected", productID))
	}

	cart.Lines[idx].Selected = selected
	cart.Version++
	cart.UpdatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	return cart, nil
}

// RemoveLine deletes a product line from the cart.
func (s *CartService) RemoveLine(ctx context.Context, sessionID, productID string) (*domain.Cart, error) {
	cart, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get cart for line removal: %w", err)
	}

	idx := cart.FindLineIndex(productID)
	if idx < 0 {
		return nil, apperrors.NotFound("cart line", productID)
	}

	cart.Lines = append(cart.Lines[:idx], cart.Lines[idx+1:]...)
	cart.Version++
	cart.UpdatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	return cart, nil
}

func (s *CartService) newCart(sessionID string) *domain.Cart {
	now := time.Now().UTC()
	return &domain.Cart{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Lines:     []domain.CartLine{},
		Currency:  s.currency,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(cartExpiryDuration),
	}
}
