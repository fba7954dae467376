package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hivx/My-store/internal/availability"
	"github.com/hivx/My-store/internal/domain"
	"github.com/hivx/My-store/internal/event"
	"github.com/hivx/My-store/internal/payment"
	"github.com/hivx/My-store/internal/pricing"
	"github.com/hivx/My-store/internal/repository"
	"github.com/hivx/My-store/internal/shipping"
	apperrors "github.com/hivx/My-store/pkg/errors"
)

// GatewayTimeouts holds per-call timeout configuration for external gateway
// calls. A zero value means no per-call timeout (inherits the parent context).
type GatewayTimeouts struct {
	InventoryTimeout time.Duration
	PaymentTimeout   time.Duration
}

// WorkflowService drives the order-placement state machine: cart review,
// availability reconciliation, order creation, invoicing, and payment
// settlement. One workflow instance covers a single order attempt.
//
// Transitions for each workflow are serialized by a per-handle mutex, so two
// concurrent attempts to advance the same workflow cannot interleave. Handles
// lock independently: a gateway call in one workflow never blocks another.
type WorkflowService struct {
	carts    repository.CartRepository
	orders   repository.OrderRepository
	invoices repository.InvoiceRepository
	checker  *availability.Checker
	fees     shipping.FeeProvider
	gateway  payment.Gateway
	builder  *OrderBuilder
	invoicer *InvoiceGenerator
	producer *event.Producer
	logger   *slog.Logger

	vatPercent int64
	timeouts   GatewayTimeouts

	mu        sync.RWMutex
	workflows map[string]*domain.Workflow
	locks     map[string]*sync.Mutex
}

// NewWorkflowService creates a new workflow orchestrator.
func NewWorkflowService(
	carts repository.CartRepository,
	orders repository.OrderRepository,
	invoices repository.InvoiceRepository,
	checker *availability.Checker,
	fees shipping.FeeProvider,
	gateway payment.Gateway,
	producer *event.Producer,
	logger *slog.Logger,
	vatPercent int64,
	timeouts GatewayTimeouts,
) *WorkflowService {
	return &WorkflowService{
		carts:      carts,
		orders:     orders,
		invoices:   invoices,
		checker:    checker,
		fees:       fees,
		gateway:    gateway,
		builder:    NewOrderBuilder(),
		invoicer:   NewInvoiceGenerator(),
		producer:   producer,
		logger:     logger,
		vatPercent: vatPercent,
		timeouts:   timeouts,
		workflows:  make(map[string]*domain.Workflow),
		locks:      make(map[string]*sync.Mutex),
	}
}

// Start begins a new order attempt for a session's cart. The cart must exist
// and contain at least one selected line.
func (s *WorkflowService) Start(ctx context.Context, sessionID string) (*domain.Workflow, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get cart for workflow start: %w", err)
	}

	if len(cart.SelectedLines()) == 0 {
		return nil, apperrors.EmptySelection()
	}

	now := time.Now().UTC()
	w := &domain.Workflow{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		State:     domain.StateCartReview,
		CartID:    cart.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.workflows[w.ID] = w
	s.locks[w.ID] = &sync.Mutex{}
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "workflow started",
		slog.String("workflow_id", w.ID),
		slog.String("session_id", sessionID),
	)

	return s.snapshot(w), nil
}

// Get returns the current state of a workflow. It takes the per-handle lock
// so a read issued during an in-flight transition waits for it to finish.
func (s *WorkflowService) Get(_ context.Context, workflowID string) (*domain.Workflow, error) {
	w, lock, err := s.handle(workflowID)
	if err != nil {
		return nil, err
	}
	lock.Lock()
	defer lock.Unlock()
	return s.snapshot(w), nil
}

// SetShipping records the delivery details for the attempt. Shipping can be
// changed until the order is created.
func (s *WorkflowService) SetShipping(ctx context.Context, workflowID string, info *domain.ShippingInfo) (*domain.Workflow, error) {
	if info == nil {
		return nil, apperrors.InvalidInput("shipping info is required")
	}
	if info.Name == "" || info.Phone == "" || info.Province == "" || info.Address == "" {
		return nil, apperrors.InvalidInput("name, phone, province, and address are required")
	}

	w, lock, err := s.handle(workflowID)
	if err != nil {
		return nil, err
	}
	lock.Lock()
	defer lock.Unlock()

	switch w.State {
	case domain.StateCartReview, domain.StateReconciled:
	default:
		return nil, apperrors.Conflict("shipping info can only be set before the order is created")
	}

	infoCopy := *info
	w.Shipping = &infoCopy
	w.ShippingConfirmed = false
	w.UpdatedAt = time.Now().UTC()

	s.logger.InfoContext(ctx, "shipping info set",
		slog.String("workflow_id", workflowID),
		slog.String("province", info.Province),
	)

	return s.snapshot(w), nil
}

// ConfirmShipping records the user's confirmation of the invoice and shipping
// details, unblocking the transition into payment.
func (s *WorkflowService) ConfirmShipping(ctx context.Context, workflowID string) (*domain.Workflow, error) {
	w, lock, err := s.handle(workflowID)
	if err != nil {
		return nil, err
	}
	lock.Lock()
	defer lock.Unlock()

	if w.IsTerminal() {
		return nil, apperrors.Conflict("workflow has already finished")
	}
	if w.Shipping == nil {
		return nil, apperrors.InvalidInput("shipping info must be set before confirming")
	}

	w.ShippingConfirmed = true
	w.UpdatedAt = time.Now().UTC()

	s.logger.InfoContext(ctx, "shipping confirmed",
		slog.String("workflow_id", workflowID),
	)

	return s.snapshot(w), nil
}

// Advance drives the workflow one state forward. A gateway failure leaves the
// state unchanged so the caller can retry; an unavailable cart line loops the
// workflow back to cart review with a user-facing message.
func (s *WorkflowService) Advance(ctx context.Context, workflowID string) (*domain.Workflow, error) {
	w, lock, err := s.handle(workflowID)
	if err != nil {
		return nil, err
	}
	lock.Lock()
	defer lock.Unlock()

	switch w.State {
	case domain.StateCartReview:
		err = s.advanceCartReview(ctx, w)
	case domain.StateReconciled:
		err = s.advanceReconciled(ctx, w)
	case domain.StateOrderCreated:
		err = s.advanceOrderCreated(ctx, w)
	case domain.StateInvoiceReady:
		err = s.advanceInvoiceReady(ctx, w)
	case domain.StatePaymentPending:
		err = s.advancePaymentPending(ctx, w)
	default:
		return nil, apperrors.Conflict(fmt.Sprintf("workflow is already in terminal state %s", w.State))
	}
	if err != nil {
		return nil, err
	}

	w.UpdatedAt = time.Now().UTC()

	s.logger.InfoContext(ctx, "workflow advanced",
		slog.String("workflow_id", w.ID),
		slog.String("state", w.State),
	)

	return s.snapshot(w), nil
}

// Cancel abandons the attempt. Before payment dispatch the only side effect
// is cancelling the persisted order, if one exists. Once a charge is in
// flight the per-handle lock makes Cancel wait for the gateway's response;
// it then applies only if the workflow is still not terminal.
func (s *WorkflowService) Cancel(ctx context.Context, workflowID, reason string) (*domain.Workflow, error) {
	w, lock, err := s.handle(workflowID)
	if err != nil {
		return nil, err
	}
	lock.Lock()
	defer lock.Unlock()

	if w.IsTerminal() {
		return nil, apperrors.Conflict("workflow has already finished")
	}

	if reason == "" {
		reason = "cancelled by user"
	}

	if w.OrderID != "" {
		if err := s.orders.UpdateStatus(ctx, w.OrderID, domain.OrderStatusCanceled); err != nil {
			return nil, fmt.Errorf("cancel order: %w", err)
		}
		if err := s.producer.PublishOrderCanceled(ctx, w.OrderID, reason); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish order.canceled event",
				slog.String("order_id", w.OrderID),
				slog.String("error", err.Error()),
			)
		}
	}

	if err := s.transition(w, domain.StatePaymentCancelled); err != nil {
		return nil, err
	}
	w.Message = reason
	w.UpdatedAt = time.Now().UTC()

	s.logger.InfoContext(ctx, "workflow cancelled",
		slog.String("workflow_id", w.ID),
		slog.String("reason", reason),
	)

	return s.snapshot(w), nil
}

// advanceCartReview reconciles the cart against inventory. Unavailable lines
// keep the workflow in cart review with a message; otherwise it moves to
// Reconciled.
func (s *WorkflowService) advanceCartReview(ctx context.Context, w *domain.Workflow) error {
	cart, err := s.carts.Get(ctx, w.SessionID)
	if err != nil {
		return fmt.Errorf("get cart for reconciliation: %w", err)
	}

	if len(cart.SelectedLines()) == 0 {
		return apperrors.EmptySelection()
	}

	invCtx := ctx
	if s.timeouts.InventoryTimeout > 0 {
		var cancel context.CancelFunc
		invCtx, cancel = context.WithTimeout(ctx, s.timeouts.InventoryTimeout)
		defer cancel()
	}

	reconciled, anyUnavailable, err := s.checker.Reconcile(invCtx, cart)
	if err != nil {
		// State unchanged: the caller retries the same transition.
		return err
	}

	if err := s.carts.Save(ctx, reconciled); err != nil {
		return fmt.Errorf("save reconciled cart: %w", err)
	}

	if anyUnavailable {
		// Stays in cart review; not a transition.
		w.Message = unavailableMessage(reconciled)
		return nil
	}

	if err := s.transition(w, domain.StateReconciled); err != nil {
		return err
	}
	w.Message = reducedMessage(reconciled)
	return nil
}

// advanceReconciled prices the selected lines and builds the persisted order.
func (s *WorkflowService) advanceReconciled(ctx context.Context, w *domain.Workflow) error {
	if w.Shipping == nil {
		return apperrors.InvalidInput("shipping info must be set before creating the order")
	}

	cart, err := s.carts.Get(ctx, w.SessionID)
	if err != nil {
		return fmt.Errorf("get cart for order build: %w", err)
	}

	selected := cart.SelectedLines()
	if len(selected) == 0 {
		// The cart was edited since reconciliation; go around again.
		if err := s.transition(w, domain.StateCartReview); err != nil {
			return err
		}
		w.Message = "no lines selected, review your cart"
		return nil
	}

	subtotal := cart.SelectedSubtotal()
	fee, err := s.fees.Quote(ctx, *w.Shipping, cart.SelectedItemCount(), subtotal)
	if err != nil {
		return fmt.Errorf("quote shipping fee: %w", err)
	}

	totals, err := pricing.ComputeTotals(cart.Lines, s.vatPercent, fee)
	if err != nil {
		return fmt.Errorf("compute totals: %w", err)
	}

	order, err := s.builder.Build(cart, w.Shipping, totals)
	if err != nil {
		return err
	}

	if err := s.orders.Save(ctx, order); err != nil {
		// No partial aggregate is left referenced by the workflow.
		return err
	}

	if err := s.transition(w, domain.StateOrderCreated); err != nil {
		return err
	}
	w.OrderID = order.ID
	w.Message = ""

	if err := s.producer.PublishOrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	return nil
}

// advanceOrderCreated generates and persists the invoice. Generation is
// idempotent per order: an existing invoice is reused.
func (s *WorkflowService) advanceOrderCreated(ctx context.Context, w *domain.Workflow) error {
	order, err := s.orders.GetByID(ctx, w.OrderID)
	if err != nil {
		return fmt.Errorf("get order for invoicing: %w", err)
	}

	existing, err := s.invoices.GetByOrderID(ctx, order.ID)
	if err == nil {
		if err := s.transition(w, domain.StateInvoiceReady); err != nil {
			return err
		}
		w.InvoiceID = existing.ID
		return nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("check existing invoice: %w", err)
	}

	invoice, err := s.invoicer.Generate(order)
	if err != nil {
		return err
	}

	if err := s.invoices.Save(ctx, invoice); err != nil {
		return err
	}

	if err := s.transition(w, domain.StateInvoiceReady); err != nil {
		return err
	}
	w.InvoiceID = invoice.ID

	if err := s.producer.PublishInvoiceGenerated(ctx, invoice); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish invoice.generated event",
			slog.String("invoice_id", invoice.ID),
			slog.String("error", err.Error()),
		)
	}

	return nil
}

// advanceInvoiceReady moves the order into awaiting_payment and dispatches
// the charge. The shipping confirmation gate holds the workflow here until
// the user confirms.
func (s *WorkflowService) advanceInvoiceReady(ctx context.Context, w *domain.Workflow) error {
	if !w.ShippingConfirmed {
		w.Message = "awaiting shipping confirmation"
		return nil
	}

	// The order is awaiting payment before the charge is dispatched, so an
	// abandoned attempt always leaves a consistent status behind.
	if err := s.orders.UpdateStatus(ctx, w.OrderID, domain.OrderStatusAwaitingPayment); err != nil {
		return fmt.Errorf("mark order awaiting payment: %w", err)
	}

	if err := s.transition(w, domain.StatePaymentPending); err != nil {
		return err
	}
	w.Message = ""

	return s.settle(ctx, w)
}

// advancePaymentPending retries the charge after an earlier gateway failure.
func (s *WorkflowService) advancePaymentPending(ctx context.Context, w *domain.Workflow) error {
	return s.settle(ctx, w)
}

// settle dispatches the charge and applies the settlement outcome. A
// gateway error leaves the workflow in PaymentPending for retry.
func (s *WorkflowService) settle(ctx context.Context, w *domain.Workflow) error {
	invoice, err := s.invoices.GetByOrderID(ctx, w.OrderID)
	if err != nil {
		return fmt.Errorf("get invoice for settlement: %w", err)
	}

	payCtx := ctx
	if s.timeouts.PaymentTimeout > 0 {
		var cancel context.CancelFunc
		payCtx, cancel = context.WithTimeout(ctx, s.timeouts.PaymentTimeout)
		defer cancel()
	}

	result, err := s.gateway.Charge(payCtx, &payment.ChargeInput{
		OrderID:     w.OrderID,
		Amount:      invoice.TotalAmount,
		Currency:    invoice.Currency,
		Description: invoice.Description,
		ReturnContext: map[string]string{
			"workflow_id": w.ID,
			"invoice_id":  invoice.ID,
			"session_id":  w.SessionID,
		},
	})
	if err != nil {
		// Outcome unknown: stay in PaymentPending, surface as retryable.
		return err
	}

	if err := s.invoices.AttachPaymentResult(ctx, invoice.ID, result); err != nil {
		return fmt.Errorf("attach payment result: %w", err)
	}

	if err := s.producer.PublishPaymentSettled(ctx, invoice.ID, result); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish payment.settled event",
			slog.String("order_id", w.OrderID),
			slog.String("error", err.Error()),
		)
	}

	switch result.Outcome {
	case domain.PaymentOutcomeSucceeded:
		if err := s.orders.UpdateStatus(ctx, w.OrderID, domain.OrderStatusPaid); err != nil {
			return fmt.Errorf("mark order paid: %w", err)
		}
		s.removePurchasedLines(ctx, w)
		if err := s.transition(w, domain.StatePaymentSucceeded); err != nil {
			return err
		}
		w.Message = ""

	case domain.PaymentOutcomeFailed:
		// The order stays awaiting_payment: a later attempt may retry or
		// cancel explicitly.
		if err := s.transition(w, domain.StatePaymentFailed); err != nil {
			return err
		}
		w.Message = result.Message

	case domain.PaymentOutcomeCancelled:
		if err := s.orders.UpdateStatus(ctx, w.OrderID, domain.OrderStatusCanceled); err != nil {
			return fmt.Errorf("mark order canceled: %w", err)
		}
		if err := s.producer.PublishOrderCanceled(ctx, w.OrderID, "payment cancelled"); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish order.canceled event",
				slog.String("order_id", w.OrderID),
				slog.String("error", err.Error()),
			)
		}
		if err := s.transition(w, domain.StatePaymentCancelled); err != nil {
			return err
		}
		w.Message = result.Message
	}

	s.logger.InfoContext(ctx, "payment settled",
		slog.String("workflow_id", w.ID),
		slog.String("order_id", w.OrderID),
		slog.String("outcome", result.Outcome),
		slog.Int64("amount", result.Amount),
	)

	return nil
}

// removePurchasedLines drops the bought lines from the cart after a
// successful settlement; unselected lines survive for the next attempt.
func (s *WorkflowService) removePurchasedLines(ctx context.Context, w *domain.Workflow) {
	cart, err := s.carts.Get(ctx, w.SessionID)
	if err != nil {
		s.logger.WarnContext(ctx, "could not load cart for post-payment cleanup",
			slog.String("session_id", w.SessionID),
			slog.String("error", err.Error()),
		)
		return
	}

	remaining := cart.Lines[:0]
	for _, line := range cart.Lines {
		if !line.Selected {
			remaining = append(remaining, line)
		}
	}
	cart.Lines = remaining
	cart.Version++
	cart.UpdatedAt = time.Now().UTC()

	if err := s.carts.Save(ctx, cart); err != nil {
		s.logger.WarnContext(ctx, "could not save cart after post-payment cleanup",
			slog.String("session_id", w.SessionID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *WorkflowService) handle(workflowID string) (*domain.Workflow, *sync.Mutex, error) {
	s.mu.RLock()
	w, ok := s.workflows[workflowID]
	lock := s.locks[workflowID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil, apperrors.NotFound("workflow", workflowID)
	}
	return w, lock, nil
}

// transition moves the workflow into target after checking the state table.
// A rejected move here means the orchestrator and the table disagree; it is
// surfaced as a conflict rather than applied silently.
func (s *WorkflowService) transition(w *domain.Workflow, target string) error {
	if !w.CanTransitionTo(target) {
		return apperrors.Conflict(fmt.Sprintf("workflow cannot move from %s to %s", w.State, target))
	}
	w.State = target
	return nil
}

// snapshot returns a copy of the workflow so callers never observe fields
// mid-transition.
func (s *WorkflowService) snapshot(w *domain.Workflow) *domain.Workflow {
	cp := *w
	if w.Shipping != nil {
		sh := *w.Shipping
		cp.Shipping = &sh
	}
	return &cp
}

func unavailableMessage(cart *domain.Cart) string {
	var titles []string
	for _, line := range cart.Lines {
		if !line.Available {
			titles = append(titles, line.Title)
		}
	}
	return fmt.Sprintf("some items are no longer available: %s", strings.Join(titles, ", "))
}

func reducedMessage(cart *domain.Cart) string {
	var titles []string
	for _, line := range cart.Lines {
		if line.PartiallyReduced {
			titles = append(titles, line.Title)
		}
	}
	if len(titles) == 0 {
		return ""
	}
	return fmt.Sprintf("quantities were reduced to available stock: %s", strings.Join(titles, ", "))
}
