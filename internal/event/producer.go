// Package event publishes order workflow domain events to Kafka.
package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hivx/My-store/internal/domain"
	pkgkafka "github.com/hivx/My-store/pkg/kafka"
)

// Kafka topic constants for workflow domain events.
const (
	TopicOrderCreated     = "mystore.order.created"
	TopicInvoiceGenerated = "mystore.invoice.generated"
	TopicPaymentSettled   = "mystore.payment.settled"
	TopicOrderCanceled    = "mystore.order.canceled"
)

// Aggregate type constants.
const (
	AggregateTypeOrder   = "order"
	AggregateTypeInvoice = "invoice"
)

// Source identifier for events originating from this service.
const SourceOrderflow = "orderflow-service"

// OrderCreatedData is the payload for an order.created event (full order snapshot).
type OrderCreatedData struct {
	ID             string               `json:"id"`
	SessionID      string               `json:"session_id"`
	Status         string               `json:"status"`
	Lines          []OrderLineData      `json:"lines"`
	SubtotalAmount int64                `json:"subtotal_amount"`
	VATAmount      int64                `json:"vat_amount"`
	Amount         int64                `json:"amount"`
	ShippingFees   int64                `json:"shipping_fees"`
	Currency       string               `json:"currency"`
	Shipping       *domain.ShippingInfo `json:"shipping,omitempty"`
}

// OrderLineData is the event payload for an order line.
type OrderLineData struct {
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// InvoiceGeneratedData is the payload for an invoice.generated event.
type InvoiceGeneratedData struct {
	InvoiceID   string `json:"invoice_id"`
	OrderID     string `json:"order_id"`
	TotalAmount int64  `json:"total_amount"`
	Currency    string `json:"currency"`
}

// PaymentSettledData is the payload for a payment.settled event.
type PaymentSettledData struct {
	OrderID       string `json:"order_id"`
	InvoiceID     string `json:"invoice_id"`
	TransactionID string `json:"transaction_id"`
	Outcome       string `json:"outcome"`
	Amount        int64  `json:"amount"`
}

// OrderCanceledData is the payload for an order.canceled event.
type OrderCanceledData struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

// Producer publishes workflow domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishOrderCreated publishes an order.created event with the full order snapshot.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	lines := make([]OrderLineData, len(order.Lines))
	for i, line := range order.Lines {
		lines[i] = OrderLineData{
			ProductID: line.ProductID,
			Title:     line.Title,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		}
	}

	data := OrderCreatedData{
		ID:             order.ID,
		SessionID:      order.SessionID,
		Status:         order.Status,
		Lines:          lines,
		SubtotalAmount: order.SubtotalAmount,
		VATAmount:      order.VATAmount,
		Amount:         order.Amount,
		ShippingFees:   order.ShippingFees,
		Currency:       order.Currency,
		Shipping:       order.Shipping,
	}

	event, err := pkgkafka.NewEvent(TopicOrderCreated, order.ID, AggregateTypeOrder, SourceOrderflow, data)
	if err != nil {
		return fmt.Errorf("create order.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderCreated, event); err != nil {
		return fmt.Errorf("publish order.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.created event",
		slog.String("order_id", order.ID),
		slog.String("session_id", order.SessionID),
	)

	return nil
}

// PublishInvoiceGenerated publishes an invoice.generated event.
func (p *Producer) PublishInvoiceGenerated(ctx context.Context, invoice *domain.Invoice) error {
	data := InvoiceGeneratedData{
		InvoiceID:   invoice.ID,
		OrderID:     invoice.OrderID,
		TotalAmount: invoice.TotalAmount,
		Currency:    invoice.Currency,
	}

	event, err := pkgkafka.NewEvent(TopicInvoiceGenerated, invoice.ID, AggregateTypeInvoice, SourceOrderflow, data)
	if err != nil {
		return fmt.Errorf("create invoice.generated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicInvoiceGenerated, event); err != nil {
		return fmt.Errorf("publish invoice.generated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published invoice.generated event",
		slog.String("invoice_id", invoice.ID),
		slog.String("order_id", invoice.OrderID),
	)

	return nil
}

// PublishPaymentSettled publishes a payment.settled event for any settlement
// outcome, succeeded or not.
func (p *Producer) PublishPaymentSettled(ctx context.Context, invoiceID string, result *domain.PaymentResult) error {
	data := PaymentSettledData{
		OrderID:       result.OrderID,
		InvoiceID:     invoiceID,
		TransactionID: result.TransactionID,
		Outcome:       result.Outcome,
		Amount:        result.Amount,
	}

	event, err := pkgkafka.NewEvent(TopicPaymentSettled, result.OrderID, AggregateTypeOrder, SourceOrderflow, data)
	if err != nil {
		return fmt.Errorf("create payment.settled event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicPaymentSettled, event); err != nil {
		return fmt.Errorf("publish payment.settled event: %w", err)
	}

	p.logger.DebugContext(ctx, "published payment.settled event",
		slog.String("order_id", result.OrderID),
		slog.String("outcome", result.Outcome),
	)

	return nil
}

// PublishOrderCanceled publishes an order.canceled event.
func (p *Producer) PublishOrderCanceled(ctx context.Context, orderID, reason string) error {
	data := OrderCanceledData{
		OrderID: orderID,
		Reason:  reason,
	}

	event, err := pkgkafka.NewEvent(TopicOrderCanceled, orderID, AggregateTypeOrder, SourceOrderflow, data)
	if err != nil {
		return fmt.Errorf("create order.canceled event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderCanceled, event); err != nil {
		return fmt.Errorf("publish order.canceled event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.canceled event",
		slog.String("order_id", orderID),
		slog.String("reason", reason),
	)

	return nil
}
