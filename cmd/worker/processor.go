package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"

	"github.com/farmdirect/go-order-intake/internal/awsx"
	"github.com/farmdirect/go-order-intake/internal/orders"
)

// Processor consumes payment-reconciliation events and transitions orders
// out of pending_payment.
type Processor struct {
	orderStore *orders.Store
	log        *slog.Logger
}

// NewProcessor creates a worker processor with AWS clients injected.
func NewProcessor(dynamo awsx.DynamoDBAPI, ordersTable string, log *slog.Logger) *Processor {
	return &Processor{
		orderStore: orders.NewStore(dynamo, ordersTable),
		log:        log,
	}
}

// Handle receives an SQS batch event and processes each message.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) error {
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			// Return error: Lambda will retry. If failed too many times, message goes to DLQ.
			p.log.Error("worker error", "err", err)
			return err
		}
	}
	return nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var ev PaymentEvent
	if err := json.Unmarshal([]byte(rec.Body), &ev); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}

	p.log.Info("received payment event",
		"order_id", ev.OrderID, "action", ev.Action, "corr", ev.CorrelationID)

	var target string
	switch ev.Action {
	case ActionPaid:
		target = orders.StatusPaid
	case ActionCancelled:
		target = orders.StatusCancelled
	default:
		return fmt.Errorf("unknown action %q for order=%s", ev.Action, ev.OrderID)
	}

	order, err := p.orderStore.Get(ctx, ev.OrderID)
	if err != nil {
		return fmt.Errorf("failed to fetch order: %w", err)
	}
	if order == nil {
		// Should never happen -- DLQ if it does
		return fmt.Errorf("order not found: %s", ev.OrderID)
	}

	// The tracking code is the payment-matching token; a mismatch means the
	// event was built against the wrong order.
	if order.TrackingCode != ev.TrackingCode {
		return fmt.Errorf("tracking code mismatch for order=%s", ev.OrderID)
	}

	if order.Status == target {
		// duplicate delivery, already reconciled
		p.log.Info("order already reconciled", "order_id", ev.OrderID, "status", target)
		return nil
	}

	err = p.orderStore.UpdateStatus(ctx, ev.OrderID, orders.StatusPendingPayment, target)
	if errors.Is(err, orders.ErrStatusMismatch) {
		// Competing worker or a conflicting earlier event: re-read and decide.
		o2, getErr := p.orderStore.Get(ctx, ev.OrderID)
		if getErr != nil {
			return fmt.Errorf("failed to re-fetch order after conflict: %w", getErr)
		}
		if o2 == nil {
			return fmt.Errorf("order=%s missing on re-fetch after conflict", ev.OrderID)
		}
		if o2.Status == target {
			p.log.Info("concurrent reconciliation already applied", "order_id", ev.OrderID)
			return nil
		}
		return fmt.Errorf("order=%s cannot move to %s from %s", ev.OrderID, target, o2.Status)
	}
	if err != nil {
		return fmt.Errorf("failed to update status to %s: %w", target, err)
	}

	p.log.Info("order reconciled", "order_id", ev.OrderID, "status", target)
	return nil
}
