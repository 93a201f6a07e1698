package orders

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/farmdirect/go-order-intake/internal/pricing"
)

// Assemble builds the canonical order record from sanitized customer fields,
// validated line items, and recomputed totals. It performs no I/O; an empty
// item list reaching this point is an invariant violation upstream, not a
// user-facing error.
func Assemble(orderType string, customer Customer, items []LineItem, totals pricing.Totals, metadata map[string]interface{}, now time.Time) (Order, error) {
	if len(items) == 0 {
		return Order{}, fmt.Errorf("assemble: no line items")
	}

	code, err := NewTrackingCode()
	if err != nil {
		return Order{}, fmt.Errorf("assemble: %w", err)
	}

	ms := now.UnixMilli()
	return Order{
		OrderID:       uuid.NewString(),
		TrackingCode:  code,
		OrderType:     orderType,
		Customer:      customer,
		Items:         items,
		SubtotalCents: totals.SubtotalCents,
		TaxCents:      totals.TaxCents,
		TotalCents:    totals.TotalCents,
		Status:        StatusPendingPayment,
		Metadata:      metadata,
		CreatedAt:     ms,
		UpdatedAt:     ms,
	}, nil
}
