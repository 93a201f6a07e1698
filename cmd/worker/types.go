package main

// Reconciliation actions the admin tooling can request.
const (
	ActionPaid      = "paid"
	ActionCancelled = "cancelled"
)

// PaymentEvent is the payload the admin tooling publishes when a manual
// e-Transfer is matched (or given up on).
type PaymentEvent struct {
	OrderID       string `json:"order_id"`
	TrackingCode  string `json:"tracking_code"`
	Action        string `json:"action"` // paid | cancelled
	CorrelationID string `json:"correlation_id,omitempty"`
}
