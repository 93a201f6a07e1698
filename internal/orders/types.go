package orders

// Order statuses. An order is created as pending_payment and only the
// reconciliation worker moves it forward.
const (
	StatusPendingPayment = "pending_payment"
	StatusPaid           = "paid"
	StatusCancelled      = "cancelled"
)

// Order types accepted by the intake endpoint.
const (
	TypeEcommerce = "ecommerce"
	TypeMission   = "mission"
)

// Customer holds the sanitized contact fields of an order.
type Customer struct {
	Name       string `dynamodbav:"name" json:"name"`
	Email      string `dynamodbav:"email" json:"email"`
	Phone      string `dynamodbav:"phone" json:"phone"`
	Address    string `dynamodbav:"address,omitempty" json:"address,omitempty"`
	City       string `dynamodbav:"city,omitempty" json:"city,omitempty"`
	PostalCode string `dynamodbav:"postal_code,omitempty" json:"postalCode,omitempty"`
	Message    string `dynamodbav:"message,omitempty" json:"message,omitempty"`
}

// LineItem is one server-derived order row. UnitPriceCents is authoritative
// and zero only for mission orders, which are priced manually later.
type LineItem struct {
	SKU            string `dynamodbav:"sku" json:"sku"`
	Name           string `dynamodbav:"name" json:"name"`
	Quantity       int    `dynamodbav:"quantity" json:"quantity"`
	UnitPriceCents int64  `dynamodbav:"unit_price_cents" json:"unitPriceCents"`
}

// Order represents the item stored in the orders DynamoDB table.
type Order struct {
	OrderID       string     `dynamodbav:"order_id" json:"orderId"` // PK
	TrackingCode  string     `dynamodbav:"tracking_code" json:"trackingCode"`
	OrderType     string     `dynamodbav:"order_type" json:"orderType"`
	Customer      Customer   `dynamodbav:"customer" json:"customer"`
	Items         []LineItem `dynamodbav:"items" json:"items"`
	SubtotalCents int64      `dynamodbav:"subtotal_cents" json:"subtotalCents"`
	TaxCents      int64      `dynamodbav:"tax_cents" json:"taxCents"`
	TotalCents    int64      `dynamodbav:"total_cents" json:"totalCents"`
	Status        string     `dynamodbav:"status" json:"status"` // pending_payment | paid | cancelled

	// Metadata is operator-stripped storefront context; never trusted for
	// money math.
	Metadata map[string]interface{} `dynamodbav:"metadata,omitempty" json:"metadata,omitempty"`

	CreatedAt int64 `dynamodbav:"created_at" json:"createdAt"` // epoch milliseconds
	UpdatedAt int64 `dynamodbav:"updated_at" json:"updatedAt"` // epoch milliseconds
}
