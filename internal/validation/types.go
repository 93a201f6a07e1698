package validation

// CartItem represents a single client-submitted cart row. Price is a
// display string; the pricing engine re-derives the authoritative value.
type CartItem struct {
	ID        string `json:"id" validate:"required,max=50"`          // SKU
	Name      string `json:"name" validate:"required,max=200"`       // display name
	LocalName string `json:"localName,omitempty" validate:"max=200"` // optional localized name
	Price     string `json:"price" validate:"required"`              // currency-formatted, e.g. "$5.00"
	Image     string `json:"image,omitempty"`                        // display only, never stored
	Quantity  int    `json:"quantity" validate:"required,min=1,max=100"`
}

// SubmitOrderRequest is the payload for POST /orders. Which optional fields
// are required depends on OrderType; see the struct-level validation.
type SubmitOrderRequest struct {
	Name             string     `json:"name" validate:"required,min=2,max=200"`
	Email            string     `json:"email" validate:"required,email"`
	Phone            string     `json:"phone" validate:"required,min=10"`
	Address          string     `json:"address,omitempty" validate:"max=200"`
	City             string     `json:"city,omitempty" validate:"max=100"`
	PostalCode       string     `json:"postalCode,omitempty" validate:"max=10"`
	Message          string     `json:"message,omitempty" validate:"max=1000"`
	OrderType        string     `json:"orderType" validate:"required,oneof=ecommerce mission"`
	CartItems        []CartItem `json:"cartItems,omitempty" validate:"omitempty,max=50,dive"`
	SelectedProducts []string   `json:"selectedProducts,omitempty" validate:"omitempty,dive,min=1,max=200"`
	TotalPrice       float64    `json:"totalPrice,omitempty"` // client-claimed, display only

	// Metadata carries optional free-form storefront context (source page,
	// referral). Keys are stripped of query operators before storage.
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}
