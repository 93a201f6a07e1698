package validation

import (
	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a configured validator with custom struct-level validation registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// register struct-level validation for SubmitOrderRequest: the fields an
	// order requires depend on its orderType, which tags alone cannot express.
	v.RegisterStructValidation(submitOrderStructValidation, SubmitOrderRequest{})

	return v
}

// submitOrderStructValidation enforces the orderType-conditional shape:
// ecommerce carries a cart and a shipping address, mission carries only a
// product interest list.
func submitOrderStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(SubmitOrderRequest)

	switch req.OrderType {
	case "ecommerce":
		if req.Address == "" {
			sl.ReportError(req.Address, "address", "Address", "required_for_ecommerce", "")
		}
		if req.City == "" {
			sl.ReportError(req.City, "city", "City", "required_for_ecommerce", "")
		}
		if req.PostalCode == "" {
			sl.ReportError(req.PostalCode, "postalCode", "PostalCode", "required_for_ecommerce", "")
		}
		if len(req.CartItems) == 0 {
			sl.ReportError(req.CartItems, "cartItems", "CartItems", "required_for_ecommerce", "")
		}
		if req.TotalPrice <= 0 {
			sl.ReportError(req.TotalPrice, "totalPrice", "TotalPrice", "positive_for_ecommerce", "")
		}
	case "mission":
		if len(req.SelectedProducts) == 0 {
			sl.ReportError(req.SelectedProducts, "selectedProducts", "SelectedProducts", "required_for_mission", "")
		}
	}
}
