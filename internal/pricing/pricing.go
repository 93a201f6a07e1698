// Package pricing re-derives order money math from scratch. Client-submitted
// price strings are display values only; everything the order stores is
// recomputed here in integer cents.
package pricing

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Bounds for a single submission. A violation means tampering or corruption,
// not a user mistake, and rejects the whole order.
const (
	MinUnitPriceCents = 1         // $0.01
	MaxUnitPriceCents = 1_000_000 // $10,000.00
	MinQuantity       = 1
	MaxQuantity       = 100
	MaxItems          = 50
	MaxSubtotalCents  = 10_000_000 // $100,000.00
)

// ErrPriceIntegrity is the sentinel for every bound violation in this
// package. Callers match it with errors.Is and respond generically.
var ErrPriceIntegrity = errors.New("price integrity violation")

// CartLine is one client-submitted cart row, untrusted.
type CartLine struct {
	SKU       string
	Name      string
	PriceText string // currency-formatted display value, e.g. "$5.00"
	Quantity  int
}

// Line is the server-derived, trusted counterpart of a CartLine.
type Line struct {
	SKU            string
	Name           string
	Quantity       int
	UnitPriceCents int64
}

// Totals holds the recomputed order totals in cents.
type Totals struct {
	SubtotalCents int64
	TaxCents      int64
	TotalCents    int64
}

// ParsePriceCents parses a currency-formatted display string into integer
// cents: strip everything except digits and the decimal point, parse as a
// decimal, round at the second decimal place.
func ParsePriceCents(text string) (int64, error) {
	var b strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, fmt.Errorf("%w: unparsable price %q", ErrPriceIntegrity, text)
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: unparsable price %q", ErrPriceIntegrity, text)
	}
	return int64(math.Round(v * 100)), nil
}

// Recompute walks the submitted cart, re-derives each unit price and
// quantity against the allowed bounds, and accumulates authoritative
// totals. Tax is currently always zero; the field stays for future use.
// Any violation rejects the entire order.
func Recompute(cart []CartLine) ([]Line, Totals, error) {
	if len(cart) == 0 {
		return nil, Totals{}, fmt.Errorf("%w: empty cart", ErrPriceIntegrity)
	}
	if len(cart) > MaxItems {
		return nil, Totals{}, fmt.Errorf("%w: %d items exceeds limit of %d", ErrPriceIntegrity, len(cart), MaxItems)
	}

	lines := make([]Line, 0, len(cart))
	var subtotal int64
	for _, item := range cart {
		cents, err := ParsePriceCents(item.PriceText)
		if err != nil {
			return nil, Totals{}, err
		}
		if cents < MinUnitPriceCents || cents > MaxUnitPriceCents {
			return nil, Totals{}, fmt.Errorf("%w: unit price %d cents out of range for sku %s", ErrPriceIntegrity, cents, item.SKU)
		}
		if item.Quantity < MinQuantity || item.Quantity > MaxQuantity {
			return nil, Totals{}, fmt.Errorf("%w: quantity %d out of range for sku %s", ErrPriceIntegrity, item.Quantity, item.SKU)
		}

		subtotal += cents * int64(item.Quantity)
		if subtotal > MaxSubtotalCents {
			return nil, Totals{}, fmt.Errorf("%w: subtotal exceeds ceiling of %d cents", ErrPriceIntegrity, MaxSubtotalCents)
		}

		lines = append(lines, Line{
			SKU:            item.SKU,
			Name:           item.Name,
			Quantity:       item.Quantity,
			UnitPriceCents: cents,
		})
	}

	totals := Totals{
		SubtotalCents: subtotal,
		TaxCents:      0,
		TotalCents:    subtotal,
	}
	return lines, totals, nil
}
