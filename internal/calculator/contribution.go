// Package calculator apportions a shared bill between friends.
// It is pure arithmetic: no storage, no I/O.
package calculator

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrMissingName      = errors.New("participant name is required")
	ErrNoValidProducts  = errors.New("at least one product with a name and a positive price is required")
	ErrInvalidSharers   = errors.New("delivery must be shared by at least one friend")
	ErrAmountOutOfRange = errors.New("amount is too large to compute")
)

var hundred = decimal.NewFromInt(100)

// Product is one submitted line item.
type Product struct {
	Name      string
	UnitPrice float64
	Quantity  int
}

// Fees holds the session charges applied to every friend. A zero value means
// the charge is absent.
type Fees struct {
	TaxPercentage     float64
	ServicePercentage float64
	DeliveryFee       float64
}

// Contribution is what one friend owes, computed once at join time.
type Contribution struct {
	// Products are the accepted products, in submission order, with trimmed names.
	Products []Product

	Subtotal float64
	Tax      float64
	Service  float64
	Delivery float64
	Total    float64
}

// FilterProducts drops products without a name, with a non-positive price, or
// with a quantity below one. Order is preserved.
func FilterProducts(products []Product) []Product {
	accepted := make([]Product, 0, len(products))
	for _, p := range products {
		name := strings.TrimSpace(p.Name)
		if name == "" || p.UnitPrice <= 0 || p.Quantity < 1 {
			continue
		}
		p.Name = name
		accepted = append(accepted, p)
	}
	return accepted
}

// DeliverySharers returns how many friends split the delivery fee.
// The expected count wins when the initiator gave one; otherwise the fee is
// divided between the friends already joined and the one joining now.
func DeliverySharers(expected, joined int) int {
	if expected > 0 {
		return expected
	}
	return joined + 1
}

// CalculateContribution computes one friend's share of the bill.
//
// Algorithm:
//   - subtotal = Σ unit_price × quantity over accepted products
//   - tax      = subtotal × tax% / 100
//   - service  = subtotal × service% / 100
//   - delivery = delivery_fee / sharers
//   - total    = subtotal + tax + service + delivery
//
// Each component is rounded to cents before summing, so the total always
// equals the sum of the reported parts.
func CalculateContribution(name string, products []Product, fees Fees, sharers int) (*Contribution, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrMissingName
	}

	accepted := FilterProducts(products)
	if len(accepted) == 0 {
		return nil, ErrNoValidProducts
	}
	if !fees.finite() {
		return nil, ErrAmountOutOfRange
	}
	for _, p := range accepted {
		if !isFinite(p.UnitPrice) {
			return nil, ErrAmountOutOfRange
		}
	}

	subtotal := decimal.Zero
	for _, p := range accepted {
		line := decimal.NewFromFloat(p.UnitPrice).Mul(decimal.NewFromInt(int64(p.Quantity)))
		subtotal = subtotal.Add(line)
	}
	subtotal = roundToCents(subtotal)

	tax := roundToCents(percentOf(subtotal, fees.TaxPercentage))
	service := roundToCents(percentOf(subtotal, fees.ServicePercentage))

	delivery := decimal.Zero
	if fees.DeliveryFee > 0 {
		if sharers < 1 {
			return nil, ErrInvalidSharers
		}
		delivery = roundToCents(decimal.NewFromFloat(fees.DeliveryFee).Div(decimal.NewFromInt(int64(sharers))))
	}

	total := subtotal.Add(tax).Add(service).Add(delivery)

	c := &Contribution{
		Products: accepted,
		Subtotal: subtotal.InexactFloat64(),
		Tax:      tax.InexactFloat64(),
		Service:  service.InexactFloat64(),
		Delivery: delivery.InexactFloat64(),
		Total:    total.InexactFloat64(),
	}
	// Decimals don't overflow but float64 does; an infinite amount can't be
	// stored, encoded or summed later.
	for _, v := range []float64{c.Subtotal, c.Tax, c.Service, c.Delivery, c.Total} {
		if !isFinite(v) {
			return nil, ErrAmountOutOfRange
		}
	}
	return c, nil
}

func (f Fees) finite() bool {
	return isFinite(f.TaxPercentage) && isFinite(f.ServicePercentage) && isFinite(f.DeliveryFee)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func percentOf(amount decimal.Decimal, percentage float64) decimal.Decimal {
	if percentage <= 0 {
		return decimal.Zero
	}
	return amount.Mul(decimal.NewFromFloat(percentage)).Div(hundred)
}

// roundToCents rounds half away from zero to 2 decimal places.
func roundToCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
