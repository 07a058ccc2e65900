package models

import "time"

// Friend is one participant's submitted order within a session.
// Products and the derived amounts are fixed at join time; HasPaid is the only
// field that changes afterwards.
type Friend struct {
	// ID is the unique identifier for the friend (UUID format).
	ID string `json:"id"`

	// SessionID is the session this friend joined.
	SessionID string `json:"-"`

	Name          string        `json:"name"`
	Products      []Product     `json:"products"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	HasPaid       bool          `json:"hasPaid"`

	// Subtotal is the sum of the friend's product line totals.
	Subtotal float64 `json:"subtotal"`

	// TaxAmount and ServiceAmount are the session percentages applied to Subtotal.
	TaxAmount     float64 `json:"taxAmount"`
	ServiceAmount float64 `json:"serviceAmount"`

	// DeliveryShare is this friend's even share of the session delivery fee.
	DeliveryShare float64 `json:"deliveryShare"`

	// TotalAmount = Subtotal + TaxAmount + ServiceAmount + DeliveryShare.
	TotalAmount float64 `json:"totalAmount"`

	JoinedAt time.Time `json:"joinedAt"`
}

// Product is a single line item on a friend's order.
type Product struct {
	// ID is the unique identifier for the product (UUID format).
	ID string `json:"id"`

	ProductName string  `json:"productName"`
	UnitPrice   float64 `json:"unitPrice"`
	Quantity    int     `json:"quantity"`
}

// LineTotal returns UnitPrice × Quantity.
func (p Product) LineTotal() float64 {
	return p.UnitPrice * float64(p.Quantity)
}
