package calculator

import (
	"errors"
	"math"
	"testing"
)

func TestCalculateContribution(t *testing.T) {
	tests := []struct {
		name         string
		friend       string
		products     []Product
		fees         Fees
		sharers      int
		wantErr      error
		validateFunc func(t *testing.T, c *Contribution)
	}{
		{
			name:     "tax, service and even delivery split",
			friend:   "Alice",
			products: []Product{{Name: "Burger", UnitPrice: 50, Quantity: 1}},
			fees:     Fees{TaxPercentage: 10, ServicePercentage: 5, DeliveryFee: 20},
			sharers:  2,
			validateFunc: func(t *testing.T, c *Contribution) {
				// subtotal = 50, tax = 5, service = 2.5, delivery = 20 / 2 = 10
				assertAmount(t, "subtotal", c.Subtotal, 50)
				assertAmount(t, "tax", c.Tax, 5)
				assertAmount(t, "service", c.Service, 2.5)
				assertAmount(t, "delivery", c.Delivery, 10)
				assertAmount(t, "total", c.Total, 67.5)
			},
		},
		{
			name:   "quantities multiply unit price",
			friend: "Bob",
			products: []Product{
				{Name: "Falafel", UnitPrice: 7.25, Quantity: 4},
				{Name: "Tea", UnitPrice: 3, Quantity: 2},
			},
			validateFunc: func(t *testing.T, c *Contribution) {
				assertAmount(t, "subtotal", c.Subtotal, 35)
				assertAmount(t, "total", c.Total, 35)
				if len(c.Products) != 2 {
					t.Errorf("accepted products = %d, want 2", len(c.Products))
				}
			},
		},
		{
			name:   "invalid products are dropped before summing",
			friend: "Charlie",
			products: []Product{
				{Name: "Pizza", UnitPrice: 80, Quantity: 1},
				{Name: "", UnitPrice: 30, Quantity: 1},
				{Name: "Free water", UnitPrice: 0, Quantity: 2},
				{Name: "Refund", UnitPrice: -10, Quantity: 1},
				{Name: "Ghost", UnitPrice: 10, Quantity: 0},
			},
			validateFunc: func(t *testing.T, c *Contribution) {
				assertAmount(t, "subtotal", c.Subtotal, 80)
				if len(c.Products) != 1 || c.Products[0].Name != "Pizza" {
					t.Errorf("accepted products = %+v, want only Pizza", c.Products)
				}
			},
		},
		{
			name:     "components are rounded to cents and total is their sum",
			friend:   "Diana",
			products: []Product{{Name: "Pasta", UnitPrice: 19.99, Quantity: 1}},
			fees:     Fees{TaxPercentage: 14, ServicePercentage: 12, DeliveryFee: 10},
			sharers:  3,
			validateFunc: func(t *testing.T, c *Contribution) {
				// tax = 2.7986 -> 2.80, service = 2.3988 -> 2.40, delivery = 3.333 -> 3.33
				assertAmount(t, "tax", c.Tax, 2.80)
				assertAmount(t, "service", c.Service, 2.40)
				assertAmount(t, "delivery", c.Delivery, 3.33)
				sum := c.Subtotal + c.Tax + c.Service + c.Delivery
				assertAmount(t, "total", c.Total, sum)
				assertAmount(t, "total", c.Total, 28.52)
			},
		},
		{
			name:     "no delivery fee ignores sharers",
			friend:   "Eve",
			products: []Product{{Name: "Salad", UnitPrice: 20, Quantity: 1}},
			sharers:  0,
			validateFunc: func(t *testing.T, c *Contribution) {
				assertAmount(t, "delivery", c.Delivery, 0)
				assertAmount(t, "total", c.Total, 20)
			},
		},
		{
			name:     "blank name is rejected",
			friend:   "   ",
			products: []Product{{Name: "Salad", UnitPrice: 20, Quantity: 1}},
			wantErr:  ErrMissingName,
		},
		{
			name:     "all products filtered out is rejected",
			friend:   "Frank",
			products: []Product{{Name: "Water", UnitPrice: 0, Quantity: 1}, {Name: "Bread", UnitPrice: 0, Quantity: 3}},
			wantErr:  ErrNoValidProducts,
		},
		{
			name:     "delivery fee with no sharers is rejected",
			friend:   "Grace",
			products: []Product{{Name: "Soup", UnitPrice: 15, Quantity: 1}},
			fees:     Fees{DeliveryFee: 10},
			sharers:  0,
			wantErr:  ErrInvalidSharers,
		},
		{
			name:     "subtotal beyond float range is rejected",
			friend:   "Heidi",
			products: []Product{{Name: "Yacht", UnitPrice: 1e308, Quantity: 2}},
			wantErr:  ErrAmountOutOfRange,
		},
		{
			name:     "total beyond float range is rejected",
			friend:   "Ivan",
			products: []Product{{Name: "Yacht", UnitPrice: 1e308, Quantity: 1}},
			fees:     Fees{TaxPercentage: 100},
			wantErr:  ErrAmountOutOfRange,
		},
		{
			name:     "non-finite price is rejected",
			friend:   "Judy",
			products: []Product{{Name: "Mystery", UnitPrice: math.Inf(1), Quantity: 1}},
			wantErr:  ErrAmountOutOfRange,
		},
		{
			name:     "non-finite fee is rejected",
			friend:   "Ken",
			products: []Product{{Name: "Soup", UnitPrice: 15, Quantity: 1}},
			fees:     Fees{ServicePercentage: math.NaN()},
			wantErr:  ErrAmountOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := CalculateContribution(tt.friend, tt.products, tt.fees, tt.sharers)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CalculateContribution() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CalculateContribution() unexpected error: %v", err)
			}
			if tt.validateFunc != nil {
				tt.validateFunc(t, c)
			}
		})
	}
}

func TestFilterProductsTrimsNames(t *testing.T) {
	got := FilterProducts([]Product{{Name: "  Shawarma ", UnitPrice: 40, Quantity: 1}})
	if len(got) != 1 {
		t.Fatalf("expected 1 product, got %d", len(got))
	}
	if got[0].Name != "Shawarma" {
		t.Errorf("name = %q, want %q", got[0].Name, "Shawarma")
	}
}

func TestDeliverySharers(t *testing.T) {
	tests := []struct {
		expected, joined, want int
	}{
		{expected: 4, joined: 0, want: 4},
		{expected: 4, joined: 6, want: 4},
		{expected: 0, joined: 0, want: 1},
		{expected: 0, joined: 2, want: 3},
	}

	for _, tt := range tests {
		if got := DeliverySharers(tt.expected, tt.joined); got != tt.want {
			t.Errorf("DeliverySharers(%d, %d) = %d, want %d", tt.expected, tt.joined, got, tt.want)
		}
	}
}

func assertAmount(t *testing.T, field string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 0.001 {
		t.Errorf("%s = %v, want %v", field, got, want)
	}
}
