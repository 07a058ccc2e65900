package calculator

import (
	"math"
	"testing"

	"github.com/mmynk/splitcheck/internal/models"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name       string
		orderTotal float64
		friends    []FriendForSummary
		want       Totals
	}{
		{
			name:       "no friends yet",
			orderTotal: 100,
			want:       Totals{RemainingFromOrder: 100},
		},
		{
			name:       "paid friends split by method, unpaid pooled",
			orderTotal: 200,
			friends: []FriendForSummary{
				{TotalAmount: 67.5, PaymentMethod: models.PaymentInstaPay, HasPaid: true},
				{TotalAmount: 40.25, PaymentMethod: models.PaymentCash, HasPaid: true},
				{TotalAmount: 30, PaymentMethod: models.PaymentInstaPay, HasPaid: false},
				{TotalAmount: 12.25, PaymentMethod: models.PaymentCash, HasPaid: false},
				{TotalAmount: 10.1, PaymentMethod: models.PaymentCash, HasPaid: true},
			},
			want: Totals{
				PaidInstaPay:       67.5,
				PaidCash:           50.35,
				Unpaid:             42.25,
				Collected:          117.85,
				Declared:           160.1,
				RemainingFromOrder: 39.9,
				FriendsCount:       5,
			},
		},
		{
			name:       "friends declare more than the bill",
			orderTotal: 50,
			friends: []FriendForSummary{
				{TotalAmount: 30, PaymentMethod: models.PaymentCash},
				{TotalAmount: 30, PaymentMethod: models.PaymentCash},
			},
			want: Totals{Unpaid: 60, Declared: 60, RemainingFromOrder: -10, FriendsCount: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.orderTotal, tt.friends)
			assertAmount(t, "PaidInstaPay", got.PaidInstaPay, tt.want.PaidInstaPay)
			assertAmount(t, "PaidCash", got.PaidCash, tt.want.PaidCash)
			assertAmount(t, "Unpaid", got.Unpaid, tt.want.Unpaid)
			assertAmount(t, "Collected", got.Collected, tt.want.Collected)
			assertAmount(t, "Declared", got.Declared, tt.want.Declared)
			assertAmount(t, "RemainingFromOrder", got.RemainingFromOrder, tt.want.RemainingFromOrder)
			if got.FriendsCount != tt.want.FriendsCount {
				t.Errorf("FriendsCount = %d, want %d", got.FriendsCount, tt.want.FriendsCount)
			}
		})
	}
}

func TestSummarizeTogglingDoesNotChangeDeclared(t *testing.T) {
	friends := []FriendForSummary{
		{TotalAmount: 25.5, PaymentMethod: models.PaymentInstaPay, HasPaid: false},
		{TotalAmount: 14.5, PaymentMethod: models.PaymentCash, HasPaid: true},
	}
	before := Summarize(40, friends)

	friends[0].HasPaid = true
	after := Summarize(40, friends)

	assertAmount(t, "Declared", after.Declared, before.Declared)
	assertAmount(t, "PaidInstaPay", after.PaidInstaPay, 25.5)
	assertAmount(t, "Unpaid", after.Unpaid, 0)
}

func TestSummarizeIgnoresNonFiniteAmounts(t *testing.T) {
	friends := []FriendForSummary{
		{TotalAmount: math.Inf(1), PaymentMethod: models.PaymentCash, HasPaid: true},
		{TotalAmount: 12, PaymentMethod: models.PaymentInstaPay, HasPaid: false},
	}

	got := Summarize(50, friends)

	assertAmount(t, "PaidCash", got.PaidCash, 0)
	assertAmount(t, "Unpaid", got.Unpaid, 12)
	assertAmount(t, "RemainingFromOrder", got.RemainingFromOrder, 38)
	if got.FriendsCount != 2 {
		t.Errorf("FriendsCount = %d, want 2", got.FriendsCount)
	}
}
