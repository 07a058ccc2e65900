package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitcheck/internal/models"
)

// FriendForSummary represents a friend with the minimal information needed to
// build a session summary.
type FriendForSummary struct {
	TotalAmount   float64
	PaymentMethod models.PaymentMethod
	HasPaid       bool
}

// Totals are the session-wide payment figures.
type Totals struct {
	PaidInstaPay       float64
	PaidCash           float64
	Unpaid             float64
	Collected          float64 // PaidInstaPay + PaidCash
	Declared           float64 // Σ total over all friends
	RemainingFromOrder float64 // orderTotal - Declared
	FriendsCount       int
}

// Summarize folds all friends of a session into payment totals.
// Paid friends count toward their payment method; unpaid friends count toward
// Unpaid regardless of method.
func Summarize(orderTotal float64, friends []FriendForSummary) Totals {
	paidInstaPay := decimal.Zero
	paidCash := decimal.Zero
	unpaid := decimal.Zero

	for _, f := range friends {
		amount := amountOf(f.TotalAmount)
		switch {
		case !f.HasPaid:
			unpaid = unpaid.Add(amount)
		case f.PaymentMethod == models.PaymentInstaPay:
			paidInstaPay = paidInstaPay.Add(amount)
		default:
			paidCash = paidCash.Add(amount)
		}
	}

	collected := paidInstaPay.Add(paidCash)
	declared := collected.Add(unpaid)
	remaining := amountOf(orderTotal).Sub(declared)

	return Totals{
		PaidInstaPay:       roundToCents(paidInstaPay).InexactFloat64(),
		PaidCash:           roundToCents(paidCash).InexactFloat64(),
		Unpaid:             roundToCents(unpaid).InexactFloat64(),
		Collected:          roundToCents(collected).InexactFloat64(),
		Declared:           roundToCents(declared).InexactFloat64(),
		RemainingFromOrder: roundToCents(remaining).InexactFloat64(),
		FriendsCount:       len(friends),
	}
}

// amountOf converts a stored amount. Non-finite values count as zero so a
// single bad row cannot make the whole summary fail.
func amountOf(v float64) decimal.Decimal {
	if !isFinite(v) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}
