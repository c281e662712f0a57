// Package pricing is the single source of truth for campaign pricing math.
//
// The service fee rate is defined exactly once here. Every surface that
// shows or charges a total (the wizard summary and the PIX checkout) must go
// through these functions so the two can never diverge.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/impulso-music/impulso/internal/services/campaign/domain/coupon"
)

// feeRate is the marketplace service fee applied on top of the budget.
var feeRate = decimal.RequireFromString("0.05")

// ServiceFee returns the fee charged on a base amount: base * 0.05.
func ServiceFee(base decimal.Decimal) decimal.Decimal {
	return base.Mul(feeRate)
}

// TotalBeforeDiscount returns the base amount plus the service fee.
func TotalBeforeDiscount(base decimal.Decimal) decimal.Decimal {
	return base.Add(ServiceFee(base))
}

// Quote is the full pricing breakdown for one campaign.
type Quote struct {
	Subtotal    decimal.Decimal
	ServiceFee  decimal.Decimal
	Total       decimal.Decimal
	Discount    decimal.Decimal
	FinalAmount decimal.Decimal
	CouponCode  string
}

// BuildQuote computes the pricing breakdown for a base amount and an
// optional coupon. An unverified coupon contributes nothing.
func BuildQuote(base decimal.Decimal, c coupon.Coupon) Quote {
	fee := ServiceFee(base)
	total := base.Add(fee)
	final := coupon.ApplyDiscount(total, c)

	quote := Quote{
		Subtotal:    base,
		ServiceFee:  fee,
		Total:       total,
		Discount:    total.Sub(final),
		FinalAmount: final,
	}
	if c.Applies() {
		quote.CouponCode = c.Code
	}
	return quote
}
