package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/impulso-music/impulso/internal/services/campaign/domain/coupon"
)

func d(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func TestServiceFeeExact(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"100", "5"},
		{"500", "25"},
		{"2000", "100"},
		{"333", "16.65"},
	}
	for _, tc := range tests {
		if got := ServiceFee(d(tc.base)); !got.Equal(d(tc.want)) {
			t.Fatalf("ServiceFee(%s) = %s, want %s", tc.base, got, tc.want)
		}
	}
}

func TestTotalBeforeDiscount(t *testing.T) {
	if got := TotalBeforeDiscount(d("500")); !got.Equal(d("525")) {
		t.Fatalf("total = %s, want 525", got)
	}
}

func TestBuildQuoteWithoutCoupon(t *testing.T) {
	quote := BuildQuote(d("100"), coupon.Coupon{})

	if !quote.ServiceFee.Equal(d("5")) {
		t.Fatalf("fee = %s, want 5", quote.ServiceFee)
	}
	if !quote.Total.Equal(d("105")) {
		t.Fatalf("total = %s, want 105", quote.Total)
	}
	if !quote.FinalAmount.Equal(d("105")) {
		t.Fatalf("final = %s, want 105", quote.FinalAmount)
	}
	if !quote.Discount.IsZero() {
		t.Fatalf("discount = %s, want 0", quote.Discount)
	}
	if quote.CouponCode != "" {
		t.Fatalf("coupon code = %q, want empty", quote.CouponCode)
	}
}

func TestBuildQuotePercentCoupon(t *testing.T) {
	c, err := coupon.FromVerification("SAVE10", "percent", d("10"))
	if err != nil {
		t.Fatalf("coupon: %v", err)
	}

	// 500 * 1.05 * 0.9 = 472.50
	quote := BuildQuote(d("500"), c)
	if !quote.FinalAmount.Equal(d("472.50")) {
		t.Fatalf("final = %s, want 472.50", quote.FinalAmount)
	}
	if !quote.Discount.Equal(d("52.50")) {
		t.Fatalf("discount = %s, want 52.50", quote.Discount)
	}
	if quote.CouponCode != "SAVE10" {
		t.Fatalf("coupon code = %q, want SAVE10", quote.CouponCode)
	}
}

func TestBuildQuoteFixedCouponClampsAtZero(t *testing.T) {
	c, err := coupon.FromVerification("GRATIS", "fixed", d("300"))
	if err != nil {
		t.Fatalf("coupon: %v", err)
	}

	quote := BuildQuote(d("200"), c)
	if !quote.FinalAmount.IsZero() {
		t.Fatalf("final = %s, want 0", quote.FinalAmount)
	}
	if !quote.Discount.Equal(d("210")) {
		t.Fatalf("discount = %s, want 210", quote.Discount)
	}
}

// The summary screen and the PIX screen both price through BuildQuote; for
// identical inputs the fee must be numerically identical.
func TestQuoteFeeMatchesServiceFee(t *testing.T) {
	base := d("777")
	quote := BuildQuote(base, coupon.Coupon{})
	if !quote.ServiceFee.Equal(ServiceFee(base)) {
		t.Fatalf("quote fee %s diverges from ServiceFee %s", quote.ServiceFee, ServiceFee(base))
	}
}
