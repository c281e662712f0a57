package coupon

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func d(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func TestApplyDiscountFixed(t *testing.T) {
	tests := []struct {
		name      string
		total     string
		magnitude string
		want      string
	}{
		{"partial discount", "210.00", "10.00", "200.00"},
		{"discount exceeds total clamps to zero", "210.00", "300.00", "0"},
		{"exact discount", "210.00", "210.00", "0.00"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := Coupon{Code: "C", Kind: KindFixed, Magnitude: d(tc.magnitude), Verified: true}
			got := ApplyDiscount(d(tc.total), c)
			if !got.Equal(d(tc.want)) {
				t.Fatalf("discounted = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestApplyDiscountPercent(t *testing.T) {
	c := Coupon{Code: "C", Kind: KindPercent, Magnitude: d("20"), Verified: true}
	got := ApplyDiscount(d("210.00"), c)
	if !got.Equal(d("168.00")) {
		t.Fatalf("discounted = %s, want 168.00", got)
	}

	full := Coupon{Code: "C", Kind: KindPercent, Magnitude: d("100"), Verified: true}
	if got := ApplyDiscount(d("210.00"), full); !got.Equal(decimal.Zero) {
		t.Fatalf("discounted = %s, want 0", got)
	}
}

func TestApplyDiscountUnverifiedNeverAffectsTotal(t *testing.T) {
	c := Coupon{Code: "C", Kind: KindPercent, Magnitude: d("50"), Verified: false}
	got := ApplyDiscount(d("100.00"), c)
	if !got.Equal(d("100.00")) {
		t.Fatalf("unverified coupon changed the total: %s", got)
	}

	if got := ApplyDiscount(d("100.00"), Coupon{}); !got.Equal(d("100.00")) {
		t.Fatalf("zero coupon changed the total: %s", got)
	}
}

func TestFromVerification(t *testing.T) {
	c, err := FromVerification("SAVE10", "percent", d("10"))
	if err != nil {
		t.Fatalf("from verification: %v", err)
	}
	if !c.Verified || c.Kind != KindPercent || c.Code != "SAVE10" {
		t.Fatalf("unexpected coupon: %+v", c)
	}
	if !c.Applies() {
		t.Fatal("expected verified coupon to apply")
	}
}

func TestFromVerificationValidation(t *testing.T) {
	if _, err := FromVerification("  ", "percent", d("10")); !errors.Is(err, ErrEmptyCode) {
		t.Fatalf("expected ErrEmptyCode, got %v", err)
	}
	if _, err := FromVerification("SAVE10", "bogus", d("10")); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestKindLabelRoundTrip(t *testing.T) {
	for _, kind := range []Kind{KindFixed, KindPercent} {
		parsed, err := KindFromLabel(kind.Label())
		if err != nil {
			t.Fatalf("parse label %q: %v", kind.Label(), err)
		}
		if parsed != kind {
			t.Fatalf("round trip %v != %v", parsed, kind)
		}
	}
	if (KindUnspecified).Label() != "" {
		t.Fatal("unspecified kind should have empty label")
	}
}
