// Package coupon holds verified discount coupons and the discount math.
package coupon

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "github.com/impulso-music/impulso/internal/platform/errors"
)

// Kind describes how a coupon discounts the total.
type Kind int

const (
	// KindUnspecified represents an invalid coupon kind value.
	KindUnspecified Kind = iota
	// KindFixed subtracts a fixed currency amount from the total.
	KindFixed
	// KindPercent subtracts a percentage of the total.
	KindPercent
)

var (
	// ErrEmptyCode indicates a missing coupon code.
	ErrEmptyCode = apperrors.New(apperrors.CodeCouponEmptyCode, "coupon code is required")
	// ErrNotVerified indicates an attempt to apply an unverified coupon.
	ErrNotVerified = apperrors.New(apperrors.CodeCouponNotVerified, "coupon has not been verified")

	hundred = decimal.NewFromInt(100)
)

// Coupon represents an optional discount. Only a verified coupon may ever
// affect totals; the zero value is the absent coupon.
type Coupon struct {
	Code      string
	Kind      Kind
	Magnitude decimal.Decimal
	Verified  bool
}

// Applies reports whether the coupon participates in pricing.
func (c Coupon) Applies() bool {
	return c.Verified && c.Kind != KindUnspecified
}

// FromVerification builds a verified coupon from a successful authorization
// response. The kind label is the wire value ("fixed" or "percent").
func FromVerification(code, kindLabel string, magnitude decimal.Decimal) (Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Coupon{}, ErrEmptyCode
	}
	kind, err := KindFromLabel(kindLabel)
	if err != nil {
		return Coupon{}, err
	}
	return Coupon{
		Code:      code,
		Kind:      kind,
		Magnitude: magnitude,
		Verified:  true,
	}, nil
}

// ApplyDiscount returns the total after the coupon discount. It is a total
// function: an unverified coupon leaves the total unchanged, and the result
// is clamped at zero, never negative.
func ApplyDiscount(total decimal.Decimal, c Coupon) decimal.Decimal {
	if !c.Applies() {
		return total
	}

	var discounted decimal.Decimal
	switch c.Kind {
	case KindFixed:
		discounted = total.Sub(c.Magnitude)
	case KindPercent:
		discounted = total.Mul(hundred.Sub(c.Magnitude)).Div(hundred)
	default:
		return total
	}

	if discounted.IsNegative() {
		return decimal.Zero
	}
	return discounted
}

// KindFromLabel parses a wire label into a Kind.
func KindFromLabel(value string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "fixed":
		return KindFixed, nil
	case "percent":
		return KindPercent, nil
	default:
		return KindUnspecified, apperrors.WithMetadata(
			apperrors.CodeCouponInvalidKind,
			fmt.Sprintf("unknown coupon kind: %s", value),
			map[string]string{"Kind": value},
		)
	}
}

// Label returns the wire label for a Kind.
func (k Kind) Label() string {
	switch k {
	case KindFixed:
		return "fixed"
	case KindPercent:
		return "percent"
	default:
		return ""
	}
}
