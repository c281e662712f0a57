// Package budget holds the campaign investment amount and its derived
// audience estimates.
package budget

import (
	"github.com/shopspring/decimal"
)

var (
	// Min is the lowest amount the continuous budget control accepts.
	Min = decimal.NewFromInt(50)
	// Max is the highest amount the continuous budget control accepts.
	Max = decimal.NewFromInt(2000)

	playsPerReal = decimal.RequireFromString("3.5")
	realsPerDay  = decimal.NewFromInt(50)
	baseDays     = decimal.NewFromInt(3)
)

// Budget holds the base investment amount for one campaign.
type Budget struct {
	Base decimal.Decimal
}

// Set reports whether a positive amount has been chosen; this is the
// validity predicate for the budget step.
func (b Budget) Set() bool {
	return b.Base.IsPositive()
}

// ClampContinuous constrains slider input into the [Min, Max] range.
// Preset amounts bypass this; an already-valid preset outside the visual
// range is accepted unmodified by the caller.
func ClampContinuous(amount decimal.Decimal) decimal.Decimal {
	if amount.LessThan(Min) {
		return Min
	}
	if amount.GreaterThan(Max) {
		return Max
	}
	return amount
}

// EstimatedPlays returns the projected play count for the amount:
// round(base * 3.5).
func (b Budget) EstimatedPlays() int64 {
	return b.Base.Mul(playsPerReal).Round(0).IntPart()
}

// EstimatedDays returns the projected campaign duration in days:
// round(base / 50) + 3.
func (b Budget) EstimatedDays() int64 {
	return b.Base.Div(realsPerDay).Round(0).Add(baseDays).IntPart()
}
