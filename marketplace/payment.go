package marketplace

import (
	"math"

	"github.com/shopspring/decimal"
)

var secondsPerHour = decimal.NewFromInt(3600)

// PaymentForDuration prices a computation at an hourly rate. Partial
// smallest-currency units round up so the provider is never underpaid, and
// the division stays exact at any magnitude. Durations that are not
// positive real numbers are worth zero.
func PaymentForDuration(pricePerHour decimal.Decimal, seconds float64) decimal.Decimal {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 || pricePerHour.Sign() <= 0 {
		return decimal.Zero
	}

	total := pricePerHour.Mul(decimal.NewFromFloat(seconds))
	quotient, remainder := total.QuoRem(secondsPerHour, 0)
	if !remainder.IsZero() {
		quotient = quotient.Add(decimal.NewFromInt(1))
	}
	return quotient
}
