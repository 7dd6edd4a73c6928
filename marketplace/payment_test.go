package marketplace

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPaymentForDuration(t *testing.T) {
	tests := []struct {
		name    string
		price   string
		seconds float64
		want    string
	}{
		{"full hour", "3600", 3600, "3600"},
		{"half hour exact", "7200", 1800, "3600"},
		{"partial unit rounds up", "1000", 1, "1"},
		{"remainder rounds up", "3", 1300, "2"},
		{"integral needs no rounding", "3", 1200, "1"},
		{"zero seconds", "1000", 0, "0"},
		{"negative seconds", "1000", -5, "0"},
		{"nan seconds", "1000", math.NaN(), "0"},
		{"infinite seconds", "1000", math.Inf(1), "0"},
		{"negative infinite seconds", "1000", math.Inf(-1), "0"},
		{"zero price", "0", 3600, "0"},
		{"huge price survives", "10000000000000000000000000", 3600, "10000000000000000000000000"},
		{"huge price rounds up", "10000000000000000000000000", 1, "2777777777777777777778"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price := decimal.RequireFromString(tt.price)
			got := PaymentForDuration(price, tt.seconds)
			assert.Equal(t, tt.want, got.String())
		})
	}
}
