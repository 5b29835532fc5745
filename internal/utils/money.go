package utils

import (
	"fmt"
	"math"
)

// FormatMoney keeps consistent decimal formatting for currency fields.
func FormatMoney(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// PriceRatio is price per travelled hour, 0 when hours is not positive.
func PriceRatio(price int64, hours float64) float64 {
	if hours <= 0 {
		return 0
	}
	return Round2(float64(price) / hours)
}
