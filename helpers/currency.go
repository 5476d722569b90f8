package helpers

import (
	"fmt"
	"math"
)

// FormatMoney formats an amount as a US dollar string with thousand
// separators and two decimals.
func FormatMoney(amount float64) string {
	negative := amount < 0
	amount = math.Abs(amount)

	whole := int64(amount)
	cents := int64(math.Round((amount - float64(whole)) * 100))
	if cents == 100 {
		whole++
		cents = 0
	}

	str := fmt.Sprintf("%d", whole)
	length := len(str)

	var result string
	for i, digit := range str {
		if i > 0 && (length-i)%3 == 0 {
			result += ","
		}
		result += string(digit)
	}

	if negative {
		return fmt.Sprintf("$-%s.%02d", result, cents)
	}
	return fmt.Sprintf("$%s.%02d", result, cents)
}

// FormatPips formats a pip count with one decimal place.
func FormatPips(pips float64) string {
	return fmt.Sprintf("%.1f pips", pips)
}
