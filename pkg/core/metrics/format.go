package metrics

import (
	"fmt"
	"strings"
)

// FormatCurrency renders an INR amount at founder-readable scale:
// crores above 1 Cr, lakhs above 1 L, thousands above 1 K, plain rupees
// below that.
func FormatCurrency(value float64) string {
	switch {
	case value >= 10_000_000:
		return fmt.Sprintf("₹%.2f Cr", value/10_000_000)
	case value >= 100_000:
		return fmt.Sprintf("₹%.2f L", value/100_000)
	case value >= 1_000:
		return fmt.Sprintf("₹%.1fK", value/1_000)
	default:
		return "₹" + groupThousands(fmt.Sprintf("%.2f", value))
	}
}

// FormatPercentage renders a 0..1 ratio as a percentage with one decimal.
func FormatPercentage(value float64) string {
	return fmt.Sprintf("%.1f%%", value*100)
}

// groupThousands inserts comma separators into the integer part of an
// already-formatted decimal string.
func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	if fracPart != "" {
		return sign + b.String() + "." + fracPart
	}
	return sign + b.String()
}
