package analytics

import (
	"math"
	"strconv"
	"strings"
)

// Display helpers. They round for presentation only and are never fed back
// into stored or aggregated values.

const noValue = "—"

// FormatMoney rounds v to a whole unit with thousands separators.
func FormatMoney(v float64) string {
	n := int64(math.Round(v))
	neg := n < 0
	if neg {
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// FormatSignedMoney is FormatMoney with an explicit plus sign for v >= 0.
func FormatSignedMoney(v float64) string {
	if v >= 0 {
		return "+" + FormatMoney(v)
	}
	return FormatMoney(v)
}

// FormatPercent renders a ratio as a percentage with one decimal.
func FormatPercent(r Ratio) string {
	if !r.Finite() {
		return noValue
	}
	return strconv.FormatFloat(float64(r)*100, 'f', 1, 64) + "%"
}

// FormatProfitFactor renders a profit factor with two decimals.
func FormatProfitFactor(r Ratio) string {
	switch {
	case r.IsInf():
		return "∞"
	case !r.Finite():
		return noValue
	}
	return strconv.FormatFloat(float64(r), 'f', 2, 64)
}
